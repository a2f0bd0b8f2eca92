// Package proj converts coordinates between WGS84 longitude/latitude
// (EPSG:4326, decimal degrees) and Lambert-93 (EPSG:2154, meters), the
// French national grid all zone datasets are expressed in.
//
// Lambert-93 is a Lambert Conformal Conic projection with two standard
// parallels on the GRS80 ellipsoid. The closed forms below follow the EPSG
// guidance note formulas; the inverse latitude is resolved by fixed-point
// iteration. Round-trip error is well under a millimeter, so repeated
// conversions cannot erode containment results.
package proj

import (
	"math"

	"github.com/mgirardot/pna-zonage/internal/model"
)

// EPSG:2154 definition constants (GRS80 ellipsoid).
const (
	semiMajor  = 6378137.0
	flattening = 1.0 / 298.257222101

	latOrigin    = 46.5 * math.Pi / 180 // latitude of origin
	lonOrigin    = 3.0 * math.Pi / 180  // central meridian
	stdParallel1 = 44.0 * math.Pi / 180
	stdParallel2 = 49.0 * math.Pi / 180

	falseEasting  = 700000.0
	falseNorthing = 6600000.0
)

// Derived projection constants, computed once.
var (
	ecc2 = flattening * (2 - flattening)
	ecc  = math.Sqrt(ecc2)

	coneN   float64 // cone constant
	coneF   float64 // scaled cone factor
	radius0 float64 // radius at latitude of origin
)

func init() {
	m1 := mFactor(stdParallel1)
	m2 := mFactor(stdParallel2)
	t0 := tFactor(latOrigin)
	t1 := tFactor(stdParallel1)
	t2 := tFactor(stdParallel2)

	coneN = (math.Log(m1) - math.Log(m2)) / (math.Log(t1) - math.Log(t2))
	coneF = m1 / (coneN * math.Pow(t1, coneN))
	radius0 = semiMajor * coneF * math.Pow(t0, coneN)
}

func mFactor(lat float64) float64 {
	s := math.Sin(lat)
	return math.Cos(lat) / math.Sqrt(1-ecc2*s*s)
}

func tFactor(lat float64) float64 {
	s := ecc * math.Sin(lat)
	return math.Tan(math.Pi/4-lat/2) / math.Pow((1-s)/(1+s), ecc/2)
}

// ToLambert93 converts a WGS84 longitude/latitude in decimal degrees to
// Lambert-93 easting/northing in meters. Pure and total over the valid
// coordinate ranges.
func ToLambert93(lon, lat float64) (x, y float64) {
	latR := lat * math.Pi / 180
	lonR := lon * math.Pi / 180

	r := semiMajor * coneF * math.Pow(tFactor(latR), coneN)
	theta := coneN * (lonR - lonOrigin)

	x = falseEasting + r*math.Sin(theta)
	y = falseNorthing + radius0 - r*math.Cos(theta)
	return x, y
}

// ToWGS84 converts Lambert-93 easting/northing in meters to WGS84
// longitude/latitude in decimal degrees.
func ToWGS84(x, y float64) (lon, lat float64) {
	dx := x - falseEasting
	dy := radius0 - (y - falseNorthing)

	r := math.Hypot(dx, dy) // coneN > 0 for Lambert-93
	t := math.Pow(r/(semiMajor*coneF), 1/coneN)
	theta := math.Atan2(dx, dy)

	lonR := theta/coneN + lonOrigin

	latR := math.Pi/2 - 2*math.Atan(t)
	for range 8 {
		s := ecc * math.Sin(latR)
		next := math.Pi/2 - 2*math.Atan(t*math.Pow((1-s)/(1+s), ecc/2))
		if math.Abs(next-latR) < 1e-12 {
			latR = next
			break
		}
		latR = next
	}

	return lonR * 180 / math.Pi, latR * 180 / math.Pi
}

// PointFromWGS84 builds a query point from geographic coordinates,
// populating the projected representation.
func PointFromWGS84(lon, lat float64) model.Point {
	x, y := ToLambert93(lon, lat)
	return model.Point{Lon: lon, Lat: lat, X: x, Y: y}
}

// PointFromLambert93 builds a query point from projected coordinates,
// populating the geographic representation for display.
func PointFromLambert93(x, y float64) model.Point {
	lon, lat := ToWGS84(x, y)
	return model.Point{Lon: lon, Lat: lat, X: x, Y: y}
}
