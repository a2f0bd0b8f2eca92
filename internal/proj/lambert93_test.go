package proj

import (
	"math"
	"testing"
)

func TestProjectionOrigin_MapsToFalseOrigin(t *testing.T) {
	x, y := ToLambert93(3.0, 46.5)
	if math.Abs(x-700000) > 1e-6 {
		t.Fatalf("x=%f want 700000", x)
	}
	if math.Abs(y-6600000) > 1e-6 {
		t.Fatalf("y=%f want 6600000", y)
	}

	lon, lat := ToWGS84(700000, 6600000)
	if math.Abs(lon-3.0) > 1e-9 || math.Abs(lat-46.5) > 1e-9 {
		t.Fatalf("inverse of false origin = (%f,%f) want (3,46.5)", lon, lat)
	}
}

func TestRoundTrip_Under1cm(t *testing.T) {
	// Representative points across metropolitan France.
	points := [][2]float64{
		{2.7, 43.6},      // Occitanie
		{2.35, 48.86},    // Paris
		{-1.55, 47.22},   // Nantes
		{5.37, 43.3},     // Marseille
		{7.75, 48.58},    // Strasbourg
		{-4.49, 48.39},   // Brest
		{3.0, 46.5},      // projection origin
		{9.15, 41.93},    // Corsica
		{0.0, 44.0},      // Greenwich meridian crossing
	}

	for _, p := range points {
		lon, lat := p[0], p[1]
		x, y := ToLambert93(lon, lat)
		lon2, lat2 := ToWGS84(x, y)
		x2, y2 := ToLambert93(lon2, lat2)

		// 1cm in meters; degrees compared via the projected round trip.
		if d := math.Hypot(x2-x, y2-y); d > 0.01 {
			t.Errorf("round trip drift %.6fm at (%f,%f)", d, lon, lat)
		}
		// Direct degree comparison: 1e-7 deg is ~1cm.
		if math.Abs(lon2-lon) > 1e-7 || math.Abs(lat2-lat) > 1e-7 {
			t.Errorf("geographic round trip (%f,%f) -> (%f,%f)", lon, lat, lon2, lat2)
		}
	}
}

func TestAxisOrientation(t *testing.T) {
	x0, y0 := ToLambert93(2.7, 43.6)
	xe, _ := ToLambert93(2.8, 43.6)
	_, yn := ToLambert93(2.7, 43.7)

	if xe <= x0 {
		t.Fatalf("easting must grow eastward: %f <= %f", xe, x0)
	}
	if yn <= y0 {
		t.Fatalf("northing must grow northward: %f <= %f", yn, y0)
	}
}

func TestLocalScale_NearUnity(t *testing.T) {
	// Near the standard parallels the grid scale is ~1: a small step north
	// must project to roughly the corresponding ellipsoidal arc length.
	const dLat = 1e-5 // ~1.11m of arc
	_, y1 := ToLambert93(3.0, 44.0)
	_, y2 := ToLambert93(3.0, 44.0+dLat)

	arc := dLat * math.Pi / 180 * 6378137 * (1 - 0.00669438) // rough meridian radius
	got := y2 - y1
	if math.Abs(got-arc)/arc > 0.01 {
		t.Fatalf("meridian step projected to %.4fm, expected ~%.4fm", got, arc)
	}
}
