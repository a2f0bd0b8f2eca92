// Package model defines the domain types shared by the PNA zone
// verification core: query points, zone datasets and match results.
package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// PlanType classifies a zone dataset by the species group its national
// action plan targets. The zero value means no detection has run yet;
// public APIs never return it (it resolves to PlanTypeUnknown).
type PlanType int

const (
	PlanTypeUndetected PlanType = iota
	PlanTypeUnknown
	PlanTypeChiroptera
	PlanTypeOdonata
	PlanTypeGreyShrike
	PlanTypeSouthernGreyShrike
	PlanTypeRedBackedShrike
)

// labels match the wording used in the source datasets and reports.
var planTypeLabels = map[PlanType]string{
	PlanTypeUndetected:         "Type non détecté",
	PlanTypeUnknown:            "Type inconnu",
	PlanTypeChiroptera:         "Chiroptères",
	PlanTypeOdonata:            "Odonates",
	PlanTypeGreyShrike:         "Pie-grièche grise",
	PlanTypeSouthernGreyShrike: "Pie-grièche méridionale",
	PlanTypeRedBackedShrike:    "Pie-grièche à tête rousse",
}

func (t PlanType) String() string {
	if s, ok := planTypeLabels[t]; ok {
		return s
	}
	return fmt.Sprintf("PlanType(%d)", int(t))
}

func (t PlanType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts both the French label and int representations
func (t *PlanType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		for pt, label := range planTypeLabels {
			if strings.EqualFold(s, label) {
				*t = pt
				return nil
			}
		}
		return fmt.Errorf("unknown plan type %q", s)
	}
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*t = PlanType(n)
		return nil
	}
	return fmt.Errorf("plan type must be string or int")
}

// Point is a query location carried in both reference systems. Lon/Lat are
// WGS84 decimal degrees, X/Y are Lambert-93 meters; both denote the same
// physical location within reprojection tolerance.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("WGS84(%.6f,%.6f) L93(%.2f,%.2f)", p.Lon, p.Lat, p.X, p.Y)
}

// L93 returns the projected representation as an orb point.
func (p Point) L93() orb.Point {
	return orb.Point{p.X, p.Y}
}

// ZoneFeature is one polygon/multipolygon from a zone dataset, expressed in
// Lambert-93. Geometry is nil when the source geometry could not be decoded;
// such features are skipped during matching. Bound is precomputed at parse
// time for the prefilter.
type ZoneFeature struct {
	Geometry   orb.Geometry
	Bound      orb.Bound
	Properties geojson.Properties
}

// ZoneDataset is a named, classified collection of zone features. Identity
// is the source file name. Type is assigned once at load time and never
// mutated, so datasets are safe for concurrent readers.
type ZoneDataset struct {
	Name     string
	Type     PlanType
	Features []ZoneFeature
}

// Property keys used by the datasets and stamped onto results.
const (
	PropSpecies       = "n_espece"
	PropStake         = "t_enjeux"
	PropStakeDetailed = "enjeu_detaille"
	PropPlanType      = "type_pna"
	PropSourceFile    = "fichier_source"
)

// StakeUndetermined is the stake value reported for Chiroptera zones whose
// feature carries no stake attribute.
const StakeUndetermined = "Indéterminé"

// MatchResult is one matched zone feature: its original properties plus the
// derived fields stamped by the aggregator.
type MatchResult struct {
	PlanType      PlanType           `json:"type_pna"`
	SourceDataset string             `json:"fichier_source"`
	Properties    geojson.Properties `json:"properties"`
}
