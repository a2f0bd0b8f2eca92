package zonedata

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
)

// builds a FeatureCollection document from feature json strings
func doc(features ...string) []byte {
	out := `{"type":"FeatureCollection","features":[`
	for i, f := range features {
		if i > 0 {
			out += ","
		}
		out += f
	}
	return []byte(out + `]}`)
}

const squareFeature = `{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[100,0],[100,100],[0,100],[0,0]]]},"properties":{"n_espece":"Odonates"}}`

func TestParseCollection_ValidDocument(t *testing.T) {
	feats, err := ParseCollection(doc(squareFeature))
	if err != nil {
		t.Fatalf("ParseCollection: %v", err)
	}
	if len(feats) != 1 {
		t.Fatalf("features=%d want 1", len(feats))
	}

	f := feats[0]
	if _, ok := f.Geometry.(orb.Polygon); !ok {
		t.Fatalf("geometry type %T want orb.Polygon", f.Geometry)
	}
	if f.Bound.Min != (orb.Point{0, 0}) || f.Bound.Max != (orb.Point{100, 100}) {
		t.Fatalf("bound %+v", f.Bound)
	}
	if f.Properties["n_espece"] != "Odonates" {
		t.Fatalf("properties %+v", f.Properties)
	}
}

func TestParseCollection_MissingTopLevelMembers(t *testing.T) {
	cases := map[string]string{
		"missing type":     `{"features":[]}`,
		"missing features": `{"type":"FeatureCollection"}`,
		"not json":         `{"type":`,
		"features scalar":  `{"type":"FeatureCollection","features":42}`,
	}
	for name, in := range cases {
		if _, err := ParseCollection([]byte(in)); !errors.Is(err, ErrInvalidDataset) {
			t.Errorf("%s: err=%v want ErrInvalidDataset", name, err)
		}
	}
}

func TestParseCollection_MalformedGeometryKeptAsNil(t *testing.T) {
	bad := `{"type":"Feature","geometry":{"type":"Polygon","coordinates":"oops"},"properties":{"id":1}}`
	nullGeom := `{"type":"Feature","geometry":null,"properties":{"id":2}}`

	feats, err := ParseCollection(doc(bad, nullGeom, squareFeature))
	if err != nil {
		t.Fatalf("ParseCollection: %v", err)
	}
	if len(feats) != 3 {
		t.Fatalf("features=%d want 3 (malformed ones retained)", len(feats))
	}
	if feats[0].Geometry != nil {
		t.Errorf("malformed geometry should decode to nil, got %T", feats[0].Geometry)
	}
	if feats[0].Properties["id"] != float64(1) {
		t.Errorf("properties of malformed-geometry feature lost: %+v", feats[0].Properties)
	}
	if feats[1].Geometry != nil {
		t.Errorf("null geometry should stay nil, got %T", feats[1].Geometry)
	}
	if feats[2].Geometry == nil {
		t.Errorf("valid geometry dropped")
	}
}

func TestParseCollection_FeatureNotAnObject(t *testing.T) {
	feats, err := ParseCollection(doc(`"scalar"`, squareFeature))
	if err != nil {
		t.Fatalf("ParseCollection: %v", err)
	}
	if len(feats) != 2 {
		t.Fatalf("features=%d want 2", len(feats))
	}
	if feats[0].Geometry != nil || len(feats[0].Properties) != 0 {
		t.Fatalf("scalar feature should degrade to empty shell: %+v", feats[0])
	}
}
