package session

import (
	"errors"
	"testing"

	"github.com/mgirardot/pna-zonage/internal/model"
	"github.com/mgirardot/pna-zonage/internal/zonedata"
)

const odonateDoc = `{"type":"FeatureCollection","features":[
	{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]},"properties":{"n_espece":"Odonates"}}
]}`

func TestAdd_ClassifiesOnLoad(t *testing.T) {
	s := New()
	ds, err := s.Add("zones.geojson", []byte(odonateDoc))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if ds.Type != model.PlanTypeOdonata {
		t.Fatalf("type=%v want Odonates (content detection)", ds.Type)
	}
	if s.Len() != 1 {
		t.Fatalf("len=%d", s.Len())
	}
}

func TestAdd_ForcedTypeAppliesToAllDatasets(t *testing.T) {
	s := New(WithForcedType(model.PlanTypeGreyShrike))

	a, err := s.Add("chiroptere.geojson", []byte(odonateDoc))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	b, err := s.Add("zones.geojson", []byte(odonateDoc))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if a.Type != model.PlanTypeGreyShrike || b.Type != model.PlanTypeGreyShrike {
		t.Fatalf("forced type must win: %v / %v", a.Type, b.Type)
	}
}

func TestAdd_RejectsDuplicateName(t *testing.T) {
	s := New()
	if _, err := s.Add("zones.geojson", []byte(odonateDoc)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err := s.Add("zones.geojson", []byte(odonateDoc))
	if !errors.Is(err, ErrDuplicateDataset) {
		t.Fatalf("err=%v want ErrDuplicateDataset", err)
	}
	if s.Len() != 1 {
		t.Fatalf("duplicate must not be stored")
	}
}

func TestAdd_InvalidDocumentDoesNotAffectSession(t *testing.T) {
	s := New()
	if _, err := s.Add("ok.geojson", []byte(odonateDoc)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	_, err := s.Add("broken.geojson", []byte(`{"features":[]}`))
	if !errors.Is(err, zonedata.ErrInvalidDataset) {
		t.Fatalf("err=%v want ErrInvalidDataset", err)
	}
	if s.Len() != 1 {
		t.Fatalf("rejected file must be excluded, len=%d", s.Len())
	}

	// The already loaded dataset still answers.
	if s.Datasets()[0].Name != "ok.geojson" {
		t.Fatalf("datasets: %+v", s.Datasets())
	}
}

func TestAdd_UnclassifiableDatasetIsUnknown(t *testing.T) {
	s := New()
	ds, err := s.Add("zones.geojson", []byte(`{"type":"FeatureCollection","features":[]}`))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if ds.Type != model.PlanTypeUnknown {
		t.Fatalf("type=%v want Unknown", ds.Type)
	}
}
