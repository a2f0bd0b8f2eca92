package classify

import (
	"testing"

	"github.com/paulmach/orb/geojson"

	"github.com/mgirardot/pna-zonage/internal/model"
)

func featWithSpecies(species string) model.ZoneFeature {
	return model.ZoneFeature{Properties: geojson.Properties{model.PropSpecies: species}}
}

func TestFromFileName(t *testing.T) {
	cases := []struct {
		name string
		want model.PlanType
	}{
		{"chiroptere_zones.geojson", model.PlanTypeChiroptera},
		{"ZONES_CHAUVES_SOURIS.json", model.PlanTypeChiroptera},
		{"pna_odonates_2023.geojson", model.PlanTypeOdonata},
		{"libellules.geojson", model.PlanTypeOdonata},
		{"pie_griseche_grise.geojson", model.PlanTypeGreyShrike},
		{"pie_griseche_merid.geojson", model.PlanTypeSouthernGreyShrike},
		{"pie_griseche_meridionale_2021.json", model.PlanTypeSouthernGreyShrike},
		{"griseche_rousse.geojson", model.PlanTypeRedBackedShrike},
		{"zones_tete rousse.geojson", model.PlanTypeRedBackedShrike},
		{"communes.geojson", model.PlanTypeUndetected},
	}
	for _, c := range cases {
		if got := FromFileName(c.name); got != c.want {
			t.Errorf("FromFileName(%q)=%v want %v", c.name, got, c.want)
		}
	}
}

func TestFromContent_AccentInsensitive(t *testing.T) {
	cases := []struct {
		species string
		want    model.PlanType
	}{
		{"Chauve-souris", model.PlanTypeChiroptera},
		{"Chiroptères", model.PlanTypeChiroptera},
		{"chiropteres", model.PlanTypeChiroptera},
		{"Odonates", model.PlanTypeOdonata},
		{"Pie-grièche grise", model.PlanTypeGreyShrike},
		{"Pie-grieche grise", model.PlanTypeGreyShrike},
		{"Pie-grièche méridionale", model.PlanTypeSouthernGreyShrike},
		{"Pie-grièche à tête rousse", model.PlanTypeRedBackedShrike},
		{"Aigle royal", model.PlanTypeUndetected},
	}
	for _, c := range cases {
		got := FromContent([]model.ZoneFeature{featWithSpecies(c.species)})
		if got != c.want {
			t.Errorf("FromContent(%q)=%v want %v", c.species, got, c.want)
		}
	}
}

func TestFromContent_StopsAtFirstMatchWithinSample(t *testing.T) {
	feats := []model.ZoneFeature{
		{Properties: geojson.Properties{}},
		featWithSpecies("espèce indéterminée"),
		featWithSpecies("Odonates"),
		featWithSpecies("Chiroptères"), // never reached
	}
	if got := FromContent(feats); got != model.PlanTypeOdonata {
		t.Fatalf("got %v want Odonates (first matching feature wins)", got)
	}
}

func TestFromContent_OnlyFirstTenFeaturesInspected(t *testing.T) {
	feats := make([]model.ZoneFeature, 0, 11)
	for range 10 {
		feats = append(feats, featWithSpecies("zone tampon"))
	}
	feats = append(feats, featWithSpecies("Odonates"))
	if got := FromContent(feats); got != model.PlanTypeUndetected {
		t.Fatalf("got %v, feature 11 must not be inspected", got)
	}
}

func TestFromContent_SpeciesKeyFallback(t *testing.T) {
	f := model.ZoneFeature{Properties: geojson.Properties{"NOM_ESPECE": "Odonates"}}
	if got := FromContent([]model.ZoneFeature{f}); got != model.PlanTypeOdonata {
		t.Fatalf("got %v want Odonates via fallback species key", got)
	}
}

func TestClassify_Priorities(t *testing.T) {
	odonateContent := []model.ZoneFeature{featWithSpecies("Odonates")}

	// Forced type overrides filename and content detection entirely.
	got := Classify("chiroptere_zones.geojson", odonateContent, model.PlanTypeGreyShrike)
	if got != model.PlanTypeGreyShrike {
		t.Fatalf("forced: got %v want GreyShrike", got)
	}

	// Filename wins over content.
	got = Classify("chiroptere_zones.geojson", odonateContent, model.PlanTypeUndetected)
	if got != model.PlanTypeChiroptera {
		t.Fatalf("filename: got %v want Chiroptères", got)
	}

	// Content is the fallback.
	got = Classify("zones.geojson", odonateContent, model.PlanTypeUndetected)
	if got != model.PlanTypeOdonata {
		t.Fatalf("content: got %v want Odonates", got)
	}

	// Nothing matched: Unknown, never the transient Undetected.
	got = Classify("zones.geojson", nil, model.PlanTypeUndetected)
	if got != model.PlanTypeUnknown {
		t.Fatalf("unresolved: got %v want Unknown", got)
	}
}
