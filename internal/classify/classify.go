// Package classify infers the plan type of a zone dataset. Detection runs
// in priority order: a forced type wins outright, then filename keywords,
// then the species attribute of the first features, and finally
// PlanTypeUnknown. Keywords are matched accent- and case-insensitively so
// "grièche" and "grieche" both hit.
package classify

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mgirardot/pna-zonage/internal/model"
)

// contentSample caps how many features the content heuristic inspects.
const contentSample = 10

// rule matches when every keyword in all is present and none in exclude.
// Keywords are compared against folded (lowercase, accent-stripped) text.
type rule struct {
	all     []string
	exclude []string
	result  model.PlanType
}

// Filename rules. "grise" is a substring of "griseche", so every griseche
// filename satisfies the grey-shrike keywords; the méridionale and
// tête-rousse rules must run first or they can never fire.
var fileRules = []rule{
	{all: []string{"chiroptere"}, result: model.PlanTypeChiroptera},
	{all: []string{"chauve"}, result: model.PlanTypeChiroptera},
	{all: []string{"odonat"}, result: model.PlanTypeOdonata},
	{all: []string{"libellule"}, result: model.PlanTypeOdonata},
	{all: []string{"griseche", "merid"}, result: model.PlanTypeSouthernGreyShrike},
	{all: []string{"griseche", "rousse"}, result: model.PlanTypeRedBackedShrike},
	{all: []string{"tete rousse"}, result: model.PlanTypeRedBackedShrike},
	{all: []string{"griseche", "grise"}, exclude: []string{"tete"}, result: model.PlanTypeGreyShrike},
}

// Species-attribute rules used by the content heuristic.
var contentRules = []rule{
	{all: []string{"chauve"}, result: model.PlanTypeChiroptera},
	{all: []string{"chiroptere"}, result: model.PlanTypeChiroptera},
	{all: []string{"odonates"}, result: model.PlanTypeOdonata},
	{all: []string{"libellule"}, result: model.PlanTypeOdonata},
	{all: []string{"grieche", "grise"}, exclude: []string{"tete"}, result: model.PlanTypeGreyShrike},
	{all: []string{"grieche", "merid"}, result: model.PlanTypeSouthernGreyShrike},
	{all: []string{"grieche", "tete rousse"}, result: model.PlanTypeRedBackedShrike},
}

var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases and strips combining accents.
func fold(s string) string {
	out, _, err := transform.String(foldChain, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

func applyRules(rules []rule, text string) model.PlanType {
	folded := fold(text)
	for _, r := range rules {
		hit := true
		for _, kw := range r.all {
			if !strings.Contains(folded, kw) {
				hit = false
				break
			}
		}
		if !hit {
			continue
		}
		for _, kw := range r.exclude {
			if strings.Contains(folded, kw) {
				hit = false
				break
			}
		}
		if hit {
			return r.result
		}
	}
	return model.PlanTypeUndetected
}

// Classify determines the plan type of a dataset. forced, when not
// PlanTypeUndetected, is returned unconditionally and no heuristic runs.
func Classify(fileName string, features []model.ZoneFeature, forced model.PlanType) model.PlanType {
	if forced != model.PlanTypeUndetected {
		return forced
	}
	if t := FromFileName(fileName); t != model.PlanTypeUndetected {
		return t
	}
	if t := FromContent(features); t != model.PlanTypeUndetected {
		return t
	}
	return model.PlanTypeUnknown
}

// FromFileName applies the filename keyword table.
func FromFileName(name string) model.PlanType {
	return applyRules(fileRules, name)
}

// FromContent inspects the species attribute of up to the first ten
// features and applies the content keyword table, stopping at the first
// feature that yields a classification.
func FromContent(features []model.ZoneFeature) model.PlanType {
	n := len(features)
	if n > contentSample {
		n = contentSample
	}
	for _, f := range features[:n] {
		v := speciesValue(f)
		if v == "" {
			continue
		}
		if t := applyRules(contentRules, v); t != model.PlanTypeUndetected {
			return t
		}
	}
	return model.PlanTypeUndetected
}

// speciesValue reads the species property; shapefile exports sometimes
// rename it, so any key containing "espece" is accepted as a fallback.
func speciesValue(f model.ZoneFeature) string {
	if v, ok := f.Properties[model.PropSpecies]; ok {
		return stringify(v)
	}
	for k, v := range f.Properties {
		if strings.Contains(fold(k), "espece") {
			return stringify(v)
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
