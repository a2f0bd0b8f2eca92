// Package aggregate shapes raw match results for presentation: original
// feature attributes are copied, provenance is stamped, and plan-type
// specific attributes are normalized.
package aggregate

import (
	"github.com/paulmach/orb/geojson"

	"github.com/mgirardot/pna-zonage/internal/model"
)

// Interface is the seam the server and CLI consume results through.
type Interface interface {
	Enrich(results []model.MatchResult) []model.MatchResult
}

type Aggregator struct{}

var _ Interface = (*Aggregator)(nil)

func New() *Aggregator { return &Aggregator{} }

// Enrich returns one output record per input record, in order; nothing is
// deduplicated, sorted or filtered. Each record receives the owning
// dataset's plan type and file name both as struct fields and as stamped
// properties. Chiroptera records additionally get a normalized stake
// attribute sourced from the feature's stake property, defaulting to
// "Indéterminé" when absent. Input properties are never mutated; every
// record carries its own copy.
func (a *Aggregator) Enrich(results []model.MatchResult) []model.MatchResult {
	out := make([]model.MatchResult, 0, len(results))
	for _, r := range results {
		props := make(geojson.Properties, len(r.Properties)+3)
		for k, v := range r.Properties {
			props[k] = v
		}

		if r.PlanType == model.PlanTypeChiroptera {
			props[model.PropStakeDetailed] = stakeOf(r.Properties)
		}
		props[model.PropPlanType] = r.PlanType.String()
		props[model.PropSourceFile] = r.SourceDataset

		out = append(out, model.MatchResult{
			PlanType:      r.PlanType,
			SourceDataset: r.SourceDataset,
			Properties:    props,
		})
	}
	return out
}

// stakeOf carries the feature's stake attribute whatever its type; only an
// absent or null attribute gets the undetermined default.
func stakeOf(props geojson.Properties) any {
	if v, ok := props[model.PropStake]; ok && v != nil {
		return v
	}
	return model.StakeUndetermined
}
