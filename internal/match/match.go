// Package match implements the containment query at the heart of zone
// verification: is a point inside, or within tolerance of, any zone of any
// loaded dataset.
package match

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/mgirardot/pna-zonage/internal/model"
)

// ErrNoDatasets is returned when Match is invoked with an empty dataset
// collection; callers must load at least one dataset first.
var ErrNoDatasets = errors.New("no zone datasets loaded")

// DefaultBufferRadius is the tolerance buffer around the query point, in
// Lambert-93 meters. It absorbs geocoding and digitization error for points
// that land within ~1m of a zone boundary.
const DefaultBufferRadius = 1.0

type Matcher struct {
	radius float64
}

type Option func(*Matcher)

// WithBufferRadius overrides the tolerance radius in meters. Non-positive
// values keep the default.
func WithBufferRadius(r float64) Option {
	return func(m *Matcher) {
		if r > 0 {
			m.radius = r
		}
	}
}

func New(opts ...Option) *Matcher {
	m := &Matcher{radius: DefaultBufferRadius}
	for _, f := range opts {
		f(m)
	}
	return m
}

// BufferRadius reports the configured tolerance in meters.
func (m *Matcher) BufferRadius() float64 { return m.radius }

// Match evaluates every feature of every dataset against the projected form
// of pt. A feature matches when its geometry contains the exact point or
// lies within the buffer radius of it; both tests are kept because pure
// containment turns near-boundary points into nondeterministic false
// negatives. Iteration order is datasets as supplied, features in collection
// order, with no early termination: overlapping memberships are all
// reported. Features whose geometry is missing or whose evaluation fails
// are skipped without aborting the query.
func (m *Matcher) Match(pt model.Point, datasets []model.ZoneDataset) (bool, []model.MatchResult, error) {
	if len(datasets) == 0 {
		return false, nil, ErrNoDatasets
	}

	p := pt.L93()
	var results []model.MatchResult

	for _, ds := range datasets {
		for _, f := range ds.Features {
			if f.Geometry == nil {
				continue
			}
			if !nearBound(f.Bound, p, m.radius) {
				continue
			}
			if evalFeature(f.Geometry, p, m.radius) {
				results = append(results, model.MatchResult{
					PlanType:      ds.Type,
					SourceDataset: ds.Name,
					Properties:    f.Properties,
				})
			}
		}
	}

	return len(results) > 0, results, nil
}

// nearBound is a cheap prefilter: the buffer disc cannot touch a geometry
// whose bounding box is further than radius away.
func nearBound(b orb.Bound, p orb.Point, radius float64) bool {
	return p[0] >= b.Min[0]-radius && p[0] <= b.Max[0]+radius &&
		p[1] >= b.Min[1]-radius && p[1] <= b.Max[1]+radius
}

// evalFeature swallows panics from degenerate geometries; one corrupt
// feature must never block detection elsewhere.
func evalFeature(g orb.Geometry, p orb.Point, radius float64) (hit bool) {
	defer func() {
		if recover() != nil {
			hit = false
		}
	}()

	switch geom := g.(type) {
	case orb.Polygon:
		if planar.PolygonContains(geom, p) {
			return true
		}
	case orb.MultiPolygon:
		if planar.MultiPolygonContains(geom, p) {
			return true
		}
	}

	// Buffer intersection: the disc of the configured radius touches the
	// geometry iff the distance to it is at most the radius. The boundary
	// case at exactly one radius counts as a match (closed interval), the
	// same tangency semantics as intersecting a true buffer polygon.
	return planar.DistanceFrom(g, p) <= radius
}
