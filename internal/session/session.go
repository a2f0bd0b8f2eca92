// Package session holds the zone datasets loaded for one verification
// session. The session is owned by the caller and passed into core calls;
// the core itself keeps no state between calls. Datasets are classified
// once when added and are read-only afterwards, so concurrent queries over
// a fully loaded session need no locking.
package session

import (
	"errors"
	"fmt"

	"github.com/mgirardot/pna-zonage/internal/classify"
	"github.com/mgirardot/pna-zonage/internal/model"
	"github.com/mgirardot/pna-zonage/internal/zonedata"
)

// ErrDuplicateDataset is returned when a file name is added twice; dataset
// identity is the source file name.
var ErrDuplicateDataset = errors.New("dataset already loaded")

type Session struct {
	forced   model.PlanType
	datasets []model.ZoneDataset
	byName   map[string]struct{}
}

type Option func(*Session)

// WithForcedType applies one plan type uniformly to every dataset added to
// the session, bypassing detection.
func WithForcedType(t model.PlanType) Option {
	return func(s *Session) { s.forced = t }
}

func New(opts ...Option) *Session {
	s := &Session{byName: map[string]struct{}{}}
	for _, f := range opts {
		f(s)
	}
	return s
}

// Add parses, classifies and stores one uploaded document. A malformed
// document is rejected without affecting datasets already loaded.
func (s *Session) Add(fileName string, data []byte) (model.ZoneDataset, error) {
	if _, dup := s.byName[fileName]; dup {
		return model.ZoneDataset{}, fmt.Errorf("%w: %q", ErrDuplicateDataset, fileName)
	}

	features, err := zonedata.ParseCollection(data)
	if err != nil {
		return model.ZoneDataset{}, fmt.Errorf("dataset %q: %w", fileName, err)
	}

	t := classify.Classify(fileName, features, s.forced)
	if t == model.PlanTypeUndetected {
		t = model.PlanTypeUnknown
	}

	ds := model.ZoneDataset{Name: fileName, Type: t, Features: features}
	s.datasets = append(s.datasets, ds)
	s.byName[fileName] = struct{}{}
	return ds, nil
}

// Datasets returns the loaded datasets in insertion order. The slice and
// its contents must be treated as read-only.
func (s *Session) Datasets() []model.ZoneDataset {
	return s.datasets
}

func (s *Session) Len() int { return len(s.datasets) }
