// Package store owns the zone datasets of a running server. It loads every
// GeoJSON file under a directory into a session, keeps a per-file load
// report, and swaps the whole snapshot atomically on reload so concurrent
// verification queries always see a consistent, immutable collection.
package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mgirardot/pna-zonage/internal/model"
	"github.com/mgirardot/pna-zonage/internal/observability"
	"github.com/mgirardot/pna-zonage/internal/session"
)

// FileReport describes the outcome of loading one file. Rejected files stay
// in the report with their error so operators can see what was excluded.
type FileReport struct {
	File     string         `json:"file"`
	Type     model.PlanType `json:"type,omitempty"`
	Features int            `json:"features"`
	Error    string         `json:"error,omitempty"`
}

type snapshot struct {
	datasets []model.ZoneDataset
	report   []FileReport
}

type Store struct {
	logger *slog.Logger
	dir    string
	forced model.PlanType

	mu   sync.RWMutex
	snap snapshot
}

func New(logger *slog.Logger, dir string, forced model.PlanType) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger, dir: dir, forced: forced}
}

// Load reads the data directory and replaces the current snapshot. A
// malformed file is reported and excluded without failing the load; only an
// unreadable directory is an error.
func (s *Store) Load() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read data dir %q: %w", s.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".geojson", ".json":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	sess := session.New(session.WithForcedType(s.forced))
	report := make([]FileReport, 0, len(names))
	features := 0

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.Warn("zone file unreadable", "file", name, "err", err)
			report = append(report, FileReport{File: name, Error: err.Error()})
			continue
		}

		ds, err := sess.Add(name, data)
		if err != nil {
			s.logger.Warn("zone file rejected", "file", name, "err", err)
			report = append(report, FileReport{File: name, Error: err.Error()})
			continue
		}

		features += len(ds.Features)
		report = append(report, FileReport{File: name, Type: ds.Type, Features: len(ds.Features)})
		s.logger.Info("zone file loaded",
			"file", name, "type", ds.Type.String(), "features", len(ds.Features))
	}

	s.mu.Lock()
	s.snap = snapshot{datasets: sess.Datasets(), report: report}
	s.mu.Unlock()

	observability.SetDatasetsLoaded(sess.Len(), features)
	s.logger.Info("zone datasets loaded", "datasets", sess.Len(), "features", features)
	return nil
}

// Reload satisfies the refresh consumer's dependency.
func (s *Store) Reload() error { return s.Load() }

// Datasets returns the current snapshot. The slice is replaced wholesale on
// reload and its contents are immutable, so readers need no locking beyond
// this accessor.
func (s *Store) Datasets() []model.ZoneDataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.datasets
}

// Report returns the load report of the current snapshot.
func (s *Store) Report() []FileReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.report
}

// Readiness reports whether at least one dataset is available.
func (s *Store) Readiness() (bool, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snap.datasets) > 0, len(s.snap.datasets)
}
