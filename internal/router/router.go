// Package router validates verification requests and serves them over
// HTTP. A query supplies either a free-text address (resolved through the
// geocoder) or a point in one of the two reference systems; the response
// echoes the point in both systems, the way the original form displayed it.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mgirardot/pna-zonage/internal/aggregate"
	"github.com/mgirardot/pna-zonage/internal/geocode"
	"github.com/mgirardot/pna-zonage/internal/match"
	"github.com/mgirardot/pna-zonage/internal/model"
	"github.com/mgirardot/pna-zonage/internal/observability"
	"github.com/mgirardot/pna-zonage/internal/proj"
	"github.com/mgirardot/pna-zonage/internal/store"
)

// DatasetSource provides the immutable dataset snapshot queries run
// against.
type DatasetSource interface {
	Datasets() []model.ZoneDataset
}

// Verifier bundles the collaborators of the verify endpoint.
type Verifier struct {
	Logger   *slog.Logger
	Source   DatasetSource
	Geocoder geocode.Geocoder
	Matcher  *match.Matcher
	Agg      aggregate.Interface
}

// VerifyQuery is a parsed, validated verification request.
type VerifyQuery struct {
	Address string
	Point   *model.Point
}

type geocodingEcho struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type verifyResponse struct {
	Address   string              `json:"address,omitempty"`
	Point     model.Point         `json:"point"`
	Geocoding *geocodingEcho      `json:"geocoding,omitempty"`
	Matched   bool                `json:"matched"`
	ZoneCount int                 `json:"zone_count"`
	Zones     []model.MatchResult `json:"zones"`
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// HandleVerify parses the query parameters and runs one verification.
func HandleVerify(v Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		q, err := ParseVerifyRequest(r)
		if err != nil {
			http.Error(sw, err.Error(), http.StatusBadRequest)
			observability.ObserveHTTP(r.Method, "/verify", sw.code, time.Since(start).Seconds())
			return
		}

		v.serve(r.Context(), sw, q)
		observability.ObserveHTTP(r.Method, "/verify", sw.code, time.Since(start).Seconds())
	}
}

func (v Verifier) serve(ctx context.Context, w http.ResponseWriter, q VerifyQuery) {
	resp := verifyResponse{Address: q.Address}

	if q.Point != nil {
		resp.Point = *q.Point
	} else {
		res, err := v.Geocoder.Geocode(ctx, q.Address)
		if err != nil {
			observability.ObserveVerify("error")
			if errors.Is(err, geocode.ErrNoResult) {
				http.Error(w, "address could not be resolved", http.StatusNotFound)
				return
			}
			v.Logger.Error("geocoding failed", "err", err)
			http.Error(w, "geocoding failed", http.StatusBadGateway)
			return
		}
		resp.Point = res.Point
		resp.Geocoding = &geocodingEcho{Label: res.Label, Score: res.Score}
	}

	matched, results, err := v.Matcher.Match(resp.Point, v.Source.Datasets())
	if err != nil {
		observability.ObserveVerify("error")
		if errors.Is(err, match.ErrNoDatasets) {
			http.Error(w, "no zone datasets loaded", http.StatusServiceUnavailable)
			return
		}
		v.Logger.Error("zone match failed", "err", err)
		http.Error(w, "zone match failed", http.StatusInternalServerError)
		return
	}

	zones := v.Agg.Enrich(results)
	if zones == nil {
		zones = []model.MatchResult{}
	}
	for _, z := range zones {
		observability.IncZoneMatch(z.PlanType.String())
	}
	if matched {
		observability.ObserveVerify("match")
	} else {
		observability.ObserveVerify("no_match")
	}

	resp.Matched = matched
	resp.ZoneCount = len(zones)
	resp.Zones = zones

	writeJSON(w, http.StatusOK, resp)
}

// ParseVerifyRequest accepts exactly one of three input modes: address=,
// lon=&lat= (WGS84 degrees) or x=&y= (Lambert-93 meters).
func ParseVerifyRequest(r *http.Request) (VerifyQuery, error) {
	qs := r.URL.Query()
	address := strings.TrimSpace(qs.Get("address"))
	hasLonLat := qs.Has("lon") || qs.Has("lat")
	hasXY := qs.Has("x") || qs.Has("y")

	modes := 0
	if address != "" {
		modes++
	}
	if hasLonLat {
		modes++
	}
	if hasXY {
		modes++
	}
	switch {
	case modes == 0:
		return VerifyQuery{}, errors.New("supply address=, lon=&lat=, or x=&y=")
	case modes > 1:
		return VerifyQuery{}, errors.New("address, lon/lat and x/y are mutually exclusive")
	}

	if address != "" {
		return VerifyQuery{Address: address}, nil
	}

	if hasLonLat {
		lon, err := parseFloat(qs.Get("lon"))
		if err != nil {
			return VerifyQuery{}, fmt.Errorf("lon: %w", err)
		}
		lat, err := parseFloat(qs.Get("lat"))
		if err != nil {
			return VerifyQuery{}, fmt.Errorf("lat: %w", err)
		}
		if lon < -180 || lon > 180 {
			return VerifyQuery{}, errors.New("lon must be in [-180,180]")
		}
		if lat < -90 || lat > 90 {
			return VerifyQuery{}, errors.New("lat must be in [-90,90]")
		}
		p := proj.PointFromWGS84(lon, lat)
		return VerifyQuery{Point: &p}, nil
	}

	x, err := parseFloat(qs.Get("x"))
	if err != nil {
		return VerifyQuery{}, fmt.Errorf("x: %w", err)
	}
	y, err := parseFloat(qs.Get("y"))
	if err != nil {
		return VerifyQuery{}, fmt.Errorf("y: %w", err)
	}
	p := proj.PointFromLambert93(x, y)
	return VerifyQuery{Point: &p}, nil
}

func parseFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("parse float: %w", err)
	}
	return f, nil
}

// ReportSource provides the per-file load report.
type ReportSource interface {
	Report() []store.FileReport
}

// HandleDatasets lists the loaded datasets and per-file load outcomes.
func HandleDatasets(src ReportSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		report := src.Report()
		if report == nil {
			report = []store.FileReport{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"datasets": report,
		})
		observability.ObserveHTTP(r.Method, "/datasets", http.StatusOK, time.Since(start).Seconds())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
