// Package observability exposes Prometheus metrics for the service.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

var (
	httpRequestsTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	verifyTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "verify_queries_total",
			Help: "Zone verification queries by outcome.",
		},
		[]string{"outcome"},
	)

	zoneMatchesTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "zone_matches_total",
			Help: "Matched zone features by plan type.",
		},
		[]string{"plan_type"},
	)

	geocodeLatencySeconds = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geocode_latency_seconds",
			Help:    "Latency of geocoder calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"outcome"},
	)

	cacheResults = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_cache_results_total",
			Help: "Geocode cache results by outcome.",
		},
		[]string{"outcome"},
	)

	datasetsLoaded = promauto.With(registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "zone_datasets_loaded",
			Help: "Number of zone datasets currently loaded.",
		},
	)

	featuresLoaded = promauto.With(registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "zone_features_loaded",
			Help: "Total zone features across loaded datasets.",
		},
	)

	buildInfo = promauto.With(registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary (value is always 1).",
		},
		[]string{"version"},
	)
)

// Handler serves the metrics registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

// ObserveVerify records one verification query: outcome is match, no_match
// or error.
func ObserveVerify(outcome string) {
	verifyTotal.WithLabelValues(outcome).Inc()
}

func IncZoneMatch(planType string) {
	zoneMatchesTotal.WithLabelValues(planType).Inc()
}

func ObserveGeocode(err error, durationSeconds float64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	geocodeLatencySeconds.WithLabelValues(outcome).Observe(durationSeconds)
}

func IncCacheHit()   { cacheResults.WithLabelValues("hit").Inc() }
func IncCacheMiss()  { cacheResults.WithLabelValues("miss").Inc() }
func IncCacheError() { cacheResults.WithLabelValues("error").Inc() }

// SetDatasetsLoaded publishes the size of the current dataset snapshot.
func SetDatasetsLoaded(datasets, features int) {
	datasetsLoaded.Set(float64(datasets))
	featuresLoaded.Set(float64(features))
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
