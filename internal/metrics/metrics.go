// Package metrics exposes Prometheus counters for remote failures, fixture
// fallbacks, exports and filter latency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RemoteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qadesk_remote_failures_total",
		Help: "Backend calls that failed and were applied locally only.",
	}, []string{"entity", "op"})

	FixtureFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qadesk_fixture_fallbacks_total",
		Help: "Fetches that fell back to the built-in fixture set.",
	}, []string{"entity"})

	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qadesk_exports_total",
		Help: "Generated export files by kind.",
	}, []string{"kind"})

	FilterSeconds = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "qadesk_filter_seconds",
		Help:       "Time spent filtering and counting a view.",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"view"})
)

// RemoteFailure records a backend call that failed.
func RemoteFailure(entity, op string) {
	RemoteFailures.WithLabelValues(entity, op).Inc()
}

// Fallback records a fetch that substituted fixtures.
func Fallback(entity string) {
	FixtureFallbacks.WithLabelValues(entity).Inc()
}

// Export records a generated file.
func Export(kind string) {
	Exports.WithLabelValues(kind).Inc()
}
