package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AggregationDuration observes the wall time of one full aggregation
	// call, labeled by outcome ("ok" or "error").
	AggregationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "position_aggregation_duration_seconds",
			Help:    "Duration of cross-chain position aggregation calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// NetworkFetchFailures counts per-network position fetch failures.
	NetworkFetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "position_network_fetch_failures_total",
			Help: "Per-network position fetch failures, by network identifier.",
		},
		[]string{"network"},
	)

	// NetworkFetchDuration observes per-network fetch latency.
	NetworkFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "position_network_fetch_duration_seconds",
			Help:    "Duration of per-network position fetches.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"network"},
	)

	// PositionCacheHits counts raw-position cache lookups, by result.
	PositionCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "position_cache_lookups_total",
			Help: "Raw position cache lookups, by result (hit or miss).",
		},
		[]string{"result"},
	)
)

// MustRegisterMetrics registers all collectors with the default registry.
// Must be called exactly once at startup.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		AggregationDuration,
		NetworkFetchFailures,
		NetworkFetchDuration,
		PositionCacheHits,
	)
}
