package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Resolutions tracks completed resolutions per operation and provenance
	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyclient_resolutions_total",
			Help: "Total number of resolved operations",
		},
		[]string{"operation", "provenance"},
	)

	// ResolutionFailures tracks resolutions that surfaced an error
	ResolutionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyclient_resolution_failures_total",
			Help: "Total number of operations that failed to resolve",
		},
		[]string{"operation"},
	)

	// Attempts tracks strategy attempts by outcome class
	Attempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyclient_attempts_total",
			Help: "Total number of strategy attempts",
		},
		[]string{"operation", "strategy", "outcome"},
	)

	// AttemptLatency tracks the duration of strategy attempts
	AttemptLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyclient_attempt_latency_seconds",
			Help:    "Strategy attempt latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "strategy"},
	)

	// SessionClears counts stored tokens discarded after a 401
	SessionClears = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studyclient_session_clears_total",
			Help: "Total number of sessions cleared after the backend rejected the token",
		},
	)

	// CacheEntries tracks the size of the last-known-good cache
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studyclient_cache_entries",
			Help: "Number of entries in the response cache",
		},
	)
)
