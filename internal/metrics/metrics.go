// Package metrics defines the Prometheus collectors exported by the matcher.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Match runs
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcher_runs_total",
			Help: "Total number of match runs by strategy and result",
		},
		[]string{"strategy", "result"}, // result: "success", "degraded", "dry_run", "error"
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matcher_run_duration_seconds",
			Help:    "Duration of match runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CandidatesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcher_candidates_scored_total",
			Help: "Total number of candidates scored by score source",
		},
		[]string{"source"}, // "ml", "rule"
	)

	InferenceFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcher_inference_fallbacks_total",
			Help: "Total number of rule-based fallbacks by reason",
		},
		[]string{"reason"}, // "unavailable", "probe_error", "invocation"
	)

	// Job cache
	JobCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matcher_job_cache_hits_total",
			Help: "Total number of job cache hits",
		},
	)

	JobCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matcher_job_cache_misses_total",
			Help: "Total number of job cache misses",
		},
	)

	// Events
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcher_events_published_total",
			Help: "Total number of match run events by result",
		},
		[]string{"result"},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "matcher_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcher_circuit_breaker_requests_total",
			Help: "Total number of requests through a circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcher_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcher_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matcher_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordRun records the outcome and duration of one match run.
func RecordRun(strategy, result string, duration time.Duration) {
	RunsTotal.WithLabelValues(strategy, result).Inc()
	RunDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records an API request with its latency.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
