package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_events_collected_total",
		Help: "The total number of candidate events fetched from connectors",
	}, []string{"source"})

	IdentityCollisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_identity_collisions_total",
		Help: "The total number of events rejected by the identity filter",
	}, []string{"source"})

	URLCollapsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_url_collapsed_total",
		Help: "The total number of cross-listed items dropped within a collection run",
	})

	DuplicatesMarked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_duplicates_marked_total",
		Help: "The total number of events marked duplicate, by matching layer",
	}, []string{"kind"})

	GroupingFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_grouping_failures_total",
		Help: "The total number of semantic grouping calls that failed open",
	})

	PredictionWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_prediction_writes_total",
		Help: "The total number of prediction write attempts, by outcome",
	}, []string{"status"})

	DuplicateRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_duplicate_runs_total",
		Help: "The total number of same-day workflow re-invocations detected",
	}, []string{"workflow"})

	EventsScored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_events_scored_total",
		Help: "The total number of canonical events scored by the analyzer",
	})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulse_llm_request_duration_seconds",
		Help:    "Duration of LLM requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)
