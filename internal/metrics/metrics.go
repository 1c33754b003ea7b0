package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScreeningRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_runs_total",
			Help: "Total number of screening runs by terminal outcome",
		},
		[]string{"outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "screening_stage_duration_seconds",
			Help:    "Duration of each screening pipeline stage in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	SoftFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_soft_failures_total",
			Help: "Per-candidate failures that degraded to a fallback value",
		},
		[]string{"stage", "kind"},
	)

	EmbeddingAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_attempts_total",
			Help: "Embedding provider calls by result",
		},
		[]string{"result"},
	)

	EmbeddingCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_cache_lookups_total",
			Help: "Embedding cache lookups by result",
		},
		[]string{"result"},
	)

	WorkerJobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "screening_worker_jobs_active",
			Help: "Number of screening runs currently being processed",
		},
	)
)
