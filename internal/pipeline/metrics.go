package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// queriesTotal counts answered queries by composition mode.
	// Labels: mode (general_knowledge, grounded)
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medrag",
			Subsystem: "pipeline",
			Name:      "queries_total",
			Help:      "Total number of queries answered by composition mode",
		},
		[]string{"mode"},
	)

	// blockedTotal counts queries rejected by the safety classifier.
	// Labels: category (pii_request, personal_advice, suspicious_query)
	blockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medrag",
			Subsystem: "pipeline",
			Name:      "blocked_total",
			Help:      "Total number of queries blocked by the safety classifier",
		},
		[]string{"category"},
	)

	// failuresTotal counts collaborator failures by stage.
	// Labels: stage (retrieval, generation)
	failuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medrag",
			Subsystem: "pipeline",
			Name:      "failures_total",
			Help:      "Total number of collaborator failures by stage",
		},
		[]string{"stage"},
	)

	// stageDuration tracks per-stage latency.
	// Labels: stage (safety, retrieval, generation)
	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medrag",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// candidatesRetrieved tracks how many candidates each retrieval
	// returned after sentinel filtering.
	candidatesRetrieved = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "medrag",
			Subsystem: "pipeline",
			Name:      "candidates_retrieved",
			Help:      "Number of candidates returned per retrieval",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)
)
