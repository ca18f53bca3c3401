// Package metrics registers the Prometheus collectors for the motivation
// pipeline. Collectors are package-level and registered once with the default
// registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Extractions counts orchestrator outcomes per jurisdiction.
	Extractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "motivation_extractions_total",
		Help: "Record extractions by jurisdiction and outcome",
	}, []string{"jurisdiction", "outcome"})

	// CacheRequests counts cache lookups by cache name and result.
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "motivation_cache_requests_total",
		Help: "Result cache lookups by cache and result",
	}, []string{"cache", "result"})

	// Analyses counts document analyses by analyzer and outcome.
	Analyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "motivation_analysis_total",
		Help: "Document corpus analyses by analyzer and outcome",
	}, []string{"analyzer", "outcome"})

	// AdapterDuration observes remote source calls.
	AdapterDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "motivation_adapter_duration_seconds",
		Help:    "Duration of source adapter operations",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"jurisdiction", "operation"})

	// Scores observes emitted motivation scores.
	Scores = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "motivation_score",
		Help:    "Distribution of emitted motivation scores",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	}, []string{"source"})
)
