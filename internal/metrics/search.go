package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search and indexing Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of aggregated searches",
		},
		[]string{"mode", "status"}, // mode: single/all/spillover
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Aggregated search duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	CollectionSearchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_search_errors_total",
			Help:      "Per-collection search failures tolerated by fan-out",
		},
		[]string{"collection"},
	)

	DocumentsIndexedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_indexed_total",
			Help:      "Documents processed by the indexer",
		},
		[]string{"collection", "result"}, // created/replaced/skipped/failed
	)

	IndexingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "indexing_duration_seconds",
			Help:      "Duration of a full collection indexing run",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"collection"},
	)

	IndexingInProgress = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "indexing_in_progress",
			Help:      "1 while a collection is being indexed",
		},
		[]string{"collection"},
	)
)

var registerSearch sync.Once

// RegisterSearchMetrics registers search and indexing metrics with the default registry.
// Repeated calls are no-ops.
func RegisterSearchMetrics() {
	registerSearch.Do(func() {
		prometheus.MustRegister(
			SearchRequestsTotal,
			SearchDuration,
			CollectionSearchErrorsTotal,
			DocumentsIndexedTotal,
			IndexingDuration,
			IndexingInProgress,
		)
	})
}
