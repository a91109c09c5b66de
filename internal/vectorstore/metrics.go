// Prometheus metrics for vector store operations.
package vectorstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts store operations.
	// Labels: operation (create, upsert, search, ...), result (success, error).
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mindmirror",
			Subsystem: "vectorstore",
			Name:      "operations_total",
			Help:      "Total number of vector store operations",
		},
		[]string{"operation", "result"},
	)

	// OperationDuration tracks operation latency.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mindmirror",
			Subsystem: "vectorstore",
			Name:      "operation_duration_seconds",
			Help:      "Duration of vector store operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// PointsUpserted counts points written, labeled by collection.
	PointsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mindmirror",
			Subsystem: "vectorstore",
			Name:      "points_upserted_total",
			Help:      "Total number of points written to collections",
		},
		[]string{"collection"},
	)

	// SearchResultsReturned tracks result-set sizes.
	SearchResultsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mindmirror",
			Subsystem: "vectorstore",
			Name:      "search_results_returned",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)
)

// observe records the outcome and latency of one store operation.
func observe(operation string, seconds float64, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	OperationsTotal.WithLabelValues(operation, result).Inc()
	OperationDuration.WithLabelValues(operation).Observe(seconds)
}
