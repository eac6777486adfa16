// Package observability exposes Prometheus metrics for the HTTP surface and
// the accounting engine's operations.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled HTTP requests.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitabu_http_requests_total",
		Help: "Total HTTP requests handled, by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration observes request latency per route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kitabu_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	engineOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitabu_engine_operations_total",
		Help: "Engine operations by operation and result.",
	}, []string{"operation", "result"})
)

// RecordOperation counts one engine operation outcome.
func RecordOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	engineOperationsTotal.WithLabelValues(operation, result).Inc()
}
