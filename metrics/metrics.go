// Package metrics provides Prometheus metrics for the Doofinder API clients.
// It tracks request counts, latencies, error kinds, retries and rate limiting.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "godoof"
)

var (
	// APIRequestsTotal counts API requests by operation and HTTP status
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_requests_total",
		Help:      "Total Doofinder API requests by operation and status",
	}, []string{"operation", "status"})

	// APIRequestDuration measures API request latency
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Doofinder API request latency by operation",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"operation"})

	// APIErrors counts classified API errors by kind
	APIErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_errors_total",
		Help:      "Doofinder API errors by operation and error kind",
	}, []string{"operation", "kind"})

	// APIRetries counts request retries
	APIRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_retries_total",
		Help:      "Doofinder API retry count by operation",
	}, []string{"operation"})

	// RateLimitWaits counts requests that had to wait for the client-side limiter
	RateLimitWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rate_limit_waits_total",
		Help:      "Requests that waited for the client-side rate limiter",
	})

	// StreamedBytes counts bytes read from streamed responses
	StreamedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "streamed_bytes_total",
		Help:      "Bytes read from streamed API responses by operation",
	}, []string{"operation"})
)

// RecordAPICall records a completed API call. A zero status means the
// request never produced a response.
func RecordAPICall(operation string, duration float64, statusCode int) {
	status := "network_error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	APIRequestsTotal.WithLabelValues(operation, status).Inc()
	APIRequestDuration.WithLabelValues(operation).Observe(duration)
}

// RecordAPIError records a classified API error
func RecordAPIError(operation, kind string) {
	APIErrors.WithLabelValues(operation, kind).Inc()
}

// RecordRetry records a retried request
func RecordRetry(operation string) {
	APIRetries.WithLabelValues(operation).Inc()
}

// RecordStreamedBytes adds n bytes to the streamed counter
func RecordStreamedBytes(operation string, n int) {
	if n > 0 {
		StreamedBytes.WithLabelValues(operation).Add(float64(n))
	}
}
