// Package metrics provides Prometheus metrics for the conversations service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upsert outcome labels recorded by the conversation core.
const (
	OutcomeCreated       = "created"
	OutcomeExtended      = "extended"
	OutcomeConflictRetry = "conflict_retry"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Store metrics
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec

	// Upsert decision metrics
	UpsertOutcomesTotal *prometheus.CounterVec
}

// New creates all service metrics and registers them on reg. Passing a fresh
// registry per instance keeps tests independent of global state.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conversations_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "conversations_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),

		StoreOperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conversations_store_operations_total",
			Help: "Total number of document store operations",
		}, []string{"operation", "status"}),

		StoreOperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "conversations_store_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"operation"}),

		UpsertOutcomesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conversations_upsert_outcomes_total",
			Help: "Outcomes of conversation upsert decisions",
		}, []string{"outcome"}),
	}
}

// RecordHTTPRequest records an HTTP request with its status.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordStoreOperation records a document store operation.
func (m *Metrics) RecordStoreOperation(operation, status string, duration time.Duration) {
	m.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
	m.StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordUpsertOutcome records a single upsert decision outcome.
func (m *Metrics) RecordUpsertOutcome(outcome string) {
	m.UpsertOutcomesTotal.WithLabelValues(outcome).Inc()
}
