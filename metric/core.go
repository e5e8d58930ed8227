// Package metric exposes Prometheus instrumentation for mapping,
// query, and store operations.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the framework-level metrics shared by templates and
// store drivers.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	ConversionsTotal  *prometheus.CounterVec
	QueriesTotal      *prometheus.CounterVec
	ErrorsTotal       *prometheus.CounterVec

	StoreConnected  prometheus.Gauge
	StoreReconnects prometheus.Counter
}

// NewMetrics creates a Metrics instance with all framework metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "jnosql",
				Subsystem: "operations",
				Name:      "total",
				Help:      "Total number of template operations",
			},
			[]string{"entity", "operation", "status"},
		),

		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "jnosql",
				Subsystem: "operations",
				Name:      "duration_seconds",
				Help:      "Template operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"entity", "operation"},
		),

		ConversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "jnosql",
				Subsystem: "mapping",
				Name:      "conversions_total",
				Help:      "Total number of entity conversions",
			},
			[]string{"entity", "direction", "status"},
		),

		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "jnosql",
				Subsystem: "query",
				Name:      "total",
				Help:      "Total number of parsed queries",
			},
			[]string{"verb", "status"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "jnosql",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors by class",
			},
			[]string{"component", "class"},
		),

		StoreConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "jnosql",
				Subsystem: "store",
				Name:      "connected",
				Help:      "Store connection status (0=disconnected, 1=connected)",
			},
		),

		StoreReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "jnosql",
				Subsystem: "store",
				Name:      "reconnects_total",
				Help:      "Total number of store reconnections",
			},
		),
	}
}

// RecordOperation increments the operation counter.
func (m *Metrics) RecordOperation(entity, operation, status string) {
	m.OperationsTotal.WithLabelValues(entity, operation, status).Inc()
}

// RecordOperationDuration records how long an operation took.
func (m *Metrics) RecordOperationDuration(entity, operation string, duration time.Duration) {
	m.OperationDuration.WithLabelValues(entity, operation).Observe(duration.Seconds())
}

// RecordConversion increments the conversion counter. Direction is
// "to_entity" or "to_document".
func (m *Metrics) RecordConversion(entity, direction, status string) {
	m.ConversionsTotal.WithLabelValues(entity, direction, status).Inc()
}

// RecordQuery increments the parsed-query counter.
func (m *Metrics) RecordQuery(verb, status string) {
	m.QueriesTotal.WithLabelValues(verb, status).Inc()
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(component, class string) {
	m.ErrorsTotal.WithLabelValues(component, class).Inc()
}

// RecordStoreStatus updates the store connection gauge.
func (m *Metrics) RecordStoreStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	m.StoreConnected.Set(value)
}

// RecordStoreReconnect increments the reconnection counter.
func (m *Metrics) RecordStoreReconnect() {
	m.StoreReconnects.Inc()
}
