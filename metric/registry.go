package metric

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ediel-queiroz/jnosql/errors"
)

// Registry manages the lifecycle of framework and driver metrics on a
// dedicated Prometheus registry.
type Registry struct {
	prometheusRegistry *prometheus.Registry
	metrics            *Metrics
	registered         map[string]prometheus.Collector
	mu                 sync.RWMutex
}

// NewRegistry creates a registry preloaded with the framework metrics and
// the Go runtime collectors.
func NewRegistry() *Registry {
	r := &Registry{
		prometheusRegistry: prometheus.NewRegistry(),
		metrics:            NewMetrics(),
		registered:         make(map[string]prometheus.Collector),
	}

	r.prometheusRegistry.MustRegister(
		r.metrics.OperationsTotal,
		r.metrics.OperationDuration,
		r.metrics.ConversionsTotal,
		r.metrics.QueriesTotal,
		r.metrics.ErrorsTotal,
		r.metrics.StoreConnected,
		r.metrics.StoreReconnects,
	)
	r.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// PrometheusRegistry returns the underlying Prometheus registry, for
// wiring into an HTTP handler.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// CoreMetrics returns the framework metrics.
func (r *Registry) CoreMetrics() *Metrics {
	return r.metrics
}

// Register adds a driver-specific collector under a scoped name. A second
// registration with the same scope and name fails.
func (r *Registry) Register(scope, name string, collector prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", scope, name)
	if _, exists := r.registered[key]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("metric %s already registered for scope %s", name, scope),
			"metric", "register", "duplicate metric registration")
	}

	if err := r.prometheusRegistry.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if stderrors.As(err, &alreadyRegErr) {
			return errors.WrapInvalid(err, "metric", "register",
				fmt.Sprintf("prometheus conflict for metric %s", name))
		}
		return errors.WrapFatal(err, "metric", "register",
			"failed to register collector with prometheus")
	}

	r.registered[key] = collector
	return nil
}

// Unregister removes a previously registered collector. It reports whether
// the collector was found and removed.
func (r *Registry) Unregister(scope, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", scope, name)
	collector, exists := r.registered[key]
	if !exists {
		return false
	}
	if !r.prometheusRegistry.Unregister(collector) {
		return false
	}
	delete(r.registered, key)
	return true
}
