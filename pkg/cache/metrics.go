package cache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ediel-queiroz/jnosql/metric"
)

// cacheMetrics mirrors the cache's counters into Prometheus. The scope
// becomes the "cache" label so several caches can share one registry.
type cacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	size      prometheus.Gauge
}

func newCacheMetrics(registry *metric.Registry, scope string) (*cacheMetrics, error) {
	labels := prometheus.Labels{"cache": scope}

	m := &cacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jnosql", Subsystem: "cache", Name: "hits_total",
			Help:        "Lookups served from the cache.",
			ConstLabels: labels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jnosql", Subsystem: "cache", Name: "misses_total",
			Help:        "Lookups that fell through to the store.",
			ConstLabels: labels,
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jnosql", Subsystem: "cache", Name: "evictions_total",
			Help:        "Entries evicted by the size bound or TTL.",
			ConstLabels: labels,
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "jnosql", Subsystem: "cache", Name: "entries",
			Help:        "Current number of cached entries.",
			ConstLabels: labels,
		}),
	}

	for name, collector := range map[string]prometheus.Collector{
		"hits_total":      m.hits,
		"misses_total":    m.misses,
		"evictions_total": m.evictions,
		"entries":         m.size,
	} {
		if err := registry.Register(scope, name, collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}
