package cache

import (
	"github.com/ediel-queiroz/jnosql/metric"
)

// Option configures cache behavior.
type Option[V any] func(*cacheOptions[V])

type cacheOptions[V any] struct {
	registry      *metric.Registry
	scope         string
	evictCallback EvictCallback[V]
}

// WithMetrics exposes the cache's counters through the framework's
// metric registry under the given scope. A nil registry is ignored.
func WithMetrics[V any](registry *metric.Registry, scope string) Option[V] {
	return func(opts *cacheOptions[V]) {
		if registry != nil && scope != "" {
			opts.registry = registry
			opts.scope = scope
		}
	}
}

// WithEvictionCallback sets a callback invoked for size and TTL evictions.
func WithEvictionCallback[V any](callback EvictCallback[V]) Option[V] {
	return func(opts *cacheOptions[V]) {
		opts.evictCallback = callback
	}
}
