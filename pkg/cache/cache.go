// Package cache provides a generic, thread-safe LRU cache with optional
// per-entry TTL. The template layer uses it to serve repeated lookups of
// the same entity without a store round trip. Statistics are always
// collected; Prometheus export is opt-in via WithMetrics.
package cache

import (
	"container/list"
	"errors"
	"sync"
	"time"

	jerrors "github.com/ediel-queiroz/jnosql/errors"
)

// ErrInvalidSize is returned when a cache is created with a non-positive bound.
var ErrInvalidSize = errors.New("cache size must be positive")

// Cache is a generic key-value cache parameterized by value type V.
type Cache[V any] interface {
	// Get retrieves a value by key. Expired entries count as misses.
	Get(key string) (V, bool)

	// Set stores a value. Returns true if a new entry was created,
	// false if an existing one was updated.
	Set(key string, value V) bool

	// Delete removes an entry. Returns true if the key existed.
	Delete(key string) bool

	// Clear removes all entries.
	Clear()

	// Size returns the current number of entries.
	Size() int

	// Stats returns the cache statistics snapshot.
	Stats() Statistics
}

// EvictCallback is invoked when an entry is evicted by the size bound
// or removed as expired. It is not called for explicit deletes.
type EvictCallback[V any] func(key string, value V)

type lruEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time // zero means no expiry
}

func (e *lruEntry[V]) isExpired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

type lruCache[V any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List
	stats   *statistics
	metrics *cacheMetrics
	evictFn EvictCallback[V]
}

// New creates an LRU cache holding at most maxSize entries. A positive
// ttl additionally expires entries that age out before being evicted;
// expiry is lazy, checked on access.
func New[V any](maxSize int, ttl time.Duration, opts ...Option[V]) (Cache[V], error) {
	if maxSize <= 0 {
		return nil, jerrors.WrapInvalid(ErrInvalidSize, "cache", "New", "maxSize must be positive")
	}

	options := &cacheOptions[V]{}
	for _, opt := range opts {
		opt(options)
	}

	var metrics *cacheMetrics
	if options.registry != nil {
		var err error
		metrics, err = newCacheMetrics(options.registry, options.scope)
		if err != nil {
			return nil, err
		}
	}

	return &lruCache[V]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		stats:   newStatistics(),
		metrics: metrics,
		evictFn: options.evictCallback,
	}, nil
}

func (c *lruCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		c.miss()
		return zero, false
	}

	entry := elem.Value.(*lruEntry[V])
	if entry.isExpired() {
		c.removeElement(elem, true)
		c.miss()
		return zero, false
	}

	c.order.MoveToFront(elem)
	c.stats.hit()
	if c.metrics != nil {
		c.metrics.hits.Inc()
	}
	return entry.value, true
}

func (c *lruCache[V]) Set(key string, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = time.Now().Add(c.ttl)
	}

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*lruEntry[V])
		entry.value = value
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		c.stats.set()
		return false
	}

	elem := c.order.PushFront(&lruEntry[V]{key: key, value: value, expiresAt: expiresAt})
	c.items[key] = elem
	c.stats.set()

	for c.order.Len() > c.maxSize {
		c.removeElement(c.order.Back(), true)
	}
	c.syncSize()
	return true
}

func (c *lruCache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeElement(elem, false)
	c.stats.del()
	c.syncSize()
	return true
}

func (c *lruCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.syncSize()
}

func (c *lruCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *lruCache[V]) Stats() Statistics {
	return c.stats.snapshot()
}

// removeElement drops an entry; callers hold the lock.
func (c *lruCache[V]) removeElement(elem *list.Element, evicted bool) {
	entry := elem.Value.(*lruEntry[V])
	c.order.Remove(elem)
	delete(c.items, entry.key)
	if evicted {
		c.stats.eviction()
		if c.metrics != nil {
			c.metrics.evictions.Inc()
		}
		if c.evictFn != nil {
			c.evictFn(entry.key, entry.value)
		}
	}
}

func (c *lruCache[V]) miss() {
	c.stats.miss()
	if c.metrics != nil {
		c.metrics.misses.Inc()
	}
}

func (c *lruCache[V]) syncSize() {
	if c.metrics != nil {
		c.metrics.size.Set(float64(c.order.Len()))
	}
}
