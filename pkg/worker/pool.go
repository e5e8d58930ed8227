// Package worker provides a generic bounded worker pool. The template
// layer runs bulk writes through it so a batch of entities fans out over
// a fixed number of store round trips at a time.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ediel-queiroz/jnosql/metric"
)

// Pool processes work items of type T with a fixed number of workers.
type Pool[T any] struct {
	workers   int
	queueSize int
	processor func(context.Context, T) error

	workChan chan T
	wg       sync.WaitGroup

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool
	// senders tracks submissions in flight between the stopped check and
	// the channel send, so Stop never closes workChan under a sender.
	senders sync.WaitGroup

	submitted atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64

	metrics *poolMetrics
}

// Option configures a pool.
type Option[T any] func(*Pool[T]) error

// WithMetrics exposes the pool's counters through the framework's metric
// registry under the given scope.
func WithMetrics[T any](registry *metric.Registry, scope string) Option[T] {
	return func(p *Pool[T]) error {
		if registry == nil || scope == "" {
			return nil
		}
		m, err := newPoolMetrics(registry, scope)
		if err != nil {
			return err
		}
		p.metrics = m
		return nil
	}
}

// NewPool creates a pool that runs processor on every submitted item.
func NewPool[T any](workers, queueSize int, processor func(context.Context, T) error, opts ...Option[T]) (*Pool[T], error) {
	if processor == nil {
		return nil, ErrNilProcessor
	}
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = workers * 2
	}

	p := &Pool[T]{
		workers:   workers,
		queueSize: queueSize,
		processor: processor,
		workChan:  make(chan T, queueSize),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Start launches the workers. The context bounds every processor call.
func (p *Pool[T]) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.started {
		return ErrPoolAlreadyStarted
	}
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	p.started = true
	return nil
}

// Submit queues one item, blocking until a worker accepts it or the
// context ends.
func (p *Pool[T]) Submit(ctx context.Context, work T) error {
	p.lifecycleMu.Lock()
	if !p.started {
		p.lifecycleMu.Unlock()
		return ErrPoolNotStarted
	}
	if p.stopped {
		p.lifecycleMu.Unlock()
		return ErrPoolStopped
	}
	p.senders.Add(1)
	p.lifecycleMu.Unlock()
	defer p.senders.Done()

	select {
	case p.workChan <- work:
		p.submitted.Add(1)
		if p.metrics != nil {
			p.metrics.submitted.Inc()
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit queues one item without blocking; a full queue fails with
// ErrQueueFull.
func (p *Pool[T]) TrySubmit(work T) error {
	p.lifecycleMu.Lock()
	if !p.started {
		p.lifecycleMu.Unlock()
		return ErrPoolNotStarted
	}
	if p.stopped {
		p.lifecycleMu.Unlock()
		return ErrPoolStopped
	}
	p.senders.Add(1)
	p.lifecycleMu.Unlock()
	defer p.senders.Done()

	select {
	case p.workChan <- work:
		p.submitted.Add(1)
		if p.metrics != nil {
			p.metrics.submitted.Inc()
		}
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop accepts no further work and waits for queued items to drain,
// up to the timeout.
func (p *Pool[T]) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	if !p.started || p.stopped {
		p.lifecycleMu.Unlock()
		return nil
	}
	p.stopped = true
	p.lifecycleMu.Unlock()

	// Every sender either observed stopped under the lock or is counted
	// in senders; once they drain the channel can close safely.
	p.senders.Wait()
	close(p.workChan)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		Workers:    p.workers,
		QueueDepth: len(p.workChan),
		Submitted:  p.submitted.Load(),
		Processed:  p.processed.Load(),
		Failed:     p.failed.Load(),
	}
}

// PoolStats is a point-in-time view of pool activity.
type PoolStats struct {
	Workers    int
	QueueDepth int
	Submitted  int64
	Processed  int64
	Failed     int64
}

func (p *Pool[T]) worker(ctx context.Context) {
	defer p.wg.Done()
	for work := range p.workChan {
		start := time.Now()
		err := p.processor(ctx, work)
		p.processed.Add(1)
		status := "success"
		if err != nil {
			p.failed.Add(1)
			status = "error"
		}
		if p.metrics != nil {
			p.metrics.processed.Inc()
			if err != nil {
				p.metrics.failed.Inc()
			}
			p.metrics.duration.WithLabelValues(status).Observe(time.Since(start).Seconds())
		}
	}
}

type poolMetrics struct {
	submitted prometheus.Counter
	processed prometheus.Counter
	failed    prometheus.Counter
	duration  *prometheus.HistogramVec
}

func newPoolMetrics(registry *metric.Registry, scope string) (*poolMetrics, error) {
	labels := prometheus.Labels{"pool": scope}

	m := &poolMetrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jnosql", Subsystem: "worker", Name: "submitted_total",
			Help:        "Work items submitted to the pool.",
			ConstLabels: labels,
		}),
		processed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jnosql", Subsystem: "worker", Name: "processed_total",
			Help:        "Work items processed.",
			ConstLabels: labels,
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jnosql", Subsystem: "worker", Name: "failed_total",
			Help:        "Work items whose processor returned an error.",
			ConstLabels: labels,
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jnosql", Subsystem: "worker", Name: "processing_duration_seconds",
			Help:        "Time spent processing one work item.",
			ConstLabels: labels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"status"}),
	}

	for name, collector := range map[string]prometheus.Collector{
		"submitted_total":             m.submitted,
		"processed_total":             m.processed,
		"failed_total":                m.failed,
		"processing_duration_seconds": m.duration,
	} {
		if err := registry.Register(scope, name, collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}
