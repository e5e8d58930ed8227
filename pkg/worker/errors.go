package worker

import "errors"

var (
	// ErrPoolNotStarted indicates work was submitted before Start.
	ErrPoolNotStarted = errors.New("worker pool not started")

	// ErrPoolStopped indicates work was submitted after Stop.
	ErrPoolStopped = errors.New("worker pool stopped")

	// ErrPoolAlreadyStarted indicates Start was called twice.
	ErrPoolAlreadyStarted = errors.New("worker pool already started")

	// ErrQueueFull indicates TrySubmit found the queue at capacity.
	ErrQueueFull = errors.New("worker pool queue full")

	// ErrNilProcessor indicates the pool was created without a processor.
	ErrNilProcessor = errors.New("processor function cannot be nil")

	// ErrStopTimeout indicates workers did not drain within the timeout.
	ErrStopTimeout = errors.New("timeout waiting for workers to stop")
)
