package linepipe

import (
	"github.com/panjf2000/ants/v2"
)

// Workers hosts the long running goroutines of a pipeline: one per stage plus the feeder.
//
// A nil Workers, or one built with size 0, has no pool: every task gets its own goroutine.
type Workers struct {
	pool *ants.Pool
}

// NewWorkersWithOptions builds a pool of size goroutines. The pool never queues tasks: a Go call on a full pool
// fails with ants.ErrPoolOverload instead of waiting for a slot that a stage worker would only free at shutdown.
func NewWorkersWithOptions(size int, opts ...ants.Option) (*Workers, error) {
	if size == 0 {
		return &Workers{}, nil
	}
	opts = append(opts[:len(opts):len(opts)], ants.WithNonblocking(true))
	pool, err := ants.NewPool(size, opts...)
	if err != nil {
		return nil, err
	}
	return &Workers{pool: pool}, nil
}

// NewWorkers builds a pool of size goroutines with default options.
func NewWorkers(size int) (*Workers, error) {
	return NewWorkersWithOptions(size)
}

// Go runs task on a pool goroutine.
func (w *Workers) Go(task func()) error {
	if w == nil || w.pool == nil {
		go task()
		return nil
	}
	return w.pool.Submit(task)
}

// Running returns the number of pool goroutines currently busy. It is always 0 without a pool.
func (w *Workers) Running() int {
	if w == nil || w.pool == nil {
		return 0
	}
	return w.pool.Running()
}

// Release releases the underlying pool. Tasks already running are not interrupted.
func (w *Workers) Release() {
	if w == nil || w.pool == nil {
		return
	}
	w.pool.Release()
}
