package linepipe

import (
	"time"

	"github.com/panjf2000/ants/v2"
)

// Pool returns the underlying pool
func (w *Workers) Pool() *ants.Pool {
	if w == nil {
		return nil
	}
	return w.pool
}

// SetGetPollInterval changes how long consumers of queues created afterwards wait before re-checking an empty queue,
// and returns a function restoring the previous value.
func SetGetPollInterval(d time.Duration) (restore func()) {
	prev := getPollInterval
	getPollInterval = d
	return func() { getPollInterval = prev }
}

// Queue returns the stage queue, nil when not initialized.
func (r *Runtime) Queue() *Queue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue
}
