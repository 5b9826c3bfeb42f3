package linepipe

import (
	"fmt"
	"sync"
	"time"
)

// getPollInterval bounds a consumer's wait, after which it re-checks the queue state. Queues read it once, when
// created.
var getPollInterval = 100 * time.Millisecond

// Queue is a fixed-capacity FIFO of lines.
//
// All of count, head, tail and alive are guarded by mu, held from the condition check to the mutation. The three
// monitors only carry wakeups: notFull for producers, notEmpty for the consumer, finished for whoever waits on the
// owning stage.
type Queue struct {
	mu    sync.Mutex
	items []string
	head  int
	tail  int
	count int
	alive bool
	poll  time.Duration

	notFull  *Monitor
	notEmpty *Monitor
	finished *Monitor
}

// NewQueue allocates an empty queue able to hold capacity items.
func NewQueue(capacity int) (*Queue, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	return &Queue{
		items:    make([]string, capacity),
		alive:    true,
		poll:     getPollInterval,
		notFull:  NewMonitor(),
		notEmpty: NewMonitor(),
		finished: NewMonitor(),
	}, nil
}

// Put appends item, blocking while the queue is full. It returns ErrQueueClosed if the queue is, or becomes while
// waiting, finished: the item is not enqueued.
func (q *Queue) Put(item string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == len(q.items) && q.alive {
		q.notFull.WaitLocked(&q.mu)
	}
	if !q.alive {
		return ErrQueueClosed
	}

	q.items[q.tail] = item
	q.tail = (q.tail + 1) % len(q.items)
	q.count++

	q.notEmpty.Signal()
	if q.count < len(q.items) {
		// A single pending flag may stand for several freed slots: pass it on to the next producer.
		q.notFull.Signal()
	}
	return nil
}

// Get removes the oldest item, blocking while the queue is empty. ok is false once the queue is finished and
// drained: nothing will ever be produced again.
func (q *Queue) Get() (item string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 && q.alive {
		// A timeout is not a signal: loop and look at count and alive again.
		_ = q.notEmpty.WaitLockedTimeout(&q.mu, q.poll)
	}
	if q.count == 0 {
		return "", false
	}

	item = q.items[q.head]
	q.items[q.head] = ""
	q.head = (q.head + 1) % len(q.items)
	q.count--

	q.notFull.Signal()
	if q.count > 0 {
		q.notEmpty.Signal()
	}
	return item, true
}

// SignalFinished marks the queue as no longer alive and wakes every waiter on it.
func (q *Queue) SignalFinished() {
	q.mu.Lock()
	q.alive = false
	q.mu.Unlock()

	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
	q.finished.Broadcast()
}

// WaitFinished blocks until SignalFinished has been called.
func (q *Queue) WaitFinished() {
	q.finished.Wait()
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return len(q.items)
}

// Alive reports whether SignalFinished has not been called yet.
func (q *Queue) Alive() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.alive
}
