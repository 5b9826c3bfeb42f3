package linepipe

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sink receives the output of a stage. Ownership of item passes to the sink.
type Sink func(item string) error

// Stage is what a Pipeline requires from every stage it loads.
//
// The lifecycle is Init, Attach (all but the last stage), any number of PlaceWork, WaitFinished, then Fini.
// Fini may be followed by a new Init.
type Stage interface {
	// Name returns the stage name used in logs and errors.
	Name() string
	// Init allocates the stage queue, able to hold capacity lines, and starts its worker.
	Init(capacity int) error
	// Attach sets where transformed lines go. It must be called after Init and before the first PlaceWork.
	Attach(sink Sink)
	// PlaceWork enqueues item, blocking while the queue is full.
	PlaceWork(item string) error
	// WaitFinished blocks until the worker has seen the end of its input and has exited.
	WaitFinished() error
	// Fini releases the queue. It must only be called once WaitFinished has returned.
	Fini() error
}

// State is the lifecycle state of a Runtime.
type State int

const (
	Uninitialized State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Runtime is the Stage implementation wrapping a Transform with its own Queue and worker goroutine.
type Runtime struct {
	name      string
	transform Transform
	logger    *zap.Logger
	metrics   *Metrics
	workers   *Workers

	mu     sync.Mutex
	state  State
	queue  *Queue
	sink   Sink
	exited chan struct{}
}

var _ Stage = (*Runtime)(nil)

// NewRuntime returns an uninitialized stage applying transform.
func NewRuntime(name string, transform Transform, opts ...Option) *Runtime {
	o := buildOptions(opts)
	return &Runtime{
		name:      name,
		transform: transform,
		logger:    o.logger.With(zap.String("stage", name)),
		metrics:   o.metrics,
		workers:   o.workers,
	}
}

func (r *Runtime) Name() string {
	return r.name
}

// State returns the current lifecycle state.
func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runtime) Init(capacity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Uninitialized {
		return ErrAlreadyInitialized
	}
	if r.transform == nil {
		return ErrNoTransform
	}
	q, err := NewQueue(capacity)
	if err != nil {
		return err
	}

	exited := make(chan struct{})
	if err := r.workers.Go(func() { r.consume(q, exited) }); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}

	r.queue = q
	r.exited = exited
	r.sink = nil
	r.state = Running
	r.logger.Debug("stage initialized", zap.Int("capacity", capacity))
	return nil
}

func (r *Runtime) Attach(sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Uninitialized {
		r.logger.Error("attempted to attach before initialization")
		return
	}
	r.sink = sink
}

func (r *Runtime) PlaceWork(item string) error {
	r.mu.Lock()
	q := r.queue
	r.mu.Unlock()

	if q == nil {
		return ErrNotInitialized
	}
	return q.Put(item)
}

func (r *Runtime) WaitFinished() error {
	r.mu.Lock()
	q, exited := r.queue, r.exited
	r.mu.Unlock()

	if q == nil {
		return ErrNotInitialized
	}
	q.WaitFinished()
	<-exited
	return nil
}

func (r *Runtime) Fini() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Uninitialized {
		return ErrNotInitialized
	}
	select {
	case <-r.exited:
	default:
		return ErrStillRunning
	}

	r.queue = nil
	r.sink = nil
	r.exited = nil
	r.state = Uninitialized
	r.metrics.depth(r.name, 0)
	return nil
}

func (r *Runtime) currentSink() Sink {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sink
}

// consume is the worker loop. It stops on the Sentinel or when the queue is finished and drained; either way the
// Sentinel is forwarded exactly once, by finish.
func (r *Runtime) consume(q *Queue, exited chan struct{}) {
	defer close(exited)
	defer r.finish(q)

	for {
		item, ok := q.Get()
		if !ok || item == Sentinel {
			return
		}
		r.metrics.depth(r.name, q.Len())
		r.handle(item)
	}
}

func (r *Runtime) handle(item string) {
	start := time.Now()
	out, err := r.apply(item)
	if err != nil {
		r.logger.Error("dropping line", zap.Error(err))
		r.metrics.dropped(r.name)
		return
	}
	if out == Sentinel {
		r.logger.Error("dropping line transformed into the end token", zap.String("line", item))
		r.metrics.dropped(r.name)
		return
	}
	r.metrics.processed(r.name, time.Since(start))

	sink := r.currentSink()
	if sink == nil {
		return // last stage
	}
	if err := sink(out); err != nil {
		r.logger.Error("failed to forward line", zap.Error(err))
		r.metrics.dropped(r.name)
	}
}

func (r *Runtime) apply(item string) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("transform panicked: %v", p)
		}
	}()
	return r.transform(item), nil
}

func (r *Runtime) finish(q *Queue) {
	if sink := r.currentSink(); sink != nil {
		if err := sink(Sentinel); err != nil {
			r.logger.Error("failed to forward end of stream", zap.Error(err))
		}
	}
	q.SignalFinished()

	r.mu.Lock()
	if r.state == Running {
		r.state = Finished
	}
	r.mu.Unlock()
	r.logger.Debug("stage finished")
}
