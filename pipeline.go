package linepipe

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Loader resolves stage names into independent Stage instances.
type Loader interface {
	// Load returns a new instance of the named stage.
	Load(name string) (Stage, error)
	// Unload releases a stage returned by Load. The Pipeline calls it exactly once per loaded stage.
	Unload(s Stage)
}

// Pipeline builds, runs and tears down a linear chain of stages.
type Pipeline struct {
	loader   Loader
	names    []string
	capacity int
	logger   *zap.Logger
	metrics  *Metrics
	workers  *Workers
}

// New validates the configuration of a chain: every named stage gets a queue of capacity lines.
func New(loader Loader, capacity int, names []string, opts ...Option) (*Pipeline, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	if len(names) == 0 {
		return nil, ErrNoStages
	}
	o := buildOptions(opts)
	return &Pipeline{
		loader:   loader,
		names:    append([]string(nil), names...),
		capacity: capacity,
		logger:   o.logger,
		metrics:  o.metrics,
		workers:  o.workers,
	}, nil
}

// Run loads and starts every stage, feeds the lines of in to the first one, and returns once the end of stream
// has gone through the whole chain and every stage has been released.
//
// Errors wrap ErrLoad or ErrInit when the chain could not start (nothing was fed), ErrFeeder when the feeder could
// not start (the chain was shut down without input), and ErrTeardown when some stage failed to wait or finalize.
func (p *Pipeline) Run(in io.Reader) error {
	log := p.logger.With(zap.String("run", uuid.NewString()))

	stages, err := p.load(log)
	if err != nil {
		return err
	}
	if err := p.init(stages, log); err != nil {
		return err
	}
	for i := 0; i < len(stages)-1; i++ {
		stages[i].Attach(stages[i+1].PlaceWork)
	}
	log.Info("pipeline started", zap.Strings("stages", p.names), zap.Int("capacity", p.capacity))

	var runErr error
	fed := make(chan struct{})
	if err := p.workers.Go(func() {
		defer close(fed)
		p.feed(in, stages[0], log)
	}); err != nil {
		log.Error("failed to start feeder", zap.Error(err))
		close(fed)
		if err := stages[0].PlaceWork(Sentinel); err != nil {
			log.Error("failed to shut the chain down", zap.Error(err))
		}
		runErr = fmt.Errorf("%w: %w", ErrFeeder, err)
	}

	var teardown error
	for i, s := range stages {
		if err := s.WaitFinished(); err != nil {
			log.Warn("failed to wait for stage", zap.String("stage", p.names[i]), zap.Error(err))
			teardown = multierr.Append(teardown, &StageError{Index: i, Stage: p.names[i], Op: "wait_finished", Err: err})
		}
	}
	<-fed
	teardown = multierr.Append(teardown, p.release(stages, log))

	if teardown != nil {
		runErr = multierr.Append(runErr, fmt.Errorf("%w: %w", ErrTeardown, teardown))
	}
	log.Info("pipeline stopped")
	return runErr
}

func (p *Pipeline) load(log *zap.Logger) ([]Stage, error) {
	stages := make([]Stage, 0, len(p.names))
	for i, name := range p.names {
		s, err := p.loader.Load(name)
		if err != nil {
			log.Error("failed to load stage", zap.String("stage", name), zap.Error(err))
			p.unload(stages)
			return nil, fmt.Errorf("%w: %w", ErrLoad, &StageError{Index: i, Stage: name, Op: "load", Err: err})
		}
		stages = append(stages, s)
	}
	return stages, nil
}

// init starts stages left to right. On failure the stages after the failing one are unloaded untouched, and the
// started ones are stopped, finalized and unloaded, last first. Rollback errors are appended to the returned error.
func (p *Pipeline) init(stages []Stage, log *zap.Logger) error {
	for i, s := range stages {
		err := s.Init(p.capacity)
		if err == nil {
			continue
		}
		log.Error("failed to initialize stage", zap.String("stage", p.names[i]), zap.Error(err))
		p.unload(stages[i:])
		rollback := p.release(stages[:i], log)
		return multierr.Append(fmt.Errorf("%w: %w", ErrInit, &StageError{Index: i, Stage: p.names[i], Op: "init", Err: err}), rollback)
	}
	return nil
}

// stop shuts down a started stage that never received input.
func stop(s Stage) error {
	if err := s.PlaceWork(Sentinel); err != nil && !errors.Is(err, ErrQueueClosed) {
		return err
	}
	return s.WaitFinished()
}

// release finalizes and unloads stages, last first. A stage that has not finished yet (rollback) is stopped first.
// Failures are logged and collected; every stage is unloaded regardless.
func (p *Pipeline) release(stages []Stage, log *zap.Logger) error {
	var errs error
	for i := len(stages) - 1; i >= 0; i-- {
		s := stages[i]
		err := s.Fini()
		if errors.Is(err, ErrStillRunning) {
			if err = stop(s); err == nil {
				err = s.Fini()
			}
		}
		if err != nil {
			log.Warn("failed to finalize stage", zap.String("stage", p.names[i]), zap.Error(err))
			errs = multierr.Append(errs, &StageError{Index: i, Stage: p.names[i], Op: "fini", Err: err})
		}
		p.loader.Unload(s)
	}
	return errs
}

func (p *Pipeline) unload(stages []Stage) {
	for i := len(stages) - 1; i >= 0; i-- {
		p.loader.Unload(stages[i])
	}
}

// feed places every line of in into first, without its line terminator, then makes sure exactly one Sentinel
// follows. Reading stops at the first Sentinel line.
func (p *Pipeline) feed(in io.Reader, first Stage, log *zap.Logger) {
	r := bufio.NewReader(in)
	for {
		line, err := r.ReadString('\n')
		if err == nil || line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if perr := first.PlaceWork(line); perr != nil {
				log.Error("failed to place input line", zap.Error(perr))
			}
			if line == Sentinel {
				return
			}
			p.metrics.fed()
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Error("failed to read input", zap.Error(err))
			}
			break
		}
	}
	if err := first.PlaceWork(Sentinel); err != nil {
		log.Error("failed to place end of stream", zap.Error(err))
	}
}
