package linepipe

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCapacity    = errors.New("invalid capacity")
	ErrNoTransform        = errors.New("no transform bound")
	ErrAlreadyInitialized = errors.New("stage already initialized")
	ErrNotInitialized     = errors.New("stage not initialized")
	ErrStillRunning       = errors.New("stage worker still running")
	ErrQueueClosed        = errors.New("queue finished, item not enqueued")
	ErrMonitorTimeout     = errors.New("monitor wait timed out")
	ErrNoStages           = errors.New("no stages configured")
	ErrUnknownStage       = errors.New("unknown stage")
)

// Pipeline phases, wrapped around a *StageError by Pipeline.Run.
var (
	ErrLoad     = errors.New("stage load failed")
	ErrInit     = errors.New("stage initialization failed")
	ErrFeeder   = errors.New("feeder failed to start")
	ErrTeardown = errors.New("pipeline teardown incomplete")
)

// StageError attributes an error to a stage of the chain and the operation that failed.
type StageError struct {
	Index int
	Stage string
	Op    string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s): %s: %v", e.Index, e.Stage, e.Op, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
