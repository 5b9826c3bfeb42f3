package linepipe

import (
	"sync"
	"time"
)

// Monitor is a sticky wait/signal primitive.
//
// A Signal delivered while nobody waits is kept pending and consumed by the next Wait, so neither the
// signal-then-wait nor the wait-then-signal ordering loses a wakeup. At most one signal is kept pending.
//
// Broadcast switches the monitor to a permanently signaled state: every current and future Wait returns at once.
type Monitor struct {
	pending chan struct{}
	closed  chan struct{}
	once    sync.Once
}

// NewMonitor returns a monitor with no pending signal.
func NewMonitor() *Monitor {
	return &Monitor{
		pending: make(chan struct{}, 1),
		closed:  make(chan struct{}),
	}
}

// Signal sets the pending flag and wakes one waiter, if any. It never blocks, so it may be called while holding
// the lock a waiter released through WaitLocked.
func (m *Monitor) Signal() {
	select {
	case m.pending <- struct{}{}:
	default: // already pending
	}
}

// Broadcast wakes every waiter, now and forever. It is safe to call several times.
func (m *Monitor) Broadcast() {
	m.once.Do(func() { close(m.closed) })
}

// Broadcasted reports whether Broadcast has been called.
func (m *Monitor) Broadcasted() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

// Wait blocks until a signal is pending, then consumes it.
func (m *Monitor) Wait() {
	select {
	case <-m.pending:
	case <-m.closed:
	}
}

// WaitTimeout is Wait bounded by d. It returns ErrMonitorTimeout, without consuming anything, if no signal arrived.
func (m *Monitor) WaitTimeout(d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-m.pending:
		return nil
	case <-m.closed:
		return nil
	case <-timer.C:
		return ErrMonitorTimeout
	}
}

// WaitLocked releases l while waiting and reacquires it before returning.
func (m *Monitor) WaitLocked(l sync.Locker) {
	l.Unlock()
	defer l.Lock()
	m.Wait()
}

// WaitLockedTimeout is WaitLocked bounded by d.
func (m *Monitor) WaitLockedTimeout(l sync.Locker, d time.Duration) error {
	l.Unlock()
	defer l.Lock()
	return m.WaitTimeout(d)
}
