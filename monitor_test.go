package linepipe_test

import (
	"sync"
	"testing"
	"time"

	"github.com/maxatome/go-testdeep/td"

	"github.com/fogfactory/linepipe"
)

func TestMonitor(t *testing.T) {

	t.Run("success_signal_before_wait", func(t *testing.T) {
		// Arrange
		m := linepipe.NewMonitor()

		// Act
		m.Signal()

		// Assert
		td.CmpNoError(t, m.WaitTimeout(time.Second), "pending signal must not be lost")
	})

	t.Run("success_wait_before_signal", func(t *testing.T) {
		// Arrange
		m := linepipe.NewMonitor()
		woken := make(chan struct{})
		go func() {
			m.Wait()
			close(woken)
		}()

		// Act
		time.Sleep(10 * time.Millisecond)
		m.Signal()

		// Assert
		select {
		case <-woken:
		case <-time.After(time.Second):
			t.Fatal("waiter was not woken")
		}
	})

	t.Run("success_wait_consumes_signal", func(t *testing.T) {
		// Arrange
		m := linepipe.NewMonitor()
		m.Signal()
		m.Signal() // at most one signal is kept

		// Act
		first := m.WaitTimeout(time.Second)
		second := m.WaitTimeout(10 * time.Millisecond)

		// Assert
		td.CmpNoError(t, first)
		td.CmpErrorIs(t, second, linepipe.ErrMonitorTimeout)
	})

	t.Run("error_timeout_without_signal", func(t *testing.T) {
		// Arrange
		m := linepipe.NewMonitor()

		// Act
		err := m.WaitTimeout(10 * time.Millisecond)

		// Assert
		td.CmpErrorIs(t, err, linepipe.ErrMonitorTimeout)
		m.Signal()
		td.CmpNoError(t, m.WaitTimeout(time.Second), "a timeout must not consume a later signal")
	})

	t.Run("success_broadcast_wakes_every_waiter", func(t *testing.T) {
		// Arrange
		m := linepipe.NewMonitor()
		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.Wait()
			}()
		}
		woken := make(chan struct{})
		go func() {
			wg.Wait()
			close(woken)
		}()

		// Act
		m.Broadcast()
		m.Broadcast()

		// Assert
		select {
		case <-woken:
		case <-time.After(time.Second):
			t.Fatal("waiters were not all woken")
		}
		td.CmpTrue(t, m.Broadcasted())
		td.CmpNoError(t, m.WaitTimeout(10*time.Millisecond), "broadcast is permanent")
	})

	t.Run("success_wait_locked_releases_lock", func(t *testing.T) {
		// Arrange
		m := linepipe.NewMonitor()
		var mu sync.Mutex
		mu.Lock()
		go func() {
			mu.Lock() // only possible while the waiter has released it
			m.Signal()
			mu.Unlock()
		}()

		// Act
		err := m.WaitLockedTimeout(&mu, time.Second)

		// Assert
		td.CmpNoError(t, err)
		td.CmpFalse(t, mu.TryLock(), "lock must be held again on return")
		mu.Unlock()
	})
}
