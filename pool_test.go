package linepipe_test

import (
	"sync"
	"testing"
	"time"

	"github.com/maxatome/go-testdeep/td"
	"github.com/panjf2000/ants/v2"

	"github.com/fogfactory/linepipe"
)

func InitWorkers(t testing.TB, size int, opts ...ants.Option) *linepipe.Workers {
	workers, err := linepipe.NewWorkersWithOptions(size, opts...)
	td.Require(t).CmpNoError(err)
	t.Cleanup(workers.Release)
	return workers
}

func TestWorkers(t *testing.T) {

	t.Run("go_nil_workers", func(t *testing.T) {
		// Arrange
		var workers *linepipe.Workers
		done := make(chan struct{})

		// Act
		err := workers.Go(func() { close(done) }) // runs in its own goroutine

		// Assert
		td.CmpNoError(t, err)
		<-done
		td.CmpNil(t, workers.Pool())
		td.Cmp(t, workers.Running(), 0)
		workers.Release()
	})

	t.Run("go_size_0", func(t *testing.T) {
		// Arrange
		workers := InitWorkers(t, 0) // no pool at all
		var wg sync.WaitGroup

		// Act
		for i := 0; i < 10; i++ {
			wg.Add(1)
			td.CmpNoError(t, workers.Go(wg.Done))
		}

		// Assert
		wg.Wait()
		td.CmpNil(t, workers.Pool(), "Shouldn't have underlying pool")
	})

	t.Run("go_pool_size_2", func(t *testing.T) {
		// Arrange
		workers := InitWorkers(t, 2)
		release := make(chan struct{})
		var wg sync.WaitGroup

		// Act
		for i := 0; i < 2; i++ {
			wg.Add(1)
			td.Require(t).CmpNoError(workers.Go(func() {
				defer wg.Done()
				<-release
			}))
		}
		overloaded := workers.Go(func() {})

		// Assert
		td.CmpErrorIs(t, overloaded, ants.ErrPoolOverload, "a full pool must fail rather than queue")
		td.Cmp(t, workers.Running(), 2)
		td.Cmp(t, workers.Pool().Cap(), 2)
		close(release)
		wg.Wait()
	})

	t.Run("go_panic_handler", func(t *testing.T) {
		// Arrange
		recovered := make(chan any, 1)
		workers := InitWorkers(t, 1, ants.WithPanicHandler(func(p any) { recovered <- p }))

		// Act
		err := workers.Go(func() { panic("worker exploded") })

		// Assert
		td.CmpNoError(t, err)
		select {
		case p := <-recovered:
			td.Cmp(t, p, "worker exploded")
		case <-time.After(time.Second):
			t.Fatal("panic handler not called")
		}
	})

	t.Run("go_negative_size_unbounded", func(t *testing.T) {
		// Arrange
		workers, err := linepipe.NewWorkers(-1)
		td.Require(t).CmpNoError(err, "ants treats a negative size as unlimited")
		t.Cleanup(workers.Release)
		done := make(chan struct{})

		// Act
		err = workers.Go(func() { close(done) })

		// Assert
		td.CmpNoError(t, err)
		<-done
		td.Cmp(t, workers.Pool().Cap(), -1)
	})
}
