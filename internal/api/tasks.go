package api

import (
	"context"
	"sync"

	"github.com/ziadkadry99/linebot-module/internal/metrics"
)

// Tasks runs fire-and-forget work. Callers never join individual tasks;
// Wait exists only so shutdown can let in-flight deliveries finish.
type Tasks struct {
	wg      sync.WaitGroup
	metrics *metrics.Metrics
}

// NewTasks creates an empty task group. m may be nil.
func NewTasks(m *metrics.Metrics) *Tasks {
	return &Tasks{metrics: m}
}

// Go runs fn in its own goroutine.
func (t *Tasks) Go(fn func()) {
	t.wg.Add(1)
	t.metrics.TaskStarted()
	go func() {
		defer t.wg.Done()
		defer t.metrics.TaskDone()
		fn()
	}()
}

// Wait blocks until every started task has returned or ctx is done.
func (t *Tasks) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
