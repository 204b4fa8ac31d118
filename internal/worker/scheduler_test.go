package worker_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DanielPopoola/billing-reconciler/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_RunsJobAfterDelay(t *testing.T) {
	s := worker.NewScheduler(4, discardLogger())
	defer s.Stop(context.Background())

	done := make(chan time.Time, 1)
	start := time.Now()
	s.Schedule(30*time.Millisecond, "delayed", func(ctx context.Context) {
		done <- time.Now()
	})
	assert.Equal(t, 1, s.Pending())

	select {
	case ranAt := <-done:
		assert.GreaterOrEqual(t, ranAt.Sub(start), 30*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}
}

func TestScheduler_BoundsConcurrency(t *testing.T) {
	s := worker.NewScheduler(1, discardLogger())
	defer s.Stop(context.Background())

	var running, maxSeen atomic.Int32
	finished := make(chan struct{}, 3)
	for range 3 {
		s.Schedule(0, "bounded", func(ctx context.Context) {
			n := running.Add(1)
			for {
				seen := maxSeen.Load()
				if n <= seen || maxSeen.CompareAndSwap(seen, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			finished <- struct{}{}
		})
	}

	for range 3 {
		select {
		case <-finished:
		case <-time.After(2 * time.Second):
			t.Fatal("jobs did not finish")
		}
	}
	assert.Equal(t, int32(1), maxSeen.Load())
}

func TestScheduler_SurvivesPanickingJob(t *testing.T) {
	s := worker.NewScheduler(2, discardLogger())
	defer s.Stop(context.Background())

	done := make(chan struct{})
	s.Schedule(0, "panics", func(ctx context.Context) { panic("boom") })
	s.Schedule(5*time.Millisecond, "after", func(ctx context.Context) { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not recover from panic")
	}
}

func TestScheduler_StopDropsPendingAndWaitsForRunning(t *testing.T) {
	s := worker.NewScheduler(2, discardLogger())

	var ran atomic.Bool
	s.Schedule(time.Hour, "far future", func(ctx context.Context) { ran.Store(true) })

	started := make(chan struct{})
	var finished atomic.Bool
	s.Schedule(0, "running", func(ctx context.Context) {
		close(started)
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	})
	<-started

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, finished.Load())
	assert.False(t, ran.Load())
	assert.Equal(t, 0, s.Pending())

	// Scheduling after stop is a logged no-op.
	s.Schedule(0, "late", func(ctx context.Context) { ran.Store(true) })
	time.Sleep(10 * time.Millisecond)
	assert.False(t, ran.Load())
}

func TestScheduler_StopTimeoutCancelsJobContext(t *testing.T) {
	s := worker.NewScheduler(1, discardLogger())

	started := make(chan struct{})
	s.Schedule(0, "slow", func(ctx context.Context) {
		close(started)
		<-ctx.Done()
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)
}
