package worker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Scheduler runs one-shot jobs after a delay with bounded concurrency.
// Jobs are fire-and-forget: once scheduled they cannot be withdrawn, and a
// job still waiting when the scheduler stops is dropped.
type Scheduler struct {
	sem    *semaphore.Weighted
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[uint64]*time.Timer
	nextID  uint64
	closed  bool
	wg      sync.WaitGroup
}

func NewScheduler(maxConcurrent int64, logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		sem:     semaphore.NewWeighted(maxConcurrent),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[uint64]*time.Timer),
	}
}

func (s *Scheduler) Schedule(delay time.Duration, name string, job func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Warn("scheduler stopped, job dropped", "job", name)
		return
	}

	id := s.nextID
	s.nextID++
	s.wg.Add(1)
	s.pending[id] = time.AfterFunc(delay, func() {
		s.run(id, name, job)
	})
}

func (s *Scheduler) run(id uint64, name string, job func(ctx context.Context)) {
	defer s.wg.Done()

	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()

	if err := s.sem.Acquire(s.ctx, 1); err != nil {
		s.logger.Warn("scheduled job abandoned", "job", name, "error", err)
		return
	}
	defer s.sem.Release(1)

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("scheduled job panicked",
				"job", name,
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)
		}
	}()

	start := time.Now()
	job(s.ctx)
	s.logger.Debug("scheduled job finished", "job", name, "duration", time.Since(start))
}

// Pending reports how many jobs are waiting for their delay to elapse.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Start blocks until ctx is done, then stops the scheduler, giving running
// jobs up to grace to finish.
func (s *Scheduler) Start(ctx context.Context, grace time.Duration) error {
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return s.Stop(stopCtx)
}

// Stop drops jobs that have not fired yet and waits for running jobs. When
// ctx expires first, running jobs see their context canceled.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	dropped := 0
	for id, t := range s.pending {
		if t.Stop() {
			delete(s.pending, id)
			s.wg.Done()
			dropped++
		}
	}
	s.mu.Unlock()

	if dropped > 0 {
		s.logger.Warn("scheduler stopped with pending jobs", "dropped", dropped)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return ctx.Err()
	}
}
