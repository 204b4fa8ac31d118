package worker

import (
	"context"
	"log/slog"
	"time"
)

// SessionStore is anything holding short-lived checkout sessions in memory.
type SessionStore interface {
	SweepExpired(olderThan time.Duration) int
}

type SessionSweeper struct {
	store     SessionStore
	interval  time.Duration
	retention time.Duration
	logger    *slog.Logger
}

func NewSessionSweeper(store SessionStore, interval, retention time.Duration, logger *slog.Logger) *SessionSweeper {
	return &SessionSweeper{
		store:     store,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

func (w *SessionSweeper) Start(ctx context.Context) {
	w.logger.Info("session sweeper started", "interval", w.interval, "retention", w.retention)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("session sweeper stopping")
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

func (w *SessionSweeper) Sweep() int {
	removed := w.store.SweepExpired(w.retention)
	if removed > 0 {
		w.logger.Info("expired checkout sessions removed", "removed", removed)
	}
	return removed
}
