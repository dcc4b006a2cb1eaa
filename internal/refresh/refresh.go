// Package refresh rebuilds a cached snapshot on a fixed interval. This is
// polling, not an event system: ticks that fire while a rebuild is still
// running are dropped, never queued, and there are no ordering guarantees.
package refresh

import (
	"context"
	"log/slog"
	"time"
)

type Refresher struct {
	interval time.Duration
	fn       func(context.Context) error
	logger   *slog.Logger
}

func New(interval time.Duration, logger *slog.Logger, fn func(context.Context) error) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Refresher{
		interval: interval,
		fn:       fn,
		logger:   logger,
	}
}

// Run refreshes once immediately, then on every tick until the context is
// canceled. Refresh errors are logged and the loop keeps going.
func (r *Refresher) Run(ctx context.Context) {
	if err := r.fn(ctx); err != nil {
		r.logger.Error("refresh failed", slog.String("err", err.Error()))
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.fn(ctx); err != nil {
				r.logger.Error("refresh failed", slog.String("err", err.Error()))
			}
		}
	}
}
