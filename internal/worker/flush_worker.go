// Package worker hosts the flush policy: a background task that
// periodically mirrors the session's in-memory collections to the durable
// store. Saves replace whole collections, so redundant flushes are safe and
// no ordering between triggers matters.
package worker

import (
	"context"
	"log/slog"
	"time"
)

const finalFlushTimeout = 5 * time.Second

// Flusher periodically invokes an idempotent flush until its context is
// cancelled, then flushes once more on the way out so process exit is a
// save point.
type Flusher struct {
	flush    func(ctx context.Context) error
	interval time.Duration
	logger   *slog.Logger
}

func NewFlusher(flush func(ctx context.Context) error, interval time.Duration, logger *slog.Logger) *Flusher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flusher{
		flush:    flush,
		interval: interval,
		logger:   logger.With("component", "flusher"),
	}
}

// Run blocks until ctx is cancelled. Flush failures are logged and the loop
// keeps going; the session stays authoritative in memory.
func (f *Flusher) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.logger.InfoContext(ctx, "flush worker started", "interval", f.interval)
	for {
		select {
		case <-ctx.Done():
			// The run context is already dead; give the final flush its own.
			flushCtx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
			defer cancel()
			if err := f.flush(flushCtx); err != nil {
				f.logger.Error("final flush failed", "error", err)
			} else {
				f.logger.Info("final flush complete")
			}
			return nil
		case <-ticker.C:
			if err := f.flush(ctx); err != nil {
				f.logger.WarnContext(ctx, "periodic flush failed", "error", err)
			}
		}
	}
}
