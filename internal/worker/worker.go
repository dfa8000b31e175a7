// Package worker runs periodic background jobs such as archiving and pruning.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Every calls fn once per interval until ctx is cancelled. Failures are
// logged and do not stop the loop. It blocks, so run it in its own goroutine.
// A non-positive interval is logged and Every returns at once.
func Every(ctx context.Context, logger *slog.Logger, name string, interval time.Duration, fn func(context.Context) error) {
	log := logger.With("component", "worker", "job", name)
	if interval <= 0 {
		log.Error("worker not started", "error", "interval must be positive", "interval", interval)
		return
	}
	log.Info("worker started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopping")
			return
		case <-ticker.C:
			start := time.Now()
			if err := fn(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				log.Error("job failed", "error", err)
				continue
			}
			log.Debug("job done", "duration_ms", time.Since(start).Milliseconds())
		}
	}
}
