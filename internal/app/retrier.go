package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/finder/internal/state"
)

const maxBackoff = 30 * time.Second

// StartRetrier launches a background goroutine that re-runs the catalog
// fetch while the catalog is in the error state, backing off exponentially
// with consecutive failures. It returns immediately; a non-positive base
// disables it.
func StartRetrier(ctx context.Context, cat *state.Catalog, base time.Duration, logger *zap.Logger) {
	if base <= 0 {
		return
	}
	go func() {
		timer := time.NewTimer(base)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			timer.Reset(retryOnce(ctx, cat, base, logger))
		}
	}()
}

// retryOnce retries when the catalog has failed and returns the delay until
// the next check.
func retryOnce(ctx context.Context, cat *state.Catalog, base time.Duration, logger *zap.Logger) time.Duration {
	snap := cat.Snapshot()
	if snap.Status != state.StatusError {
		return base
	}
	logger.Debug("auto retrying catalog", zap.Int("failures", snap.ConsecutiveFailures))
	_ = cat.Retry(ctx)
	return calculateBackoff(cat.Snapshot().ConsecutiveFailures, base)
}

// calculateBackoff doubles base per failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
