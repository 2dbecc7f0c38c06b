package catalog

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

const (
	defaultRetryBaseDelay = 5 * time.Millisecond
	maxRetryDelay         = 500 * time.Millisecond
	retryJitterFactor     = 0.3
)

// RetryOnConflict runs fn up to attempts times, backing off exponentially
// with jitter between tries. Only errors wrapping ErrConflict are retried;
// anything else, including context errors, is returned immediately.
func RetryOnConflict(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
	return retryOnConflict(ctx, attempts, defaultRetryBaseDelay, fn)
}

func retryOnConflict(ctx context.Context, attempts int, baseDelay time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := maxRetryDelay
			if attempt < 16 {
				delay = min(baseDelay*time.Duration(1<<(attempt-1)), maxRetryDelay)
			}
			delay += time.Duration(rand.Float64() * float64(delay) * retryJitterFactor) //nolint:gosec // jitter only

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err = fn(ctx); err == nil || !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return err
}
