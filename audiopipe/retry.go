package audiopipe

import (
	"context"
	"time"
)

// retryWithBackoff retries op up to maxRetries times with doubling delay
// between baseDelay and maxDelay, honoring ctx cancellation mid-sleep.
// Adapted from connectivity's WithRetry middleware rather than
// cenkalti/backoff/v4: segment retries need to interrupt a sleep the
// instant the router's overall timeout fires, at per-segment granularity,
// which a hand-rolled select{ctx.Done(), time.After} gives directly.
func retryWithBackoff(ctx context.Context, maxRetries int, baseDelay, maxDelay time.Duration, op func() error) error {
	var lastErr error
	delay := baseDelay
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
	return lastErr
}
