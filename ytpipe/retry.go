package ytpipe

import (
	"context"
	"time"
)

// retryTransient retries op up to maxRetries times with doubling delay,
// honoring ctx cancellation — the same interruptible-backoff idiom used
// by the audio pipeline's segment retries, grounded on the original's
// retry_youtube decorator wrapping each network call.
func retryTransient(ctx context.Context, maxRetries int, baseDelay time.Duration, op func() error) error {
	delay := baseDelay
	var lastErr error
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
	}
	return lastErr
}
