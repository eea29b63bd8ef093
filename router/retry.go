package router

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/extractcore/extractcore/coretype"
)

// WithRetry returns a Middleware that retries a single engine's Extract
// call with exponential backoff, grounded on the
// backoff.NewExponentialBackOff/backoff.Retry/backoff.Permanent pattern
// seen in csg4786-voice-ai-hackathon-dec-2025's internal/extractor/advanced.go.
// Unlike that pattern's fire-and-forget operation closure, this wraps ctx
// so a caller-cancelled context still aborts mid-backoff, matching
// connectivity/retry.go's select-on-ctx.Done interruptible sleep.
//
// An error whose Kind() is classified as non-retryable (auth failures,
// unsupported content, not-found, cancellation) is wrapped in
// backoff.Permanent so a single bad attempt does not burn the whole
// max-attempts budget retrying something that cannot succeed.
func WithRetry(maxRetries int, baseDelay, maxDelay time.Duration) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, source *coretype.Source, options map[string]any) (coretype.ProcessorResult, error) {
			if maxRetries <= 0 {
				return next(ctx, source, options)
			}

			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = baseDelay
			bo.MaxInterval = maxDelay
			bo.MaxElapsedTime = 0 // bounded by MaxRetries via WithMaxRetries below
			policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(maxRetries)), ctx)

			var result coretype.ProcessorResult
			op := func() error {
				res, err := next(ctx, source, options)
				if err == nil {
					result = res
					return nil
				}
				if !isRetryableKind(coretype.ClassifyKind(err)) {
					return backoff.Permanent(err)
				}
				return err
			}

			// backoff.Retry already unwraps a *backoff.PermanentError and
			// returns its underlying Err, so err here is always the
			// original processor error, never the wrapper.
			if err := backoff.Retry(op, policy); err != nil {
				return coretype.ProcessorResult{}, err
			}
			return result, nil
		}
	}
}

func isRetryableKind(kind coretype.ErrorKind) bool {
	switch kind {
	case coretype.KindAuthError, coretype.KindUnsupportedContentError, coretype.KindNotFoundError, coretype.KindCancelled:
		return false
	default:
		return true
	}
}
