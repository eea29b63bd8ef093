// Package router resolves an engine chain for a source (via engineconfig),
// then walks it under a fallback policy, invoking each candidate processor
// through a middleware chain of logging, panic recovery, timeout, and retry —
// generalizing hazyhaar-chrc/connectivity's single-local-fallback Router
// into an N-deep ordered chain, per spec §4.3's "ordered attempts with a
// configurable error policy" redesign.
package router

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/extractcore/extractcore/coretype"
)

// Handler invokes one processor attempt against a source. It is the
// extraction-domain analogue of connectivity.Handler's bytes-in/bytes-out
// shape, specialized to coretype.ProcessorResult.
type Handler func(ctx context.Context, source *coretype.Source, options map[string]any) (coretype.ProcessorResult, error)

// Middleware wraps a Handler, adding cross-cutting behavior without
// changing its signature. Grounded on connectivity/middleware.go's
// HandlerMiddleware.
type Middleware func(next Handler) Handler

// Chain composes middlewares left-to-right: the first middleware in the
// slice is the outermost wrapper, executed first on the call path.
func Chain(mws ...Middleware) Middleware {
	return func(next Handler) Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

// Logging returns a middleware that logs every attempt with its engine
// name and duration.
func Logging(logger *slog.Logger, engine string) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, source *coretype.Source, options map[string]any) (coretype.ProcessorResult, error) {
			start := time.Now()
			res, err := next(ctx, source, options)
			dur := time.Since(start)
			if err != nil {
				logger.ErrorContext(ctx, "extraction attempt failed",
					"engine", engine, "duration_ms", dur.Milliseconds(), "error", err)
			} else {
				logger.DebugContext(ctx, "extraction attempt ok",
					"engine", engine, "duration_ms", dur.Milliseconds(), "content_length", len(res.Content))
			}
			return res, err
		}
	}
}

// Timeout returns a middleware enforcing a maximum attempt duration. A
// zero duration disables the timeout.
func Timeout(d time.Duration) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, source *coretype.Source, options map[string]any) (coretype.ProcessorResult, error) {
			if d <= 0 {
				return next(ctx, source, options)
			}
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, source, options)
		}
	}
}

// Recovery returns a middleware that converts a panicking processor into
// a coretype.FatalInternalError instead of crashing the process.
func Recovery(logger *slog.Logger, engine string) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, source *coretype.Source, options map[string]any) (res coretype.ProcessorResult, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(ctx, "engine panicked",
						"engine", engine, "panic", r, "stack", string(debug.Stack()))
					err = &coretype.FatalInternalError{Reason: "engine panicked"}
				}
			}()
			return next(ctx, source, options)
		}
	}
}
