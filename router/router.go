package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/extractcore/extractcore/coretype"
	"github.com/extractcore/extractcore/engineconfig"
	"github.com/extractcore/extractcore/registry"
)

// EngineLookup resolves a registered engine name to a Processor, source of
// auto-detect candidates when no configured chain exists. Satisfied by
// *registry.Registry.
type EngineLookup interface {
	GetByName(name string) (coretype.Processor, bool)
	FindByMime(mime string) []coretype.Processor
	FindByCategory(category coretype.Category) []coretype.Processor
	AvailableEngines() []string
}

// ExtractionRouter resolves an ordered engine chain for a source and walks
// it under the configured fallback policy. This generalizes
// connectivity.Router.Call's local/remote two-way choice (spec §4.3's
// "ordered attempts with a configurable error policy" redesign) and
// connectivity.WithFallback's single-target fallback into an N-deep chain.
type ExtractionRouter struct {
	registry  EngineLookup
	resolver  *engineconfig.EngineResolver
	breakers  *BreakerRegistry
	logger    *slog.Logger
}

// New builds an ExtractionRouter over reg, whose currently-available
// engines seed the resolver's FilterAvailable step.
func New(reg *registry.Registry, logger *slog.Logger) *ExtractionRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionRouter{
		registry: reg,
		resolver: engineconfig.NewEngineResolver(reg.AvailableEngines()),
		breakers: NewBreakerRegistry(),
		logger:   logger,
	}
}

// Extract resolves the engine chain for source (explicit choice, YouTube
// special case, env configuration, or registry auto-detect, in that
// order — see engineconfig.EngineResolver.Resolve), then attempts each
// candidate in turn under cfg.Fallback until one succeeds, a fatal error
// kind is hit, or the chain is exhausted.
func (router *ExtractionRouter) Extract(ctx context.Context, source *coretype.Source, mime string, category coretype.Category, cfg engineconfig.ExtractionConfig) (coretype.ExtractionResult, error) {
	if source.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(source.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	chain := router.resolver.Resolve(cfg, mime, string(category), source.URL(), source.Engine)
	explicit := len(source.Engine) > 0

	var candidates []coretype.Processor
	if len(chain) > 0 {
		for _, name := range chain {
			p, ok := router.registry.GetByName(name)
			if !ok {
				if explicit {
					// An explicit caller override names a real contract: the
					// engine must exist before any I/O is attempted, unlike
					// an env-configured chain entry, which is dropped with a
					// warning so a stale env var doesn't break every request.
					return coretype.ExtractionResult{}, &coretype.EngineNotFoundError{Engine: name}
				}
				router.logger.WarnContext(ctx, "configured engine not registered", "engine", name)
				continue
			}
			candidates = append(candidates, p)
		}
	} else {
		candidates = router.registry.FindByMime(mime)
		if len(candidates) == 0 {
			candidates = router.registry.FindByCategory(category)
		}
	}

	if len(candidates) == 0 {
		return coretype.ExtractionResult{}, &coretype.NoEngineAvailableError{Mime: mime}
	}

	maxAttempts := cfg.Fallback.MaxAttempts
	if maxAttempts <= 0 || maxAttempts > len(candidates) {
		maxAttempts = len(candidates)
	}
	if !cfg.Fallback.Enabled {
		maxAttempts = 1
	}

	var attempts []coretype.AttemptRecord
	for i, proc := range candidates {
		if i >= maxAttempts {
			break
		}

		if len(router.resolver.FilterAvailable([]string{proc.Name()})) == 0 {
			attempts = append(attempts, coretype.AttemptRecord{Engine: proc.Name(), Kind: coretype.KindEngineUnavailable, Message: "engine unavailable"})
			continue
		}

		breaker := router.breakers.For(proc.Name())
		if !breaker.Allow() {
			attempts = append(attempts, coretype.AttemptRecord{Engine: proc.Name(), Kind: coretype.KindEngineUnavailable, Message: "circuit open"})
			continue
		}

		handler := router.buildHandler(proc, cfg)
		result, err := handler(ctx, source, source.EngineOptions(proc.Name()))

		if err == nil {
			breaker.RecordSuccess()
			if result.Metadata == nil {
				result.Metadata = map[string]any{}
			}
			result.Metadata["extraction_engine"] = proc.Name()
			warnings := result.Warnings
			for _, a := range attempts {
				warnings = append(warnings, a.Engine+" skipped ("+string(a.Kind)+"): "+a.Message)
			}
			return coretype.ExtractionResult{
				Content:    result.Content,
				EngineUsed: proc.Name(),
				Metadata:   result.Metadata,
				Warnings:   warnings,
			}, nil
		}

		breaker.RecordFailure()
		kind := coretype.ClassifyKind(err)
		attempts = append(attempts, coretype.AttemptRecord{Engine: proc.Name(), Kind: kind, Message: err.Error()})

		if cfg.Fallback.IsFatal(string(kind)) {
			return coretype.ExtractionResult{}, err
		}

		switch cfg.Fallback.OnError {
		case engineconfig.OnErrorFail:
			return coretype.ExtractionResult{}, err
		case engineconfig.OnErrorWarn:
			router.logger.WarnContext(ctx, "engine failed, trying next",
				"engine", proc.Name(), "error", err)
		case engineconfig.OnErrorNext:
			// silent fallthrough to the next candidate
		}

		if ctx.Err() != nil {
			return coretype.ExtractionResult{}, ctx.Err()
		}
	}

	return coretype.ExtractionResult{}, &coretype.AllEnginesFailedError{Attempts: attempts}
}

// buildHandler wraps proc.Extract with the standard middleware chain:
// logging, panic recovery, a per-attempt timeout, then retry — mirroring
// connectivity's Chain(Logging, Recovery, Timeout) composition order from
// cmd/chrc/main.go's router wiring.
func (router *ExtractionRouter) buildHandler(proc coretype.Processor, cfg engineconfig.ExtractionConfig) Handler {
	base := func(ctx context.Context, source *coretype.Source, options map[string]any) (coretype.ProcessorResult, error) {
		return proc.Extract(ctx, source, options)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	chain := Chain(
		Logging(router.logger, proc.Name()),
		Recovery(router.logger, proc.Name()),
		Timeout(timeout),
		WithRetry(cfg.Retry.MaxRetries, time.Duration(cfg.Retry.BaseDelayMs)*time.Millisecond, time.Duration(cfg.Retry.MaxDelayMs)*time.Millisecond),
	)
	return chain(base)
}
