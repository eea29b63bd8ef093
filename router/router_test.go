package router

import (
	"context"
	"errors"
	"log/slog"
	"io"
	"testing"

	"github.com/extractcore/extractcore/coretype"
	"github.com/extractcore/extractcore/engineconfig"
	"github.com/extractcore/extractcore/registry"
)

type stubProcessor struct {
	name string
	caps coretype.ProcessorCapabilities
	fn   func(ctx context.Context, s *coretype.Source, opts map[string]any) (coretype.ProcessorResult, error)
}

func (s *stubProcessor) Name() string                            { return s.name }
func (s *stubProcessor) Capabilities() coretype.ProcessorCapabilities { return s.caps }
func (s *stubProcessor) IsAvailable() bool                       { return true }
func (s *stubProcessor) Extract(ctx context.Context, src *coretype.Source, opts map[string]any) (coretype.ProcessorResult, error) {
	return s.fn(ctx, src, opts)
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtract_FirstEngineSucceeds(t *testing.T) {
	reg := registry.New()
	reg.Register(&stubProcessor{
		name: "pdf_text",
		caps: coretype.ProcessorCapabilities{MimeTypes: []string{"application/pdf"}, Priority: 50},
		fn: func(ctx context.Context, s *coretype.Source, opts map[string]any) (coretype.ProcessorResult, error) {
			return coretype.NewProcessorResult("hello", "application/pdf"), nil
		},
	})
	src, _ := coretype.NewSourceFromFile("/tmp/x.pdf")
	r := New(reg, silentLogger())

	res, err := r.Extract(context.Background(), src, "application/pdf", coretype.CategoryDocuments, engineconfig.ExtractionConfig{Fallback: engineconfig.FallbackConfig{Enabled: true, MaxAttempts: 3, OnError: engineconfig.OnErrorNext}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != "hello" || res.EngineUsed != "pdf_text" {
		t.Fatalf("got %+v", res)
	}
}

func TestExtract_FallsBackToSecondEngine(t *testing.T) {
	reg := registry.New()
	reg.Register(&stubProcessor{
		name: "first",
		caps: coretype.ProcessorCapabilities{MimeTypes: []string{"application/pdf"}, Priority: 90},
		fn: func(ctx context.Context, s *coretype.Source, opts map[string]any) (coretype.ProcessorResult, error) {
			return coretype.ProcessorResult{}, &coretype.ParseError{Reason: "bad pdf"}
		},
	})
	reg.Register(&stubProcessor{
		name: "second",
		caps: coretype.ProcessorCapabilities{MimeTypes: []string{"application/pdf"}, Priority: 10},
		fn: func(ctx context.Context, s *coretype.Source, opts map[string]any) (coretype.ProcessorResult, error) {
			return coretype.NewProcessorResult("ok", "application/pdf"), nil
		},
	})
	src, _ := coretype.NewSourceFromFile("/tmp/x.pdf")
	r := New(reg, silentLogger())

	res, err := r.Extract(context.Background(), src, "application/pdf", coretype.CategoryDocuments, engineconfig.ExtractionConfig{Fallback: engineconfig.FallbackConfig{Enabled: true, MaxAttempts: 3, OnError: engineconfig.OnErrorNext}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.EngineUsed != "second" {
		t.Fatalf("got engine %q, want second", res.EngineUsed)
	}
}

func TestExtract_FatalErrorKindAbortsChain(t *testing.T) {
	// WHAT: a fatal-internal failure on the first engine must not fall
	// through to the second, even though a chain of two exists.
	reg := registry.New()
	reached := false
	reg.Register(&stubProcessor{
		name: "first",
		caps: coretype.ProcessorCapabilities{MimeTypes: []string{"application/pdf"}, Priority: 90},
		fn: func(ctx context.Context, s *coretype.Source, opts map[string]any) (coretype.ProcessorResult, error) {
			return coretype.ProcessorResult{}, &coretype.FatalInternalError{Reason: "boom"}
		},
	})
	reg.Register(&stubProcessor{
		name: "second",
		caps: coretype.ProcessorCapabilities{MimeTypes: []string{"application/pdf"}, Priority: 10},
		fn: func(ctx context.Context, s *coretype.Source, opts map[string]any) (coretype.ProcessorResult, error) {
			reached = true
			return coretype.NewProcessorResult("ok", "application/pdf"), nil
		},
	})
	src, _ := coretype.NewSourceFromFile("/tmp/x.pdf")
	r := New(reg, silentLogger())

	cfg := engineconfig.ExtractionConfig{Fallback: engineconfig.FallbackConfig{
		Enabled: true, MaxAttempts: 3, OnError: engineconfig.OnErrorNext,
		FatalErrors: map[string]struct{}{string(coretype.KindFatalInternal): {}},
	}}
	_, err := r.Extract(context.Background(), src, "application/pdf", coretype.CategoryDocuments, cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if reached {
		t.Fatal("second engine should not have run after a fatal error")
	}
}

func TestExtract_AllEnginesFailedWhenChainExhausted(t *testing.T) {
	reg := registry.New()
	reg.Register(&stubProcessor{
		name: "only",
		caps: coretype.ProcessorCapabilities{MimeTypes: []string{"application/pdf"}, Priority: 50},
		fn: func(ctx context.Context, s *coretype.Source, opts map[string]any) (coretype.ProcessorResult, error) {
			return coretype.ProcessorResult{}, &coretype.ParseError{Reason: "nope"}
		},
	})
	src, _ := coretype.NewSourceFromFile("/tmp/x.pdf")
	r := New(reg, silentLogger())

	_, err := r.Extract(context.Background(), src, "application/pdf", coretype.CategoryDocuments, engineconfig.ExtractionConfig{Fallback: engineconfig.FallbackConfig{Enabled: true, MaxAttempts: 3, OnError: engineconfig.OnErrorNext}})
	var allFailed *coretype.AllEnginesFailedError
	if !errors.As(err, &allFailed) {
		t.Fatalf("expected AllEnginesFailedError, got %T: %v", err, err)
	}
	if len(allFailed.Attempts) != 1 {
		t.Fatalf("got %d attempts, want 1", len(allFailed.Attempts))
	}
}

func TestExtract_ExplicitUnregisteredEngineReturnsEngineNotFound(t *testing.T) {
	// WHAT: an explicit per-call engine override naming an engine the
	// registry doesn't know about must fail fast with EngineNotFoundError,
	// before any candidate is attempted.
	// WHY: an explicit override is a caller contract, unlike an
	// env-configured chain entry, which is dropped with a warning instead.
	reg := registry.New()
	src, _ := coretype.NewSourceFromFile("/tmp/x.pdf")
	src.Engine = []string{"nonexistent_engine"}
	r := New(reg, silentLogger())

	_, err := r.Extract(context.Background(), src, "application/pdf", coretype.CategoryDocuments, engineconfig.ExtractionConfig{})
	var notFound *coretype.EngineNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected EngineNotFoundError, got %T: %v", err, err)
	}
}

func TestExtract_EnvConfiguredUnregisteredEngineIsDroppedNotFailed(t *testing.T) {
	// WHAT: an env-configured chain entry naming an unregistered engine is
	// dropped with a warning, not treated as EngineNotFoundError — only an
	// explicit per-call override gets the fail-fast contract.
	reg := registry.New()
	reg.Register(&stubProcessor{
		name: "second",
		caps: coretype.ProcessorCapabilities{MimeTypes: []string{"application/pdf"}, Priority: 10},
		fn: func(ctx context.Context, s *coretype.Source, opts map[string]any) (coretype.ProcessorResult, error) {
			return coretype.NewProcessorResult("ok", "application/pdf"), nil
		},
	})
	src, _ := coretype.NewSourceFromFile("/tmp/x.pdf")
	r := New(reg, silentLogger())

	cfg := engineconfig.ExtractionConfig{
		EnginesByCategory: map[string][]string{"documents": {"missing_engine", "second"}},
		Fallback:          engineconfig.FallbackConfig{Enabled: true, MaxAttempts: 3, OnError: engineconfig.OnErrorNext},
	}
	res, err := r.Extract(context.Background(), src, "application/pdf", coretype.CategoryDocuments, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.EngineUsed != "second" {
		t.Fatalf("got engine %q, want second", res.EngineUsed)
	}
}

func TestExtract_NoCandidatesReturnsNoEngineAvailable(t *testing.T) {
	reg := registry.New()
	src, _ := coretype.NewSourceFromFile("/tmp/x.pdf")
	r := New(reg, silentLogger())

	_, err := r.Extract(context.Background(), src, "application/pdf", coretype.CategoryDocuments, engineconfig.ExtractionConfig{})
	var noEngine *coretype.NoEngineAvailableError
	if !errors.As(err, &noEngine) {
		t.Fatalf("expected NoEngineAvailableError, got %T: %v", err, err)
	}
}
