package registry

import (
	"context"
	"testing"

	"github.com/extractcore/extractcore/coretype"
)

type fakeProcessor struct {
	name     string
	caps     coretype.ProcessorCapabilities
	avail    bool
	availCalls *int
}

func (f *fakeProcessor) Name() string                            { return f.name }
func (f *fakeProcessor) Capabilities() coretype.ProcessorCapabilities { return f.caps }
func (f *fakeProcessor) IsAvailable() bool {
	if f.availCalls != nil {
		*f.availCalls++
	}
	return f.avail
}
func (f *fakeProcessor) Extract(ctx context.Context, s *coretype.Source, opts map[string]any) (coretype.ProcessorResult, error) {
	return coretype.NewProcessorResult("", ""), nil
}

func mustRegister(t *testing.T, r *Registry, p coretype.Processor) {
	t.Helper()
	if err := r.Register(p); err != nil {
		t.Fatalf("register %s: %v", p.Name(), err)
	}
}

func TestFindByMime_PriorityOrdersDescending(t *testing.T) {
	// WHAT: two processors claim the same MIME; higher priority sorts first.
	// WHY: spec §4.1 ordering rationale — priority expresses editorial preference.
	r := New()
	low := &fakeProcessor{name: "low", avail: true, caps: coretype.ProcessorCapabilities{MimeTypes: []string{"application/pdf"}, Priority: 10}}
	high := &fakeProcessor{name: "high", avail: true, caps: coretype.ProcessorCapabilities{MimeTypes: []string{"application/pdf"}, Priority: 90}}
	mustRegister(t, r, low)
	mustRegister(t, r, high)

	got := r.FindByMime("application/pdf")
	if len(got) != 2 || got[0].Name() != "high" || got[1].Name() != "low" {
		t.Fatalf("got order %v, want [high low]", namesOf(got))
	}
}

func TestFindByMime_UnavailableSortsLast(t *testing.T) {
	// WHAT: an unavailable processor never outranks an available one, even
	// with higher priority.
	// WHY: spec §4.1 — "availability gating keeps the resolver from ever
	// returning an engine the environment cannot run" ahead of priority.
	r := New()
	unavailable := &fakeProcessor{name: "unavailable", avail: false, caps: coretype.ProcessorCapabilities{MimeTypes: []string{"application/pdf"}, Priority: 99}}
	available := &fakeProcessor{name: "available", avail: true, caps: coretype.ProcessorCapabilities{MimeTypes: []string{"application/pdf"}, Priority: 1}}
	mustRegister(t, r, unavailable)
	mustRegister(t, r, available)

	got := r.FindByMime("application/pdf")
	if len(got) != 2 || got[0].Name() != "available" {
		t.Fatalf("got order %v, want available first", namesOf(got))
	}
}

func TestFindByMime_RegistrationOrderTieBreak(t *testing.T) {
	// WHAT: equal priority, equal availability — registration order decides.
	r := New()
	first := &fakeProcessor{name: "first", avail: true, caps: coretype.ProcessorCapabilities{MimeTypes: []string{"text/plain"}, Priority: 50}}
	second := &fakeProcessor{name: "second", avail: true, caps: coretype.ProcessorCapabilities{MimeTypes: []string{"text/plain"}, Priority: 50}}
	mustRegister(t, r, first)
	mustRegister(t, r, second)

	got := r.FindByMime("text/plain")
	if got[0].Name() != "first" || got[1].Name() != "second" {
		t.Fatalf("got order %v, want [first second]", namesOf(got))
	}
}

func TestFindByMime_WildcardMatches(t *testing.T) {
	r := New()
	mustRegister(t, r, &fakeProcessor{name: "img", avail: true, caps: coretype.ProcessorCapabilities{MimeTypes: []string{"image/*"}, Priority: 50}})

	got := r.FindByMime("image/png")
	if len(got) != 1 || got[0].Name() != "img" {
		t.Fatalf("expected wildcard match, got %v", namesOf(got))
	}
}

func TestIsAvailable_MemoizedOncePerProcess(t *testing.T) {
	// WHAT: IsAvailable() is invoked at most once per processor even across
	// repeated lookups.
	// WHY: spec §4.1 — "Availability is checked lazily and memoized per process."
	calls := 0
	r := New()
	mustRegister(t, r, &fakeProcessor{name: "p", avail: true, caps: coretype.ProcessorCapabilities{MimeTypes: []string{"a/b"}}, availCalls: &calls})

	r.FindByMime("a/b")
	r.FindByMime("a/b")
	r.AvailableEngines()

	if calls != 1 {
		t.Fatalf("IsAvailable called %d times, want 1", calls)
	}
}

func TestRegister_DuplicateNameFails(t *testing.T) {
	r := New()
	mustRegister(t, r, &fakeProcessor{name: "dup", avail: true, caps: coretype.ProcessorCapabilities{MimeTypes: []string{"a/b"}}})
	if err := r.Register(&fakeProcessor{name: "dup", avail: true}); err == nil {
		t.Fatal("expected error registering duplicate name")
	}
}

func TestRegister_AfterSealFails(t *testing.T) {
	r := New()
	r.Seal()
	if err := r.Register(&fakeProcessor{name: "late", avail: true}); err == nil {
		t.Fatal("expected error registering after Seal")
	}
}

func namesOf(ps []coretype.Processor) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name()
	}
	return out
}
