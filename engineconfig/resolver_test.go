package engineconfig

import "testing"

func TestResolve_ExplicitWinsOverEverything(t *testing.T) {
	r := NewEngineResolver([]string{"pdf_text"})
	cfg := ExtractionConfig{EnginesByMime: map[string][]string{"CCORE_ENGINE_APPLICATION_PDF": {"pdf_vlm_remote"}}}
	got := r.Resolve(cfg, "application/pdf", "documents", "", []string{"pdf_text"})
	if len(got) != 1 || got[0] != "pdf_text" {
		t.Fatalf("got %v, want [pdf_text]", got)
	}
}

func TestResolve_YouTubeBeatsEnvConfig(t *testing.T) {
	// WHAT: a YouTube URL is routed to the transcript engine even when an
	// env category chain exists for urls.
	r := NewEngineResolver(nil)
	cfg := ExtractionConfig{EnginesByCategory: map[string][]string{"urls": {"html_url_basic"}}}
	got := r.Resolve(cfg, "text/html", "urls", "https://youtu.be/abc123", nil)
	if len(got) != 1 || got[0] != "youtube" {
		t.Fatalf("got %v, want [youtube]", got)
	}
}

func TestResolve_ExactMimeBeatsWildcardAndCategory(t *testing.T) {
	cfg := ExtractionConfig{
		EnginesByMime: map[string][]string{
			"CCORE_ENGINE_APPLICATION_PDF": {"pdf_text"},
			"CCORE_ENGINE_APPLICATION_*":   {"pdf_vlm_remote"},
		},
		EnginesByCategory: map[string][]string{"documents": {"office_doc"}},
	}
	r := NewEngineResolver(nil)
	got := r.Resolve(cfg, "application/pdf", "documents", "", nil)
	if len(got) != 1 || got[0] != "pdf_text" {
		t.Fatalf("got %v, want [pdf_text]", got)
	}
}

func TestResolve_LegacyFallsBackWhenNothingElseConfigured(t *testing.T) {
	cfg := ExtractionConfig{LegacyDocumentEngine: "office_doc"}
	r := NewEngineResolver(nil)
	got := r.Resolve(cfg, "application/msword", "documents", "", nil)
	if len(got) != 1 || got[0] != "office_doc" {
		t.Fatalf("got %v, want [office_doc]", got)
	}
}

func TestResolve_EmptyWhenNothingConfigured(t *testing.T) {
	r := NewEngineResolver(nil)
	got := r.Resolve(ExtractionConfig{}, "application/pdf", "documents", "", nil)
	if got != nil {
		t.Fatalf("got %v, want nil (fall through to auto-detect)", got)
	}
}

func TestFilterAvailable_DropsUnavailableEngines(t *testing.T) {
	r := NewEngineResolver([]string{"pdf_text"})
	got := r.FilterAvailable([]string{"pdf_text", "pdf_vlm_remote"})
	if len(got) != 1 || got[0] != "pdf_text" {
		t.Fatalf("got %v, want [pdf_text]", got)
	}
}
