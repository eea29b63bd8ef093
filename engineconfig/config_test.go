package engineconfig

import (
	"log/slog"
	"testing"
)

func TestLoad_PopulatesEnginesByMimeFromEnv(t *testing.T) {
	// WHAT: Load must scan CCORE_ENGINE_<MIME> variables into EnginesByMime
	// so EnginesForMime actually sees them at runtime.
	t.Setenv("CCORE_ENGINE_APPLICATION_PDF", "docling-vlm,docling,pymupdf")
	cfg := Load(slog.Default())

	chain, ok := cfg.EnginesForMime("application/pdf")
	if !ok {
		t.Fatal("expected a configured chain for application/pdf")
	}
	want := []string{"docling-vlm", "docling", "pymupdf"}
	if len(chain) != len(want) {
		t.Fatalf("got %v, want %v", chain, want)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Fatalf("got %v, want %v", chain, want)
		}
	}
}

func TestLoad_DoesNotMistakeCategoryOrRetryKeysForMimeChains(t *testing.T) {
	// WHAT: CCORE_ENGINE_DOCUMENTS (a category key) and
	// CCORE_ENGINE_MAX_RETRIES (a retry-tuning key) must never land in
	// EnginesByMime, since they share the CCORE_ENGINE_ prefix with real
	// per-MIME chains.
	t.Setenv("CCORE_ENGINE_DOCUMENTS", "office_doc")
	t.Setenv("CCORE_ENGINE_MAX_RETRIES", "5")
	cfg := Load(slog.Default())

	if _, ok := cfg.EnginesByMime["CCORE_ENGINE_DOCUMENTS"]; ok {
		t.Error("category key leaked into EnginesByMime")
	}
	if _, ok := cfg.EnginesByMime["CCORE_ENGINE_MAX_RETRIES"]; ok {
		t.Error("retry-tuning key leaked into EnginesByMime")
	}
	if cfg.EnginesByCategory["documents"] == nil {
		t.Error("expected CCORE_ENGINE_DOCUMENTS to populate EnginesByCategory")
	}
}

func TestLoad_WildcardMimeEngineEnv(t *testing.T) {
	// WHAT: a wildcard MIME env var (e.g. audio/*) is reachable the same
	// way an exact MIME one is, via the generic mimeEnvKey transform.
	t.Setenv(mimeEnvKey("audio/*"), "audio_transcribe")
	cfg := Load(slog.Default())
	chain, ok := cfg.EnginesForMime("audio/*")
	if !ok || len(chain) != 1 || chain[0] != "audio_transcribe" {
		t.Fatalf("got %v, ok=%v, want [audio_transcribe]", chain, ok)
	}
}
