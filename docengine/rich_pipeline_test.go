package docengine

import "testing"

func TestRichDocumentPipeline_UnavailableWithNeitherConfigured(t *testing.T) {
	p := &RichDocumentPipeline{}
	if p.IsAvailable() {
		t.Error("expected IsAvailable=false with no binary or endpoint configured")
	}
}

func TestRichDocumentPipeline_AvailableWithEndpointOnly(t *testing.T) {
	// WHAT: a remote endpoint alone is sufficient, no local binary needed.
	p := &RichDocumentPipeline{endpoint: "https://rich-doc.example.com/convert"}
	if !p.IsAvailable() {
		t.Error("expected IsAvailable=true with endpoint configured")
	}
}

func TestRichDocumentPipeline_UnavailableWithBogusBinary(t *testing.T) {
	p := &RichDocumentPipeline{binary: "definitely-not-a-real-converter-binary"}
	if p.IsAvailable() {
		t.Error("expected IsAvailable=false for a binary not on PATH")
	}
}

func TestRichDocumentPipeline_Priority(t *testing.T) {
	// WHAT: rich_document_pipeline sits at the lowest document-engine
	// priority since external conversion is the most expensive path.
	p := &RichDocumentPipeline{}
	if got := p.Capabilities().Priority; got != 10 {
		t.Errorf("priority = %d, want 10", got)
	}
}
