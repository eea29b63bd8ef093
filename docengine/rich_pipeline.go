// CLAUDE:SUMMARY Optional gated processor delegating to an external document-conversion service/binary when configured.
package docengine

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/extractcore/extractcore/coretype"
)

// RichDocumentPipeline is a third-party, optional engine whose
// IsAvailable gates on a configured external converter binary or service
// being present — the same availability-gating path as PdfVlmLocal. When
// unavailable it is simply absent from registry lookups; no feature flag
// or special-casing is needed elsewhere.
type RichDocumentPipeline struct {
	binary   string
	endpoint string
	client   *http.Client
}

// NewRichDocumentPipeline reads CCORE_RICH_DOC_BINARY (a local converter
// executable) and CCORE_RICH_DOC_ENDPOINT (an HTTP converter service);
// either, both, or neither may be set.
func NewRichDocumentPipeline() coretype.Processor {
	return &RichDocumentPipeline{
		binary:   os.Getenv("CCORE_RICH_DOC_BINARY"),
		endpoint: os.Getenv("CCORE_RICH_DOC_ENDPOINT"),
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *RichDocumentPipeline) Name() string { return "rich_document_pipeline" }

func (p *RichDocumentPipeline) Capabilities() coretype.ProcessorCapabilities {
	return coretype.ProcessorCapabilities{
		MimeTypes: []string{
			"application/pdf",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.oasis.opendocument.text",
		},
		Priority: 10, // last resort: external conversion is the most expensive path
		Requires: []string{"rich_doc_converter"},
		Category: coretype.CategoryDocuments,
	}
}

func (p *RichDocumentPipeline) IsAvailable() bool {
	if p.endpoint != "" {
		return true
	}
	if p.binary == "" {
		return false
	}
	_, err := exec.LookPath(p.binary)
	return err == nil
}

func (p *RichDocumentPipeline) Extract(ctx context.Context, source *coretype.Source, options map[string]any) (coretype.ProcessorResult, error) {
	if source.FilePath() == "" {
		return coretype.ProcessorResult{}, &coretype.UnsupportedContentError{Reason: "rich_document_pipeline requires a file path source"}
	}
	if !p.IsAvailable() {
		return coretype.ProcessorResult{}, &coretype.EngineUnavailableError{Engine: p.Name(), Reason: "no converter binary or endpoint configured"}
	}

	if p.endpoint != "" {
		return p.extractRemote(ctx, source.FilePath())
	}
	return p.extractLocal(ctx, source.FilePath())
}

func (p *RichDocumentPipeline) extractLocal(ctx context.Context, path string) (coretype.ProcessorResult, error) {
	cmd := exec.CommandContext(ctx, p.binary, "--to", "markdown", path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return coretype.ProcessorResult{}, &coretype.ParseError{Reason: fmt.Sprintf("converter binary failed: %s", stderr.String()), Cause: err}
	}
	result := coretype.NewProcessorResult(stdout.String(), coretype.MimeType("text/markdown"))
	return result, nil
}

func (p *RichDocumentPipeline) extractRemote(ctx context.Context, path string) (coretype.ProcessorResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.ParseError{Reason: "reading document for remote conversion", Cause: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(data))
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.FatalInternalError{Reason: "building rich-doc request", Cause: err}
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.NetworkError{Op: "rich_document_pipeline request", Cause: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return coretype.ProcessorResult{}, &coretype.ParseError{Reason: fmt.Sprintf("converter service returned status %d", resp.StatusCode)}
	}
	body := new(bytes.Buffer)
	if _, err := body.ReadFrom(resp.Body); err != nil {
		return coretype.ProcessorResult{}, &coretype.ParseError{Reason: "reading converter service response", Cause: err}
	}
	return coretype.NewProcessorResult(body.String(), coretype.MimeType("text/markdown")), nil
}
