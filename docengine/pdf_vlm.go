// CLAUDE:SUMMARY Gated local/remote VLM engines for picture-description captioning, layered on PdfText's extracted text.
package docengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/extractcore/extractcore/coretype"
)

// PdfVlmLocal shells out to a configured local VLM runtime binary to
// caption pages, the same os/exec-based availability probe idiom as
// video_demux's `ffmpeg -version` check. Captions are attached to
// metadata, never merged into exported text, so a captioning failure
// never corrupts the extracted document body.
type PdfVlmLocal struct {
	pipe   *Pipeline
	binary string
	model  string
}

// NewPdfVlmLocal builds the local VLM engine. binary defaults to the
// CCORE_VLM_LOCAL_BINARY env var; model defaults to "granite-docling" per
// the original's DEFAULT_VLM_CONFIG.
func NewPdfVlmLocal(pipe *Pipeline) coretype.Processor {
	binary := os.Getenv("CCORE_VLM_LOCAL_BINARY")
	model := os.Getenv("CCORE_VLM_MODEL")
	if model == "" {
		model = "granite-docling"
	}
	return &PdfVlmLocal{pipe: pipe, binary: binary, model: model}
}

func (p *PdfVlmLocal) Name() string { return "pdf_vlm_local" }

func (p *PdfVlmLocal) Capabilities() coretype.ProcessorCapabilities {
	return coretype.ProcessorCapabilities{
		MimeTypes:  []string{"application/pdf"},
		Extensions: []string{".pdf"},
		Priority:   20,
		Requires:   []string{"vlm_local_binary"},
		Category:   coretype.CategoryDocuments,
	}
}

func (p *PdfVlmLocal) IsAvailable() bool {
	if p.binary == "" {
		return false
	}
	_, err := exec.LookPath(p.binary)
	return err == nil
}

func (p *PdfVlmLocal) Extract(ctx context.Context, source *coretype.Source, options map[string]any) (coretype.ProcessorResult, error) {
	if source.FilePath() == "" {
		return coretype.ProcessorResult{}, &coretype.UnsupportedContentError{Reason: "pdf_vlm_local requires a file path source"}
	}
	if !p.IsAvailable() {
		return coretype.ProcessorResult{}, &coretype.EngineUnavailableError{Engine: p.Name(), Reason: "local VLM runtime binary not configured"}
	}

	doc, err := p.pipe.Extract(ctx, source.FilePath())
	if err != nil {
		return coretype.ProcessorResult{}, classifyExtractErr(FormatPDF, err)
	}

	cmd := exec.CommandContext(ctx, p.binary, "--model", p.model, "--input", source.FilePath())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return coretype.ProcessorResult{}, &coretype.ParseError{Reason: fmt.Sprintf("local VLM runtime failed: %s", stderr.String()), Cause: err}
	}

	result := coretype.NewProcessorResult(doc.RawText, coretype.MimeType("text/plain"))
	result.Metadata["title"] = doc.Title
	result.Metadata["picture_descriptions"] = stdout.String()
	return result, nil
}

// PdfVlmRemote is an authenticated HTTP client over net/http, built like
// the Firecrawl/Jina URL-engine clients: env-gated API key, raw PDF
// request body, JSON response, availability keyed off endpoint and
// credential presence.
type PdfVlmRemote struct {
	pipe     *Pipeline
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewPdfVlmRemote builds the remote VLM engine, reading its endpoint and
// key from CCORE_VLM_REMOTE_ENDPOINT and CCORE_VLM_REMOTE_API_KEY.
func NewPdfVlmRemote(pipe *Pipeline) coretype.Processor {
	model := os.Getenv("CCORE_VLM_MODEL")
	if model == "" {
		model = "granite-docling"
	}
	return &PdfVlmRemote{
		pipe:     pipe,
		endpoint: os.Getenv("CCORE_VLM_REMOTE_ENDPOINT"),
		apiKey:   os.Getenv("CCORE_VLM_REMOTE_API_KEY"),
		model:    model,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *PdfVlmRemote) Name() string { return "pdf_vlm_remote" }

func (p *PdfVlmRemote) Capabilities() coretype.ProcessorCapabilities {
	return coretype.ProcessorCapabilities{
		MimeTypes:  []string{"application/pdf"},
		Extensions: []string{".pdf"},
		Priority:   15,
		Category:   coretype.CategoryDocuments,
	}
}

func (p *PdfVlmRemote) IsAvailable() bool { return p.endpoint != "" && p.apiKey != "" }

type vlmRemoteResponse struct {
	PictureDescriptions string `json:"picture_descriptions"`
}

func (p *PdfVlmRemote) Extract(ctx context.Context, source *coretype.Source, options map[string]any) (coretype.ProcessorResult, error) {
	if source.FilePath() == "" {
		return coretype.ProcessorResult{}, &coretype.UnsupportedContentError{Reason: "pdf_vlm_remote requires a file path source"}
	}
	if !p.IsAvailable() {
		return coretype.ProcessorResult{}, &coretype.EngineUnavailableError{Engine: p.Name(), Reason: "CCORE_VLM_REMOTE_ENDPOINT/CCORE_VLM_REMOTE_API_KEY not set"}
	}

	doc, err := p.pipe.Extract(ctx, source.FilePath())
	if err != nil {
		return coretype.ProcessorResult{}, classifyExtractErr(FormatPDF, err)
	}

	data, err := os.ReadFile(source.FilePath())
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.ParseError{Reason: "reading pdf for remote VLM call", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(data))
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.FatalInternalError{Reason: "building VLM request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("X-VLM-Model", p.model)

	resp, err := p.client.Do(req)
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.NetworkError{Op: "pdf_vlm_remote request", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return coretype.ProcessorResult{}, &coretype.AuthError{Engine: p.Name()}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return coretype.ProcessorResult{}, &coretype.RateLimitError{Engine: p.Name(), RetryAfter: resp.Header.Get("Retry-After")}
	}
	if resp.StatusCode != http.StatusOK {
		return coretype.ProcessorResult{}, &coretype.ParseError{Reason: fmt.Sprintf("pdf_vlm_remote returned status %d", resp.StatusCode)}
	}

	var parsed vlmRemoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return coretype.ProcessorResult{}, &coretype.ParseError{Reason: "decoding pdf_vlm_remote response", Cause: err}
	}

	result := coretype.NewProcessorResult(doc.RawText, coretype.MimeType("text/plain"))
	result.Metadata["title"] = doc.Title
	result.Metadata["picture_descriptions"] = parsed.PictureDescriptions
	return result, nil
}
