package urlengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/extractcore/extractcore/coretype"
)

// remoteScraper is the shared shape for hosted HTML-rendering APIs
// (Firecrawl, Jina Reader): POST a URL, get markdown back. Both engines
// are new clients — no hosted-scraper integration exists in the retrieved
// corpus — but they reuse the backoff.Retry/backoff.Permanent pattern from
// csg4786's internal/extractor/advanced.go for their HTTP retry, and
// bluemonday/html-to-markdown have no role here since the APIs already
// return markdown.
type remoteScraper struct {
	name       string
	endpoint   string
	apiKeyEnv  string
	buildBody  func(url string) ([]byte, error)
	extractMD  func(body []byte) (string, error)
	client     *http.Client
}

func (r *remoteScraper) Name() string { return r.name }

func (r *remoteScraper) Capabilities() coretype.ProcessorCapabilities {
	return coretype.ProcessorCapabilities{
		MimeTypes: []string{"text/html"},
		Priority:  70,
		Category:  coretype.CategoryURLs,
	}
}

func (r *remoteScraper) IsAvailable() bool { return os.Getenv(r.apiKeyEnv) != "" }

func (r *remoteScraper) Extract(ctx context.Context, source *coretype.Source, options map[string]any) (coretype.ProcessorResult, error) {
	apiKey := os.Getenv(r.apiKeyEnv)
	if apiKey == "" {
		return coretype.ProcessorResult{}, &coretype.EngineUnavailableError{Engine: r.name, Reason: r.apiKeyEnv + " not set"}
	}

	rawURL := source.URL()
	if rawURL == "" {
		return coretype.ProcessorResult{}, &coretype.UnsupportedContentError{Reason: r.name + " requires a URL source"}
	}

	body, err := r.buildBody(rawURL)
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.FatalInternalError{Reason: "build request body", Cause: err}
	}

	var markdown string
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	policy := backoff.WithContext(bo, ctx)

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := r.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return backoff.Permanent(&coretype.AuthError{Engine: r.name})
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return &coretype.RateLimitError{Engine: r.name, RetryAfter: resp.Header.Get("Retry-After")}
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(fmt.Errorf("%s: http %d: %s", r.name, resp.StatusCode, respBody))
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%s: http %d", r.name, resp.StatusCode)
		}

		md, err := r.extractMD(respBody)
		if err != nil {
			return backoff.Permanent(&coretype.ParseError{Reason: "parse " + r.name + " response", Cause: err})
		}
		markdown = md
		return nil
	}

	// backoff.Retry unwraps backoff.Permanent errors before returning, so
	// err below is already the original AuthError/ParseError/status error.
	if err := backoff.Retry(op, policy); err != nil {
		if _, ok := err.(*coretype.AuthError); ok {
			return coretype.ProcessorResult{}, err
		}
		if _, ok := err.(*coretype.ParseError); ok {
			return coretype.ProcessorResult{}, err
		}
		return coretype.ProcessorResult{}, &coretype.NetworkError{Op: r.name + " request", Cause: err}
	}

	result := coretype.NewProcessorResult(markdown, "text/markdown")
	result.Metadata = map[string]any{"sourceURL": rawURL, "engine": r.name}
	return result, nil
}

type firecrawlRequest struct {
	URL          string   `json:"url"`
	Formats      []string `json:"formats"`
}

type firecrawlResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
	Error string `json:"error"`
}

// NewHtmlUrlFirecrawl builds a client for Firecrawl's scrape endpoint,
// gated on FIRECRAWL_API_KEY.
func NewHtmlUrlFirecrawl() coretype.Processor {
	return &remoteScraper{
		name:      "html_url_firecrawl",
		endpoint:  "https://api.firecrawl.dev/v1/scrape",
		apiKeyEnv: "FIRECRAWL_API_KEY",
		client:    &http.Client{Timeout: 60 * time.Second},
		buildBody: func(url string) ([]byte, error) {
			return json.Marshal(firecrawlRequest{URL: url, Formats: []string{"markdown"}})
		},
		extractMD: func(body []byte) (string, error) {
			var resp firecrawlResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return "", err
			}
			if !resp.Success {
				return "", fmt.Errorf("firecrawl: %s", resp.Error)
			}
			return resp.Data.Markdown, nil
		},
	}
}

type jinaResponse struct {
	Data struct {
		Content string `json:"content"`
	} `json:"data"`
}

// NewHtmlUrlJina builds a client for Jina Reader's r.jina.ai endpoint,
// gated on JINA_API_KEY.
func NewHtmlUrlJina() coretype.Processor {
	return &remoteScraper{
		name:      "html_url_jina",
		endpoint:  "https://r.jina.ai/",
		apiKeyEnv: "JINA_API_KEY",
		client:    &http.Client{Timeout: 60 * time.Second},
		buildBody: func(url string) ([]byte, error) {
			return json.Marshal(map[string]string{"url": url})
		},
		extractMD: func(body []byte) (string, error) {
			var resp jinaResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return "", err
			}
			return resp.Data.Content, nil
		},
	}
}
