package urlengine

import (
	"context"
	"fmt"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"

	"github.com/extractcore/extractcore/coretype"
)

// HtmlUrlBasic fetches a page over plain HTTP and reduces it to markdown.
// The fetch→extract→convert pipeline is grounded on
// hazyhaar-chrc/veille/internal/pipeline/pipeline.go's web handler, which
// wires the same fetcher and the same html-to-markdown converter plugin
// set (base, commonmark, table).
type HtmlUrlBasic struct {
	fetcher   *fetcher
	converter *converter.Converter
	sanitizer *bluemonday.Policy
}

// NewHtmlUrlBasic builds the basic URL engine with the corpus's default
// html-to-markdown plugin set and a UGC sanitization policy applied to the
// raw HTML before conversion, closing the XSS-via-extracted-content gap the
// teacher's pipeline did not need to worry about (it wrote straight to an
// internal store, not into a caller-facing extraction result).
func NewHtmlUrlBasic() *HtmlUrlBasic {
	return &HtmlUrlBasic{
		fetcher: newFetcher(fetchConfig{}),
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func (e *HtmlUrlBasic) Name() string { return "html_url_basic" }

func (e *HtmlUrlBasic) Capabilities() coretype.ProcessorCapabilities {
	return coretype.ProcessorCapabilities{
		MimeTypes: []string{"text/html"},
		Priority:  50,
		Category:  coretype.CategoryURLs,
	}
}

func (e *HtmlUrlBasic) IsAvailable() bool { return true }

func (e *HtmlUrlBasic) Extract(ctx context.Context, source *coretype.Source, options map[string]any) (coretype.ProcessorResult, error) {
	rawURL := source.URL()
	if rawURL == "" {
		return coretype.ProcessorResult{}, &coretype.UnsupportedContentError{Reason: "html_url_basic requires a URL source"}
	}

	fetched, err := e.fetcher.fetch(ctx, rawURL)
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.NetworkError{Op: "fetch " + rawURL, Cause: err}
	}

	sanitized := e.sanitizer.SanitizeBytes(fetched.Body)

	extracted, err := extractFromHTML(sanitized, extractOptions{Mode: "auto"})
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.ParseError{Reason: "html extraction", Cause: err}
	}

	markdown, err := e.converter.ConvertString(extracted.HTML, converter.WithDomain(rawURL))
	if err != nil {
		markdown = extracted.Text // degrade gracefully rather than failing the whole attempt
	}

	result := coretype.NewProcessorResult(markdown, "text/markdown")
	result.Metadata = map[string]any{
		"sourceURL":  rawURL,
		"title":      extracted.Title,
		"contentHash": extracted.Hash,
		"httpStatus": fetched.StatusCode,
	}
	if markdown == "" {
		return coretype.ProcessorResult{}, &coretype.ParseError{Reason: fmt.Sprintf("no extractable content at %s", rawURL)}
	}
	return result, nil
}
