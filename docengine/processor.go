// CLAUDE:SUMMARY Wraps Pipeline.Extract's format dispatch as coretype.Processor implementations for registry/router use.
package docengine

import (
	"context"
	"fmt"
	"strings"

	"github.com/extractcore/extractcore/coretype"
)

// mimeByFormat maps each docengine Format to the MIME type its Processor
// wrapper advertises to the registry.
var mimeByFormat = map[Format]string{
	FormatDocx: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FormatODT:  "application/vnd.oasis.opendocument.text",
	FormatPDF:  "application/pdf",
	FormatMD:   "text/markdown",
	FormatTXT:  "text/plain",
	FormatHTML: "text/html",
}

// extByFormat mirrors Pipeline.Detect's extension switch, used to
// advertise file-extension hints in ProcessorCapabilities.
var extByFormat = map[Format][]string{
	FormatDocx: {".docx"},
	FormatODT:  {".odt"},
	FormatPDF:  {".pdf"},
	FormatMD:   {".md", ".markdown"},
	FormatTXT:  {".txt", ".text"},
	FormatHTML: {".html", ".htm"},
}

// FormatProcessor adapts a single Format's extraction path to
// coretype.Processor, so the router dispatches to it like any other
// engine instead of calling Pipeline.Extract directly.
type FormatProcessor struct {
	pipe   *Pipeline
	format Format
	name   string
}

// NewFormatProcessors builds one FormatProcessor per format Pipeline
// supports, ready for registry.Register.
func NewFormatProcessors(pipe *Pipeline) []coretype.Processor {
	formats := []Format{FormatDocx, FormatODT, FormatPDF, FormatMD, FormatTXT, FormatHTML}
	procs := make([]coretype.Processor, 0, len(formats))
	for _, f := range formats {
		procs = append(procs, &FormatProcessor{pipe: pipe, format: f, name: processorName(f)})
	}
	return procs
}

func processorName(f Format) string {
	switch f {
	case FormatDocx, FormatODT:
		return "office_" + string(f)
	case FormatPDF:
		return "pdf_text"
	case FormatMD, FormatTXT:
		return "plain_" + string(f)
	case FormatHTML:
		return "html_file"
	default:
		return string(f)
	}
}

func (p *FormatProcessor) Name() string { return p.name }

func (p *FormatProcessor) Capabilities() coretype.ProcessorCapabilities {
	return coretype.ProcessorCapabilities{
		MimeTypes:  []string{mimeByFormat[p.format]},
		Extensions: extByFormat[p.format],
		Priority:   50,
		Category:   coretype.CategoryDocuments,
	}
}

// IsAvailable is always true: every format parser here is pure Go with
// no external binary or credential dependency.
func (p *FormatProcessor) IsAvailable() bool { return true }

func (p *FormatProcessor) Extract(ctx context.Context, source *coretype.Source, options map[string]any) (coretype.ProcessorResult, error) {
	if source.FilePath() == "" {
		return coretype.ProcessorResult{}, &coretype.UnsupportedContentError{Reason: p.name + " requires a file path source"}
	}
	if err := ctx.Err(); err != nil {
		return coretype.ProcessorResult{}, &coretype.CancelledError{Op: p.name}
	}

	doc, err := p.pipe.Extract(ctx, source.FilePath())
	if err != nil {
		return coretype.ProcessorResult{}, classifyExtractErr(p.format, err)
	}

	result := coretype.NewProcessorResult(doc.RawText, coretype.MimeType(mimeByFormat[p.format]))
	result.Metadata["title"] = doc.Title
	result.Metadata["sectionCount"] = len(doc.Sections)
	if doc.Quality != nil {
		result.Metadata["pdfQuality"] = doc.Quality
		if doc.Quality.NeedsOCR() {
			result.Warnings = append(result.Warnings, "pdf extraction quality is low; consider an OCR pass")
		}
		if doc.Quality.HasVisualGap() {
			result.Warnings = append(result.Warnings, "document references figures/tables not captured in text extraction")
		}
	}
	return result, nil
}

// classifyExtractErr maps Pipeline.Extract's wrapped errors onto the
// router's error-kind taxonomy. The pipeline itself only ever returns
// plain fmt.Errorf-wrapped errors, so classification here is by message
// shape rather than type assertion.
func classifyExtractErr(format Format, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "too large"):
		return &coretype.UnsupportedContentError{Reason: msg}
	case strings.Contains(msg, "no text content found"), strings.Contains(msg, "no parser for format"):
		return &coretype.ParseError{Reason: fmt.Sprintf("%s: %s", format, msg)}
	default:
		return &coretype.ParseError{Reason: string(format), Cause: err}
	}
}
