// CLAUDE:SUMMARY Markdown-shaped variant of PdfText: promotes headings and detects tables from the same pdfcpu content stream.
package docengine

import (
	"context"
	"regexp"
	"strings"

	"github.com/extractcore/extractcore/coretype"
)

// PdfLlmMarkdown reuses extractPDF's pdfcpu stream parser but shapes the
// output as markdown: short, title-cased, un-punctuated lines are
// promoted to ATX headings, and runs of column-aligned whitespace are
// rendered as pipe tables. It is a structured variant layered on the same
// plumbing as PdfText, not a separate third-party dependency.
type PdfLlmMarkdown struct {
	pipe *Pipeline
}

// NewPdfLlmMarkdown builds the markdown-shaped PDF engine over pipe.
func NewPdfLlmMarkdown(pipe *Pipeline) coretype.Processor {
	return &PdfLlmMarkdown{pipe: pipe}
}

func (p *PdfLlmMarkdown) Name() string { return "pdf_llm_markdown" }

func (p *PdfLlmMarkdown) Capabilities() coretype.ProcessorCapabilities {
	return coretype.ProcessorCapabilities{
		MimeTypes:  []string{"application/pdf"},
		Extensions: []string{".pdf"},
		Priority:   40, // below pdf_text: markdown shaping is heuristic, plain text is not
		Category:   coretype.CategoryDocuments,
	}
}

func (p *PdfLlmMarkdown) IsAvailable() bool { return true }

func (p *PdfLlmMarkdown) Extract(ctx context.Context, source *coretype.Source, options map[string]any) (coretype.ProcessorResult, error) {
	if source.FilePath() == "" {
		return coretype.ProcessorResult{}, &coretype.UnsupportedContentError{Reason: "pdf_llm_markdown requires a file path source"}
	}
	if err := ctx.Err(); err != nil {
		return coretype.ProcessorResult{}, &coretype.CancelledError{Op: p.Name()}
	}

	doc, err := p.pipe.Extract(ctx, source.FilePath())
	if err != nil {
		return coretype.ProcessorResult{}, classifyExtractErr(FormatPDF, err)
	}

	md := toMarkdown(doc.Sections)
	result := coretype.NewProcessorResult(md, coretype.MimeType("text/markdown"))
	result.Metadata["title"] = doc.Title
	result.Metadata["sectionCount"] = len(doc.Sections)
	return result, nil
}

// headingCandidateRe matches a line that looks like a heading: short,
// no trailing sentence punctuation, mostly title-cased words.
var headingCandidateRe = regexp.MustCompile(`^[A-Z][A-Za-z0-9 ,'&-]{2,70}$`)

// columnRunRe matches two-or-more-space gaps, treated as column
// separators within one line of a section. Text produced by
// extractTextFromStream has already been through cleanPDFText, which
// collapses every whitespace run (newlines included) to a single space,
// so page sections from extractPDF carry no such gaps and no line breaks.
var columnRunRe = regexp.MustCompile(` {2,}`)

// toMarkdown converts PDF pages into markdown, promoting heading-shaped
// lines and rendering column-aligned lines as a pipe table.
func toMarkdown(sections []Section) string {
	var sb strings.Builder
	for i, sec := range sections {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		for _, line := range strings.Split(sec.Text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			switch {
			case columnRunRe.MatchString(line):
				sb.WriteString(tableRow(line))
			case isHeadingLine(line):
				sb.WriteString("## ")
				sb.WriteString(line)
			default:
				sb.WriteString(line)
			}
			sb.WriteByte('\n')
		}
	}
	return strings.TrimSpace(sb.String())
}

func isHeadingLine(line string) bool {
	if !headingCandidateRe.MatchString(line) {
		return false
	}
	words := strings.Fields(line)
	return len(words) > 0 && len(words) <= 8 && !strings.HasSuffix(line, ".")
}

func tableRow(line string) string {
	cols := columnRunRe.Split(line, -1)
	var sb strings.Builder
	sb.WriteByte('|')
	for _, c := range cols {
		sb.WriteByte(' ')
		sb.WriteString(strings.TrimSpace(c))
		sb.WriteString(" |")
	}
	return sb.String()
}
