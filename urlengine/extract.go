// Package urlengine implements the URL engine cascade: fetch a page (plain
// HTTP, a headless browser, or a hosted scraping API), then reduce it to
// readable text via CSS-selector or text-density extraction.
//
// The extraction algorithm (auto mode: try selectors, fall back to
// density scoring) and its supporting helpers are adapted from
// hazyhaar-chrc's domkeeper/internal/extract package, retargeted from
// that package's crawl-pipeline Result/Options shape onto
// coretype.ProcessorResult.
package urlengine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type extractResult struct {
	Text  string
	HTML  string
	Title string
	Hash  string
}

type extractOptions struct {
	Selectors  []string
	Mode       string // "css", "density", "auto"
	MinTextLen int
}

func (o *extractOptions) defaults() {
	if o.Mode == "" {
		o.Mode = "auto"
	}
	if o.MinTextLen <= 0 {
		o.MinTextLen = 50
	}
}

func extractFromHTML(rawHTML []byte, opts extractOptions) (*extractResult, error) {
	opts.defaults()

	doc, err := html.Parse(bytes.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("urlengine: parse html: %w", err)
	}

	title := findTitle(doc)

	switch opts.Mode {
	case "css":
		return extractCSS(doc, opts.Selectors, title, opts.MinTextLen)
	case "density":
		return extractDensity(doc, title, opts.MinTextLen)
	case "auto":
		if len(opts.Selectors) > 0 {
			res, err := extractCSS(doc, opts.Selectors, title, opts.MinTextLen)
			if err == nil && len(res.Text) >= opts.MinTextLen {
				return res, nil
			}
		}
		return extractDensity(doc, title, opts.MinTextLen)
	default:
		return nil, fmt.Errorf("urlengine: unknown extract mode %q", opts.Mode)
	}
}

func findTitle(doc *html.Node) string {
	var title string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			if n.FirstChild != nil {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)
	return title
}

func hashText(text string) string {
	h := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", h)
}

func renderNode(n *html.Node) string {
	var buf bytes.Buffer
	html.Render(&buf, n)
	return buf.String()
}

func collectText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}

func isContentTag(a atom.Atom) bool {
	switch a {
	case atom.Main, atom.Article, atom.Section, atom.Div, atom.P,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Blockquote, atom.Pre, atom.Ul, atom.Ol, atom.Li,
		atom.Table, atom.Td, atom.Th, atom.Dl, atom.Dd, atom.Dt,
		atom.Figure, atom.Figcaption, atom.Details, atom.Summary:
		return true
	}
	return false
}

var boilerplatePatterns = []string{
	"sidebar", "footer", "header", "nav", "menu", "breadcrumb",
	"cookie", "banner", "advert", "social", "share", "comment",
	"related", "widget", "popup", "modal",
}

func isBoilerplate(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Nav, atom.Footer, atom.Header, atom.Aside:
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == "class" || attr.Key == "id" {
			lower := strings.ToLower(attr.Val)
			for _, pattern := range boilerplatePatterns {
				if strings.Contains(lower, pattern) {
					return true
				}
			}
		}
		if attr.Key == "role" {
			switch attr.Val {
			case "navigation", "banner", "contentinfo", "complementary":
				return true
			}
		}
	}
	return false
}
