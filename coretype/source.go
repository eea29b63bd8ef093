// Package coretype defines the shared data model that every extraction
// engine, the registry, the resolver, and the router build on: Source,
// MimeType, ProcessorCapabilities, ProcessorResult, ExtractionResult, and
// the error-kind taxonomy.
package coretype

import (
	"fmt"
	"strings"
)

// MimeType is a normalized MIME string. A wildcard form ("image/*")
// matches any specific type sharing the prefix.
type MimeType string

// Matches reports whether m satisfies pattern, which may be an exact MIME
// string or a wildcard of the form "type/*".
func (m MimeType) Matches(pattern string) bool {
	if pattern == string(m) {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(string(m), prefix)
	}
	return false
}

// IsWildcard reports whether m is itself a wildcard pattern such as "image/*".
func (m MimeType) IsWildcard() bool {
	return strings.HasSuffix(string(m), "/*")
}

// Category is a coarse grouping of MIME types used for environment
// configuration and registry lookups.
type Category string

const (
	CategoryDocuments Category = "documents"
	CategoryURLs      Category = "urls"
	CategoryAudio     Category = "audio"
	CategoryVideo     Category = "video"
	CategoryImages    Category = "images"
	CategoryText      Category = "text"
	CategoryYouTube   Category = "youtube"
)

// AudioOverride carries per-request overrides for the audio pipeline.
type AudioOverride struct {
	Provider    string
	Model       string
	Concurrency int // 0 means "use config default"
}

// Source is an immutable request value describing exactly one origin for
// content: a URL, a local file path, or raw content. Construct it with
// NewSourceFromURL, NewSourceFromFile or NewSourceFromContent, which
// enforce the exactly-one-of invariant the same way the distilled Python
// original's Source.__post_init__ does.
type Source struct {
	url     string
	filePath string
	content string

	// DeclaredMimeType is an optional caller-supplied hint; when empty the
	// router/document engines sniff it themselves.
	DeclaredMimeType MimeType

	// OutputFormat requests a specific document-engine output shape
	// ("markdown", "html", "structured"). Empty means the engine default.
	OutputFormat string

	// Engine is an optional explicit override: a single engine name or an
	// ordered list. When set it replaces resolver-driven chain selection
	// entirely (see engineconfig.EngineResolver.Resolve).
	Engine []string

	// Options is an opaque per-engine option map, keyed by engine name.
	Options map[string]map[string]any

	// TimeoutSeconds overrides the default overall extraction budget when
	// positive.
	TimeoutSeconds int

	// Audio carries audio-pipeline-specific overrides.
	Audio AudioOverride
}

// SourceType enumerates the three mutually exclusive Source origins.
type SourceType string

const (
	SourceTypeFile    SourceType = "file"
	SourceTypeURL     SourceType = "url"
	SourceTypeContent SourceType = "content"
)

// NewSourceFromURL builds a Source whose origin is a URL.
func NewSourceFromURL(url string) (*Source, error) {
	return newSource(url, "", "")
}

// NewSourceFromFile builds a Source whose origin is a local file path.
func NewSourceFromFile(path string) (*Source, error) {
	return newSource("", path, "")
}

// NewSourceFromContent builds a Source whose origin is raw in-memory content.
func NewSourceFromContent(content string) (*Source, error) {
	return newSource("", "", content)
}

func newSource(url, filePath, content string) (*Source, error) {
	provided := 0
	if url != "" {
		provided++
	}
	if filePath != "" {
		provided++
	}
	if content != "" {
		provided++
	}
	if provided == 0 {
		return nil, fmt.Errorf("coretype: must provide one of url, file_path, content")
	}
	if provided > 1 {
		return nil, fmt.Errorf("coretype: must provide only one of url, file_path, content")
	}
	return &Source{
		url:      url,
		filePath: filePath,
		content:  content,
		Options:  map[string]map[string]any{},
	}, nil
}

// URL returns the source's URL, or "" if this Source is not URL-typed.
func (s *Source) URL() string { return s.url }

// FilePath returns the source's file path, or "" if this Source is not file-typed.
func (s *Source) FilePath() string { return s.filePath }

// Content returns the source's raw content, or "" if this Source is not content-typed.
func (s *Source) Content() string { return s.content }

// Type reports which of url/file_path/content this Source carries.
func (s *Source) Type() SourceType {
	switch {
	case s.filePath != "":
		return SourceTypeFile
	case s.url != "":
		return SourceTypeURL
	default:
		return SourceTypeContent
	}
}

// EngineOptions returns the opaque option map registered for engineName,
// or nil if none was supplied.
func (s *Source) EngineOptions(engineName string) map[string]any {
	if s.Options == nil {
		return nil
	}
	return s.Options[engineName]
}
