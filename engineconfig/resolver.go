package engineconfig

import "strings"

// youtubeHosts mirrors the distilled original's substring check in
// youtube.py (video_url containing "youtube.com" or "youtu.be") rather
// than a strict URL-parse, since the original accepts the same loose match.
var youtubeHosts = []string{"youtube.com", "youtu.be"}

// IsYouTubeURL reports whether rawURL looks like a YouTube video URL.
func IsYouTubeURL(rawURL string) bool {
	for _, h := range youtubeHosts {
		if strings.Contains(rawURL, h) {
			return true
		}
	}
	return false
}

// EngineResolver turns a MIME type (plus optional source URL and explicit
// per-call engine choice) into an ordered chain of candidate engine names,
// following spec §4.2's six-step precedence. It holds no state beyond the
// registry's list of available engine names, used only to trim chains down
// to what can actually run.
type EngineResolver struct {
	availableEngines map[string]struct{}
}

// NewEngineResolver builds a resolver scoped to the given set of currently
// available engine names (see Registry.AvailableEngines).
func NewEngineResolver(available []string) *EngineResolver {
	set := make(map[string]struct{}, len(available))
	for _, name := range available {
		set[name] = struct{}{}
	}
	return &EngineResolver{availableEngines: set}
}

// Resolve implements spec §4.2's precedence order:
//  1. explicit per-call engine list (Source.Engine)
//  2. YouTube special case, if sourceURL looks like a YouTube video
//  3. env-configured exact-MIME engine chain
//  4. env-configured wildcard-MIME (category-via-MIME) engine chain
//  5. env-configured category chain
//  6. legacy single-engine override (document or URL, depending on category)
//
// The caller falls through to auto-detection from the registry's
// capability-sorted candidates when Resolve returns an empty chain — that
// step lives in the router, which already owns the registry reference.
func (r *EngineResolver) Resolve(cfg ExtractionConfig, mime string, category string, sourceURL string, explicit []string) []string {
	if len(explicit) > 0 {
		return explicit
	}

	if sourceURL != "" && IsYouTubeURL(sourceURL) {
		return []string{"youtube"}
	}

	if chain, ok := cfg.EnginesForMime(mime); ok && len(chain) > 0 {
		return chain
	}

	if wildcard := wildcardOf(mime); wildcard != "" {
		if chain, ok := cfg.EnginesForMime(wildcard); ok && len(chain) > 0 {
			return chain
		}
	}

	if chain, ok := cfg.EnginesByCategory[category]; ok && len(chain) > 0 {
		return chain
	}

	switch category {
	case "documents":
		if cfg.LegacyDocumentEngine != "" {
			return []string{cfg.LegacyDocumentEngine}
		}
	case "urls":
		if cfg.LegacyURLEngine != "" {
			return []string{cfg.LegacyURLEngine}
		}
	}

	return nil
}

// FilterAvailable drops engine names from chain that the registry does not
// currently report as available, preserving order.
func (r *EngineResolver) FilterAvailable(chain []string) []string {
	out := make([]string, 0, len(chain))
	for _, name := range chain {
		if _, ok := r.availableEngines[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// wildcardOf returns the type/* wildcard form of an exact MIME string, or
// "" if mime has no "/" separator.
func wildcardOf(mime string) string {
	idx := strings.IndexByte(mime, '/')
	if idx < 0 {
		return ""
	}
	return mime[:idx] + "/*"
}
