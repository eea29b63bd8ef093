// Package engineconfig builds the per-request ExtractionConfig snapshot
// from environment variables (the "global configuration → per-request
// immutable snapshot" redesign from the design notes) and implements the
// EngineResolver that turns a MIME type plus that snapshot into an
// ordered engine chain.
//
// The env(key, default) helper and the level-from-LOG_LEVEL convention
// are grounded on hazyhaar-chrc's cmd/chrc/main.go.
package engineconfig

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// env returns os.Getenv(key), or def if unset or empty.
func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt parses key as an int, returning def on absence or parse failure.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// envBool parses key using the same truthy-string set the distilled
// original's get_fallback_config_from_env accepts.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}

// mimeEnvKey implements spec §6's generic transform rule: slashes and
// plus signs become underscores, the result is uppercased. This is
// deliberately the generic rule rather than the distilled original's
// static per-MIME lookup table — see DESIGN.md Open Question resolutions.
func mimeEnvKey(mime string) string {
	r := strings.NewReplacer("/", "_", "+", "_")
	return "CCORE_ENGINE_" + strings.ToUpper(r.Replace(mime))
}

func categoryEnvKey(category string) string {
	return "CCORE_ENGINE_" + strings.ToUpper(category)
}

// categoryNames are the fixed category chains Load reads via categoryEnvKey;
// scanMimeEngineEnv excludes these (and the retry tuning keys below) so a
// category or retry-tuning var is never mistaken for a per-MIME chain.
var categoryNames = []string{"documents", "urls", "audio", "video", "images", "text"}

// reservedEngineEnvKeys are CCORE_ENGINE_* keys that are not per-MIME
// chains: the fixed category chains plus the retry tuning knobs.
func reservedEngineEnvKeys() map[string]struct{} {
	reserved := map[string]struct{}{
		"CCORE_ENGINE_MAX_RETRIES":         {},
		"CCORE_ENGINE_RETRY_BASE_DELAY_MS": {},
		"CCORE_ENGINE_RETRY_MAX_DELAY_MS":  {},
	}
	for _, c := range categoryNames {
		reserved[categoryEnvKey(c)] = struct{}{}
	}
	return reserved
}

// scanMimeEngineEnv implements spec §4.2 steps 2-3 / §6: every
// CCORE_ENGINE_<MIME> variable (the generic mimeEnvKey transform, not a
// fixed category name) configures an exact-or-wildcard MIME engine chain.
// Keyed by the env key itself so EnginesForMime's mimeEnvKey(mime) lookup
// hits directly.
func scanMimeEngineEnv() map[string][]string {
	reserved := reservedEngineEnvKeys()
	out := map[string][]string{}
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "CCORE_ENGINE_") {
			continue
		}
		if _, skip := reserved[key]; skip {
			continue
		}
		if chain := parseEngineList(value); chain != nil {
			out[key] = chain
		}
	}
	return out
}

// parseEngineList comma-splits value, trims whitespace, and drops empty
// entries — mirrors engine_config/env.py's _parse_engine_list.
func parseEngineList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LevelFromString maps the LOG_LEVEL convention shared across the corpus
// (debug/info/warn/error, default info) onto an slog.Level.
func LevelFromString(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
