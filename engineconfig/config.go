package engineconfig

import (
	"log/slog"
	"strings"
)

// OnError is the fallback policy's per-engine-failure disposition.
type OnError string

const (
	OnErrorNext OnError = "next"
	OnErrorWarn OnError = "warn"
	OnErrorFail OnError = "fail"
)

// FallbackConfig governs the router's fallback behavior.
type FallbackConfig struct {
	Enabled     bool
	MaxAttempts int // [1,10]
	OnError     OnError
	FatalErrors map[string]struct{} // error-kind tokens that bypass OnError
}

// IsFatal reports whether kind (an ErrorKind string value) is configured
// as fatal, bypassing the OnError policy entirely.
func (f FallbackConfig) IsFatal(kind string) bool {
	_, ok := f.FatalErrors[kind]
	return ok
}

// AudioConfig governs the audio pipeline's concurrency and retry behavior.
type AudioConfig struct {
	Concurrency      int // [1,10], default 3
	ProviderOverride string
	ModelOverride    string
	MaxRetries       int
	BaseDelayMs      int
	MaxDelayMs       int
}

// RetryConfig governs per-engine-attempt retry behavior applied by the
// router before an attempt counts as a fallback-policy failure.
type RetryConfig struct {
	MaxRetries  int
	BaseDelayMs int
	MaxDelayMs  int
}

// ExtractionConfig is the immutable per-request snapshot derived from the
// environment by Load; callers may adjust fields of the returned value.
type ExtractionConfig struct {
	EnginesByMime     map[string][]string // exact and wildcard MIME -> engine chain
	EnginesByCategory map[string][]string
	LegacyDocumentEngine string
	LegacyURLEngine       string
	Fallback          FallbackConfig
	EngineOptions     map[string]map[string]any
	Audio             AudioConfig
	Retry             RetryConfig
	TimeoutSeconds    int
	YouTubeLanguages  []string
}

// Load builds an ExtractionConfig snapshot from the current process
// environment. Callers needing deterministic tests should call Load once
// per test case rather than sharing a snapshot, matching spec §9's
// per-call-snapshot resolution of the original's inconsistent reload timing.
func Load(logger *slog.Logger) ExtractionConfig {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := ExtractionConfig{
		EnginesByMime:     scanMimeEngineEnv(),
		EnginesByCategory: map[string][]string{},
		EngineOptions:     map[string]map[string]any{},
	}

	cfg.LegacyDocumentEngine = env("CCORE_DOCUMENT_ENGINE", "")
	cfg.LegacyURLEngine = env("CCORE_URL_ENGINE", "")

	for _, category := range categoryNames {
		if chain := parseEngineList(env(categoryEnvKey(category), "")); chain != nil {
			cfg.EnginesByCategory[category] = chain
		}
	}

	cfg.Fallback = loadFallbackConfig(logger)
	cfg.Audio = loadAudioConfig(logger)
	cfg.Retry = RetryConfig{
		MaxRetries:  envInt("CCORE_ENGINE_MAX_RETRIES", 1),
		BaseDelayMs: envInt("CCORE_ENGINE_RETRY_BASE_DELAY_MS", 300),
		MaxDelayMs:  envInt("CCORE_ENGINE_RETRY_MAX_DELAY_MS", 4000),
	}

	if langs := parseEngineList(env("CCORE_YOUTUBE_LANGUAGES", "en,es,pt")); langs != nil {
		cfg.YouTubeLanguages = langs
	} else {
		cfg.YouTubeLanguages = []string{"en", "es", "pt"}
	}

	cfg.TimeoutSeconds = envInt("CCORE_TIMEOUT_SECONDS", 300)

	return cfg
}

// EnginesForMime returns the configured chain for an exact MIME key, if any.
func (c ExtractionConfig) EnginesForMime(mime string) ([]string, bool) {
	key := mimeEnvKey(mime)
	if chain, ok := c.EnginesByMime[key]; ok {
		return chain, true
	}
	// Also allow a caller to have pre-populated EnginesByMime with raw
	// MIME strings (used by tests and programmatic overrides).
	chain, ok := c.EnginesByMime[mime]
	return chain, ok
}

// loadFallbackConfig mirrors engine_config/env.py's
// get_fallback_config_from_env: out-of-range or unparsable values are
// silently ignored (default retained), not logged — unlike audio
// concurrency, which does log. See DESIGN.md.
func loadFallbackConfig(logger *slog.Logger) FallbackConfig {
	fc := FallbackConfig{
		Enabled:     envBool("CCORE_FALLBACK_ENABLED", true),
		MaxAttempts: 3,
		OnError:     OnErrorWarn,
		FatalErrors: map[string]struct{}{},
	}

	if raw := env("CCORE_FALLBACK_MAX_ATTEMPTS", ""); raw != "" {
		if n := envInt("CCORE_FALLBACK_MAX_ATTEMPTS", -1); n >= 1 && n <= 10 {
			fc.MaxAttempts = n
		}
	}

	if raw := strings.ToLower(strings.TrimSpace(env("CCORE_FALLBACK_ON_ERROR", ""))); raw != "" {
		switch OnError(raw) {
		case OnErrorNext, OnErrorWarn, OnErrorFail:
			fc.OnError = OnError(raw)
		}
	}

	return fc
}

// loadAudioConfig mirrors config.py's get_audio_concurrency: invalid or
// out-of-range values log a warning and fall back to 3, an asymmetry with
// the fallback config's silent-ignore behavior that is intentional (see
// DESIGN.md).
func loadAudioConfig(logger *slog.Logger) AudioConfig {
	ac := AudioConfig{
		Concurrency: 3,
		MaxRetries:  3,
		BaseDelayMs: 500,
		MaxDelayMs:  8000,
	}

	if raw := env("CCORE_AUDIO_CONCURRENCY", ""); raw != "" {
		n := envInt("CCORE_AUDIO_CONCURRENCY", -1)
		if n >= 1 && n <= 10 {
			ac.Concurrency = n
		} else {
			logger.Warn("invalid CCORE_AUDIO_CONCURRENCY, falling back to default",
				"value", raw, "default", 3)
		}
	}

	return ac
}
