package audiopipe

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/extractcore/extractcore/coretype"
	"github.com/extractcore/extractcore/engineconfig"
)

// AudioTranscribe is the audio transcription engine: segments the source
// file, fans transcription out across a bounded worker pool, and
// reassembles the transcript in original segment order.
type AudioTranscribe struct {
	cfg         engineconfig.AudioConfig
	transcriber Transcriber
}

// NewAudioTranscribe wires a transcriber built from cfg's provider/model
// overrides and environment credentials.
func NewAudioTranscribe(cfg engineconfig.AudioConfig) *AudioTranscribe {
	provider := cfg.ProviderOverride
	var endpoint, apiKeyEnv string
	switch strings.ToLower(provider) {
	case "groq":
		endpoint = "https://api.groq.com/openai/v1/audio/transcriptions"
		apiKeyEnv = "GROQ_API_KEY"
	default:
		endpoint = ""
		apiKeyEnv = "OPENAI_API_KEY"
	}
	return &AudioTranscribe{
		cfg:         cfg,
		transcriber: NewHTTPTranscriber(endpoint, os.Getenv(apiKeyEnv), cfg.ModelOverride),
	}
}

func (p *AudioTranscribe) Name() string { return "audio_transcribe" }

func (p *AudioTranscribe) Capabilities() coretype.ProcessorCapabilities {
	return coretype.ProcessorCapabilities{
		MimeTypes:  []string{"audio/*"},
		Extensions: []string{".mp3", ".wav", ".m4a", ".flac", ".ogg", ".aac"},
		Priority:   50,
		Requires:   []string{"ffmpeg", "ffprobe"},
		Category:   coretype.CategoryAudio,
	}
}

// IsAvailable checks for ffmpeg and ffprobe on PATH, the same
// subprocess-probe idiom used by the video demux engine.
func (p *AudioTranscribe) IsAvailable() bool {
	return hasBinary("ffmpeg") && hasBinary("ffprobe")
}

func (p *AudioTranscribe) Extract(ctx context.Context, source *coretype.Source, options map[string]any) (coretype.ProcessorResult, error) {
	if source.FilePath() == "" {
		return coretype.ProcessorResult{}, &coretype.UnsupportedContentError{Reason: "audio_transcribe requires a file path source"}
	}

	concurrency := p.cfg.Concurrency
	if source.Audio.Concurrency > 0 {
		concurrency = source.Audio.Concurrency
	}
	if concurrency < 1 {
		concurrency = 1
	}
	maxRetries := p.cfg.MaxRetries
	baseDelay := time.Duration(p.cfg.BaseDelayMs) * time.Millisecond
	maxDelay := time.Duration(p.cfg.MaxDelayMs) * time.Millisecond

	transcriber := p.transcriber
	if source.Audio.Provider != "" || source.Audio.Model != "" {
		provider := source.Audio.Provider
		if provider == "" {
			provider = p.cfg.ProviderOverride
		}
		model := source.Audio.Model
		if model == "" {
			model = p.cfg.ModelOverride
		}
		var endpoint, apiKeyEnv string
		switch strings.ToLower(provider) {
		case "groq":
			endpoint, apiKeyEnv = "https://api.groq.com/openai/v1/audio/transcriptions", "GROQ_API_KEY"
		default:
			apiKeyEnv = "OPENAI_API_KEY"
		}
		transcriber = NewHTTPTranscriber(endpoint, os.Getenv(apiKeyEnv), model)
	}

	var (
		texts    [][]string // paragraphs per segment, indexed by segment
		failures []coretype.SegmentFailure
		mu       sync.Mutex
	)

	err := segmentFile(ctx, source.FilePath(), defaultSegmentLen, func(segments []segment) error {
		texts = make([][]string, len(segments))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		for _, seg := range segments {
			seg := seg
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				text, err := transcribeSegment(gctx, transcriber, seg, maxRetries, baseDelay, maxDelay)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failures = append(failures, coretype.SegmentFailure{
						Index:   seg.index,
						Kind:    coretype.ClassifyKind(err),
						Message: err.Error(),
					})
					return nil // partial failures are reported, not fatal to the group
				}
				texts[seg.index] = []string{text}
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.ParseError{Reason: "audio segmentation failed", Cause: err}
	}

	if len(failures) > 0 {
		return coretype.ProcessorResult{}, &coretype.TranscriptionError{Segments: failures}
	}

	var sb strings.Builder
	for i, t := range texts {
		if len(t) == 0 {
			continue
		}
		if i > 0 && sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(t[0])
	}

	result := coretype.NewProcessorResult(sb.String(), coretype.MimeType("text/plain"))
	result.Metadata["segmentCount"] = len(texts)
	return result, nil
}

func transcribeSegment(ctx context.Context, t Transcriber, seg segment, maxRetries int, baseDelay, maxDelay time.Duration) (string, error) {
	var text string
	err := retryWithBackoff(ctx, maxRetries, baseDelay, maxDelay, func() error {
		out, err := t.Transcribe(ctx, seg.path)
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	return text, err
}
