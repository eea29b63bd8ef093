package ytpipe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/extractcore/extractcore/coretype"
)

// YouTubeTranscript extracts a video's transcript by scraping its watch
// page for caption tracks and fetching the selected track's timedtext
// XML. It has no MIME types of its own — the resolver's YouTube special
// case (engineconfig.IsYouTubeURL) routes to it ahead of ordinary
// MIME-based resolution, matching the original's supports_url gate.
type YouTubeTranscript struct {
	client         *http.Client
	preferredLangs []string
}

// NewYouTubeTranscript builds the engine with the given preferred
// language order, defaulting to the original's ["en", "es", "pt"].
func NewYouTubeTranscript(preferredLangs []string) *YouTubeTranscript {
	if len(preferredLangs) == 0 {
		preferredLangs = []string{"en", "es", "pt"}
	}
	return &YouTubeTranscript{
		client:         &http.Client{Timeout: 30 * time.Second},
		preferredLangs: preferredLangs,
	}
}

func (p *YouTubeTranscript) Name() string { return "youtube" }

func (p *YouTubeTranscript) Capabilities() coretype.ProcessorCapabilities {
	return coretype.ProcessorCapabilities{
		MimeTypes: nil,
		Priority:  60,
		Category:  coretype.CategoryYouTube,
	}
}

func (p *YouTubeTranscript) IsAvailable() bool { return true }

func (p *YouTubeTranscript) Extract(ctx context.Context, source *coretype.Source, options map[string]any) (coretype.ProcessorResult, error) {
	rawURL := source.URL()
	if rawURL == "" {
		return coretype.ProcessorResult{}, &coretype.UnsupportedContentError{Reason: "youtube engine requires a URL source"}
	}
	videoID, ok := ExtractVideoID(rawURL)
	if !ok {
		return coretype.ProcessorResult{}, &coretype.UnsupportedContentError{Reason: fmt.Sprintf("not a recognizable YouTube URL: %s", rawURL)}
	}

	title := fetchTitle(ctx, p.client, videoID)

	var html string
	if err := retryTransient(ctx, 2, 300*time.Millisecond, func() error {
		h, err := fetchWatchPage(ctx, p.client, videoID)
		if err != nil {
			return err
		}
		html = h
		return nil
	}); err != nil {
		return coretype.ProcessorResult{}, &coretype.NetworkError{Op: "fetch youtube watch page", Cause: err}
	}

	tracks, err := extractCaptionTracks(html)
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.NotFoundError{Resource: fmt.Sprintf("transcript for video %s", videoID)}
	}

	track, err := selectCaptionTrack(tracks, p.preferredLangs)
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.NotFoundError{Resource: fmt.Sprintf("transcript for video %s", videoID)}
	}

	var segments []TranscriptSegment
	if err := retryTransient(ctx, 2, 300*time.Millisecond, func() error {
		s, err := fetchTimedText(ctx, p.client, track)
		if err != nil {
			return err
		}
		segments = s
		return nil
	}); err != nil {
		return coretype.ProcessorResult{}, &coretype.NetworkError{Op: "fetch youtube timedtext", Cause: err}
	}

	content := formatTranscript(segments)
	if content == "" {
		return coretype.ProcessorResult{}, &coretype.ParseError{Reason: fmt.Sprintf("empty transcript for video %s", videoID)}
	}

	result := coretype.NewProcessorResult(content, coretype.MimeType("text/plain"))
	result.Metadata["title"] = title
	result.Metadata["videoId"] = videoID
	result.Metadata["languageCode"] = track.LanguageCode
	result.Metadata["autoGenerated"] = track.Kind == "asr"
	result.Metadata["transcript"] = segments
	return result, nil
}
