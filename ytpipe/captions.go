package ytpipe

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// playerResponseRe extracts the ytInitialPlayerResponse JSON blob out of
// the watch page, structurally the same shape as the original's
// HTML-scrape-then-parse approach (no Go YouTube caption library exists
// in the corpus, so this is grounded on the shape of the Python original
// rather than a ported library call).
var playerResponseRe = regexp.MustCompile(`ytInitialPlayerResponse\s*=\s*(\{.*?\})\s*;`)

// captionTrack is the subset of a playerResponse caption track this
// package needs to fetch and select a transcript.
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" marks an auto-generated track
	Name         struct {
		SimpleText string `json:"simpleText"`
	} `json:"name"`
}

type playerResponse struct {
	Captions struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

// extractCaptionTracks finds the ytInitialPlayerResponse blob in html and
// returns its caption track list.
func extractCaptionTracks(html string) ([]captionTrack, error) {
	m := playerResponseRe.FindStringSubmatch(html)
	if m == nil {
		return nil, fmt.Errorf("ytInitialPlayerResponse not found in watch page")
	}
	var parsed playerResponse
	if err := json.Unmarshal([]byte(m[1]), &parsed); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	tracks := parsed.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, fmt.Errorf("no caption tracks available")
	}
	return tracks, nil
}

// selectCaptionTrack picks the best track for preferredLangs, mirroring
// the original's tiered preference: manual transcript in a preferred
// language first, then an auto-generated ("asr") one in a preferred
// language, then any track at all.
func selectCaptionTrack(tracks []captionTrack, preferredLangs []string) (captionTrack, error) {
	if len(tracks) == 0 {
		return captionTrack{}, fmt.Errorf("no caption tracks available")
	}

	for _, lang := range preferredLangs {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, nil
			}
		}
	}
	for _, lang := range preferredLangs {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Kind == "asr" {
				return t, nil
			}
		}
	}
	for _, lang := range preferredLangs {
		for _, t := range tracks {
			if t.LanguageCode == lang {
				return t, nil
			}
		}
	}
	return tracks[0], nil
}
