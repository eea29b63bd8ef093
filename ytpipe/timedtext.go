package ytpipe

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/extractcore/extractcore/horosafe"
)

// TranscriptSegment is one caption cue.
type TranscriptSegment struct {
	Text     string
	Start    float64
	Duration float64
}

// timedTextDoc mirrors YouTube's timedtext XML: a flat list of <text
// start="..." dur="...">escaped text</text> elements.
type timedTextDoc struct {
	XMLName xml.Name `xml:"transcript"`
	Texts   []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Body  string `xml:",chardata"`
	} `xml:"text"`
}

// fetchTimedText fetches and parses the timedtext XML at track.BaseURL,
// decoding the whole size-bounded response with a single xml.Unmarshal.
func fetchTimedText(ctx context.Context, client *http.Client, track captionTrack) ([]TranscriptSegment, error) {
	if err := horosafe.ValidateURL(track.BaseURL); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timedtext fetch returned status %d", resp.StatusCode)
	}

	data, err := horosafe.LimitedReadAll(resp.Body, horosafe.MaxResponseBody)
	if err != nil {
		return nil, err
	}

	var doc timedTextDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode timedtext xml: %w", err)
	}

	segments := make([]TranscriptSegment, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		start, _ := strconv.ParseFloat(t.Start, 64)
		dur, _ := strconv.ParseFloat(t.Dur, 64)
		segments = append(segments, TranscriptSegment{
			Text:     unescapeHTML(strings.TrimSpace(t.Body)),
			Start:    start,
			Duration: dur,
		})
	}
	return segments, nil
}

// formatTranscript joins segments into plain running text, the same
// shape as the original's TextFormatter().format_transcript.
func formatTranscript(segments []TranscriptSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}
