// Package ytpipe extracts transcripts from YouTube videos by scraping
// the watch page for its caption track list and fetching the selected
// track's timedtext XML, grounded on the original project's
// processors/youtube.py (no Go equivalent of youtube-transcript-api
// exists anywhere in the corpus).
package ytpipe

import "regexp"

// videoIDRe is a direct port of the original's youtube_regex: it matches
// youtu.be short links, /watch?v=, /embed/, and /v/ forms, capturing the
// 11-character video ID.
var videoIDRe = regexp.MustCompile(
	`(?:https?://)?(?:www\.)?(?:youtu\.be/|youtube\.com(?:/embed/|/v/|/watch\?v=|/watch\?.+&v=))([\w-]{11})`,
)

// ExtractVideoID returns the 11-character video ID embedded in rawURL,
// or ("", false) if rawURL does not look like a YouTube video URL.
func ExtractVideoID(rawURL string) (string, bool) {
	m := videoIDRe.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}
