package ytpipe

import "testing"

func TestExtractVideoID_WatchURL(t *testing.T) {
	id, ok := ExtractVideoID("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if !ok || id != "dQw4w9WgXcQ" {
		t.Fatalf("got (%q, %v)", id, ok)
	}
}

func TestExtractVideoID_ShortLink(t *testing.T) {
	id, ok := ExtractVideoID("https://youtu.be/dQw4w9WgXcQ")
	if !ok || id != "dQw4w9WgXcQ" {
		t.Fatalf("got (%q, %v)", id, ok)
	}
}

func TestExtractVideoID_NotYouTube(t *testing.T) {
	if _, ok := ExtractVideoID("https://example.com/video/123"); ok {
		t.Fatal("expected no match for non-YouTube URL")
	}
}

func TestSelectCaptionTrack_PrefersManualOverAuto(t *testing.T) {
	tracks := []captionTrack{
		{LanguageCode: "en", Kind: "asr"},
		{LanguageCode: "en", Kind: ""},
	}
	got, err := selectCaptionTrack(tracks, []string{"en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != "" {
		t.Fatalf("expected manual track to win, got kind=%q", got.Kind)
	}
}

func TestSelectCaptionTrack_FallsBackToAutoGenerated(t *testing.T) {
	tracks := []captionTrack{
		{LanguageCode: "en", Kind: "asr"},
	}
	got, err := selectCaptionTrack(tracks, []string{"en", "es"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.LanguageCode != "en" {
		t.Fatalf("expected en track, got %q", got.LanguageCode)
	}
}

func TestSelectCaptionTrack_FallsBackToAnyTrack(t *testing.T) {
	tracks := []captionTrack{{LanguageCode: "de", Kind: ""}}
	got, err := selectCaptionTrack(tracks, []string{"en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.LanguageCode != "de" {
		t.Fatalf("expected fallback to only available track, got %q", got.LanguageCode)
	}
}

func TestFormatTranscript_JoinsNonEmptySegments(t *testing.T) {
	segments := []TranscriptSegment{
		{Text: "hello"},
		{Text: ""},
		{Text: "world"},
	}
	if got := formatTranscript(segments); got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestUnescapeHTML(t *testing.T) {
	if got := unescapeHTML("Rick &amp; Morty&#39;s Show"); got != "Rick & Morty's Show" {
		t.Fatalf("got %q", got)
	}
}
