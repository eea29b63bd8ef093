package videopipe

import "testing"

func TestSelectBestAudioStream_PrefersHigherBitrateAndChannels(t *testing.T) {
	streams := []audioStream{
		{Index: 0, BitRate: "64000", Channels: 1, SampleRate: "22050"},
		{Index: 1, BitRate: "320000", Channels: 2, SampleRate: "48000"},
	}
	idx, err := selectBestAudioStream(streams)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 1 {
		t.Fatalf("expected stream 1 to win, got %d", idx)
	}
}

func TestSelectBestAudioStream_EmptyErrors(t *testing.T) {
	if _, err := selectBestAudioStream(nil); err == nil {
		t.Fatal("expected error for empty stream list")
	}
}

func TestParseIntSafe(t *testing.T) {
	cases := map[string]int{
		"48000": 48000,
		"":      0,
		"N/A":   0,
		"-5":    -5,
	}
	for in, want := range cases {
		if got := parseIntSafe(in); got != want {
			t.Errorf("parseIntSafe(%q) = %d, want %d", in, got, want)
		}
	}
}
