// Package videopipe demuxes the best audio stream out of a video
// container with ffmpeg/ffprobe and hands it off to audiopipe for
// transcription, grounded on the original project's video.py demux
// algorithm.
package videopipe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// audioStream mirrors the subset of ffprobe's stream JSON this package
// scores: bit rate, channel count, sample rate.
type audioStream struct {
	Index      int    `json:"index"`
	BitRate    string `json:"bit_rate"`
	Channels   int    `json:"channels"`
	SampleRate string `json:"sample_rate"`
}

type probeOutput struct {
	Streams []audioStream `json:"streams"`
}

// probeAudioStreams runs `ffprobe -show_streams -select_streams a` and
// returns the audio streams it reports.
func probeAudioStreams(ctx context.Context, path string) ([]audioStream, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a",
		path,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe streams: %w", err)
	}
	var parsed probeOutput
	if err := json.Unmarshal(out.Bytes(), &parsed); err != nil {
		return nil, fmt.Errorf("ffprobe streams: decode: %w", err)
	}
	return parsed.Streams, nil
}

// selectBestAudioStream scores each stream as
// bit_rate/1_000_000 + channels*10 + sample_rate/48_000 and returns the
// index (within streams, not the container's absolute stream index) of
// the highest scorer — ported verbatim from the original's
// select_best_audio_stream.
func selectBestAudioStream(streams []audioStream) (int, error) {
	if len(streams) == 0 {
		return 0, fmt.Errorf("no audio streams found")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range streams {
		score := 0
		if br := parseIntSafe(s.BitRate); br > 0 {
			score += br / 1_000_000
		}
		score += s.Channels * 10
		if sr := parseIntSafe(s.SampleRate); sr > 0 {
			score += sr / 48_000
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return bestIdx, nil
}

func parseIntSafe(s string) int {
	n := 0
	neg := false
	started := false
	for _, r := range s {
		if r == '-' && !started {
			neg = true
			continue
		}
		if r < '0' || r > '9' {
			if started {
				break
			}
			continue
		}
		started = true
		n = n*10 + int(r-'0')
	}
	if neg {
		n = -n
	}
	return n
}
