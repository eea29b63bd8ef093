package videopipe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// demuxAudio extracts the audio stream at streamIndex (position within
// the file's audio streams, not its absolute container index) from input
// into out as MP3, matching the original's
// `ffmpeg -map 0:a:<idx> -codec:a libmp3lame -q:a 2` invocation.
func demuxAudio(ctx context.Context, input string, streamIndex int, out string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", input,
		"-map", fmt.Sprintf("0:a:%d", streamIndex),
		"-codec:a", "libmp3lame",
		"-q:a", "2",
		out,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg demux: %w: %s", err, stderr.String())
	}
	return nil
}
