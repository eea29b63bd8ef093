package videopipe

import (
	"context"
	"os/exec"

	"github.com/extractcore/extractcore/audiopipe"
	"github.com/extractcore/extractcore/coretype"
	"github.com/extractcore/extractcore/tempscope"
)

// VideoDemux extracts the best audio stream from a video file and
// delegates transcription to an embedded audio engine. Unlike the
// original Python processor, which stops after producing an audio file
// path for a separate pipeline stage to pick up, this engine returns
// transcribed text directly: the router's registry dispatches by MIME
// once per Source, so video-to-text has to be a single hop.
type VideoDemux struct {
	audio *audiopipe.AudioTranscribe
}

// NewVideoDemux wires a VideoDemux around the given audio engine, reused
// so both direct audio sources and demuxed video sources use the same
// transcription configuration.
func NewVideoDemux(audio *audiopipe.AudioTranscribe) *VideoDemux {
	return &VideoDemux{audio: audio}
}

func (p *VideoDemux) Name() string { return "video_demux" }

func (p *VideoDemux) Capabilities() coretype.ProcessorCapabilities {
	return coretype.ProcessorCapabilities{
		MimeTypes:  []string{"video/mp4", "video/mpeg", "video/quicktime", "video/x-msvideo", "video/x-matroska", "video/webm", "video/*"},
		Extensions: []string{".mp4", ".mpeg", ".mov", ".avi", ".mkv", ".webm"},
		Priority:   50,
		Requires:   []string{"ffmpeg", "ffprobe"},
		Category:   coretype.CategoryVideo,
	}
}

// IsAvailable checks ffmpeg and ffprobe both run, the same
// `ffmpeg -version`/`ffprobe -version` subprocess-probe idiom as the
// original's VideoProcessor.is_available.
func (p *VideoDemux) IsAvailable() bool {
	return binaryRuns("ffmpeg", "-version") && binaryRuns("ffprobe", "-version")
}

func binaryRuns(name string, arg string) bool {
	cmd := exec.Command(name, arg)
	return cmd.Run() == nil
}

func (p *VideoDemux) Extract(ctx context.Context, source *coretype.Source, options map[string]any) (coretype.ProcessorResult, error) {
	if source.FilePath() == "" {
		return coretype.ProcessorResult{}, &coretype.UnsupportedContentError{Reason: "video_demux requires a file path source"}
	}

	streams, err := probeAudioStreams(ctx, source.FilePath())
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.ParseError{Reason: "ffprobe stream enumeration failed", Cause: err}
	}
	if len(streams) == 0 {
		return coretype.ProcessorResult{}, &coretype.UnsupportedContentError{Reason: "no audio streams found in video; is ffprobe installed?"}
	}
	bestIdx, err := selectBestAudioStream(streams)
	if err != nil {
		return coretype.ProcessorResult{}, &coretype.ParseError{Reason: "could not select best audio stream", Cause: err}
	}

	var result coretype.ProcessorResult
	err = tempscope.WithTempFile("videopipe_audio_*.mp3", func(audioPath string) error {
		if err := demuxAudio(ctx, source.FilePath(), bestIdx, audioPath); err != nil {
			return &coretype.ParseError{Reason: "ffmpeg audio demux failed", Cause: err}
		}

		audioSource, err := coretype.NewSourceFromFile(audioPath)
		if err != nil {
			return &coretype.FatalInternalError{Reason: "building demuxed audio source", Cause: err}
		}
		audioSource.Audio = source.Audio

		res, err := p.audio.Extract(ctx, audioSource, options)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return coretype.ProcessorResult{}, err
	}

	if result.Metadata == nil {
		result.Metadata = map[string]any{}
	}
	result.Metadata["demuxedStreamIndex"] = bestIdx
	return result, nil
}
