package main

import (
	"path/filepath"
	"strings"

	"github.com/extractcore/extractcore/coretype"
	"github.com/extractcore/extractcore/ytpipe"
)

// extByMime maps a recognized extension to its MIME type and category,
// covering every format the document, audio, and video engines declare
// capabilities for.
var extByMime = map[string]struct {
	mime     string
	category coretype.Category
}{
	".docx":     {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", coretype.CategoryDocuments},
	".odt":      {"application/vnd.oasis.opendocument.text", coretype.CategoryDocuments},
	".pdf":      {"application/pdf", coretype.CategoryDocuments},
	".md":       {"text/markdown", coretype.CategoryDocuments},
	".markdown": {"text/markdown", coretype.CategoryDocuments},
	".txt":      {"text/plain", coretype.CategoryText},
	".text":     {"text/plain", coretype.CategoryText},
	".html":     {"text/html", coretype.CategoryDocuments},
	".htm":      {"text/html", coretype.CategoryDocuments},
	".mp3":      {"audio/mp3", coretype.CategoryAudio},
	".wav":      {"audio/wav", coretype.CategoryAudio},
	".m4a":      {"audio/mp4", coretype.CategoryAudio},
	".flac":     {"audio/flac", coretype.CategoryAudio},
	".ogg":      {"audio/ogg", coretype.CategoryAudio},
	".aac":      {"audio/aac", coretype.CategoryAudio},
	".mp4":      {"video/mp4", coretype.CategoryVideo},
	".mpeg":     {"video/mpeg", coretype.CategoryVideo},
	".mov":      {"video/quicktime", coretype.CategoryVideo},
	".avi":      {"video/x-msvideo", coretype.CategoryVideo},
	".mkv":      {"video/x-matroska", coretype.CategoryVideo},
	".webm":     {"video/webm", coretype.CategoryVideo},
}

// detect resolves the MIME type and category the router should use to
// select an engine chain for source, honoring an explicit
// DeclaredMimeType hint first.
func detect(source *coretype.Source) (mime string, category coretype.Category) {
	if source.DeclaredMimeType != "" {
		return string(source.DeclaredMimeType), categoryForMime(string(source.DeclaredMimeType))
	}

	switch source.Type() {
	case coretype.SourceTypeURL:
		if _, ok := ytpipe.ExtractVideoID(source.URL()); ok {
			return "", coretype.CategoryYouTube
		}
		return "text/html", coretype.CategoryURLs
	case coretype.SourceTypeFile:
		ext := strings.ToLower(filepath.Ext(source.FilePath()))
		if m, ok := extByMime[ext]; ok {
			return m.mime, m.category
		}
		return "application/octet-stream", coretype.CategoryDocuments
	default:
		return "text/plain", coretype.CategoryText
	}
}

func categoryForMime(mime string) coretype.Category {
	switch {
	case strings.HasPrefix(mime, "audio/"):
		return coretype.CategoryAudio
	case strings.HasPrefix(mime, "video/"):
		return coretype.CategoryVideo
	case strings.HasPrefix(mime, "image/"):
		return coretype.CategoryImages
	case mime == "text/html":
		return coretype.CategoryURLs
	case mime == "text/plain":
		return coretype.CategoryText
	default:
		return coretype.CategoryDocuments
	}
}
