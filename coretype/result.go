package coretype

import "time"

// ProcessorResult is the standardized output of every engine. Metadata
// always carries "extraction_engine" once the router stamps it, and
// engines are expected to populate "source", "title", "extractionTime",
// and "contentLength" where known.
type ProcessorResult struct {
	Content  string
	MimeType MimeType
	Metadata map[string]any
	Warnings []string
}

// NewProcessorResult builds a ProcessorResult with an initialized metadata map.
func NewProcessorResult(content string, mime MimeType) ProcessorResult {
	return ProcessorResult{
		Content:  content,
		MimeType: mime,
		Metadata: map[string]any{},
	}
}

// AttemptRecord records one engine's attempt within a router call, used
// both for the success-path "skipped engine" warnings and for the
// AllEnginesFailed/Timeout failure report.
type AttemptRecord struct {
	Engine  string
	Kind    ErrorKind
	Message string
}

// ExtractionResult is the externally visible result of a successful
// extraction call.
type ExtractionResult struct {
	Content    string
	EngineUsed string
	Metadata   map[string]any
	Warnings   []string
}

// StampTiming records how long the attempt that produced r took, in the
// same metadata slot the distilled original calls "extractionTime".
func StampTiming(r *ProcessorResult, started time.Time) {
	if r.Metadata == nil {
		r.Metadata = map[string]any{}
	}
	r.Metadata["extractionTime"] = time.Since(started).Seconds()
	r.Metadata["contentLength"] = len(r.Content)
}
