package domain

import "strings"

// ValidSources enumerates accepted ingestion sources.
var ValidSources = map[string]bool{
	"youtube": true,
	"upload":  true,
	"api":     true,
}

// validSource accepts known sources, optionally prefixed
// (e.g. "youtube:dQw4w9WgXcQ").
func validSource(src string) bool {
	if ValidSources[src] {
		return true
	}
	for base := range ValidSources {
		if strings.HasPrefix(src, base+":") {
			return true
		}
	}
	return false
}

// ValidateJob checks a TranscriptJob before ingestion. It fails fast on the
// first problem so no partial index state is ever committed.
func ValidateJob(job TranscriptJob) error {
	if job.VideoID == "" {
		return NewValidationError("video_id", "", ErrMissingVideoID)
	}
	if job.Source != "" && !validSource(job.Source) {
		return NewValidationError("source", job.Source, ErrUnknownSource)
	}
	return ValidateSegments(job.Segments)
}

// ValidateSegments checks that a transcript has usable, well-formed segments.
func ValidateSegments(segments []Segment) error {
	if len(segments) == 0 {
		return NewValidationError("segments", "", ErrEmptyTranscript)
	}
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			return NewValidationError("segments.text", "", ErrEmptySegment)
		}
		if seg.End < seg.Start {
			return NewValidationError("segments.time", seg.Text, ErrBadTimeRange)
		}
	}
	return nil
}
