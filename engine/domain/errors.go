package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation failures.
var (
	ErrEmptyTranscript = errors.New("transcript has no segments")
	ErrEmptySegment    = errors.New("segment text is empty")
	ErrBadTimeRange    = errors.New("segment end precedes start")
	ErrMissingVideoID  = errors.New("video id is required")
	ErrUnknownSource   = errors.New("unknown source")
)

// ErrEmptyResponse is returned when the completion service answers with a
// blank body. It is a hard failure, never substituted with a default.
var ErrEmptyResponse = errors.New("completion returned empty response")

// ValidationError wraps a sentinel with field context.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}

// UpstreamError marks a failure talking to the completion or embedding
// service. It propagates to the boundary unretried; the caller decides
// whether to retry the whole operation.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream: %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstreamError wraps err as an UpstreamError for the named operation.
func NewUpstreamError(op string, err error) *UpstreamError {
	return &UpstreamError{Op: op, Err: err}
}

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
