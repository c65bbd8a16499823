package models

import (
	"errors"
	"fmt"
)

// ErrorKind is the shared failure taxonomy surfaced to the trigger layer.
// Provider-specific error codes are translated into these kinds before
// they leave the LLM service.
type ErrorKind string

const (
	ErrKindExtractionFailed    ErrorKind = "extraction_failed"
	ErrKindImageResolution     ErrorKind = "image_resolution_failed"
	ErrKindLLMAuth             ErrorKind = "llm_auth_error"
	ErrKindLLMValidation       ErrorKind = "llm_validation_error"
	ErrKindLLMRateLimited      ErrorKind = "llm_rate_limited"
	ErrKindLLMTimeout          ErrorKind = "llm_timeout"
	ErrKindLLMExhaustedRetries ErrorKind = "llm_exhausted_retries"
	ErrKindSubtitleUnavailable ErrorKind = "subtitle_unavailable"
	ErrKindPackagingIO         ErrorKind = "packaging_io_error"
	ErrKindCancelled           ErrorKind = "cancelled"
	ErrKindInternal            ErrorKind = "internal"
)

// PipelineError wraps an underlying error with its taxonomy kind so the
// trigger layer can render a single failure notification without raw
// internal diagnostics.
type PipelineError struct {
	Kind ErrorKind
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError wraps err with the given kind.
func NewPipelineError(kind ErrorKind, err error) *PipelineError {
	return &PipelineError{Kind: kind, Err: err}
}

// KindOf extracts the ErrorKind from an error chain. Unclassified errors
// report ErrKindInternal.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrKindInternal
}

// Retriable reports whether a failure kind may succeed on resubmission.
func (k ErrorKind) Retriable() bool {
	return k == ErrKindLLMRateLimited || k == ErrKindLLMTimeout
}

// Sentinel errors shared across services.
var (
	// ErrNoSubtitlesAvailable is returned by the subtitle fetcher when no
	// track exists in any preferred language.
	ErrNoSubtitlesAvailable = errors.New("no subtitles available")

	// ErrConversionInProgress is returned when a trigger arrives while a
	// conversion run is already active.
	ErrConversionInProgress = errors.New("a conversion is already in progress")

	// ErrEmptyContent is returned by extractors for empty input.
	ErrEmptyContent = errors.New("no content to convert")
)
