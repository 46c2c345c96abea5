package subtitles

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLink is returned when the input is not a supported YouTube video URL
	ErrInvalidLink = errors.New("invalid youtube link")

	// ErrMalformedReference is returned when a link cannot be parsed as a URI
	ErrMalformedReference = errors.New("malformed youtube link")

	// ErrNoEligibleTrack is returned when no ru/en vtt track exists or the download produced nothing usable
	ErrNoEligibleTrack = errors.New("no eligible subtitle track")

	// ErrExtractionFailed is returned for any other failure while extracting subtitles
	ErrExtractionFailed = errors.New("subtitle extraction failed")
)

// Stable error codes surfaced to callers alongside the message
const (
	CodeInvalidLink        = "824c"
	CodeMalformedReference = "4bc5"
	CodeNoEligibleTrack    = "48ae"
	CodeExtractionFailed   = "63e9"
)

// LoadError is the single error type returned by the extraction pipeline.
// Kind is one of the sentinel errors above so callers can use errors.Is.
type LoadError struct {
	Code    string
	Kind    error
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes both the kind sentinel and the underlying cause
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewInvalidLinkError reports a link that fails platform URL validation
func NewInvalidLinkError(link string) *LoadError {
	return &LoadError{
		Code:    CodeInvalidLink,
		Kind:    ErrInvalidLink,
		Message: fmt.Sprintf("invalid youtube link: %s", link),
	}
}

// NewMalformedReferenceError reports a link that could not be parsed
func NewMalformedReferenceError(cause error) *LoadError {
	return &LoadError{
		Code:    CodeMalformedReference,
		Kind:    ErrMalformedReference,
		Message: "invalid youtube link",
		Err:     cause,
	}
}

// NewNoEligibleTrackError reports a missing or unusable subtitle track
func NewNoEligibleTrackError(message string) *LoadError {
	return &LoadError{
		Code:    CodeNoEligibleTrack,
		Kind:    ErrNoEligibleTrack,
		Message: message,
	}
}

// NewExtractionFailedError wraps an unexpected failure
func NewExtractionFailedError(cause error) *LoadError {
	return &LoadError{
		Code:    CodeExtractionFailed,
		Kind:    ErrExtractionFailed,
		Message: "failed to extract subtitles from video",
		Err:     cause,
	}
}

// CodeOf returns the stable code of a pipeline error, or "" for foreign errors
func CodeOf(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ""
}
