package subtitles

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestLoadError(t *testing.T) {
	cause := errors.New("exec: not found")

	tests := []struct {
		name     string
		err      *LoadError
		kind     error
		code     string
		contains string
	}{
		{
			name:     "invalid link",
			err:      NewInvalidLinkError("https://example.com"),
			kind:     ErrInvalidLink,
			code:     CodeInvalidLink,
			contains: "invalid youtube link: https://example.com",
		},
		{
			name:     "malformed reference",
			err:      NewMalformedReferenceError(cause),
			kind:     ErrMalformedReference,
			code:     CodeMalformedReference,
			contains: "[4bc5] invalid youtube link",
		},
		{
			name:     "no eligible track",
			err:      NewNoEligibleTrackError("no ru/en subtitles found"),
			kind:     ErrNoEligibleTrack,
			code:     CodeNoEligibleTrack,
			contains: "no ru/en subtitles found",
		},
		{
			name:     "extraction failed",
			err:      NewExtractionFailedError(cause),
			kind:     ErrExtractionFailed,
			code:     CodeExtractionFailed,
			contains: "exec: not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.kind)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("Error() = %q, want it to contain %q", tt.err.Error(), tt.contains)
			}
		})
	}
}

func TestLoadError_WrapsCause(t *testing.T) {
	cause := errors.New("disk gone")
	err := fmt.Errorf("extract: %w", NewExtractionFailedError(cause))

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to match")
	}
	if !errors.Is(err, ErrExtractionFailed) {
		t.Error("expected kind to match")
	}
	if errors.Is(err, ErrNoEligibleTrack) {
		t.Error("unexpected match with another kind")
	}
	if got := CodeOf(err); got != CodeExtractionFailed {
		t.Errorf("CodeOf() = %q, want %q", got, CodeExtractionFailed)
	}
}

func TestCodeOf_ForeignError(t *testing.T) {
	if got := CodeOf(errors.New("boom")); got != "" {
		t.Errorf("CodeOf() = %q, want empty", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Errorf("CodeOf(nil) = %q, want empty", got)
	}
}
