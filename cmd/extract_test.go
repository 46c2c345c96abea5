package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"yt-subtitles-loader/domain/subtitles"
	"yt-subtitles-loader/infrastructure/executable"
)

type stubExtractor struct {
	result *subtitles.Result
	err    error
}

func (s *stubExtractor) Extract(ctx context.Context, rawURL string) (*subtitles.Result, error) {
	return s.result, s.err
}

func TestRunExtractWithDependencies(t *testing.T) {
	tests := []struct {
		name       string
		extractor  *stubExtractor
		verbose    bool
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name: "success",
			extractor: &stubExtractor{result: &subtitles.Result{
				Language: subtitles.LanguageEN,
				Text:     "hello world",
			}},
			wantStdout: "hello world\n",
		},
		{
			name: "verbose reports the track",
			extractor: &stubExtractor{result: &subtitles.Result{
				Language: subtitles.LanguageRU,
				Auto:     true,
				Text:     "привет",
			}},
			verbose:    true,
			wantStdout: "привет\n",
			wantStderr: "language: Russian (ru, auto)",
		},
		{
			name:       "load error",
			extractor:  &stubExtractor{err: subtitles.NewNoEligibleTrackError("no ru/en subtitles found")},
			wantCode:   ExitLoadFailed,
			wantStderr: "subtitle loading failed [48ae]: no ru/en subtitles found",
		},
		{
			name:       "unexpected error",
			extractor:  &stubExtractor{err: errors.New("boom")},
			wantCode:   ExitUnexpected,
			wantStderr: "unexpected error: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := RunExtractWithDependencies(context.Background(), tt.extractor, "https://youtu.be/dQw4w9WgXcQ", tt.verbose, &stdout, &stderr)

			if tt.wantCode == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			} else {
				var exitErr *ExitError
				if !errors.As(err, &exitErr) {
					t.Fatalf("expected ExitError, got %v", err)
				}
				if exitErr.Code != tt.wantCode {
					t.Errorf("exit code = %d, want %d", exitErr.Code, tt.wantCode)
				}
				if !exitErr.Silent {
					t.Error("expected a silent exit error")
				}
			}

			if stdout.String() != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
			if tt.wantStderr == "" && stderr.Len() != 0 {
				t.Errorf("unexpected stderr output %q", stderr.String())
			}
		})
	}
}

func TestWiringExitError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStderr string
	}{
		{
			name:       "provisioning failure is a load failure",
			err:        fmt.Errorf("yt-dlp unavailable: %w", executable.ErrBundleMissing),
			wantCode:   ExitLoadFailed,
			wantStderr: "subtitle loading failed [4825]: yt-dlp unavailable",
		},
		{
			name:       "unsupported platform",
			err:        fmt.Errorf("yt-dlp unavailable: %w", executable.ErrUnsupportedPlatform),
			wantCode:   ExitLoadFailed,
			wantStderr: "[4824]",
		},
		{
			name:     "other wiring failure is unexpected",
			err:      errors.New("open cache: permission denied"),
			wantCode: ExitUnexpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			err := wiringExitError(tt.err, &stderr)

			var exitErr *ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("expected ExitError, got %v", err)
			}
			if exitErr.Code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", exitErr.Code, tt.wantCode)
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
			if tt.wantStderr == "" && stderr.Len() != 0 {
				t.Errorf("unexpected stderr output %q", stderr.String())
			}
		})
	}
}
