package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"yt-subtitles-loader/infrastructure/config"
	"yt-subtitles-loader/infrastructure/executable"
)

type stubResolver struct {
	resolution executable.Resolution
	err        error
}

func (s *stubResolver) Resolve() (executable.Resolution, error) {
	return s.resolution, s.err
}

func TestRunCheckWithDependencies(t *testing.T) {
	newConfig := func(t *testing.T) *config.Config {
		cfg := config.Defaults()
		cfg.Paths.TempDirectory = filepath.Join(t.TempDir(), "temp")
		return cfg
	}
	version := func(ctx context.Context, path string) (string, error) {
		return "2025.01.15", nil
	}

	t.Run("all good", func(t *testing.T) {
		var out bytes.Buffer
		resolver := &stubResolver{resolution: executable.Resolution{Path: "/usr/bin/yt-dlp", Source: executable.SourcePath}}

		err := RunCheckWithDependencies(context.Background(), newConfig(t), "missing.yaml", resolver, version, &out)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"2025.01.15", "/usr/bin/yt-dlp", "from path", "defaults", "disabled"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output missing %q:\n%s", want, out.String())
			}
		}
	})

	t.Run("missing yt-dlp reports provisioning code", func(t *testing.T) {
		var out bytes.Buffer
		resolver := &stubResolver{err: executable.ErrBundleMissing}

		err := RunCheckWithDependencies(context.Background(), newConfig(t), "missing.yaml", resolver, version, &out)
		if !errors.Is(err, ErrCheckFailed) {
			t.Fatalf("error = %v, want ErrCheckFailed", err)
		}
		if !strings.Contains(out.String(), "[4825]") {
			t.Errorf("output missing provisioning code:\n%s", out.String())
		}
	})

	t.Run("broken yt-dlp", func(t *testing.T) {
		var out bytes.Buffer
		resolver := &stubResolver{resolution: executable.Resolution{Path: "/bin/false", Source: executable.SourceConfig}}
		broken := func(ctx context.Context, path string) (string, error) {
			return "", errors.New("exit status 1")
		}

		err := RunCheckWithDependencies(context.Background(), newConfig(t), "missing.yaml", resolver, broken, &out)
		if !errors.Is(err, ErrCheckFailed) {
			t.Fatalf("error = %v, want ErrCheckFailed", err)
		}
		if !strings.Contains(out.String(), "broken") {
			t.Errorf("output missing broken status:\n%s", out.String())
		}
	})
}
