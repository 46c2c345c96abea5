package ytdlp

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"testing"

	"yt-subtitles-loader/domain/subtitles"
)

// mockRunner implements CommandRunner for testing
type mockRunner struct {
	output    *subtitles.ProcessOutput
	err       error
	version   string
	name      string
	args      []string
	runCalled bool
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) (*subtitles.ProcessOutput, error) {
	m.runCalled = true
	m.name = name
	m.args = args
	if m.err != nil {
		return nil, m.err
	}
	if m.output == nil {
		return &subtitles.ProcessOutput{}, nil
	}
	return m.output, nil
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	if m.err != nil {
		return nil, m.err
	}
	return []byte(m.version), nil
}

const testLink = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func TestListTracks(t *testing.T) {
	runner := &mockRunner{output: &subtitles.ProcessOutput{Stdout: "ru vtt"}}
	client := NewClient(WithYtDlpPath("/opt/yt-dlp"), WithCommandRunner(runner))

	out, err := client.ListTracks(context.Background(), testLink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Stdout != "ru vtt" {
		t.Errorf("stdout = %q", out.Stdout)
	}
	if runner.name != "/opt/yt-dlp" {
		t.Errorf("executable = %q, want %q", runner.name, "/opt/yt-dlp")
	}
	if want := []string{"--list-subs", testLink}; !slices.Equal(runner.args, want) {
		t.Errorf("args = %v, want %v", runner.args, want)
	}
}

func TestListTracks_RunnerError(t *testing.T) {
	runner := &mockRunner{err: exec.ErrNotFound}
	client := NewClient(WithCommandRunner(runner))

	_, err := client.ListTracks(context.Background(), testLink)
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("error = %v, want exec.ErrNotFound", err)
	}
}

func TestDownload(t *testing.T) {
	tests := []struct {
		name     string
		track    subtitles.SelectedTrack
		wantFlag string
		wantLang string
	}{
		{
			name:     "manual russian",
			track:    subtitles.SelectedTrack{Language: subtitles.LanguageRU},
			wantFlag: "--write-subs",
			wantLang: "ru",
		},
		{
			name:     "auto english",
			track:    subtitles.SelectedTrack{Language: subtitles.LanguageEN, Auto: true},
			wantFlag: "--write-auto-subs",
			wantLang: "en",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "temp-subtitles")
			runner := &mockRunner{output: &subtitles.ProcessOutput{Stderr: "WARNING: something"}}
			client := NewClient(
				WithCommandRunner(runner),
				WithTempDirectory(dir),
				WithIDGenerator(func() string { return "1a2b3c4d" }),
			)

			dl, err := client.Download(context.Background(), testLink, tt.track)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			template := filepath.Join(dir, "temp_subs_1a2b3c4d")
			wantArgs := []string{
				"--skip-download",
				tt.wantFlag,
				"--sub-lang", tt.wantLang,
				"--sub-format", "vtt",
				"-o", template,
				testLink,
			}
			if !slices.Equal(runner.args, wantArgs) {
				t.Errorf("args = %v, want %v", runner.args, wantArgs)
			}
			if want := template + "." + tt.wantLang + ".vtt"; dl.Path != want {
				t.Errorf("path = %q, want %q", dl.Path, want)
			}
			if dl.Stderr != "WARNING: something" {
				t.Errorf("stderr = %q", dl.Stderr)
			}
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				t.Errorf("temp directory not created: %v", err)
			}
		})
	}
}

func TestDownload_UniqueTemplates(t *testing.T) {
	client := NewClient(WithCommandRunner(&mockRunner{}), WithTempDirectory(t.TempDir()))
	pattern := regexp.MustCompile(`temp_subs_[0-9a-f]{8}\.ru\.vtt$`)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		dl, err := client.Download(context.Background(), testLink, subtitles.SelectedTrack{Language: subtitles.LanguageRU})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !pattern.MatchString(dl.Path) {
			t.Errorf("path %q does not match %s", dl.Path, pattern)
		}
		if seen[dl.Path] {
			t.Errorf("duplicate path %q", dl.Path)
		}
		seen[dl.Path] = true
	}
}

func TestDownload_TempDirectoryFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	runner := &mockRunner{}
	client := NewClient(WithCommandRunner(runner), WithTempDirectory(filepath.Join(blocker, "sub")))

	_, err := client.Download(context.Background(), testLink, subtitles.SelectedTrack{Language: subtitles.LanguageRU})
	if err == nil {
		t.Fatal("expected error")
	}
	if runner.runCalled {
		t.Error("yt-dlp must not run without a temp directory")
	}
}

func TestVersion(t *testing.T) {
	runner := &mockRunner{version: "2025.09.26\n"}
	client := NewClient(WithCommandRunner(runner))

	v, err := client.Version(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "2025.09.26" {
		t.Errorf("version = %q", v)
	}
	if !slices.Equal(runner.args, []string{"--version"}) {
		t.Errorf("args = %v", runner.args)
	}

	runner.err = errors.New("not found")
	if err := client.VerifyInstalled(context.Background()); err == nil {
		t.Error("expected VerifyInstalled to fail")
	}
}

func TestExecCommandRunner(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	runner := &ExecCommandRunner{}

	out, err := runner.Run(context.Background(), "sh", "-c", "echo out; echo err >&2; exit 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", out.ExitCode)
	}
	if out.Stdout != "out\n" || out.Stderr != "err\n" {
		t.Errorf("stdout = %q, stderr = %q", out.Stdout, out.Stderr)
	}

	if _, err := runner.Run(context.Background(), filepath.Join(t.TempDir(), "missing-binary")); err == nil {
		t.Error("expected launch error for missing binary")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := runner.Run(ctx, "sh", "-c", "exit 0"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
