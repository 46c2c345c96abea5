//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	appsubtitles "yt-subtitles-loader/application/subtitles"
	"yt-subtitles-loader/cmd"
	"yt-subtitles-loader/domain/subtitles"
	"yt-subtitles-loader/infrastructure/filesystem"
	"yt-subtitles-loader/infrastructure/tempfiles"
	"yt-subtitles-loader/infrastructure/ytdlp"

	"github.com/cucumber/godog"
)

// fakeYtDlp stands in for the yt-dlp process. It answers --list-subs from
// the configured tracks and writes the configured content on download.
type fakeYtDlp struct {
	tracks         map[string]bool // keys like "ru manual", "en auto"
	content        string
	downloadStderr string
	downloadExit   int
	skipWrite      bool
	calls          [][]string
}

func (f *fakeYtDlp) Run(ctx context.Context, name string, args ...string) (*subtitles.ProcessOutput, error) {
	f.calls = append(f.calls, args)

	if slices.Contains(args, "--list-subs") {
		return &subtitles.ProcessOutput{Stdout: f.listing()}, nil
	}

	out := &subtitles.ProcessOutput{ExitCode: f.downloadExit, Stderr: f.downloadStderr}
	if f.skipWrite || f.downloadExit != 0 {
		return out, nil
	}

	i := slices.Index(args, "-o")
	lang := args[slices.Index(args, "--sub-lang")+1]
	path := args[i+1] + "." + lang + ".vtt"
	if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeYtDlp) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return []byte("2025.01.15\n"), nil
}

func (f *fakeYtDlp) listing() string {
	var b strings.Builder
	section := func(title, origin string) {
		var rows []string
		for _, lang := range []string{"ru", "en"} {
			if f.tracks[lang+" "+origin] {
				rows = append(rows, lang+"       vtt, ttml, srv3, json3")
			}
		}
		if len(rows) == 0 {
			return
		}
		b.WriteString("[info] " + title + " for dQw4w9WgXcQ:\n")
		b.WriteString("Language Formats\n")
		b.WriteString(strings.Join(rows, "\n") + "\n")
	}
	section("Available automatic captions", "auto")
	section("Available subtitles", "manual")
	return b.String()
}

// downloadLink returns the link passed to the download invocation
func (f *fakeYtDlp) downloadLink() string {
	for _, args := range f.calls {
		if slices.Contains(args, "--skip-download") {
			return args[len(args)-1]
		}
	}
	return ""
}

type extractContext struct {
	tempDir string
	ytdlp   *fakeYtDlp
	output  *bytes.Buffer
	errOut  *bytes.Buffer
	err     error
}

var SharedExtractContext = &extractContext{}

func InitializeExtractScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedExtractContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "extract-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.ytdlp = &fakeYtDlp{tracks: make(map[string]bool)}
		testCtx.output = &bytes.Buffer{}
		testCtx.errOut = &bytes.Buffer{}
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedExtractContext = &extractContext{}
		return c, nil
	})

	ctx.Step(`^the video has (ru|en) (manual|auto) subtitles$`, testCtx.theVideoHasSubtitles)
	ctx.Step(`^the video has no subtitles$`, testCtx.theVideoHasNoSubtitles)
	ctx.Step(`^the subtitle file contains:$`, testCtx.theSubtitleFileContains)
	ctx.Step(`^yt-dlp reports "([^"]*)" without writing a file$`, testCtx.ytDlpReportsWithoutWritingAFile)
	ctx.Step(`^I extract subtitles for "([^"]*)"$`, testCtx.iExtractSubtitlesFor)
	ctx.Step(`^I extract subtitles verbosely for "([^"]*)"$`, testCtx.iExtractSubtitlesVerboselyFor)
	ctx.Step(`^the output should be "([^"]*)"$`, testCtx.theOutputShouldBe)
	ctx.Step(`^the error output should contain "([^"]*)"$`, testCtx.theErrorOutputShouldContain)
	ctx.Step(`^the exit code should be (\d+)$`, testCtx.theExitCodeShouldBe)
	ctx.Step(`^yt-dlp should have been asked for "([^"]*)"$`, testCtx.ytDlpShouldHaveBeenAskedFor)
	ctx.Step(`^yt-dlp should not have been run$`, testCtx.ytDlpShouldNotHaveBeenRun)
	ctx.Step(`^the temp directory should be empty$`, testCtx.theTempDirectoryShouldBeEmpty)
}

func (e *extractContext) theVideoHasSubtitles(lang, origin string) error {
	e.ytdlp.tracks[lang+" "+origin] = true
	return nil
}

func (e *extractContext) theVideoHasNoSubtitles() error {
	e.ytdlp.tracks = make(map[string]bool)
	return nil
}

func (e *extractContext) theSubtitleFileContains(content *godog.DocString) error {
	e.ytdlp.content = content.Content
	return nil
}

func (e *extractContext) ytDlpReportsWithoutWritingAFile(stderr string) error {
	e.ytdlp.downloadStderr = stderr
	e.ytdlp.skipWrite = true
	return nil
}

func (e *extractContext) extractor() appsubtitles.Extractor {
	client := ytdlp.NewClient(
		ytdlp.WithTempDirectory(e.tempDir),
		ytdlp.WithCommandRunner(e.ytdlp),
	)
	sweeper := tempfiles.NewSweeper(e.tempDir)
	return appsubtitles.NewService(client, client, filesystem.NewChecker(), sweeper, nil)
}

func (e *extractContext) iExtractSubtitlesFor(link string) error {
	e.err = cmd.RunExtractWithDependencies(context.Background(), e.extractor(), link, false, e.output, e.errOut)
	return nil
}

func (e *extractContext) iExtractSubtitlesVerboselyFor(link string) error {
	e.err = cmd.RunExtractWithDependencies(context.Background(), e.extractor(), link, true, e.output, e.errOut)
	return nil
}

func (e *extractContext) theOutputShouldBe(expected string) error {
	if got := strings.TrimSuffix(e.output.String(), "\n"); got != expected {
		return fmt.Errorf("expected output %q, got %q (stderr: %q)", expected, got, e.errOut.String())
	}
	return nil
}

func (e *extractContext) theErrorOutputShouldContain(expected string) error {
	if !strings.Contains(e.errOut.String(), expected) {
		return fmt.Errorf("expected error output to contain %q, got %q", expected, e.errOut.String())
	}
	return nil
}

func (e *extractContext) theExitCodeShouldBe(code int) error {
	if code == 0 {
		if e.err != nil {
			return fmt.Errorf("expected success, got %v", e.err)
		}
		return nil
	}
	var exitErr *cmd.ExitError
	if !errors.As(e.err, &exitErr) {
		return fmt.Errorf("expected exit code %d, got error %v", code, e.err)
	}
	if exitErr.Code != code {
		return fmt.Errorf("expected exit code %d, got %d", code, exitErr.Code)
	}
	return nil
}

func (e *extractContext) ytDlpShouldHaveBeenAskedFor(link string) error {
	if got := e.ytdlp.downloadLink(); got != link {
		return fmt.Errorf("expected download of %q, got %q", link, got)
	}
	return nil
}

func (e *extractContext) ytDlpShouldNotHaveBeenRun() error {
	if len(e.ytdlp.calls) != 0 {
		return fmt.Errorf("expected no yt-dlp calls, got %v", e.ytdlp.calls)
	}
	return nil
}

func (e *extractContext) theTempDirectoryShouldBeEmpty() error {
	entries, err := os.ReadDir(e.tempDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ytdlp.TemplatePrefix) {
			return fmt.Errorf("leftover file %s", filepath.Join(e.tempDir, entry.Name()))
		}
	}
	return nil
}
