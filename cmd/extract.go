package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	appsubtitles "yt-subtitles-loader/application/subtitles"
	"yt-subtitles-loader/domain/subtitles"
	"yt-subtitles-loader/infrastructure/cache"
	"yt-subtitles-loader/infrastructure/config"
	"yt-subtitles-loader/infrastructure/executable"
	"yt-subtitles-loader/infrastructure/filesystem"
	"yt-subtitles-loader/infrastructure/tempfiles"
	"yt-subtitles-loader/infrastructure/ytdlp"

	"github.com/spf13/cobra"
)

// Exit codes of the extract command
const (
	ExitLoadFailed = 1
	ExitUnexpected = 2
)

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

var extractVerbose bool

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Print the subtitles of a video as plain text",
	Long: `Download the best available subtitle track of a YouTube video and print it
as a single line of plain text.

Russian tracks are preferred over English ones, and authored tracks over
automatic captions. Only the text is written to stdout; failures are
reported on stderr as "subtitle loading failed [<code>]: <message>".

Exit codes:
  0  subtitles printed
  1  the video, its subtitles or yt-dlp could not be used
  2  unexpected failure

Example:
  yt-subtitles-loader extract "https://youtu.be/dQw4w9WgXcQ"
  yt-subtitles-loader extract --verbose "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42"`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "report the chosen language and origin on stderr")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return &ExitError{Code: ExitUnexpected, Err: err}
	}

	extractor, closeFn, err := newExtractor(cfg, GetLogger())
	if err != nil {
		return wiringExitError(err, os.Stderr)
	}
	defer closeFn()

	return RunExtractWithDependencies(cmd.Context(), extractor, args[0], extractVerbose, os.Stdout, os.Stderr)
}

// RunExtractWithDependencies runs the extract command with injected dependencies (for testing)
func RunExtractWithDependencies(
	ctx context.Context,
	extractor appsubtitles.Extractor,
	link string,
	verbose bool,
	output OutputWriter,
	errOutput OutputWriter,
) error {
	result, err := extractor.Extract(ctx, link)
	if err != nil {
		var loadErr *subtitles.LoadError
		if errors.As(err, &loadErr) {
			fmt.Fprintf(errOutput, "subtitle loading failed [%s]: %s\n", loadErr.Code, loadErr.Message)
			return &ExitError{Code: ExitLoadFailed, Err: err, Silent: true}
		}
		fmt.Fprintf(errOutput, "unexpected error: %v\n", err)
		return &ExitError{Code: ExitUnexpected, Err: err, Silent: true}
	}

	if verbose {
		track := subtitles.SelectedTrack{Language: result.Language, Auto: result.Auto}
		fmt.Fprintf(errOutput, "language: %s (%s, %s)\n", result.Language.DisplayName(), result.Language.Code(), track.Origin())
	}

	fmt.Fprintln(output, result.Text)
	return nil
}

// wiringExitError maps a failure to build the extractor to an exit code.
// A yt-dlp provisioning failure is a load failure like any other.
func wiringExitError(err error, errOutput OutputWriter) error {
	if code := executable.CodeOf(err); code != "" {
		fmt.Fprintf(errOutput, "subtitle loading failed [%s]: %v\n", code, err)
		return &ExitError{Code: ExitLoadFailed, Err: err, Silent: true}
	}
	return &ExitError{Code: ExitUnexpected, Err: err}
}

// newExtractor wires the production extraction pipeline from cfg.
// The returned func releases resources such as the result cache.
func newExtractor(cfg *config.Config, logger *slog.Logger) (appsubtitles.Extractor, func(), error) {
	resolution, err := executable.NewLocator(
		executable.WithPath(cfg.YtDlp.Path),
		executable.WithBundleDirectory(cfg.YtDlp.BundleDirectory),
		executable.WithCacheDirectory(cfg.YtDlp.CacheDirectory),
	).Resolve()
	if err != nil {
		return nil, nil, fmt.Errorf("yt-dlp unavailable: %w", err)
	}
	logger.Debug("using yt-dlp", "path", resolution.Path, "source", resolution.Source)

	client := ytdlp.NewClient(
		ytdlp.WithYtDlpPath(resolution.Path),
		ytdlp.WithTempDirectory(cfg.Paths.TempDirectory),
	)
	sweeper := tempfiles.NewSweeper(
		cfg.Paths.TempDirectory,
		tempfiles.WithMaxAge(cfg.Cleanup.MaxAge()),
		tempfiles.WithLogger(logger),
	)

	var extractor appsubtitles.Extractor = appsubtitles.NewService(client, client, filesystem.NewChecker(), sweeper, logger)
	closeFn := func() {}

	if cfg.Cache.Enabled {
		store, err := cache.Open(cfg.Cache.Path, cfg.Cache.TTL())
		if err != nil {
			return nil, nil, err
		}
		if removed, err := store.Prune(context.Background()); err != nil {
			logger.Warn("failed to prune result cache", "error", err)
		} else if removed > 0 {
			logger.Debug("pruned result cache", "removed", removed)
		}
		extractor = appsubtitles.NewCachedService(extractor, store, logger)
		closeFn = func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close result cache", "error", err)
			}
		}
	}

	return extractor, closeFn, nil
}
