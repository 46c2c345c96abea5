package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"yt-subtitles-loader/infrastructure/config"
	"yt-subtitles-loader/infrastructure/logging"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	cfgErr   error
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "yt-subtitles-loader",
	Short: "Extract plain-text subtitles from YouTube videos",
	Long: `yt-subtitles-loader turns the subtitles of a YouTube video into plain text
using yt-dlp:

  - Validate and clean the video link
  - Pick the best track: Russian before English, authored before automatic
  - Download it as WebVTT and strip timing, markup and repeats

Example:
  yt-subtitles-loader extract "https://www.youtube.com/watch?v=dQw4w9WgXcQ"`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExitError carries a process exit code. Silent errors have already been reported.
type ExitError struct {
	Code   int
	Err    error
	Silent bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	code := 1
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
		if exitErr.Silent {
			os.Exit(code)
		}
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(code)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, .yaml or .toml (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level from the config file")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	// A missing file means defaults; a broken one is reported by commands that need it
	cfg, cfgErr = config.LoadOrDefault(cfgFile)
	if cfgErr != nil {
		cfg = nil
	}

	logCfg := config.Defaults()
	if cfg != nil {
		copied := *cfg
		logCfg = &copied
	}
	if logLevel != "" {
		logCfg.Log.Level = logLevel
	}

	var err error
	logger, err = logging.NewFromConfig(logCfg, os.Stderr)
	if err != nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		logger.Warn("invalid log settings, using defaults", "error", err)
	}
	slog.SetDefault(logger)
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// GetLogger returns the process logger
func GetLogger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// requireConfig returns the configuration or explains why it could not be loaded
func requireConfig() (*config.Config, error) {
	if cfg == nil {
		if cfgErr != nil {
			return nil, fmt.Errorf("failed to load %s: %w", cfgFile, cfgErr)
		}
		return nil, fmt.Errorf("configuration not loaded; run 'yt-subtitles-loader setup' first")
	}
	return cfg, nil
}
