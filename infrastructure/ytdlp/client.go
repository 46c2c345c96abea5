package ytdlp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"yt-subtitles-loader/domain/subtitles"
)

const (
	// DefaultTempDirectory is where subtitle files are written when no directory is configured
	DefaultTempDirectory = "./temp-subtitles"

	// TemplatePrefix starts the name of every file yt-dlp writes for us
	TemplatePrefix = "temp_subs_"

	subtitleFormat = "vtt"
)

// Client implements subtitles.TrackLister and subtitles.SubtitleDownloader using yt-dlp
type Client struct {
	ytdlpPath string
	tempDir   string
	runner    CommandRunner
	newID     func() string
}

// Option is a functional option for configuring Client
type Option func(*Client)

// WithYtDlpPath sets a custom yt-dlp executable path
func WithYtDlpPath(path string) Option {
	return func(c *Client) {
		c.ytdlpPath = path
	}
}

// WithTempDirectory sets the directory subtitle files are downloaded into
func WithTempDirectory(dir string) Option {
	return func(c *Client) {
		c.tempDir = dir
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) Option {
	return func(c *Client) {
		c.runner = runner
	}
}

// WithIDGenerator sets the source of unique file name suffixes (for testing)
func WithIDGenerator(newID func() string) Option {
	return func(c *Client) {
		c.newID = newID
	}
}

// NewClient creates a new yt-dlp client
func NewClient(opts ...Option) *Client {
	c := &Client{
		ytdlpPath: "yt-dlp",
		tempDir:   DefaultTempDirectory,
		runner:    &ExecCommandRunner{},
		newID:     shortID,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Path returns the yt-dlp executable this client invokes
func (c *Client) Path() string {
	return c.ytdlpPath
}

// ListTracks implements subtitles.TrackLister
func (c *Client) ListTracks(ctx context.Context, link string) (*subtitles.ProcessOutput, error) {
	out, err := c.runner.Run(ctx, c.ytdlpPath, "--list-subs", link)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp --list-subs failed: %w", err)
	}
	return out, nil
}

// Download implements subtitles.SubtitleDownloader.
// The returned Path is where yt-dlp writes the track: <template>.<lang>.vtt.
func (c *Client) Download(ctx context.Context, link string, track subtitles.SelectedTrack) (*subtitles.Download, error) {
	if err := os.MkdirAll(c.tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	template := filepath.Join(c.tempDir, TemplatePrefix+c.newID())

	writeFlag := "--write-subs"
	if track.Auto {
		writeFlag = "--write-auto-subs"
	}

	args := []string{
		"--skip-download",
		writeFlag,
		"--sub-lang", track.Language.Code(),
		"--sub-format", subtitleFormat,
		"-o", template,
		link,
	}

	out, err := c.runner.Run(ctx, c.ytdlpPath, args...)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp subtitle download failed: %w", err)
	}

	return &subtitles.Download{
		ProcessOutput: *out,
		Path:          template + "." + track.Language.Code() + "." + subtitleFormat,
	}, nil
}

// Version returns the version string reported by yt-dlp
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.runner.Output(ctx, c.ytdlpPath, "--version")
	if err != nil {
		return "", fmt.Errorf("yt-dlp not found or not executable: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// VerifyInstalled checks that yt-dlp is available
func (c *Client) VerifyInstalled(ctx context.Context) error {
	_, err := c.Version(ctx)
	return err
}

// shortID returns the first 8 hex characters of a random UUID
func shortID() string {
	return uuid.NewString()[:8]
}

// Ensure Client implements the extraction ports
var (
	_ subtitles.TrackLister        = (*Client)(nil)
	_ subtitles.SubtitleDownloader = (*Client)(nil)
)
