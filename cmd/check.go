package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"yt-subtitles-loader/infrastructure/config"
	"yt-subtitles-loader/infrastructure/executable"
	"yt-subtitles-loader/infrastructure/ytdlp"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// ErrCheckFailed is returned when a required dependency is unusable
var ErrCheckFailed = errors.New("dependency check failed")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify yt-dlp and the working directories",
	Long: `Report whether everything needed for extraction is in place: the config
file, the yt-dlp executable and its version, and the temp directory.

Example:
  yt-subtitles-loader check`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// Resolver finds the yt-dlp executable
type Resolver interface {
	Resolve() (executable.Resolution, error)
}

// VersionProber reports the version of a yt-dlp executable
type VersionProber func(ctx context.Context, path string) (string, error)

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	locator := executable.NewLocator(
		executable.WithPath(cfg.YtDlp.Path),
		executable.WithBundleDirectory(cfg.YtDlp.BundleDirectory),
		executable.WithCacheDirectory(cfg.YtDlp.CacheDirectory),
	)
	probe := func(ctx context.Context, path string) (string, error) {
		return ytdlp.NewClient(ytdlp.WithYtDlpPath(path)).Version(ctx)
	}

	return RunCheckWithDependencies(cmd.Context(), cfg, cfgFile, locator, probe, os.Stdout)
}

// RunCheckWithDependencies runs the check command with injected dependencies (for testing)
func RunCheckWithDependencies(
	ctx context.Context,
	cfg *config.Config,
	configPath string,
	resolver Resolver,
	probe VersionProber,
	output OutputWriter,
) error {
	var rows [][]string
	failed := false

	configStatus := "ok"
	configDetail := configPath
	if _, err := os.Stat(configPath); err != nil {
		configStatus = "defaults"
		configDetail = configPath + " not found"
	}
	rows = append(rows, []string{"config", configStatus, configDetail})

	resolution, err := resolver.Resolve()
	if err != nil {
		failed = true
		detail := err.Error()
		if code := executable.CodeOf(err); code != "" {
			detail = fmt.Sprintf("[%s] %s", code, detail)
		}
		rows = append(rows, []string{"yt-dlp", "missing", detail})
	} else {
		probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		version, err := probe(probeCtx, resolution.Path)
		cancel()
		if err != nil {
			failed = true
			rows = append(rows, []string{"yt-dlp", "broken", err.Error()})
		} else {
			rows = append(rows, []string{"yt-dlp", "ok", fmt.Sprintf("%s (%s, from %s)", version, resolution.Path, resolution.Source)})
		}
	}

	if err := checkWritable(cfg.Paths.TempDirectory); err != nil {
		failed = true
		rows = append(rows, []string{"temp directory", "error", err.Error()})
	} else {
		rows = append(rows, []string{"temp directory", "ok", cfg.Paths.TempDirectory})
	}

	cacheStatus := "disabled"
	cacheDetail := ""
	if cfg.Cache.Enabled {
		cacheStatus = "enabled"
		cacheDetail = fmt.Sprintf("%s (ttl %s)", cfg.Cache.Path, cfg.Cache.TTL())
	}
	rows = append(rows, []string{"result cache", cacheStatus, cacheDetail})

	fmt.Fprintln(output, renderTable([]string{"Check", "Status", "Detail"}, rows))

	if failed {
		return ErrCheckFailed
	}
	return nil
}

// checkWritable creates dir if needed and verifies a file can be written in it
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(filepath.Clean(name))
}

func renderTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range headers {
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
