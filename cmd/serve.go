package cmd

import (
	"context"
	"log/slog"
	"net/http"

	appsubtitles "yt-subtitles-loader/application/subtitles"
	"yt-subtitles-loader/infrastructure/config"
	"yt-subtitles-loader/infrastructure/httpapi"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the subtitle extraction HTTP API",
	Long: `Start an HTTP server exposing subtitle extraction.

Endpoints:
  POST /api/v1/load-subtitles  {"youtubeLink": "<url>"}
  GET  /healthz

Requests are rate limited according to server.requests_per_second and
server.burst.

Example:
  yt-subtitles-loader serve --address 127.0.0.1:8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "listen address (default from server.address)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	extractor, closeFn, err := newExtractor(cfg, GetLogger())
	if err != nil {
		return err
	}
	defer closeFn()

	address := serveAddress
	if address == "" {
		address = cfg.Server.Address
	}

	return RunServeWithDependencies(cmd.Context(), extractor, cfg.Server, address, GetLogger())
}

// NewAPIHandler builds the rate limited HTTP API for extractor
func NewAPIHandler(extractor appsubtitles.Extractor, server config.ServerConfig, logger *slog.Logger) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(server.RequestsPerSecond), server.Burst)
	return httpapi.NewHandler(extractor, limiter, logger)
}

// RunServeWithDependencies runs the serve command with injected dependencies until ctx is cancelled
func RunServeWithDependencies(
	ctx context.Context,
	extractor appsubtitles.Extractor,
	server config.ServerConfig,
	address string,
	logger *slog.Logger,
) error {
	srv := httpapi.NewServer(address, NewAPIHandler(extractor, server, logger))
	return httpapi.Serve(ctx, srv, logger)
}
