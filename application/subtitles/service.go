package subtitles

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"yt-subtitles-loader/domain/subtitles"
)

// noSubtitlesMarker is printed by yt-dlp when the requested language has no track
const noSubtitlesMarker = "no subtitles for the requested languages"

// Stage names an extraction step, attached to debug logs as the "stage" attribute
type Stage string

const (
	StageLinkValidated Stage = "link_validated"
	StageTracksListed  Stage = "tracks_listed"
	StageTrackSelected Stage = "track_selected"
	StageDownloaded    Stage = "downloaded"
	StageCleaned       Stage = "cleaned"
	StageDone          Stage = "done"
	StageFailed        Stage = "failed"
)

// Extractor turns a video link into plain subtitle text
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (*subtitles.Result, error)
}

// Service coordinates validation, track selection, download and cleanup
type Service struct {
	lister     subtitles.TrackLister
	downloader subtitles.SubtitleDownloader
	files      subtitles.FileStore
	sweeper    subtitles.TempSweeper
	logger     *slog.Logger
}

var _ Extractor = (*Service)(nil)

// NewService creates a new Service. sweeper and logger may be nil.
func NewService(
	lister subtitles.TrackLister,
	downloader subtitles.SubtitleDownloader,
	files subtitles.FileStore,
	sweeper subtitles.TempSweeper,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		lister:     lister,
		downloader: downloader,
		files:      files,
		sweeper:    sweeper,
		logger:     logger,
	}
}

// Extract returns the cleaned subtitle text of the video behind rawURL.
// Every returned error is a *subtitles.LoadError.
func (s *Service) Extract(ctx context.Context, rawURL string) (*subtitles.Result, error) {
	s.sweep(ctx)

	result, err := s.extract(ctx, rawURL)
	if err != nil {
		s.logger.Debug("extraction failed",
			"stage", StageFailed,
			"link", rawURL,
			"code", subtitles.CodeOf(err),
			"error", err,
		)
		return nil, err
	}

	s.logger.Debug("extraction finished",
		"stage", StageDone,
		"link", result.Link,
		"language", result.Language,
		"chars", len(result.Text),
	)
	return result, nil
}

func (s *Service) extract(ctx context.Context, rawURL string) (*subtitles.Result, error) {
	if !subtitles.IsValidReference(rawURL) {
		return nil, subtitles.NewInvalidLinkError(rawURL)
	}

	link, err := subtitles.Canonicalize(rawURL)
	if err != nil {
		return nil, err
	}
	log := s.logger.With("link", link)
	log.Debug("link validated", "stage", StageLinkValidated)

	avail := s.listTracks(ctx, link, log)
	log.Debug("tracks listed",
		"stage", StageTracksListed,
		"ru_manual", avail.RuManual,
		"ru_auto", avail.RuAuto,
		"en_manual", avail.EnManual,
		"en_auto", avail.EnAuto,
	)

	track, ok := avail.Select()
	if !ok {
		return nil, subtitles.NewNoEligibleTrackError("no ru/en subtitles found")
	}
	log.Debug("track selected", "stage", StageTrackSelected, "language", track.Language, "origin", track.Origin())

	text, err := s.download(ctx, link, track, log)
	if err != nil {
		return nil, err
	}

	return &subtitles.Result{
		Link:     link,
		Language: track.Language,
		Auto:     track.Auto,
		Text:     text,
	}, nil
}

// listTracks never fails: a listing that cannot be obtained means no tracks
func (s *Service) listTracks(ctx context.Context, link string, log *slog.Logger) subtitles.TrackAvailability {
	out, err := s.lister.ListTracks(ctx, link)
	if err != nil {
		log.Warn("listing subtitles failed", "error", err)
		return subtitles.TrackAvailability{}
	}
	if out.ExitCode != 0 {
		log.Warn("listing subtitles exited with error",
			"exit_code", out.ExitCode,
			"stderr", strings.TrimSpace(out.Stderr),
		)
		return subtitles.TrackAvailability{}
	}
	return subtitles.ParseTrackListing(out.Stdout)
}

func (s *Service) download(ctx context.Context, link string, track subtitles.SelectedTrack, log *slog.Logger) (string, error) {
	dl, err := s.downloader.Download(ctx, link, track)
	if err != nil {
		return "", subtitles.NewExtractionFailedError(fmt.Errorf("download subtitles: %w", err))
	}
	defer s.removeArtifact(dl.Path, log)

	if stderr := strings.TrimSpace(dl.Stderr); stderr != "" {
		log.Debug("yt-dlp stderr", "stderr", stderr)
	}

	if strings.Contains(strings.ToLower(dl.Stderr), noSubtitlesMarker) {
		return "", subtitles.NewNoEligibleTrackError(
			fmt.Sprintf("no %s subtitles available for this video", track.Language))
	}
	if dl.ExitCode != 0 {
		return "", subtitles.NewNoEligibleTrackError(
			fmt.Sprintf("subtitle download exited with code %d", dl.ExitCode))
	}
	if dl.Path == "" || !s.files.Exists(dl.Path) {
		return "", subtitles.NewNoEligibleTrackError("subtitle file was not created")
	}

	content, err := s.files.ReadFile(dl.Path)
	if err != nil {
		return "", subtitles.NewExtractionFailedError(fmt.Errorf("read subtitles: %w", err))
	}
	if strings.TrimSpace(string(content)) == "" {
		return "", subtitles.NewNoEligibleTrackError("subtitle file is empty")
	}
	log.Debug("subtitles downloaded", "stage", StageDownloaded, "bytes", len(content))

	text := subtitles.Clean(subtitles.SplitLines(string(content)))
	if text == "" {
		return "", subtitles.NewNoEligibleTrackError("subtitles contain no text")
	}
	log.Debug("subtitles cleaned", "stage", StageCleaned)

	return text, nil
}

func (s *Service) removeArtifact(path string, log *slog.Logger) {
	if path == "" {
		return
	}
	if err := s.files.Remove(path); err != nil {
		log.Warn("failed to remove subtitle file", "error", err)
	}
}

// sweep is best effort; failures never reach the caller
func (s *Service) sweep(ctx context.Context) {
	if s.sweeper == nil {
		return
	}
	if err := s.sweeper.Sweep(ctx); err != nil {
		s.logger.Warn("temp directory sweep failed", "error", err)
	}
}
