package tempfiles

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"yt-subtitles-loader/domain/subtitles"
)

const (
	// DefaultMaxAge is how old an abandoned file must be before it is removed
	DefaultMaxAge = 15 * time.Minute

	lockFileName = ".sweep.lock"
)

// Sweeper deletes files left behind in the download directory by earlier runs
type Sweeper struct {
	dir    string
	maxAge time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// Option is a functional option for configuring Sweeper
type Option func(*Sweeper)

// WithMaxAge sets the minimum age of a file before it is swept
func WithMaxAge(maxAge time.Duration) Option {
	return func(s *Sweeper) {
		if maxAge > 0 {
			s.maxAge = maxAge
		}
	}
}

// WithClock sets the time source (for testing)
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

// WithLogger sets the logger used for per-file reports
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

// NewSweeper creates a Sweeper for dir
func NewSweeper(dir string, opts ...Option) *Sweeper {
	s := &Sweeper{
		dir:    dir,
		maxAge: DefaultMaxAge,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Sweep removes regular files in the directory last modified more than maxAge ago.
// A missing directory is not an error. When another process holds the sweep
// lock the call returns immediately.
func (s *Sweeper) Sweep(ctx context.Context) error {
	if _, err := os.Stat(s.dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	lock := flock.New(filepath.Join(s.dir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire sweep lock: %w", err)
	}
	if !locked {
		s.logger.Debug("sweep already running elsewhere", "dir", s.dir)
		return nil
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("failed to release sweep lock", "error", err)
		}
	}()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read temp directory: %w", err)
	}

	cutoff := s.now().Add(-s.maxAge)
	var errs []error
	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !entry.Type().IsRegular() || entry.Name() == lockFileName {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		s.logger.Debug("removed stale temp file", "path", path, "modified", info.ModTime())
	}

	return errors.Join(errs...)
}

// Ensure Sweeper implements subtitles.TempSweeper
var _ subtitles.TempSweeper = (*Sweeper)(nil)
