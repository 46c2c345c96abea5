package subtitles

import (
	"context"
	"log/slog"

	"yt-subtitles-loader/domain/subtitles"
)

// ResultCache stores successful results keyed by canonical link
type ResultCache interface {
	Get(ctx context.Context, key string) (*subtitles.Result, bool, error)
	Put(ctx context.Context, key string, result *subtitles.Result) error
}

// CachedService answers repeated requests for the same video from a ResultCache.
// Cache failures are logged and otherwise ignored.
type CachedService struct {
	next   Extractor
	cache  ResultCache
	logger *slog.Logger
}

var _ Extractor = (*CachedService)(nil)

// NewCachedService wraps next with cache lookups
func NewCachedService(next Extractor, cache ResultCache, logger *slog.Logger) *CachedService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachedService{next: next, cache: cache, logger: logger}
}

// Extract returns a cached result when one exists, otherwise delegates and stores the result
func (c *CachedService) Extract(ctx context.Context, rawURL string) (*subtitles.Result, error) {
	ref, err := subtitles.ParseVideoReference(rawURL)
	if err != nil {
		// Let the wrapped extractor produce the canonical error
		return c.next.Extract(ctx, rawURL)
	}
	key := ref.CanonicalURL

	cached, found, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("result cache lookup failed", "link", key, "error", err)
	case found:
		c.logger.Debug("result cache hit", "link", key)
		hit := *cached
		return &hit, nil
	}

	result, err := c.next.Extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(ctx, key, result); err != nil {
		c.logger.Warn("result cache store failed", "link", key, "error", err)
	}
	return result, nil
}
