package subtitles

import (
	"context"
	"errors"
	"testing"

	"yt-subtitles-loader/domain/subtitles"
)

// mockExtractor implements Extractor for testing
type mockExtractor struct {
	result *subtitles.Result
	err    error
	calls  int
}

func (m *mockExtractor) Extract(ctx context.Context, rawURL string) (*subtitles.Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockCache implements ResultCache for testing
type mockCache struct {
	entries map[string]subtitles.Result
	getErr  error
	putErr  error
	puts    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]subtitles.Result)}
}

func (m *mockCache) Get(ctx context.Context, key string) (*subtitles.Result, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	r, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return &r, true, nil
}

func (m *mockCache) Put(ctx context.Context, key string, result *subtitles.Result) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[key] = *result
	return nil
}

func TestCachedService_MissThenHit(t *testing.T) {
	next := &mockExtractor{result: &subtitles.Result{Link: testLink, Language: subtitles.LanguageRU, Text: "Привет мир"}}
	cache := newMockCache()
	svc := NewCachedService(next, cache, nil)

	first, err := svc.Extract(context.Background(), testLink+"&t=10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Extract(context.Background(), testLink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next.calls != 1 {
		t.Errorf("wrapped extractor calls = %d, want 1", next.calls)
	}
	if _, ok := cache.entries[testLink]; !ok {
		t.Errorf("expected entry keyed by canonical link %q", testLink)
	}
	if first.Text != second.Text {
		t.Errorf("cached text = %q, want %q", second.Text, first.Text)
	}
}

func TestCachedService_ErrorsNotCached(t *testing.T) {
	next := &mockExtractor{err: subtitles.NewNoEligibleTrackError("no ru/en subtitles found")}
	cache := newMockCache()
	svc := NewCachedService(next, cache, nil)

	_, err := svc.Extract(context.Background(), testLink)
	if !errors.Is(err, subtitles.ErrNoEligibleTrack) {
		t.Errorf("error = %v, want ErrNoEligibleTrack", err)
	}
	if cache.puts != 0 {
		t.Errorf("puts = %d, want 0", cache.puts)
	}
}

func TestCachedService_InvalidLinkBypassesCache(t *testing.T) {
	next := &mockExtractor{err: subtitles.NewInvalidLinkError("nope")}
	cache := newMockCache()
	cache.getErr = errors.New("must not be called")
	svc := NewCachedService(next, cache, nil)

	_, err := svc.Extract(context.Background(), "nope")
	if !errors.Is(err, subtitles.ErrInvalidLink) {
		t.Errorf("error = %v, want ErrInvalidLink", err)
	}
	if next.calls != 1 {
		t.Errorf("wrapped extractor calls = %d, want 1", next.calls)
	}
}

func TestCachedService_CacheFailuresIgnored(t *testing.T) {
	next := &mockExtractor{result: &subtitles.Result{Link: testLink, Text: "hello"}}
	cache := newMockCache()
	cache.getErr = errors.New("database is locked")
	cache.putErr = errors.New("database is locked")
	svc := NewCachedService(next, cache, nil)

	result, err := svc.Extract(context.Background(), testLink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "hello" {
		t.Errorf("text = %q, want %q", result.Text, "hello")
	}
}
