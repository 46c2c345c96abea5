package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"yt-subtitles-loader/domain/subtitles"
)

const testLink = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache", "subtitles.db"), ttl)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_PutGet(t *testing.T) {
	store := openTestStore(t, time.Hour)
	ctx := context.Background()

	if _, found, err := store.Get(ctx, testLink); err != nil || found {
		t.Fatalf("Get() on empty store = found %v, err %v", found, err)
	}

	want := &subtitles.Result{Link: testLink, Language: subtitles.LanguageEN, Auto: true, Text: "hello world"}
	if err := store.Put(ctx, testLink, want); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, found, err := store.Get(ctx, testLink)
	if err != nil || !found {
		t.Fatalf("Get() = found %v, err %v", found, err)
	}
	if *got != *want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	// Replacing an entry keeps a single row
	want.Text = "updated"
	if err := store.Put(ctx, testLink, want); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	got, _, _ = store.Get(ctx, testLink)
	if got.Text != "updated" {
		t.Errorf("text = %q, want %q", got.Text, "updated")
	}
}

func TestStore_Expiry(t *testing.T) {
	store := openTestStore(t, time.Hour)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Put(ctx, testLink, &subtitles.Result{Link: testLink, Language: subtitles.LanguageRU, Text: "x"}); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, found, err := store.Get(ctx, testLink); err != nil || found {
		t.Errorf("Get() after ttl = found %v, err %v; want miss", found, err)
	}

	removed, err := store.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if removed != 1 {
		t.Errorf("Prune() removed %d, want 1", removed)
	}
}
