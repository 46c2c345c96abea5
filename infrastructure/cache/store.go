package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	appsubtitles "yt-subtitles-loader/application/subtitles"
	"yt-subtitles-loader/domain/subtitles"
)

// Store is a SQLite-backed result cache keyed by canonical video link
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens (or creates) the cache database at path. Entries older than ttl are misses.
func Open(path string, ttl time.Duration) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("cache: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init schema: %w", err)
	}

	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS results (
		link       TEXT PRIMARY KEY,
		title      TEXT NOT NULL DEFAULT '',
		language   TEXT NOT NULL,
		auto       INTEGER NOT NULL,
		text       TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	return err
}

// Get implements application/subtitles.ResultCache
func (s *Store) Get(ctx context.Context, key string) (*subtitles.Result, bool, error) {
	var (
		result    subtitles.Result
		language  string
		auto      bool
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT link, title, language, auto, text, created_at FROM results WHERE link = ?`, key,
	).Scan(&result.Link, &result.Title, &language, &auto, &result.Text, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", key, err)
	}

	if s.ttl > 0 && s.now().Sub(time.Unix(createdAt, 0)) > s.ttl {
		return nil, false, nil
	}

	result.Language = subtitles.Language(language)
	result.Auto = auto
	return &result, true, nil
}

// Put implements application/subtitles.ResultCache, replacing any previous entry
func (s *Store) Put(ctx context.Context, key string, result *subtitles.Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO results (link, title, language, auto, text, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		key, result.Title, string(result.Language), result.Auto, result.Text, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache: put %s: %w", key, err)
	}
	return nil
}

// Prune deletes expired entries and returns how many were removed
func (s *Store) Prune(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.ttl).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cache: prune: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure Store implements application/subtitles.ResultCache
var _ appsubtitles.ResultCache = (*Store)(nil)
