package embedding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache is a Store backed by a local SQLite file.
type SQLiteCache struct {
	db *sql.DB
}

// OpenSQLiteCache opens (or creates) the cache database at path.
func OpenSQLiteCache(ctx context.Context, path string) (*SQLiteCache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("embedding cache: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("embedding cache: open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS embeddings (
		key        TEXT PRIMARY KEY,
		dim        INTEGER NOT NULL,
		vector     BLOB NOT NULL,
		created_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("embedding cache: init schema: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

// Get returns the stored vector for key.
func (s *SQLiteCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT vector FROM embeddings WHERE key = ?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("embedding cache: get: %w", err)
	}
	vec, err := DecodeVector(blob)
	if err != nil {
		return nil, false, fmt.Errorf("embedding cache: decode %s: %w", key, err)
	}
	return vec, true, nil
}

// Put stores vec under key, replacing any previous entry.
func (s *SQLiteCache) Put(ctx context.Context, key string, vec []float32) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO embeddings (key, dim, vector, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET dim = excluded.dim, vector = excluded.vector, created_at = excluded.created_at`,
		key, len(vec), EncodeVector(vec), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("embedding cache: put: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteCache) Close() error {
	return s.db.Close()
}
