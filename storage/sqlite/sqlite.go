// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ggoodman/tracker-go/storage"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS blobs (
	id TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Storage persists blobs in a single SQLite table.
type Storage struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and ensures the
// blobs table exists.
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create blobs table: %w", err)
	}
	return &Storage{db: db, now: time.Now}, nil
}

// Exists reports whether a blob is stored under id.
func (s *Storage) Exists(ctx context.Context, id string) (bool, error) {
	if err := storage.ValidateID(id); err != nil {
		return false, err
	}
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM blobs WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check blob %s: %w", id, err)
	}
	return true, nil
}

// Load returns the blob stored under id.
func (s *Storage) Load(ctx context.Context, id string) ([]byte, error) {
	if err := storage.ValidateID(id); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load blob %s: %w", id, err)
	}
	return data, nil
}

// Save upserts the blob stored under id.
func (s *Storage) Save(ctx context.Context, id string, data []byte) error {
	if err := storage.ValidateID(id); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		id, data, s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save blob %s: %w", id, err)
	}
	return nil
}

// Delete removes the blob stored under id.
func (s *Storage) Delete(ctx context.Context, id string) (bool, error) {
	if err := storage.ValidateID(id); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete blob %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete blob %s: %w", id, err)
	}
	return n > 0, nil
}

// UpdatedAt returns when the blob under id was last saved.
func (s *Storage) UpdatedAt(ctx context.Context, id string) (time.Time, error) {
	if err := storage.ValidateID(id); err != nil {
		return time.Time{}, err
	}
	var ms int64
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM blobs WHERE id = ?`, id).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, storage.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("blob %s updated_at: %w", id, err)
	}
	return time.UnixMilli(ms).UTC(), nil
}

// Close releases the underlying SQLite connection.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Compile-time interface check
var _ storage.Storage = (*Storage)(nil)
