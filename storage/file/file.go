// Package file provides a directory-backed implementation of the
// storage.Storage interface. Each blob is one file named by its id.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ggoodman/tracker-go/storage"
)

// Storage stores blobs as files under a single directory.
type Storage struct {
	dir string
	mu  sync.Mutex
}

// New returns a Storage rooted at dir, creating the directory if needed.
func New(dir string) (*Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the directory blobs are written to.
func (s *Storage) Dir() string { return s.dir }

func (s *Storage) path(id string) (string, error) {
	if err := storage.ValidateID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, id), nil
}

// Exists reports whether a blob file exists for id.
func (s *Storage) Exists(ctx context.Context, id string) (bool, error) {
	p, err := s.path(id)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", p, err)
	}
	return !info.IsDir(), nil
}

// Load reads the blob file for id.
func (s *Storage) Load(ctx context.Context, id string) ([]byte, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

// Save writes the blob through a temp file and renames it into place so
// readers never observe a partial write.
func (s *Storage) Save(ctx context.Context, id string, data []byte) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+id+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename into %s: %w", p, err)
	}
	return nil
}

// Delete removes the blob file for id.
func (s *Storage) Delete(ctx context.Context, id string) (bool, error) {
	p, err := s.path(id)
	if err != nil {
		return false, err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove %s: %w", p, err)
	}
	return true, nil
}

// Close is a no-op; the directory is left in place.
func (s *Storage) Close() error { return nil }

// Compile-time interface check
var _ storage.Storage = (*Storage)(nil)
