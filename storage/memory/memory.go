// Package memory provides an in-memory implementation of the storage interface.
package memory

import (
	"context"
	"sync"

	"github.com/ggoodman/tracker-go/storage"
)

// Storage implements the storage.Storage interface using in-memory storage
type Storage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New creates a new in-memory storage implementation
func New() *Storage {
	return &Storage{blobs: make(map[string][]byte)}
}

// Exists reports whether a blob is stored under id.
func (s *Storage) Exists(ctx context.Context, id string) (bool, error) {
	if err := storage.ValidateID(id); err != nil {
		return false, err
	}
	s.mu.RLock()
	_, ok := s.blobs[id]
	s.mu.RUnlock()
	return ok, nil
}

// Load returns a copy of the blob stored under id.
func (s *Storage) Load(ctx context.Context, id string) ([]byte, error) {
	if err := storage.ValidateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.blobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Save stores a copy of data under id.
func (s *Storage) Save(ctx context.Context, id string, data []byte) error {
	if err := storage.ValidateID(id); err != nil {
		return err
	}
	cp := make([]byte, len(data))
	copy(cp, data)

	s.mu.Lock()
	s.blobs[id] = cp
	s.mu.Unlock()
	return nil
}

// Delete removes the blob stored under id.
func (s *Storage) Delete(ctx context.Context, id string) (bool, error) {
	if err := storage.ValidateID(id); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[id]; !ok {
		return false, nil
	}
	delete(s.blobs, id)
	return true, nil
}

// Close releases all blobs.
func (s *Storage) Close() error {
	s.mu.Lock()
	s.blobs = make(map[string][]byte)
	s.mu.Unlock()
	return nil
}

// Compile-time interface check
var _ storage.Storage = (*Storage)(nil)
