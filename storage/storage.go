// Package storage defines the blob store used as the tracker's local sink.
// A blob is an opaque byte string addressed by an id such as a log file name.
package storage

import (
	"context"
	"errors"
	"strings"
)

// Storage defines the blob store interface.
type Storage interface {
	// Exists reports whether a blob is stored under id.
	Exists(ctx context.Context, id string) (bool, error)

	// Load returns the blob stored under id.
	// Returns ErrNotFound if there is none.
	Load(ctx context.Context, id string) ([]byte, error)

	// Save stores data under id, replacing any previous blob.
	Save(ctx context.Context, id string, data []byte) error

	// Delete removes the blob stored under id and reports whether there was one.
	Delete(ctx context.Context, id string) (bool, error)

	// Close closes the storage backend and releases resources
	Close() error
}

// Error types
var (
	// ErrNotFound is returned by Load when no blob exists for the id.
	ErrNotFound = errors.New("storage: not found")

	// ErrInvalidID is returned for ids a backend cannot address.
	ErrInvalidID = errors.New("storage: invalid id")
)

// ValidateID rejects empty ids and ids that could escape a flat namespace.
func ValidateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return ErrInvalidID
	}
	return nil
}
