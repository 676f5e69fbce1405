package storage

import (
	"context"
	"io"
)

// Storage defines the interface for CV blob operations.
type Storage interface {
	// Save stores a file at the given path.
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error

	// Get retrieves a file from the given path.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file at the given path.
	Delete(ctx context.Context, path string) error

	// Exists checks if a file exists at the given path.
	Exists(ctx context.Context, path string) (bool, error)

	// AbsolutePath resolves a stored path to an absolute filesystem path,
	// for backends that expose one (used by the matching client).
	AbsolutePath(path string) (string, error)
}

// Config holds storage configuration.
type Config struct {
	BasePath string // root directory for blobs
	BaseURL  string // public URL base
}

// NewStorage creates a storage backend from configuration.
func NewStorage(cfg Config) (Storage, error) {
	return NewLocalStorage(cfg)
}
