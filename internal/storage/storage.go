// Package storage provides the object-storage interface backing the episode
// store. The core only needs a handful of operations over flat files; the
// local filesystem implementation lives in this package as well.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for object storage operations.
type Storage interface {
	// Upload writes data from reader to the given path.
	Upload(ctx context.Context, path string, reader io.Reader) error

	// Download returns a reader for the object at the given path.
	// The caller is responsible for closing the returned ReadCloser.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object at the given path.
	// Returns nil if the object does not exist.
	Delete(ctx context.Context, path string) error

	// Exists checks whether an object exists at the given path.
	Exists(ctx context.Context, path string) (bool, error)

	// LocalPath resolves the path to an absolute filesystem location when the
	// backend is file-based, for collaborators (ffmpeg) that need real files.
	LocalPath(path string) string
}
