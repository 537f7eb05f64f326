package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local implements Storage using the local filesystem.
type Local struct {
	basePath string
}

// NewLocal creates a new local filesystem storage rooted at basePath.
func NewLocal(basePath string) (*Local, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}
	return &Local{basePath: abs}, nil
}

// Upload writes data from reader to a local file.
func (s *Local) Upload(_ context.Context, path string, reader io.Reader) error {
	fullPath := s.LocalPath(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return fmt.Errorf("storage: create directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("storage: create file: %w", err)
	}
	defer f.Close() //nolint:errcheck // close error is irrelevant after a successful write+sync path

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("storage: write file: %w", err)
	}
	return nil
}

// Download returns a reader for the local file at the given path.
func (s *Local) Download(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(s.LocalPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage: file not found: %s", path)
		}
		return nil, fmt.Errorf("storage: open file: %w", err)
	}
	return f, nil
}

// Delete removes a local file. Returns nil if the file does not exist.
func (s *Local) Delete(_ context.Context, path string) error {
	if err := os.Remove(s.LocalPath(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete file: %w", err)
	}
	return nil
}

// Exists checks whether a local file exists.
func (s *Local) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(s.LocalPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("storage: stat file: %w", err)
	}
	return true, nil
}

// LocalPath resolves a storage path to an absolute filesystem location.
func (s *Local) LocalPath(path string) string {
	return filepath.Join(s.basePath, filepath.Clean(path))
}
