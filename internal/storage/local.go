package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultUploadDir is the shared directory for uploads and reports.
const DefaultUploadDir = "uploads"

// LocalStore keeps files in a single directory on disk.
type LocalStore struct {
	dir string
}

// NewLocalStore returns a store rooted at dir. The directory is created on
// first write.
func NewLocalStore(dir string) *LocalStore {
	if dir == "" {
		dir = DefaultUploadDir
	}
	return &LocalStore{dir: dir}
}

// Dir returns the store directory.
func (s *LocalStore) Dir() string { return s.dir }

// Path returns the on-disk path for name.
func (s *LocalStore) Path(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", fmt.Errorf("%w: %q", err, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Save writes data to name and returns the file path.
func (s *LocalStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %q: %w", path, err)
	}
	return path, nil
}

// SaveReader copies r into name and returns the file path.
func (s *LocalStore) SaveReader(ctx context.Context, name string, r io.Reader) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %q: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %q: %w", path, err)
	}
	return path, nil
}

// Open reads name from the store.
func (s *LocalStore) Open(ctx context.Context, name string) ([]byte, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return data, nil
}

// Remove deletes name. Missing files are not an error.
func (s *LocalStore) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", path, err)
	}
	return nil
}
