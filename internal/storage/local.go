package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes images into a directory served as static files.
type LocalStore struct {
	dir          string
	publicPrefix string
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir, publicPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, publicPrefix: strings.TrimRight(publicPrefix, "/")}, nil
}

// Dir returns the directory images are written to.
func (s *LocalStore) Dir() string { return s.dir }

// Save writes r to dir/name.
func (s *LocalStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid image name %q", name)
	}
	target := filepath.Join(s.dir, name)
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close image file: %w", err)
	}
	return name, nil
}

// Delete removes dir/key.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	if key == "" || key != filepath.Base(key) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}

// URL returns publicPrefix/key.
func (s *LocalStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return path.Join(s.publicPrefix, key)
}
