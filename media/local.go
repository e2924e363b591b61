package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes photos under a flat data directory.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	if dir == "" {
		dir = "data"
	}
	return &LocalStore{dir: dir}
}

func (l *LocalStore) path(name string) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == ".." || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid object name: %q", name)
	}
	return filepath.Join(l.dir, base), nil
}

func (l *LocalStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	dest, err := l.path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dest)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return dest, nil
}

func (l *LocalStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	return os.Open(ref)
}

func (l *LocalStore) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := os.Stat(ref)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
