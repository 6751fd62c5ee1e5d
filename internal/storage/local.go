package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage stores cover images on the local filesystem under a single
// directory. Keys are flat file names; anything resembling a path traversal
// is rejected.
type LocalStorage struct {
	baseURL string // server URL, e.g. "http://localhost:8080"
	dir     string
}

func NewLocalStorage(baseURL, dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		dir:     dir,
	}, nil
}

func (s *LocalStorage) Save(ctx context.Context, key string, content io.Reader) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStorage) URL(key string) string {
	return fmt.Sprintf("%s/api/v1/covers/%s", s.baseURL, key)
}

func (s *LocalStorage) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(s.dir, key), nil
}
