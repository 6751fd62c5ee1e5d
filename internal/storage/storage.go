// Package storage persists book cover images. The local backend keeps files
// on disk and serves them through the API; the interface leaves room for a
// cloud backend later.
package storage

import (
	"context"
	"io"
)

type Storage interface {
	// Save writes the content under key, replacing any existing file.
	Save(ctx context.Context, key string, content io.Reader) error

	// Open returns the stored content for key. The caller closes it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the file for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL the content is served from.
	URL(key string) string
}
