package storage

import (
	"context"
	"io"
)

// ImageStore keeps sanitization before/after photos. Keys are slash
// separated paths relative to the store root.
type ImageStore interface {
	// Save writes the image and returns the URL clients fetch it from.
	Save(ctx context.Context, key string, r io.Reader) (string, error)

	// Open returns the stored image. Callers must close it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	Delete(ctx context.Context, key string) error
}
