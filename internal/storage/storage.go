package storage

import (
	"context"
	"io"
)

// Storage writes and removes media objects. Put returns the public URL of
// the stored object.
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
