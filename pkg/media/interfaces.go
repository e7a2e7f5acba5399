package media

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrBlobNotFound is returned by blob stores for a missing object key.
var ErrBlobNotFound = errors.New("object not found")

// BlobStore defines the interface for storage backends holding media payloads
type BlobStore interface {
	// Upload stores the payload under objectKey
	Upload(ctx context.Context, objectKey string, reader io.Reader, mimeType string) error

	// Download opens the payload stored under objectKey
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes the payload
	Delete(ctx context.Context, objectKey string) error

	// Stat retrieves metadata for an object
	Stat(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}
