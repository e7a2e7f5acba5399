package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/tendant/outcome-content/pkg/media"
)

type object struct {
	data      []byte
	mimeType  string
	updatedAt time.Time
}

// Backend is an in-memory implementation of the media.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string]object),
	}
}

// Stat retrieves metadata for an object in memory
func (b *Backend) Stat(ctx context.Context, objectKey string) (*media.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, media.ErrBlobNotFound
	}

	return &media.ObjectMeta{
		Key:         objectKey,
		Size:        int64(len(obj.data)),
		ContentType: obj.mimeType,
		UpdatedAt:   obj.updatedAt,
	}, nil
}

// Upload stores content in memory
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader, mimeType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if mimeType == "" {
		mimeType = media.DefaultMimeType
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = object{data: data, mimeType: mimeType, updatedAt: time.Now().UTC()}
	return nil
}

// Download returns a reader over the stored content
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, media.ErrBlobNotFound
	}

	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return media.ErrBlobNotFound
	}

	delete(b.objects, objectKey)
	return nil
}
