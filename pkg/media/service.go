// Package media resolves the media type and binary stream of media items.
//
// Media items are ordinary items whose shared fields point at a payload in a
// BlobStore (memory, filesystem or S3, see storage/).
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strconv"
	"strings"

	"github.com/tendant/outcome-content/pkg/itemstore"
)

// DefaultMimeType is reported when nothing more specific is known.
const DefaultMimeType = "application/octet-stream"

// ErrNoMediaStream indicates the media item does not reference a payload
var ErrNoMediaStream = errors.New("media item has no stream")

// Service reads media metadata and payloads for resolved media items.
type Service struct {
	blobs BlobStore
}

// New creates a media service backed by blobs.
func New(blobs BlobStore) *Service {
	return &Service{blobs: blobs}
}

// MimeType determines the media type of a media item: the MimeType field,
// then the Extension field, then the stored object's content type.
func (s *Service) MimeType(ctx context.Context, iv itemstore.ItemVersion) (string, error) {
	if mt := strings.TrimSpace(iv.Field(FieldMimeType)); mt != "" {
		return mt, nil
	}
	if ext := strings.TrimSpace(iv.Field(FieldExtension)); ext != "" {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if mt := mime.TypeByExtension(strings.ToLower(ext)); mt != "" {
			return mt, nil
		}
	}
	key := iv.Field(FieldBlobKey)
	if key == "" {
		return DefaultMimeType, nil
	}
	meta, err := s.blobs.Stat(ctx, key)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return DefaultMimeType, nil
		}
		return "", fmt.Errorf("stat media %s: %w", iv.Item.ID, err)
	}
	if meta.ContentType == "" {
		return DefaultMimeType, nil
	}
	return meta.ContentType, nil
}

// Open returns the media payload. The caller must close the reader.
func (s *Service) Open(ctx context.Context, iv itemstore.ItemVersion) (io.ReadCloser, error) {
	key := iv.Field(FieldBlobKey)
	if key == "" {
		return nil, fmt.Errorf("media %s: %w", iv.Item.ID, ErrNoMediaStream)
	}
	rc, err := s.blobs.Download(ctx, key)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return nil, fmt.Errorf("media %s: %w", iv.Item.ID, ErrNoMediaStream)
		}
		return nil, fmt.Errorf("open media %s: %w", iv.Item.ID, err)
	}
	return rc, nil
}

// Attach uploads a payload for item and records its blob key, media type,
// extension, size and ASCII file name on the item's shared fields. The item
// is not saved.
func (s *Service) Attach(ctx context.Context, item *itemstore.Item, fileName, mimeType string, data []byte) error {
	fileName = SanitizeFileName(fileName)
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	key := "media/" + item.ID.String()
	if ext != "" {
		key += "." + ext
	}
	if err := s.blobs.Upload(ctx, key, bytes.NewReader(data), mimeType); err != nil {
		return fmt.Errorf("upload media %s: %w", item.ID, err)
	}
	item.SetShared(FieldBlobKey, key)
	item.SetShared(FieldMimeType, mimeType)
	item.SetShared(FieldExtension, ext)
	item.SetShared(FieldFileName, fileName)
	item.SetShared(FieldSize, strconv.Itoa(len(data)))
	return nil
}
