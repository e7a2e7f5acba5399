package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/outcome-content/pkg/media"
	memorystorage "github.com/tendant/outcome-content/pkg/media/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()
	testKey := "media/logo.png"
	testData := "\x89PNG fake image payload"

	t.Run("Upload", func(t *testing.T) {
		err := backend.Upload(ctx, testKey, strings.NewReader(testData), "image/png")
		assert.NoError(t, err)
	})

	t.Run("Stat", func(t *testing.T) {
		meta, err := backend.Stat(ctx, testKey)
		require.NoError(t, err)
		assert.Equal(t, testKey, meta.Key)
		assert.Equal(t, int64(len(testData)), meta.Size)
		assert.Equal(t, "image/png", meta.ContentType)
	})

	t.Run("DefaultContentType", func(t *testing.T) {
		require.NoError(t, backend.Upload(ctx, "media/blob", strings.NewReader("x"), ""))
		meta, err := backend.Stat(ctx, "media/blob")
		require.NoError(t, err)
		assert.Equal(t, media.DefaultMimeType, meta.ContentType)
	})

	t.Run("Download", func(t *testing.T) {
		reader, err := backend.Download(ctx, testKey)
		require.NoError(t, err)
		defer reader.Close()

		downloaded, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, testData, string(downloaded))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, backend.Delete(ctx, testKey))

		_, err := backend.Stat(ctx, testKey)
		assert.ErrorIs(t, err, media.ErrBlobNotFound)
		_, err = backend.Download(ctx, testKey)
		assert.ErrorIs(t, err, media.ErrBlobNotFound)
		assert.ErrorIs(t, backend.Delete(ctx, testKey), media.ErrBlobNotFound)
	})
}
