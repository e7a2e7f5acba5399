package config

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/outcome-content/pkg/definitions"
	"github.com/tendant/outcome-content/pkg/itemstore"
	"github.com/tendant/outcome-content/pkg/media"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.DatabaseType)
	assert.Equal(t, "items", cfg.DBSchema)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, itemstore.MustCulture("en"), cfg.DefaultCulture)
	assert.False(t, cfg.AssumeActive)
	assert.Zero(t, cfg.MaxImageBytes)
}

func TestOptions(t *testing.T) {
	t.Run("Database", func(t *testing.T) {
		cfg, err := Load(WithDatabase("postgres", "postgres://localhost/items"), WithDatabaseSchema("web"), WithAutoMigrate(true))
		require.NoError(t, err)
		assert.Equal(t, "postgres", cfg.DatabaseType)
		assert.Equal(t, "web", cfg.DBSchema)
		assert.True(t, cfg.AutoMigrate)

		_, err = Load(WithDatabase("mysql", "mysql://localhost"))
		assert.Error(t, err)
		_, err = Load(WithDatabase("postgres", ""))
		assert.Error(t, err)
	})

	t.Run("Storage", func(t *testing.T) {
		cfg, err := Load(WithFilesystemStorage("/tmp/media"))
		require.NoError(t, err)
		assert.Equal(t, "fs", cfg.Storage.Type)
		assert.Equal(t, "/tmp/media", cfg.Storage.Config["base_dir"])

		cfg, err = Load(WithS3Storage("outcomes", ""), WithS3Endpoint("http://localhost:9000", true))
		require.NoError(t, err)
		assert.Equal(t, "s3", cfg.Storage.Type)
		assert.Equal(t, "us-east-1", cfg.Storage.Config["region"])
		assert.Equal(t, true, cfg.Storage.Config["use_path_style"])

		_, err = Load(WithS3Endpoint("http://localhost:9000", true))
		assert.Error(t, err)
		_, err = Load(WithFilesystemStorage(""))
		assert.Error(t, err)
		_, err = Load(WithS3Storage("", "us-east-1"))
		assert.Error(t, err)
	})

	t.Run("Definitions", func(t *testing.T) {
		cfg, err := Load(WithDefaultCulture("invariant"), WithAssumeActive(true), WithMaxImageBytes(512))
		require.NoError(t, err)
		assert.Equal(t, itemstore.InvariantCulture, cfg.DefaultCulture)
		assert.True(t, cfg.AssumeActive)
		assert.Equal(t, int64(512), cfg.MaxImageBytes)

		_, err = Load(WithDefaultCulture("!!"))
		assert.Error(t, err)
		_, err = Load(WithMaxImageBytes(-1))
		assert.Error(t, err)
	})

	t.Run("Server", func(t *testing.T) {
		cfg, err := Load(WithPort("9090"), WithEnvironment("testing"), nil)
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "testing", cfg.Environment)

		_, err = Load(WithPort(""))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	cfg.Storage.Type = "ftp"
	assert.Error(t, cfg.Validate())

	cfg = defaults()
	cfg.DatabaseType = "postgres"
	assert.Error(t, cfg.Validate())
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		cfg, err := Load(WithAssumeActive(true))
		require.NoError(t, err)

		stack, err := cfg.Build(ctx)
		require.NoError(t, err)
		defer stack.Close()

		record := &definitions.OutcomeDefinitionRecord{Name: "Purchase"}
		require.NoError(t, stack.Repository.Save(ctx, record, cfg.DefaultCulture))

		got, err := stack.Repository.Get(ctx, record.ID, cfg.DefaultCulture, true)
		require.NoError(t, err)
		assert.Equal(t, "Purchase", got.Name)
	})

	t.Run("FilesystemMedia", func(t *testing.T) {
		cfg, err := Load(WithFilesystemStorage(t.TempDir()), WithAssumeActive(true))
		require.NoError(t, err)

		stack, err := cfg.Build(ctx)
		require.NoError(t, err)
		defer stack.Close()

		img := itemstore.NewItem(media.TemplateUnversionedImage, uuid.Nil, "logo")
		require.NoError(t, stack.Media.Attach(ctx, img, "logo.png", "image/png", []byte("png")))
		img.AddVersion(itemstore.InvariantCulture, itemstore.WorkflowStateApproved)
		require.NoError(t, stack.Store.SaveItem(ctx, img))

		record := &definitions.OutcomeDefinitionRecord{Name: "Purchase"}
		require.NoError(t, stack.Repository.Save(ctx, record, cfg.DefaultCulture))

		item, err := stack.Store.GetItem(ctx, record.ID)
		require.NoError(t, err)
		item.LatestVersion(cfg.DefaultCulture).SetField(definitions.FieldImage, img.ID.String())
		require.NoError(t, stack.Store.SaveItem(ctx, item))

		got, err := stack.Repository.GetImage(ctx, record.ID, cfg.DefaultCulture)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, []byte("png"), got.Data)
		assert.Equal(t, "image/png", got.MimeType)
	})

	t.Run("ExtraOptions", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		_, err = cfg.Build(ctx, definitions.WithMaxImageBytes(-1))
		assert.Error(t, err)
	})
}
