// Package config builds the outcome definition stack from configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/outcome-content/pkg/definitions"
	"github.com/tendant/outcome-content/pkg/itemstore"
	"github.com/tendant/outcome-content/pkg/itemstore/repo/memory"
	repopg "github.com/tendant/outcome-content/pkg/itemstore/repo/postgres"
	"github.com/tendant/outcome-content/pkg/media"
	fsstorage "github.com/tendant/outcome-content/pkg/media/storage/fs"
	memorystorage "github.com/tendant/outcome-content/pkg/media/storage/memory"
	s3storage "github.com/tendant/outcome-content/pkg/media/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		DBSchema:     "items",
		Storage: StorageBackendConfig{
			Type:   "memory",
			Config: map[string]interface{}{},
		},
		DefaultCulture: itemstore.MustCulture("en"),
	}
}

// ServerConfig represents configuration for the outcome definition service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Item store configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres schema holding the item tables
	AutoMigrate  bool   // Apply the item schema on startup

	// Media blob storage
	Storage StorageBackendConfig

	// Definition behaviour
	DefaultCulture itemstore.Culture
	AssumeActive   bool
	MaxImageBytes  int64
}

// StorageBackendConfig represents configuration for the media blob store
type StorageBackendConfig struct {
	Type   string // "memory", "fs", "s3"
	Config map[string]interface{}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.Storage.Type {
	case "memory", "fs", "s3":
	default:
		return fmt.Errorf("unsupported storage backend type: %s", c.Storage.Type)
	}

	if c.MaxImageBytes < 0 {
		return errors.New("max_image_bytes must not be negative")
	}

	return nil
}

// Stack is the assembled outcome definition service.
type Stack struct {
	Store      itemstore.Store
	Blobs      media.BlobStore
	Media      *media.Service
	Repository *definitions.OutcomeRepository

	closers []func()
}

// Close releases database connections held by the stack.
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Build assembles the item store, blob store, media service and outcome
// definition repository. extra options are applied after the configured ones.
func (c *ServerConfig) Build(ctx context.Context, extra ...definitions.Option) (*Stack, error) {
	stack := &Stack{}

	store, closeStore, err := c.buildStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build item store: %w", err)
	}
	stack.Store = store
	if closeStore != nil {
		stack.closers = append(stack.closers, closeStore)
	}

	blobs, err := c.buildStorageBackend(c.Storage)
	if err != nil {
		stack.Close()
		return nil, fmt.Errorf("failed to build storage backend %s: %w", c.Storage.Type, err)
	}
	stack.Blobs = blobs
	stack.Media = media.New(blobs)

	options := []definitions.Option{
		definitions.WithStore(store),
		definitions.WithMediaService(stack.Media),
		definitions.WithAssumeActive(c.AssumeActive),
		definitions.WithMaxImageBytes(c.MaxImageBytes),
	}
	repo, err := definitions.New(append(options, extra...)...)
	if err != nil {
		stack.Close()
		return nil, err
	}
	stack.Repository = repo

	return stack, nil
}

// buildStore creates an item store based on the configuration
func (c *ServerConfig) buildStore(ctx context.Context) (itemstore.Store, func(), error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil, nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, nil, errors.New("database_url is required for postgres")
		}
		cfg, err := poolConfig(c.DatabaseURL, c.DBSchema)
		if err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		repo := repopg.NewWithPool(pool)
		if c.AutoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("failed to migrate item schema: %w", err)
			}
		}
		return repo, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func poolConfig(databaseURL, schema string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	return cfg, nil
}

// PingPostgres verifies connectivity to Postgres and that the schema, when
// provided, can be selected.
func PingPostgres(databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := poolConfig(databaseURL, schema)
	if err != nil {
		return err
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// buildStorageBackend creates a BlobStore based on the backend configuration
func (c *ServerConfig) buildStorageBackend(config StorageBackendConfig) (media.BlobStore, error) {
	switch config.Type {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir: getString(config.Config, "base_dir", "./data/media"),
		})

	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 getString(config.Config, "region", "us-east-1"),
			Bucket:                 getString(config.Config, "bucket", ""),
			AccessKeyID:            getString(config.Config, "access_key_id", ""),
			SecretAccessKey:        getString(config.Config, "secret_access_key", ""),
			Endpoint:               getString(config.Config, "endpoint", ""),
			UseSSL:                 getBool(config.Config, "use_ssl", true),
			UsePathStyle:           getBool(config.Config, "use_path_style", false),
			EnableSSE:              getBool(config.Config, "enable_sse", false),
			SSEAlgorithm:           getString(config.Config, "sse_algorithm", "AES256"),
			SSEKMSKeyID:            getString(config.Config, "sse_kms_key_id", ""),
			CreateBucketIfNotExist: getBool(config.Config, "create_bucket_if_not_exist", false),
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", config.Type)
	}
}

func getString(config map[string]interface{}, key string, defaultValue string) string {
	if value, exists := config[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBool(config map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := config[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
		if str, ok := value.(string); ok {
			if b, err := strconv.ParseBool(str); err == nil {
				return b
			}
		}
	}
	return defaultValue
}
