package config

import (
	"fmt"

	"github.com/tendant/outcome-content/pkg/itemstore"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the item store backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != "memory" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the Postgres schema holding the item tables
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithAutoMigrate applies the item schema when the store is built
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithMemoryStorage keeps media payloads in memory
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.Storage = StorageBackendConfig{Type: "memory", Config: map[string]interface{}{}}
		return nil
	}
}

// WithFilesystemStorage stores media payloads below baseDir
func WithFilesystemStorage(baseDir string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.Storage = StorageBackendConfig{
			Type:   "fs",
			Config: map[string]interface{}{"base_dir": baseDir},
		}
		return nil
	}
}

// WithS3Storage stores media payloads in an S3 bucket
func WithS3Storage(bucket, region string) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
		if region == "" {
			region = "us-east-1"
		}
		c.Storage = StorageBackendConfig{
			Type:   "s3",
			Config: map[string]interface{}{"bucket": bucket, "region": region},
		}
		return nil
	}
}

// WithS3Endpoint points the S3 backend at an S3-compatible service such as MinIO
func WithS3Endpoint(endpoint string, usePathStyle bool) Option {
	return func(c *ServerConfig) error {
		if c.Storage.Type != "s3" {
			return fmt.Errorf("S3 endpoint requires S3 storage, got: %s", c.Storage.Type)
		}
		c.Storage.Config["endpoint"] = endpoint
		c.Storage.Config["use_path_style"] = usePathStyle
		return nil
	}
}

// WithDefaultCulture sets the culture used when a request names none
func WithDefaultCulture(culture string) Option {
	return func(c *ServerConfig) error {
		parsed, err := itemstore.ParseCulture(culture)
		if err != nil {
			return err
		}
		c.DefaultCulture = parsed
		return nil
	}
}

// WithAssumeActive makes saved definitions approved immediately
func WithAssumeActive(active bool) Option {
	return func(c *ServerConfig) error {
		c.AssumeActive = active
		return nil
	}
}

// WithMaxImageBytes limits image payload size, 0 for no limit
func WithMaxImageBytes(n int64) Option {
	return func(c *ServerConfig) error {
		if n < 0 {
			return fmt.Errorf("max image bytes must not be negative, got %d", n)
		}
		c.MaxImageBytes = n
		return nil
	}
}
