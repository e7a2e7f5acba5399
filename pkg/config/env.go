package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/tendant/outcome-content/pkg/itemstore"
)

// WithEnv applies environment variable overrides using the provided prefix.
//
// Server:
//
//	PORT - Server port (default: "8080")
//	ENVIRONMENT - Runtime environment (default: "development")
//
// Item store:
//
//	DATABASE_URL - "memory" (default) or "postgres://..." / "postgresql://..."
//	ITEM_DATABASE - Postgres schema holding the item tables (default: "items")
//	AUTO_MIGRATE - Apply the item schema on startup
//
// Media storage:
//
//	STORAGE_URL - one of:
//	  "memory://" - In-memory storage (default)
//	  "file:///path/to/media" - Filesystem storage
//	  "s3://bucket?region=us-east-1&endpoint=http://localhost:9000&path_style=true"
//
// Definitions:
//
//	DEFAULT_CULTURE - Culture used when a request names none (default: "en")
//	ASSUME_ACTIVE - Save approved versions instead of drafts
//	MAX_IMAGE_BYTES - Largest image GetImage will buffer, 0 for no limit
func WithEnv(prefix string) Option {
	return func(c *ServerConfig) error {
		if v, ok := lookupEnv(prefix, "PORT"); ok && v != "" {
			c.Port = v
		}
		if v, ok := lookupEnv(prefix, "ENVIRONMENT"); ok && v != "" {
			c.Environment = v
		}

		if err := applyDatabaseEnv(prefix, c); err != nil {
			return err
		}
		if err := applyStorageEnv(prefix, c); err != nil {
			return err
		}
		return applyDefinitionEnv(prefix, c)
	}
}

// applyDatabaseEnv applies item store configuration from environment
func applyDatabaseEnv(prefix string, c *ServerConfig) error {
	if v, ok := lookupEnv(prefix, "ITEM_DATABASE"); ok && v != "" {
		c.DBSchema = v
	}
	migrate, ok, err := parseBoolEnv(prefix, "AUTO_MIGRATE")
	if err != nil {
		return err
	}
	if ok {
		c.AutoMigrate = migrate
	}

	dbURL, hasURL := lookupEnv(prefix, "DATABASE_URL")
	if !hasURL || dbURL == "" || dbURL == "memory" {
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
		return nil
	}

	if strings.HasPrefix(dbURL, "postgresql://") || strings.HasPrefix(dbURL, "postgres://") {
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
		return nil
	}
	return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", dbURL)
}

// applyStorageEnv applies media storage configuration from environment
func applyStorageEnv(prefix string, c *ServerConfig) error {
	storageURL, hasURL := lookupEnv(prefix, "STORAGE_URL")

	if !hasURL || storageURL == "" || storageURL == "memory" || storageURL == "memory://" {
		c.Storage = StorageBackendConfig{Type: "memory", Config: map[string]interface{}{}}
		return nil
	}

	switch {
	case strings.HasPrefix(storageURL, "file://"):
		return applyFilesystemStorage(storageURL, c)
	case strings.HasPrefix(storageURL, "s3://"):
		return applyS3Storage(storageURL, c)
	}
	return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", storageURL)
}

// applyFilesystemStorage configures filesystem storage from URL
// Format: file:///path/to/media
func applyFilesystemStorage(raw string, c *ServerConfig) error {
	path := strings.TrimPrefix(raw, "file://")
	if path == "" {
		return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
	}

	c.Storage = StorageBackendConfig{
		Type:   "fs",
		Config: map[string]interface{}{"base_dir": path},
	}
	return nil
}

// applyS3Storage configures S3 storage from URL
// Format: s3://bucket?region=us-east-1&endpoint=http://localhost:9000
func applyS3Storage(raw string, c *ServerConfig) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid STORAGE_URL: %w", err)
	}
	if u.Host == "" {
		return fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
	}

	backend := StorageBackendConfig{
		Type: "s3",
		Config: map[string]interface{}{
			"bucket": u.Host,
			"region": "us-east-1",
		},
	}

	q := u.Query()
	for param, key := range map[string]string{
		"region":        "region",
		"endpoint":      "endpoint",
		"path_style":    "use_path_style",
		"use_ssl":       "use_ssl",
		"create_bucket": "create_bucket_if_not_exist",
		"sse":           "sse_algorithm",
		"kms_key_id":    "sse_kms_key_id",
	} {
		if v := q.Get(param); v != "" {
			backend.Config[key] = v
		}
	}
	if _, ok := backend.Config["sse_algorithm"]; ok {
		backend.Config["enable_sse"] = true
	}

	if accessKey, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok && accessKey != "" {
		backend.Config["access_key_id"] = accessKey
	}
	if secretKey, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok && secretKey != "" {
		backend.Config["secret_access_key"] = secretKey
	}
	if region, ok := os.LookupEnv("AWS_REGION"); ok && region != "" && q.Get("region") == "" {
		backend.Config["region"] = region
	}

	c.Storage = backend
	return nil
}

// applyDefinitionEnv applies outcome definition behaviour from environment
func applyDefinitionEnv(prefix string, c *ServerConfig) error {
	if v, ok := lookupEnv(prefix, "DEFAULT_CULTURE"); ok && v != "" {
		culture, err := itemstore.ParseCulture(v)
		if err != nil {
			return fmt.Errorf("invalid %sDEFAULT_CULTURE: %w", prefix, err)
		}
		c.DefaultCulture = culture
	}

	active, ok, err := parseBoolEnv(prefix, "ASSUME_ACTIVE")
	if err != nil {
		return err
	}
	if ok {
		c.AssumeActive = active
	}

	limit, ok, err := parseInt64Env(prefix, "MAX_IMAGE_BYTES")
	if err != nil {
		return err
	}
	if ok {
		c.MaxImageBytes = limit
	}
	return nil
}

func lookupEnv(prefix, key string) (string, bool) {
	return os.LookupEnv(prefix + key)
}

func parseBoolEnv(prefix, key string) (bool, bool, error) {
	raw, ok := lookupEnv(prefix, key)
	if !ok || raw == "" {
		return false, false, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("invalid boolean for %s%s: %w", prefix, key, err)
	}
	return parsed, true, nil
}

func parseInt64Env(prefix, key string) (int64, bool, error) {
	raw, ok := lookupEnv(prefix, key)
	if !ok || raw == "" {
		return 0, false, nil
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid integer for %s%s: %w", prefix, key, err)
	}
	return parsed, true, nil
}
