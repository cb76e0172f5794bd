package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/emberlab/emgsync/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port            string
	DBPath          string
	DataDir         string
	ScratchDir      string
	BlobURL         string
	BlobToken       string
	LogLevel        string
	LogFormat       string
	SyncInterval    time.Duration
	SyncConcurrency int
	UploadRetries   int
	ResyncFailed    bool
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	home, _ := os.UserHomeDir()
	defaultData := filepath.Join(home, ".emgsync/recordings")

	return &Config{
		Port:            getEnv("PORT", constants.DefaultPort),
		DBPath:          getEnv("DB_PATH", constants.DefaultDBPath),
		DataDir:         getEnv("DATA_DIR", defaultData),
		ScratchDir:      getEnv("SCRATCH_DIR", os.TempDir()),
		BlobURL:         getEnv("BLOB_URL", constants.DefaultBlobURL),
		BlobToken:       getEnv("BLOB_TOKEN", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		SyncInterval:    getEnvDuration("SYNC_INTERVAL", constants.DefaultSyncInterval),
		SyncConcurrency: getEnvInt("SYNC_CONCURRENCY", constants.DefaultConcurrency),
		UploadRetries:   getEnvInt("UPLOAD_RETRIES", constants.DefaultUploadRetries),
		ResyncFailed:    getEnvBool("RESYNC_FAILED", false),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.DataDir == "" {
		errors = append(errors, "DATA_DIR cannot be empty")
	}

	if c.ScratchDir == "" {
		errors = append(errors, "SCRATCH_DIR cannot be empty")
	}

	if c.BlobURL == "" {
		errors = append(errors, "BLOB_URL cannot be empty")
	} else if _, err := url.ParseRequestURI(c.BlobURL); err != nil {
		errors = append(errors, fmt.Sprintf("BLOB_URL is not a valid URL: %s", c.BlobURL))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if c.SyncInterval <= 0 {
		errors = append(errors, "SYNC_INTERVAL must be positive")
	}

	if c.SyncConcurrency < 1 {
		errors = append(errors, fmt.Sprintf("SYNC_CONCURRENCY must be at least 1, got: %d", c.SyncConcurrency))
	}

	if c.UploadRetries < 1 {
		errors = append(errors, fmt.Sprintf("UPLOAD_RETRIES must be at least 1, got: %d", c.UploadRetries))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
