// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keys are flat snake_case so they map one to one onto INTERVIEW_ env vars.
// - Provide New(ctx) to build a Config with defaults.
// - Load errors wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageS3     = "s3"
)

// AI providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches the log encoder to JSON.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// EventQueueSize bounds the in-memory completion event queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of completion event publishers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the submission guard.
	DedupeSize int `koanf:"dedupe_size"`

	// Storage selects where session and candidate state is kept.
	StorageBackend   string `koanf:"storage_backend"`
	StorageDir       string `koanf:"storage_dir"`
	StorageNamespace string `koanf:"storage_namespace"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	S3Bucket    string `koanf:"s3_bucket"`
	S3Prefix    string `koanf:"s3_prefix"`
	S3Region    string `koanf:"s3_region"`
	S3Endpoint  string `koanf:"s3_endpoint"`
	S3AccessKey string `koanf:"s3_access_key"`
	S3SecretKey string `koanf:"s3_secret_key"`

	// RabbitURL enables the RabbitMQ completion sink when set.
	RabbitURL        string `koanf:"rabbit_url"`
	RabbitQueue      string `koanf:"rabbit_queue"`
	RabbitExpiration string `koanf:"rabbit_expiration"`

	// AIProvider is openai (any OpenAI-compatible endpoint, OpenRouter by default) or gemini.
	AIProvider string `koanf:"ai_provider"`
	AIAPIKey   string `koanf:"ai_api_key"`
	// AIAPIKeyFile holds the key on its first line and wins over AIAPIKey.
	AIAPIKeyFile string        `koanf:"ai_api_key_file"`
	AIModel      string        `koanf:"ai_model"`
	AIBaseURL    string        `koanf:"ai_base_url"`
	AIReferer    string        `koanf:"ai_referer"`
	AIRole       string        `koanf:"ai_role"`
	AITimeout    time.Duration `koanf:"ai_timeout"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":8080",
		EventQueueSize:   256,
		WorkerCount:      2,
		DedupeSize:       1024,
		StorageBackend:   StorageFile,
		StorageDir:       "data",
		StorageNamespace: "interview",
		RabbitQueue:      "interview.completed",
		AIProvider:       ProviderOpenAI,
		AITimeout:        60 * time.Second,
	}
}

// Validate checks the settings the selected backends depend on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.EventQueueSize <= 0 || c.WorkerCount <= 0 || c.DedupeSize <= 0 {
		return fmt.Errorf("%w: queue_size, worker_count and dedupe_size must be positive", ErrInvalidConfig)
	}
	switch c.StorageBackend {
	case StorageMemory:
	case StorageFile:
		if strings.TrimSpace(c.StorageDir) == "" {
			return fmt.Errorf("%w: storage_dir is required for the file backend", ErrInvalidConfig)
		}
	case StorageRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis backend", ErrInvalidConfig)
		}
	case StorageS3:
		if strings.TrimSpace(c.S3Bucket) == "" {
			return fmt.Errorf("%w: s3_bucket is required for the s3 backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage_backend %q", ErrInvalidConfig, c.StorageBackend)
	}
	switch c.AIProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("%w: unknown ai_provider %q", ErrInvalidConfig, c.AIProvider)
	}
	if c.AITimeout < 0 {
		return fmt.Errorf("%w: ai_timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}
