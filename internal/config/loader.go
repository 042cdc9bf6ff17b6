package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read outside the INTERVIEW_ key space.
const (
	EnvPrefix  = "INTERVIEW_"
	EnvConfig  = "INTERVIEW_CONFIG"
	EnvDotFile = "INTERVIEW_ENV_FILE"
)

// Provider specific key variables used when ai_api_key is not set.
var providerKeyEnv = map[string]string{ //nolint:gochecknoglobals // static lookup table
	ProviderOpenAI: "OPENROUTER_API_KEY",
	ProviderGemini: "GEMINI_API_KEY",
}

// Load builds a Config by layering defaults, dotenv, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. .env file (or INTERVIEW_ENV_FILE), never overriding the real environment
//  3. file (YAML) if INTERVIEW_CONFIG is set
//  4. env (prefix INTERVIEW_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// INTERVIEW_AI_API_KEY -> ai_api_key; underscores are kept to match the
	// flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file and dotenv selectors are not settings.
	k.Delete("config")
	k.Delete("env_file")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := resolveAPIKey(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	path := os.Getenv(EnvDotFile)
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
}

func resolveAPIKey(cfg *Config) error {
	if cfg.AIAPIKeyFile != "" {
		data, err := os.ReadFile(cfg.AIAPIKeyFile)
		if err != nil {
			return fmt.Errorf("%w: ai_api_key_file: %w", ErrLoadConfig, err)
		}
		key, _, _ := strings.Cut(string(data), "\n")
		cfg.AIAPIKey = strings.TrimSpace(key)
		return nil
	}
	if cfg.AIAPIKey == "" {
		if name, ok := providerKeyEnv[cfg.AIProvider]; ok {
			cfg.AIAPIKey = strings.TrimSpace(os.Getenv(name))
		}
	}
	return nil
}
