// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

// Store backends
const (
	StorePostgres  = "postgres"
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

// Config is the full service configuration
type Config struct {
	Host string
	Port int

	LLM       domain.LLMSettings
	Embedding domain.EmbeddingSettings

	// Hi-res extraction tier; disabled without an API key
	UnstructuredAPIKey string
	UnstructuredURL    string

	StoreBackend     string
	DatabaseURL      string
	FirestoreProject string
	RedisURL         string

	FetchTimeout      time.Duration
	ExtractionTimeout time.Duration
	RequestTimeout    time.Duration

	StagingDir     string
	GCSEnabled     bool
	AllowedOrigins []string

	LogLevel slog.Level
}

// Load reads .env files, then the environment. Without arguments it reads
// ./.env if present; named files must exist.
func Load(files ...string) (*Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("load env files: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	provider := domain.AIProvider(strings.ToLower(getEnv("LLM_PROVIDER", string(domain.AIProviderOpenAI))))
	openAIKey := getEnv("OPENAI_API_KEY", "")
	openAIBaseURL := getEnv("OPENAI_BASE_URL", "")

	cfg := &Config{
		Host: getEnv("HOST", "0.0.0.0"),
		Port: getEnvInt("PORT", 8080),

		LLM: domain.LLMSettings{
			Provider: provider,
			Model:    getEnv("LLM_MODEL", ""),
			APIKey:   openAIKey,
			BaseURL:  openAIBaseURL,
			Project:  getEnv("VERTEX_PROJECT", ""),
			Region:   getEnv("VERTEX_REGION", "us-central1"),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: domain.AIProviderOpenAI,
			Model:    getEnv("EMBEDDING_MODEL", ""),
			APIKey:   openAIKey,
			BaseURL:  openAIBaseURL,
		},

		UnstructuredAPIKey: getEnv("UNSTRUCTURED_API_KEY", ""),
		UnstructuredURL:    getEnv("UNSTRUCTURED_URL", ""),

		StoreBackend:     strings.ToLower(getEnv("STORE_BACKEND", StoreMemory)),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		FirestoreProject: getEnv("FIRESTORE_PROJECT", ""),
		RedisURL:         getEnv("REDIS_URL", ""),

		FetchTimeout:      time.Duration(getEnvInt("FETCH_TIMEOUT_SEC", 30)) * time.Second,
		ExtractionTimeout: time.Duration(getEnvInt("EXTRACTION_TIMEOUT_SEC", 60)) * time.Second,
		RequestTimeout:    time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 60)) * time.Second,

		StagingDir:     getEnv("STAGING_DIR", ""),
		GCSEnabled:     getEnvBool("GCS_ENABLED", false),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),

		LogLevel: parseLevel(getEnv("LOG_LEVEL", "info")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks backend selections and their required settings.
// Missing model credentials are not an error: the service starts and
// reports a configuration error per request.
func (c *Config) Validate() error {
	var errs []error

	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, err)
	}

	switch c.StoreBackend {
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("%w: DATABASE_URL is required for the postgres store", domain.ErrConfig))
		}
	case StoreFirestore:
		if c.FirestoreProject == "" {
			errs = append(errs, fmt.Errorf("%w: FIRESTORE_PROJECT is required for the firestore store", domain.ErrConfig))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown store backend %q", domain.ErrConfig, c.StoreBackend))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: invalid port %d", domain.ErrConfig, c.Port))
	}

	return errors.Join(errs...)
}

// LockBackend names the distributed lock the configuration selects
func (c *Config) LockBackend() string {
	switch {
	case c.RedisURL != "":
		return "redis"
	case c.StoreBackend == StorePostgres:
		return "postgres"
	default:
		return "none"
	}
}

// HiResEnabled reports whether the hi-res extraction tier is configured
func (c *Config) HiResEnabled() bool {
	return c.UnstructuredAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
