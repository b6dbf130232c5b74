// ABOUTME: Centralized configuration for the blogforge pipeline
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"blogforge/internal/models"
)

// ErrMissingAPIKey is returned when a live run is requested without backend
// credentials. Detected before any backend call is attempted.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// Provider names a generation backend. All providers speak the
// OpenAI-compatible chat API; only the base URL differs.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGroq   Provider = "groq"
)

// Config holds all configuration for a blogforge run.
type Config struct {
	// Backend settings
	Provider   Provider
	APIKey     string
	TextModel  string
	ImageModel string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// Novelty gate settings
	Threshold   float64
	MaxAttempts int
	FeatureMode models.FeatureMode
	DryRun      bool

	// Site layout
	DataDir       string
	ContentDir    string
	ImagesDir     string
	GenerateImage bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	dataDir := getEnv("BLOGFORGE_DATA_DIR", "data")
	cfg := &Config{
		Provider:      Provider(getEnv("BLOGFORGE_PROVIDER", string(ProviderOpenAI))),
		APIKey:        os.Getenv("OPENAI_API_KEY"),
		TextModel:     getEnv("BLOGFORGE_TEXT_MODEL", "gpt-4o-mini"),
		ImageModel:    getEnv("BLOGFORGE_IMAGE_MODEL", "gpt-image-1"),
		Timeout:       getEnvDuration("OPENAI_TIMEOUT", 60*time.Second),
		MaxRetries:    getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:    getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		Threshold:     getEnvFloat("SIMILARITY_THRESHOLD", 0.84),
		MaxAttempts:   getEnvInt("MAX_RETRY_ATTEMPTS", 3),
		FeatureMode:   models.FeatureMode(getEnv("FEATURE_MODE", string(models.FeatureModeVector))),
		DryRun:        getEnvBool("DRY_RUN", false),
		DataDir:       dataDir,
		ContentDir:    getEnv("BLOGFORGE_CONTENT_DIR", filepath.Join("content", "posts")),
		ImagesDir:     getEnv("BLOGFORGE_IMAGES_DIR", filepath.Join("assets", "images")),
		GenerateImage: getEnvBool("GENERATE_IMAGE", true),
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges. Credentials are checked separately by
// RequireCredentials so read-only commands work without an API key.
func (c *Config) Validate() error {
	if c.Threshold <= 0 || c.Threshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be in (0, 1], got %g", c.Threshold)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("MAX_RETRY_ATTEMPTS must be at least 1, got %d", c.MaxAttempts)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if !c.FeatureMode.Valid() {
		return fmt.Errorf("FEATURE_MODE must be %q or %q, got %q",
			models.FeatureModeVector, models.FeatureModeSet, c.FeatureMode)
	}
	if c.Provider != ProviderOpenAI && c.Provider != ProviderGroq {
		return fmt.Errorf("BLOGFORGE_PROVIDER must be %q or %q, got %q",
			ProviderOpenAI, ProviderGroq, c.Provider)
	}
	return nil
}

// RequireCredentials fails fast when a live run has no API key.
// DRY_RUN never touches the backend, so no key is needed there.
func (c *Config) RequireCredentials() error {
	if c.DryRun {
		return nil
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// HistoryPath is the durable post history file.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "posts.json")
}

// TopicsPath is the topic pool file.
func (c *Config) TopicsPath() string {
	return filepath.Join(c.DataDir, "topics.json")
}

// Helper functions

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
