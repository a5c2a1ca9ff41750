// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds everything the pipeline and its collaborators need.
// Defaults mirror production tuning; the API key has no default and is
// validated only when a component actually needs the model.
type Config struct {
	GeminiAPIKey string `env:"GOOGLE_API_KEY"`

	ModelName   string  `env:"EXTRACTOR_MODEL" envDefault:"gemini-2.5-flash"`
	Temperature float32 `env:"EXTRACTOR_TEMPERATURE" envDefault:"0.3"`

	BatchSize      int           `env:"EXTRACTOR_BATCH_SIZE" envDefault:"150"`
	MaxRetries     int           `env:"EXTRACTOR_MAX_RETRIES" envDefault:"2"`
	RetryBaseDelay time.Duration `env:"EXTRACTOR_RETRY_BASE_DELAY" envDefault:"2s"`
	CallTimeout    time.Duration `env:"EXTRACTOR_CALL_TIMEOUT" envDefault:"90s"`

	GCSBucket string `env:"EXTRACTOR_GCS_BUCKET"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config from environment: %w", err)
	}
	return cfg, nil
}

// RequireAPIKey fails when no Gemini API key is configured. Commands
// that never call the model skip this check.
func (c *Config) RequireAPIKey() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GOOGLE_API_KEY is not set")
	}
	return nil
}
