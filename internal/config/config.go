// Package config loads cookalong settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/hammamikhairi/cookalong/internal/logger"
	"github.com/hammamikhairi/cookalong/internal/storage"
)

// Config holds everything the binary needs to wire itself up. Command line
// flags override individual fields after Load.
type Config struct {
	Store         string        `env:"COOKALONG_STORE"          envDefault:"badger"`
	DataDir       string        `env:"COOKALONG_DATA_DIR"       envDefault:"./data"`
	Addr          string        `env:"COOKALONG_ADDR"           envDefault:":8080"`
	LogLevel      string        `env:"COOKALONG_LOG_LEVEL"      envDefault:"info"`
	RecipesDir    string        `env:"COOKALONG_RECIPES_DIR"`
	AlertInterval time.Duration `env:"COOKALONG_ALERT_INTERVAL" envDefault:"1s"`
	AlmostDone    time.Duration `env:"COOKALONG_ALMOST_DONE"    envDefault:"30s"`
	GCInterval    time.Duration `env:"COOKALONG_GC_INTERVAL"    envDefault:"10m"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIAPIBase string `env:"OPENAI_API_BASE"  envDefault:"https://api.openai.com/v1"`
	OpenAIModel   string `env:"OPENAI_MODEL"     envDefault:"gpt-4o-mini"`

	OTelEndpoint string `env:"COOKALONG_OTEL_ENDPOINT"`
}

// Load reads the optional .env files (default ".env") and parses the
// environment. Variables already set in the environment win over .env.
func Load(files ...string) (*Config, error) {
	if err := loadDotEnv(files...); err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks values env.Parse cannot check by itself.
func (c *Config) Validate() error {
	switch c.Store {
	case storage.KindMemory, storage.KindBadger, storage.KindSQLite:
	default:
		return fmt.Errorf("unknown store %q (want %s, %s or %s)", c.Store, storage.KindMemory, storage.KindBadger, storage.KindSQLite)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.AlertInterval <= 0 {
		return fmt.Errorf("alert interval must be positive, got %s", c.AlertInterval)
	}
	if c.GCInterval <= 0 {
		return fmt.Errorf("gc interval must be positive, got %s", c.GCInterval)
	}
	if c.AlmostDone < 0 {
		return fmt.Errorf("almost-done threshold must not be negative, got %s", c.AlmostDone)
	}
	return nil
}

// Level returns the parsed log level. Validate has already vetted it.
func (c *Config) Level() logger.Level {
	lvl, _ := logger.ParseLevel(c.LogLevel)
	return lvl
}

// HasOpenAI reports whether an LLM backend is configured.
func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// String renders the config with the API key redacted.
func (c Config) String() string {
	c.OpenAIAPIKey = redact(c.OpenAIAPIKey)
	type plain Config
	return fmt.Sprintf("%+v", plain(c))
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) > 8 {
		return secret[:8] + "...REDACTED..."
	}
	return "REDACTED"
}
