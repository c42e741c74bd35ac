package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "CRAVINGS"

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"production"`

	// Recommendation service that serves /locations, /cuisines and /recommend.
	BackendURL     string        `envconfig:"BACKEND_URL" default:"http://127.0.0.1:8000"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"60s"`

	SentryDSN string `envconfig:"SENTRY_DSN"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	SessionTTL   time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	SearchRate   int           `envconfig:"SEARCH_RATE" default:"60"`
	MaxBodyBytes int64         `envconfig:"MAX_BODY_BYTES" default:"65536"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate checks values envconfig cannot express as tags.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("invalid BACKEND_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid BACKEND_URL %q: scheme must be http or https", c.BackendURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid BACKEND_URL %q: missing host", c.BackendURL)
	}
	if c.SearchRate < 0 {
		return fmt.Errorf("invalid SEARCH_RATE %d: must not be negative", c.SearchRate)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("invalid SESSION_TTL %s: must be positive", c.SessionTTL)
	}
	return nil
}

// IsDevelopment reports whether the /api development proxy should be mounted.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
