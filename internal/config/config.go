// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Store drivers.
const (
	DriverSupabase = "supabase"
	DriverPostgres = "postgres"
)

// Messages reported when the selected store driver lacks credentials.
const (
	MissingSupabaseConfig = "Missing SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY"
	MissingPostgresConfig = "Missing DATABASE_URL"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// License store
	StoreDriver            string        `env:"STORE_DRIVER" envDefault:"supabase"`
	SupabaseURL            string        `env:"SUPABASE_URL"`
	SupabaseServiceRoleKey string        `env:"SUPABASE_SERVICE_ROLE_KEY"`
	LicenseTable           string        `env:"LICENSE_TABLE" envDefault:"licenses"`
	StoreTimeout           time.Duration `env:"STORE_TIMEOUT" envDefault:"10s"`

	// Database (PostgreSQL), used when STORE_DRIVER=postgres
	DatabaseURL string `env:"DATABASE_URL"`

	// Presence cache (Redis), optional
	RedisURL                string        `env:"REDIS_URL"`
	LicenseCacheTTL         time.Duration `env:"LICENSE_CACHE_TTL" envDefault:"10m"`
	LicenseNegativeCacheTTL time.Duration `env:"LICENSE_NEGATIVE_CACHE_TTL" envDefault:"30s"`

	// Webhook secrets
	WebhookSecret       string `env:"WEBHOOK_SECRET"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Metrics
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// CacheEnabled reports whether a Redis presence cache was configured.
func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.RedisURL) != ""
}

// StoreConfigError reports missing credentials for the selected store driver.
// A nil result means the store can be constructed. The error text is safe to
// return to clients.
func (c *Config) StoreConfigError() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New(MissingPostgresConfig)
		}
	default:
		if strings.TrimSpace(c.SupabaseURL) == "" || strings.TrimSpace(c.SupabaseServiceRoleKey) == "" {
			return errors.New(MissingSupabaseConfig)
		}
	}
	return nil
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverSupabase, DriverPostgres:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if strings.TrimSpace(c.LicenseTable) == "" {
		return errors.New("LICENSE_TABLE must not be empty")
	}
	if c.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}
	return nil
}

// Load parses environment variables and returns a Config.
// Missing store credentials are not an error; see StoreConfigError.
func Load() (*Config, error) {
	return load(env.Options{})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
