// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration values for the API server and admin CLI.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// LogLevel controls the minimum log level: debug, info, warn or error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to the Vite dev server.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// RunMigrations applies pending migrations at API startup.
	RunMigrations bool `env:"RUN_MIGRATIONS" envDefault:"false"`

	Auth    AuthConfig
	Routing RoutingConfig
	Events  EventsConfig
	HOS     HOSConfig
}

// AuthConfig configures JWT issuance.
type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"5m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"24h"`
}

// RoutingConfig configures the OpenRouteService client and its cache.
// An empty RedisAddr selects the in-process cache.
type RoutingConfig struct {
	APIKey          string        `env:"ORS_API_KEY"`
	BaseURL         string        `env:"ORS_BASE_URL" envDefault:"https://api.openrouteservice.org"`
	RequestsPerHour int           `env:"ORS_REQUESTS_PER_HOUR" envDefault:"40"`
	CacheTTL        time.Duration `env:"ROUTING_CACHE_TTL" envDefault:"1h"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
}

// EventsConfig configures the trip event publisher. No brokers disables publishing.
type EventsConfig struct {
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"trip-plans"`
}

// HOSConfig holds the hours-of-service thresholds used by trip planning.
type HOSConfig struct {
	FuelStopIntervalMiles float64 `env:"FUEL_STOP_INTERVAL_MILES" envDefault:"1000"`
	MaxDrivingHours       float64 `env:"MAX_DRIVING_HOURS" envDefault:"11"`
	MaxOnDutyHours        float64 `env:"MAX_ON_DUTY_HOURS" envDefault:"14"`
	RequiredRestHours     float64 `env:"REQUIRED_REST_HOURS" envDefault:"10"`
	MaxCycleHours         float64 `env:"MAX_CYCLE_HOURS" envDefault:"70"`
}

// Load reads configuration from environment variables and returns a Config.
// The error names any required variable that is missing and any value that
// is out of range.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	cfg.Events.KafkaBrokers = trimAll(cfg.Events.KafkaBrokers)
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	positive := []struct {
		name string
		v    float64
	}{
		{"FUEL_STOP_INTERVAL_MILES", c.HOS.FuelStopIntervalMiles},
		{"MAX_DRIVING_HOURS", c.HOS.MaxDrivingHours},
		{"MAX_ON_DUTY_HOURS", c.HOS.MaxOnDutyHours},
		{"REQUIRED_REST_HOURS", c.HOS.RequiredRestHours},
		{"MAX_CYCLE_HOURS", c.HOS.MaxCycleHours},
		{"ORS_REQUESTS_PER_HOUR", float64(c.Routing.RequestsPerHour)},
		{"MAX_BODY_BYTES", float64(c.MaxBodyBytes)},
	}
	for _, p := range positive {
		if p.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", p.name, p.v))
		}
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL and REFRESH_TOKEN_TTL must be positive"))
	}
	if c.HOS.MaxDrivingHours > c.HOS.MaxOnDutyHours {
		errs = append(errs, errors.New("MAX_DRIVING_HOURS must not exceed MAX_ON_DUTY_HOURS"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// trimAll trims each entry and drops empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, part := range in {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// DatabaseConfig is the subset of Config the admin CLI needs.
type DatabaseConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
}

// LoadDatabase reads only DATABASE_URL, so admin commands run without the
// API's secrets.
func LoadDatabase() (DatabaseConfig, error) {
	var cfg DatabaseConfig
	if err := env.Parse(&cfg); err != nil {
		return DatabaseConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
