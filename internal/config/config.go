// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"

	"github.com/olegiv/olabel-go/internal/auth"
	"github.com/olegiv/olabel-go/internal/store"
)

// knownWeakPasswords are bootstrap passwords that must not reach production.
var knownWeakPasswords = []string{
	"changeme",
	"admin",
	"password",
}

// MinAdminPasswordLength is the minimum length of the bootstrap admin password.
const MinAdminPasswordLength = 8

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DatabaseURL string `env:"OLABEL_DATABASE_URL" envDefault:"./data/olabel.db"` // SQLite path or postgres:// URL
	Storage     string `env:"OLABEL_STORAGE" envDefault:"sql"`                   // sql or memory
	ServerHost  string `env:"OLABEL_SERVER_HOST" envDefault:"localhost"`
	ServerPort  int    `env:"OLABEL_SERVER_PORT" envDefault:"8080"`
	Env         string `env:"OLABEL_ENV" envDefault:"development"`
	LogLevel    string `env:"OLABEL_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"OLABEL_LOG_FORMAT" envDefault:"text"` // text or json
	SiteURL     string `env:"OLABEL_SITE_URL" envDefault:"http://localhost:8080"`

	// Password hashing work factor
	BcryptCost int `env:"OLABEL_BCRYPT_COST" envDefault:"10"`

	// Cache configuration
	RedisURL     string `env:"OLABEL_REDIS_URL"`                          // Optional Redis URL for distributed caching
	CachePrefix  string `env:"OLABEL_CACHE_PREFIX" envDefault:"olabel:"`  // Redis key prefix
	CacheTTL     int    `env:"OLABEL_CACHE_TTL" envDefault:"300"`         // Public listing TTL in seconds
	CacheMaxSize int    `env:"OLABEL_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Allowed CORS origins for the public site
	CORSOrigins []string `env:"OLABEL_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// GeoIP configuration
	GeoIPDBPath string `env:"OLABEL_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Radio stream used when the settings row is first created
	RadioStreamURL string `env:"OLABEL_RADIO_STREAM_URL"`

	// Seeding configuration
	DoSeed        bool   `env:"OLABEL_DO_SEED" envDefault:"false"`   // Create the bootstrap admin
	DemoSeed      bool   `env:"OLABEL_DEMO_SEED" envDefault:"false"` // Fill an empty store with sample content
	AdminUsername string `env:"OLABEL_ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"OLABEL_ADMIN_PASSWORD"`

	// Background jobs
	SessionSweepSchedule string `env:"OLABEL_SESSION_SWEEP_SCHEDULE" envDefault:"@every 1h"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if the application is running in production mode.
// Other environments keep crawlers out.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Storage != store.KindSQL && c.Storage != store.KindMemory {
		return fmt.Errorf("OLABEL_STORAGE must be %q or %q, got %q", store.KindSQL, store.KindMemory, c.Storage)
	}
	if c.Storage == store.KindSQL {
		if _, err := store.DetectDialect(c.DatabaseURL); err != nil {
			return fmt.Errorf("OLABEL_DATABASE_URL: %w", err)
		}
	}

	if c.BcryptCost < auth.MinCost || c.BcryptCost > auth.MaxCost {
		return fmt.Errorf("OLABEL_BCRYPT_COST must be between %d and %d, got %d",
			auth.MinCost, auth.MaxCost, c.BcryptCost)
	}

	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("OLABEL_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("OLABEL_SERVER_PORT out of range: %d", c.ServerPort)
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("OLABEL_CACHE_TTL must not be negative, got %d", c.CacheTTL)
	}

	if _, err := cron.ParseStandard(c.SessionSweepSchedule); err != nil {
		return fmt.Errorf("OLABEL_SESSION_SWEEP_SCHEDULE is invalid: %w", err)
	}

	if c.DoSeed {
		if c.AdminUsername == "" {
			return fmt.Errorf("OLABEL_ADMIN_USERNAME is required when OLABEL_DO_SEED is set")
		}
		if len(c.AdminPassword) < MinAdminPasswordLength {
			return fmt.Errorf("OLABEL_ADMIN_PASSWORD must be at least %d characters when OLABEL_DO_SEED is set",
				MinAdminPasswordLength)
		}
		if slices.Contains(knownWeakPasswords, strings.ToLower(c.AdminPassword)) {
			if !c.IsDevelopment() {
				return fmt.Errorf("OLABEL_ADMIN_PASSWORD is a known default value and must not be used")
			}
			slog.Warn("OLABEL_ADMIN_PASSWORD is a known default value; change it before deploying")
		}
	}

	return nil
}
