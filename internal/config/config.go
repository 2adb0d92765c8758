// Package config loads process configuration from defaults, an optional
// YAML file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Session   SessionConfig   `koanf:"session"`
	Uploads   UploadsConfig   `koanf:"uploads"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Environment     string        `koanf:"environment"`
	Port            int           `koanf:"port"`
	APIPath         string        `koanf:"api_path"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	ClientURL       string        `koanf:"client_url"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Driver is postgres, mysql or sqlite.
	Driver  string `koanf:"driver"`
	ProdDSN string `koanf:"prod_dsn"`
	DevDSN  string `koanf:"dev_dsn"`
}

type SessionConfig struct {
	Secret     string        `koanf:"secret"`
	CookieName string        `koanf:"cookie_name"`
	TTL        time.Duration `koanf:"ttl"`
	// Store is badger or memory.
	Store     string        `koanf:"store"`
	StorePath string        `koanf:"store_path"`
	StoreTTL  time.Duration `koanf:"store_ttl"`
}

type UploadsConfig struct {
	Dir      string `koanf:"dir"`
	MaxBytes int64  `koanf:"max_bytes"`
}

type RateLimitConfig struct {
	RequestsPerMinute int  `koanf:"requests_per_minute"`
	Burst             int  `koanf:"burst"`
	Disabled          bool `koanf:"disabled"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// DSN returns the connection string for the active environment.
func (c *Config) DSN() string {
	if c.IsProduction() {
		return c.Database.ProdDSN
	}
	return c.Database.DevDSN
}

// AllowedOrigins is the CORS allow-list, including CLIENT_URL when set.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0, len(c.Server.CORSOrigins)+1)
	origins = append(origins, c.Server.CORSOrigins...)

	if c.Server.ClientURL != "" {
		origins = append(origins, c.Server.ClientURL)
	}

	return origins
}

// CookieSameSite reflects the two session profiles: cross-site cookies in
// production, strict same-site cookies in development.
func (c *Config) CookieSameSite() http.SameSite {
	if c.IsProduction() {
		return http.SameSiteNoneMode
	}
	return http.SameSiteStrictMode
}

func (c *Config) CookieSecure() bool {
	return c.IsProduction()
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Server.Environment {
	case EnvProduction, EnvDevelopment:
	default:
		errs = append(errs, fmt.Errorf("server.environment must be %q or %q, got %q", EnvProduction, EnvDevelopment, c.Server.Environment))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}

	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be postgres, mysql or sqlite, got %q", c.Database.Driver))
	}

	if c.DSN() == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("PROD_DB_SERVER is not set"))
		} else {
			errs = append(errs, errors.New("DEV_DB_SERVER is not set"))
		}
	}

	if c.Session.Secret == "" {
		errs = append(errs, errors.New("SECRET is not set"))
	}

	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}

	switch c.Session.Store {
	case "badger", "memory":
	default:
		errs = append(errs, fmt.Errorf("session.store must be badger or memory, got %q", c.Session.Store))
	}

	if c.Uploads.MaxBytes <= 0 {
		errs = append(errs, errors.New("uploads.max_bytes must be positive"))
	}

	return errors.Join(errs...)
}
