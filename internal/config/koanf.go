package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Environment: EnvDevelopment,
			Port:        3000,
			APIPath:     "",
			CORSOrigins: []string{
				"http://localhost:5173",
				"http://localhost:3000",
				"https://localhost:8005",
			},
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "postgres",
		},
		Session: SessionConfig{
			CookieName: "sid",
			TTL:        30 * time.Minute,
			Store:      "badger",
			StorePath:  "data/sessions",
			StoreTTL:   14 * 24 * time.Hour,
		},
		Uploads: UploadsConfig{
			Dir:      "images",
			MaxBytes: 5_000_000,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
			Burst:             10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads .env (if present), then layers defaults < config file < env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if cfg.Server.Environment == "" {
		cfg.Server.Environment = EnvDevelopment
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

var envMappings = map[string]string{
	"node_env":            "server.environment",
	"environment":         "server.environment",
	"port":                "server.port",
	"api_path":            "server.api_path",
	"allowed_origins":     "server.cors_origins",
	"client_url":          "server.client_url",
	"db_driver":           "database.driver",
	"prod_db_server":      "database.prod_dsn",
	"dev_db_server":       "database.dev_dsn",
	"secret":              "session.secret",
	"session_cookie_name": "session.cookie_name",
	"session_ttl":         "session.ttl",
	"session_store":       "session.store",
	"session_store_path":  "session.store_path",
	"session_store_ttl":   "session.store_ttl",
	"uploads_dir":         "uploads.dir",
	"uploads_max_bytes":   "uploads.max_bytes",
	"rate_limit_rpm":      "rate_limit.requests_per_minute",
	"rate_limit_burst":    "rate_limit.burst",
	"rate_limit_disabled": "rate_limit.disabled",
	"log_level":           "logging.level",
	"log_format":          "logging.format",
}

// envTransformFunc maps known variables onto config paths. Anything else
// returns "" and is dropped, so unrelated environment never leaks in.
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}

		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
