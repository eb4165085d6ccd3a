// Package config loads the application configuration from defaults, an
// optional TOML file, and the environment, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Sternrassler/catalog-client/pkg/client"
)

// Config is the full application configuration.
type Config struct {
	Catalog  CatalogConfig  `toml:"catalog"`
	Redis    RedisConfig    `toml:"redis"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// CatalogConfig holds the upstream catalog settings. Durations are in seconds.
type CatalogConfig struct {
	BaseURL                string `toml:"base_url"`
	UserAgent              string `toml:"user_agent"`
	TimeoutSeconds         int    `toml:"timeout_seconds"`
	MaxRetries             int    `toml:"max_retries"`
	CacheTTLSeconds        int    `toml:"cache_ttl_seconds"`
	RateLimitMax           int    `toml:"rate_limit_max"`
	RateLimitWindowSeconds int    `toml:"rate_limit_window_seconds"`
	WarmupIDs              []int  `toml:"warmup_ids"`
}

// RedisConfig selects the shared backend. An empty Addr keeps state in memory.
type RedisConfig struct {
	Addr string `toml:"addr"`
}

// DatabaseConfig holds the favorites database settings.
type DatabaseConfig struct {
	DSN string `toml:"dsn"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port string `toml:"port"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// Default returns the built-in defaults.
func Default() Config {
	def := client.DefaultConfig()

	return Config{
		Catalog: CatalogConfig{
			BaseURL:                def.BaseURL,
			UserAgent:              def.UserAgent,
			TimeoutSeconds:         int(def.Timeout / time.Second),
			MaxRetries:             def.MaxRetries,
			CacheTTLSeconds:        int(def.CacheTTL / time.Second),
			RateLimitMax:           def.RateLimitMax,
			RateLimitWindowSeconds: int(def.RateLimitWindow / time.Second),
		},
		Database: DatabaseConfig{DSN: "favorites.db"},
		Server:   ServerConfig{Port: "8080"},
		Log:      LogConfig{Level: "info"},
	}
}

// Load builds the configuration. path may be empty to skip the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.ClientConfig().Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid catalog config: %w", err)
	}
	return cfg, nil
}

// ClientConfig converts the catalog section into a client configuration.
func (c Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig()
	cfg.BaseURL = strings.TrimRight(c.Catalog.BaseURL, "/")
	if c.Catalog.UserAgent != "" {
		cfg.UserAgent = c.Catalog.UserAgent
	}
	cfg.Timeout = time.Duration(c.Catalog.TimeoutSeconds) * time.Second
	cfg.MaxRetries = c.Catalog.MaxRetries
	cfg.CacheTTL = time.Duration(c.Catalog.CacheTTLSeconds) * time.Second
	cfg.RateLimitMax = c.Catalog.RateLimitMax
	cfg.RateLimitWindow = time.Duration(c.Catalog.RateLimitWindowSeconds) * time.Second
	return cfg
}

type lookupFunc func(key string) (string, bool)

// applyEnv overrides cfg with any set environment variables.
func applyEnv(cfg *Config, lookup lookupFunc) error {
	getString := func(key string, dst *string) {
		if value, ok := lookup(key); ok && value != "" {
			*dst = value
		}
	}
	getInt := func(key string, dst *int) error {
		value, ok := lookup(key)
		if !ok || value == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	getString("FAKESTORE_API_URL", &cfg.Catalog.BaseURL)
	getString("FAKESTORE_API_USER_AGENT", &cfg.Catalog.UserAgent)
	getString("REDIS_URL", &cfg.Redis.Addr)
	getString("DATABASE_DSN", &cfg.Database.DSN)
	getString("PORT", &cfg.Server.Port)
	getString("LOG_LEVEL", &cfg.Log.Level)

	ints := []struct {
		key string
		dst *int
	}{
		{"FAKESTORE_API_TIMEOUT", &cfg.Catalog.TimeoutSeconds},
		{"FAKESTORE_API_MAX_RETRIES", &cfg.Catalog.MaxRetries},
		{"FAKESTORE_API_CACHE_TTL", &cfg.Catalog.CacheTTLSeconds},
		{"FAKESTORE_API_RATE_LIMIT_MAX", &cfg.Catalog.RateLimitMax},
		{"FAKESTORE_API_RATE_LIMIT_WINDOW", &cfg.Catalog.RateLimitWindowSeconds},
	}
	for _, i := range ints {
		if err := getInt(i.key, i.dst); err != nil {
			return err
		}
	}

	if value, ok := lookup("LOG_PRETTY"); ok && value != "" {
		pretty, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("LOG_PRETTY: %w", err)
		}
		cfg.Log.Pretty = pretty
	}

	if value, ok := lookup("FAKESTORE_API_WARMUP_IDS"); ok && value != "" {
		ids, err := parseIDs(value)
		if err != nil {
			return fmt.Errorf("FAKESTORE_API_WARMUP_IDS: %w", err)
		}
		cfg.Catalog.WarmupIDs = ids
	}

	return nil
}

// parseIDs parses a comma-separated id list.
func parseIDs(value string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
