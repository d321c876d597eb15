// Package config loads the daemon configuration from an optional YAML file,
// with environment variables overriding file values and built-in defaults
// covering everything else.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type StoreConfig struct {
	DSN      string `yaml:"dsn"`       // empty selects the in-memory store
	Schema   string `yaml:"schema"`    // Postgres schema, default "public"
	MaxConns int    `yaml:"max_conns"` // pool size, default 4
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // e.g. ":9190"; empty disables the endpoint
}

type SchedulerConfig struct {
	ScrapeInterval  time.Duration `yaml:"scrape_interval"`  // default 4h
	CleanupInterval time.Duration `yaml:"cleanup_interval"` // default 24h
	CleanupDays     int           `yaml:"cleanup_days"`     // default 30
	InitialDelay    time.Duration `yaml:"initial_delay"`    // default 5s
}

// CityConfig is the default metro assigned to listings whose location text
// does not resolve.
type CityConfig struct {
	Name    string `yaml:"name"`
	State   string `yaml:"state"`
	Country string `yaml:"country"`
}

type SourceConfig struct {
	Type      string        `yaml:"type"` // eventbrite | meetup | cityguide | mock
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	City      CityConfig      `yaml:"city"`
	Sources   []SourceConfig  `yaml:"sources"`
}

// Default returns the configuration used when no file is given: one offline
// mock source against the in-memory store, so a bare binary run is safe.
func Default() *Config {
	return &Config{
		Store: StoreConfig{Schema: "public", MaxConns: 4},
		Scheduler: SchedulerConfig{
			ScrapeInterval:  4 * time.Hour,
			CleanupInterval: 24 * time.Hour,
			CleanupDays:     30,
			InitialDelay:    5 * time.Second,
		},
		City: CityConfig{Name: "Sydney", State: "NSW", Country: "Australia"},
		Sources: []SourceConfig{
			{Type: "mock", Timeout: 10 * time.Second},
		},
	}
}

// Load reads path (when non-empty), then applies env overrides. Missing
// durations and counts fall back to defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Store.DSN = envOrDefault("PG_DSN", cfg.Store.DSN)
	cfg.Store.Schema = envOrDefault("PG_SCHEMA", cfg.Store.Schema)
	cfg.Metrics.Addr = envOrDefault("METRICS_ADDR", cfg.Metrics.Addr)
	if h := envIntOrDefault("SCRAPE_INTERVAL_HOURS", 0); h > 0 {
		cfg.Scheduler.ScrapeInterval = time.Duration(h) * time.Hour
	}
	if d := envIntOrDefault("CLEANUP_DAYS", 0); d > 0 {
		cfg.Scheduler.CleanupDays = d
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Schema == "" {
		cfg.Store.Schema = "public"
	}
	if cfg.Store.MaxConns <= 0 {
		cfg.Store.MaxConns = 4
	}
	if cfg.Scheduler.ScrapeInterval <= 0 {
		cfg.Scheduler.ScrapeInterval = 4 * time.Hour
	}
	if cfg.Scheduler.CleanupInterval <= 0 {
		cfg.Scheduler.CleanupInterval = 24 * time.Hour
	}
	if cfg.Scheduler.CleanupDays <= 0 {
		cfg.Scheduler.CleanupDays = 30
	}
	if cfg.Scheduler.InitialDelay <= 0 {
		cfg.Scheduler.InitialDelay = 5 * time.Second
	}
	if cfg.City.Name == "" {
		cfg.City = CityConfig{Name: "Sydney", State: "NSW", Country: "Australia"}
	}
	for i := range cfg.Sources {
		if cfg.Sources[i].Timeout <= 0 {
			cfg.Sources[i].Timeout = 30 * time.Second
		}
		if cfg.Sources[i].UserAgent == "" {
			cfg.Sources[i].UserAgent = "eventsync/1.0"
		}
	}
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
