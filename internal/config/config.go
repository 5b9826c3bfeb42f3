// Package config loads the analyzer configuration from the environment.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Logging    LogConfig
	Typewriter TypewriterConfig
	Metrics    MetricsConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// TypewriterConfig holds the typewriter stage configuration.
//
// FAST_TYPEWRITER is the per-character delay in milliseconds. Anything that is not a number means no delay.
type TypewriterConfig struct {
	Delay string `envconfig:"FAST_TYPEWRITER"`
}

// MetricsConfig holds the metrics endpoint configuration. An empty address disables the endpoint.
type MetricsConfig struct {
	Address string `envconfig:"METRICS_ADDR"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// DelayOr returns the configured typewriter delay, or fallback when none is set.
func (c TypewriterConfig) DelayOr(fallback time.Duration) time.Duration {
	if c.Delay == "" {
		return fallback
	}
	ms, err := strconv.ParseUint(c.Delay, 10, 32)
	if err != nil {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
