package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/maxatome/go-testdeep/td"

	"github.com/fogfactory/linepipe/internal/config"
)

// unsetenv removes keys from the environment for the duration of t.
func unsetenv(t *testing.T, keys ...string) {
	for _, k := range keys {
		t.Setenv(k, "")
		td.Require(t).CmpNoError(os.Unsetenv(k))
	}
}

func TestLoad(t *testing.T) {

	t.Run("success_defaults", func(t *testing.T) {
		// Arrange
		unsetenv(t, "LOG_LEVEL", "LOG_DEV", "FAST_TYPEWRITER", "METRICS_ADDR")

		// Act
		cfg, err := config.Load()

		// Assert
		td.Require(t).CmpNoError(err)
		td.Cmp(t, cfg.Logging, config.LogConfig{Level: "info"})
		td.Cmp(t, cfg.Typewriter.DelayOr(time.Second), time.Second)
		td.Cmp(t, cfg.Metrics.Address, "")
	})

	t.Run("success_environment", func(t *testing.T) {
		// Arrange
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_DEV", "true")
		t.Setenv("FAST_TYPEWRITER", "5")
		t.Setenv("METRICS_ADDR", ":9100")

		// Act
		cfg, err := config.Load()

		// Assert
		td.Require(t).CmpNoError(err)
		td.Cmp(t, cfg, &config.Config{
			Logging:    config.LogConfig{Level: "debug", Development: true},
			Typewriter: config.TypewriterConfig{Delay: "5"},
			Metrics:    config.MetricsConfig{Address: ":9100"},
		})
	})

	t.Run("error_invalid_bool", func(t *testing.T) {
		// Arrange
		t.Setenv("LOG_DEV", "sometimes")

		// Act
		cfg, err := config.Load()

		// Assert
		td.CmpError(t, err)
		td.CmpNil(t, cfg)
		td.Cmp(t, config.LoadOrDefault(), config.Default())
	})
}

func TestDelayOr(t *testing.T) {
	cases := []struct {
		name  string
		value string
		delay time.Duration
	}{
		{"unset", "", time.Second},
		{"milliseconds", "25", 25 * time.Millisecond},
		{"zero", "0", 0},
		{"not_a_number", "fast", 0},
		{"negative", "-5", 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			td.Cmp(t, config.TypewriterConfig{Delay: c.value}.DelayOr(time.Second), c.delay)
		})
	}
}
