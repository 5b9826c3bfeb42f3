package logging

import (
	"testing"

	"github.com/maxatome/go-testdeep/td"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {

	t.Run("success_levels", func(t *testing.T) {
		for level, want := range map[string]zapcore.Level{
			"debug": zapcore.DebugLevel,
			"info":  zapcore.InfoLevel,
			"warn":  zapcore.WarnLevel,
			"error": zapcore.ErrorLevel,
			"":      zapcore.InfoLevel,
		} {
			// Arrange
			cfg := DefaultConfig()
			cfg.Level = level

			// Act
			logger, err := New(cfg)

			// Assert
			td.Require(t).CmpNoError(err, level)
			td.Cmp(t, logger.Level(), want, level)
		}
	})

	t.Run("success_development", func(t *testing.T) {
		// Arrange
		cfg := Config{Level: "debug", Development: true}

		// Act
		logger, err := New(cfg)

		// Assert
		td.Require(t).CmpNoError(err)
		td.CmpTrue(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("error_unknown_level", func(t *testing.T) {
		// Act
		logger, err := New(Config{Level: "chatty"})

		// Assert
		td.CmpError(t, err)
		td.CmpNil(t, logger)
	})
}

func TestEncoding(t *testing.T) {
	td.Cmp(t, encodingFormat(true), "console")
	td.Cmp(t, encodingFormat(false), "json")
	td.Cmp(t, encoderConfig(false).MessageKey, "message")
	td.Cmp(t, encoderConfig(true).MessageKey, "M")
}
