package config

import (
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	apperrors "payments-engine/internal/errors"
)

// Config holds the runtime settings for one engine invocation.
type Config struct {
	// InputPath is the single positional argument: the event CSV to process.
	InputPath string
	// LogLevel selects the slog level for diagnostics on stderr.
	LogLevel string `env:"LOG_LEVEL"`
}

// Parse reads configuration from command-line flags and environment
// variables. Environment variables take precedence over flags.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	envLogLevel := cfg.LogLevel

	fs := flag.NewFlagSet("payments-engine", flag.ContinueOnError)
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if envLogLevel != "" {
		cfg.LogLevel = envLogLevel
	}

	if fs.NArg() != 1 {
		return nil, apperrors.ErrMissingInput
	}
	cfg.InputPath = fs.Arg(0)

	return cfg, nil
}

// SlogLevel maps the configured textual level onto slog, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
