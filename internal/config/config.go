// Package config reads gradpath settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds process-wide settings. Every field maps to one GRADPATH_*
// variable.
type Config struct {
	// DBPath defaults to ~/.gradpath/gradpath.db when unset.
	DBPath    string `env:"GRADPATH_DB"`
	LogCalls  bool   `env:"GRADPATH_LOG_CALLS" envDefault:"false"`
	LogLevel  string `env:"GRADPATH_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"GRADPATH_LOG_FORMAT" envDefault:"text"`
	// Actor is recorded on audit-log entries. Empty means the plan owner.
	Actor string `env:"GRADPATH_ACTOR"`
}

// Load parses the environment and fills derived defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".gradpath", "gradpath.db")
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return Config{}, err
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
		cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	default:
		return Config{}, fmt.Errorf("GRADPATH_LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	return cfg, nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("GRADPATH_LOG_LEVEL: %w", err)
	}
	return level, nil
}
