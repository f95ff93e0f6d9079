// Package config holds runtime configuration: built-in defaults, optionally
// overridden by a TOML file. Connection settings (database URL, log level)
// come from CLI flags and environment variables instead; see cmd/taskledger.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultPageSize is the snapshot listing page size when none is given.
	DefaultPageSize = 10
)

// Duration wraps time.Duration so TOML values like "5m" parse naturally.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// ReconcileConfig holds the retry policy for the reconciliation job.
type ReconcileConfig struct {
	MaxAttempts    int      `toml:"max_attempts"`
	RetryDelay     Duration `toml:"retry_delay"`
	AttemptTimeout Duration `toml:"attempt_timeout"`
}

// PaginationConfig holds defaults for snapshot listing.
type PaginationConfig struct {
	PageSize int `toml:"page_size"`
}

// Config is the full application configuration.
type Config struct {
	Reconcile  ReconcileConfig  `toml:"reconcile"`
	Pagination PaginationConfig `toml:"pagination"`
}

// Default returns the built-in configuration: 3 attempts with a fixed
// 5-minute delay between them, a 2-minute per-attempt budget.
func Default() Config {
	return Config{
		Reconcile: ReconcileConfig{
			MaxAttempts:    3,
			RetryDelay:     Duration{5 * time.Minute},
			AttemptTimeout: Duration{2 * time.Minute},
		},
		Pagination: PaginationConfig{
			PageSize: DefaultPageSize,
		},
	}
}

// Load reads configuration from the given TOML file over the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	if cfg.Reconcile.MaxAttempts < 1 {
		return Config{}, fmt.Errorf("config %s: max_attempts must be at least 1", path)
	}
	if cfg.Pagination.PageSize < 1 {
		return Config{}, fmt.Errorf("config %s: page_size must be positive", path)
	}

	return cfg, nil
}
