// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer
//   file and environment overrides on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDSN is the Postgres connection string. Empty selects the
	// in-memory store.
	StoreDSN string `koanf:"store_dsn"`

	// BaselineRating is the rating assigned to a team with no match
	// history.
	BaselineRating int `koanf:"baseline_rating"`

	// KFactor scales rating deltas.
	KFactor float64 `koanf:"k_factor"`

	// DurationWeights maps official match lengths in minutes (as string
	// keys, to survive YAML and env layering) to their delta weighting.
	DurationWeights map[string]float64 `koanf:"duration_weights"`

	// LockWaitMS bounds how long a writer waits for the exclusive match
	// scope before giving up.
	LockWaitMS int `koanf:"lock_wait_ms"`

	// DedupeSize bounds the duplicate-report fingerprint cache.
	DedupeSize int `koanf:"dedupe_size"`

	// RecordEditHistory toggles audit records for match edits and
	// deletions.
	RecordEditHistory bool `koanf:"record_edit_history"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":8080",
		BaselineRating: 1200,
		KFactor:        50,
		DurationWeights: map[string]float64{
			"30": 1.0,
			"20": 2.0 / 3.0,
		},
		LockWaitMS:        5000,
		DedupeSize:        4096,
		RecordEditHistory: true,
	}
}

// LockWait returns the exclusive scope acquisition bound as a duration.
func (c *Config) LockWait() time.Duration {
	return time.Duration(c.LockWaitMS) * time.Millisecond
}

// DurationWeightTable parses the string-keyed weight map into the
// integer-minute table the rating formula consumes.
func (c *Config) DurationWeightTable() (map[int]float64, error) {
	out := make(map[int]float64, len(c.DurationWeights))
	for key, weight := range c.DurationWeights {
		minutes, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("duration_weights key %q: %w", key, ErrInvalidConfig)
		}
		if minutes <= 0 || weight <= 0 {
			return nil, fmt.Errorf("duration_weights[%q]=%v: %w", key, weight, ErrInvalidConfig)
		}
		out[minutes] = weight
	}
	return out, nil
}

// validate checks cross-field constraints after layering.
func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty: %w", ErrInvalidConfig)
	}
	if c.KFactor <= 0 {
		return fmt.Errorf("k_factor %v must be positive: %w", c.KFactor, ErrInvalidConfig)
	}
	if c.LockWaitMS <= 0 {
		return fmt.Errorf("lock_wait_ms %d must be positive: %w", c.LockWaitMS, ErrInvalidConfig)
	}
	if c.DedupeSize < 0 {
		return fmt.Errorf("dedupe_size %d must not be negative: %w", c.DedupeSize, ErrInvalidConfig)
	}
	if len(c.DurationWeights) == 0 {
		return fmt.Errorf("duration_weights must not be empty: %w", ErrInvalidConfig)
	}
	if _, err := c.DurationWeightTable(); err != nil {
		return err
	}
	return nil
}
