package engine

import (
	"time"

	"github.com/allejo/LeagueOverseer/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithBaselineRating sets the rating an unplayed team reads as. It must
// match the store's configured baseline.
func WithBaselineRating(baseline int) Option {
	return func(e *Engine) {
		e.baseline = baseline
	}
}

// WithEditHistory toggles audit records for edits and deletions.
func WithEditHistory(enabled bool) Option {
	return func(e *Engine) {
		e.recordHistory = enabled
	}
}

// WithClock overrides the audit timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
