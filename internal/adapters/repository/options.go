// Package repository defines the match store abstraction the rating
// engine depends on, plus its in-memory and Postgres implementations.
package repository

import "time"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithLockWait bounds how long WithExclusiveScope waits for the scope
// before failing with ErrLockUnavailable.
func WithLockWait(d time.Duration) Option {
	return func(s *MemStore) {
		if d > 0 {
			s.lockWait = d
		}
	}
}

// WithBaselineRating overrides the rating assigned to teams without
// match history.
func WithBaselineRating(r int) Option {
	return func(s *MemStore) {
		if r > 0 {
			s.baseline = r
		}
	}
}
