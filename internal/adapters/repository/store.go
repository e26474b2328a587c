// Package repository defines the match store abstraction the rating
// engine depends on, plus its in-memory and Postgres implementations.
package repository

import (
	"context"
	"time"

	"github.com/allejo/LeagueOverseer/internal/domain/model"
)

// Table names a logical table an exclusive scope covers.
type Table string

// Logical tables.
const (
	TableMatches     Table = "matches"
	TableTeams       Table = "teams"
	TableEditHistory Table = "matches_edit_history"
)

// Store provides access to persisted match records and team ratings.
//
// All writes happen inside WithExclusiveScope; the reads outside it are
// point-in-time conveniences for callers that can tolerate a racing
// writer (current rating lookups, standings pages).
type Store interface {
	// WithExclusiveScope acquires an exclusive write scope over the named
	// logical tables for the duration of body. No concurrent writer can
	// observe or produce an interleaved intermediate state. The scope is
	// released on every exit path; if body returns an error, none of the
	// writes it performed survive. Acquisition has a bounded wait and
	// fails with ErrLockUnavailable.
	WithExclusiveScope(ctx context.Context, tables []Table, body func(tx Tx) error) error

	// Team returns a team row. Unknown ids fail with ErrNotFound.
	Team(ctx context.Context, id model.TeamID) (model.Team, error)

	// Standings lists all tracked teams ordered by rating descending,
	// ties by id ascending.
	Standings(ctx context.Context) ([]model.Team, error)

	// UpsertTeam creates or replaces a team row. Used to seed the teams
	// table from the league directory.
	UpsertTeam(ctx context.Context, t model.Team) error

	// Close releases any underlying resources.
	Close()
}

// Tx is the handle the engine uses inside an exclusive scope. Every
// method sees the effect of earlier calls in the same scope.
type Tx interface {
	// RatingAsOf returns team's rating strictly before ts: the snapshot
	// of its latest earlier match, or the baseline if it has none.
	RatingAsOf(ctx context.Context, team model.TeamID, ts time.Time) (int, error)

	// Get returns a match record by id, or ErrNotFound.
	Get(ctx context.Context, id model.MatchID) (model.MatchRecord, error)

	// Insert stores a new match record and returns its assigned id.
	Insert(ctx context.Context, rec model.MatchRecord) (model.MatchID, error)

	// Update overwrites a match record in place, or fails with
	// ErrNotFound.
	Update(ctx context.Context, id model.MatchID, rec model.MatchRecord) error

	// Delete removes a match record and returns it, or fails with
	// ErrNotFound.
	Delete(ctx context.Context, id model.MatchID) (model.MatchRecord, error)

	// MatchesAfter returns every match strictly later than ts, ascending
	// by timestamp with ties broken by id.
	MatchesAfter(ctx context.Context, ts time.Time) ([]model.MatchRecord, error)

	// LastMatchFor returns team's chronologically last match, or false
	// if the team has no match history.
	LastMatchFor(ctx context.Context, team model.TeamID) (model.MatchRecord, bool, error)

	// Team returns the team row, initializing it at the baseline rating
	// if the store has not seen the team before.
	Team(ctx context.Context, id model.TeamID) (model.Team, error)

	// SetRating sets a team's current rating.
	SetRating(ctx context.Context, id model.TeamID, rating int) error

	// ApplyStats adjusts a team's cumulative match counters.
	ApplyStats(ctx context.Context, id model.TeamID, d model.StatsDelta) error

	// AppendHistory writes an edit-history audit record.
	AppendHistory(ctx context.Context, h model.EditHistoryRecord) error
}
