// Package model contains domain models passed between layers.
package model

import "time"

// TeamID identifies a team in the league directory. Zero is reserved to
// mean "no team" and never identifies a real team.
type TeamID int64

// MatchID identifies a stored match record.
type MatchID int64

// Team is a league team as the rating engine sees it. The directory owns
// membership; the engine only reads the name and reads/writes the rating
// and the match counters.
type Team struct {
	ID     TeamID
	Name   string
	Rating int

	// Cumulative match counters.
	Played int
	Won    int
	Lost   int
	Drawn  int
}

// MatchRecord is one official match between two distinct teams.
//
// RatingAfterA and RatingAfterB snapshot each side's rating immediately
// after this match. For a team walking its matches in (Timestamp, ID)
// order, every snapshot equals the previous snapshot (or the baseline for
// the first match) adjusted by the formula's delta for that match. The
// engine's cascade exists to keep this true when history is rewritten.
type MatchRecord struct {
	ID        MatchID
	Timestamp time.Time
	TeamA     TeamID
	TeamB     TeamID
	PointsA   int
	PointsB   int
	// Duration is the official match length in minutes. Only configured
	// lengths are accepted.
	Duration     int
	RatingAfterA int
	RatingAfterB int
	// ReportedBy records which reporter (user or game server) entered or
	// last edited the match.
	ReportedBy string
}

// Before reports whether m sorts ahead of other in match order:
// ascending timestamp, ties broken by id.
func (m MatchRecord) Before(other MatchRecord) bool {
	if !m.Timestamp.Equal(other.Timestamp) {
		return m.Timestamp.Before(other.Timestamp)
	}
	return m.ID < other.ID
}

// Side returns which side of the match the team played on: +1 for team A,
// -1 for team B, 0 if the team did not participate.
func (m MatchRecord) Side(team TeamID) int {
	switch team {
	case m.TeamA:
		return 1
	case m.TeamB:
		return -1
	default:
		return 0
	}
}

// RatingAfter returns the stored post-match rating for the given team.
// The second return is false if the team did not play in this match.
func (m MatchRecord) RatingAfter(team TeamID) (int, bool) {
	switch team {
	case m.TeamA:
		return m.RatingAfterA, true
	case m.TeamB:
		return m.RatingAfterB, true
	default:
		return 0, false
	}
}

// EditHistoryRecord is an audit snapshot of a match record taken
// immediately before it was overwritten or removed. The engine only ever
// writes these; it never reads them back.
type EditHistoryRecord struct {
	ID         string // uuid
	MatchID    MatchID
	RecordedAt time.Time
	EditedBy   string
	Before     MatchRecord
}

// RatingChange captures one team's current rating before and after a
// recompute.
type RatingChange struct {
	Name string
	Old  int
	New  int
}

// Delta returns the signed net movement.
func (c RatingChange) Delta() int { return c.New - c.Old }

// RatingChangeSet maps each team whose current rating moved during a
// recompute to its old and new values. Produced transiently per engine
// call; never persisted.
type RatingChangeSet map[TeamID]RatingChange

// StatsDelta adjusts a team's cumulative match counters.
type StatsDelta struct {
	Played int
	Won    int
	Lost   int
	Drawn  int
}

// Negate returns the inverse delta, used to back out a previously counted
// outcome when a match is edited or deleted.
func (d StatsDelta) Negate() StatsDelta {
	return StatsDelta{Played: -d.Played, Won: -d.Won, Lost: -d.Lost, Drawn: -d.Drawn}
}

// OutcomeStats returns the counter deltas for both sides of a finished
// match with the given points.
func OutcomeStats(pointsA, pointsB int) (a, b StatsDelta) {
	a = StatsDelta{Played: 1}
	b = StatsDelta{Played: 1}
	switch {
	case pointsA > pointsB:
		a.Won, b.Lost = 1, 1
	case pointsA < pointsB:
		a.Lost, b.Won = 1, 1
	default:
		a.Drawn, b.Drawn = 1, 1
	}
	return a, b
}
