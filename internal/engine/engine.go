// Package engine implements the match recompute engine: entering,
// editing and deleting official matches while keeping every stored
// rating snapshot and every team's current rating consistent with the
// full match history.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/allejo/LeagueOverseer/internal/adapters/repository"
	"github.com/allejo/LeagueOverseer/internal/domain/model"
	"github.com/allejo/LeagueOverseer/internal/domain/rating"
	"github.com/allejo/LeagueOverseer/internal/domain/validate"
	"github.com/allejo/LeagueOverseer/pkg/logger"
	"github.com/allejo/LeagueOverseer/pkg/metrics"
)

// scopeTables is every logical table a recompute may touch. All three
// are always claimed; claiming fewer would let a concurrent writer see a
// half-applied cascade.
var scopeTables = []repository.Table{
	repository.TableMatches,
	repository.TableTeams,
	repository.TableEditHistory,
}

// MatchParams carries one match report: either a new match or the
// replacement values for an edit.
type MatchParams struct {
	TeamA      model.TeamID
	TeamB      model.TeamID
	PointsA    int
	PointsB    int
	Timestamp  time.Time
	Duration   int
	ReportedBy string
}

// Engine applies match reports to the store. All mutations run inside a
// single exclusive scope, so a caller either observes the full effect of
// a report (record, snapshots, counters, current ratings) or none of it.
type Engine struct {
	store         repository.Store
	formula       *rating.Formula
	log           logger.Logger
	baseline      int
	recordHistory bool
	now           func() time.Time
}

// New creates an Engine on the given store and formula with
// configuration options.
func New(store repository.Store, formula *rating.Formula, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		formula:       formula,
		log:           logger.Nop(),
		baseline:      rating.Baseline,
		recordHistory: true,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Outcome reports what one engine mutation did: the affected match
// record as stored (or as removed, for deletions), the signed rating
// delta that match applies to side A, and the set of teams whose current
// rating moved.
type Outcome struct {
	Record  model.MatchRecord
	Delta   int
	Changes model.RatingChangeSet
}

// EnterMatch stores a new official match, snapshots both sides' post-match
// ratings, updates the win/loss/draw counters and recomputes every later
// match.
func (e *Engine) EnterMatch(ctx context.Context, p MatchParams) (Outcome, error) {
	if err := e.preflight(ctx, p); err != nil {
		recordFailure("enter", err)
		return Outcome{}, err
	}

	var out Outcome
	err := e.store.WithExclusiveScope(ctx, scopeTables, func(tx repository.Tx) error {
		tr := newTracker(tx)
		if err := tr.touch(ctx, p.TeamA, p.TeamB); err != nil {
			return err
		}

		rec, delta, err := e.snapshotAt(ctx, tx, p)
		if err != nil {
			return err
		}
		id, err := tx.Insert(ctx, rec)
		if err != nil {
			return err
		}
		rec.ID = id
		out.Record = rec
		out.Delta = delta

		statsA, statsB := model.OutcomeStats(p.PointsA, p.PointsB)
		if err := tx.ApplyStats(ctx, p.TeamA, statsA); err != nil {
			return err
		}
		if err := tx.ApplyStats(ctx, p.TeamB, statsB); err != nil {
			return err
		}

		if err := e.cascade(ctx, tx, tr, p.Timestamp); err != nil {
			return err
		}

		out.Changes, err = e.finalize(ctx, tx, tr)
		return err
	})
	if err != nil {
		recordFailure("enter", err)
		return Outcome{}, err
	}

	metrics.RecordMatchEntered()
	e.log.Info(ctx, "match entered",
		logger.Int64("match_id", int64(out.Record.ID)),
		logger.Int64("team_a", int64(p.TeamA)),
		logger.Int64("team_b", int64(p.TeamB)),
		logger.Int("teams_moved", len(out.Changes)))
	return out, nil
}

// EditMatch replaces a stored match's teams, score, duration or
// timestamp, audits the previous values, and recomputes everything the
// change invalidates. The cascade starts at the earlier of the old and
// new timestamps so a match moved in either direction re-fixes both its
// old and new neighborhoods.
func (e *Engine) EditMatch(ctx context.Context, id model.MatchID, p MatchParams) (Outcome, error) {
	if err := e.preflight(ctx, p); err != nil {
		recordFailure("edit", err)
		return Outcome{}, err
	}

	var out Outcome
	err := e.store.WithExclusiveScope(ctx, scopeTables, func(tx repository.Tx) error {
		old, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}

		tr := newTracker(tx)
		if err := tr.touch(ctx, old.TeamA, old.TeamB, p.TeamA, p.TeamB); err != nil {
			return err
		}

		if e.recordHistory {
			h := model.EditHistoryRecord{
				ID:         uuid.NewString(),
				MatchID:    id,
				RecordedAt: e.now(),
				EditedBy:   p.ReportedBy,
				Before:     old,
			}
			if err := tx.AppendHistory(ctx, h); err != nil {
				return err
			}
		}

		oldA, oldB := model.OutcomeStats(old.PointsA, old.PointsB)
		if err := tx.ApplyStats(ctx, old.TeamA, oldA.Negate()); err != nil {
			return err
		}
		if err := tx.ApplyStats(ctx, old.TeamB, oldB.Negate()); err != nil {
			return err
		}
		newA, newB := model.OutcomeStats(p.PointsA, p.PointsB)
		if err := tx.ApplyStats(ctx, p.TeamA, newA); err != nil {
			return err
		}
		if err := tx.ApplyStats(ctx, p.TeamB, newB); err != nil {
			return err
		}

		rec, delta, err := e.snapshotAt(ctx, tx, p)
		if err != nil {
			return err
		}
		rec.ID = id
		if err := tx.Update(ctx, id, rec); err != nil {
			return err
		}
		out.Record = rec
		out.Delta = delta

		from := p.Timestamp
		if old.Timestamp.Before(from) {
			from = old.Timestamp
		}
		if err := e.cascade(ctx, tx, tr, from); err != nil {
			return err
		}

		out.Changes, err = e.finalize(ctx, tx, tr)
		return err
	})
	if err != nil {
		recordFailure("edit", err)
		return Outcome{}, err
	}

	metrics.RecordMatchEdited()
	e.log.Info(ctx, "match edited",
		logger.Int64("match_id", int64(id)),
		logger.Int("teams_moved", len(out.Changes)))
	return out, nil
}

// DeleteMatch removes a stored match as if it never happened: counters
// are backed out, every later match is recomputed, and a team left with
// no history returns to the baseline. The returned outcome carries the
// removed record.
func (e *Engine) DeleteMatch(ctx context.Context, id model.MatchID, deletedBy string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		recordFailure("delete", err)
		return Outcome{}, fmt.Errorf("delete match: %w", err)
	}

	var out Outcome
	err := e.store.WithExclusiveScope(ctx, scopeTables, func(tx repository.Tx) error {
		old, err := tx.Delete(ctx, id)
		if err != nil {
			return err
		}
		out.Record = old

		tr := newTracker(tx)
		if err := tr.touch(ctx, old.TeamA, old.TeamB); err != nil {
			return err
		}

		if e.recordHistory {
			h := model.EditHistoryRecord{
				ID:         uuid.NewString(),
				MatchID:    id,
				RecordedAt: e.now(),
				EditedBy:   deletedBy,
				Before:     old,
			}
			if err := tx.AppendHistory(ctx, h); err != nil {
				return err
			}
		}

		statsA, statsB := model.OutcomeStats(old.PointsA, old.PointsB)
		if err := tx.ApplyStats(ctx, old.TeamA, statsA.Negate()); err != nil {
			return err
		}
		if err := tx.ApplyStats(ctx, old.TeamB, statsB.Negate()); err != nil {
			return err
		}

		if err := e.cascade(ctx, tx, tr, old.Timestamp); err != nil {
			return err
		}

		out.Changes, err = e.finalize(ctx, tx, tr)
		return err
	})
	if err != nil {
		recordFailure("delete", err)
		return Outcome{}, err
	}

	metrics.RecordMatchDeleted()
	e.log.Info(ctx, "match deleted",
		logger.Int64("match_id", int64(id)),
		logger.Int("teams_moved", len(out.Changes)))
	return out, nil
}

// RatingOf returns a team's current standing. A team the store has never
// seen reads as an unplayed team at the baseline rating.
func (e *Engine) RatingOf(ctx context.Context, id model.TeamID) (model.Team, error) {
	t, err := e.store.Team(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return model.Team{ID: id, Rating: e.baseline}, nil
		}
		return model.Team{}, err
	}
	return t, nil
}

// preflight rejects a report before any lock is taken: degenerate team
// pairings, negative scores and unofficial durations never reach the
// store.
func (e *Engine) preflight(ctx context.Context, p MatchParams) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("match report: %w", err)
	}
	if err := validate.Teams(p.TeamA, p.TeamB); err != nil {
		return err
	}
	if p.PointsA < 0 || p.PointsB < 0 {
		return fmt.Errorf("negative points %d/%d: %w", p.PointsA, p.PointsB, rating.ErrInvalidInput)
	}
	if _, err := e.formula.WeightFor(p.Duration); err != nil {
		return err
	}
	return nil
}

// snapshotAt builds the match record for p with both post-match rating
// snapshots computed from the store state at p.Timestamp, and returns
// the signed delta applied to side A.
func (e *Engine) snapshotAt(ctx context.Context, tx repository.Tx, p MatchParams) (model.MatchRecord, int, error) {
	ra, err := tx.RatingAsOf(ctx, p.TeamA, p.Timestamp)
	if err != nil {
		return model.MatchRecord{}, 0, err
	}
	rb, err := tx.RatingAsOf(ctx, p.TeamB, p.Timestamp)
	if err != nil {
		return model.MatchRecord{}, 0, err
	}
	delta, err := e.formula.ComputeDelta(ra, rb, p.PointsA, p.PointsB, p.Duration)
	if err != nil {
		return model.MatchRecord{}, 0, err
	}

	return model.MatchRecord{
		Timestamp:    p.Timestamp,
		TeamA:        p.TeamA,
		TeamB:        p.TeamB,
		PointsA:      p.PointsA,
		PointsB:      p.PointsB,
		Duration:     p.Duration,
		RatingAfterA: ra + delta,
		RatingAfterB: rb - delta,
		ReportedBy:   p.ReportedBy,
	}, delta, nil
}

// cascade walks every match strictly later than from in (timestamp, id)
// order and recomputes its snapshots from the store state as it exists
// now, using each match's own score and duration. Rows whose snapshots
// already agree are left untouched.
func (e *Engine) cascade(ctx context.Context, tx repository.Tx, tr *tracker, from time.Time) error {
	start := time.Now()

	later, err := tx.MatchesAfter(ctx, from)
	if err != nil {
		return err
	}

	rewritten := 0
	for _, m := range later {
		if err := tr.touch(ctx, m.TeamA, m.TeamB); err != nil {
			return err
		}

		ra, err := tx.RatingAsOf(ctx, m.TeamA, m.Timestamp)
		if err != nil {
			return err
		}
		rb, err := tx.RatingAsOf(ctx, m.TeamB, m.Timestamp)
		if err != nil {
			return err
		}
		delta, err := e.formula.ComputeDelta(ra, rb, m.PointsA, m.PointsB, m.Duration)
		if err != nil {
			return fmt.Errorf("recomputing match %d: %w", m.ID, err)
		}

		newA, newB := ra+delta, rb-delta
		if newA == m.RatingAfterA && newB == m.RatingAfterB {
			continue
		}
		m.RatingAfterA = newA
		m.RatingAfterB = newB
		if err := tx.Update(ctx, m.ID, m); err != nil {
			return err
		}
		rewritten++
	}

	metrics.ObserveCascade(len(later), rewritten)
	metrics.ObserveCascadeDuration(time.Since(start))
	e.log.Debug(ctx, "cascade finished",
		logger.Int("scanned", len(later)),
		logger.Int("rewritten", rewritten))
	return nil
}

// finalize realigns every touched team's current rating with its
// chronologically last snapshot (or the baseline when no history
// remains) and reports which teams actually moved.
func (e *Engine) finalize(ctx context.Context, tx repository.Tx, tr *tracker) (model.RatingChangeSet, error) {
	changes := make(model.RatingChangeSet)
	for id, before := range tr.before {
		current := e.baseline
		last, ok, err := tx.LastMatchFor(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			current, _ = last.RatingAfter(id)
		}

		if current == before.Rating {
			continue
		}
		if err := tx.SetRating(ctx, id, current); err != nil {
			return nil, err
		}
		changes[id] = model.RatingChange{Name: before.Name, Old: before.Rating, New: current}
	}
	return changes, nil
}

// tracker remembers the pre-recompute team rows the first time each team
// is touched inside a scope, so finalize can report old vs new ratings.
type tracker struct {
	tx     repository.Tx
	before map[model.TeamID]model.Team
}

func newTracker(tx repository.Tx) *tracker {
	return &tracker{tx: tx, before: make(map[model.TeamID]model.Team)}
}

func (t *tracker) touch(ctx context.Context, ids ...model.TeamID) error {
	for _, id := range ids {
		if _, seen := t.before[id]; seen {
			continue
		}
		row, err := t.tx.Team(ctx, id)
		if err != nil {
			return err
		}
		t.before[id] = row
	}
	return nil
}
