// Package repository defines the match store abstraction the rating
// engine depends on, plus its in-memory and Postgres implementations.
package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/allejo/LeagueOverseer/internal/domain/model"
	"github.com/allejo/LeagueOverseer/internal/domain/rating"
	"github.com/allejo/LeagueOverseer/pkg/metrics"
)

const defaultLockWait = 5 * time.Second

// MemStore is an in-memory Store. A single scope semaphore serializes all
// writers (the whole-table approximation: strictly coarser than needed,
// never weaker), and each scope keeps an undo journal so a failed body
// leaves no partial writes behind.
type MemStore struct {
	sem      chan struct{}
	lockWait time.Duration
	baseline int

	mu          sync.RWMutex
	matches     map[model.MatchID]model.MatchRecord
	nextMatchID model.MatchID
	teams       map[model.TeamID]model.Team
	history     []model.EditHistoryRecord
}

// NewMemStore creates an empty in-memory store with configuration
// options.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		sem:         make(chan struct{}, 1),
		lockWait:    defaultLockWait,
		baseline:    rating.Baseline,
		matches:     make(map[model.MatchID]model.MatchRecord),
		nextMatchID: 1,
		teams:       make(map[model.TeamID]model.Team),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithExclusiveScope implements Store. The tables argument is accepted
// for interface parity; the in-memory store always locks everything.
func (s *MemStore) WithExclusiveScope(ctx context.Context, tables []Table, body func(tx Tx) error) error {
	start := time.Now()
	timer := time.NewTimer(s.lockWait)
	defer timer.Stop()

	select {
	case s.sem <- struct{}{}:
	case <-timer.C:
		metrics.RecordLockTimeout()
		return fmt.Errorf("scope over %v after %s: %w", tables, s.lockWait, ErrLockUnavailable)
	case <-ctx.Done():
		return fmt.Errorf("acquiring scope: %w", ctx.Err())
	}
	metrics.ObserveLockWait(time.Since(start))
	defer func() { <-s.sem }()

	tx := &memTx{s: s}
	if err := body(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// Team implements Store. Unlike Tx.Team it never creates a row.
func (s *MemStore) Team(ctx context.Context, id model.TeamID) (model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.teams[id]
	if !ok {
		return model.Team{}, fmt.Errorf("team %d: %w", id, ErrNotFound)
	}
	return t, nil
}

// Standings implements Store.
func (s *MemStore) Standings(ctx context.Context) ([]model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpsertTeam implements Store.
func (s *MemStore) UpsertTeam(ctx context.Context, t model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[t.ID] = t
	return nil
}

// Close implements Store.
func (s *MemStore) Close() {}

// HistorySize returns the number of audit records written. Used by stats
// reporting; the engine itself never reads history back.
func (s *MemStore) HistorySize(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// MatchCount returns the number of stored match records.
func (s *MemStore) MatchCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

// memTx is the scope handle. It mutates the store directly and records
// an undo entry per write so rollback can restore the pre-scope state.
type memTx struct {
	s    *MemStore
	undo []func()
}

func (tx *memTx) rollback() {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

func (tx *memTx) RatingAsOf(ctx context.Context, team model.TeamID, ts time.Time) (int, error) {
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()

	var best model.MatchRecord
	found := false
	for _, m := range tx.s.matches {
		if m.Side(team) == 0 || !m.Timestamp.Before(ts) {
			continue
		}
		if !found || best.Before(m) {
			best = m
			found = true
		}
	}
	if !found {
		return tx.s.baseline, nil
	}
	snapshot, _ := best.RatingAfter(team)
	return snapshot, nil
}

func (tx *memTx) Get(ctx context.Context, id model.MatchID) (model.MatchRecord, error) {
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()

	m, ok := tx.s.matches[id]
	if !ok {
		return model.MatchRecord{}, fmt.Errorf("match %d: %w", id, ErrNotFound)
	}
	return m, nil
}

func (tx *memTx) Insert(ctx context.Context, rec model.MatchRecord) (model.MatchID, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	id := tx.s.nextMatchID
	tx.s.nextMatchID++
	rec.ID = id
	tx.s.matches[id] = rec

	tx.undo = append(tx.undo, func() {
		delete(tx.s.matches, id)
		tx.s.nextMatchID = id
	})
	return id, nil
}

func (tx *memTx) Update(ctx context.Context, id model.MatchID, rec model.MatchRecord) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	prev, ok := tx.s.matches[id]
	if !ok {
		return fmt.Errorf("match %d: %w", id, ErrNotFound)
	}
	rec.ID = id
	tx.s.matches[id] = rec

	tx.undo = append(tx.undo, func() { tx.s.matches[id] = prev })
	return nil
}

func (tx *memTx) Delete(ctx context.Context, id model.MatchID) (model.MatchRecord, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	prev, ok := tx.s.matches[id]
	if !ok {
		return model.MatchRecord{}, fmt.Errorf("match %d: %w", id, ErrNotFound)
	}
	delete(tx.s.matches, id)

	tx.undo = append(tx.undo, func() { tx.s.matches[id] = prev })
	return prev, nil
}

func (tx *memTx) MatchesAfter(ctx context.Context, ts time.Time) ([]model.MatchRecord, error) {
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()

	var out []model.MatchRecord
	for _, m := range tx.s.matches {
		if m.Timestamp.After(ts) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (tx *memTx) LastMatchFor(ctx context.Context, team model.TeamID) (model.MatchRecord, bool, error) {
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()

	var best model.MatchRecord
	found := false
	for _, m := range tx.s.matches {
		if m.Side(team) == 0 {
			continue
		}
		if !found || best.Before(m) {
			best = m
			found = true
		}
	}
	return best, found, nil
}

func (tx *memTx) Team(ctx context.Context, id model.TeamID) (model.Team, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	return tx.teamLocked(id), nil
}

// teamLocked returns the team row, creating it at the baseline rating on
// first sight. Must be called with tx.s.mu held for writing.
func (tx *memTx) teamLocked(id model.TeamID) model.Team {
	if t, ok := tx.s.teams[id]; ok {
		return t
	}
	t := model.Team{ID: id, Rating: tx.s.baseline}
	tx.s.teams[id] = t

	tx.undo = append(tx.undo, func() { delete(tx.s.teams, id) })
	return t
}

func (tx *memTx) SetRating(ctx context.Context, id model.TeamID, newRating int) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	prev := tx.teamLocked(id)
	t := prev
	t.Rating = newRating
	tx.s.teams[id] = t

	tx.undo = append(tx.undo, func() { tx.s.teams[id] = prev })
	return nil
}

func (tx *memTx) ApplyStats(ctx context.Context, id model.TeamID, d model.StatsDelta) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	prev := tx.teamLocked(id)
	t := prev
	t.Played += d.Played
	t.Won += d.Won
	t.Lost += d.Lost
	t.Drawn += d.Drawn
	tx.s.teams[id] = t

	tx.undo = append(tx.undo, func() { tx.s.teams[id] = prev })
	return nil
}

func (tx *memTx) AppendHistory(ctx context.Context, h model.EditHistoryRecord) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	tx.s.history = append(tx.s.history, h)

	tx.undo = append(tx.undo, func() {
		tx.s.history = tx.s.history[:len(tx.s.history)-1]
	})
	return nil
}
