// Package repository defines the match store abstraction the rating
// engine depends on, plus its in-memory and Postgres implementations.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/allejo/LeagueOverseer/internal/domain/model"
	"github.com/allejo/LeagueOverseer/internal/domain/rating"
	"github.com/allejo/LeagueOverseer/pkg/metrics"
)

//go:embed schema.sql
var schema embed.FS

// lockNotAvailable is the SQLSTATE Postgres raises when lock_timeout
// expires while waiting on LOCK TABLE.
const lockNotAvailable = "55P03"

const matchColumns = "id, ts, team_a, team_b, points_a, points_b, duration, rating_after_a, rating_after_b, reported_by"

// PGStore is a Postgres-backed Store. Exclusive scopes map onto a
// transaction holding ACCESS EXCLUSIVE table locks, so all-or-nothing
// semantics come from the database rather than an undo journal.
type PGStore struct {
	pool     *pgxpool.Pool
	lockWait time.Duration
	baseline int
}

// PGOption applies a configuration option to the PGStore.
type PGOption func(*PGStore)

// WithPGLockWait bounds how long a scope waits on table locks.
func WithPGLockWait(d time.Duration) PGOption {
	return func(s *PGStore) {
		if d > 0 {
			s.lockWait = d
		}
	}
}

// WithPGBaselineRating overrides the rating assigned to teams without
// match history.
func WithPGBaselineRating(r int) PGOption {
	return func(s *PGStore) {
		if r > 0 {
			s.baseline = r
		}
	}
}

// NewPGStore connects to Postgres and verifies the connection.
func NewPGStore(ctx context.Context, dsn string, opts ...PGOption) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, wrapStoreErr("connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapStoreErr("ping", err)
	}

	s := &PGStore{
		pool:     pool,
		lockWait: defaultLockWait,
		baseline: rating.Baseline,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Migrate applies the embedded schema. Idempotent.
func (s *PGStore) Migrate(ctx context.Context) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := s.pool.Exec(ctx, string(sqlBytes)); err != nil {
		return wrapStoreErr("migrate", err)
	}
	return nil
}

// WithExclusiveScope implements Store.
func (s *PGStore) WithExclusiveScope(ctx context.Context, tables []Table, body func(tx Tx) error) error {
	start := time.Now()

	pgtx, err := s.pool.Begin(ctx)
	if err != nil {
		return wrapStoreErr("begin", err)
	}
	defer pgtx.Rollback(ctx) //nolint:errcheck // no-op after commit

	// lock_timeout only accepts a literal, but the value is our own
	// configured duration, never caller input.
	timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockWait.Milliseconds())
	if _, err := pgtx.Exec(ctx, timeout); err != nil {
		return wrapStoreErr("set lock_timeout", err)
	}

	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = string(t)
	}
	lock := "LOCK TABLE " + strings.Join(names, ", ") + " IN ACCESS EXCLUSIVE MODE"
	if _, err := pgtx.Exec(ctx, lock); err != nil {
		if isLockTimeout(err) {
			metrics.RecordLockTimeout()
		}
		return wrapStoreErr("lock tables", err)
	}
	metrics.ObserveLockWait(time.Since(start))

	if err := body(&pgTx{tx: pgtx, baseline: s.baseline}); err != nil {
		return err
	}
	if err := pgtx.Commit(ctx); err != nil {
		return wrapStoreErr("commit", err)
	}
	return nil
}

// Team implements Store.
func (s *PGStore) Team(ctx context.Context, id model.TeamID) (model.Team, error) {
	return scanTeam(ctx, s.pool, id)
}

// Standings implements Store.
func (s *PGStore) Standings(ctx context.Context) ([]model.Team, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, rating, played, won, lost, drawn
		  FROM teams
		 ORDER BY rating DESC, id ASC
	`)
	if err != nil {
		return nil, wrapStoreErr("standings", err)
	}
	defer rows.Close()

	var out []model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Rating, &t.Played, &t.Won, &t.Lost, &t.Drawn); err != nil {
			return nil, wrapStoreErr("standings", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("standings", err)
	}
	return out, nil
}

// UpsertTeam implements Store.
func (s *PGStore) UpsertTeam(ctx context.Context, t model.Team) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO teams (id, name, rating, played, won, lost, drawn)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		  SET name = EXCLUDED.name,
		      rating = EXCLUDED.rating,
		      played = EXCLUDED.played,
		      won = EXCLUDED.won,
		      lost = EXCLUDED.lost,
		      drawn = EXCLUDED.drawn
	`, t.ID, t.Name, t.Rating, t.Played, t.Won, t.Lost, t.Drawn)
	if err != nil {
		return wrapStoreErr("upsert team", err)
	}
	return nil
}

// Close implements Store.
func (s *PGStore) Close() { s.pool.Close() }

// querier covers both pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanTeam(ctx context.Context, q querier, id model.TeamID) (model.Team, error) {
	var t model.Team
	err := q.QueryRow(ctx, `
		SELECT id, name, rating, played, won, lost, drawn
		  FROM teams WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Rating, &t.Played, &t.Won, &t.Lost, &t.Drawn)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Team{}, fmt.Errorf("team %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Team{}, wrapStoreErr("team", err)
	}
	return t, nil
}

// pgTx implements Tx inside one database transaction.
type pgTx struct {
	tx       pgx.Tx
	baseline int
}

func (t *pgTx) RatingAsOf(ctx context.Context, team model.TeamID, ts time.Time) (int, error) {
	var teamA model.TeamID
	var afterA, afterB int
	err := t.tx.QueryRow(ctx, `
		SELECT team_a, rating_after_a, rating_after_b
		  FROM matches
		 WHERE ts < $2 AND (team_a = $1 OR team_b = $1)
		 ORDER BY ts DESC, id DESC
		 LIMIT 1
	`, team, ts).Scan(&teamA, &afterA, &afterB)
	if errors.Is(err, pgx.ErrNoRows) {
		return t.baseline, nil
	}
	if err != nil {
		return 0, wrapStoreErr("rating as of", err)
	}
	if teamA == team {
		return afterA, nil
	}
	return afterB, nil
}

func (t *pgTx) Get(ctx context.Context, id model.MatchID) (model.MatchRecord, error) {
	rec, err := scanMatch(t.tx.QueryRow(ctx,
		"SELECT "+matchColumns+" FROM matches WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.MatchRecord{}, fmt.Errorf("match %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.MatchRecord{}, wrapStoreErr("get match", err)
	}
	return rec, nil
}

func (t *pgTx) Insert(ctx context.Context, rec model.MatchRecord) (model.MatchID, error) {
	var id model.MatchID
	err := t.tx.QueryRow(ctx, `
		INSERT INTO matches (ts, team_a, team_b, points_a, points_b, duration,
		                     rating_after_a, rating_after_b, reported_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, rec.Timestamp, rec.TeamA, rec.TeamB, rec.PointsA, rec.PointsB,
		rec.Duration, rec.RatingAfterA, rec.RatingAfterB, rec.ReportedBy).Scan(&id)
	if err != nil {
		return 0, wrapStoreErr("insert match", err)
	}
	return id, nil
}

func (t *pgTx) Update(ctx context.Context, id model.MatchID, rec model.MatchRecord) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE matches
		   SET ts = $2, team_a = $3, team_b = $4, points_a = $5, points_b = $6,
		       duration = $7, rating_after_a = $8, rating_after_b = $9, reported_by = $10
		 WHERE id = $1
	`, id, rec.Timestamp, rec.TeamA, rec.TeamB, rec.PointsA, rec.PointsB,
		rec.Duration, rec.RatingAfterA, rec.RatingAfterB, rec.ReportedBy)
	if err != nil {
		return wrapStoreErr("update match", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("match %d: %w", id, ErrNotFound)
	}
	return nil
}

func (t *pgTx) Delete(ctx context.Context, id model.MatchID) (model.MatchRecord, error) {
	rec, err := scanMatch(t.tx.QueryRow(ctx,
		"DELETE FROM matches WHERE id = $1 RETURNING "+matchColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.MatchRecord{}, fmt.Errorf("match %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.MatchRecord{}, wrapStoreErr("delete match", err)
	}
	return rec, nil
}

func (t *pgTx) MatchesAfter(ctx context.Context, ts time.Time) ([]model.MatchRecord, error) {
	rows, err := t.tx.Query(ctx,
		"SELECT "+matchColumns+" FROM matches WHERE ts > $1 ORDER BY ts ASC, id ASC", ts)
	if err != nil {
		return nil, wrapStoreErr("matches after", err)
	}
	defer rows.Close()

	var out []model.MatchRecord
	for rows.Next() {
		rec, err := scanMatch(rows)
		if err != nil {
			return nil, wrapStoreErr("matches after", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("matches after", err)
	}
	return out, nil
}

func (t *pgTx) LastMatchFor(ctx context.Context, team model.TeamID) (model.MatchRecord, bool, error) {
	rec, err := scanMatch(t.tx.QueryRow(ctx,
		"SELECT "+matchColumns+" FROM matches WHERE team_a = $1 OR team_b = $1 ORDER BY ts DESC, id DESC LIMIT 1",
		team))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.MatchRecord{}, false, nil
	}
	if err != nil {
		return model.MatchRecord{}, false, wrapStoreErr("last match", err)
	}
	return rec, true, nil
}

func (t *pgTx) Team(ctx context.Context, id model.TeamID) (model.Team, error) {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO teams (id, name, rating) VALUES ($1, '', $2)
		ON CONFLICT (id) DO NOTHING
	`, id, t.baseline)
	if err != nil {
		return model.Team{}, wrapStoreErr("init team", err)
	}
	return scanTeam(ctx, t.tx, id)
}

func (t *pgTx) SetRating(ctx context.Context, id model.TeamID, newRating int) error {
	if _, err := t.Team(ctx, id); err != nil {
		return err
	}
	if _, err := t.tx.Exec(ctx, "UPDATE teams SET rating = $2 WHERE id = $1", id, newRating); err != nil {
		return wrapStoreErr("set rating", err)
	}
	return nil
}

func (t *pgTx) ApplyStats(ctx context.Context, id model.TeamID, d model.StatsDelta) error {
	if _, err := t.Team(ctx, id); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, `
		UPDATE teams
		   SET played = played + $2, won = won + $3, lost = lost + $4, drawn = drawn + $5
		 WHERE id = $1
	`, id, d.Played, d.Won, d.Lost, d.Drawn)
	if err != nil {
		return wrapStoreErr("apply stats", err)
	}
	return nil
}

func (t *pgTx) AppendHistory(ctx context.Context, h model.EditHistoryRecord) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO matches_edit_history
		       (id, match_id, recorded_at, edited_by, ts, team_a, team_b,
		        points_a, points_b, duration, rating_after_a, rating_after_b)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, h.ID, h.MatchID, h.RecordedAt, h.EditedBy,
		h.Before.Timestamp, h.Before.TeamA, h.Before.TeamB,
		h.Before.PointsA, h.Before.PointsB, h.Before.Duration,
		h.Before.RatingAfterA, h.Before.RatingAfterB)
	if err != nil {
		return wrapStoreErr("append history", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (model.MatchRecord, error) {
	var m model.MatchRecord
	err := row.Scan(&m.ID, &m.Timestamp, &m.TeamA, &m.TeamB, &m.PointsA, &m.PointsB,
		&m.Duration, &m.RatingAfterA, &m.RatingAfterB, &m.ReportedBy)
	return m, err
}

func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == lockNotAvailable
}

// wrapStoreErr maps database failures onto the package's sentinel kinds
// so callers can distinguish retryable lock contention from outages.
func wrapStoreErr(op string, err error) error {
	if isLockTimeout(err) {
		return fmt.Errorf("%s: %w", op, ErrLockUnavailable)
	}
	return fmt.Errorf("%s: %s: %w", op, err, ErrStoreUnavailable)
}
