// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	repository "github.com/allejo/LeagueOverseer/internal/adapters/repository"
	"github.com/allejo/LeagueOverseer/internal/domain/dedupe"
	"github.com/allejo/LeagueOverseer/internal/domain/directory"
	"github.com/allejo/LeagueOverseer/internal/domain/model"
	"github.com/allejo/LeagueOverseer/internal/domain/rating"
	"github.com/allejo/LeagueOverseer/internal/domain/report"
	"github.com/allejo/LeagueOverseer/internal/domain/validate"
	"github.com/allejo/LeagueOverseer/internal/engine"
	"github.com/allejo/LeagueOverseer/pkg/logger"
	"github.com/allejo/LeagueOverseer/pkg/metrics"
)

// MatchReport is one incoming report: a game server submits the two
// participant lists for the directory to resolve, while a league admin
// entering a match manually names the team ids directly.
type MatchReport struct {
	TeamA model.TeamID
	TeamB model.TeamID

	ParticipantsA []string
	ParticipantsB []string

	PointsA    int
	PointsB    int
	Timestamp  time.Time
	Duration   int
	ReportedBy string
}

// Result is what a successful mutation hands back to the API: which
// match was touched, the one-line summary game servers echo to players,
// and every team whose current rating moved.
type Result struct {
	MatchID model.MatchID   `json:"match_id"`
	Summary string          `json:"summary"`
	Changes []report.Change `json:"rating_changes"`
}

// Service implements the API dependencies for the league match system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	engine  *engine.Engine
	roster  *directory.Roster
	deduper dedupe.Deduper

	// Configuration
	storeDSN      string
	baseline      int
	kFactor       float64
	weights       map[int]float64
	lockWait      time.Duration
	dedupeSize    int
	recordHistory bool

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithStoreDSN selects the Postgres store. An empty DSN keeps the
// in-memory store.
func WithStoreDSN(dsn string) Option {
	return func(s *Service) {
		s.storeDSN = dsn
	}
}

// WithBaselineRating sets the rating for teams with no history.
func WithBaselineRating(baseline int) Option {
	return func(s *Service) {
		if baseline > 0 {
			s.baseline = baseline
		}
	}
}

// WithKFactor sets the rating formula's k-factor.
func WithKFactor(k float64) Option {
	return func(s *Service) {
		if k > 0 {
			s.kFactor = k
		}
	}
}

// WithDurationWeights sets the official match length table.
func WithDurationWeights(weights map[int]float64) Option {
	return func(s *Service) {
		if len(weights) > 0 {
			s.weights = weights
		}
	}
}

// WithLockWait bounds how long a writer waits for the match scope.
func WithLockWait(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lockWait = d
		}
	}
}

// WithDedupeSize sets the size of the duplicate-report cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithEditHistory toggles audit records for edits and deletions.
func WithEditHistory(enabled bool) Option {
	return func(s *Service) {
		s.recordHistory = enabled
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		baseline:      rating.Baseline,
		kFactor:       50,
		weights:       rating.DefaultDurationWeights(),
		lockWait:      5 * time.Second,
		dedupeSize:    4096,
		recordHistory: true,
		logger:        nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting league match service...")

	if s.storeDSN != "" {
		pg, err := repository.NewPGStore(ctx, s.storeDSN,
			repository.WithPGLockWait(s.lockWait),
			repository.WithPGBaselineRating(s.baseline),
		)
		if err != nil {
			return fmt.Errorf("connecting match store: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return fmt.Errorf("migrating match store: %w", err)
		}
		s.store = pg
		s.logger.Info(ctx, "using postgres store")
	} else {
		s.store = repository.NewMemStore(
			repository.WithLockWait(s.lockWait),
			repository.WithBaselineRating(s.baseline),
		)
		s.logger.Info(ctx, "using in-memory store")
	}

	formula := rating.NewFormula(
		rating.WithKFactor(s.kFactor),
		rating.WithDurationWeights(s.weights),
	)
	s.engine = engine.New(s.store, formula,
		engine.WithLogger(s.logger.Named("engine")),
		engine.WithBaselineRating(s.baseline),
		engine.WithEditHistory(s.recordHistory),
	)
	s.roster = directory.NewRoster()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)

	s.started = true
	s.logger.Info(ctx, "league match service started",
		logger.Int("baseline", s.baseline),
		logger.Float64("kFactor", s.kFactor),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping league match service...")

	if s.store != nil {
		s.store.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "league match service stopped")
}

// EnterMatch validates, deduplicates and enters one match report.
func (s *Service) EnterMatch(ctx context.Context, rep MatchReport) (Result, error) {
	teamA, teamB, err := s.resolveSides(ctx, rep)
	if err != nil {
		return Result{}, err
	}

	fp := dedupe.Fingerprint(teamA, teamB, rep.PointsA, rep.PointsB, rep.Timestamp)
	if s.deduper.SeenAndRecord(ctx, fp) {
		metrics.RecordReportDuplicate()
		s.logger.Info(ctx, "duplicate match report suppressed",
			logger.String("fingerprint", fp),
			logger.String("reportedBy", rep.ReportedBy),
		)
		return Result{}, fmt.Errorf("report %s: %w", fp, ErrDuplicateReport)
	}

	out, err := s.engine.EnterMatch(ctx, s.params(rep, teamA, teamB))
	if err != nil {
		// A failed entry must not block the retry that follows it.
		s.deduper.Unrecord(ctx, fp)
		return Result{}, err
	}

	return s.result(ctx, out), nil
}

// EditMatch replaces a stored match's values and recomputes everything
// the change invalidates.
func (s *Service) EditMatch(ctx context.Context, id model.MatchID, rep MatchReport) (Result, error) {
	teamA, teamB, err := s.resolveSides(ctx, rep)
	if err != nil {
		return Result{}, err
	}

	out, err := s.engine.EditMatch(ctx, id, s.params(rep, teamA, teamB))
	if err != nil {
		return Result{}, err
	}
	return s.result(ctx, out), nil
}

// DeleteMatch removes a stored match as if it never happened.
func (s *Service) DeleteMatch(ctx context.Context, id model.MatchID, deletedBy string) (Result, error) {
	out, err := s.engine.DeleteMatch(ctx, id, deletedBy)
	if err != nil {
		return Result{}, err
	}

	return Result{
		MatchID: out.Record.ID,
		Changes: s.changes(ctx, out),
	}, nil
}

// TeamRating returns a team's current standing; unknown teams read as
// unplayed teams at the baseline.
func (s *Service) TeamRating(ctx context.Context, id model.TeamID) (model.Team, error) {
	team, err := s.engine.RatingOf(ctx, id)
	if err != nil {
		return model.Team{}, err
	}
	if team.Name == "" {
		team.Name = s.teamName(ctx, id)
	}
	return team, nil
}

// Standings lists all tracked teams ordered by rating.
func (s *Service) Standings(ctx context.Context) ([]model.Team, error) {
	teams, err := s.store.Standings(ctx)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		if teams[i].Name == "" {
			teams[i].Name = s.teamName(ctx, teams[i].ID)
		}
	}
	metrics.UpdateTeamsTracked(len(teams))
	return teams, nil
}

// AssignPlayer adds or moves a player onto a team in the league
// directory. A zero team id removes the player.
func (s *Service) AssignPlayer(ctx context.Context, playerID string, team model.TeamID, teamName string) {
	s.roster.Assign(playerID, team, teamName)
}

// RosterMembers returns the directory snapshot game servers sync from.
func (s *Service) RosterMembers(ctx context.Context) []directory.Member {
	return s.roster.Members(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":    s.started,
		"baseline":   s.baseline,
		"dedupeSize": s.dedupeSize,
	}

	if s.started {
		stats["dedupeTracked"] = s.deduper.Size()
		stats["rosterSize"] = len(s.roster.Members(ctx))

		if counter, ok := s.store.(interface{ MatchCount(context.Context) int }); ok {
			n := counter.MatchCount(ctx)
			stats["matchesStored"] = n
			metrics.UpdateMatchesStored(n)
		}
	}

	return stats
}

// resolveSides maps each side of a report to a team id, going through
// the directory when participant lists were submitted, then applies the
// validation gate.
func (s *Service) resolveSides(ctx context.Context, rep MatchReport) (model.TeamID, model.TeamID, error) {
	teamA := rep.TeamA
	teamB := rep.TeamB

	var err error
	if len(rep.ParticipantsA) > 0 {
		if teamA, err = s.roster.ResolveTeam(ctx, rep.ParticipantsA); err != nil {
			return 0, 0, fmt.Errorf("side A: %w", err)
		}
	}
	if len(rep.ParticipantsB) > 0 {
		if teamB, err = s.roster.ResolveTeam(ctx, rep.ParticipantsB); err != nil {
			return 0, 0, fmt.Errorf("side B: %w", err)
		}
	}

	if err := validate.Teams(teamA, teamB); err != nil {
		return 0, 0, err
	}
	return teamA, teamB, nil
}

func (s *Service) params(rep MatchReport, teamA, teamB model.TeamID) engine.MatchParams {
	return engine.MatchParams{
		TeamA:      teamA,
		TeamB:      teamB,
		PointsA:    rep.PointsA,
		PointsB:    rep.PointsB,
		Timestamp:  rep.Timestamp,
		Duration:   rep.Duration,
		ReportedBy: rep.ReportedBy,
	}
}

func (s *Service) result(ctx context.Context, out engine.Outcome) Result {
	rec := out.Record
	summary := report.MatchLine(
		s.teamName(ctx, rec.TeamA), rec.PointsA,
		s.teamName(ctx, rec.TeamB), rec.PointsB,
		out.Delta,
	)
	return Result{
		MatchID: rec.ID,
		Summary: summary,
		Changes: s.changes(ctx, out),
	}
}

// changes flattens an outcome's change set, filling in names for teams
// whose store row never carried one.
func (s *Service) changes(ctx context.Context, out engine.Outcome) []report.Change {
	changes := report.Summarize(out.Changes)
	for i := range changes {
		if changes[i].TeamName == "" {
			changes[i].TeamName = s.teamName(ctx, changes[i].TeamID)
		}
	}
	return changes
}

// teamName prefers the directory's name, falls back to the store row,
// then to a plain id rendering.
func (s *Service) teamName(ctx context.Context, id model.TeamID) string {
	if name := s.roster.TeamName(ctx, id); name != "" {
		return name
	}
	if t, err := s.store.Team(ctx, id); err == nil && t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("Team %d", id)
}
