// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	service "github.com/allejo/LeagueOverseer/internal/app"
	"github.com/allejo/LeagueOverseer/internal/domain/directory"
	"github.com/allejo/LeagueOverseer/internal/domain/model"
	"github.com/allejo/LeagueOverseer/internal/domain/rating"
	"github.com/allejo/LeagueOverseer/internal/domain/validate"
	"github.com/allejo/LeagueOverseer/pkg/metrics"

	"github.com/allejo/LeagueOverseer/internal/adapters/repository"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EnterMatch(ctx context.Context, rep service.MatchReport) (service.Result, error)
	EditMatch(ctx context.Context, id model.MatchID, rep service.MatchReport) (service.Result, error)
	DeleteMatch(ctx context.Context, id model.MatchID, deletedBy string) (service.Result, error)

	TeamRating(ctx context.Context, id model.TeamID) (model.Team, error)
	Standings(ctx context.Context) ([]model.Team, error)

	AssignPlayer(ctx context.Context, playerID string, team model.TeamID, teamName string)
	RosterMembers(ctx context.Context) []directory.Member
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	matchesHandler   *MatchesHandler
	standingsHandler *StandingsHandler
	ratingHandler    *RatingHandler
	rosterHandler    *RosterHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		matchesHandler:   NewMatchesHandler(deps),
		standingsHandler: NewStandingsHandler(deps),
		ratingHandler:    NewRatingHandler(deps),
		rosterHandler:    NewRosterHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/matches", MetricsMiddleware(s.matchesHandler.HandlePostMatch, "matches"))
	mux.HandleFunc("/matches/", MetricsMiddleware(s.matchesHandler.HandleMatchByID, "match"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
	mux.HandleFunc("/teams/", MetricsMiddleware(s.ratingHandler.HandleGetRating, "rating"))
	mux.HandleFunc("/roster", MetricsMiddleware(s.rosterHandler.HandleRoster, "roster"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

// matchRequest mirrors the wire schema for POST /matches and
// PUT /matches/{id}. Each side names either a team id or the participant
// list for the directory to resolve.
type matchRequest struct {
	TeamA model.TeamID `json:"team_a,omitempty"`
	TeamB model.TeamID `json:"team_b,omitempty"`

	ParticipantsA []string `json:"participants_a,omitempty"`
	ParticipantsB []string `json:"participants_b,omitempty"`

	PointsA    int    `json:"points_a"`
	PointsB    int    `json:"points_b"`
	TS         string `json:"ts"`
	Duration   int    `json:"duration"`
	ReportedBy string `json:"reported_by"`
}

func (m matchRequest) validate() error {
	switch {
	case m.TeamA == 0 && len(m.ParticipantsA) == 0:
		return errors.New("missing team_a or participants_a")
	case m.TeamB == 0 && len(m.ParticipantsB) == 0:
		return errors.New("missing team_b or participants_b")
	case m.Duration <= 0:
		return errors.New("missing duration")
	case strings.TrimSpace(m.TS) == "":
		return errors.New("missing ts")
	}
	if _, err := time.Parse(time.RFC3339, m.TS); err != nil {
		return errors.New("invalid ts; must be RFC3339")
	}
	return nil
}

func (m matchRequest) toReport() service.MatchReport {
	ts, _ := time.Parse(time.RFC3339, m.TS)
	return service.MatchReport{
		TeamA:         m.TeamA,
		TeamB:         m.TeamB,
		ParticipantsA: m.ParticipantsA,
		ParticipantsB: m.ParticipantsB,
		PointsA:       m.PointsA,
		PointsB:       m.PointsB,
		Timestamp:     ts,
		Duration:      m.Duration,
		ReportedBy:    m.ReportedBy,
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service and engine failures to HTTP
// status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateReport):
		writeError(w, http.StatusConflict, "duplicate", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrLockUnavailable):
		writeError(w, http.StatusServiceUnavailable, "busy", err)
	case errors.Is(err, validate.ErrSameTeam),
		errors.Is(err, validate.ErrUnresolvedTeam),
		errors.Is(err, directory.ErrAmbiguousTeam),
		errors.Is(err, directory.ErrUnresolvedTeam),
		errors.Is(err, rating.ErrInvalidInput),
		errors.Is(err, rating.ErrUnsupportedDuration):
		writeError(w, http.StatusUnprocessableEntity, "invalid_report", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
