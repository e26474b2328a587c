// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/allejo/LeagueOverseer/internal/domain/model"
)

// RatingDependencies defines the interface for rating reads.
type RatingDependencies interface {
	TeamRating(ctx context.Context, id model.TeamID) (model.Team, error)
}

// RatingHandler handles team rating requests.
type RatingHandler struct {
	deps RatingDependencies
}

// NewRatingHandler creates a new rating handler.
func NewRatingHandler(deps RatingDependencies) *RatingHandler {
	return &RatingHandler{deps: deps}
}

// HandleGetRating handles GET /teams/{team_id}/rating requests.
func (h *RatingHandler) HandleGetRating(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract the path parameters after /teams/
	rest := strings.TrimPrefix(r.URL.Path, "/teams/")
	idPart, ok := strings.CutSuffix(rest, "/rating")
	if !ok || idPart == "" || strings.Contains(idPart, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	team, err := h.deps.TeamRating(r.Context(), model.TeamID(id))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTeamView(team))
}
