// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/allejo/LeagueOverseer/internal/domain/directory"
	"github.com/allejo/LeagueOverseer/internal/domain/model"
)

// RosterDependencies defines the interface for league directory access.
type RosterDependencies interface {
	AssignPlayer(ctx context.Context, playerID string, team model.TeamID, teamName string)
	RosterMembers(ctx context.Context) []directory.Member
}

// RosterHandler handles league directory requests.
type RosterHandler struct {
	deps RosterDependencies
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps RosterDependencies) *RosterHandler {
	return &RosterHandler{deps: deps}
}

// assignRequest mirrors the wire schema for POST /roster. A zero team_id
// removes the player from the directory.
type assignRequest struct {
	PlayerID string       `json:"player_id"`
	TeamID   model.TeamID `json:"team_id"`
	TeamName string       `json:"team_name,omitempty"`
}

type memberView struct {
	PlayerID string       `json:"player_id"`
	TeamID   model.TeamID `json:"team_id"`
	TeamName string       `json:"team_name"`
}

// HandleRoster handles GET and POST /roster requests. Game servers pull
// the full snapshot with GET; the league site pushes membership changes
// with POST.
func (h *RosterHandler) HandleRoster(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		members := h.deps.RosterMembers(r.Context())
		out := make([]memberView, len(members))
		for i, m := range members {
			out[i] = memberView{PlayerID: m.PlayerID, TeamID: m.Team, TeamName: m.TeamName}
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req assignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		if strings.TrimSpace(req.PlayerID) == "" {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing player_id"))
			return
		}
		h.deps.AssignPlayer(r.Context(), req.PlayerID, req.TeamID, req.TeamName)
		w.WriteHeader(http.StatusNoContent)

	default:
		http.NotFound(w, r)
	}
}
