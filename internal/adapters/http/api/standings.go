// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/allejo/LeagueOverseer/internal/domain/model"
)

// StandingsDependencies defines the interface for standings reads.
type StandingsDependencies interface {
	Standings(ctx context.Context) ([]model.Team, error)
}

// StandingsHandler handles standings requests.
type StandingsHandler struct {
	deps StandingsDependencies
}

// NewStandingsHandler creates a new standings handler.
func NewStandingsHandler(deps StandingsDependencies) *StandingsHandler {
	return &StandingsHandler{deps: deps}
}

// HandleGetStandings handles GET /standings requests.
func (h *StandingsHandler) HandleGetStandings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	teams, err := h.deps.Standings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]teamView, len(teams))
	for i, t := range teams {
		out[i] = newTeamView(t)
	}
	writeJSON(w, http.StatusOK, out)
}

// teamView mirrors the read shape returned by team queries.
type teamView struct {
	TeamID model.TeamID `json:"team_id"`
	Name   string       `json:"name"`
	Rating int          `json:"rating"`
	Played int          `json:"played"`
	Won    int          `json:"won"`
	Lost   int          `json:"lost"`
	Drawn  int          `json:"drawn"`
}

func newTeamView(t model.Team) teamView {
	return teamView{
		TeamID: t.ID,
		Name:   t.Name,
		Rating: t.Rating,
		Played: t.Played,
		Won:    t.Won,
		Lost:   t.Lost,
		Drawn:  t.Drawn,
	}
}
