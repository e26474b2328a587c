// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	service "github.com/allejo/LeagueOverseer/internal/app"
	"github.com/allejo/LeagueOverseer/internal/domain/model"
)

// MatchDependencies defines the interface for match mutations.
type MatchDependencies interface {
	EnterMatch(ctx context.Context, rep service.MatchReport) (service.Result, error)
	EditMatch(ctx context.Context, id model.MatchID, rep service.MatchReport) (service.Result, error)
	DeleteMatch(ctx context.Context, id model.MatchID, deletedBy string) (service.Result, error)
}

// MatchesHandler handles match report requests.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// HandlePostMatch handles POST /matches requests.
func (h *MatchesHandler) HandlePostMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req, ok := decodeMatchRequest(w, r)
	if !ok {
		return
	}

	res, err := h.deps.EnterMatch(r.Context(), req.toReport())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// HandleMatchByID handles PUT and DELETE /matches/{id} requests.
func (h *MatchesHandler) HandleMatchByID(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPut:
		req, ok := decodeMatchRequest(w, r)
		if !ok {
			return
		}
		res, err := h.deps.EditMatch(r.Context(), id, req.toReport())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)

	case http.MethodDelete:
		res, err := h.deps.DeleteMatch(r.Context(), id, r.URL.Query().Get("deleted_by"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)

	default:
		http.NotFound(w, r)
	}
}

// matchID extracts the path parameter after /matches/.
func matchID(w http.ResponseWriter, r *http.Request) (model.MatchID, bool) {
	path := strings.TrimPrefix(r.URL.Path, "/matches/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return 0, false
	}
	id, err := strconv.ParseInt(path, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return 0, false
	}
	return model.MatchID(id), true
}

func decodeMatchRequest(w http.ResponseWriter, r *http.Request) (matchRequest, bool) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return matchRequest{}, false
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return matchRequest{}, false
	}
	return req, true
}
