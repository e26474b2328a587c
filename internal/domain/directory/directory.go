// Package directory resolves reported match participants to league teams.
//
// Game servers report matches as two comma-separated lists of player ids;
// a report is only valid when every listed player is an active member of
// one and the same team. Mixed rosters and unknown players invalidate the
// side rather than guessing.
package directory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/allejo/LeagueOverseer/internal/domain/model"
)

// Resolver maps participant lists to team ids.
type Resolver interface {
	// ResolveTeam returns the single team every participant belongs to.
	// It fails with ErrUnresolvedTeam when no participant is a known
	// active player, and with ErrAmbiguousTeam when participants span
	// more than one team.
	ResolveTeam(ctx context.Context, participants []string) (model.TeamID, error)
}

// Member is one active player in the league directory.
type Member struct {
	PlayerID string
	Team     model.TeamID
	TeamName string
}

// Roster is an in-memory Resolver backed by a player -> team map.
type Roster struct {
	mu      sync.RWMutex
	members map[string]Member
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{members: make(map[string]Member)}
}

// Assign adds or moves a player onto a team. A zero team id removes the
// player from the directory.
func (r *Roster) Assign(playerID string, team model.TeamID, teamName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if team == 0 {
		delete(r.members, playerID)
		return
	}
	r.members[playerID] = Member{PlayerID: playerID, Team: team, TeamName: teamName}
}

// ResolveTeam implements Resolver.
func (r *Roster) ResolveTeam(ctx context.Context, participants []string) (model.TeamID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resolved := model.TeamID(0)
	for _, raw := range participants {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		m, ok := r.members[id]
		if !ok {
			return 0, fmt.Errorf("player %q not in directory: %w", id, ErrUnresolvedTeam)
		}
		if resolved == 0 {
			resolved = m.Team
			continue
		}
		if m.Team != resolved {
			return 0, fmt.Errorf("players span teams %d and %d: %w", resolved, m.Team, ErrAmbiguousTeam)
		}
	}
	if resolved == 0 {
		return 0, fmt.Errorf("no participants resolved: %w", ErrUnresolvedTeam)
	}
	return resolved, nil
}

// TeamName returns the directory name for a team, or "" when no active
// member carries it.
func (r *Roster) TeamName(ctx context.Context, id model.TeamID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.members {
		if m.Team == id {
			return m.TeamName
		}
	}
	return ""
}

// Members returns a stable snapshot of the directory ordered by player
// id, used by the roster dump endpoint game servers sync from.
func (r *Roster) Members(ctx context.Context) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}
