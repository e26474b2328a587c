// Package report turns a recompute's rating change set into the
// machine-readable summary handed back to callers.
package report

import (
	"fmt"
	"sort"

	"github.com/allejo/LeagueOverseer/internal/domain/model"
)

// Change is one team's net rating movement from a single engine call.
type Change struct {
	TeamID   model.TeamID `json:"team_id"`
	TeamName string       `json:"team_name"`
	Old      int          `json:"old_rating"`
	New      int          `json:"new_rating"`
	Delta    int          `json:"delta"`
}

// Summarize flattens a change set into a list ordered by team name (ties
// by id). Teams whose rating did not move are omitted. Pure
// transformation; no persistence.
func Summarize(set model.RatingChangeSet) []Change {
	out := make([]Change, 0, len(set))
	for id, c := range set {
		if c.Old == c.New {
			continue
		}
		out = append(out, Change{
			TeamID:   id,
			TeamName: c.Name,
			Old:      c.Old,
			New:      c.New,
			Delta:    c.Delta(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamName != out[j].TeamName {
			return out[i].TeamName < out[j].TeamName
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out
}

// MatchLine renders the one-line summary game servers echo to players,
// e.g. "(+/- 25) Sharks [5] vs [2] Comets". The winning side is printed
// first; a draw keeps the reported order.
func MatchLine(nameA string, pointsA int, nameB string, pointsB, delta int) string {
	if pointsB > pointsA {
		nameA, nameB = nameB, nameA
		pointsA, pointsB = pointsB, pointsA
	}
	if delta < 0 {
		delta = -delta
	}
	return fmt.Sprintf("(+/- %d) %s [%d] vs [%d] %s", delta, nameA, pointsA, pointsB, nameB)
}
