// Package validate rejects degenerate match reports before the rating
// engine takes any lock.
package validate

import (
	"fmt"

	"github.com/allejo/LeagueOverseer/internal/domain/model"
)

// Side names one side of a match report in validation errors.
type Side string

// Match report sides.
const (
	SideA Side = "A"
	SideB Side = "B"
)

// UnresolvedError reports which side of a match failed to resolve to a
// real team. It unwraps to ErrUnresolvedTeam.
type UnresolvedError struct {
	Side Side
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("side %s: unresolved team", e.Side)
}

func (e *UnresolvedError) Unwrap() error { return ErrUnresolvedTeam }

// Teams checks that a match report names two distinct, resolved teams.
// It returns nil, ErrSameTeam, or an *UnresolvedError for the offending
// side. On any error the engine must not be invoked at all.
func Teams(sideA, sideB model.TeamID) error {
	if sideA == 0 {
		return &UnresolvedError{Side: SideA}
	}
	if sideB == 0 {
		return &UnresolvedError{Side: SideB}
	}
	if sideA == sideB {
		return fmt.Errorf("team %d on both sides: %w", sideA, ErrSameTeam)
	}
	return nil
}
