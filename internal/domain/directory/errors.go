package directory

import "errors"

// Sentinel kinds for team resolution errors.
var (
	ErrUnresolvedTeam = errors.New("participants do not resolve to a team")
	ErrAmbiguousTeam  = errors.New("participants resolve to multiple teams")
)
