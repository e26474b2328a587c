package validate

import "errors"

// Sentinel kinds for report validation errors.
var (
	ErrSameTeam       = errors.New("same team on both sides")
	ErrUnresolvedTeam = errors.New("unresolved team")
)
