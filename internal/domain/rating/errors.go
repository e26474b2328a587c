package rating

import "errors"

// Sentinel kinds for formula errors.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedDuration = errors.New("unsupported match duration")
)
