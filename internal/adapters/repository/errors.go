package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound         = errors.New("record not found")
	ErrLockUnavailable  = errors.New("exclusive scope unavailable")
	ErrStoreUnavailable = errors.New("store unavailable")
)
