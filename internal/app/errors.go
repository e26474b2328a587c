package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrDuplicateReport marks a match report whose fingerprint was
	// already entered.
	ErrDuplicateReport = errors.New("duplicate match report")
)
