// Package rating implements the Elo-style delta computation for league
// matches.
package rating

import (
	"fmt"
	"math"
)

// Default formula configuration constants.
const (
	// Baseline is the rating assigned to a team with no match history.
	Baseline = 1200

	defaultKFactor = 50
)

// DefaultDurationWeights maps the officially allowed match lengths (in
// minutes) to their delta weighting. A full-length 30 minute match counts
// in full; a shortened 20 minute match counts two thirds.
func DefaultDurationWeights() map[int]float64 {
	return map[int]float64{
		30: 1.0,
		20: 2.0 / 3.0,
	}
}

// Formula computes signed rating deltas. It holds only configuration, has
// no side effects, and is safe for unrestricted concurrent use.
type Formula struct {
	kFactor float64
	weights map[int]float64
}

// NewFormula creates a Formula with configuration options.
func NewFormula(opts ...Option) *Formula {
	f := &Formula{
		kFactor: defaultKFactor,
		weights: DefaultDurationWeights(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// ExpectedScore returns the win probability for a side rated ratingA
// against a side rated ratingB.
func (f *Formula) ExpectedScore(ratingA, ratingB int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(ratingB-ratingA)/400.0))
}

// WeightFor returns the configured weighting for a match duration, or
// ErrUnsupportedDuration. Callers that persist data should check this
// before writing anything.
func (f *Formula) WeightFor(duration int) (float64, error) {
	w, ok := f.weights[duration]
	if !ok {
		return 0, fmt.Errorf("duration %d min: %w", duration, ErrUnsupportedDuration)
	}
	return w, nil
}

// ComputeDelta returns the signed rating adjustment for the side rated
// ratingA. Team A's rating becomes ratingA+delta and team B's becomes
// ratingB-delta.
//
// The outcome score is 1 for a team A win, 0.5 for a draw and 0 for a
// loss. The raw delta k*(score-expected) is weighted by the duration table
// and floored toward negative infinity in a single step; that rounding
// direction is part of the contract (a draw between equally rated teams is
// exactly 0, and fractional deltas never round in the loser's favor).
// Deltas are never clamped; 0 is a legal result.
func (f *Formula) ComputeDelta(ratingA, ratingB, pointsA, pointsB, duration int) (int, error) {
	if pointsA < 0 || pointsB < 0 {
		return 0, fmt.Errorf("negative points %d/%d: %w", pointsA, pointsB, ErrInvalidInput)
	}
	weight, err := f.WeightFor(duration)
	if err != nil {
		return 0, err
	}

	score := 0.0
	switch {
	case pointsA > pointsB:
		score = 1.0
	case pointsA == pointsB:
		score = 0.5
	}

	expected := f.ExpectedScore(ratingA, ratingB)
	return int(math.Floor(weight * f.kFactor * (score - expected))), nil
}
