// Package rating implements the Elo-style delta computation for league
// matches.
package rating

// Option applies a configuration option to the Formula.
type Option func(*Formula)

// WithKFactor sets the base K factor.
func WithKFactor(k float64) Option {
	return func(f *Formula) {
		if k > 0 {
			f.kFactor = k
		}
	}
}

// WithDurationWeights replaces the duration weighting table. The map is
// copied; entries with non-positive weights are dropped.
func WithDurationWeights(weights map[int]float64) Option {
	return func(f *Formula) {
		if len(weights) == 0 {
			return
		}
		f.weights = make(map[int]float64, len(weights))
		for d, w := range weights {
			if d > 0 && w > 0 {
				f.weights[d] = w
			}
		}
	}
}
