// Package sampling provides the random-sampling primitives the Gibbs
// sampler builds on. Every function takes an explicit *rand.Rand rather
// than reading from a package-level generator, so callers can seed
// their own runs for reproducible training.
package sampling

import "math/rand"

// Uniform returns a uniformly distributed integer in [0, n). It panics
// if n <= 0.
func Uniform(r *rand.Rand, n int) int {
	if n <= 0 {
		panic("sampling: Uniform requires n > 0")
	}
	return r.Intn(n)
}

// Multinomial draws an index from weights with probability proportional
// to weights[i], using a single uniform draw over the cumulative sum.
// It panics if weights is empty or every weight is non-positive.
//
// Negative weights are treated as zero-probability rather than
// rejected, matching the original sampler's tolerance of numerically
// negative near-zero conditional probabilities.
func Multinomial(r *rand.Rand, weights []float64) int {
	if len(weights) == 0 {
		panic("sampling: Multinomial requires a non-empty weights slice")
	}

	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		panic("sampling: Multinomial requires at least one positive weight")
	}

	target := r.Float64() * total
	var running float64
	for i, w := range weights {
		if w > 0 {
			running += w
		}
		if running >= target {
			return i
		}
	}
	// Floating-point rounding can leave target a hair above the final
	// running total; fall back to the last valid index.
	return len(weights) - 1
}
