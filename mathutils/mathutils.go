// Package mathutils holds the probability-vector bookkeeping shared by messages, marginals and the external field.
package mathutils

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// Uniform sets every entry of v to 1/len(v).
func Uniform(v []float64) {
	u := 1.0 / float64(len(v))
	for i := range v {
		v[i] = u
	}
}

// Normalize scales v in place to sum to 1. If the sum is zero or not finite, v becomes uniform and false is returned.
func Normalize(v []float64) bool {
	sum := floats.Sum(v)
	if !(sum > 0) || math.IsInf(sum, 0) {
		Uniform(v)
		return false
	}
	floats.Scale(1/sum, v)
	return true
}

// L1 distance between two equal length vectors.
func L1(a, b []float64) float64 {
	return floats.Distance(a, b, 1)
}

// ArgMax returns the index of the largest entry; ties go to the lowest index.
func ArgMax(v []float64) int {
	return floats.MaxIdx(v)
}

// RandomDistribution fills dst with strictly positive uniform draws, normalised to sum to 1.
func RandomDistribution(rng *rand.Rand, dst []float64) {
	for i := range dst {
		dst[i] = 1 - rng.Float64() // (0, 1]
	}
	Normalize(dst)
}

// MulScaled multiplies dst by v element-wise, then rescales dst so its largest entry is 1.
// Returns the log of the scale that was divided out, so a running product can be recovered exactly.
// A product that vanishes entirely is left as zeros with a log scale of -Inf.
func MulScaled(dst, v []float64) (logScale float64) {
	floats.Mul(dst, v)
	max := floats.Max(dst)
	if !(max > 0) {
		return math.Inf(-1)
	}
	if max == 1 {
		return 0
	}
	floats.Scale(1/max, dst)
	return math.Log(max)
}
