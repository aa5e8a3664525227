package utils

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/rand"
)

// An imprecise float approximate comparison. "optional" variance with ... args strategy
func FloatEquals(a float64, b float64, inputVariance ...float64) bool {
	variance := 0.001
	if len(inputVariance) >= 1 {
		variance = inputVariance[0]
	}
	return math.Abs(a-b) < variance
}

func Max[T constraints.Ordered](x, y T) T {
	if x < y {
		return y
	}
	return x
}

func Min[T constraints.Ordered](x, y T) T {
	if y < x {
		return y
	}
	return x
}

func MaxSlice[T constraints.Ordered](slice []T) T {
	max := slice[0]
	for i := range slice {
		max = Max(max, slice[i])
	}
	return max
}

func Median[T constraints.Integer | constraints.Float](n []T) T {
	return Percentile(n, 50)
}

func Percentile[T constraints.Integer | constraints.Float](n []T, percentile int) T {
	if len(n) == 0 {
		log.Warn().Msg("WARNING: Percentile called on empty slice")
		return 0
	}
	copyN := make([]T, len(n))
	copy(copyN, n)
	sort.Slice(copyN, func(i, j int) bool { return copyN[i] < copyN[j] })

	idx := int((float64(percentile) / 100.0) * float64(len(copyN)))
	if idx >= len(copyN) {
		idx = len(copyN) - 1
	}
	return copyN[idx]
}

// Fisher-Yates, driven by the given generator so callers can reproduce an order from a seed.
func Shuffle[T any](rng *rand.Rand, slice []T) {
	for i := range slice {
		j := rng.Intn(i + 1)
		slice[i], slice[j] = slice[j], slice[i]
	}
}

// Fills slice with 0..len-1.
func Iota[T constraints.Integer](slice []T) {
	for i := range slice {
		slice[i] = T(i)
	}
}
