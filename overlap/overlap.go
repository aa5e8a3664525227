// Package overlap scores an inferred group assignment against a planted one.
package overlap

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/combin"
)

var ErrMismatch = errors.New("assignments do not match")

// Overlap is the fraction of nodes whose estimated group (1..q) agrees with the actual one, maximised over every
// relabelling of the estimate, then normalised so that guessing the largest group scores 0 and a perfect match
// scores 1: (ovlp − max n) / (1 − max n). n are the actual proportions; nil derives them from actual.
// When max n is 1 the score is 1 for a perfect match and 0 otherwise.
func Overlap(q int, n []float64, estimated, actual []int) (float64, error) {
	if q < 1 {
		return 0, errors.Wrapf(ErrMismatch, "q must be at least 1, got %d", q)
	}
	if len(estimated) != len(actual) || len(actual) == 0 {
		return 0, errors.Wrapf(ErrMismatch, "%d estimated against %d actual", len(estimated), len(actual))
	}
	for u := range actual {
		if estimated[u] < 1 || estimated[u] > q || actual[u] < 1 || actual[u] > q {
			return 0, errors.Wrapf(ErrMismatch, "node %d has groups %d and %d, outside 1..%d", u, estimated[u], actual[u], q)
		}
	}
	if n == nil {
		n = Proportions(q, actual)
	} else if len(n) != q {
		return 0, errors.Wrapf(ErrMismatch, "n has length %d, expected %d", len(n), q)
	}

	// confusion[a*q+b] counts nodes estimated a and actually b.
	confusion := make([]int, q*q)
	for u := range actual {
		confusion[(estimated[u]-1)*q+actual[u]-1]++
	}
	best := 0
	for _, perm := range combin.Permutations(q, q) {
		agree := 0
		for a, b := range perm {
			agree += confusion[a*q+b]
		}
		if agree > best {
			best = agree
		}
	}
	ovlp := float64(best) / float64(len(actual))

	maxN := floats.Max(n)
	if maxN >= 1 {
		if best == len(actual) {
			return 1, nil
		}
		return 0, nil
	}
	return (ovlp - maxN) / (1 - maxN), nil
}

// Proportions are the group fractions of a 1-based assignment.
func Proportions(q int, groups []int) []float64 {
	n := make([]float64, q)
	for _, g := range groups {
		n[g-1]++
	}
	floats.Scale(1/float64(len(groups)), n)
	return n
}
