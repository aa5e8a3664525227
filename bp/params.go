package bp

import (
	"math"

	"github.com/pkg/errors"

	"github.com/ScottSallinen/cavity/graph"
	"github.com/ScottSallinen/cavity/mathutils"
)

var ErrInvalidParameters = errors.New("invalid parameters")

const (
	// Tolerance on Σn = 1.
	proportionTolerance = 1e-6
	// Relative tolerance on c being symmetric.
	symmetryTolerance = 1e-9
	// Partition values below this are clamped, and ratio denominators below it trigger a recompute.
	MinPartition = 1e-300
)

// Params are the SBM parameters: q groups, group proportions N (sums to 1), and the q×q symmetric
// affinity matrix C where C[a][b] is proportional to the expected number of edges between a node of
// group a and one of group b.
type Params struct {
	Q int
	N []float64
	C [][]float64
}

// NewParams copies n and c.
func NewParams(n []float64, c [][]float64) Params {
	p := Params{Q: len(n), N: append([]float64(nil), n...), C: make([][]float64, len(c))}
	for a := range c {
		p.C[a] = append([]float64(nil), c[a]...)
	}
	return p
}

func (p Params) Clone() Params {
	out := NewParams(p.N, p.C)
	out.Q = p.Q
	return out
}

// Validate returns an error wrapping ErrInvalidParameters if q < 1, n has the wrong length, is negative or
// does not sum to 1, or c is not a non-negative symmetric q×q matrix.
func (p Params) Validate() error {
	if p.Q < 1 {
		return errors.Wrapf(ErrInvalidParameters, "q must be at least 1, got %d", p.Q)
	}
	if len(p.N) != p.Q {
		return errors.Wrapf(ErrInvalidParameters, "n has length %d, expected %d", len(p.N), p.Q)
	}
	sum := 0.0
	for a, na := range p.N {
		if !(na >= 0) || math.IsInf(na, 0) {
			return errors.Wrapf(ErrInvalidParameters, "n[%d] = %v", a, na)
		}
		sum += na
	}
	if math.Abs(sum-1) > proportionTolerance {
		return errors.Wrapf(ErrInvalidParameters, "n sums to %v", sum)
	}
	if len(p.C) != p.Q {
		return errors.Wrapf(ErrInvalidParameters, "c has %d rows, expected %d", len(p.C), p.Q)
	}
	for a := range p.C {
		if len(p.C[a]) != p.Q {
			return errors.Wrapf(ErrInvalidParameters, "c row %d has %d entries, expected %d", a, len(p.C[a]), p.Q)
		}
		for b, cab := range p.C[a] {
			if !(cab >= 0) || math.IsInf(cab, 0) {
				return errors.Wrapf(ErrInvalidParameters, "c[%d][%d] = %v", a, b, cab)
			}
			if cba := p.C[b][a]; math.Abs(cab-cba) > symmetryTolerance*math.Max(1, math.Max(cab, cba)) {
				return errors.Wrapf(ErrInvalidParameters, "c is not symmetric at [%d][%d]", a, b)
			}
		}
	}
	return nil
}

// Distance is L1(n−n') + L1(c−c'), the learning convergence measure.
func (p Params) Distance(o Params) float64 {
	d := mathutils.L1(p.N, o.N)
	for a := range p.C {
		d += mathutils.L1(p.C[a], o.C[a])
	}
	return d
}

// AssortativeGuess is the usual starting point when nothing is known: uniform proportions, and
// c = c_out·J + (c_in−c_out)·I with c_in/c_out = ratio, scaled so that the expected degree nᵀcn
// matches the observed average degree of adj. A ratio below 1 guesses a disassortative structure.
func AssortativeGuess(adj graph.Adjacency, q int, ratio float64) (Params, error) {
	if q < 1 {
		return Params{}, errors.Wrapf(ErrInvalidParameters, "q must be at least 1, got %d", q)
	}
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return Params{}, errors.Wrapf(ErrInvalidParameters, "affinity ratio must be positive, got %v", ratio)
	}
	avg := adj.AverageDegree()
	cOut := float64(q) * avg / (ratio + float64(q) - 1)
	cIn := ratio * cOut

	p := Params{Q: q, N: make([]float64, q), C: make([][]float64, q)}
	mathutils.Uniform(p.N)
	for a := range p.C {
		p.C[a] = make([]float64, q)
		for b := range p.C[a] {
			p.C[a][b] = cOut
		}
		p.C[a][a] = cIn
	}
	return p, nil
}
