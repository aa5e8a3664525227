package mathutils

import (
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// Affinity is the symmetric q×q group affinity matrix c.
// MulVecTo reuses internal vector headers, so one Affinity must not be shared between goroutines. Each solver builds its own.
type Affinity struct {
	q   int
	sym *mat.SymDense
	x   mat.VecDense
	y   mat.VecDense
}

// NewAffinity copies c, which must be square. Off-diagonal pairs are averaged so the result is exactly symmetric.
func NewAffinity(c [][]float64) *Affinity {
	q := len(c)
	sym := mat.NewSymDense(q, nil)
	for a := 0; a < q; a++ {
		sym.SetSym(a, a, c[a][a])
		for b := a + 1; b < q; b++ {
			sym.SetSym(a, b, (c[a][b]+c[b][a])/2)
		}
	}
	return &Affinity{q: q, sym: sym}
}

func (c *Affinity) At(a, b int) float64 { return c.sym.At(a, b) }

// MulVecTo writes c·v into dst. dst and v must not overlap.
func (c *Affinity) MulVecTo(dst, v []float64) {
	c.x.SetRawVector(blas64.Vector{N: c.q, Inc: 1, Data: v})
	c.y.SetRawVector(blas64.Vector{N: c.q, Inc: 1, Data: dst})
	c.y.MulVec(c.sym, &c.x)
}

// Quad returns vᵀ c v.
func (c *Affinity) Quad(v []float64) float64 {
	x := mat.NewVecDense(c.q, v)
	return mat.Inner(x, c.sym, x)
}
