package bp

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ScottSallinen/cavity/enforce"
)

type evaluation struct {
	n          []float64
	c          [][]float64
	cAvg       float64 // n'ᵀ c' n', the re-estimated average degree.
	freeEnergy float64
	degenerate int
}

// evaluate computes the Bethe free energy of the current state and the re-estimated parameters in one pass
// over the edges. The solver state is not modified.
//
//	F = (Σ_(u,v) log Z_uv − 2 Σ_u log Z_u) / 2N − cAvg/2
//
// with Z_uv = m(u,v)·c·m(v,u) over directed edges, and Z_u = Σ_a n'_a e^{-h_a} Π_v (c·m(v,u))_a.
func (s *Solver) evaluate() (ev evaluation) {
	q := s.q
	N := float64(s.nodes)
	logMin := math.Log(MinPartition)

	ev.n = make([]float64, q)
	for u := 0; u < s.nodes; u++ {
		floats.Add(ev.n, s.row(s.marg, u))
	}
	floats.Scale(1/N, ev.n)

	cNew := make([]float64, q*q) // Row major Σ outer(m(u,v), m(v,u)) / Z_uv.
	weights := make([]float64, q)
	for a := range weights {
		weights[a] = ev.n[a] * math.Exp(-s.h[a])
	}

	edgeSum, nodeSum := 0.0, 0.0
	for u := 0; u < s.nodes; u++ {
		start, end := s.idx.Out(uint32(u))
		for j := start; j < end; j++ {
			out := s.row(s.msg, int(j))
			rev := s.idx.Reverse(j)
			z := floats.Dot(out, s.row(s.cm, int(rev)))
			if !(z >= MinPartition) {
				z = MinPartition
				ev.degenerate++
			}
			edgeSum += math.Log(z)
			in := s.row(s.msg, int(rev))
			for a := 0; a < q; a++ {
				if out[a] == 0 {
					continue
				}
				for b := 0; b < q; b++ {
					cNew[a*q+b] += out[a] * in[b] / z
				}
			}
		}

		logScale, ok := s.cavityProduct(s.prod, uint32(u), math.MaxUint32)
		zu := floats.Dot(weights, s.prod)
		if !ok || !(zu >= MinPartition) {
			nodeSum += logMin
			ev.degenerate++
		} else {
			nodeSum += math.Log(zu) + logScale
		}
	}

	ev.c = make([][]float64, q)
	for a := 0; a < q; a++ {
		ev.c[a] = make([]float64, q)
		for b := 0; b < q; b++ {
			cab := s.c.At(a, b)
			ev.cAvg += cab * cNew[a*q+b] / N
			if nn := ev.n[a] * ev.n[b]; nn > 0 {
				ev.c[a][b] = cab * cNew[a*q+b] / N / nn
			} else {
				ev.c[a][b] = cab
			}
		}
	}
	ev.freeEnergy = (edgeSum-2*nodeSum)/(2*N) - ev.cAvg/2

	if s.debug >= 3 {
		enforce.Distribution(ev.n, debugTolerance, "proportions")
		flat := make([]float64, 0, q*q)
		for a := range ev.c {
			flat = append(flat, ev.c[a]...)
		}
		enforce.Symmetric(flat, q, symmetryTolerance*math.Max(1, floats.Max(flat)), "re-estimated affinity")
	}
	return ev
}
