package bp

import (
	"golang.org/x/exp/rand"

	"github.com/ScottSallinen/cavity/graph"
)

// plantedPartition samples an SBM graph with nodes assigned round-robin to q groups, so the proportions are
// uniform, and an edge between u and v present with probability c[g(u)][g(v)]/N. Groups are 1-based.
func plantedPartition(seed uint64, nodes int, c [][]float64) (graph.Adjacency, []int) {
	q := len(c)
	rng := rand.New(rand.NewSource(seed))
	groups := make([]int, nodes)
	for u := range groups {
		groups[u] = u%q + 1
	}
	var edges [][2]uint32
	for u := 0; u < nodes; u++ {
		for v := u + 1; v < nodes; v++ {
			if rng.Float64() < c[groups[u]-1][groups[v]-1]/float64(nodes) {
				edges = append(edges, [2]uint32{uint32(u), uint32(v)})
			}
		}
	}
	return graph.FromEdges(nodes, edges), groups
}

func uniformN(q int) []float64 {
	n := make([]float64, q)
	for a := range n {
		n[a] = 1 / float64(q)
	}
	return n
}

func twoGroupAffinity(cIn, cOut float64) [][]float64 {
	return [][]float64{{cIn, cOut}, {cOut, cIn}}
}

// A 6-cycle with a chord, small enough to reason about.
func smallGraph() graph.Adjacency {
	return graph.FromEdges(6, [][2]uint32{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 0}, {0, 3}})
}
