package graph

import (
	"math"

	"github.com/pkg/errors"
)

var ErrInvalidGraph = errors.New("invalid graph")

// Adjacency maps a node id (0..N-1) to its ordered neighbour list. An undirected edge appears in both lists.
type Adjacency [][]uint32

func (adj Adjacency) NumNodes() int { return len(adj) }

// Number of directed edges (twice the number of undirected edges for a valid structure).
func (adj Adjacency) NumDirected() (count int) {
	for u := range adj {
		count += len(adj[u])
	}
	return count
}

// Average (undirected) degree 2|E|/N, 0 for an empty graph.
func (adj Adjacency) AverageDegree() float64 {
	if len(adj) == 0 {
		return 0
	}
	return float64(adj.NumDirected()) / float64(len(adj))
}

func pairKey(src, dst uint32) uint64 {
	return uint64(src)<<32 | uint64(dst)
}

// Validate checks that every neighbour is in range, there are no self loops or repeated neighbours,
// and that every edge (u,v) has its mirror (v,u). Errors wrap ErrInvalidGraph.
func (adj Adjacency) Validate() error {
	_, err := adj.pairs()
	return err
}

// Builds the set of directed pairs, checking structure along the way.
func (adj Adjacency) pairs() (map[uint64]uint32, error) {
	if uint64(len(adj)) > math.MaxUint32 {
		return nil, errors.Wrapf(ErrInvalidGraph, "%d nodes exceeds the id range", len(adj))
	}
	n := uint32(len(adj))
	set := make(map[uint64]uint32, adj.NumDirected())
	code := uint32(0)
	for u := range adj {
		src := uint32(u)
		for _, dst := range adj[u] {
			if dst >= n {
				return nil, errors.Wrapf(ErrInvalidGraph, "node %d lists neighbour %d outside [0,%d)", src, dst, n)
			}
			if dst == src {
				return nil, errors.Wrapf(ErrInvalidGraph, "node %d has a self loop", src)
			}
			key := pairKey(src, dst)
			if _, dup := set[key]; dup {
				return nil, errors.Wrapf(ErrInvalidGraph, "node %d lists neighbour %d twice", src, dst)
			}
			set[key] = code
			code++
		}
	}
	for u := range adj {
		for _, dst := range adj[u] {
			if _, ok := set[pairKey(dst, uint32(u))]; !ok {
				return nil, errors.Wrapf(ErrInvalidGraph, "edge (%d,%d) has no reverse edge", u, dst)
			}
		}
	}
	return set, nil
}

// FromEdges builds a symmetric adjacency over n nodes from undirected (src, dst) pairs, in input order.
// Ids must be below n. Does not filter; Validate reports self loops or repeats.
func FromEdges(n int, edges [][2]uint32) Adjacency {
	adj := make(Adjacency, n)
	for _, e := range edges {
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}
	return adj
}
