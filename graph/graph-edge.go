package graph

import (
	"github.com/ScottSallinen/cavity/utils"
)

// Edge is a directed edge (Src -> Dst).
type Edge struct {
	Src uint32
	Dst uint32
}

func (e Edge) String() string {
	return "(" + utils.V(e.Src) + "," + utils.V(e.Dst) + ")"
}

// EdgeIndex is the bijection between directed edges and dense codes 0..2|E|-1.
// Nodes are enumerated in ascending id and each node's neighbours in list order, so the codes of edges
// leaving a node are contiguous. Immutable once built, and safe to share between concurrent readers.
type EdgeIndex struct {
	edges   []Edge            // Code to edge.
	codes   map[uint64]uint32 // Packed (src, dst) to code.
	reverse []uint32          // Code of (dst, src) for each code.
	offsets []uint32          // Out(u) is [offsets[u], offsets[u+1]).
}

// NewEdgeIndex validates adj and builds its edge codes. Errors wrap ErrInvalidGraph.
func NewEdgeIndex(adj Adjacency) (*EdgeIndex, error) {
	codes, err := adj.pairs()
	if err != nil {
		return nil, err
	}
	idx := &EdgeIndex{
		edges:   make([]Edge, 0, len(codes)),
		codes:   codes,
		reverse: make([]uint32, len(codes)),
		offsets: make([]uint32, len(adj)+1),
	}
	for u := range adj {
		idx.offsets[u] = uint32(len(idx.edges))
		for _, v := range adj[u] {
			idx.edges = append(idx.edges, Edge{Src: uint32(u), Dst: v})
		}
	}
	idx.offsets[len(adj)] = uint32(len(idx.edges))

	for code, e := range idx.edges {
		idx.reverse[code] = codes[pairKey(e.Dst, e.Src)]
	}
	return idx, nil
}

func (idx *EdgeIndex) NumNodes() int { return len(idx.offsets) - 1 }

// Number of directed edges, i.e. the number of codes.
func (idx *EdgeIndex) NumEdges() int { return len(idx.edges) }

func (idx *EdgeIndex) Edge(code uint32) Edge { return idx.edges[code] }

func (idx *EdgeIndex) Code(src, dst uint32) (code uint32, ok bool) {
	code, ok = idx.codes[pairKey(src, dst)]
	return code, ok
}

// Code of the opposite direction of the given edge.
func (idx *EdgeIndex) Reverse(code uint32) uint32 { return idx.reverse[code] }

// Half-open code range of the edges leaving u.
func (idx *EdgeIndex) Out(u uint32) (start, end uint32) {
	return idx.offsets[u], idx.offsets[u+1]
}

func (idx *EdgeIndex) Degree(u uint32) int {
	return int(idx.offsets[u+1] - idx.offsets[u])
}
