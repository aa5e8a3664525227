package graph

import (
	"io"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/ScottSallinen/cavity/utils"
)

const lineBufferSize = 1 << 16

// EdgeList is a loaded graph with the raw (file) ids of its nodes.
// Internal ids are assigned in order of first appearance in the file.
type EdgeList struct {
	Adj        Adjacency
	RawIds     []uint32          // Internal to raw.
	VertexMap  map[uint32]uint32 // Raw to internal.
	Lines      uint64
	SelfLoops  uint64 // Dropped.
	Duplicates uint64 // Dropped; includes the mirror of an edge given in both directions.
}

func (el *EdgeList) internal(raw uint32) uint32 {
	if id, ok := el.VertexMap[raw]; ok {
		return id
	}
	id := uint32(len(el.RawIds))
	el.VertexMap[raw] = id
	el.RawIds = append(el.RawIds, raw)
	return id
}

// LoadEdgeList reads an undirected graph from a file; see ReadEdgeList for the format.
func LoadEdgeList(path string) (*EdgeList, error) {
	file, err := utils.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	el, err := ReadEdgeList(file)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return el, nil
}

// ReadEdgeList reads whitespace separated "src dst [weight]" lines. A line with a single id declares a
// (possibly isolated) node. Lines starting with # are comments. Edges are undirected; self loops and
// repeated edges are dropped with a warning. Weights are ignored.
func ReadEdgeList(r io.Reader) (*EdgeList, error) {
	m0 := time.Now()
	el := &EdgeList{VertexMap: make(map[uint32]uint32)}
	g := simple.NewUndirectedGraph()

	scanner := utils.NewFastFileLines(lineBufferSize)
	fields := make([]string, 3)
	for {
		line, err := scanner.Scan(r)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "line %d", el.Lines+1)
		}
		el.Lines++
		if len(line) > 0 && line[0] == '#' {
			continue
		}
		nf := utils.FastFields(fields, line)
		if nf == 0 {
			continue
		}
		if nf > 3 {
			return nil, errors.Errorf("line %d: expected at most 3 fields, got %d", el.Lines, nf)
		}
		srcRaw, ok := utils.ToUint32(fields[0])
		if !ok {
			return nil, errors.Errorf("line %d: bad node id %q", el.Lines, fields[0])
		}
		src := el.internal(srcRaw)
		if g.Node(int64(src)) == nil {
			g.AddNode(simple.Node(src))
		}
		if nf == 1 {
			continue
		}
		dstRaw, ok := utils.ToUint32(fields[1])
		if !ok {
			return nil, errors.Errorf("line %d: bad node id %q", el.Lines, fields[1])
		}
		dst := el.internal(dstRaw)
		if src == dst {
			el.SelfLoops++
			continue
		}
		if g.HasEdgeBetween(int64(src), int64(dst)) {
			el.Duplicates++
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(src), simple.Node(dst)))
	}

	el.Adj = FromGonum(g, len(el.RawIds))

	if el.SelfLoops > 0 || el.Duplicates > 0 {
		log.Warn().Msg("Dropped self loops: " + utils.V(el.SelfLoops) + " repeated edges: " + utils.V(el.Duplicates))
	}
	log.Info().Msg("Read " + utils.V(el.Lines) + " lines, " + utils.V(len(el.RawIds)) + " vertices, " +
		utils.V(el.Adj.NumDirected()/2) + " edges in (ms) " + utils.V(time.Since(m0).Milliseconds()))
	return el, nil
}

// FromGonum converts an undirected gonum graph with node ids 0..n-1 into an Adjacency.
// Neighbour lists are sorted ascending so the result does not depend on map iteration order.
func FromGonum(g graph.Undirected, n int) Adjacency {
	adj := make(Adjacency, n)
	for u := range adj {
		nbrs := graph.NodesOf(g.From(int64(u)))
		list := make([]uint32, len(nbrs))
		for i := range nbrs {
			list[i] = uint32(nbrs[i].ID())
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		adj[u] = list
	}
	return adj
}

// ToGonum builds a gonum undirected graph with one node per adjacency entry.
func ToGonum(adj Adjacency) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for u := range adj {
		g.AddNode(simple.Node(u))
	}
	for u := range adj {
		for _, v := range adj[u] {
			if int64(v) > int64(u) {
				g.SetEdge(g.NewEdge(simple.Node(u), simple.Node(v)))
			}
		}
	}
	return g
}

// LoadLabels reads "raw group" lines (groups 1..q) for the nodes of el. Every node must be labelled.
func LoadLabels(path string, el *EdgeList) ([]int, error) {
	file, err := utils.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	labels, err := ReadLabels(file, el)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return labels, nil
}

func ReadLabels(r io.Reader, el *EdgeList) ([]int, error) {
	labels := make([]int, len(el.RawIds))
	scanner := utils.NewFastFileLines(lineBufferSize)
	fields := make([]string, 2)
	lines := 0
	for {
		line, err := scanner.Scan(r)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		lines++
		if len(line) > 0 && line[0] == '#' {
			continue
		}
		nf := utils.FastFields(fields, line)
		if nf == 0 {
			continue
		}
		if nf != 2 {
			return nil, errors.Errorf("line %d: expected \"node group\", got %d fields", lines, nf)
		}
		raw, ok1 := utils.ToUint32(fields[0])
		group, ok2 := utils.ToUint32(fields[1])
		if !ok1 || !ok2 || group == 0 {
			return nil, errors.Errorf("line %d: bad label %q %q", lines, fields[0], fields[1])
		}
		id, known := el.VertexMap[raw]
		if !known {
			log.Debug().Msg("Label for unknown vertex " + utils.V(raw) + " ignored")
			continue
		}
		labels[id] = int(group)
	}
	for id := range labels {
		if labels[id] == 0 {
			return nil, errors.Errorf("vertex %d has no label", el.RawIds[id])
		}
	}
	return labels, nil
}
