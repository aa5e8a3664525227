package graph

import (
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/ScottSallinen/cavity/utils"
)

type GraphStats struct {
	Vertices      int
	Edges         int // Undirected.
	Isolated      int
	MaxDegree     int
	MedianDegree  int
	AverageDegree float64
	Components    int
}

// ComputeGraphStats summarises adj, and logs the summary.
func ComputeGraphStats(adj Adjacency) (s GraphStats) {
	s.Vertices = len(adj)
	s.Edges = adj.NumDirected() / 2
	s.AverageDegree = adj.AverageDegree()

	degrees := make([]int, len(adj))
	for u := range adj {
		degrees[u] = len(adj[u])
		if degrees[u] == 0 {
			s.Isolated++
		}
	}
	if len(degrees) > 0 {
		s.MaxDegree = utils.MaxSlice(degrees)
		s.MedianDegree = utils.Median(degrees)
	}
	s.Components = len(topo.ConnectedComponents(ToGonum(adj)))

	log.Info().Msg("----GraphStats----")
	log.Info().Msg("Vertices " + utils.V(s.Vertices))
	log.Info().Msg("Isolated " + utils.V(s.Isolated) + " pct: " + utils.F("%.3f", float64(s.Isolated)*100.0/float64(utils.Max(s.Vertices, 1))))
	log.Info().Msg("Edges " + utils.V(s.Edges))
	log.Info().Msg("AvgDeg " + utils.F("%.3f", s.AverageDegree) + " MaxDeg " + utils.V(s.MaxDegree) + " MedianDeg " + utils.V(s.MedianDegree))
	log.Info().Msg("Components " + utils.V(s.Components))
	log.Info().Msg("----EndStats----")
	return s
}
