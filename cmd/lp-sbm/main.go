package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"

	"github.com/ScottSallinen/cavity/bp"
	"github.com/ScottSallinen/cavity/cmd/common"
	"github.com/ScottSallinen/cavity/graph"
	"github.com/ScottSallinen/cavity/overlap"
	"github.com/ScottSallinen/cavity/utils"
)

type Summary struct {
	Restart bp.RestartResult
	Sizes   []int
	Overlap float64 // Against the labels file, when Scored.
	Scored  bool
}

// run loads the graph, selects the best of the restarts, and scores and writes the result when asked to.
func run(ctx context.Context, opts bp.CommandOptions) (Summary, error) {
	el, err := graph.LoadEdgeList(opts.GraphPath)
	if err != nil {
		return Summary{}, err
	}
	if opts.Stats {
		graph.ComputeGraphStats(el.Adj)
	}

	rr, err := bp.BestOfRestarts(ctx, el.Adj, opts.Groups, opts.Restart)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Restart: rr, Sizes: common.GroupSizes(opts.Groups, rr.Best.Groups)}

	best := rr.Best
	log.Info().Msg("Groups " + utils.V(opts.Groups) + " sizes " + utils.V(sum.Sizes))
	log.Info().Msg("Learnt n " + utils.Vec(best.N))
	for a := range best.C {
		log.Info().Msg("Learnt c[" + utils.V(a) + "] " + utils.Vec(best.C[a]))
	}
	log.Info().Msg("Free energy " + utils.F("%.6f", best.FreeEnergy) + " learning converged " + utils.V(best.Converged) + " BP converged " + utils.V(best.Last.Converged))

	if opts.LabelsPath != "" {
		labels, err := graph.LoadLabels(opts.LabelsPath, el)
		if err != nil {
			return Summary{}, err
		}
		if sum.Overlap, err = overlap.Overlap(opts.Groups, nil, best.Groups, labels); err != nil {
			return Summary{}, err
		}
		sum.Scored = true
		log.Info().Msg("Overlap " + utils.F("%.4f", sum.Overlap))
	}

	if out := outputPath(opts); out != "" {
		if err := common.WriteGroups(out, el.RawIds, best.Groups); err != nil {
			return Summary{}, err
		}
		log.Info().Msg("Wrote groups to " + out)
	}
	return sum, nil
}

// Where to write the group assignment; empty when it is not wanted.
func outputPath(opts bp.CommandOptions) string {
	if opts.Output == "" && opts.WriteGroups {
		return common.GroupsPath(opts.GraphPath)
	}
	return opts.Output
}

// Launch point. Parses command line arguments, and infers the groups of the graph.
func main() {
	opts := bp.FlagsToOptions()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := run(ctx, opts); err != nil {
		log.Fatal().Err(err).Msg("Inference failed")
	}
	utils.MemoryStats()
}
