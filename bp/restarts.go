package bp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"github.com/ScottSallinen/cavity/graph"
	"github.com/ScottSallinen/cavity/utils"
)

type RestartResult struct {
	Best    LearnResult // Lowest free energy. Without learning, a single solve at the initial guess.
	Index   int         // Restart that produced Best.
	Runs    []LearnResult
	RunIds  []string
	Initial Params
	Elapsed time.Duration
}

// BestOfRestarts runs opts.Restarts independent pipelines from the assortative guess (see AssortativeGuess),
// restart r seeded with Seed+r, and keeps the lowest free energy (see bestRun). Restarts share only the edge index.
func BestOfRestarts(ctx context.Context, adj graph.Adjacency, q int, opts RestartOptions) (RestartResult, error) {
	if err := opts.Validate(); err != nil {
		return RestartResult{}, err
	}
	idx, err := graph.NewEdgeIndex(adj)
	if err != nil {
		return RestartResult{}, err
	}
	initial, err := AssortativeGuess(adj, q, opts.AffinityScale)
	if err != nil {
		return RestartResult{}, err
	}

	learnOpts := opts.Learn
	if !opts.LearnParams {
		learnOpts.MaxIters = 1
	}

	watch := utils.Watch{}
	watch.Start()
	rr := RestartResult{
		Runs:    make([]LearnResult, opts.Restarts),
		RunIds:  make([]string, opts.Restarts),
		Initial: initial,
	}
	log.Info().Msg("Restarts " + utils.V(opts.Restarts) + " q " + utils.V(q) + " initial c " + utils.Vec(initial.C[0]) + " parallel " + utils.V(utils.Max(opts.Parallel, 1)))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(utils.Max(opts.Parallel, 1))
	for r := 0; r < opts.Restarts; r++ {
		r := r
		rr.RunIds[r] = uuid.NewString()
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			runOpts := learnOpts
			runOpts.Infer.Seed = opts.Learn.Infer.Seed + uint64(r)
			logger := log.With().Str("run", rr.RunIds[r]).Int("restart", r).Logger()

			solver := NewSolver(idx, q, rand.NewSource(runOpts.Infer.Seed)).WithLogger(logger)
			res, err := learnOn(egCtx, solver, initial, runOpts)
			if err != nil {
				return err
			}
			rr.Runs[r] = res
			logger.Info().Msg("Free energy " + utils.F("%.6f", res.FreeEnergy) + " after " + utils.V(res.Iterations) + " learning iterations")
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return RestartResult{}, err
	}

	rr.Index = bestRun(rr.Runs)
	rr.Best = rr.Runs[rr.Index]
	if rr.Best.Last.DegenerateEdges > 0 {
		log.Warn().Msg("Every restart clamped partition functions; free energies are not comparable")
	}
	rr.Elapsed = watch.Elapsed()
	log.Info().Msg("Best restart " + utils.V(rr.Index) + " (" + rr.RunIds[rr.Index] + ") F " + utils.F("%.6f", rr.Best.FreeEnergy) + " in (ms) " + utils.V(rr.Elapsed.Milliseconds()))
	return rr, nil
}

// bestRun picks the run with the lowest free energy among those whose last solve clamped no partition function,
// falling back to all runs when every one clamped. Ties go to the lowest index.
func bestRun(runs []LearnResult) int {
	best := 0
	for r := 1; r < len(runs); r++ {
		healthy, bestHealthy := runs[r].Last.DegenerateEdges == 0, runs[best].Last.DegenerateEdges == 0
		if healthy != bestHealthy {
			if healthy {
				best = r
			}
			continue
		}
		if runs[r].FreeEnergy < runs[best].FreeEnergy {
			best = r
		}
	}
	return best
}
