package bp

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"github.com/ScottSallinen/cavity/graph"
	"github.com/ScottSallinen/cavity/mathutils"
	"github.com/ScottSallinen/cavity/utils"
)

type LearnResult struct {
	Groups     []int
	FreeEnergy float64
	N          []float64   // Learnt proportions, the re-estimate of the last solve.
	C          [][]float64 // Learnt affinity.
	Params     Params      // Parameters the last solve ran with.
	Last       Result
	History    []float64 // L1(n−n') + L1(c−c') of every iteration.
	Iterations int
	Converged  bool // The parameters settled within the learning threshold.
	Elapsed    time.Duration
}

// Learn alternates BP solves with parameter re-estimation, starting from (nInit, cInit), until the parameters
// move by at most opts.Threshold or opts.MaxIters iterations are done. Every solve starts from fresh random
// messages drawn from one stream seeded with opts.Infer.Seed.
func Learn(q int, nInit []float64, cInit [][]float64, adj graph.Adjacency, opts LearnOptions) (LearnResult, error) {
	idx, err := graph.NewEdgeIndex(adj)
	if err != nil {
		return LearnResult{}, err
	}
	return learnOn(context.Background(), NewSolver(idx, q, rand.NewSource(opts.Infer.Seed)), Params{Q: q, N: nInit, C: cInit}, opts)
}

// learnOn checks ctx before every solve, so a cancelled restart stops between learning iterations.
func learnOn(ctx context.Context, solver *Solver, params Params, opts LearnOptions) (LearnResult, error) {
	if err := opts.Validate(); err != nil {
		return LearnResult{}, err
	}
	if err := params.Validate(); err != nil {
		return LearnResult{}, err
	}
	params = params.Clone()

	watch := utils.Watch{}
	watch.Start()
	lr := LearnResult{}
	for lr.Iterations < opts.MaxIters {
		if err := ctx.Err(); err != nil {
			return LearnResult{}, errors.Wrapf(err, "learning stopped after %d iterations", lr.Iterations)
		}
		if err := solver.Init(params); err != nil {
			return LearnResult{}, err
		}
		res, err := solver.Run(opts.Infer)
		if err != nil {
			return LearnResult{}, err
		}
		lr.Iterations++
		lr.Last = res
		lr.Params = params
		lr.Groups, lr.FreeEnergy, lr.N, lr.C = res.Groups, res.FreeEnergy, res.N, res.C

		next := Params{Q: params.Q, N: res.N, C: res.C}
		delta := params.Distance(next)
		lr.History = append(lr.History, delta)
		solver.logger.Debug().Msg("Learn " + utils.V(lr.Iterations) + " delta " + utils.F("%.6g", delta) + " F " + utils.F("%.6f", res.FreeEnergy) + " n' " + utils.Vec(res.N) + " degree " + utils.F("%.4f", mathutils.NewAffinity(res.C).Quad(res.N)))

		if delta <= opts.Threshold {
			lr.Converged = true
			break
		}
		params = next.Clone()
	}
	lr.Elapsed = watch.Elapsed()

	outcome := "stopped"
	if lr.Converged {
		outcome = "converged"
	}
	solver.logger.Info().Msg("Learning " + outcome + " after " + utils.V(lr.Iterations) + " iterations, F " + utils.F("%.6f", lr.FreeEnergy) + " in (ms) " + utils.V(lr.Elapsed.Milliseconds()))
	return lr, nil
}
