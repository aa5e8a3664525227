// Package bp infers SBM group structure with asynchronous cavity belief propagation, evaluates the Bethe
// free energy of the fixed point, and learns the model parameters from it.
package bp

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/ScottSallinen/cavity/enforce"
	"github.com/ScottSallinen/cavity/graph"
	"github.com/ScottSallinen/cavity/mathutils"
	"github.com/ScottSallinen/cavity/utils"
)

type Status uint8

const (
	Uninitialized Status = iota
	Initialized
	Converged
	MaxIterExceeded
)

func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Initialized:
		return "Initialized"
	case Converged:
		return "Converged"
	case MaxIterExceeded:
		return "MaxIterExceeded"
	}
	return "Status(" + utils.V(uint8(s)) + ")"
}

// Tolerance for the distribution checks made at DebugLevel 3.
const debugTolerance = 1e-9

// Solver holds the BP state of one solve: messages indexed by directed edge code, the node marginals, and
// the external field. A Solver is single threaded; independent solvers over the same EdgeIndex may run in parallel.
type Solver struct {
	idx    *graph.EdgeIndex
	q      int
	nodes  int
	rng    *rand.Rand
	logger zerolog.Logger
	status Status
	debug  uint8

	n []float64
	c *mathutils.Affinity

	msg  []float64 // Row i is m[i], the message along edge code i.
	cm   []float64 // Row i is c·m[i].
	marg []float64 // Row u is p[u].
	h    []float64

	order []uint32

	// Scratch, reused by every update.
	prod   []float64
	newMsg []float64
	newCm  []float64
	oldP   []float64
	deltaH []float64
}

// NewSolver allocates state for q groups over idx. The generator drives the initial messages and the sweep order.
func NewSolver(idx *graph.EdgeIndex, q int, src rand.Source) *Solver {
	s := &Solver{
		idx:    idx,
		q:      q,
		nodes:  idx.NumNodes(),
		rng:    rand.New(src),
		logger: log.Logger,
	}
	s.msg = make([]float64, idx.NumEdges()*q)
	s.cm = make([]float64, idx.NumEdges()*q)
	s.marg = make([]float64, s.nodes*q)
	s.h = make([]float64, q)
	s.order = make([]uint32, idx.NumEdges())
	s.prod = make([]float64, q)
	s.newMsg = make([]float64, q)
	s.newCm = make([]float64, q)
	s.oldP = make([]float64, q)
	s.deltaH = make([]float64, q)
	return s
}

// WithLogger replaces the logger the solver reports through.
func (s *Solver) WithLogger(l zerolog.Logger) *Solver {
	s.logger = l
	return s
}

func (s *Solver) Status() Status { return s.status }

func (s *Solver) row(buf []float64, i int) []float64 { return buf[i*s.q : (i+1)*s.q] }

// Message returns a copy of m for the given edge code.
func (s *Solver) Message(code uint32) []float64 {
	return append([]float64(nil), s.row(s.msg, int(code))...)
}

// Marginal returns a copy of p[u].
func (s *Solver) Marginal(u uint32) []float64 {
	return append([]float64(nil), s.row(s.marg, int(u))...)
}

// Field returns a copy of the external field h.
func (s *Solver) Field() []float64 {
	return append([]float64(nil), s.h...)
}

// Init validates params and draws fresh random messages, then builds the marginals and the field from them.
// Calling Init again restarts the solve, continuing the same random stream.
func (s *Solver) Init(params Params) error {
	if s.nodes == 0 {
		return errors.Wrap(graph.ErrInvalidGraph, "graph has no nodes")
	}
	if err := params.Validate(); err != nil {
		return err
	}
	if params.Q != s.q {
		return errors.Wrapf(ErrInvalidParameters, "solver built for q=%d, got q=%d", s.q, params.Q)
	}
	s.setParams(params)

	for i := 0; i < s.idx.NumEdges(); i++ {
		mathutils.RandomDistribution(s.rng, s.row(s.msg, i))
		s.c.MulVecTo(s.row(s.cm, i), s.row(s.msg, i))
	}

	for u := 0; u < s.nodes; u++ {
		p := s.row(s.marg, u)
		start, end := s.idx.Out(uint32(u))
		if start == end {
			mathutils.Uniform(p)
			continue
		}
		for a := range p {
			p[a] = 0
		}
		for j := start; j < end; j++ {
			in := s.row(s.cm, int(s.idx.Reverse(j)))
			out := s.row(s.msg, int(j))
			for a := range p {
				p[a] += in[a] * out[a]
			}
		}
		mathutils.Normalize(p)
	}

	s.initField()
	s.status = Initialized
	return nil
}

// setParams copies n and c in. State derived from c is left to the caller.
func (s *Solver) setParams(params Params) {
	s.n = append(s.n[:0], params.N...)
	s.c = mathutils.NewAffinity(params.C)
}

// h = (1/N) Σ_k c·p[k].
func (s *Solver) initField() {
	for a := range s.h {
		s.h[a] = 0
	}
	for u := 0; u < s.nodes; u++ {
		s.c.MulVecTo(s.deltaH, s.row(s.marg, u))
		floats.Add(s.h, s.deltaH)
	}
	floats.Scale(1/float64(s.nodes), s.h)
}

// Resume swaps in new parameters while keeping the current messages, as a warm start for a further Run.
// Each marginal carries the change of c by the ratio (c'·m)/(c·m) of its incoming edges, the same way an update
// does, so resuming with unchanged parameters leaves the state untouched. The field is rebuilt for the new c.
func (s *Solver) Resume(params Params) error {
	if s.status == Uninitialized {
		return errors.New("solver was never initialised")
	}
	if err := params.Validate(); err != nil {
		return err
	}
	if params.Q != s.q {
		return errors.Wrapf(ErrInvalidParameters, "solver built for q=%d, got q=%d", s.q, params.Q)
	}
	next := mathutils.NewAffinity(params.C)
	recompute := make([]bool, s.nodes)
	for i := 0; i < s.idx.NumEdges(); i++ {
		e := s.idx.Edge(uint32(i))
		oldCm := s.row(s.cm, i)
		next.MulVecTo(s.newCm, s.row(s.msg, i))
		for a := range oldCm {
			if oldCm[a] < MinPartition {
				recompute[e.Dst] = true
				break
			}
		}
		if !recompute[e.Dst] {
			p := s.row(s.marg, int(e.Dst))
			for a := range p {
				p[a] *= s.newCm[a] / oldCm[a]
			}
			mathutils.Normalize(p)
		}
		copy(oldCm, s.newCm)
	}

	s.setParams(params)
	for u, redo := range recompute {
		if redo {
			s.recomputeMarginal(uint32(u))
		}
	}
	s.initField()
	s.status = Initialized
	return nil
}

// cavityProduct writes Π (c·m[(k,u)]) over the neighbours k of u, skipping the edge code skip, into dst,
// rescaled so its largest entry is 1. Returns the log of the removed scale, and false if the product vanished.
func (s *Solver) cavityProduct(dst []float64, u uint32, skip uint32) (logScale float64, ok bool) {
	for a := range dst {
		dst[a] = 1
	}
	start, end := s.idx.Out(u)
	for j := start; j < end; j++ {
		if j == skip {
			continue
		}
		ls := mathutils.MulScaled(dst, s.row(s.cm, int(s.idx.Reverse(j))))
		if math.IsInf(ls, -1) {
			return ls, false
		}
		logScale += ls
	}
	return logScale, true
}

// Sets p[u] = normalize(n ⊙ exp(-h) ⊙ Π_k c·m[(k,u)]).
func (s *Solver) recomputeMarginal(u uint32) {
	p := s.row(s.marg, int(u))
	s.cavityProduct(p, u, math.MaxUint32)
	for a := range p {
		p[a] *= s.n[a] * math.Exp(-s.h[a])
	}
	mathutils.Normalize(p)
}

// update recomputes the message along code and folds the change into the destination marginal and the field.
// Returns the L1 change of the message.
func (s *Solver) update(code uint32) float64 {
	e := s.idx.Edge(code)

	s.cavityProduct(s.prod, e.Src, code)
	for a := range s.newMsg {
		s.newMsg[a] = s.n[a] * math.Exp(-s.h[a]) * s.prod[a]
	}
	mathutils.Normalize(s.newMsg)

	old := s.row(s.msg, int(code))
	conv := mathutils.L1(s.newMsg, old)
	copy(old, s.newMsg)

	oldCm := s.row(s.cm, int(code))
	s.c.MulVecTo(s.newCm, s.newMsg)

	p := s.row(s.marg, int(e.Dst))
	copy(s.oldP, p)

	recompute := false
	for a := range oldCm {
		if oldCm[a] < MinPartition {
			recompute = true
			break
		}
	}
	if recompute {
		copy(oldCm, s.newCm)
		s.recomputeMarginal(e.Dst)
	} else {
		for a := range p {
			p[a] *= s.newCm[a] / oldCm[a]
		}
		copy(oldCm, s.newCm)
		mathutils.Normalize(p)
	}

	floats.SubTo(s.oldP, p, s.oldP)
	s.c.MulVecTo(s.deltaH, s.oldP)
	floats.AddScaled(s.h, 1/float64(s.nodes), s.deltaH)

	if s.debug >= 3 {
		enforce.Distribution(old, debugTolerance, "message ", e)
		enforce.Distribution(p, debugTolerance, "marginal ", e.Dst)
	}
	return conv
}

// Sweep updates every message once, in a fresh uniformly random order, each update seeing all earlier ones.
// Returns the summed L1 change of the messages.
func (s *Solver) Sweep() (conv float64) {
	utils.Iota(s.order)
	utils.Shuffle(s.rng, s.order)
	for _, code := range s.order {
		conv += s.update(code)
	}
	return conv
}

// Result of one solve.
type Result struct {
	Groups          []int       // Most likely group of each node, 1..q. Ties go to the lowest group.
	N               []float64   // Re-estimated proportions: the mean marginal.
	C               [][]float64 // Re-estimated affinity.
	FreeEnergy      float64     // Bethe free energy per node; lower is more plausible.
	Iterations      int         // Sweeps performed.
	Converged       bool
	Conv            float64 // Message change of the last sweep.
	DegenerateEdges int     // Directed edges (and nodes) whose partition function was clamped.
	Elapsed         time.Duration
}

// Run sweeps until the summed message change of a sweep is at most opts.Threshold, or opts.MaxIters sweeps
// have been made. Both are normal terminations; the result is evaluated either way.
func (s *Solver) Run(opts Options) (Result, error) {
	if s.status == Uninitialized {
		return Result{}, errors.New("solver was never initialised")
	}
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	s.debug = opts.DebugLevel

	watch := utils.Watch{}
	watch.Start()
	res := Result{}
	s.status = MaxIterExceeded
	for res.Iterations < opts.MaxIters {
		res.Conv = s.Sweep()
		res.Iterations++
		if s.debug >= 2 {
			lap := watch.Lap()
			watch.Pause()
			s.logger.Trace().Msg("Sweep " + utils.V(res.Iterations) + " conv " + utils.F("%.6g", res.Conv) + " lap (ms) " + utils.V(lap.Milliseconds()))
			watch.UnPause()
		}
		if res.Conv <= opts.Threshold {
			s.status = Converged
			break
		}
	}
	res.Converged = s.status == Converged
	if res.Converged {
		s.logger.Debug().Msg("Converged after " + utils.V(res.Iterations) + " sweeps, conv " + utils.F("%.6g", res.Conv))
	} else {
		s.logger.Debug().Msg("No convergence after " + utils.V(res.Iterations) + " sweeps, conv " + utils.F("%.6g", res.Conv))
	}

	res.Groups = s.Groups()
	ev := s.evaluate()
	res.N, res.C, res.FreeEnergy, res.DegenerateEdges = ev.n, ev.c, ev.freeEnergy, ev.degenerate
	res.Elapsed = watch.Elapsed()

	if ev.degenerate > 0 {
		s.logger.Warn().Msg("Clamped " + utils.V(ev.degenerate) + " near-zero partition functions")
	}
	s.logger.Debug().Msg("Free energy " + utils.F("%.6f", res.FreeEnergy) + " n' " + utils.Vec(res.N) + " elapsed (ms) " + utils.V(res.Elapsed.Milliseconds()))
	return res, nil
}

// Groups is the arg-max group of every marginal, 1-based.
func (s *Solver) Groups() []int {
	groups := make([]int, s.nodes)
	for u := range groups {
		groups[u] = mathutils.ArgMax(s.row(s.marg, u)) + 1
	}
	return groups
}

// Infer runs one BP solve on adj with fixed parameters (n, c).
func Infer(q int, n []float64, c [][]float64, adj graph.Adjacency, opts Options) (Result, error) {
	idx, err := graph.NewEdgeIndex(adj)
	if err != nil {
		return Result{}, err
	}
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	params := Params{Q: q, N: n, C: c}
	solver := NewSolver(idx, q, rand.NewSource(opts.Seed))
	if err := solver.Init(params); err != nil {
		return Result{}, err
	}
	return solver.Run(opts)
}
