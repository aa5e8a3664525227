package bp

import (
	"flag"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/ScottSallinen/cavity/utils"
)

// Options control a single BP solve.
type Options struct {
	Threshold  float64 // A sweep whose summed L1 message change is at most this converges the solve.
	MaxIters   int     // Sweep budget. Reaching it is a normal (non-converged) termination.
	Seed       uint64  // Seeds the permutation and message initialisation stream.
	DebugLevel uint8   // 1 logs sweeps, 2 adds per-sweep timing, 3 checks distribution invariants after every update (slow).
}

// LearnOptions control the outer parameter learning loop.
type LearnOptions struct {
	Infer     Options
	Threshold float64 // Stop once L1(n−n') + L1(c−c') is at most this.
	MaxIters  int
}

// RestartOptions control the best-of-restarts selection.
type RestartOptions struct {
	Learn         LearnOptions
	Restarts      int     // Independent runs; the lowest free energy wins.
	AffinityScale float64 // c_in/c_out of the initial affinity guess.
	Parallel      int     // Restarts solved concurrently. Values below 1 mean one.
	LearnParams   bool    // Run the learning loop per restart; otherwise a single solve at the initial guess.
}

func DefaultOptions() Options {
	return Options{Threshold: 1e-3, MaxIters: 100, Seed: 1}
}

func DefaultLearnOptions() LearnOptions {
	return LearnOptions{Infer: DefaultOptions(), Threshold: 1e-2, MaxIters: 20}
}

func DefaultRestartOptions() RestartOptions {
	return RestartOptions{Learn: DefaultLearnOptions(), Restarts: 3, AffinityScale: 2, Parallel: 1, LearnParams: true}
}

func (o Options) Validate() error {
	if !(o.Threshold >= 0) {
		return errors.Wrapf(ErrInvalidParameters, "convergence threshold must be non-negative, got %v", o.Threshold)
	}
	if o.MaxIters < 1 {
		return errors.Wrapf(ErrInvalidParameters, "iteration budget must be at least 1, got %d", o.MaxIters)
	}
	return nil
}

func (o LearnOptions) Validate() error {
	if err := o.Infer.Validate(); err != nil {
		return err
	}
	if !(o.Threshold >= 0) {
		return errors.Wrapf(ErrInvalidParameters, "learning threshold must be non-negative, got %v", o.Threshold)
	}
	if o.MaxIters < 1 {
		return errors.Wrapf(ErrInvalidParameters, "learning budget must be at least 1, got %d", o.MaxIters)
	}
	return nil
}

func (o RestartOptions) Validate() error {
	if err := o.Learn.Validate(); err != nil {
		return err
	}
	if o.Restarts < 1 {
		return errors.Wrapf(ErrInvalidParameters, "restart count must be at least 1, got %d", o.Restarts)
	}
	return nil
}

// CLI options beyond the solver's own.
type CommandOptions struct {
	Restart     RestartOptions
	Groups      int
	GraphPath   string
	LabelsPath  string // Ground truth, optional. Enables overlap scoring.
	Output      string // Where to write the group assignment, optional.
	WriteGroups bool   // Without Output, write the assignment to the default results path.
	Stats       bool
}

// Environment overrides for flag defaults. A .env file in the working directory is loaded first if present.
const (
	EnvSeed      = "BP_SEED"
	EnvThreshold = "BP_THRESHOLD"
	EnvMaxIters  = "BP_MAXITERS"
	EnvRestarts  = "BP_RESTARTS"
)

func envFloat(key string, def float64) float64 {
	if s, ok := os.LookupEnv(key); ok {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
		log.Warn().Msg("Ignoring malformed " + key + "=" + s)
	}
	return def
}

func envInt(key string, def int) int {
	if s, ok := os.LookupEnv(key); ok {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
		log.Warn().Msg("Ignoring malformed " + key + "=" + s)
	}
	return def
}

// Declare your own flags before you call this function.
func FlagsToOptions() (opts CommandOptions) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		log.Warn().Err(err).Msg("Could not read .env")
	}
	def := DefaultRestartOptions()

	graphPtr := flag.String("g", "", "Graph file: one \"src dst\" edge per line, or a lone id for an isolated vertex.")
	labelsPtr := flag.String("l", "", "Ground truth file: one \"vertex group\" per line (groups from 1). Enables overlap scoring.")
	outPtr := flag.String("out", "", "Write the inferred group of each vertex to this file.")
	writePtr := flag.Bool("w", false, "Write the inferred groups to results/<graph>-groups.txt when -out is not given.")
	qPtr := flag.Int("q", 2, "Number of groups.")

	thresholdPtr := flag.Float64("e", envFloat(EnvThreshold, def.Learn.Infer.Threshold), "BP convergence threshold on the summed L1 message change of a sweep.")
	itersPtr := flag.Int("i", envInt(EnvMaxIters, def.Learn.Infer.MaxIters), "Maximum BP sweeps per solve.")
	learnThresholdPtr := flag.Float64("le", def.Learn.Threshold, "Learning threshold on L1(n-n') + L1(c-c').")
	learnItersPtr := flag.Int("li", def.Learn.MaxIters, "Maximum learning iterations.")
	noLearnPtr := flag.Bool("nl", false, "Do not learn parameters; each restart is a single solve at the initial guess.")

	restartsPtr := flag.Int("r", envInt(EnvRestarts, def.Restarts), "Independent restarts; the lowest free energy is kept.")
	scalePtr := flag.Float64("a", def.AffinityScale, "c_in/c_out of the initial affinity guess (below 1 for disassortative).")
	seedPtr := flag.Uint64("seed", uint64(envInt(EnvSeed, int(def.Learn.Infer.Seed))), "Random seed. Restart k uses seed+k.")
	threadPtr := flag.Int("t", utils.Min(runtime.NumCPU(), def.Restarts), "Restarts to run concurrently.")

	statsPtr := flag.Bool("stats", false, "Print graph statistics after loading.")
	debugPtr := flag.Int("debug", 0, "Adds extra debug output. Level 0 for info, 1 for debug, 2 adds timing and trace, 3 checks invariants on every update.")
	colourPtr := flag.Bool("nc", false, "Removes the colouring from the log output.")
	flag.Parse()

	if *colourPtr {
		utils.SetLoggerConsole(true)
	}
	utils.SetLevel(*debugPtr)

	if *graphPtr == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *threadPtr <= 0 {
		log.Panic().Msg("Invalid thread count.")
	} else if *threadPtr > runtime.NumCPU() {
		log.Warn().Msg("Thread count is greater than CPU count?")
	}

	opts = CommandOptions{
		Groups:      *qPtr,
		GraphPath:   *graphPtr,
		LabelsPath:  *labelsPtr,
		Output:      *outPtr,
		WriteGroups: *writePtr,
		Stats:       *statsPtr,
		Restart: RestartOptions{
			Learn: LearnOptions{
				Infer: Options{
					Threshold:  *thresholdPtr,
					MaxIters:   *itersPtr,
					Seed:       *seedPtr,
					DebugLevel: uint8(*debugPtr),
				},
				Threshold: *learnThresholdPtr,
				MaxIters:  *learnItersPtr,
			},
			Restarts:      *restartsPtr,
			AffinityScale: *scalePtr,
			Parallel:      *threadPtr,
			LearnParams:   !*noLearnPtr,
		},
	}
	return opts
}
