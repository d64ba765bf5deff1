package search

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/floorplace/floorplace/pkg/circuit"
	"github.com/floorplace/floorplace/pkg/observability"
)

// Default tunables for Run. They mirror the constraints of the benchmark
// circuits this optimizer was built against; small placements converge in
// far fewer iterations.
const (
	DefaultMaxIterations = 1000
	DefaultMaxStagnation = 30
)

// Options tunes an optimization run. Zero values select the defaults.
type Options struct {
	// MaxIterations caps the number of outer iterations.
	MaxIterations int

	// MaxStagnation stops the run after this many consecutive iterations
	// without improving the best plain objective.
	MaxStagnation int

	// Progress, when set, is called after every outer iteration.
	Progress func(Iteration)
}

func (o *Options) applyDefaults() {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.MaxStagnation <= 0 {
		o.MaxStagnation = DefaultMaxStagnation
	}
}

// Iteration is one outer-iteration snapshot of an optimization run.
type Iteration struct {
	Index     int  `json:"index" bson:"index"`
	Objective int  `json:"objective" bson:"objective"`
	Best      int  `json:"best" bson:"best"`
	Feasible  bool `json:"feasible" bson:"feasible"`
}

// Result summarizes a finished (or cancelled) optimization run. The circuit
// is left at the best placement found.
type Result struct {
	Objective  int           `json:"objective" bson:"objective"`
	Feasible   bool          `json:"feasible" bson:"feasible"`
	Iterations int           `json:"iterations" bson:"iterations"`
	Duration   time.Duration `json:"duration" bson:"duration"`
	Trace      []Iteration   `json:"trace,omitempty" bson:"trace,omitempty"`
}

// ToLocalOptimum descends the augmented objective to a local optimum. Each
// round evaluates every candidate action of every active module against a
// snapshot-revert trial, commits the single best strictly-improving move, and
// narrows the active set to the modules affected by that move: everything
// connected to or overlapping the moved module, including the module itself.
// The first round considers all modules.
func (s *Search) ToLocalOptimum() {
	n := s.circuit.NumModules()

	active := make([]circuit.ModuleID, n)
	for i := range active {
		active[i] = circuit.ModuleID(i)
	}

	prevBest := math.Inf(1)

	for len(active) > 0 {
		bestValue := math.Inf(1)
		var bestAction Action
		var bestModule circuit.ModuleID
		found := false

		for _, id := range active {
			saved := s.circuit.SaveModule(id)

			for _, action := range s.actions {
				action.Apply(s.circuit, id)

				if s.circuit.DebugChecks() {
					if err := s.circuit.CheckInvariants(); err != nil {
						panic(fmt.Sprintf("search: invariant violated by %s on module %d: %v",
							action, id, err))
					}
				}

				if value := s.AugmentedObjective(); value < bestValue {
					bestValue = value
					bestAction = action
					bestModule = id
					found = true
				}

				s.circuit.RestoreModule(saved)
			}
		}

		if !found || bestValue >= prevBest {
			break
		}

		bestAction.Apply(s.circuit, bestModule)

		// The moved module overlaps itself, so it stays active.
		active = active[:0]
		for i := 0; i < n; i++ {
			id := circuit.ModuleID(i)
			if s.circuit.Connected(bestModule, id) || s.circuit.OverlapArea(bestModule, id) > 0 {
				active = append(active, id)
			}
		}

		prevBest = bestValue
	}
}

// Run iterates ToLocalOptimum with penalty updates between iterations,
// tracking the best plain objective seen. It stops at MaxIterations, after
// MaxStagnation consecutive non-improving iterations, or when ctx is
// cancelled between iterations; in every case the circuit is restored to the
// best placement before returning. A cancelled run returns the partial
// result together with the context error.
func (s *Search) Run(ctx context.Context, opts Options) (Result, error) {
	opts.applyDefaults()

	start := time.Now()
	hooks := observability.Search()
	hooks.OnSearchStart(ctx, s.circuit.NumModules(), s.circuit.NumNets())

	s.logger.Debug("starting optimization",
		"modules", s.circuit.NumModules(),
		"nets", s.circuit.NumNets(),
		"maxIterations", opts.MaxIterations,
		"maxStagnation", opts.MaxStagnation)

	best := s.circuit.SaveState()
	bestValue := math.MaxInt
	stagnation := 0

	var trace []Iteration
	iterations := 0

	var runErr error

	for i := 1; i <= opts.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		s.ToLocalOptimum()
		iterations = i

		value := s.Objective()
		if value < bestValue {
			best = s.circuit.SaveState()
			bestValue = value
			stagnation = 0
		} else {
			stagnation++
		}

		it := Iteration{
			Index:     i,
			Objective: value,
			Best:      bestValue,
			Feasible:  s.circuit.IsFeasible(),
		}
		trace = append(trace, it)

		hooks.OnIteration(ctx, i, value, bestValue, it.Feasible)
		s.logger.Debug("iteration", "iter", i, "objective", value, "best", bestValue, "feasible", it.Feasible)
		if opts.Progress != nil {
			opts.Progress(it)
		}

		if stagnation == opts.MaxStagnation {
			s.logger.Debug("stopping on stagnation", "iter", i, "stagnation", stagnation)
			break
		}

		s.UpdatePenalties()
	}

	s.circuit.RestoreState(best)

	// Cancelled before the first iteration: report the untouched placement.
	if bestValue == math.MaxInt {
		bestValue = s.Objective()
	}

	result := Result{
		Objective:  bestValue,
		Feasible:   s.circuit.IsFeasible(),
		Iterations: iterations,
		Duration:   time.Since(start),
		Trace:      trace,
	}

	hooks.OnSearchComplete(ctx, iterations, bestValue, result.Duration, runErr)
	return result, runErr
}
