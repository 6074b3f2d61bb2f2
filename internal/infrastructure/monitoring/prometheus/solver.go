package prometheus

import (
	"context"
	"time"

	"github.com/turtacn/ThermoCancel/pkg/solver"
)

// InstrumentSolver wraps slv so every solve records its duration and outcome
// status.  A nil Metrics returns slv unwrapped.
func InstrumentSolver(slv solver.Solver, m *Metrics) solver.Solver {
	if m == nil {
		return slv
	}
	return &instrumentedSolver{inner: slv, metrics: m}
}

type instrumentedSolver struct {
	inner   solver.Solver
	metrics *Metrics
}

func (s *instrumentedSolver) Name() string { return s.inner.Name() }

func (s *instrumentedSolver) Solve(ctx context.Context, p *solver.Problem, budget time.Duration) (solver.Solution, error) {
	start := time.Now()
	sol, err := s.inner.Solve(ctx, p, budget)
	if err != nil {
		s.metrics.ObserveSolve("error", time.Since(start))
		return sol, err
	}
	s.metrics.ObserveSolve(sol.Status.String(), time.Since(start))
	return sol, nil
}
