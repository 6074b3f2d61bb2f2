// Package solver defines a minimal integer-programming interface and a
// deterministic branch-and-bound backend.
//
// The estimation core needs only a narrow capability: non-negative or
// box-bounded integer variables, linear equality and inequality constraints,
// a linear minimization objective, and a solve budget.  The Solver interface
// captures exactly that, so alternative backends (an external MILP library,
// a pseudo-Boolean encoder) can be substituted without touching the reaction
// search.
//
// The built-in backend is designed to be:
//   - Deterministic: same problem, same solution — no randomized branching.
//   - Bounded: a soft wall-clock budget checked between nodes.
//   - Exact: integer solutions are proven optimal unless the budget expires.
package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/ThermoCancel/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Problem
// ─────────────────────────────────────────────────────────────────────────────

type constraintRow struct {
	coeffs []float64
	rhs    float64
}

// Problem is a mixed-integer linear program under construction: integer
// variables with inclusive bounds, linear equalities, linear "≤" inequalities,
// and a linear minimization objective.
type Problem struct {
	lower     []int
	upper     []int
	objective []float64
	eqs       []constraintRow
	ineqs     []constraintRow
}

// NewProblem returns an empty Problem.
func NewProblem() *Problem {
	return &Problem{}
}

// NumVariables returns the number of variables added so far.
func (p *Problem) NumVariables() int { return len(p.lower) }

// AddVariable adds an integer variable with inclusive bounds [lb, ub] and
// returns its index.
func (p *Problem) AddVariable(lb, ub int) int {
	p.lower = append(p.lower, lb)
	p.upper = append(p.upper, ub)
	return len(p.lower) - 1
}

// SetObjective sets the minimization objective Σ coeffs[i]·x[i].
// len(coeffs) must equal the current variable count.
func (p *Problem) SetObjective(coeffs []float64) error {
	if len(coeffs) != len(p.lower) {
		return errors.New(errors.ErrCodeProblemMalformed,
			"objective length does not match variable count").
			WithDetail(fmt.Sprintf("got=%d want=%d", len(coeffs), len(p.lower)))
	}
	p.objective = append([]float64(nil), coeffs...)
	return nil
}

// AddEquality adds the constraint Σ coeffs[i]·x[i] = rhs.
func (p *Problem) AddEquality(coeffs []float64, rhs float64) error {
	if len(coeffs) != len(p.lower) {
		return errors.New(errors.ErrCodeProblemMalformed,
			"equality row length does not match variable count").
			WithDetail(fmt.Sprintf("got=%d want=%d", len(coeffs), len(p.lower)))
	}
	p.eqs = append(p.eqs, constraintRow{coeffs: append([]float64(nil), coeffs...), rhs: rhs})
	return nil
}

// AddInequality adds the constraint Σ coeffs[i]·x[i] ≤ rhs.
func (p *Problem) AddInequality(coeffs []float64, rhs float64) error {
	if len(coeffs) != len(p.lower) {
		return errors.New(errors.ErrCodeProblemMalformed,
			"inequality row length does not match variable count").
			WithDetail(fmt.Sprintf("got=%d want=%d", len(coeffs), len(p.lower)))
	}
	p.ineqs = append(p.ineqs, constraintRow{coeffs: append([]float64(nil), coeffs...), rhs: rhs})
	return nil
}

// validate checks the problem shape before a solve.
func (p *Problem) validate() error {
	if len(p.lower) == 0 {
		return errors.New(errors.ErrCodeProblemMalformed, "problem has no variables")
	}
	if p.objective == nil {
		return errors.New(errors.ErrCodeProblemMalformed, "problem has no objective")
	}
	for i := range p.lower {
		if p.lower[i] > p.upper[i] {
			return errors.New(errors.ErrCodeProblemMalformed,
				"variable has empty bound interval").
				WithDetail(fmt.Sprintf("var=%d lb=%d ub=%d", i, p.lower[i], p.upper[i]))
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Solution and Solver
// ─────────────────────────────────────────────────────────────────────────────

// Status classifies the outcome of a solve.
type Status int

const (
	// StatusOptimal: an integer solution was found and proven optimal.
	StatusOptimal Status = iota
	// StatusFeasible: an integer solution was found but the budget expired
	// before optimality was proven.
	StatusFeasible
	// StatusInfeasible: the problem has no integer solution.
	StatusInfeasible
	// StatusTimedOut: the budget expired before any integer solution was found.
	StatusTimedOut
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusTimedOut:
		return "timed_out"
	}
	return "unknown"
}

// HasSolution reports whether the status carries a usable solution vector.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Solution is the result of a solve.  X is populated only when
// Status.HasSolution() is true.
type Solution struct {
	Status    Status
	X         []int
	Objective float64
}

// Solver solves integer programs within a wall-clock budget.  A budget
// expiry or infeasible problem is reported via Solution.Status, not as an
// error; errors are reserved for malformed problems and backend failures.
type Solver interface {
	Name() string
	Solve(ctx context.Context, p *Problem, budget time.Duration) (Solution, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Backend registry
// ─────────────────────────────────────────────────────────────────────────────

// DefaultBackend is the backend used when no explicit choice is supplied.
const DefaultBackend = "branch-and-bound"

// New returns the solver backend registered under name.  An empty name
// selects DefaultBackend.  Unknown names are a fatal configuration error.
func New(name string) (Solver, error) {
	switch name {
	case "", DefaultBackend:
		return NewBranchBound(), nil
	default:
		return nil, errors.New(errors.ErrCodeSolverUnavailable,
			"solver backend unavailable").WithDetail("backend=" + name)
	}
}
