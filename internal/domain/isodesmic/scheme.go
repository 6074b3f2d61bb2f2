package isodesmic

import (
	"context"
	"fmt"
	"sort"

	"github.com/turtacn/ThermoCancel/internal/config"
	"github.com/turtacn/ThermoCancel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ThermoCancel/pkg/errors"
	"github.com/turtacn/ThermoCancel/pkg/quantity"
	"github.com/turtacn/ThermoCancel/pkg/solver"
)

// Scheme orchestrates the error-canceling reaction search for one target.
//
// Construction prunes the candidate benchmark set to species whose element
// types all occur in the target, enumerates the target and then the retained
// benchmarks in input order, and caches the trimmed target constraint vector
// and benchmark constraint matrix.  The caches are immutable afterwards; the
// search procedures only read them, so a Scheme may be queried repeatedly.
type Scheme struct {
	target       *Species
	benchmarkSet []*Species
	constraints  *SpeciesConstraints
	cfg          config.SearchConfig
	logger       logging.Logger

	// targetVector and constraintMatrix are trimmed at the cutoff index —
	// the number of labels actually discovered across target and benchmarks.
	targetVector     []int
	constraintMatrix [][]int

	// rowTotals caches the total constraint count per benchmark row, the
	// objective weight preferring structurally simple species.
	rowTotals []int
}

// NewScheme builds a Scheme: prunes candidates, enumerates constraints, and
// caches the constraint matrix.  Candidates introducing elements absent from
// the target are dropped silently; constraint overflow is a fatal
// configuration error.
func NewScheme(target *Species, candidates []*Species, cfg config.SearchConfig, logger logging.Logger) (*Scheme, error) {
	if target == nil {
		return nil, errors.InvalidParam("scheme requires a target species")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	allowed := make(map[string]bool)
	var allowedList []string
	for el := range target.Structure().ElementCounts() {
		allowed[el] = true
		allowedList = append(allowedList, el)
	}
	sort.Strings(allowedList)

	s := &Scheme{
		target:      target,
		constraints: NewSpeciesConstraints(allowedList, cfg.ConserveBonds, cfg.ConserveRingSize),
		cfg:         cfg,
		logger:      logger.Named("isodesmic"),
	}

	for _, cand := range candidates {
		if !cand.IsBenchmark() {
			return nil, errors.New(errors.ErrCodeMissingHighLevel,
				"candidate benchmark species has no high-level enthalpy").
				WithDetail("label=" + cand.Label())
		}
		compatible := true
		for el := range cand.Structure().ElementCounts() {
			if !allowed[el] {
				compatible = false
				break
			}
		}
		if !compatible {
			s.logger.Debug("excluding incompatible benchmark species",
				logging.String("label", cand.Label()),
				logging.String("formula", cand.Structure().Formula()))
			continue
		}
		s.benchmarkSet = append(s.benchmarkSet, cand)
	}

	if err := s.initialize(); err != nil {
		return nil, err
	}

	s.logger.Info("scheme initialized",
		logging.String("target", target.Label()),
		logging.Int("candidates", len(candidates)),
		logging.Int("benchmarks", len(s.benchmarkSet)),
		logging.Int("constraints", len(s.targetVector)))
	return s, nil
}

// initialize enumerates the target first, then the retained benchmark set in
// input order, and trims all vectors at the cutoff index.  The fixed
// enumeration order is what makes constraint-column identity reproducible.
func (s *Scheme) initialize() error {
	targetVector, err := s.constraints.Enumerate(s.target.Structure())
	if err != nil {
		return err
	}

	matrix := make([][]int, len(s.benchmarkSet))
	for i, sp := range s.benchmarkSet {
		row, err := s.constraints.Enumerate(sp.Structure())
		if err != nil {
			return err
		}
		matrix[i] = row
	}

	cutoff := s.constraints.NumConstraints()
	s.targetVector = targetVector[:cutoff]
	s.constraintMatrix = make([][]int, len(matrix))
	s.rowTotals = make([]int, len(matrix))
	for i, row := range matrix {
		s.constraintMatrix[i] = row[:cutoff]
		total := 0
		for _, c := range row[:cutoff] {
			total += c
		}
		s.rowTotals[i] = total
	}
	return nil
}

// Target returns the target species.
func (s *Scheme) Target() *Species { return s.target }

// BenchmarkSet returns the retained benchmark species in matrix-row order.
func (s *Scheme) BenchmarkSet() []*Species {
	return append([]*Species(nil), s.benchmarkSet...)
}

// TargetVector returns the trimmed target constraint vector.
func (s *Scheme) TargetVector() []int {
	return append([]int(nil), s.targetVector...)
}

// ConstraintMatrix returns the trimmed benchmark constraint matrix
// (rows follow BenchmarkSet order).
func (s *Scheme) ConstraintMatrix() [][]int {
	out := make([][]int, len(s.constraintMatrix))
	for i, row := range s.constraintMatrix {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// MILP reaction finder
// ─────────────────────────────────────────────────────────────────────────────

// FindReaction searches for one balanced error-canceling reaction over the
// benchmark rows in subset.  It returns the reaction and the subset indices
// that received a nonzero coefficient, or (nil, nil, nil) when the program is
// infeasible or the solver budget expires — both are normal outcomes, not
// errors.
//
// The program doubles each subset species into a product-side and a
// reactant-side candidate with non-negative integer coefficients, so the
// solver is free to choose each species' role:
//
//	variables    p_i, n_i ∈ {0..MaxCoefficient}
//	balance      Σ_i (p_i − n_i)·count[i][j] = targetCount[j]  for each column j
//	size         Σ_i (p_i + n_i) ≤ MaxTotalCoefficient
//	objective    min Σ_i (p_i + n_i)·rowTotal[i]
func (s *Scheme) FindReaction(ctx context.Context, subset []int, slv solver.Solver) (*Reaction, []int, error) {
	m := len(subset)
	if m == 0 {
		return nil, nil, nil
	}
	for _, idx := range subset {
		if idx < 0 || idx >= len(s.benchmarkSet) {
			return nil, nil, errors.InvalidParam("subset index out of range").
				WithDetail(fmt.Sprintf("index=%d benchmarks=%d", idx, len(s.benchmarkSet)))
		}
	}

	p := solver.NewProblem()
	for i := 0; i < 2*m; i++ {
		p.AddVariable(0, s.cfg.MaxCoefficient)
	}

	// Balance: product half minus reactant half must reproduce the target.
	for j := range s.targetVector {
		coeffs := make([]float64, 2*m)
		for i, idx := range subset {
			c := float64(s.constraintMatrix[idx][j])
			coeffs[i] = c
			coeffs[m+i] = -c
		}
		if err := p.AddEquality(coeffs, float64(s.targetVector[j])); err != nil {
			return nil, nil, err
		}
	}

	total := make([]float64, 2*m)
	objective := make([]float64, 2*m)
	for i, idx := range subset {
		total[i], total[m+i] = 1, 1
		w := float64(s.rowTotals[idx])
		objective[i], objective[m+i] = w, w
	}
	if err := p.AddInequality(total, float64(s.cfg.MaxTotalCoefficient)); err != nil {
		return nil, nil, err
	}
	if err := p.SetObjective(objective); err != nil {
		return nil, nil, err
	}

	sol, err := slv.Solve(ctx, p, s.cfg.SolverTimeout)
	if err != nil {
		return nil, nil, err
	}
	if !sol.Status.HasSolution() {
		return nil, nil, nil
	}

	reaction := NewReaction(s.target)
	var consumed []int
	for i, idx := range subset {
		net := sol.X[i] - sol.X[m+i]
		if net == 0 {
			continue
		}
		reaction.SetCoefficient(s.benchmarkSet[idx], net)
		consumed = append(consumed, idx)
	}
	if reaction.Size() == 0 {
		// The all-zero solution only balances an all-zero target vector,
		// which a valid structure cannot produce; treat as no reaction.
		return nil, nil, nil
	}
	return reaction, consumed, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Subset-search frontier
// ─────────────────────────────────────────────────────────────────────────────

// MultipleReactionSearch explores a FIFO worklist of benchmark index sets,
// seeded with the full retained set.  Each found reaction branches the search
// into one child subset per consumed index (that index removed), so
// alternative reactions excluding each used species are explored.  A subset
// with no feasible reaction is terminal.  The search stops when the worklist
// is exhausted or maxReactions have been collected.
//
// An empty benchmark set yields an empty reaction list, not an error.
func (s *Scheme) MultipleReactionSearch(ctx context.Context, slv solver.Solver, maxReactions int) ([]*Reaction, error) {
	if maxReactions <= 0 {
		maxReactions = s.cfg.MaxReactions
	}

	seed := make([]int, len(s.benchmarkSet))
	for i := range seed {
		seed[i] = i
	}

	var reactions []*Reaction
	queue := [][]int{seed}

	for len(queue) > 0 && len(reactions) < maxReactions {
		subset := queue[0]
		queue = queue[1:]
		if len(subset) == 0 {
			continue
		}

		reaction, consumed, err := s.FindReaction(ctx, subset, slv)
		if err != nil {
			return nil, err
		}
		if reaction == nil {
			continue
		}

		reactions = append(reactions, reaction)
		s.logger.Debug("found error-canceling reaction",
			logging.Int("n", len(reactions)),
			logging.String("reaction", reaction.String()))

		for _, used := range consumed {
			child := make([]int, 0, len(subset)-1)
			for _, idx := range subset {
				if idx != used {
					child = append(child, idx)
				}
			}
			queue = append(queue, child)
		}
	}

	return reactions, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Aggregation
// ─────────────────────────────────────────────────────────────────────────────

// CalculateTargetEnthalpy runs the reaction search and aggregates the
// per-reaction estimates into the final high-level enthalpy of formation of
// the target, taken as the median for robustness against chemically atypical
// benchmark combinations.  The discovered reactions are returned for
// diagnostics.  Finding no reaction at all is a distinct error condition.
func (s *Scheme) CalculateTargetEnthalpy(ctx context.Context, slv solver.Solver, maxReactions int) (quantity.Scalar, []*Reaction, error) {
	reactions, err := s.MultipleReactionSearch(ctx, slv, maxReactions)
	if err != nil {
		return quantity.Scalar{}, nil, err
	}
	if len(reactions) == 0 {
		return quantity.Scalar{}, nil, errors.New(errors.ErrCodeNoReactionsFound,
			"no error-canceling reactions found").WithDetail("target=" + s.target.Label())
	}

	estimates := make([]float64, 0, len(reactions))
	for _, r := range reactions {
		h, err := r.CalculateTargetThermo()
		if err != nil {
			return quantity.Scalar{}, nil, err
		}
		estimates = append(estimates, h.SI())
	}

	return quantity.MustScalar(median(estimates), "J/mol"), reactions, nil
}

// median returns the sample median, averaging the two middle values for even
// counts.  gonum's quantile kinds disagree with this convention for small n,
// so the middle-average is computed directly.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
