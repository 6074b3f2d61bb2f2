package solver

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/turtacn/ThermoCancel/pkg/errors"
)

// BranchBound is an exact MILP backend: depth-first branch-and-bound over LP
// relaxations solved with gonum's simplex.  Branching is deterministic
// (lowest-index fractional variable, floor branch first), so identical
// problems always produce identical solutions.
type BranchBound struct {
	// intTol is the distance from an integer below which an LP value is
	// accepted as integral.
	intTol float64

	// eps guards incumbent-bound comparisons against LP round-off.
	eps float64
}

// NewBranchBound returns a BranchBound solver with default tolerances.
func NewBranchBound() *BranchBound {
	return &BranchBound{intTol: 1e-6, eps: 1e-9}
}

// Name implements Solver.
func (s *BranchBound) Name() string { return DefaultBackend }

// node is one box of the search tree: per-variable inclusive integer bounds.
type node struct {
	lo, hi []int
}

func (n node) branch(idx, floorVal int) (left, right node) {
	left = node{lo: append([]int(nil), n.lo...), hi: append([]int(nil), n.hi...)}
	right = node{lo: append([]int(nil), n.lo...), hi: append([]int(nil), n.hi...)}
	left.hi[idx] = floorVal
	right.lo[idx] = floorVal + 1
	return left, right
}

// Solve implements Solver.  The budget is a soft wall-clock bound checked
// between nodes; an in-flight LP relaxation is never interrupted.
func (s *BranchBound) Solve(ctx context.Context, p *Problem, budget time.Duration) (Solution, error) {
	if err := p.validate(); err != nil {
		return Solution{}, err
	}

	deadline := time.Now().Add(budget)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}

	var (
		bestX   []int
		bestObj = math.Inf(1)
		found   bool
	)

	// DFS via explicit stack; the floor branch is pushed last so it is
	// explored first.
	stack := []node{{
		lo: append([]int(nil), p.lower...),
		hi: append([]int(nil), p.upper...),
	}}

	timedOut := false
	for len(stack) > 0 {
		if time.Now().After(deadline) || ctx.Err() != nil {
			timedOut = true
			break
		}

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rel, err := s.relax(p, nd)
		if err != nil {
			return Solution{}, err
		}
		if !rel.feasible {
			continue
		}
		if found && rel.objective >= bestObj-s.eps {
			continue
		}

		if rel.branchVar < 0 {
			// Integral relaxation: node-optimal integer point.
			if !found || rel.objective < bestObj-s.eps {
				bestObj = rel.objective
				bestX = rel.x
				found = true
			}
			continue
		}

		floorVal := int(math.Floor(rel.values[rel.branchVar]))
		left, right := nd.branch(rel.branchVar, floorVal)
		if right.lo[rel.branchVar] <= right.hi[rel.branchVar] {
			stack = append(stack, right)
		}
		if left.lo[rel.branchVar] <= left.hi[rel.branchVar] {
			stack = append(stack, left)
		}
	}

	switch {
	case found && !timedOut:
		return Solution{Status: StatusOptimal, X: bestX, Objective: bestObj}, nil
	case found:
		return Solution{Status: StatusFeasible, X: bestX, Objective: bestObj}, nil
	case timedOut:
		return Solution{Status: StatusTimedOut}, nil
	default:
		return Solution{Status: StatusInfeasible}, nil
	}
}

// relaxation is the outcome of solving one node's LP relaxation.
type relaxation struct {
	feasible  bool
	objective float64
	// values holds the relaxed variable values in original variable space.
	values []float64
	// x holds the rounded integer point when branchVar < 0.
	x []int
	// branchVar is the lowest-index fractional variable, or -1 if integral.
	branchVar int
}

// relax solves the LP relaxation of p restricted to the node box.
// Fixed variables (lo == hi) are substituted out; free variables are shifted
// to t = x - lo so the LP is in standard form (t ≥ 0), with explicit slack
// rows for inequalities and upper bounds.
func (s *BranchBound) relax(p *Problem, nd node) (relaxation, error) {
	n := len(p.lower)

	freeIdx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if nd.hi[i] > nd.lo[i] {
			freeIdx = append(freeIdx, i)
		}
	}
	nf := len(freeIdx)

	// Constant objective contribution of the lower-bound shift.
	objConst := 0.0
	for i := 0; i < n; i++ {
		objConst += p.objective[i] * float64(nd.lo[i])
	}

	// All variables fixed: evaluate constraints directly.
	if nf == 0 {
		for _, row := range p.eqs {
			if math.Abs(rowValue(row, nd.lo)-row.rhs) > s.intTol {
				return relaxation{}, nil
			}
		}
		for _, row := range p.ineqs {
			if rowValue(row, nd.lo)-row.rhs > s.intTol {
				return relaxation{}, nil
			}
		}
		return relaxation{
			feasible:  true,
			objective: objConst,
			x:         append([]int(nil), nd.lo...),
			branchVar: -1,
		}, nil
	}

	// Reduce the shifted equality system to an independent row set; the raw
	// system may have more rows than free variables, which the simplex
	// rejects.
	eqRows, eqRHS, feasible := s.reduceEqualities(p, nd, freeIdx)
	if !feasible {
		return relaxation{}, nil
	}

	// Shifted inequality rows; rows without free coefficients are checked
	// directly instead of entering the LP.
	type ineqRow struct {
		coeffs []float64
		rhs    float64
	}
	var ineqs []ineqRow
	for _, row := range p.ineqs {
		shifted := make([]float64, nf)
		active := false
		for j, vi := range freeIdx {
			shifted[j] = row.coeffs[vi]
			if shifted[j] != 0 {
				active = true
			}
		}
		rhs := row.rhs
		for i := 0; i < n; i++ {
			rhs -= row.coeffs[i] * float64(nd.lo[i])
		}
		if !active {
			if rhs < -s.intTol {
				return relaxation{}, nil
			}
			continue
		}
		ineqs = append(ineqs, ineqRow{coeffs: shifted, rhs: rhs})
	}

	// Assemble standard form: columns are [t, inequality slacks, bound slacks].
	nq := len(ineqs)
	cols := nf + nq + nf
	rows := len(eqRows) + nq + nf

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)

	for j, vi := range freeIdx {
		c[j] = p.objective[vi]
	}

	r := 0
	for i, row := range eqRows {
		for j := 0; j < nf; j++ {
			a.Set(r, j, row[j])
		}
		b[r] = eqRHS[i]
		r++
	}
	for i, row := range ineqs {
		for j := 0; j < nf; j++ {
			a.Set(r, j, row.coeffs[j])
		}
		a.Set(r, nf+i, 1)
		b[r] = row.rhs
		r++
	}
	for j, vi := range freeIdx {
		a.Set(r, j, 1)
		a.Set(r, nf+nq+j, 1)
		b[r] = float64(nd.hi[vi] - nd.lo[vi])
		r++
	}

	lpObj, lpX, err := lp.Simplex(c, a, b, 1e-10, nil)
	switch {
	case err == lp.ErrInfeasible:
		return relaxation{}, nil
	case err == lp.ErrUnbounded:
		// A box-bounded program cannot be unbounded; this is a backend fault.
		return relaxation{}, errors.Wrap(err, errors.ErrCodeSolverInternal,
			"LP relaxation reported unbounded on a bounded box")
	case err != nil:
		// Numerical breakdown on a single node; treat as an infeasible node
		// so the search continues elsewhere.
		return relaxation{}, nil
	}

	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = float64(nd.lo[i])
	}
	for j, vi := range freeIdx {
		values[vi] += lpX[j]
	}

	rel := relaxation{
		feasible:  true,
		objective: lpObj + objConst,
		values:    values,
		branchVar: -1,
	}

	for _, vi := range freeIdx {
		if math.Abs(values[vi]-math.Round(values[vi])) > s.intTol {
			rel.branchVar = vi
			break
		}
	}
	if rel.branchVar < 0 {
		x := make([]int, n)
		for i := 0; i < n; i++ {
			x[i] = int(math.Round(values[i]))
		}
		rel.x = x
	}
	return rel, nil
}

// reduceEqualities shifts the equality system into free-variable space and
// performs Gaussian elimination with partial pivoting, dropping dependent
// rows.  Returns feasible=false when a row reduces to 0 = nonzero.
func (s *BranchBound) reduceEqualities(p *Problem, nd node, freeIdx []int) ([][]float64, []float64, bool) {
	n := len(p.lower)
	nf := len(freeIdx)

	aug := make([][]float64, 0, len(p.eqs))
	for _, row := range p.eqs {
		shifted := make([]float64, nf+1)
		for j, vi := range freeIdx {
			shifted[j] = row.coeffs[vi]
		}
		rhs := row.rhs
		for i := 0; i < n; i++ {
			rhs -= row.coeffs[i] * float64(nd.lo[i])
		}
		shifted[nf] = rhs
		aug = append(aug, shifted)
	}

	const pivotTol = 1e-9
	rank := 0
	for col := 0; col < nf && rank < len(aug); col++ {
		// Deterministic partial pivoting: largest magnitude, lowest row wins ties.
		pivot, pivotAbs := -1, pivotTol
		for r := rank; r < len(aug); r++ {
			if abs := math.Abs(aug[r][col]); abs > pivotAbs {
				pivot, pivotAbs = r, abs
			}
		}
		if pivot < 0 {
			continue
		}
		aug[rank], aug[pivot] = aug[pivot], aug[rank]
		for r := rank + 1; r < len(aug); r++ {
			if aug[r][col] == 0 {
				continue
			}
			factor := aug[r][col] / aug[rank][col]
			for j := col; j <= nf; j++ {
				aug[r][j] -= factor * aug[rank][j]
			}
		}
		rank++
	}

	// Rows below the rank are all-zero in the coefficient part; a nonzero
	// right-hand side there means the system is inconsistent.
	for r := rank; r < len(aug); r++ {
		if math.Abs(aug[r][nf]) > 1e-7 {
			return nil, nil, false
		}
	}

	rowsOut := make([][]float64, rank)
	rhsOut := make([]float64, rank)
	for r := 0; r < rank; r++ {
		rowsOut[r] = aug[r][:nf]
		rhsOut[r] = aug[r][nf]
	}
	return rowsOut, rhsOut, true
}

func rowValue(row constraintRow, x []int) float64 {
	v := 0.0
	for i, c := range row.coeffs {
		v += c * float64(x[i])
	}
	return v
}
