package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/cleanpath/macc/internal/model"
)

// DescentBackend approximates the LP with a quadratic penalty on constraint
// violations, minimized by BFGS with a NelderMead retry. It is the fallback
// when the exact simplex backend cannot deliver a verdict; it cannot prove
// infeasibility, so an unsatisfiable model surfaces as a convergence error.
type DescentBackend struct{}

// Name implements Backend.
func (b *DescentBackend) Name() string { return "descent" }

// feasTol is the accepted residual constraint violation, relative to the
// largest row bound magnitude.
const feasTol = 1e-4

type denseRow struct {
	cols  []int
	vals  []float64
	lower float64
	upper float64
}

// Solve implements Backend.
func (b *DescentBackend) Solve(m *model.Model) (*Result, error) {
	p := m.LP
	n := p.NumCols()
	if n == 0 {
		return &Result{Backend: b.Name(), Status: StatusOptimal}, nil
	}

	rows := collectRows(p)

	// Scale the penalty to the cost magnitudes so violations always dominate
	// any cost saving from ignoring a constraint.
	maxCost := 1.0
	for _, cost := range p.ColCosts {
		if v := math.Abs(cost); v > maxCost {
			maxCost = v
		}
	}
	penaltyWeight := 1000.0 * maxCost

	project := func(x []float64) []float64 {
		proj := make([]float64, n)
		for j := range x {
			proj[j] = math.Max(0, math.Min(p.ColUpper[j], x[j]))
		}
		return proj
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			xp := project(x)
			obj := 0.0
			for j := 0; j < n; j++ {
				obj += p.ColCosts[j] * xp[j]
			}
			for _, row := range rows {
				v := rowValue(row, xp)
				if row.lower == row.upper {
					d := v - row.lower
					obj += penaltyWeight * d * d
				} else {
					if v > row.upper {
						d := v - row.upper
						obj += penaltyWeight * d * d
					}
					if v < row.lower {
						d := row.lower - v
						obj += penaltyWeight * d * d
					}
				}
			}
			return obj
		},
		Grad: func(grad, x []float64) {
			xp := project(x)
			copy(grad, p.ColCosts)
			for _, row := range rows {
				v := rowValue(row, xp)
				var d float64
				switch {
				case row.lower == row.upper:
					d = v - row.lower
				case v > row.upper:
					d = v - row.upper
				case v < row.lower:
					d = v - row.lower
				default:
					continue
				}
				for k, col := range row.cols {
					grad[col] += 2 * penaltyWeight * d * row.vals[k]
				}
			}
		},
	}

	initial := make([]float64, n)

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.BFGS{})
	if err != nil || !converged(result.Status) {
		result, err = optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
		if err != nil {
			return nil, fmt.Errorf("descent solve failed: %w", err)
		}
		if !converged(result.Status) {
			return nil, fmt.Errorf("descent did not converge: status=%v", result.Status)
		}
	}

	x := project(result.X)
	if viol := maxViolation(rows, x); viol > feasTol*boundScale(rows) {
		return nil, fmt.Errorf("descent solution violates constraints by %g; model may be infeasible", viol)
	}

	obj := 0.0
	for j := 0; j < n; j++ {
		obj += p.ColCosts[j] * x[j]
	}

	return &Result{
		Backend:   b.Name(),
		Status:    StatusOptimal,
		Objective: obj,
		Values:    x,
	}, nil
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence, optimize.StepConvergence:
		return true
	}
	return false
}

func collectRows(p *model.LP) []denseRow {
	rows := make([]denseRow, p.NumRows())
	for r := range rows {
		rows[r].lower = p.RowLower[r]
		rows[r].upper = p.RowUpper[r]
	}
	for _, e := range p.Entries {
		rows[e.Row].cols = append(rows[e.Row].cols, e.Col)
		rows[e.Row].vals = append(rows[e.Row].vals, e.Val)
	}
	return rows
}

func rowValue(row denseRow, x []float64) float64 {
	v := 0.0
	for k, col := range row.cols {
		v += row.vals[k] * x[col]
	}
	return v
}

func maxViolation(rows []denseRow, x []float64) float64 {
	worst := 0.0
	for _, row := range rows {
		v := rowValue(row, x)
		if !math.IsInf(row.lower, -1) && v < row.lower {
			worst = math.Max(worst, row.lower-v)
		}
		if !math.IsInf(row.upper, 1) && v > row.upper {
			worst = math.Max(worst, v-row.upper)
		}
	}
	return worst
}

func boundScale(rows []denseRow) float64 {
	scale := 1.0
	for _, row := range rows {
		if !math.IsInf(row.lower, -1) {
			scale = math.Max(scale, math.Abs(row.lower))
		}
		if !math.IsInf(row.upper, 1) {
			scale = math.Max(scale, math.Abs(row.upper))
		}
	}
	return scale
}
