package solver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/cleanpath/macc/internal/model"
)

// SimplexBackend solves the model exactly with gonum's dense simplex after
// converting it to standard form (Ax = b, x >= 0): inequality rows and finite
// column upper bounds each get a slack column.
type SimplexBackend struct {
	// Tol is the simplex tolerance; zero uses gonum's default.
	Tol float64
}

// Name implements Backend.
func (b *SimplexBackend) Name() string { return "simplex" }

// Solve implements Backend.
func (b *SimplexBackend) Solve(m *model.Model) (*Result, error) {
	c, a, rhs, err := toStandardForm(m.LP)
	if err != nil {
		return nil, err
	}

	obj, x, err := lp.Simplex(c, a, rhs, b.Tol, nil)
	switch {
	case err == nil:
		return &Result{
			Backend:   b.Name(),
			Status:    StatusOptimal,
			Objective: obj,
			Values:    x[:m.LP.NumCols()],
		}, nil
	case errors.Is(err, lp.ErrInfeasible):
		return &Result{Backend: b.Name(), Status: StatusInfeasible}, nil
	case errors.Is(err, lp.ErrUnbounded):
		return &Result{Backend: b.Name(), Status: StatusUnbounded}, nil
	default:
		return nil, fmt.Errorf("simplex solve failed: %w", err)
	}
}

// toStandardForm rewrites the row-bound LP as minimize c.x subject to
// A.x = b, x >= 0. Original columns come first, so a solution vector can be
// truncated to read the model variables back.
func toStandardForm(p *model.LP) ([]float64, *mat.Dense, []float64, error) {
	n := p.NumCols()

	type rowKind int
	const (
		rowEq rowKind = iota
		rowLe
		rowGe
	)

	kinds := make([]rowKind, p.NumRows())
	slackCount := 0
	for r := 0; r < p.NumRows(); r++ {
		lo, up := p.RowLower[r], p.RowUpper[r]
		switch {
		case lo == up:
			kinds[r] = rowEq
		case math.IsInf(lo, -1) && !math.IsInf(up, 1):
			kinds[r] = rowLe
			slackCount++
		case !math.IsInf(lo, -1) && math.IsInf(up, 1):
			kinds[r] = rowGe
			slackCount++
		default:
			return nil, nil, nil, fmt.Errorf("row %d has a ranged bound [%g, %g], which the deployment model never produces", r, lo, up)
		}
	}

	boundedCols := make([]int, 0, n)
	for j := 0; j < n; j++ {
		if !math.IsInf(p.ColUpper[j], 1) {
			boundedCols = append(boundedCols, j)
		}
	}

	totalRows := p.NumRows() + len(boundedCols)
	totalCols := n + slackCount + len(boundedCols)

	a := mat.NewDense(totalRows, totalCols, nil)
	rhs := make([]float64, totalRows)
	c := make([]float64, totalCols)
	copy(c, p.ColCosts)

	for _, e := range p.Entries {
		a.Set(e.Row, e.Col, e.Val)
	}

	slack := n
	for r := 0; r < p.NumRows(); r++ {
		switch kinds[r] {
		case rowEq:
			rhs[r] = p.RowLower[r]
		case rowLe:
			a.Set(r, slack, 1)
			rhs[r] = p.RowUpper[r]
			slack++
		case rowGe:
			a.Set(r, slack, -1)
			rhs[r] = p.RowLower[r]
			slack++
		}
	}

	// Column upper bounds become x_j + s = ub rows; ub of zero pins the
	// variable to exactly zero.
	for k, j := range boundedCols {
		row := p.NumRows() + k
		a.Set(row, j, 1)
		a.Set(row, slack, 1)
		rhs[row] = p.ColUpper[j]
		slack++
	}

	return c, a, rhs, nil
}
