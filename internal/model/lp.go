package model

import "math"

// Nonzero is one entry of the sparse constraint matrix.
type Nonzero struct {
	Row int
	Col int
	Val float64
}

// LP is a linear program in row-bound form:
//
//	minimize   ColCosts . x
//	subject to RowLower <= A.x <= RowUpper
//	           0 <= x_j <= ColUpper_j
//
// All variables are non-negative; equality rows have RowLower == RowUpper.
type LP struct {
	ColCosts []float64
	ColUpper []float64 // +Inf means unbounded above
	RowLower []float64 // -Inf means no lower bound
	RowUpper []float64 // +Inf means no upper bound
	Entries  []Nonzero
}

// Inf returns positive infinity, for unbounded columns and rows.
func Inf() float64 { return math.Inf(1) }

// NegInf returns negative infinity, for rows with no lower bound.
func NegInf() float64 { return math.Inf(-1) }

// AddColumn appends a variable with the given objective cost and upper bound,
// returning its column index.
func (m *LP) AddColumn(cost, upper float64) int {
	col := len(m.ColCosts)
	m.ColCosts = append(m.ColCosts, cost)
	m.ColUpper = append(m.ColUpper, upper)
	return col
}

// AddRow appends a constraint lower <= sum(vals_k * x_cols_k) <= upper.
// Zero coefficients are filtered out.
func (m *LP) AddRow(lower float64, cols []int, vals []float64, upper float64) int {
	row := len(m.RowLower)
	m.RowLower = append(m.RowLower, lower)
	m.RowUpper = append(m.RowUpper, upper)
	for k, col := range cols {
		if vals[k] != 0 {
			m.Entries = append(m.Entries, Nonzero{Row: row, Col: col, Val: vals[k]})
		}
	}
	return row
}

// NumCols returns the number of variables.
func (m *LP) NumCols() int { return len(m.ColCosts) }

// NumRows returns the number of constraints.
func (m *LP) NumRows() int { return len(m.RowLower) }
