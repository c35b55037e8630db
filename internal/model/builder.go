// Package model assembles the deployment LP from baseline emissions, the
// target trajectory, resolved technology parameters and relationship
// constraints. Construction is single-shot and cannot fail on well-formed
// input; an unreachable target surfaces as solver-time infeasibility, not a
// builder error.
package model

import (
	"math"
	"sort"

	"github.com/cleanpath/macc/internal/relations"
	"github.com/cleanpath/macc/internal/timeseries"
)

// tonnesPerMt converts targets (Mt CO2e) into the tonne mass balance the
// abatement variables are denominated in.
const tonnesPerMt = 1e6

// Options configure model construction.
type Options struct {
	// AllowSlack adds a per-year shortfall variable so the model stays
	// feasible when the available technologies cannot reach the target.
	AllowSlack bool
	// SlackPenalty is the objective cost per tonne of shortfall. It must
	// dominate any real deployment cost.
	SlackPenalty float64
	// DiscountRate is the annual rate for the NPV objective.
	DiscountRate float64
	// BaseYear anchors discounting; zero means the first model year.
	BaseYear int
}

// Model is one constructed LP instance plus the index maps needed to read
// solved variables back out. Undefined parameter values are materialized as
// zeros here: a technology with no adoption-ceiling data gets a zero ceiling
// and is therefore permanently non-deployable rather than a build error.
type Model struct {
	LP    *LP
	Years []int
	Techs []timeseries.TechParams

	// Required abatement per year, in tonnes.
	Required map[int]float64
	// Discount factor per year relative to the base year.
	Discount map[int]float64

	AllowSlack bool

	buildCols [][]int // [tech][year] -> column
	shareCols [][]int
	abateCols [][]int
	slackCols []int // [year] -> column; nil when slack is disabled

	summary Summary
}

// Summary reports the size of a constructed model, for logging.
type Summary struct {
	Variables    int
	Constraints  int
	Nonzeros     int
	StockRows    int
	AbateRows    int
	TargetRows   int
	GroupRows    int
	CouplingRows int
}

// Build assembles the LP. Years are sorted and deduplicated; technologies
// keep the order the parameter builder produced.
func Build(techs []timeseries.TechParams, years []int, baselineMt float64, targets map[int]float64, rel relations.Relationships, opts Options) *Model {
	sorted := dedupSorted(years)

	m := &Model{
		LP:         &LP{},
		Years:      sorted,
		Techs:      techs,
		Required:   make(map[int]float64, len(sorted)),
		Discount:   make(map[int]float64, len(sorted)),
		AllowSlack: opts.AllowSlack,
	}

	baseYear := opts.BaseYear
	if baseYear == 0 && len(sorted) > 0 {
		baseYear = sorted[0]
	}
	for _, y := range sorted {
		target, ok := targets[y]
		if !ok {
			target = baselineMt
		}
		m.Required[y] = math.Max(0, baselineMt-target) * tonnesPerMt
		m.Discount[y] = 1.0 / math.Pow(1.0+opts.DiscountRate, float64(y-baseYear))
	}

	m.addVariables(opts)
	m.addStockRows()
	m.addAbatementRows()
	m.addTargetRows()
	m.addGroupRows(rel.Groups)
	m.addCouplingRows(rel.Couplings)

	return m
}

// BuildCol returns the column index of build[tech ti, year yi].
func (m *Model) BuildCol(ti, yi int) int { return m.buildCols[ti][yi] }

// ShareCol returns the column index of share[tech ti, year yi].
func (m *Model) ShareCol(ti, yi int) int { return m.shareCols[ti][yi] }

// AbateCol returns the column index of abate[tech ti, year yi].
func (m *Model) AbateCol(ti, yi int) int { return m.abateCols[ti][yi] }

// ShortfallCol returns the column index of shortfall[year yi], or -1 when
// slack is disabled.
func (m *Model) ShortfallCol(yi int) int {
	if m.slackCols == nil {
		return -1
	}
	return m.slackCols[yi]
}

// Summarize counts the model's pieces.
func (m *Model) Summarize() Summary {
	s := m.summary
	s.Variables = m.LP.NumCols()
	s.Constraints = m.LP.NumRows()
	s.Nonzeros = len(m.LP.Entries)
	return s
}

// addVariables lays out build/share/abate per (tech, year) and shortfall per
// year. Commercial availability and the ramp limit are column bounds on
// build; the adoption ceiling is a column bound on share.
func (m *Model) addVariables(opts Options) {
	nT, nY := len(m.Techs), len(m.Years)
	m.buildCols = make([][]int, nT)
	m.shareCols = make([][]int, nT)
	m.abateCols = make([][]int, nT)

	for ti, tech := range m.Techs {
		m.buildCols[ti] = make([]int, nY)
		for yi, y := range m.Years {
			upper := tech.RampRate
			if y < tech.StartYear {
				// No build before the commercial start year.
				upper = 0
			}
			m.buildCols[ti][yi] = m.LP.AddColumn(0, upper)
		}
	}

	for ti, tech := range m.Techs {
		m.shareCols[ti] = make([]int, nY)
		lifetime := tech.Lifetime
		if lifetime < 1 {
			lifetime = 1
		}
		for yi, y := range m.Years {
			activity := tech.Activity.ValueOr(y, 0)
			unitCost := tech.Capex.ValueOr(y, 0)/float64(lifetime) +
				tech.FixedOpex.ValueOr(y, 0) +
				tech.VarOpex.ValueOr(y, 0)
			cost := m.Discount[y] * unitCost * activity
			m.shareCols[ti][yi] = m.LP.AddColumn(cost, tech.Cap.ValueOr(y, 0))
		}
	}

	for ti := range m.Techs {
		m.abateCols[ti] = make([]int, nY)
		for yi := range m.Years {
			m.abateCols[ti][yi] = m.LP.AddColumn(0, Inf())
		}
	}

	if opts.AllowSlack {
		m.slackCols = make([]int, nY)
		for yi, y := range m.Years {
			m.slackCols[yi] = m.LP.AddColumn(m.Discount[y]*opts.SlackPenalty, Inf())
		}
	}
}

// addStockRows ties cumulative share to the surviving build vintages:
// share[i,t] = sum of build[i,tau] for tau <= t with t - tau < lifetime.
// Rolling stock-with-retirement falls out of this convolution without any
// per-vintage bookkeeping.
func (m *Model) addStockRows() {
	for ti, tech := range m.Techs {
		lifetime := tech.Lifetime
		if lifetime < 1 {
			lifetime = 1
		}
		for yi, y := range m.Years {
			cols := []int{m.shareCols[ti][yi]}
			vals := []float64{1}
			for vi, vintage := range m.Years {
				if vintage <= y && y-vintage < lifetime {
					cols = append(cols, m.buildCols[ti][vi])
					vals = append(vals, -1)
				}
			}
			m.LP.AddRow(0, cols, vals, 0)
			m.summary.StockRows++
		}
	}
}

// addAbatementRows fixes abate[i,t] = share[i,t] * activity[i,t] * rate[i,t].
// Activity and rate are per-year parameters, so the row stays linear.
func (m *Model) addAbatementRows() {
	for ti, tech := range m.Techs {
		for yi, y := range m.Years {
			k := tech.Activity.ValueOr(y, 0) * tech.AbatementRate.ValueOr(y, 0)
			cols := []int{m.abateCols[ti][yi], m.shareCols[ti][yi]}
			vals := []float64{1, -k}
			m.LP.AddRow(0, cols, vals, 0)
			m.summary.AbateRows++
		}
	}
}

// addTargetRows requires total abatement (plus shortfall when slack is
// enabled) to cover the required mass each year. Without slack this is a hard
// constraint and the model may be infeasible.
func (m *Model) addTargetRows() {
	for yi, y := range m.Years {
		cols := make([]int, 0, len(m.Techs)+1)
		vals := make([]float64, 0, len(m.Techs)+1)
		for ti := range m.Techs {
			cols = append(cols, m.abateCols[ti][yi])
			vals = append(vals, 1)
		}
		if m.slackCols != nil {
			cols = append(cols, m.slackCols[yi])
			vals = append(vals, 1)
		}
		m.LP.AddRow(m.Required[y], cols, vals, Inf())
		m.summary.TargetRows++
	}
}

// addGroupRows caps each mutual-exclusivity group's combined share at full
// occupancy of the shared slot. Members missing from the parameter set are
// ignored.
func (m *Model) addGroupRows(groups [][]string) {
	techIdx := m.techIndex()
	for _, group := range groups {
		var members []int
		for _, id := range group {
			if ti, ok := techIdx[id]; ok {
				members = append(members, ti)
			}
		}
		if len(members) == 0 {
			continue
		}
		for yi := range m.Years {
			cols := make([]int, len(members))
			vals := make([]float64, len(members))
			for k, ti := range members {
				cols[k] = m.shareCols[ti][yi]
				vals[k] = 1
			}
			m.LP.AddRow(NegInf(), cols, vals, 1)
			m.summary.GroupRows++
		}
	}
}

// addCouplingRows enforces share[primary,t] <= share[secondary,t]. Pairs
// naming an unknown technology are ignored.
func (m *Model) addCouplingRows(couplings []relations.Coupling) {
	techIdx := m.techIndex()
	for _, c := range couplings {
		pi, okP := techIdx[c.Primary]
		si, okS := techIdx[c.Secondary]
		if !okP || !okS {
			continue
		}
		for yi := range m.Years {
			cols := []int{m.shareCols[pi][yi], m.shareCols[si][yi]}
			vals := []float64{1, -1}
			m.LP.AddRow(NegInf(), cols, vals, 0)
			m.summary.CouplingRows++
		}
	}
}

func (m *Model) techIndex() map[string]int {
	idx := make(map[string]int, len(m.Techs))
	for ti, tech := range m.Techs {
		idx[tech.ID] = ti
	}
	return idx
}

func dedupSorted(years []int) []int {
	seen := make(map[int]bool, len(years))
	out := make([]int, 0, len(years))
	for _, y := range years {
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	sort.Ints(out)
	return out
}
