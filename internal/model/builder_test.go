package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanpath/macc/internal/relations"
	"github.com/cleanpath/macc/internal/timeseries"
)

func flat(years []int, v float64) timeseries.Series {
	vals := make(map[int]float64, len(years))
	for _, y := range years {
		vals[y] = v
	}
	return timeseries.NewSeries(vals)
}

func tech(id string, years []int, lifetime, start int, ramp float64) timeseries.TechParams {
	return timeseries.TechParams{
		ID:            id,
		Lifetime:      lifetime,
		StartYear:     start,
		RampRate:      ramp,
		Activity:      flat(years, 1000),
		Cap:           flat(years, 1),
		AbatementRate: flat(years, 2),
		Capex:         flat(years, 100),
		FixedOpex:     flat(years, 5),
		VarOpex:       flat(years, 3),
	}
}

func TestRequiredAbatementClampsToZero(t *testing.T) {
	years := []int{2025, 2030}
	m := Build(
		[]timeseries.TechParams{tech("a", years, 20, 2025, 1)},
		years,
		10, // baseline Mt
		map[int]float64{2025: 12, 2030: 7},
		relations.Relationships{},
		Options{},
	)

	assert.Equal(t, 0.0, m.Required[2025], "target above baseline requires nothing")
	assert.InDelta(t, 3e6, m.Required[2030], 1, "3 Mt gap in tonnes")
}

func TestVariablesGatedBeforeStartYear(t *testing.T) {
	years := []int{2025, 2026, 2027}
	m := Build(
		[]timeseries.TechParams{tech("late", years, 20, 2027, 0.5)},
		years,
		10,
		map[int]float64{2027: 10},
		relations.Relationships{},
		Options{},
	)

	require.Len(t, m.Years, 3)
	for yi, y := range m.Years {
		upper := m.LP.ColUpper[m.BuildCol(0, yi)]
		if y < 2027 {
			assert.Zero(t, upper, "build bound before commercial start, year %d", y)
		} else {
			assert.Equal(t, 0.5, upper, "ramp bound from commercial start, year %d", y)
		}
	}
}

func TestShareCostDiscountsAndAnnualizes(t *testing.T) {
	years := []int{2025, 2026}
	tc := tech("a", years, 10, 2025, 1)
	m := Build(
		[]timeseries.TechParams{tc},
		years,
		10,
		map[int]float64{2026: 10},
		relations.Relationships{},
		Options{DiscountRate: 0.1, BaseYear: 2025},
	)

	// per unit share: (100/10 + 5 + 3) * 1000 activity = 18000
	assert.InDelta(t, 18000, m.LP.ColCosts[m.ShareCol(0, 0)], 1e-9)
	assert.InDelta(t, 18000/1.1, m.LP.ColCosts[m.ShareCol(0, 1)], 1e-9)
}

func TestShortfallColumnsOnlyWhenSlackAllowed(t *testing.T) {
	years := []int{2025}
	techs := []timeseries.TechParams{tech("a", years, 20, 2025, 1)}
	targets := map[int]float64{2025: 5}

	strict := Build(techs, years, 10, targets, relations.Relationships{}, Options{})
	assert.Equal(t, -1, strict.ShortfallCol(0))

	slack := Build(techs, years, 10, targets, relations.Relationships{},
		Options{AllowSlack: true, SlackPenalty: 1e15})
	col := slack.ShortfallCol(0)
	require.GreaterOrEqual(t, col, 0)
	assert.InDelta(t, 1e15, slack.LP.ColCosts[col], 1)
}

func TestStockRowReferencesOnlyAliveVintages(t *testing.T) {
	years := []int{2025, 2026, 2027, 2028}
	m := Build(
		[]timeseries.TechParams{tech("a", years, 2, 2025, 1)},
		years,
		10,
		map[int]float64{2028: 10},
		relations.Relationships{},
		Options{},
	)

	// stock rows are laid out first, one per (tech, year) in year order
	const yi2027 = 2
	cols := make(map[int]bool)
	for _, e := range m.LP.Entries {
		if e.Row == yi2027 {
			cols[e.Col] = true
		}
	}
	assert.True(t, cols[m.ShareCol(0, yi2027)])
	assert.True(t, cols[m.BuildCol(0, 1)], "2026 vintage still alive in 2027")
	assert.True(t, cols[m.BuildCol(0, 2)], "2027 vintage alive in 2027")
	assert.False(t, cols[m.BuildCol(0, 0)], "2025 vintage expired after two years")
	assert.False(t, cols[m.BuildCol(0, 3)], "future vintage cannot back-fill")
}

func TestUndeployableTechnologyPinnedToZero(t *testing.T) {
	years := []int{2025}
	bare := timeseries.TechParams{
		ID:        "meta_only",
		Lifetime:  20,
		StartYear: 2025,
		RampRate:  1,
	}

	m := Build([]timeseries.TechParams{bare}, years, 10,
		map[int]float64{2025: 10}, relations.Relationships{}, Options{})

	assert.Zero(t, m.LP.ColUpper[m.ShareCol(0, 0)], "undefined cap pins share to zero")
}

func TestGroupRowIgnoresUnknownMembers(t *testing.T) {
	years := []int{2025}
	techs := []timeseries.TechParams{
		tech("a", years, 20, 2025, 1),
		tech("b", years, 20, 2025, 1),
	}
	rel := relations.Relationships{
		Groups: [][]string{{"a", "b", "ghost"}},
	}
	m := Build(techs, years, 10, map[int]float64{2025: 10}, rel, Options{})

	assert.Equal(t, 1, m.Summarize().GroupRows)
}

func TestModelSummaryCountsRows(t *testing.T) {
	years := []int{2025, 2026}
	techs := []timeseries.TechParams{
		tech("a", years, 20, 2025, 1),
		tech("b", years, 20, 2025, 1),
	}
	rel := relations.Relationships{
		Groups:    [][]string{{"a", "b"}},
		Couplings: []relations.Coupling{{Primary: "a", Secondary: "b"}},
	}
	m := Build(techs, years, 10, map[int]float64{2026: 8}, rel,
		Options{AllowSlack: true, SlackPenalty: 1e15})

	sum := m.Summarize()
	assert.Equal(t, 2*2*3+2, sum.Variables, "build/share/abate per tech-year plus shortfall per year")
	assert.Equal(t, 4, sum.StockRows)
	assert.Equal(t, 4, sum.AbateRows)
	assert.Equal(t, 2, sum.TargetRows)
	assert.Equal(t, 2, sum.GroupRows)
	assert.Equal(t, 2, sum.CouplingRows)
}
