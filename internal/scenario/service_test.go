package scenario

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanpath/macc/internal/domain"
	"github.com/cleanpath/macc/internal/solver"
)

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }

// threeTechDataset is a small but complete scenario: a furnace retrofit
// available from the start, a cheaper hydrogen route arriving 2028 and a
// capture unit from 2030, one exclusive pair, target tightening to 5 Mt of
// abatement by 2035 against a 20 Mt baseline.
func threeTechDataset() *domain.Dataset {
	return &domain.Dataset{
		TechYears: []domain.TechnologyYearRow{
			{TechID: "retrofit", RefYear: 2025, Activity: f(4000), MaxShare: f(1),
				AbatementRate: f(500), Capex: f(2000), FixedOpex: f(50), VarOpex: f(20)},
			{TechID: "retrofit", RefYear: 2035, Activity: f(4000), MaxShare: f(1),
				AbatementRate: f(500), Capex: f(1500), FixedOpex: f(50), VarOpex: f(20)},
			{TechID: "hydrogen", RefYear: 2025, Activity: f(4000), MaxShare: f(0.8),
				AbatementRate: f(900), Capex: f(5000), FixedOpex: f(80), VarOpex: f(10)},
			{TechID: "capture", RefYear: 2025, Activity: f(2000), MaxShare: f(0.6),
				AbatementRate: f(1200), Capex: f(8000), FixedOpex: f(120), VarOpex: f(40)},
		},
		Meta: []domain.TechnologyMeta{
			{TechID: "retrofit", ProcessGroup: "furnace", Lifetime: i(10), StartYear: i(2025), RampRate: f(0.2)},
			{TechID: "hydrogen", ProcessGroup: "furnace", Lifetime: i(20), StartYear: i(2028), RampRate: f(0.2)},
			{TechID: "capture", ProcessGroup: "stack", Lifetime: i(30), StartYear: i(2030), RampRate: f(0.2)},
		},
		Targets: map[int]float64{
			2025: 20, 2028: 19, 2030: 18, 2032: 17, 2035: 15,
		},
		TargetYears: []int{2025, 2028, 2030, 2032, 2035},
		Rules: []domain.RelationshipRule{
			{Kind: domain.RuleMutuallyExclusive, Primary: "retrofit", Secondary: "hydrogen"},
		},
		BaselineMt: 20,
	}
}

func TestRunDatasetEndToEnd(t *testing.T) {
	svc := NewService(zerolog.Nop())
	res, techs, years, err := svc.RunDataset(threeTechDataset(), RunOptions{
		AllowSlack:   true,
		SlackPenalty: 1e9,
		DefaultRamp:  0.2,
		Solver:       solver.Auto,
	})
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, res.Status)

	assert.Equal(t, []int{2025, 2028, 2030, 2032, 2035}, years)
	assert.Len(t, techs, 3)
	assert.Len(t, res.Rows, 3*5)
	assert.Len(t, res.Summary, 5)
	assert.NotEmpty(t, res.RunID)

	for _, row := range res.Rows {
		assert.GreaterOrEqual(t, row.Share, -1e-9)
		if row.TechID == "hydrogen" && row.Year < 2028 {
			assert.InDelta(t, 0, row.Build, 1e-9, "hydrogen builds before commercial start")
		}
		if row.TechID == "capture" && row.Year < 2030 {
			assert.InDelta(t, 0, row.Build, 1e-9, "capture builds before commercial start")
		}
	}

	// exclusive furnace slot stays within one unit of activity
	byYear := make(map[int]float64)
	for _, row := range res.Rows {
		if row.TechID == "retrofit" || row.TechID == "hydrogen" {
			byYear[row.Year] += row.Share
		}
	}
	for y, total := range byYear {
		assert.LessOrEqual(t, total, 1+1e-6, "furnace slot year %d", y)
	}

	// early years may overshoot while capacity ramps toward 2035, but no
	// year may fall short once its shortfall is counted
	for _, s := range res.Summary {
		assert.GreaterOrEqual(t, s.AchievedMt+s.ShortfallMt, s.RequiredMt-1e-6,
			"year %d requirement", s.Year)
	}
}

func TestRunDatasetStrictInfeasibleStillReturnsResult(t *testing.T) {
	d := threeTechDataset()
	d.Targets[2025] = 5 // 15 Mt required immediately, far beyond capacity

	svc := NewService(zerolog.Nop())
	res, _, _, err := svc.RunDataset(d, RunOptions{
		DefaultRamp: 0.2,
		Solver:      "simplex",
	})
	require.NoError(t, err)
	assert.Equal(t, solver.StatusInfeasible, res.Status)
	assert.Empty(t, res.Rows)
	assert.Len(t, res.Summary, 5)
}

func TestRunDatasetNoMatchingYears(t *testing.T) {
	svc := NewService(zerolog.Nop())
	_, _, _, err := svc.RunDataset(threeTechDataset(), RunOptions{
		Years:       []int{1990, 1991},
		DefaultRamp: 0.2,
	})
	assert.Error(t, err)
}

func TestSelectYearsRangeVersusList(t *testing.T) {
	targets := []int{2025, 2028, 2030, 2032, 2035}

	assert.Equal(t, targets, SelectYears(nil, targets))
	assert.Equal(t, []int{2028, 2030, 2032}, SelectYears([]int{2028, 2032}, targets),
		"two distinct years form an inclusive range")
	assert.Equal(t, []int{2028, 2030, 2032}, SelectYears([]int{2032, 2028}, targets),
		"range order does not matter")
	assert.Equal(t, []int{2030}, SelectYears([]int{2030, 2030}, targets),
		"repeated year is a one-element list")
	assert.Equal(t, []int{2025, 2030, 2035}, SelectYears([]int{2035, 2025, 2030}, targets),
		"three or more values are an explicit list")
	assert.Empty(t, SelectYears([]int{1999}, targets))
}
