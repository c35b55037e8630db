package plan

import (
	"sort"

	"github.com/cleanpath/macc/internal/timeseries"
)

// CostCurvePoint is one bar of a marginal abatement cost curve: a technology
// ordered by levelized cost, with the abatement it contributes in the year
// and the running total up to and including it.
type CostCurvePoint struct {
	TechID       string  `json:"tech_id"`
	Cost         float64 `json:"cost"`          // currency per tCO2 abated
	AbatementT   float64 `json:"abatement_t"`   // tonnes abated this year
	CumulativeT  float64 `json:"cumulative_t"`  // running total, tonnes
	ProcessGroup string  `json:"process_group"` // curve segment label
}

// CostCurve builds the abatement cost curve for one year from the solved
// plan. Only technologies with positive realized abatement appear; entries
// are sorted by ascending levelized cost.
func CostCurve(techs []timeseries.TechParams, rows []DeploymentRow, year int) []CostCurvePoint {
	byID := make(map[string]timeseries.TechParams, len(techs))
	for _, t := range techs {
		byID[t.ID] = t
	}

	var points []CostCurvePoint
	for _, r := range rows {
		if r.Year != year || r.AbatementT <= 0 {
			continue
		}
		t, ok := byID[r.TechID]
		if !ok {
			continue
		}
		points = append(points, CostCurvePoint{
			TechID:       r.TechID,
			Cost:         LevelizedCost(t, year),
			AbatementT:   r.AbatementT,
			ProcessGroup: r.ProcessGroup,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Cost != points[j].Cost {
			return points[i].Cost < points[j].Cost
		}
		return points[i].TechID < points[j].TechID
	})

	cum := 0.0
	for i := range points {
		cum += points[i].AbatementT
		points[i].CumulativeT = cum
	}
	return points
}

// LevelizedCost is the annualized cost of one tonne abated by a technology
// in a given year: annualized capex plus opex per unit activity, divided by
// the abatement rate. An undefined or zero rate yields zero cost, matching a
// technology that cannot abate.
func LevelizedCost(t timeseries.TechParams, year int) float64 {
	rate := t.AbatementRate.ValueOr(year, 0)
	if rate == 0 {
		return 0
	}
	annual := t.Capex.ValueOr(year, 0)/float64(t.Lifetime) +
		t.FixedOpex.ValueOr(year, 0) +
		t.VarOpex.ValueOr(year, 0)
	return annual / rate
}
