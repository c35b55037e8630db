// Package plan reads solved model variables into a tabular deployment plan.
// A plan is recomputed fresh each run and never persisted.
package plan

import (
	"github.com/google/uuid"

	"github.com/cleanpath/macc/internal/model"
	"github.com/cleanpath/macc/internal/solver"
)

// DeploymentRow is one technology-year record of the plan, including the
// parameters the model used, for audit.
type DeploymentRow struct {
	TechID        string  `json:"tech_id"`
	ProcessGroup  string  `json:"process_group"`
	Year          int     `json:"year"`
	Build         float64 `json:"build"`          // incremental share adopted this year
	Share         float64 `json:"share"`          // cumulative deployed share (stock)
	AbatementT    float64 `json:"abatement_t"`    // realized abatement, tonnes
	Activity      float64 `json:"activity"`       // eligible activity volume used
	Cap           float64 `json:"cap"`            // adoption ceiling used
	AbatementRate float64 `json:"abatement_rate"` // tCO2 per unit activity used
}

// YearSummary is the per-year accounting of target achievement.
type YearSummary struct {
	Year        int     `json:"year"`
	BaselineMt  float64 `json:"baseline_mt"`
	TargetMt    float64 `json:"target_mt"`
	RequiredMt  float64 `json:"required_mt"`
	AchievedMt  float64 `json:"achieved_mt"`
	ShortfallMt float64 `json:"shortfall_mt"`
	Solver      string  `json:"solver"`
	Status      string  `json:"status"`
}

// RunResult is the full outcome of one optimization run.
type RunResult struct {
	RunID     string          `json:"run_id"`
	Backend   string          `json:"backend"`
	Status    solver.Status   `json:"status"`
	Objective float64         `json:"objective"`
	Rows      []DeploymentRow `json:"rows"`
	Summary   []YearSummary   `json:"summary"`
}

// TargetMet reports whether every year covered its requirement without
// shortfall.
func (r *RunResult) TargetMet() bool {
	if r.Status != solver.StatusOptimal {
		return false
	}
	for _, s := range r.Summary {
		if s.ShortfallMt > 1e-9 {
			return false
		}
	}
	return true
}

// Extract reads the solved variables into a deployment plan. For a
// non-optimal status the plan carries no rows; the summary still records the
// per-year requirement so callers can report what was asked for.
func Extract(m *model.Model, res *solver.Result, baselineMt float64, targets map[int]float64) *RunResult {
	out := &RunResult{
		RunID:     uuid.NewString(),
		Backend:   res.Backend,
		Status:    res.Status,
		Objective: res.Objective,
	}

	value := func(col int) float64 {
		if res.Status != solver.StatusOptimal || col < 0 || col >= len(res.Values) {
			return 0
		}
		return res.Values[col]
	}

	if res.Status == solver.StatusOptimal {
		for ti, tech := range m.Techs {
			for yi, y := range m.Years {
				out.Rows = append(out.Rows, DeploymentRow{
					TechID:        tech.ID,
					ProcessGroup:  tech.ProcessGroup,
					Year:          y,
					Build:         value(m.BuildCol(ti, yi)),
					Share:         value(m.ShareCol(ti, yi)),
					AbatementT:    value(m.AbateCol(ti, yi)),
					Activity:      tech.Activity.ValueOr(y, 0),
					Cap:           tech.Cap.ValueOr(y, 0),
					AbatementRate: tech.AbatementRate.ValueOr(y, 0),
				})
			}
		}
	}

	for yi, y := range m.Years {
		achieved := 0.0
		for ti := range m.Techs {
			achieved += value(m.AbateCol(ti, yi))
		}
		shortfall := value(m.ShortfallCol(yi))

		target, ok := targets[y]
		if !ok {
			target = baselineMt
		}
		out.Summary = append(out.Summary, YearSummary{
			Year:        y,
			BaselineMt:  baselineMt,
			TargetMt:    target,
			RequiredMt:  m.Required[y] / 1e6,
			AchievedMt:  achieved / 1e6,
			ShortfallMt: shortfall / 1e6,
			Solver:      res.Backend,
			Status:      string(res.Status),
		})
	}

	return out
}
