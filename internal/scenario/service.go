// Package scenario orchestrates a single optimization run: load inputs,
// materialize the time grid, assemble the linear program, solve it, and
// extract the deployment plan.
package scenario

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/cleanpath/macc/internal/dataset"
	"github.com/cleanpath/macc/internal/domain"
	"github.com/cleanpath/macc/internal/model"
	"github.com/cleanpath/macc/internal/plan"
	"github.com/cleanpath/macc/internal/relations"
	"github.com/cleanpath/macc/internal/solver"
	"github.com/cleanpath/macc/internal/timeseries"
)

// RunOptions selects the modeling horizon and cost assumptions for one run.
type RunOptions struct {
	// Years requested on the command line or API. Exactly two distinct
	// values select the inclusive range between them; any other count is
	// treated as an explicit list. Either way only years present in the
	// target table survive. Empty means all target years.
	Years []int

	AllowSlack   bool
	SlackPenalty float64
	DiscountRate float64
	DefaultRamp  float64
	Solver       string
}

// Service runs optimization scenarios. It is stateless; every run reloads
// the dataset so edits to the scenario file take effect immediately.
type Service struct {
	log zerolog.Logger
}

func NewService(log zerolog.Logger) *Service {
	return &Service{log: log.With().Str("component", "scenario").Logger()}
}

// Run executes the full pipeline against the dataset at dataPath and returns
// the deployment plan together with the parameters it was built from.
func (s *Service) Run(ctx context.Context, dataPath string, opts RunOptions) (*plan.RunResult, []timeseries.TechParams, []int, error) {
	d, err := dataset.Load(ctx, dataPath, s.log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load dataset: %w", err)
	}
	return s.RunDataset(d, opts)
}

// RunDataset executes the pipeline against an already-loaded dataset.
func (s *Service) RunDataset(d *domain.Dataset, opts RunOptions) (*plan.RunResult, []timeseries.TechParams, []int, error) {
	years := SelectYears(opts.Years, d.TargetYears)
	if len(years) == 0 {
		return nil, nil, nil, fmt.Errorf("no modeled years: requested %v, targets cover %v", opts.Years, d.TargetYears)
	}

	techs := timeseries.Build(d.TechYears, d.Meta, years, opts.DefaultRamp)
	rels := relations.Parse(d.Rules)

	mdl := model.Build(techs, years, d.BaselineMt, d.Targets, rels, model.Options{
		AllowSlack:   opts.AllowSlack,
		SlackPenalty: opts.SlackPenalty,
		DiscountRate: opts.DiscountRate,
		BaseYear:     years[0],
	})

	sum := mdl.Summarize()
	s.log.Info().
		Int("variables", sum.Variables).
		Int("constraints", sum.Constraints).
		Int("nonzeros", sum.Nonzeros).
		Bool("slack", opts.AllowSlack).
		Msg("Model assembled")

	res, err := solver.Solve(mdl, opts.Solver, s.log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("solve model: %w", err)
	}

	result := plan.Extract(mdl, res, d.BaselineMt, d.Targets)
	s.log.Info().
		Str("run_id", result.RunID).
		Str("backend", result.Backend).
		Str("status", string(result.Status)).
		Float64("objective", result.Objective).
		Bool("target_met", result.TargetMet()).
		Msg("Run complete")

	return result, techs, years, nil
}

// SelectYears resolves the requested years against the target table. Two
// distinct values form an inclusive range; otherwise the values are an
// explicit list. Only target years are modeled, returned ascending without
// duplicates.
func SelectYears(requested, targetYears []int) []int {
	if len(requested) == 0 {
		out := make([]int, len(targetYears))
		copy(out, targetYears)
		return out
	}

	keep := make(map[int]bool)
	if len(requested) == 2 && requested[0] != requested[1] {
		lo, hi := requested[0], requested[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		for _, y := range targetYears {
			if y >= lo && y <= hi {
				keep[y] = true
			}
		}
	} else {
		wanted := make(map[int]bool, len(requested))
		for _, y := range requested {
			wanted[y] = true
		}
		for _, y := range targetYears {
			if wanted[y] {
				keep[y] = true
			}
		}
	}

	out := make([]int, 0, len(keep))
	for y := range keep {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}
