// Package main is the command-line front end of the abatement planner: one
// solve per invocation, plan and summary emitted as CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/cleanpath/macc/internal/config"
	"github.com/cleanpath/macc/internal/plan"
	"github.com/cleanpath/macc/internal/scenario"
	"github.com/cleanpath/macc/internal/solver"
	"github.com/cleanpath/macc/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.Default()
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	dataPath := flag.String("data", cfg.DataPath,
		"Scenario input: SQLite file or CSV directory")
	outDir := flag.String("out", cfg.OutputDir,
		"Directory for plan and summary CSV files")
	yearsArg := flag.String("years", "",
		"Comma-separated years; two distinct values select the inclusive range between them")
	allowSlack := flag.Bool("allow-slack", cfg.AllowSlack,
		"Permit target shortfall at a penalty instead of failing infeasible")
	slackPenalty := flag.Float64("slack-penalty", cfg.SlackPenalty,
		"Cost per tonne of unmet target")
	discountRate := flag.Float64("discount-rate", cfg.DiscountRate,
		"Annual discount rate applied to future costs")
	rampDefault := flag.Float64("ramp-default", cfg.DefaultRamp,
		"Fallback max share added per year for technologies without ramp metadata")
	solverChoice := flag.String("solver", cfg.Solver,
		"LP backend: auto, simplex or descent")
	charts := flag.Bool("charts", false,
		"Also emit cost-curve data files per year")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	log, err := logger.New(logger.Config{Level: *logLevel, Pretty: true})
	if err != nil {
		fallback := logger.Default()
		fallback.Fatal().Err(err).Msg("Failed to configure logging")
	}

	years, err := parseYears(*yearsArg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -years value")
	}

	svc := scenario.NewService(log)
	res, techs, modelYears, err := svc.Run(context.Background(), *dataPath, scenario.RunOptions{
		Years:        years,
		AllowSlack:   *allowSlack,
		SlackPenalty: *slackPenalty,
		DiscountRate: *discountRate,
		DefaultRamp:  *rampDefault,
		Solver:       *solverChoice,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Optimization failed")
	}

	// An infeasibility proof is a produced result: the summary records the
	// verdict and the run still exits cleanly. Only a configuration problem
	// (no usable backend) reaches the Fatal path above.
	if res.Status != solver.StatusOptimal {
		log.Warn().
			Str("status", string(res.Status)).
			Msg("No deployment plan: the target cannot be met within the given constraints")
	}

	if err := plan.WriteCSV(res, techs, modelYears, *outDir, *charts); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output files")
	}

	for _, s := range res.Summary {
		ev := log.Info()
		if s.ShortfallMt > 1e-9 {
			ev = log.Warn()
		}
		ev.Int("year", s.Year).
			Float64("required_mt", s.RequiredMt).
			Float64("achieved_mt", s.AchievedMt).
			Float64("shortfall_mt", s.ShortfallMt).
			Msg("Year result")
	}

	log.Info().
		Str("run_id", res.RunID).
		Str("backend", res.Backend).
		Float64("objective", res.Objective).
		Bool("target_met", res.TargetMet()).
		Str("out", *outDir).
		Msg("Plan written")
}

// parseYears splits a comma-separated year list. Range semantics are applied
// later against the target table; here the values are only parsed.
func parseYears(arg string) ([]int, error) {
	if strings.TrimSpace(arg) == "" {
		return nil, nil
	}
	parts := strings.Split(arg, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		y, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad year %q", p)
		}
		out = append(out, y)
	}
	return out, nil
}
