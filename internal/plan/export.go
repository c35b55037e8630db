package plan

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cleanpath/macc/internal/timeseries"
)

// WriteCSV writes the run result to outDir: one plan_<year>.csv per modeled
// year plus a summary.csv. When curves is true it also writes a
// cost_curve_<year>.csv per year. The directory is created if missing.
func WriteCSV(res *RunResult, techs []timeseries.TechParams, years []int, outDir string, curves bool) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, y := range years {
		if err := writePlanYear(res, y, outDir); err != nil {
			return err
		}
		if curves {
			if err := writeCostCurve(res, techs, y, outDir); err != nil {
				return err
			}
		}
	}
	return writeSummary(res, outDir)
}

func writePlanYear(res *RunResult, year int, outDir string) error {
	rows := [][]string{{
		"tech_id", "process_group", "year", "build", "share",
		"abatement_t", "activity", "cap", "abatement_rate",
	}}
	for _, r := range res.Rows {
		if r.Year != year {
			continue
		}
		rows = append(rows, []string{
			r.TechID, r.ProcessGroup, strconv.Itoa(r.Year),
			num(r.Build), num(r.Share), num(r.AbatementT),
			num(r.Activity), num(r.Cap), num(r.AbatementRate),
		})
	}
	return writeFile(filepath.Join(outDir, fmt.Sprintf("plan_%d.csv", year)), rows)
}

func writeCostCurve(res *RunResult, techs []timeseries.TechParams, year int, outDir string) error {
	rows := [][]string{{
		"tech_id", "process_group", "cost_per_t", "abatement_t", "cumulative_t",
	}}
	for _, p := range CostCurve(techs, res.Rows, year) {
		rows = append(rows, []string{
			p.TechID, p.ProcessGroup, num(p.Cost), num(p.AbatementT), num(p.CumulativeT),
		})
	}
	return writeFile(filepath.Join(outDir, fmt.Sprintf("cost_curve_%d.csv", year)), rows)
}

func writeSummary(res *RunResult, outDir string) error {
	rows := [][]string{{
		"year", "baseline_mt", "target_mt", "required_mt",
		"achieved_mt", "shortfall_mt", "solver", "status",
	}}
	for _, s := range res.Summary {
		rows = append(rows, []string{
			strconv.Itoa(s.Year), num(s.BaselineMt), num(s.TargetMt), num(s.RequiredMt),
			num(s.AchievedMt), num(s.ShortfallMt), s.Solver, s.Status,
		})
	}
	return writeFile(filepath.Join(outDir, "summary.csv"), rows)
}

func writeFile(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
