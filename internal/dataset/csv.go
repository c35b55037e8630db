package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cleanpath/macc/internal/domain"
)

// LoadCSV reads a scenario from a directory of CSV files. Required:
// technology_year.csv, technology_meta.csv, targets.csv. Optional:
// relationships.csv, assumptions.csv. Column names match the SQLite schema;
// empty cells are treated as absent values.
func LoadCSV(dir string, log zerolog.Logger) (*domain.Dataset, error) {
	d := &domain.Dataset{Targets: make(map[int]float64)}

	techYears, err := readTable(filepath.Join(dir, "technology_year.csv"), true)
	if err != nil {
		return nil, err
	}
	for _, rec := range techYears {
		row := domain.TechnologyYearRow{TechID: rec.str("tech_id")}
		if row.RefYear, err = rec.intVal("ref_year"); err != nil {
			return nil, err
		}
		row.Activity = rec.floatPtr("activity")
		row.MaxShare = rec.floatPtr("max_share")
		row.AbatementRate = rec.floatPtr("abatement_rate")
		row.Capex = rec.floatPtr("capex")
		row.FixedOpex = rec.floatPtr("fixed_opex")
		row.VarOpex = rec.floatPtr("var_opex")
		d.TechYears = append(d.TechYears, row)
	}

	meta, err := readTable(filepath.Join(dir, "technology_meta.csv"), true)
	if err != nil {
		return nil, err
	}
	for _, rec := range meta {
		m := domain.TechnologyMeta{
			TechID:       rec.str("tech_id"),
			ProcessGroup: rec.str("process_group"),
			RampRate:     rec.floatPtr("ramp_rate"),
		}
		m.Lifetime = rec.intPtr("lifetime")
		m.StartYear = rec.intPtr("start_year")
		d.Meta = append(d.Meta, m)
	}

	targets, err := readTable(filepath.Join(dir, "targets.csv"), true)
	if err != nil {
		return nil, err
	}
	for _, rec := range targets {
		year, err := rec.intVal("year")
		if err != nil {
			return nil, err
		}
		target, err := rec.floatVal("target_mt")
		if err != nil {
			return nil, err
		}
		d.Targets[year] = target
	}

	rules, err := readTable(filepath.Join(dir, "relationships.csv"), false)
	if err != nil {
		return nil, err
	}
	for _, rec := range rules {
		d.Rules = append(d.Rules, domain.RelationshipRule{
			Kind:      domain.RuleKind(rec.str("kind")),
			Primary:   rec.str("primary_tech"),
			Secondary: rec.str("secondary_tech"),
		})
	}

	if d.BaselineMt, err = csvBaseline(dir); err != nil {
		return nil, err
	}

	log.Info().
		Str("dir", dir).
		Int("tech_year_rows", len(d.TechYears)).
		Int("target_years", len(d.Targets)).
		Float64("baseline_mt", d.BaselineMt).
		Msg("Scenario CSV bundle loaded")

	return finalize(d)
}

func csvBaseline(dir string) (float64, error) {
	assumptions, err := readTable(filepath.Join(dir, "assumptions.csv"), false)
	if err != nil {
		return 0, err
	}
	for _, rec := range assumptions {
		if rec.str("name") != BaselineAssumption {
			continue
		}
		return rec.floatVal("value")
	}

	facilities, err := readTable(filepath.Join(dir, "facilities.csv"), false)
	if err != nil {
		return 0, err
	}
	if len(facilities) > 0 {
		tonnes := 0.0
		for _, rec := range facilities {
			if v := rec.floatPtr("scope1_t"); v != nil {
				tonnes += *v
			}
			if v := rec.floatPtr("scope2_t"); v != nil {
				tonnes += *v
			}
		}
		return tonnes / 1e6, nil
	}

	return 0, fmt.Errorf("no baseline: need assumptions.csv row %q or facilities.csv", BaselineAssumption)
}

// record maps one CSV data row by header name.
type record struct {
	path string
	line int
	vals map[string]string
}

func (r record) str(col string) string { return strings.TrimSpace(r.vals[col]) }

func (r record) floatPtr(col string) *float64 {
	s := r.str(col)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func (r record) intPtr(col string) *int {
	s := r.str(col)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func (r record) floatVal(col string) (float64, error) {
	v, err := strconv.ParseFloat(r.str(col), 64)
	if err != nil {
		return 0, fmt.Errorf("%s line %d: bad %s value %q", r.path, r.line, col, r.str(col))
	}
	return v, nil
}

func (r record) intVal(col string) (int, error) {
	v, err := strconv.Atoi(r.str(col))
	if err != nil {
		return 0, fmt.Errorf("%s line %d: bad %s value %q", r.path, r.line, col, r.str(col))
	}
	return v, nil
}

// readTable reads a headed CSV file into records. A missing optional file
// yields no records and no error.
func readTable(path string, required bool) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var out []record
	for i, row := range rows[1:] {
		vals := make(map[string]string, len(header))
		for j, cell := range row {
			if j < len(header) {
				vals[header[j]] = cell
			}
		}
		out = append(out, record{path: path, line: i + 2, vals: vals})
	}
	return out, nil
}
