package dataset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cleanpath/macc/internal/database"
	"github.com/cleanpath/macc/internal/domain"
)

// LoadSQLite reads a scenario database. Required tables: technology_year,
// technology_meta, targets. Optional: relationships, assumptions, facilities.
// The baseline comes from the assumptions table when present, otherwise it is
// the sum of facility scope 1 and 2 emissions.
func LoadSQLite(ctx context.Context, path string, log zerolog.Logger) (*domain.Dataset, error) {
	db, err := database.Open(database.Config{Path: path, Name: "scenario"})
	if err != nil {
		return nil, fmt.Errorf("open scenario database: %w", err)
	}
	defer db.Close()

	for _, table := range []string{"technology_year", "technology_meta", "targets"} {
		ok, err := db.HasTable(ctx, table)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("scenario database missing table %q", table)
		}
	}

	d := &domain.Dataset{Targets: make(map[int]float64)}

	if d.TechYears, err = loadTechYears(ctx, db.Conn()); err != nil {
		return nil, err
	}
	if d.Meta, err = loadMeta(ctx, db.Conn()); err != nil {
		return nil, err
	}
	if d.Targets, err = loadTargets(ctx, db.Conn()); err != nil {
		return nil, err
	}
	if d.Rules, err = loadRules(ctx, db); err != nil {
		return nil, err
	}
	if d.BaselineMt, err = loadBaseline(ctx, db); err != nil {
		return nil, err
	}

	log.Info().
		Int("tech_year_rows", len(d.TechYears)).
		Int("meta_rows", len(d.Meta)).
		Int("target_years", len(d.Targets)).
		Int("rules", len(d.Rules)).
		Float64("baseline_mt", d.BaselineMt).
		Msg("Scenario database loaded")

	return finalize(d)
}

func loadTechYears(ctx context.Context, conn *sql.DB) ([]domain.TechnologyYearRow, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT tech_id, ref_year, activity, max_share, abatement_rate,
		       capex, fixed_opex, var_opex
		FROM technology_year`)
	if err != nil {
		return nil, fmt.Errorf("query technology_year: %w", err)
	}
	defer rows.Close()

	var out []domain.TechnologyYearRow
	for rows.Next() {
		var r domain.TechnologyYearRow
		var activity, maxShare, rate, capex, fixed, variable sql.NullFloat64
		if err := rows.Scan(&r.TechID, &r.RefYear, &activity, &maxShare,
			&rate, &capex, &fixed, &variable); err != nil {
			return nil, fmt.Errorf("scan technology_year: %w", err)
		}
		r.Activity = nullable(activity)
		r.MaxShare = nullable(maxShare)
		r.AbatementRate = nullable(rate)
		r.Capex = nullable(capex)
		r.FixedOpex = nullable(fixed)
		r.VarOpex = nullable(variable)
		out = append(out, r)
	}
	return out, rows.Err()
}

func loadMeta(ctx context.Context, conn *sql.DB) ([]domain.TechnologyMeta, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT tech_id, COALESCE(process_group, ''), lifetime, start_year, ramp_rate
		FROM technology_meta`)
	if err != nil {
		return nil, fmt.Errorf("query technology_meta: %w", err)
	}
	defer rows.Close()

	var out []domain.TechnologyMeta
	for rows.Next() {
		var m domain.TechnologyMeta
		var lifetime, start sql.NullInt64
		var ramp sql.NullFloat64
		if err := rows.Scan(&m.TechID, &m.ProcessGroup, &lifetime, &start, &ramp); err != nil {
			return nil, fmt.Errorf("scan technology_meta: %w", err)
		}
		if lifetime.Valid {
			v := int(lifetime.Int64)
			m.Lifetime = &v
		}
		if start.Valid {
			v := int(start.Int64)
			m.StartYear = &v
		}
		m.RampRate = nullable(ramp)
		out = append(out, m)
	}
	return out, rows.Err()
}

func loadTargets(ctx context.Context, conn *sql.DB) (map[int]float64, error) {
	rows, err := conn.QueryContext(ctx, `SELECT year, target_mt FROM targets`)
	if err != nil {
		return nil, fmt.Errorf("query targets: %w", err)
	}
	defer rows.Close()

	out := make(map[int]float64)
	for rows.Next() {
		var year int
		var target float64
		if err := rows.Scan(&year, &target); err != nil {
			return nil, fmt.Errorf("scan targets: %w", err)
		}
		out[year] = target
	}
	return out, rows.Err()
}

func loadRules(ctx context.Context, db *database.DB) ([]domain.RelationshipRule, error) {
	ok, err := db.HasTable(ctx, "relationships")
	if err != nil || !ok {
		return nil, err
	}

	rows, err := db.Conn().QueryContext(ctx, `
		SELECT kind, primary_tech, secondary_tech FROM relationships`)
	if err != nil {
		return nil, fmt.Errorf("query relationships: %w", err)
	}
	defer rows.Close()

	var out []domain.RelationshipRule
	for rows.Next() {
		var r domain.RelationshipRule
		var kind string
		if err := rows.Scan(&kind, &r.Primary, &r.Secondary); err != nil {
			return nil, fmt.Errorf("scan relationships: %w", err)
		}
		r.Kind = domain.RuleKind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}

func loadBaseline(ctx context.Context, db *database.DB) (float64, error) {
	if ok, err := db.HasTable(ctx, "assumptions"); err != nil {
		return 0, err
	} else if ok {
		var value sql.NullFloat64
		err := db.Conn().QueryRowContext(ctx,
			`SELECT value FROM assumptions WHERE name = ?`, BaselineAssumption).Scan(&value)
		switch {
		case err == sql.ErrNoRows:
			// fall through to facilities
		case err != nil:
			return 0, fmt.Errorf("query assumptions: %w", err)
		case value.Valid:
			return value.Float64, nil
		}
	}

	if ok, err := db.HasTable(ctx, "facilities"); err != nil {
		return 0, err
	} else if ok {
		var tonnes sql.NullFloat64
		err := db.Conn().QueryRowContext(ctx,
			`SELECT SUM(COALESCE(scope1_t, 0) + COALESCE(scope2_t, 0)) FROM facilities`).Scan(&tonnes)
		if err != nil {
			return 0, fmt.Errorf("sum facility emissions: %w", err)
		}
		if tonnes.Valid {
			return tonnes.Float64 / 1e6, nil
		}
	}

	return 0, fmt.Errorf("no baseline: need assumptions row %q or a facilities table", BaselineAssumption)
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
