// Package dataset loads scenario inputs from SQLite databases or CSV
// directories into the domain model.
package dataset

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"

	"github.com/cleanpath/macc/internal/domain"
)

// BaselineAssumption is the assumptions-table parameter that pins the
// baseline directly. When absent the baseline is derived from facility
// emissions instead.
const BaselineAssumption = "baseline_mtco2e"

// Load reads a scenario from path. A directory is treated as a CSV bundle,
// anything else as a SQLite database file.
func Load(ctx context.Context, path string, log zerolog.Logger) (*domain.Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat dataset path: %w", err)
	}
	if info.IsDir() {
		return LoadCSV(path, log)
	}
	return LoadSQLite(ctx, path, log)
}

// finalize sorts derived fields and validates the invariants every loader
// must deliver.
func finalize(d *domain.Dataset) (*domain.Dataset, error) {
	if len(d.Targets) == 0 {
		return nil, fmt.Errorf("dataset has no target years")
	}
	if d.BaselineMt <= 0 {
		return nil, fmt.Errorf("dataset baseline is %g, want positive Mt", d.BaselineMt)
	}

	d.TargetYears = d.TargetYears[:0]
	for y := range d.Targets {
		d.TargetYears = append(d.TargetYears, y)
	}
	sort.Ints(d.TargetYears)
	return d, nil
}
