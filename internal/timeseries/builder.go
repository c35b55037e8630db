// Package timeseries turns sparse per-technology reference-year rows into
// dense per-year parameter sets for the optimization model.
package timeseries

import (
	"math"
	"sort"

	"github.com/cleanpath/macc/internal/domain"
)

// DefaultLifetime is assumed when neither the metadata table nor the caller
// provides a lifetime.
const DefaultLifetime = 20

// TechParams is the fully resolved parameter set for one technology: six
// dense series plus three scalars. Instances are immutable after Build; the
// same source tables can feed multiple scenario runs without aliasing.
type TechParams struct {
	ID           string
	ProcessGroup string

	Lifetime  int     // years a vintage stays in the stock
	StartYear int     // no build before this year
	RampRate  float64 // max share added per year

	Activity      Series
	Cap           Series
	AbatementRate Series
	Capex         Series
	FixedOpex     Series
	VarOpex       Series
}

// Deployable reports whether the model can ever give this technology a
// positive share: it needs a defined ceiling, activity and abatement rate.
func (p TechParams) Deployable() bool {
	return p.Cap.Defined() && p.Activity.Defined() && p.AbatementRate.Defined()
}

// Build resolves dense parameter sets for every technology mentioned in
// either input table, over the requested years. Technologies with zero
// supporting time-series rows still produce an entry from metadata fallbacks
// alone; their series stay undefined and the technology is reported as
// non-deployable.
func Build(rows []domain.TechnologyYearRow, meta []domain.TechnologyMeta, years []int, defaultRamp float64) []TechParams {
	if len(years) == 0 {
		return nil
	}

	metaByID := make(map[string]domain.TechnologyMeta, len(meta))
	for _, m := range meta {
		metaByID[m.TechID] = m
	}

	rowsByID := make(map[string][]domain.TechnologyYearRow)
	for _, r := range rows {
		rowsByID[r.TechID] = append(rowsByID[r.TechID], r)
	}

	ids := make([]string, 0, len(metaByID))
	seen := make(map[string]bool, len(metaByID))
	for id := range metaByID {
		ids = append(ids, id)
		seen[id] = true
	}
	for id := range rowsByID {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	minYear := years[0]
	for _, y := range years[1:] {
		if y < minYear {
			minYear = y
		}
	}

	params := make([]TechParams, 0, len(ids))
	for _, id := range ids {
		techRows := rowsByID[id]
		m := metaByID[id]

		p := TechParams{
			ID:            id,
			ProcessGroup:  m.ProcessGroup,
			Lifetime:      resolveLifetime(m.Lifetime),
			StartYear:     resolveStartYear(m.StartYear, minYear),
			RampRate:      resolveRamp(m.RampRate, defaultRamp),
			Activity:      interpolate(techRows, colActivity, years),
			Cap:           interpolate(techRows, colMaxShare, years),
			AbatementRate: interpolate(techRows, colAbatementRate, years),
			Capex:         interpolate(techRows, colCapex, years),
			FixedOpex:     interpolate(techRows, colFixedOpex, years),
			VarOpex:       interpolate(techRows, colVarOpex, years),
		}
		params = append(params, p)
	}
	return params
}

// Scalar resolution is precedence-ordered: metadata value first, then the
// documented default. The result is always a concrete scalar; no "maybe
// missing" values survive past this point.

func resolveLifetime(metaVal *int) int {
	if metaVal != nil && *metaVal > 0 {
		return *metaVal
	}
	return DefaultLifetime
}

func resolveStartYear(metaVal *int, minYear int) int {
	if metaVal != nil {
		return *metaVal
	}
	return minYear
}

func resolveRamp(metaVal *float64, defaultRamp float64) float64 {
	if metaVal != nil && !math.IsNaN(*metaVal) {
		return *metaVal
	}
	return defaultRamp
}

type column int

const (
	colActivity column = iota
	colMaxShare
	colAbatementRate
	colCapex
	colFixedOpex
	colVarOpex
)

func columnValue(r domain.TechnologyYearRow, col column) (float64, bool) {
	var v *float64
	switch col {
	case colActivity:
		v = r.Activity
	case colMaxShare:
		v = r.MaxShare
	case colAbatementRate:
		v = r.AbatementRate
	case colCapex:
		v = r.Capex
	case colFixedOpex:
		v = r.FixedOpex
	case colVarOpex:
		v = r.VarOpex
	}
	if v == nil || math.IsNaN(*v) {
		return math.NaN(), false
	}
	return *v, true
}

type refPoint struct {
	year int
	val  float64 // NaN when the row exists but the column is undefined
}

// interpolate builds the dense series for one column: piecewise-linear
// between known reference years, held constant before the first and after the
// last. A reference row whose column is undefined stays on the grid: an
// interval with one undefined endpoint yields the defined neighbor, and an
// interval with two undefined endpoints yields an undefined year.
func interpolate(rows []domain.TechnologyYearRow, col column, years []int) Series {
	// Duplicate reference years collapse to the last row in table order, so
	// the grid never holds two points for one year.
	byYear := make(map[int]float64, len(rows))
	for _, r := range rows {
		v, ok := columnValue(r, col)
		if !ok {
			v = math.NaN()
		}
		byYear[r.RefYear] = v
	}
	points := make([]refPoint, 0, len(byYear))
	for year, v := range byYear {
		points = append(points, refPoint{year: year, val: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].year < points[j].year })

	vals := make(map[int]float64)
	if len(points) == 0 {
		return NewSeries(vals)
	}

	for _, y := range years {
		v := valueAt(points, y)
		if !math.IsNaN(v) {
			vals[y] = v
		}
	}
	return NewSeries(vals)
}

func valueAt(points []refPoint, year int) float64 {
	first, last := points[0], points[len(points)-1]
	if year <= first.year {
		return first.val
	}
	if year >= last.year {
		return last.val
	}
	for i := 0; i < len(points)-1; i++ {
		lo, hi := points[i], points[i+1]
		if year < lo.year || year > hi.year {
			continue
		}
		loNaN, hiNaN := math.IsNaN(lo.val), math.IsNaN(hi.val)
		switch {
		case loNaN && hiNaN:
			return math.NaN()
		case loNaN:
			return hi.val
		case hiNaN:
			return lo.val
		}
		t := float64(year-lo.year) / float64(hi.year-lo.year)
		return lo.val + t*(hi.val-lo.val)
	}
	return math.NaN()
}
