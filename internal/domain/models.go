// Package domain contains the core data model shared by the loaders and the
// optimization pipeline. The domain layer is pure: no infrastructure
// dependencies.
package domain

// TechnologyYearRow is one sparse reference-year observation for a technology.
// Nil pointers mean the column was absent in the source table; the timeseries
// builder keeps that distinction instead of fabricating numbers.
type TechnologyYearRow struct {
	TechID        string
	RefYear       int
	Activity      *float64 // Eligible activity volume (kt or similar unit)
	MaxShare      *float64 // Adoption ceiling, fraction of activity in [0,1]
	AbatementRate *float64 // tCO2 abated per unit of activity
	Capex         *float64 // Capital cost per unit of activity
	FixedOpex     *float64 // Fixed operating cost per unit of activity per year
	VarOpex       *float64 // Variable operating cost per unit of activity
}

// TechnologyMeta is the per-technology metadata row with scalar fallbacks.
type TechnologyMeta struct {
	TechID       string
	ProcessGroup string
	Lifetime     *int     // Asset lifetime in years
	StartYear    *int     // First commercially available year
	RampRate     *float64 // Max share added per year
}

// RuleKind tags a pairwise technology relationship rule.
type RuleKind string

const (
	// RuleMutuallyExclusive joins two technologies into a shared deployment
	// slot: their combined share may not exceed 1 in any year.
	RuleMutuallyExclusive RuleKind = "mutually_exclusive"
	// RuleCoupling requires the primary's share never to exceed the
	// secondary's share in the same year.
	RuleCoupling RuleKind = "coupling"
)

// RelationshipRule is one pairwise rule from the relationship table.
type RelationshipRule struct {
	Kind      RuleKind
	Primary   string
	Secondary string
}

// Dataset is the validated tabular input a single optimization run consumes.
// It is built once per run and stays immutable through the solve.
type Dataset struct {
	TechYears   []TechnologyYearRow
	Meta        []TechnologyMeta
	Targets     map[int]float64 // year -> required emissions level (Mt CO2e)
	TargetYears []int           // years present in the target table, ascending
	Rules       []RelationshipRule
	BaselineMt  float64 // baseline emissions (Mt CO2e)
}

// RequiredAbatementMt returns the abatement the target demands for a year, in
// Mt. Years absent from the target table require nothing.
func (d *Dataset) RequiredAbatementMt(year int) float64 {
	target, ok := d.Targets[year]
	if !ok {
		return 0
	}
	if req := d.BaselineMt - target; req > 0 {
		return req
	}
	return 0
}
