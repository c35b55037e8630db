// Package relations turns pairwise technology rules into mutual-exclusivity
// groups and coupling pairs for the optimization model.
package relations

import (
	"strings"

	"github.com/cleanpath/macc/internal/domain"
)

// Coupling is an ordered dependency: the primary technology's share may never
// exceed the secondary's share in the same year.
type Coupling struct {
	Primary   string
	Secondary string
}

// Relationships holds the parsed constraint inputs for the model builder.
type Relationships struct {
	// Groups are mutual-exclusivity sets of size > 1, computed as the
	// transitive closure of pairwise rules: (A,B) and (B,C) yield {A,B,C}.
	Groups [][]string
	// Couplings are emitted unchanged, in rule order; no closure applies.
	Couplings []Coupling
}

// Parse processes the relationship table. An empty or missing table yields
// empty outputs, not an error. Rules with an unknown kind or a blank
// identifier are skipped.
func Parse(rules []domain.RelationshipRule) Relationships {
	ds := NewDisjointSet()
	var couplings []Coupling

	for _, r := range rules {
		if r.Primary == "" || r.Secondary == "" {
			continue
		}
		switch normalizeKind(r.Kind) {
		case domain.RuleMutuallyExclusive:
			ds.Union(r.Primary, r.Secondary)
		case domain.RuleCoupling:
			couplings = append(couplings, Coupling{Primary: r.Primary, Secondary: r.Secondary})
		}
	}

	return Relationships{
		Groups:    ds.Groups(),
		Couplings: couplings,
	}
}

// normalizeKind tolerates the spelling variants seen in upstream tables
// ("MutuallyExclusive", "mutually_exclusive", "mutually-exclusive").
func normalizeKind(kind domain.RuleKind) domain.RuleKind {
	k := strings.ToLower(string(kind))
	k = strings.ReplaceAll(k, "_", "")
	k = strings.ReplaceAll(k, "-", "")
	switch k {
	case "mutuallyexclusive":
		return domain.RuleMutuallyExclusive
	case "coupling":
		return domain.RuleCoupling
	}
	return domain.RuleKind("")
}
