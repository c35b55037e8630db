package relations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanpath/macc/internal/domain"
)

func TestExclusivityTransitivity(t *testing.T) {
	// (A,B) exclusive and (B,C) exclusive must yield one group {A,B,C},
	// not two disjoint pairs.
	rules := []domain.RelationshipRule{
		{Kind: domain.RuleMutuallyExclusive, Primary: "A", Secondary: "B"},
		{Kind: domain.RuleMutuallyExclusive, Primary: "B", Secondary: "C"},
	}

	rel := Parse(rules)
	require.Len(t, rel.Groups, 1)
	assert.Equal(t, []string{"A", "B", "C"}, rel.Groups[0])
	assert.Empty(t, rel.Couplings)
}

func TestDisjointGroupsStaySeparate(t *testing.T) {
	rules := []domain.RelationshipRule{
		{Kind: domain.RuleMutuallyExclusive, Primary: "A", Secondary: "B"},
		{Kind: domain.RuleMutuallyExclusive, Primary: "X", Secondary: "Y"},
	}

	rel := Parse(rules)
	require.Len(t, rel.Groups, 2)
	assert.Equal(t, []string{"A", "B"}, rel.Groups[0])
	assert.Equal(t, []string{"X", "Y"}, rel.Groups[1])
}

func TestCouplingEmittedUnchanged(t *testing.T) {
	rules := []domain.RelationshipRule{
		{Kind: domain.RuleCoupling, Primary: "CCS", Secondary: "H2_SUPPLY"},
		{Kind: domain.RuleCoupling, Primary: "EBOILER", Secondary: "GRID"},
	}

	rel := Parse(rules)
	assert.Empty(t, rel.Groups)
	require.Len(t, rel.Couplings, 2)
	assert.Equal(t, Coupling{Primary: "CCS", Secondary: "H2_SUPPLY"}, rel.Couplings[0])
	assert.Equal(t, Coupling{Primary: "EBOILER", Secondary: "GRID"}, rel.Couplings[1])
}

func TestEmptyTableYieldsEmptyOutputs(t *testing.T) {
	rel := Parse(nil)
	assert.Empty(t, rel.Groups)
	assert.Empty(t, rel.Couplings)
}

func TestKindSpellingVariants(t *testing.T) {
	rules := []domain.RelationshipRule{
		{Kind: "MutuallyExclusive", Primary: "A", Secondary: "B"},
		{Kind: "mutually-exclusive", Primary: "B", Secondary: "C"},
		{Kind: "Coupling", Primary: "C", Secondary: "D"},
		{Kind: "unknown_rule", Primary: "E", Secondary: "F"},
		{Kind: domain.RuleMutuallyExclusive, Primary: "", Secondary: "G"},
	}

	rel := Parse(rules)
	require.Len(t, rel.Groups, 1)
	assert.Equal(t, []string{"A", "B", "C"}, rel.Groups[0])
	require.Len(t, rel.Couplings, 1)
}

func TestDisjointSetGroupsSingletonsExcluded(t *testing.T) {
	ds := NewDisjointSet()
	ds.Find("LONER")
	ds.Union("A", "B")

	groups := ds.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"A", "B"}, groups[0])
}
