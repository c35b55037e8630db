package relations

import "sort"

// DisjointSet is a union-find structure over technology identifiers, with
// path compression and union by rank.
type DisjointSet struct {
	parent map[string]string
	rank   map[string]int
}

// NewDisjointSet creates an empty disjoint-set.
func NewDisjointSet() *DisjointSet {
	return &DisjointSet{
		parent: make(map[string]string),
		rank:   make(map[string]int),
	}
}

// Find returns the representative of x's set, adding x as a singleton if it
// has not been seen before.
func (d *DisjointSet) Find(x string) string {
	if _, ok := d.parent[x]; !ok {
		d.parent[x] = x
		return x
	}
	root := x
	for d.parent[root] != root {
		root = d.parent[root]
	}
	// Path compression
	for d.parent[x] != root {
		d.parent[x], x = root, d.parent[x]
	}
	return root
}

// Union merges the sets containing a and b.
func (d *DisjointSet) Union(a, b string) {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return
	}
	if d.rank[ra] < d.rank[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	if d.rank[ra] == d.rank[rb] {
		d.rank[ra]++
	}
}

// Groups returns every set of size > 1 as a sorted member list, with the
// groups themselves ordered by their first member for deterministic output.
func (d *DisjointSet) Groups() [][]string {
	sets := make(map[string][]string)
	for x := range d.parent {
		root := d.Find(x)
		sets[root] = append(sets[root], x)
	}

	groups := make([][]string, 0, len(sets))
	for _, members := range sets {
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		groups = append(groups, members)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}
