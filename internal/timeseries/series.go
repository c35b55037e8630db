package timeseries

import "sort"

// Series is a dense year-indexed parameter track. Years with no derivable
// value are simply absent: callers must decide explicitly how to treat an
// undefined year instead of receiving a fabricated number.
type Series struct {
	vals map[int]float64
}

// NewSeries builds a series from the given year -> value map. The map is
// copied, so the series is safe to share across scenario runs.
func NewSeries(vals map[int]float64) Series {
	copied := make(map[int]float64, len(vals))
	for year, v := range vals {
		copied[year] = v
	}
	return Series{vals: copied}
}

// Value returns the value for a year and whether it is defined.
func (s Series) Value(year int) (float64, bool) {
	v, ok := s.vals[year]
	return v, ok
}

// ValueOr returns the value for a year, or fallback when undefined.
func (s Series) ValueOr(year int, fallback float64) float64 {
	if v, ok := s.vals[year]; ok {
		return v
	}
	return fallback
}

// Defined reports whether the series carries any value at all. A technology
// with zero supporting rows produces entirely undefined series.
func (s Series) Defined() bool {
	return len(s.vals) > 0
}

// Years returns the defined years in ascending order.
func (s Series) Years() []int {
	years := make([]int, 0, len(s.vals))
	for y := range s.vals {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Len returns the number of defined years.
func (s Series) Len() int {
	return len(s.vals)
}
