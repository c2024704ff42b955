package lead

import "sort"

// Direction orders a dataset by time.
type Direction int

const (
	// Descending shows the newest records first. This is the default.
	Descending Direction = iota
	// Ascending shows the oldest records first.
	Ascending
)

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// String returns the preference-file spelling of the direction.
func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// ParseDirection reads the preference-file spelling; anything unrecognized
// falls back to Descending.
func ParseDirection(s string) Direction {
	if s == "asc" {
		return Ascending
	}
	return Descending
}

// SortByDate returns a copy of records stably sorted by their sort time in
// the given direction. The input slice is left untouched so a retained
// rendered dataset can be re-sorted without disturbing the original.
func SortByDate(records []Record, dir Direction) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].SortTime(), out[j].SortTime()
		if dir == Ascending {
			return a.Before(b)
		}
		return b.Before(a)
	})
	return out
}
