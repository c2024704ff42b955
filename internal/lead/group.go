package lead

import "sort"

// GroupByTask partitions records by task name and rolls each partition up
// into a TaskAggregate. Aggregates are ordered newest task first; records
// within one task keep their relative order during accumulation, which makes
// latest-date ties stable across runs.
func GroupByTask(records []Record) []TaskAggregate {
	byTask := make(map[string]*TaskAggregate)
	order := make([]string, 0)

	for _, r := range records {
		name := r.TaskName
		if name == "" {
			name = UnnamedTask
		}
		agg, ok := byTask[name]
		if !ok {
			query := r.SearchQuery
			if query == "" {
				query = UnknownQuery
			}
			agg = &TaskAggregate{TaskName: name, SearchQuery: query}
			byTask[name] = agg
			order = append(order, name)
		}
		agg.TotalResults++
		if r.HasEmail() {
			agg.Contacts++
		}
		if ts := r.SortTime(); ts.After(agg.LatestDate) {
			agg.LatestDate = ts
		}
	}

	out := make([]TaskAggregate, 0, len(order))
	for _, name := range order {
		out = append(out, *byTask[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].LatestDate.Before(out[i].LatestDate)
	})
	return out
}
