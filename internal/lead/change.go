package lead

// Change detection approximates dataset equality in O(1) instead of
// deep-diffing every record. The dominant cases are "nothing changed"
// (repeated navigation) and "a new record arrived at the head" (datasets are
// shown newest first), so comparing lengths plus the head element catches
// what matters. A mutation to a non-head record with an unchanged length
// goes undetected until the next length or head change; that is an accepted
// limitation, not a bug.

// Changed reports whether the flat results view needs a redraw.
func Changed(prev, next []Record) bool {
	if len(prev) == 0 {
		return true
	}
	if len(next) == 0 {
		return true
	}
	if len(prev) != len(next) {
		return true
	}
	a, b := prev[0], next[0]
	return a.ID != b.ID || !a.UpdatedAt.Equal(b.UpdatedAt) || !a.CreatedAt.Equal(b.CreatedAt)
}

// ContactsChanged reports whether the contacts view needs a redraw. The
// contacts table shows organization and email, so those are the mutable
// fields inspected on the head record.
func ContactsChanged(prev, next []Record) bool {
	if len(prev) == 0 {
		return true
	}
	if len(next) == 0 {
		return true
	}
	if len(prev) != len(next) {
		return true
	}
	a, b := prev[0], next[0]
	return a.ID != b.ID || a.Organization != b.Organization || a.Email != b.Email
}

// HistoryChanged reports whether the task history view needs a redraw.
func HistoryChanged(prev, next []TaskAggregate) bool {
	if len(prev) == 0 {
		return true
	}
	if len(next) == 0 {
		return true
	}
	if len(prev) != len(next) {
		return true
	}
	a, b := prev[0], next[0]
	return a.TaskName != b.TaskName || !a.LatestDate.Equal(b.LatestDate) || a.TotalResults != b.TotalResults
}
