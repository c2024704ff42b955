package lead

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByTask(t *testing.T) {
	t1 := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(2 * time.Hour)
	t3 := t1.Add(time.Hour)

	records := []Record{
		{TaskName: "A", Email: "x@y.z", SearchQuery: "plumbers berlin", ParsedAt: t1},
		{TaskName: "A", Email: "", ParsedAt: t2},
		{TaskName: "B", Email: "a@b.c", SearchQuery: "bakeries prague", ParsedAt: t3},
	}

	aggs := GroupByTask(records)
	require.Len(t, aggs, 2)

	// t2 > t3, so task A sorts first.
	a, b := aggs[0], aggs[1]
	assert.Equal(t, "A", a.TaskName)
	assert.Equal(t, 2, a.TotalResults)
	assert.Equal(t, 1, a.Contacts)
	assert.Equal(t, t2, a.LatestDate)
	assert.Equal(t, "plumbers berlin", a.SearchQuery)

	assert.Equal(t, "B", b.TaskName)
	assert.Equal(t, 1, b.TotalResults)
	assert.Equal(t, 1, b.Contacts)
	assert.Equal(t, t3, b.LatestDate)
}

func TestGroupByTask_Defaults(t *testing.T) {
	ts := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	aggs := GroupByTask([]Record{{ParsedAt: ts}})

	require.Len(t, aggs, 1)
	assert.Equal(t, UnnamedTask, aggs[0].TaskName)
	assert.Equal(t, UnknownQuery, aggs[0].SearchQuery)
}

func TestGroupByTask_QueryTakenFromFirstRecord(t *testing.T) {
	ts := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	aggs := GroupByTask([]Record{
		{TaskName: "A", SearchQuery: "first", ParsedAt: ts},
		{TaskName: "A", SearchQuery: "second", ParsedAt: ts.Add(time.Hour)},
	})

	require.Len(t, aggs, 1)
	assert.Equal(t, "first", aggs[0].SearchQuery)
}

func TestGroupByTask_Deterministic(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	records := []Record{
		{TaskName: "A", ParsedAt: base},
		{TaskName: "B", ParsedAt: base}, // LatestDate tie with A
		{TaskName: "C", ParsedAt: base.Add(time.Hour)},
	}

	first := GroupByTask(records)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, GroupByTask(records))
	}
	// Tie between A and B keeps input partition order.
	assert.Equal(t, "C", first[0].TaskName)
	assert.Equal(t, "A", first[1].TaskName)
	assert.Equal(t, "B", first[2].TaskName)
}

func TestGroupByTask_Empty(t *testing.T) {
	assert.Empty(t, GroupByTask(nil))
}
