package lead

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortByDate(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	records := []Record{
		{ID: "mid", ParsedAt: base.Add(time.Hour)},
		{ID: "old", ParsedAt: base},
		{ID: "new", ParsedAt: base.Add(2 * time.Hour)},
	}

	desc := SortByDate(records, Descending)
	require.Len(t, desc, 3)
	assert.Equal(t, "new", desc[0].ID)
	assert.Equal(t, "old", desc[2].ID)

	asc := SortByDate(records, Ascending)
	assert.Equal(t, "old", asc[0].ID)
	assert.Equal(t, "new", asc[2].ID)

	// Input order untouched.
	assert.Equal(t, "mid", records[0].ID)
}

func TestSortByDate_DoubleToggleRestoresOrder(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	records := []Record{
		{ID: "a", ParsedAt: base.Add(time.Hour)},
		{ID: "b", ParsedAt: base},
	}

	dir := Descending
	once := SortByDate(records, dir)
	dir = dir.Toggle()
	twice := SortByDate(once, dir)
	dir = dir.Toggle()
	back := SortByDate(twice, dir)

	assert.Equal(t, once, back)
	assert.Equal(t, Descending, dir)
}

func TestSortByDate_FallsBackToCreatedAt(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	records := []Record{
		{ID: "parsed", ParsedAt: base},
		{ID: "created-only", CreatedAt: base.Add(time.Hour)},
	}

	desc := SortByDate(records, Descending)
	assert.Equal(t, "created-only", desc[0].ID)
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Ascending, ParseDirection("asc"))
	assert.Equal(t, Descending, ParseDirection("desc"))
	assert.Equal(t, Descending, ParseDirection("bogus"))
	assert.Equal(t, "asc", Ascending.String())
	assert.Equal(t, "desc", Descending.String())
}

func TestNormalize(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	bare := Record{ID: "1", Organization: "  Acme  ", Email: " a@b.c "}.Normalize(now)
	assert.Equal(t, "Acme", bare.Organization)
	assert.Equal(t, "a@b.c", bare.Email)
	assert.Equal(t, UnnamedTask, bare.TaskName)
	assert.Equal(t, now, bare.ParsedAt)
	assert.Equal(t, now, bare.CreatedAt)

	created := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	fromCreated := Record{ID: "2", CreatedAt: created}.Normalize(now)
	assert.Equal(t, created, fromCreated.ParsedAt)
}

func TestWithEmail(t *testing.T) {
	records := []Record{
		{ID: "a", Email: "x@y.z"},
		{ID: "b", Email: "   "},
		{ID: "c"},
		{ID: "d", Email: "d@e.f"},
	}

	contacts := WithEmail(records)
	require.Len(t, contacts, 2)
	assert.Equal(t, "a", contacts[0].ID)
	assert.Equal(t, "d", contacts[1].ID)
}
