package state

import (
	"errors"
	"testing"
	"time"

	"github.com/mpetrenko/leadglass/internal/lead"
)

func TestStore_SetResultsAndSnapshotClone(t *testing.T) {
	s := NewStore(lead.Descending)

	records := []lead.Record{{ID: "a"}, {ID: "b"}}
	s.SetResults(records, SourceRemote)

	snap := s.Snapshot()
	if len(snap.Results) != 2 || snap.Results[0].ID != "a" {
		t.Fatalf("Results = %#v, want 2 records", snap.Results)
	}
	if snap.ResultsMeta.Source != SourceRemote {
		t.Fatalf("Source = %v, want SourceRemote", snap.ResultsMeta.Source)
	}
	if snap.ResultsMeta.Revision != 1 {
		t.Fatalf("Revision = %d, want 1", snap.ResultsMeta.Revision)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Results[0].ID = "mutated"
	snap2 := s.Snapshot()
	if snap2.Results[0].ID != "a" {
		t.Fatalf("Snapshot should clone records; got %q want %q", snap2.Results[0].ID, "a")
	}
}

func TestStore_SetErrorKeepsData(t *testing.T) {
	s := NewStore(lead.Descending)
	s.SetResults([]lead.Record{{ID: "a"}}, SourceCache)
	_, before := s.Results()

	s.SetError(Results, errors.New("boom"))

	records, meta := s.Results()
	if len(records) != 1 || records[0].ID != "a" {
		t.Fatalf("records changed on error: %#v", records)
	}
	if meta.Err == nil || meta.Err.Error() != "boom" {
		t.Fatalf("Err = %v, want boom", meta.Err)
	}
	if meta.Source != SourceCache {
		t.Fatalf("Source = %v, want SourceCache preserved", meta.Source)
	}
	if meta.Revision != before.Revision+1 {
		t.Fatalf("Revision = %d, want %d", meta.Revision, before.Revision+1)
	}
}

func TestStore_SetClearsError(t *testing.T) {
	s := NewStore(lead.Descending)
	s.SetError(History, errors.New("boom"))
	s.SetHistory([]lead.TaskAggregate{{TaskName: "A"}}, SourceRemote)

	_, meta := s.History()
	if meta.Err != nil {
		t.Fatalf("Err = %v, want nil after successful set", meta.Err)
	}
}

func TestStore_SetContactsAppliesRetainedSort(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewStore(lead.Descending)

	s.SetContacts([]lead.Record{
		{ID: "old", Email: "o@x.y", ParsedAt: base},
		{ID: "new", Email: "n@x.y", ParsedAt: base.Add(time.Hour)},
	}, SourceRemote)

	contacts, _ := s.Contacts()
	if contacts[0].ID != "new" {
		t.Fatalf("contacts[0] = %q, want newest first", contacts[0].ID)
	}
}

func TestStore_ToggleContactSortNoFetch(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewStore(lead.Descending)
	s.SetContacts([]lead.Record{
		{ID: "a", Email: "a@x.y", ParsedAt: base.Add(time.Hour)},
		{ID: "b", Email: "b@x.y", ParsedAt: base},
	}, SourceRemote)

	original, origMeta := s.Contacts()

	if dir := s.ToggleContactSort(); dir != lead.Ascending {
		t.Fatalf("direction = %v, want Ascending", dir)
	}
	flipped, flippedMeta := s.Contacts()
	if flipped[0].ID != "b" {
		t.Fatalf("flipped[0] = %q, want oldest first", flipped[0].ID)
	}
	if flippedMeta.Revision != origMeta.Revision+1 {
		t.Fatalf("toggle should bump revision: %d -> %d", origMeta.Revision, flippedMeta.Revision)
	}

	if dir := s.ToggleContactSort(); dir != lead.Descending {
		t.Fatalf("direction = %v, want Descending", dir)
	}
	restored, _ := s.Contacts()
	for i := range original {
		if restored[i].ID != original[i].ID {
			t.Fatalf("double toggle should restore order: got %#v want %#v", restored, original)
		}
	}
}

func TestStore_ToggleWithEmptyContactsKeepsRevision(t *testing.T) {
	s := NewStore(lead.Descending)
	_, before := s.Contacts()
	s.ToggleContactSort()
	_, after := s.Contacts()
	if after.Revision != before.Revision {
		t.Fatalf("empty toggle should not bump revision: %d -> %d", before.Revision, after.Revision)
	}
}

func TestDataset_Keys(t *testing.T) {
	cases := map[Dataset]string{
		Results:  "parsing_results",
		History:  "task_history",
		Contacts: "contacts_data",
	}
	for d, want := range cases {
		if got := d.Key(); got != want {
			t.Fatalf("Key(%v) = %q, want %q", d, got, want)
		}
	}
}
