// Package state holds the datasets most recently handed to the render
// boundary. The sync controller writes into it from background goroutines;
// the UI reads snapshots on its own tick. It also retains the contact sort
// direction so a toggle re-sorts the retained dataset without a fetch.
package state

import (
	"sync"
	"time"

	"github.com/mpetrenko/leadglass/internal/lead"
)

// Dataset names one of the synchronized data kinds. The set is closed; each
// member carries its own cache key.
type Dataset int

const (
	Results Dataset = iota
	History
	Contacts
)

// Key returns the cache key for the dataset.
func (d Dataset) Key() string {
	switch d {
	case History:
		return "task_history"
	case Contacts:
		return "contacts_data"
	default:
		return "parsing_results"
	}
}

// String returns the display name of the dataset.
func (d Dataset) String() string {
	switch d {
	case History:
		return "history"
	case Contacts:
		return "contacts"
	default:
		return "results"
	}
}

// Source records where the currently rendered dataset came from.
type Source int

const (
	SourceNone Source = iota
	SourceCache
	SourceRemote
)

// Meta describes one dataset's render state. Revision increases every time
// the dataset content changes, so the UI can skip rebuilding a table whose
// revision it has already drawn.
type Meta struct {
	Source    Source
	UpdatedAt time.Time
	Err       error
	Revision  uint64
}

// Snapshot is a point-in-time copy of everything the UI renders.
type Snapshot struct {
	Results      []lead.Record
	ResultsMeta  Meta
	History      []lead.TaskAggregate
	HistoryMeta  Meta
	Contacts     []lead.Record
	ContactsMeta Meta
	ContactSort  lead.Direction
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStore creates a Store with the given initial contact sort direction.
func NewStore(sort lead.Direction) *Store {
	return &Store{snap: Snapshot{ContactSort: sort}}
}

// SetResults replaces the rendered results dataset.
func (s *Store) SetResults(records []lead.Record, src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Results = cloneRecords(records)
	touch(&s.snap.ResultsMeta, src)
}

// SetHistory replaces the rendered task history dataset.
func (s *Store) SetHistory(aggs []lead.TaskAggregate, src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.History = cloneAggregates(aggs)
	touch(&s.snap.HistoryMeta, src)
}

// SetContacts replaces the rendered contacts dataset, applying the retained
// sort direction on the way in so the stored slice is always what is shown.
func (s *Store) SetContacts(records []lead.Record, src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Contacts = lead.SortByDate(records, s.snap.ContactSort)
	touch(&s.snap.ContactsMeta, src)
}

// SetError records a sync failure for the dataset. Previously rendered data
// is left standing; only the error and revision move, so the UI can surface
// a placeholder when (and only when) it has nothing else to show.
func (s *Store) SetError(d Dataset, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta := s.meta(d)
	meta.Err = err
	meta.UpdatedAt = time.Now()
	meta.Revision++
}

// ToggleContactSort flips the retained direction, re-sorts the retained
// contacts, and returns the new direction. No network access is involved.
func (s *Store) ToggleContactSort() lead.Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.ContactSort = s.snap.ContactSort.Toggle()
	if len(s.snap.Contacts) > 0 {
		s.snap.Contacts = lead.SortByDate(s.snap.Contacts, s.snap.ContactSort)
		s.snap.ContactsMeta.Revision++
	}
	return s.snap.ContactSort
}

// Results returns the rendered results dataset and its meta.
func (s *Store) Results() ([]lead.Record, Meta) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.snap.Results), s.snap.ResultsMeta
}

// History returns the rendered history dataset and its meta.
func (s *Store) History() ([]lead.TaskAggregate, Meta) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAggregates(s.snap.History), s.snap.HistoryMeta
}

// Contacts returns the rendered contacts dataset and its meta.
func (s *Store) Contacts() ([]lead.Record, Meta) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.snap.Contacts), s.snap.ContactsMeta
}

// Snapshot returns an independent copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	snap.Results = cloneRecords(s.snap.Results)
	snap.History = cloneAggregates(s.snap.History)
	snap.Contacts = cloneRecords(s.snap.Contacts)
	return snap
}

func (s *Store) meta(d Dataset) *Meta {
	switch d {
	case History:
		return &s.snap.HistoryMeta
	case Contacts:
		return &s.snap.ContactsMeta
	default:
		return &s.snap.ResultsMeta
	}
}

func touch(meta *Meta, src Source) {
	meta.Source = src
	meta.UpdatedAt = time.Now()
	meta.Err = nil
	meta.Revision++
}

func cloneRecords(records []lead.Record) []lead.Record {
	if len(records) == 0 {
		return nil
	}
	dup := make([]lead.Record, len(records))
	copy(dup, records)
	return dup
}

func cloneAggregates(aggs []lead.TaskAggregate) []lead.TaskAggregate {
	if len(aggs) == 0 {
		return nil
	}
	dup := make([]lead.TaskAggregate, len(aggs))
	copy(dup, aggs)
	return dup
}
