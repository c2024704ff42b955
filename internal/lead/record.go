// Package lead defines the parsed-contact record model and the pure
// transformations the dashboard applies to it: normalization, sorting,
// per-task aggregation, and cheap change detection.
package lead

import (
	"strings"
	"time"
)

const (
	// UnnamedTask labels records whose parsing job carried no name.
	UnnamedTask = "Unnamed Task"
	// UnknownQuery labels task groups whose originating query was lost.
	UnknownQuery = "Unknown Query"
)

// Record is one parsed organization contact. The id is assigned by the
// remote store and never changed locally.
type Record struct {
	ID           string    `json:"id"`
	Organization string    `json:"organization_name"`
	Email        string    `json:"email,omitempty"`
	Description  string    `json:"description,omitempty"`
	Website      string    `json:"website,omitempty"`
	Country      string    `json:"country,omitempty"`
	TaskName     string    `json:"task_name"`
	SearchQuery  string    `json:"search_query,omitempty"`
	ParsedAt     time.Time `json:"parsing_timestamp"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasEmail reports whether the record carries a usable contact address.
func (r Record) HasEmail() bool {
	return strings.TrimSpace(r.Email) != ""
}

// SortTime returns the timestamp display ordering is based on. Records
// missing a parsing timestamp fall back to creation time; normalization
// guarantees at least one of the two is set.
func (r Record) SortTime() time.Time {
	if !r.ParsedAt.IsZero() {
		return r.ParsedAt
	}
	return r.CreatedAt
}

// Normalize fills the fallback fields once, at the ingestion boundary, so
// downstream code never re-derives them. now supplies the timestamp used
// when a record carries none at all.
func (r Record) Normalize(now time.Time) Record {
	r.Organization = strings.TrimSpace(r.Organization)
	r.Email = strings.TrimSpace(r.Email)
	r.TaskName = strings.TrimSpace(r.TaskName)
	if r.TaskName == "" {
		r.TaskName = UnnamedTask
	}
	if r.ParsedAt.IsZero() {
		r.ParsedAt = r.CreatedAt
	}
	if r.ParsedAt.IsZero() {
		r.ParsedAt = now
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = r.ParsedAt
	}
	return r
}

// WithEmail returns the subset of records with a non-empty email, in the
// input order. The contacts view operates on this subset only.
func WithEmail(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.HasEmail() {
			out = append(out, r)
		}
	}
	return out
}

// TaskAggregate is the per-task rollup shown in the history view. It is
// derived from the current record set on every pass and never persisted
// remotely.
type TaskAggregate struct {
	TaskName     string    `json:"task_name"`
	SearchQuery  string    `json:"search_query"`
	TotalResults int       `json:"total_results"`
	Contacts     int       `json:"contacts_count"`
	LatestDate   time.Time `json:"latest_date"`
}
