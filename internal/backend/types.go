package backend

import (
	"time"

	"github.com/mpetrenko/leadglass/internal/lead"
)

const backendTimestampLayout = "2006-01-02 15:04:05"

// resultRow mirrors one row of the parsing_results collection as the
// backend serializes it. Timestamps arrive as strings in more than one
// layout, and older rows may carry the query under original_query.
type resultRow struct {
	ID               string `json:"id"`
	OrganizationName string `json:"organization_name"`
	Email            string `json:"email"`
	Description      string `json:"description"`
	Website          string `json:"website"`
	Country          string `json:"country"`
	TaskName         string `json:"task_name"`
	SearchQuery      string `json:"search_query"`
	OriginalQuery    string `json:"original_query"`
	ParsingTimestamp string `json:"parsing_timestamp"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// toRecord converts the wire row into the typed model. This is the single
// normalization point; nothing downstream re-derives fallback fields.
func (r resultRow) toRecord(now time.Time) lead.Record {
	query := r.SearchQuery
	if query == "" {
		query = r.OriginalQuery
	}
	rec := lead.Record{
		ID:           r.ID,
		Organization: r.OrganizationName,
		Email:        r.Email,
		Description:  r.Description,
		Website:      r.Website,
		Country:      r.Country,
		TaskName:     r.TaskName,
		SearchQuery:  query,
		ParsedAt:     parseTime(r.ParsingTimestamp),
		CreatedAt:    parseTime(r.CreatedAt),
		UpdatedAt:    parseTime(r.UpdatedAt),
	}
	return rec.Normalize(now)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(backendTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

// ResultPatch carries the editable fields of a record. Nil fields are left
// unchanged by the backend.
type ResultPatch struct {
	OrganizationName *string `json:"organization_name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Description      *string `json:"description,omitempty"`
	Website          *string `json:"website,omitempty"`
	Country          *string `json:"country,omitempty"`
}

// Session describes an authenticated backend session.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        User   `json:"user"`
}

// User is the authenticated account behind a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
