package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, "anon-key")
	require.NoError(t, err)
	require.NoError(t, c.Ready(context.Background()))
	return c
}

func TestListResults(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/v1/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("apikey")
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{
				"id":                "r2",
				"organization_name": "Beta AS",
				"task_name":         "oslo",
				"created_at":        "2026-03-02T10:00:00Z",
				"parsing_timestamp": "2026-03-02 11:00:00",
			},
			{
				"id":                "r1",
				"organization_name": "  Acme GmbH ",
				"email":             "info@acme.test",
				"original_query":    "plumbers berlin",
				"created_at":        "2026-03-01T10:00:00Z",
			},
		})
	})

	c := newTestClient(t, handler)
	records, err := c.ListResults(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/rest/v1/parsing_results", gotPath)
	assert.Contains(t, gotQuery, "order=created_at.desc")
	assert.Equal(t, "anon-key", gotKey)

	require.Len(t, records, 2)
	assert.Equal(t, "r2", records[0].ID)
	// Normalization happened once at the boundary.
	assert.Equal(t, "Acme GmbH", records[1].Organization)
	assert.Equal(t, "plumbers berlin", records[1].SearchQuery)
	assert.Equal(t, records[1].CreatedAt, records[1].ParsedAt, "missing parsing timestamp falls back to created_at")
	assert.False(t, records[0].ParsedAt.IsZero(), "space-separated timestamp layout parses")
}

func TestListResults_QueryError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/v1/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "permission denied"})
	})

	c := newTestClient(t, handler)
	_, err := c.ListResults(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Contains(t, apiErr.Message, "permission denied")
}

func TestUpdateResult(t *testing.T) {
	var gotMethod, gotFilter string
	var gotBody ResultPatch
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/v1/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		gotMethod = r.Method
		gotFilter = r.URL.Query().Get("id")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	})

	c := newTestClient(t, handler)
	org := "Renamed Org"
	err := c.UpdateResult(context.Background(), "r1", ResultPatch{OrganizationName: &org})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "eq.r1", gotFilter)
	require.NotNil(t, gotBody.OrganizationName)
	assert.Equal(t, "Renamed Org", *gotBody.OrganizationName)
	assert.Nil(t, gotBody.Email, "unset fields stay out of the patch")
}

func TestDeleteResult(t *testing.T) {
	var gotMethod, gotFilter string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/v1/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		gotMethod = r.Method
		gotFilter = r.URL.Query().Get("id")
		w.WriteHeader(http.StatusNoContent)
	})

	c := newTestClient(t, handler)
	require.NoError(t, c.DeleteResult(context.Background(), "r9"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "eq.r9", gotFilter)

	assert.Error(t, c.DeleteResult(context.Background(), "  "))
}

func TestReady_UnreachableBackend(t *testing.T) {
	// Port 1 refuses connections immediately, so the probe burns through its
	// ceiling without a slow network wait on each attempt.
	c, err := NewClient("http://127.0.0.1:1", "anon-key")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = c.Ready(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotReady))
}

func TestReady_CallerDeadline(t *testing.T) {
	c := &Client{ready: make(chan struct{})} // probe never resolves

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Ready(ctx)
	assert.True(t, errors.Is(err, ErrNotReady))
}

func TestLoginAttachesToken(t *testing.T) {
	var authHeader string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/":
			w.WriteHeader(http.StatusOK)
		case "/auth/v1/token":
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			_ = json.NewEncoder(w).Encode(Session{AccessToken: "jwt-123", User: User{ID: "u1", Email: "a@b.c"}})
		case "/rest/v1/parsing_results":
			authHeader = r.Header.Get("Authorization")
			_, _ = w.Write([]byte("[]"))
		}
	})

	c := newTestClient(t, handler)
	session, err := c.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", session.User.ID)

	_, err = c.ListResults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer jwt-123", authHeader)
}

func TestRegister_NeedsConfirmation(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/":
			w.WriteHeader(http.StatusOK)
		case "/auth/v1/signup":
			// No access_token: confirmation pending.
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "u2", "email": "new@b.c"})
		}
	})

	c := newTestClient(t, handler)
	user, needsConfirmation, err := c.Register(context.Background(), "new@b.c", "secret")
	require.NoError(t, err)
	assert.True(t, needsConfirmation)
	assert.Equal(t, "u2", user.ID)
}

func TestSignOutClearsToken(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/":
			w.WriteHeader(http.StatusOK)
		case "/auth/v1/token":
			_ = json.NewEncoder(w).Encode(Session{AccessToken: "jwt-123"})
		case "/auth/v1/logout":
			w.WriteHeader(http.StatusNoContent)
		}
	})

	c := newTestClient(t, handler)
	_, err := c.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	require.NoError(t, c.SignOut(context.Background()))

	user, err := c.Session(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user, "anonymous after sign-out")
}

func TestParseBaseURL(t *testing.T) {
	u, err := parseBaseURL("proj.example.co")
	require.NoError(t, err)
	assert.Equal(t, "https://proj.example.co", u.String())

	u, err = parseBaseURL("http://localhost:54321/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:54321", u.String())

	_, err = parseBaseURL("   ")
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	assert.True(t, parseTime("").IsZero())
	assert.True(t, parseTime("garbage").IsZero())
	assert.False(t, parseTime("2026-03-01T10:00:00Z").IsZero())
	assert.False(t, parseTime("2026-03-01 10:00:00").IsZero())
}

func TestCollectionURL(t *testing.T) {
	rel := collectionURL("parsing_results", "abc")
	want := &url.URL{Path: "/rest/v1/parsing_results", RawQuery: "id=eq.abc"}
	assert.Equal(t, want.String(), rel.String())
}
