// Package backend talks to the hosted relational store and its bundled auth
// provider over their REST APIs. All reads return normalized lead.Records;
// the wire shapes never leave this package.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mpetrenko/leadglass/internal/lead"
)

// Store is the slice of the client the sync controller depends on.
// Implemented by *Client and by test fakes.
type Store interface {
	Ready(ctx context.Context) error
	ListResults(ctx context.Context) ([]lead.Record, error)
}

var _ Store = (*Client)(nil)

// ErrNotReady reports that the backend never became reachable within the
// caller's deadline.
var ErrNotReady = errors.New("backend not ready")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

const (
	resultsCollection = "parsing_results"
	defaultUserAgent  = "leadglass/0.1"
	requestTimeout    = 10 * time.Second
	probeInterval     = 100 * time.Millisecond
	probeCeiling      = 5 * time.Second
)

// Client talks to the backend REST and auth APIs. Construction starts a
// reachability probe in the background; Ready resolves once, when the probe
// finishes, so callers await initialization instead of polling.
type Client struct {
	baseURL   *url.URL
	apiKey    string
	http      *http.Client
	userAgent string
	now       func() time.Time

	ready    chan struct{}
	readyErr error

	mu          sync.Mutex
	accessToken string
}

// NewClient builds a Client for the given backend base URL and API key and
// begins probing for reachability.
func NewClient(baseURL, apiKey string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		apiKey:    apiKey,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
		now:       time.Now,
		ready:     make(chan struct{}),
	}
	go c.probe()
	return c, nil
}

// probe resolves the readiness future: reachable, or given up after the
// ceiling. The result is terminal either way; a later successful request
// does not re-arm it, the next sync invocation simply proceeds.
func (c *Client) probe() {
	deadline := time.Now().Add(probeCeiling)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), probeInterval*5)
		err := c.ping(ctx)
		cancel()
		if err == nil {
			close(c.ready)
			return
		}
		if time.Now().After(deadline) {
			c.readyErr = fmt.Errorf("%w: %v", ErrNotReady, err)
			close(c.ready)
			return
		}
		time.Sleep(probeInterval)
	}
}

func (c *Client) ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, &url.URL{Path: "/rest/v1/"}, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode >= 500 {
		return &APIError{Status: resp.StatusCode}
	}
	return nil
}

// Ready blocks until the backend probe completes or ctx expires, and
// reports whether the backend is usable.
func (c *Client) Ready(ctx context.Context) error {
	select {
	case <-c.ready:
		return c.readyErr
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrNotReady, ctx.Err())
	}
}

// ListResults fetches every parsing result, newest first, normalized.
func (c *Client) ListResults(ctx context.Context) ([]lead.Record, error) {
	values := url.Values{}
	values.Set("select", "*")
	values.Set("order", "created_at.desc")
	rel := &url.URL{Path: "/rest/v1/" + resultsCollection, RawQuery: values.Encode()}

	var rows []resultRow
	if err := c.do(ctx, http.MethodGet, rel, nil, &rows); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	now := c.now()
	records := make([]lead.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord(now))
	}
	return records, nil
}

// UpdateResult applies the patch to the record with the given id.
func (c *Client) UpdateResult(ctx context.Context, id string, patch ResultPatch) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("update result: id required")
	}
	rel := collectionURL(resultsCollection, id)
	if err := c.do(ctx, http.MethodPatch, rel, patch, nil); err != nil {
		return fmt.Errorf("update result %s: %w", id, err)
	}
	return nil
}

// DeleteResult removes the record with the given id.
func (c *Client) DeleteResult(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("delete result: id required")
	}
	rel := collectionURL(resultsCollection, id)
	if err := c.do(ctx, http.MethodDelete, rel, nil, nil); err != nil {
		return fmt.Errorf("delete result %s: %w", id, err)
	}
	return nil
}

func collectionURL(collection, id string) *url.URL {
	values := url.Values{}
	values.Set("id", "eq."+id)
	return &url.URL{Path: "/rest/v1/" + collection, RawQuery: values.Encode()}
}

func (c *Client) do(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	req, err := c.newRequest(ctx, method, rel, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method string, rel *url.URL, body any) (*http.Request, error) {
	target := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearerToken())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// bearerToken prefers the session token and falls back to the API key for
// anonymous access.
func (c *Client) bearerToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" {
		return c.accessToken
	}
	return c.apiKey
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		switch {
		case payload.Message != "":
			apiErr.Message = payload.Message
		case payload.Msg != "":
			apiErr.Message = payload.Msg
		case payload.ErrorDescription != "":
			apiErr.Message = payload.ErrorDescription
		}
	}
	return apiErr
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("backend url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse backend url %q: %w", raw, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
