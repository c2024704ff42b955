package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Login exchanges credentials for a session and attaches its token to every
// later request.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	rel := &url.URL{Path: "/auth/v1/token", RawQuery: "grant_type=password"}
	body := map[string]string{"email": email, "password": password}

	var session Session
	if err := c.do(ctx, http.MethodPost, rel, body, &session); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	c.setToken(session.AccessToken)
	return &session, nil
}

// Register creates an account. needsConfirmation is true when the backend
// withholds the session pending email confirmation.
func (c *Client) Register(ctx context.Context, email, password string) (*User, bool, error) {
	rel := &url.URL{Path: "/auth/v1/signup"}
	body := map[string]string{"email": email, "password": password}

	var payload struct {
		Session
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := c.do(ctx, http.MethodPost, rel, body, &payload); err != nil {
		return nil, false, fmt.Errorf("register: %w", err)
	}

	if payload.AccessToken != "" {
		c.setToken(payload.AccessToken)
		return &payload.User, false, nil
	}
	// No session in the response means the account awaits confirmation.
	return &User{ID: payload.ID, Email: payload.Email}, true, nil
}

// Session returns the user behind the current token, or nil when the client
// is running anonymously.
func (c *Client) Session(ctx context.Context) (*User, error) {
	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()
	if token == "" {
		return nil, nil
	}

	rel := &url.URL{Path: "/auth/v1/user"}
	var user User
	if err := c.do(ctx, http.MethodGet, rel, nil, &user); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return &user, nil
}

// SignOut revokes the session and drops the token. The caller is expected
// to clear the local cache alongside so the next account starts cold.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()
	if token == "" {
		return nil
	}

	rel := &url.URL{Path: "/auth/v1/logout"}
	err := c.do(ctx, http.MethodPost, rel, nil, nil)
	c.setToken("")
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}
