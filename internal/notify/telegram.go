// Package notify sends operator notifications through the Telegram Bot API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	requestTimeout = 10 * time.Second
)

var (
	tokenPattern  = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]{30,}$`)
	chatIDPattern = regexp.MustCompile(`^-?\d+$`)
)

// ValidationError reports malformed user-entered notification settings. It
// is surfaced synchronously at the input boundary; no request is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateToken checks the bot token format.
func ValidateToken(token string) error {
	if !tokenPattern.MatchString(strings.TrimSpace(token)) {
		return &ValidationError{Field: "telegram token", Reason: "expected <digits>:<secret>"}
	}
	return nil
}

// ValidateChatID checks the chat id format.
func ValidateChatID(chatID string) error {
	if !chatIDPattern.MatchString(strings.TrimSpace(chatID)) {
		return &ValidationError{Field: "telegram chat id", Reason: "expected a numeric id"}
	}
	return nil
}

// BotInfo identifies the bot behind a token.
type BotInfo struct {
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// Client calls the Telegram Bot API for one bot token.
type Client struct {
	apiBase string
	token   string
	http    *http.Client
}

// NewClient validates the token and builds a client for it.
func NewClient(token string) (*Client, error) {
	if err := ValidateToken(token); err != nil {
		return nil, err
	}
	return &Client{
		apiBase: defaultAPIBase,
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: requestTimeout},
	}, nil
}

// Test verifies the token against the API and returns the bot identity.
func (c *Client) Test(ctx context.Context) (BotInfo, error) {
	var info BotInfo
	if err := c.call(ctx, "getMe", nil, &info); err != nil {
		return BotInfo{}, fmt.Errorf("test token: %w", err)
	}
	return info, nil
}

// Send delivers an HTML-formatted message to the chat.
func (c *Client) Send(ctx context.Context, chatID, message string) error {
	if err := ValidateChatID(chatID); err != nil {
		return err
	}
	payload := map[string]string{
		"chat_id":    strings.TrimSpace(chatID),
		"text":       message,
		"parse_mode": "HTML",
	}
	if err := c.call(ctx, "sendMessage", payload, nil); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// apiResponse is the Bot API envelope: ok plus either result or description.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, method string, payload, dest any) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)

	var reader io.Reader
	if payload != nil {
		blob, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !envelope.OK {
		if envelope.Description == "" {
			return fmt.Errorf("api %s returned status %d", method, resp.StatusCode)
		}
		return fmt.Errorf("api %s: %s", method, envelope.Description)
	}
	if dest != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, dest); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}
