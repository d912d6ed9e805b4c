// Minimal Telegram Bot API client covering what the moderation daemon
// needs: long-poll updates, replies, message deletion, and member role
// lookups.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/horizonte-social/charla/util"

	"github.com/carlmjohnson/versioninfo"
	"golang.org/x/time/rate"
)

var defaultHost = "https://api.telegram.org"

type Client struct {
	// Client is an HTTP client to use. If not set, defaults to util.RobustHTTPClient().
	Client *http.Client
	// Host overrides the API host (tests, local bot API servers).
	Host  string
	Token string
	// Limiter throttles outbound API calls when set.
	Limiter   *rate.Limiter
	UserAgent *string
}

func NewClient(token string) *Client {
	httpc := util.RobustHTTPClient()
	// long-poll requests hold the connection open past the default timeout
	httpc.Timeout = 90 * time.Second
	return &Client{
		Client: httpc,
		Host:   defaultHost,
		Token:  token,
		// Bot API allows roughly 30 messages per second overall
		Limiter: rate.NewLimiter(rate.Limit(25), 5),
	}
}

func (c *Client) getClient() *http.Client {
	if c.Client == nil {
		return util.RobustHTTPClient()
	}
	return c.Client
}

// Error is a non-ok Bot API response.
type Error struct {
	StatusCode  int
	Code        int
	Description string
}

func (e *Error) Error() string {
	return fmt.Sprintf("telegram API error %d: %s", e.Code, e.Description)
}

// The Bot API reports a missing "delete messages" right (and deleting
// another admin's message) as 400/403 with these descriptions.
func (e *Error) IsPermissionDenied() bool {
	if e.StatusCode == http.StatusForbidden {
		return true
	}
	d := strings.ToLower(e.Description)
	return strings.Contains(d, "not enough rights") || strings.Contains(d, "can't be deleted")
}

func (e *Error) IsNotFound() bool {
	d := strings.ToLower(e.Description)
	return strings.Contains(d, "not found")
}

func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

func (c *Client) do(ctx context.Context, method string, params any, out any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var body io.Reader
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	host := c.Host
	if host == "" {
		host = defaultHost
	}
	uri := host + "/bot" + c.Token + "/" + method
	req, err := http.NewRequestWithContext(ctx, "POST", uri, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.UserAgent != nil {
		req.Header.Set("User-Agent", *c.UserAgent)
	} else {
		req.Header.Set("User-Agent", "charlad/"+versioninfo.Short())
	}

	resp, err := c.getClient().Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}
	if !envelope.OK {
		return &Error{
			StatusCode:  resp.StatusCode,
			Code:        envelope.ErrorCode,
			Description: envelope.Description,
		}
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("decoding %s result: %w", method, err)
		}
	}
	return nil
}

// GetMe verifies the token and identifies the bot's own account.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, "getMe", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUpdates long-polls for updates past the given offset. timeout is the
// server-side poll duration in seconds; the HTTP client's own timeout must
// exceed it.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	params := map[string]any{
		"offset":          offset,
		"timeout":         timeout,
		"allowed_updates": []string{"message", "edited_message"},
	}
	var updates []Update
	if err := c.do(ctx, "getUpdates", params, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (*Message, error) {
	params := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	var msg Message
	if err := c.do(ctx, "sendMessage", params, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	params := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	return c.do(ctx, "deleteMessage", params, nil)
}

func (c *Client) GetChatMember(ctx context.Context, chatID int64, userID int64) (*ChatMember, error) {
	params := map[string]any{
		"chat_id": chatID,
		"user_id": userID,
	}
	var member ChatMember
	if err := c.do(ctx, "getChatMember", params, &member); err != nil {
		return nil, err
	}
	return &member, nil
}
