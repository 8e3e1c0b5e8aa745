// Package auth signs users in against the account service and keeps the
// session token between runs.
package auth

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
)

// ErrInvalidToken means the account service rejected the token.
var ErrInvalidToken = errors.New("session token rejected")

// ErrInvalidCredentials means login failed for the given email and password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// User is the signed-in account.
type User struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// APIError is any other non-2xx reply.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("auth: HTTP %d", e.StatusCode)
}

// Client talks to the account service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type authReply struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (string, *User, error) {
	var reply authReply
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &reply)
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnauthorized) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if reply.Token == "" {
		return "", nil, errors.New("auth: login reply has no token")
	}
	return reply.Token, &reply.User, nil
}

// Register creates an account and returns its first token.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, *User, error) {
	var reply authReply
	err := c.do(ctx, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &reply)
	if err != nil {
		return "", nil, err
	}
	if reply.Token == "" {
		return "", nil, errors.New("auth: register reply has no token")
	}
	return reply.Token, &reply.User, nil
}

// CurrentUser returns the account behind token. A 401 or 403 is
// ErrInvalidToken.
func (c *Client) CurrentUser(ctx context.Context, token string) (*User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, "/api/user", token, nil, &u)
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("auth: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: replyMessage(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("auth: decode response: %w", err)
	}
	return nil
}

// replyMessage pulls "msg" or "error" out of an error body.
func replyMessage(raw []byte) string {
	var body struct {
		Msg   string `json:"msg"`
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return strings.TrimSpace(string(raw))
	}
	if body.Msg != "" {
		return body.Msg
	}
	return body.Error
}
