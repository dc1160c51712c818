// Package api implements the HTTP client for the task-management API.
// It attaches bearer credentials, handles JSON encoding on both sides,
// and converts failures into typed errors so callers can distinguish
// server rejections from transport problems.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"go.uber.org/zap"
)

// Client issues requests against the task-management API.
// The zero token means unauthenticated: no Authorization header is sent.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger

	mu    sync.RWMutex
	token string
}

// New constructs a Client for the API rooted at baseURL.
// httpClient may carry a custom transport or timeout; if nil,
// a default client with no timeout is used.
func New(baseURL string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		log:     log,
	}
}

// SetToken installs the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the bearer token; subsequent requests go out
// unauthenticated.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the currently installed bearer token, if any.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do performs a single request. No retries: a failed call is reported
// immediately to the caller.
//
// body, when non-nil, is JSON-encoded into the request. out, when
// non-nil, receives the decoded 2xx response body. Non-2xx responses
// are returned as *Error carrying the status code and the server's
// "error" message; transport failures as *NetworkError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("invalid response: %w", err)
		}
	}
	return nil
}

// decodeError extracts the server's error message from a non-2xx
// response body, falling back to a generic message when absent.
func decodeError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	msg := "request failed"
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}
