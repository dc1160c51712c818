package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// roundTripperFunc lets tests fake the http.Client transport.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripperFunc) *http.Client {
	return &http.Client{Transport: fn, Timeout: time.Second}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestBearerHeader(t *testing.T) {
	var gotAuth string
	c := New("http://example.com", newTestClient(func(req *http.Request) (*http.Response, error) {
		gotAuth = req.Header.Get("Authorization")
		return jsonResponse(http.StatusOK, `{"tasks":[]}`), nil
	}), nil)

	if _, err := c.Tasks(context.Background(), TaskFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header without a session, got %q", gotAuth)
	}

	c.SetToken("tok-123")
	if _, err := c.Tasks(context.Background(), TaskFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q; want %q", gotAuth, "Bearer tok-123")
	}

	c.ClearToken()
	if _, err := c.Tasks(context.Background(), TaskFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header after ClearToken, got %q", gotAuth)
	}
}

func TestLogin_RejectionIsVerbatim(t *testing.T) {
	c := New("http://example.com", newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{"error":"Invalid credentials"}`), nil
	}), nil)

	_, err := c.Login(context.Background(), "alice", "wrong")
	var ae *Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if ae.Status != http.StatusUnauthorized {
		t.Errorf("status = %d; want 401", ae.Status)
	}
	if ae.Message != "Invalid credentials" {
		t.Errorf("message = %q; want the server text verbatim", ae.Message)
	}
	if IsNetwork(err) {
		t.Error("server rejection must not be classified as a network failure")
	}
}

func TestErrorFallbackMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"no error field", `{"detail":"boom"}`},
		{"not json", "<html>oops</html>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("http://example.com", newTestClient(func(req *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusInternalServerError, tt.body), nil
			}), nil)

			_, err := c.Me(context.Background())
			var ae *Error
			if !errors.As(err, &ae) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if ae.Message != "request failed" {
				t.Errorf("message = %q; want generic fallback", ae.Message)
			}
		})
	}
}

func TestNetworkFailureIsDistinct(t *testing.T) {
	c := New("http://example.com", newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}), nil)

	_, err := c.DashboardStats(context.Background())
	if !IsNetwork(err) {
		t.Fatalf("expected a network failure, got %v", err)
	}
	if StatusOf(err) != 0 {
		t.Errorf("network failure must not carry an HTTP status, got %d", StatusOf(err))
	}
}

func TestNoRetries(t *testing.T) {
	calls := 0
	c := New("http://example.com", newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("down")
	}), nil)

	if _, err := c.Me(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Errorf("transport called %d times; a failed call must be reported immediately", calls)
	}
}

func TestTasksQuery(t *testing.T) {
	tests := []struct {
		name   string
		filter TaskFilter
		want   string
	}{
		{"no filter", TaskFilter{}, ""},
		{"status only", TaskFilter{Status: "pending"}, "status=pending"},
		{"limit only", TaskFilter{Limit: 5}, "limit=5"},
		{"both", TaskFilter{Status: "completed", Limit: 3}, "limit=3&status=completed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery string
			c := New("http://example.com", newTestClient(func(req *http.Request) (*http.Response, error) {
				gotQuery = req.URL.RawQuery
				return jsonResponse(http.StatusOK, `{"tasks":[]}`), nil
			}), nil)

			if _, err := c.Tasks(context.Background(), tt.filter); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotQuery != tt.want {
				t.Errorf("query = %q; want %q", gotQuery, tt.want)
			}
		})
	}
}

func TestInvalidSuccessBody(t *testing.T) {
	c := New("http://example.com", newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, "not-json"), nil
	}), nil)

	_, err := c.Me(context.Background())
	if err == nil || !strings.Contains(err.Error(), "invalid response") {
		t.Errorf("expected a decode error, got %v", err)
	}
}
