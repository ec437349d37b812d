package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

type staticFallback string

func (f staticFallback) ResolveName(context.Context, string) string { return string(f) }

func newDirectory(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.Header.Get("X-Api-Key") != "k1" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		switch strings.TrimPrefix(r.URL.Path, "/v1/users/") {
		case "user1":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "user1", "name": "Alice Johnson"})
		case "broken":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveName_UsesDirectoryAndCaches(t *testing.T) {
	var calls int32
	srv := newDirectory(t, &calls)

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k1"}, staticFallback("fallback"), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	for i := 0; i < 3; i++ {
		if got := c.ResolveName(context.Background(), "user1"); got != "Alice Johnson" {
			t.Fatalf("expected Alice Johnson, got %q", got)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected 1 upstream call, got %d", n)
	}
}

func TestResolveName_FallsBack(t *testing.T) {
	var calls int32
	srv := newDirectory(t, &calls)

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k1"}, staticFallback("Local Name"), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if got := c.ResolveName(context.Background(), "ghost"); got != "Local Name" {
		t.Fatalf("unknown user: expected fallback, got %q", got)
	}
	if got := c.ResolveName(context.Background(), "broken"); got != "Local Name" {
		t.Fatalf("upstream error: expected fallback, got %q", got)
	}

	noFallback, _ := NewClient(Config{BaseURL: srv.URL, APIKey: "k1"}, nil, nil)
	if got := noFallback.ResolveName(context.Background(), "ghost"); got != "Unknown User" {
		t.Fatalf("expected Unknown User, got %q", got)
	}
}

func TestLookupName_Unauthorized(t *testing.T) {
	var calls int32
	srv := newDirectory(t, &calls)

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "wrong"}, nil, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.LookupName(context.Background(), "user1"); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{}, nil, nil); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
