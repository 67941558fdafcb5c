package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func fastRetries(t *testing.T) {
	t.Helper()
	oldBackoff, oldBuffer := backoffUnit, retryBuffer
	backoffUnit, retryBuffer = time.Millisecond, 0
	t.Cleanup(func() { backoffUnit, retryBuffer = oldBackoff, oldBuffer })
}

func TestCallerRetriesServerErrors(t *testing.T) {
	fastRetries(t)
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newCaller("test", Config{})
	body, err := c.do(context.Background(), "GET", srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if string(body) != "ok" || atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("body = %q after %d hits", body, hits)
	}
}

func TestCallerClientErrorIsNotRetried(t *testing.T) {
	fastRetries(t)
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newCaller("test", Config{})
	_, err := c.do(context.Background(), "GET", srv.URL, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "API returned status 401") {
		t.Fatalf("err = %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("hits = %d, want 1", hits)
	}
}

func TestCallerRateLimited(t *testing.T) {
	fastRetries(t)
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"details":[{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"0.001s"}]}}`))
	}))
	defer srv.Close()

	c := newCaller("test", Config{MaxRetries: 2})
	_, err := c.do(context.Background(), "GET", srv.URL, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "rate limited after 2 retries") {
		t.Fatalf("err = %v", err)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("hits = %d, want 3", hits)
	}
}

func TestCallerHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newCaller("test", Config{})
	if _, err := c.do(ctx, "GET", "http://127.0.0.1:1", nil, nil); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestParseRetryDelay(t *testing.T) {
	tests := []struct {
		name string
		body string
		want time.Duration
	}{
		{"retry info", `{"error":{"details":[{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"30s"}]}}`, 35 * time.Second},
		{"fractional", `{"error":{"details":[{"@type":"RetryInfo","retryDelay":"1.5s"}]}}`, 6500 * time.Millisecond},
		{"no details", `{"error":{}}`, 65 * time.Second},
		{"not json", `slow down`, 65 * time.Second},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseRetryDelay([]byte(tc.body)); got != tc.want {
				t.Fatalf("parseRetryDelay = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRedact(t *testing.T) {
	got := redact("https://example.com/v1?key=secret&x=1")
	if strings.Contains(got, "secret") {
		t.Fatalf("redact leaked key: %s", got)
	}
}
