package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// backoffUnit is the base of the exponential backoff between retries;
// retryBuffer is added to the delay a 429 response asks for.
var (
	backoffUnit = time.Second
	retryBuffer = 5 * time.Second
)

// ---------------------------------------------------------------------------
// Rate limit state (global pause for parallel batches)
// ---------------------------------------------------------------------------

type rateLimitState struct {
	mu       sync.Mutex
	paused   int32 // atomic: 1 = paused
	pauseEnd time.Time
}

func (r *rateLimitState) isPaused() bool {
	return atomic.LoadInt32(&r.paused) == 1
}

func (r *rateLimitState) pause(duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pauseEnd = time.Now().Add(duration)
	atomic.StoreInt32(&r.paused, 1)
}

func (r *rateLimitState) unpause() {
	atomic.StoreInt32(&r.paused, 0)
}

// waitIfPaused blocks until the rate limit pause is over.
func (r *rateLimitState) waitIfPaused(ctx context.Context) error {
	for r.isPaused() {
		r.mu.Lock()
		remaining := time.Until(r.pauseEnd)
		r.mu.Unlock()
		if remaining <= 0 {
			r.unpause()
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(min(remaining, 100*time.Millisecond)):
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// HTTP client with real proxy support
// ---------------------------------------------------------------------------

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	// Support both --proxy flag and HTTP_PROXY/HTTPS_PROXY env vars
	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// ---------------------------------------------------------------------------
// Retrying caller
// ---------------------------------------------------------------------------

// caller performs HTTP requests for one service with retries. It is safe
// for concurrent use; a 429 seen by one batch pauses all of them.
type caller struct {
	name       string
	client     *http.Client
	rl         rateLimitState
	maxRetries int
	cfg        Config
}

func newCaller(name string, cfg Config) *caller {
	return &caller{
		name:       name,
		client:     makeHTTPClient(cfg.Proxy, cfg.effectiveTimeout()),
		maxRetries: cfg.effectiveMaxRetries(),
		cfg:        cfg,
	}
}

// do sends a request and returns the body of a 200 response. Network
// errors and 5xx responses are retried with exponential backoff; 429
// responses pause every caller of this service for the delay the server
// asks for.
func (c *caller) do(ctx context.Context, method, endpoint string, headers map[string]string, body []byte) ([]byte, error) {
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rl.waitIfPaused(ctx); err != nil {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		c.cfg.debug("[DEBUG] %s attempt %d: %s %s", c.name, attempt+1, method, redact(endpoint))

		resp, err := c.client.Do(req)
		if err != nil {
			if attempt < c.maxRetries {
				if err := sleep(ctx, backoff(attempt)); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("API request failed: %w", err)
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			retryDelay := parseRetryDelay(respBody)
			c.cfg.debug("[WARN] 429 rate limited, waiting %v before retry (attempt %d/%d)", retryDelay, attempt+1, c.maxRetries)
			if attempt < c.maxRetries {
				c.rl.pause(retryDelay)
				if err := sleep(ctx, retryDelay); err != nil {
					return nil, err
				}
				c.rl.unpause()
				continue
			}
			return nil, fmt.Errorf("rate limited after %d retries: %s", c.maxRetries, truncate(string(respBody), 500))
		}

		if resp.StatusCode != http.StatusOK {
			if attempt < c.maxRetries && resp.StatusCode >= 500 {
				if err := sleep(ctx, backoff(attempt)); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 500))
		}

		return respBody, nil
	}

	return nil, fmt.Errorf("exhausted all %d retries", c.maxRetries)
}

func backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * backoffUnit
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// redact hides API keys passed as query parameters.
func redact(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "****")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// ---------------------------------------------------------------------------
// Rate limit: parse 429 response for retry delay
// ---------------------------------------------------------------------------

// parseRetryDelay extracts the retry delay from a 429 response body.
// Looks for Google's RetryInfo detail with retryDelay field.
// Returns the delay to wait, defaulting to 60s plus the buffer.
func parseRetryDelay(body []byte) time.Duration {
	defaultDelay := 60*time.Second + retryBuffer

	var errResp struct {
		Error struct {
			Details []struct {
				Type       string `json:"@type"`
				RetryDelay string `json:"retryDelay"`
			} `json:"details"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err != nil {
		return defaultDelay
	}

	for _, detail := range errResp.Error.Details {
		if strings.Contains(detail.Type, "RetryInfo") && detail.RetryDelay != "" {
			d := strings.TrimSuffix(detail.RetryDelay, "s")
			if secs, err := strconv.ParseFloat(d, 64); err == nil {
				return time.Duration(secs*1000)*time.Millisecond + retryBuffer
			}
		}
	}

	return defaultDelay
}

// truncate truncates a string to maxLen bytes.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
