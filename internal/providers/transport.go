package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"
)

// HTTPError is a non-2xx answer from the provider.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, friendlyHTTPError(e.StatusCode, e.Body))
}

// Retryable reports whether the status is worth another attempt.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// TransportOptions configures HTTPTransport.
type TransportOptions struct {
	Timeout           time.Duration // per attempt; default 120s
	MaxRetries        int           // extra attempts after the first; 0 disables retrying
	RetryDelay        time.Duration // initial backoff; default 500ms
	RequestsPerMinute int           // 0 = unlimited
}

// HTTPTransport posts JSON payloads to provider endpoints. It retries network
// failures, 429 and 5xx answers up to MaxRetries times with exponential
// backoff and optionally paces requests with a token bucket.
type HTTPTransport struct {
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

// NewHTTPTransport builds a transport from opts.
func NewHTTPTransport(opts TransportOptions) *HTTPTransport {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	t := &HTTPTransport{
		client:     &http.Client{Timeout: opts.Timeout},
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
	}
	if opts.RequestsPerMinute > 0 {
		t.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	return t
}

// Send marshals payload, posts it and returns the raw response body.
func (t *HTTPTransport) Send(ctx context.Context, endpoint string, headers map[string]string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var out []byte
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(t.maxRetries), retry.NewExponential(t.retryDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		body, err := t.post(ctx, endpoint, headers, data)
		if err == nil {
			out = body
			return nil
		}
		if !isRetryable(ctx, err) {
			return err
		}
		slog.Warn("Provider request failed", "endpoint", endpoint, "attempt", attempt, "err", err)
		return retry.RetryableError(err)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *HTTPTransport) post(ctx context.Context, endpoint string, headers map[string]string, data []byte) ([]byte, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Retryable()
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func friendlyHTTPError(code int, body string) string {
	if code == http.StatusTooManyRequests {
		return "rate limit exceeded"
	}
	s := strings.TrimSpace(body)
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
