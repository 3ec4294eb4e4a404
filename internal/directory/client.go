// Package directory accesses the external user directory. Every outbound
// call funnels through a single retrying wrapper that owns the backoff
// policy and error classification.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/simple-kyc/simple-kyc/internal/observability"
)

const (
	// DefaultRetries is the number of retries after the first attempt.
	DefaultRetries = 2
	// DefaultRetryDelay is the base backoff delay; attempt n waits
	// DefaultRetryDelay * (n+1).
	DefaultRetryDelay = 500 * time.Millisecond
)

// Client issues requests against the directory base URL with sequential
// retries and linear backoff. Transient failures (5xx, transport errors)
// are retried; client errors (4xx) fail immediately.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetries sets the retry count after the first attempt.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithRetryDelay sets the base backoff delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// WithSleeper injects the backoff wait, letting tests observe waits
// without real timing.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// WithMetrics records attempt and retry counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient constructs a directory client for the given base URL.
func NewClient(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		sleep:      sleepContext,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do runs one logical request to completion: it either decodes a 2xx body
// into out or returns exactly one error describing the final failure.
// Attempts are strictly sequential with a mandatory wait between them.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("directory: encode body: %w", err)
		}
		payload = data
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			// Linear backoff scaled by the attempt number. An aborted wait
			// surfaces the context error; the last classified failure is
			// kept for the message only, so callers can tell a cancelled
			// request apart from a directory failure.
			if err := c.sleep(ctx, c.retryDelay*time.Duration(attempt)); err != nil {
				if lastErr != nil {
					return fmt.Errorf("directory: %v (after %w)", lastErr, err)
				}
				return err
			}
			if c.metrics != nil {
				c.metrics.DirectoryRetry(method)
			}
		}
		if c.metrics != nil {
			c.metrics.DirectoryAttempt(method)
		}

		err := c.attempt(ctx, method, target, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err

		var accessErr *AccessError
		if errors.As(err, &accessErr) && !accessErr.Retryable() {
			return err
		}
		if c.logger != nil && attempt < c.retries {
			c.logger.Warn("directory request retrying",
				slog.String("method", method),
				slog.String("url", target),
				slog.Int("attempt", attempt+1),
				slog.Any("error", err))
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("directory: %s %s failed after retries", method, target)
	}
	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, target string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("directory: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("directory: %s %s: %w", method, target, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return &AccessError{
			Status:     res.StatusCode,
			StatusText: http.StatusText(res.StatusCode),
			Method:     method,
			URL:        target,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("directory: decode response: %w", err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
