package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/dumpling2/steam-game-suggester/internal/logger"
)

// StatusError is an HTTP response with a non-2xx status. Callers can
// distinguish it from transport errors, which carry no response at all.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

type Config struct {
	Name           string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	MaxPerSecond   int
	MaxPerMinute   int
}

// Client performs rate-limited, retrying GET requests against one
// upstream API. All adapters go through it, so retry and rate policy
// live in exactly one place.
type Client struct {
	name           string
	httpClient     *http.Client
	limiter        *RateLimiter
	log            *logger.Logger
	maxRetries     int
	retryBaseDelay time.Duration
}

func NewClient(cfg Config, baseLog *logger.Logger) *Client {
	return &Client{
		name:           cfg.Name,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		limiter:        NewRateLimiter(cfg.MaxPerSecond, cfg.MaxPerMinute),
		log:            baseLog.With("component", "HTTPClient", "upstream", cfg.Name),
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
}

func isRetryableStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return isRetryableStatus(statusErr.StatusCode)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	// Transport failure without a response.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func (c *Client) doOnce(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

// Get performs one logical request: wait for rate-limit headroom, issue
// the call, retry transient failures with exponential backoff, and on
// exhaustion return the final error unchanged in kind.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values) ([]byte, error) {
	if len(query) > 0 {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
		}
		merged := parsed.Query()
		for k, vs := range query {
			for _, v := range vs {
				merged.Add(k, v)
			}
		}
		parsed.RawQuery = merged.Encode()
		rawURL = parsed.String()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		c.log.Debug("HTTP request", "method", "GET", "url", rawURL, "attempt", attempt+1)
		raw, err := c.doOnce(ctx, rawURL)
		if err == nil {
			c.log.Debug("HTTP response", "url", rawURL, "bytes", len(raw))
			return raw, nil
		}
		lastErr = err

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			c.log.Warn("HTTP error response", "url", rawURL, "status", statusErr.StatusCode)
		} else {
			c.log.Warn("HTTP request failed", "url", rawURL, "error", err)
		}

		if !isRetryable(err) || attempt == c.maxRetries {
			break
		}

		delay := c.retryBaseDelay * (1 << attempt)
		c.log.Warn("Retrying request", "url", rawURL, "retry", attempt+1, "max_retries", c.maxRetries, "delay", delay.String())
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

// GetJSON performs Get and decodes the response body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values, out interface{}) error {
	raw, err := c.Get(ctx, rawURL, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", c.name, err)
	}
	return nil
}
