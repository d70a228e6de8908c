package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/matzehuels/artistgraph/pkg/cache"
	apperrors "github.com/matzehuels/artistgraph/pkg/errors"
	"github.com/matzehuels/artistgraph/pkg/httputil"
	"github.com/matzehuels/artistgraph/pkg/observability"
)

// maxErrorBody bounds how much of a failed response is read for decoding.
const maxErrorBody = 64 << 10

// ErrorDecoder turns a non-2xx response into an error. Returning nil falls
// back to the default status mapping.
type ErrorDecoder func(status int, body []byte) error

// Client provides shared HTTP functionality for all metadata API clients.
// It handles caching, retry logic, rate limiting and common request headers.
//
// All methods are safe for concurrent use.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	ttl       time.Duration
	headers   map[string]string
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[[]byte]
	decodeErr ErrorDecoder
}

// NewClient creates a Client with the given cache backend and default headers.
// Cache keys are prefixed with prefix; entries live for ttl.
// Pass nil for headers if no default headers are needed.
func NewClient(backend cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	return &Client{
		http:    NewHTTPClient(),
		cache:   cache.NewPrefixed(backend, prefix),
		ttl:     ttl,
		headers: headers,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	if h != nil {
		c.http = h
	}
	return c
}

// WithRateLimit limits outgoing requests to perSecond with the given burst.
// A non-positive perSecond disables limiting.
func (c *Client) WithRateLimit(perSecond float64, burst int) *Client {
	if perSecond <= 0 {
		c.limiter = nil
		return c
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	return c
}

// WithCircuitBreaker guards requests with a circuit breaker that opens after
// five consecutive transport or server failures and probes again after 30s.
// Client errors such as 404 do not count as failures.
func (c *Client) WithCircuitBreaker(name string) *Client {
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !httputil.IsRetryable(err)
		},
	})
	return c
}

// WithErrorDecoder installs a service-specific decoder for error responses.
func (c *Client) WithErrorDecoder(d ErrorDecoder) *Client {
	c.decodeErr = d
	return c
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; it is retried via
// [httputil.RetryWithBackoff] and on success v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			if json.Unmarshal(data, v) == nil {
				observability.Cache().OnCacheHit(ctx, observability.TierHTTP)
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, observability.TierHTTP)
	}
	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, observability.TierHTTP, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It does not retry; wrap it in [Client.Cached] or [httputil.Retry].
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, rawURL string, headers map[string]string, v any) error {
	body, err := c.fetch(ctx, rawURL, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeValidation, err, "decode response from %s", hostOf(rawURL))
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if c.breaker == nil {
		return c.doRequest(ctx, rawURL, headers)
	}
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, rawURL, headers)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, fmt.Errorf("%w: %v", ErrNetwork, err), "%s unavailable", hostOf(rawURL))
	}
	return body, err
}

func (c *Client) doRequest(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(apperrors.Wrap(apperrors.ErrCodeNetwork, fmt.Errorf("%w: %v", ErrNetwork, err), "GET %s", host))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, c.statusError(resp, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httputil.Retryable(apperrors.Wrap(apperrors.ErrCodeNetwork, fmt.Errorf("%w: %v", ErrNetwork, err), "read body from %s", host))
	}
	return body, nil
}

func (c *Client) statusError(resp *http.Response, body []byte) error {
	if c.decodeErr != nil {
		if err := c.decodeErr(resp.StatusCode, body); err != nil {
			return err
		}
	}
	return checkStatus(resp.StatusCode, resp.Header.Get("Retry-After"))
}

func checkStatus(code int, retryAfter string) error {
	switch {
	case code >= 200 && code <= 299:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return apperrors.Wrap(apperrors.ErrCodeUnauthorized, &apperrors.APIError{Status: code}, "request rejected")
	case code == http.StatusTooManyRequests:
		var secs int
		_, _ = fmt.Sscanf(retryAfter, "%d", &secs)
		return httputil.Retryable(&apperrors.RateLimitedError{RetryAfter: secs})
	case code >= 500:
		return httputil.Retryable(apperrors.Wrap(apperrors.ErrCodeAPI, &apperrors.APIError{Status: code}, "server error"))
	default:
		return apperrors.Wrap(apperrors.ErrCodeAPI, &apperrors.APIError{Status: code}, "unexpected status")
	}
}

func hostOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		return u.Host
	}
	return rawURL
}
