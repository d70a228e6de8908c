package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"time"
)

// httpTimeout bounds every single metadata request, retries excluded.
const httpTimeout = 5 * time.Second

var (
	// ErrNotFound is returned when an artist or resource doesn't exist at the source.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with the per-request timeout used by
// all metadata clients.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// URLEncode percent-encodes a string for use in URLs.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }
