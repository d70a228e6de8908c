// Package integrations provides HTTP clients for music metadata APIs.
//
// # Overview
//
// Each external service has its own subpackage:
//
//   - [lastfm]: Last.fm, the artist search, detail and similarity source
//   - [deezer]: Deezer, used only as a secondary artist image lookup
//
// # Shared Infrastructure
//
// The [Client] type provides what every service client needs:
//
//   - a 5 second timeout per request
//   - retry with exponential backoff for transient failures (see httputil)
//   - optional request rate limiting (golang.org/x/time/rate)
//   - optional circuit breaking (github.com/sony/gobreaker/v2)
//   - response caching through [cache.Cache]
//   - HTTP events reported to observability hooks
//
// # Error Mapping
//
// Responses are mapped onto the coded errors of pkg/errors:
//
//   - transport failures and timeouts: NETWORK_ERROR wrapping [ErrNetwork] (retried)
//   - 404: [ErrNotFound]
//   - 429: RATE_LIMITED (retried)
//   - 5xx: API_ERROR carrying the status (retried)
//   - 401/403: UNAUTHORIZED (never retried)
//   - other non-2xx: API_ERROR carrying the status
//   - undecodable bodies: VALIDATION_ERROR
//
// Service clients can replace the status mapping with [Client.WithErrorDecoder]
// when the service reports errors in the response body.
package integrations
