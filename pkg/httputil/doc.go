// Package httputil provides retry helpers for metadata source clients.
//
// # Retry
//
// [Retry] re-runs an operation for transient failures only. Callers mark an
// error as transient by wrapping it in [RetryableError]:
//
//   - network errors and timeouts
//   - 5xx server errors
//   - rate limit responses
//
// The delay doubles after each failed attempt. [RetryWithBackoff] applies the
// defaults used for every metadata lookup: 3 attempts (2 retries) waiting
// 100ms and then 200ms:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return client.Get(ctx, url, &resp)
//	})
//
// Errors that are not wrapped (404s, rejected API keys, malformed bodies)
// are returned on the first attempt.
package httputil
