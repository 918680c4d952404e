// Package httputil provides HTTP retry infrastructure for the FDSN
// web-service clients.
//
// [Retry] wraps requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Only errors wrapped with [RetryableError] are retried; everything else
// (bad requests, empty result sets) returns immediately. The delay doubles
// after each failed attempt.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    ...
//	})
package httputil
