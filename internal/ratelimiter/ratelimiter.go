// Package ratelimiter provides token bucket request limiting for the API.
package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter wraps golang.org/x/time/rate with the two operations the API
// surface needs: a non-blocking Allow for request rejection and a blocking
// Wait for internal throttling.
//
// Thread safety: all methods are safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a RateLimiter allowing requestsPerSecond sustained with the
// given burst capacity.
//
// Special cases:
//   - requestsPerSecond = 0: no rate limiting (effectively unlimited)
//   - burst below the sustained rate is raised to it, otherwise a full
//     second of traffic could never be admitted at once
func New(requestsPerSecond, burst uint) *RateLimiter {
	if requestsPerSecond == 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst < requestsPerSecond {
		burst = requestsPerSecond
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst)),
	}
}

// Allow reports whether one request may proceed now, consuming a token if
// so. Requests over the limit should be rejected, not queued.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Wait blocks until a token is available or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Tokens returns the current number of available tokens. Monitoring only;
// the value can change immediately after the call.
func (r *RateLimiter) Tokens() float64 {
	return r.limiter.Tokens()
}
