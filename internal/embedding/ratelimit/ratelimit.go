// Package ratelimit provides proactive request throttling for outbound
// embedding-service calls, so a large batch backfill cannot overrun a
// local or hosted inference endpoint.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter wraps a token bucket sized for one embedding call per Wait.
type Limiter struct {
	bucket *rate.Limiter
}

// New creates a Limiter allowing ratePerSecond requests per second with a
// burst of burst.
func New(ratePerSecond float64, burst int) *Limiter {
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Wait blocks until a token is available or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}
