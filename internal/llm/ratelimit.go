package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter throttles backend calls to a requests-per-minute budget.
// A nil *rateLimiter never blocks.
type rateLimiter struct {
	limiter *rate.Limiter
}

// newRateLimiter returns nil when requestsPerMinute is not positive.
func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	every := time.Minute / time.Duration(requestsPerMinute)
	return &rateLimiter{limiter: rate.NewLimiter(rate.Every(every), 1)}
}

// wait blocks until a call is allowed or the context is canceled.
func (rl *rateLimiter) wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	if err := rl.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter canceled: %w", err)
	}
	return nil
}
