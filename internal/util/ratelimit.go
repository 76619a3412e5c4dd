package util

import (
	"context"
	"sync"
	"time"
)

// RateLimiter paces provider calls with a token bucket replenished at a
// fixed per-minute rate, keeping the proxy inside the upstream plan's
// request budget.
type RateLimiter struct {
	rate   float64 // tokens per second
	tokens float64
	last   time.Time
	mu     sync.Mutex
}

// NewRateLimiter allows perMinute calls per minute. One call is available
// immediately.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		rate:   float64(perMinute) / 60.0,
		tokens: 1,
		last:   time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(rl.last).Seconds()
		rl.tokens += elapsed * rl.rate
		if rl.tokens > 1 {
			rl.tokens = 1
		}
		rl.last = now

		if rl.tokens >= 1 {
			rl.tokens -= 1
			rl.mu.Unlock()
			return nil
		}
		rl.mu.Unlock()

		// Poll for replenishment.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}
