package util

import (
	"context"
	"sync"
	"time"
)

// RateLimiter implements a token-bucket limiter used to pace requests to the
// terminal gateway. Tokens replenish at a fixed rate up to a burst size.
type RateLimiter struct {
	rate  float64 // tokens per second
	burst float64
	mu    sync.Mutex
	tok   float64
	last  time.Time
}

// NewRateLimiter creates a RateLimiter allowing perSecond operations per
// second with capacity for burst consecutive operations.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		rate:  perSecond,
		burst: float64(burst),
		tok:   float64(burst),
		last:  time.Now(),
	}
}

// Wait blocks until a rate-limit token is available or the context is
// cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		now := time.Now()
		rl.tok += now.Sub(rl.last).Seconds() * rl.rate
		if rl.tok > rl.burst {
			rl.tok = rl.burst
		}
		rl.last = now

		if rl.tok >= 1 {
			rl.tok--
			rl.mu.Unlock()
			return nil
		}
		rl.mu.Unlock()

		// Wait a short interval before checking again.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}
