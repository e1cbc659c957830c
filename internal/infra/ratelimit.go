package infra

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket: capacity tokens per window. Alpha
// Vantage's free tier allows 5 requests a minute, Yahoo and the scraper
// tolerate a little more; each fetcher owns a limiter sized accordingly.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	capacity   int
	window     time.Duration
	lastRefill time.Time
}

// NewRateLimiter creates a limiter allowing capacity requests per window,
// starting full.
func NewRateLimiter(capacity int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     capacity,
		capacity:   capacity,
		window:     window,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is done. When the bucket
// is empty it sleeps until the next scheduled refill instead of polling.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		now := time.Now()

		rl.mu.Lock()
		rl.refill(now)
		if rl.tokens > 0 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}
		sleep := rl.lastRefill.Add(rl.window).Sub(now)
		rl.mu.Unlock()

		if sleep < 10*time.Millisecond {
			sleep = 10 * time.Millisecond
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// refill credits whole elapsed windows, capped at capacity. Caller holds mu.
func (rl *RateLimiter) refill(now time.Time) {
	elapsed := now.Sub(rl.lastRefill)
	if elapsed < rl.window {
		return
	}
	periods := int(elapsed / rl.window)
	rl.tokens += periods
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}
	rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.window)
}
