package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spaces requests at a fixed per-minute rate with a burst of
// one. It keeps quote lookups under the market-data plan's request budget.
type RateLimiter struct {
	lim *rate.Limiter
}

// NewRateLimiter creates a RateLimiter that allows perMinute operations per
// minute.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	every := time.Minute / time.Duration(perMinute)
	return &RateLimiter{lim: rate.NewLimiter(rate.Every(every), 1)}
}

// Allow takes a token if one is available without waiting.
func (rl *RateLimiter) Allow() bool {
	return rl.lim.Allow()
}

// Wait blocks until a token is available. It fails early when ctx is done or
// its deadline falls before the next token.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.lim.Wait(ctx)
}
