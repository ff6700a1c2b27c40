package scraper

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Per-article delay bounds. The floor keeps a misconfigured high rate
// from hammering a site; the ceiling keeps a run from stretching past
// its attempt timeout on very low rates.
const (
	MinArticleDelay = 500 * time.Millisecond
	MaxArticleDelay = 3 * time.Second
)

// RateLimiter paces article fetches for a single run against one website.
type RateLimiter struct {
	limiter *rate.Limiter
	delay   time.Duration
}

// NewRateLimiter derives the per-article delay from the website's
// configured requests-per-minute rate, clamped to the delay bounds.
func NewRateLimiter(ratePerMinute int) *RateLimiter {
	if ratePerMinute < 1 {
		ratePerMinute = 1
	}

	delay := time.Minute / time.Duration(ratePerMinute)
	if delay < MinArticleDelay {
		delay = MinArticleDelay
	}
	if delay > MaxArticleDelay {
		delay = MaxArticleDelay
	}

	limiter := rate.NewLimiter(rate.Every(delay), 1)
	// Drain the initial token so the first article waits too.
	limiter.Allow()

	return &RateLimiter{limiter: limiter, delay: delay}
}

// Delay returns the clamped per-article delay.
func (r *RateLimiter) Delay() time.Duration {
	return r.delay
}

// Wait blocks until the next article may be fetched or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
