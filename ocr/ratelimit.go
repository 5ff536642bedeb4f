package ocr

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration for an engine.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
	// Backoff is how long to pause after the engine reports a 429.
	Backoff time.Duration
}

// DefaultRateLimit stays well below Cloud Vision's default quota of
// 1800 requests per minute.
var DefaultRateLimit = RateLimitConfig{
	RequestsPerSecond: 10,
	BurstSize:         4,
	Backoff:           30 * time.Second,
}

// RateLimiter provides rate limiting for recognition requests.
// It uses a token bucket with a backoff window after 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	backoff time.Duration
}

// NewRateLimiter creates a rate limiter with the given configuration.
// Non-positive values fall back to DefaultRateLimit.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRateLimit.RequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = DefaultRateLimit.BurstSize
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultRateLimit.Backoff
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		backoff: cfg.Backoff,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		timer := time.NewTimer(time.Until(retryAt))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError starts a backoff window. A non-positive retryAfter
// uses the configured backoff.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfter <= 0 {
		retryAfter = r.backoff
	}
	r.retryAt = time.Now().Add(retryAfter)
}

// Allow checks if a request can be made immediately without blocking.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}

type limitedEngine struct {
	next    Engine
	limiter *RateLimiter
}

// WithRateLimit wraps e so that every Recognize call first waits on a
// shared token bucket. A rate-limited failure opens a backoff window for
// all later calls; the failing call itself is not retried.
func WithRateLimit(e Engine, cfg RateLimitConfig) Engine {
	return &limitedEngine{next: e, limiter: NewRateLimiter(cfg)}
}

func (l *limitedEngine) Recognize(ctx context.Context, image []byte) (*Result, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	res, err := l.next.Recognize(ctx, image)
	if err != nil && IsRateLimited(err) {
		l.limiter.RecordRateLimitError(0)
	}
	return res, err
}
