package microsoft

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ServiceType identifies a Microsoft Graph API service for rate limiting purposes.
type ServiceType string

const (
	// ServiceTeams covers joined teams and group membership reads.
	ServiceTeams ServiceType = "teams"
	// ServiceShifts covers the Shifts schedule endpoints.
	ServiceShifts ServiceType = "shifts"
)

// DefaultRetryAfter is the backoff used when a throttled response has no usable Retry-After.
const DefaultRetryAfter = 60 * time.Second

// RateLimitConfig holds rate limiting configuration for a service.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimits provides conservative defaults for each Microsoft service.
// Shifts allows far fewer writes per app per tenant than the rest of Graph.
var DefaultRateLimits = map[ServiceType]RateLimitConfig{
	ServiceTeams:  {RequestsPerSecond: 10.0, BurstSize: 15},
	ServiceShifts: {RequestsPerSecond: 4.0, BurstSize: 8},
}

// RateLimiter provides rate limiting for Microsoft Graph API requests.
// It uses a token bucket algorithm with optional backoff for 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	service ServiceType
}

// NewRateLimiter creates a new rate limiter for the specified service.
func NewRateLimiter(service ServiceType) *RateLimiter {
	cfg, ok := DefaultRateLimits[service]
	if !ok {
		cfg = RateLimitConfig{RequestsPerSecond: 10.0, BurstSize: 15}
	}

	rl := NewRateLimiterWithConfig(cfg)
	rl.service = service
	return rl
}

// NewRateLimiterWithConfig creates a rate limiter with custom configuration.
// Non-positive values fall back to the Teams defaults.
func NewRateLimiterWithConfig(cfg RateLimitConfig) *RateLimiter {
	def := DefaultRateLimits[ServiceTeams]
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = def.BurstSize
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Service returns the service the limiter was created for, if any.
func (r *RateLimiter) Service() ServiceType {
	return r.service
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError sets a backoff period that every caller of Wait observes.
// Call this when Graph throttles a request. A non-positive duration uses DefaultRetryAfter.
// An existing later backoff is never shortened.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfter <= 0 {
		retryAfter = DefaultRetryAfter
	}

	if at := time.Now().Add(retryAfter); at.After(r.retryAt) {
		r.retryAt = at
	}
}

// Allow checks if a request can be made immediately without blocking.
// Returns true if the request is allowed, false if it would exceed the rate limit.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}

	return r.limiter.Allow()
}

// ParseRetryAfter reads a Retry-After header given in seconds or as an HTTP date.
// It returns zero when the header is missing or unparseable.
func ParseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
