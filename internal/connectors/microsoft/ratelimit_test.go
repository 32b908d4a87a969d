package microsoft

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	tests := []struct {
		name    string
		service ServiceType
	}{
		{name: "teams", service: ServiceTeams},
		{name: "shifts", service: ServiceShifts},
		{name: "unknown service", service: ServiceType("unknown")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(tt.service)
			require.NotNil(t, rl)
			assert.NotNil(t, rl.limiter)
			assert.Equal(t, tt.service, rl.Service())
		})
	}
}

func TestNewRateLimiterWithConfig(t *testing.T) {
	cfg := RateLimitConfig{
		RequestsPerSecond: 5.0,
		BurstSize:         10,
	}

	rl := NewRateLimiterWithConfig(cfg)

	require.NotNil(t, rl)
	assert.Equal(t, 10, rl.limiter.Burst())
}

func TestNewRateLimiterWithConfig_ZeroFallsBack(t *testing.T) {
	rl := NewRateLimiterWithConfig(RateLimitConfig{})

	assert.Equal(t, DefaultRateLimits[ServiceTeams].BurstSize, rl.limiter.Burst())
}

func TestRateLimiter_Wait(t *testing.T) {
	rl := NewRateLimiter(ServiceShifts)

	err := rl.Wait(context.Background())

	assert.NoError(t, err)
}

func TestRateLimiter_Wait_ContextCancelled(t *testing.T) {
	rl := NewRateLimiter(ServiceShifts)
	rl.RecordRateLimitError(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rl.Wait(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(ServiceTeams)

	// First few requests should be allowed (burst)
	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow(), "request %d should be allowed", i)
	}
}

func TestRateLimiter_RecordRateLimitError(t *testing.T) {
	rl := NewRateLimiter(ServiceShifts)

	rl.RecordRateLimitError(200 * time.Millisecond)

	assert.False(t, rl.Allow())

	time.Sleep(250 * time.Millisecond)

	assert.True(t, rl.Allow())
}

func TestRateLimiter_RecordRateLimitError_DefaultBackoff(t *testing.T) {
	rl := NewRateLimiter(ServiceShifts)

	rl.RecordRateLimitError(0)

	rl.mu.Lock()
	retryAt := rl.retryAt
	rl.mu.Unlock()

	assert.WithinDuration(t, time.Now().Add(DefaultRetryAfter), retryAt, 2*time.Second)
}

func TestRateLimiter_RecordRateLimitError_KeepsLongerBackoff(t *testing.T) {
	rl := NewRateLimiter(ServiceShifts)

	rl.RecordRateLimitError(30 * time.Second)
	rl.RecordRateLimitError(time.Second)

	rl.mu.Lock()
	retryAt := rl.retryAt
	rl.mu.Unlock()

	assert.WithinDuration(t, time.Now().Add(30*time.Second), retryAt, 2*time.Second)
}

func TestParseRetryAfter(t *testing.T) {
	future := time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)

	tests := []struct {
		name   string
		header string
		min    time.Duration
		max    time.Duration
	}{
		{name: "empty", header: "", min: 0, max: 0},
		{name: "seconds", header: "7", min: 7 * time.Second, max: 7 * time.Second},
		{name: "negative", header: "-3", min: 0, max: 0},
		{name: "garbage", header: "soon", min: 0, max: 0},
		{name: "http date", header: future, min: 80 * time.Second, max: 91 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRetryAfter(tt.header)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}

func TestDefaultRateLimits(t *testing.T) {
	for _, service := range []ServiceType{ServiceTeams, ServiceShifts} {
		cfg, ok := DefaultRateLimits[service]
		assert.True(t, ok, "missing rate limit config for %s", service)
		assert.Greater(t, cfg.RequestsPerSecond, 0.0)
		assert.Greater(t, cfg.BurstSize, 0)
	}
}
