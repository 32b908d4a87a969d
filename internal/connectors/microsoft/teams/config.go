package teams

import (
	"time"

	"github.com/custodia-labs/shiftsheet/internal/connectors/microsoft"
)

// Config holds Microsoft Teams client configuration.
type Config struct {
	// BaseURL is the Graph endpoint. Tests point it at an httptest server.
	BaseURL string
	// ActsAs is the user ID sent as MS-APP-ACTS-AS in app-only mode.
	// When set, joined teams are listed for this user instead of /me.
	ActsAs string
	// Timeout bounds a single HTTP request.
	Timeout time.Duration
	// MaxRetries is the number of retries for throttled or unavailable responses.
	MaxRetries int
	// RetryBackoff is the first retry delay when Graph sends no Retry-After.
	// It doubles on each attempt.
	RetryBackoff time.Duration
	// RateLimit bounds the request rate.
	RateLimit microsoft.RateLimitConfig
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      microsoft.GraphBaseURL,
		Timeout:      60 * time.Second,
		MaxRetries:   3,
		RetryBackoff: 2 * time.Second,
		RateLimit:    microsoft.DefaultRateLimits[microsoft.ServiceTeams],
	}
}

// AppOnly reports whether requests are made with an application identity.
func (c *Config) AppOnly() bool {
	return c.ActsAs != ""
}
