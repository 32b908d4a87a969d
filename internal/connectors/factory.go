// Package connectors builds the Microsoft Graph client from configuration.
package connectors

import (
	"time"

	"github.com/custodia-labs/shiftsheet/internal/connectors/microsoft/teams"
	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driven"
)

// Ensure the Teams client implements the interface.
var _ driven.GraphClient = (*teams.Client)(nil)

// GraphConfig converts the user configuration to a Teams client config.
// Zero values keep the client defaults. MS-APP-ACTS-AS is only sent in
// client_secret mode, where requests carry an application identity.
func GraphConfig(cfg *domain.Config) *teams.Config {
	out := teams.DefaultConfig()
	if cfg == nil {
		return out
	}

	g := cfg.Graph
	if g.BaseURL != "" {
		out.BaseURL = g.BaseURL
	}
	if g.TimeoutSeconds > 0 {
		out.Timeout = time.Duration(g.TimeoutSeconds) * time.Second
	}
	if g.MaxRetries >= 0 {
		out.MaxRetries = g.MaxRetries
	}
	if g.RequestsPerSecond > 0 {
		out.RateLimit.RequestsPerSecond = g.RequestsPerSecond
	}
	if g.Burst > 0 {
		out.RateLimit.BurstSize = g.Burst
	}
	if cfg.Auth.Mode == domain.AuthModeClientSecret {
		out.ActsAs = cfg.Auth.ActsAs
	}
	return out
}

// NewGraphClient creates the Graph client for the configuration.
func NewGraphClient(cfg *domain.Config, tokenProvider driven.TokenProvider) *teams.Client {
	return teams.New(GraphConfig(cfg), tokenProvider)
}
