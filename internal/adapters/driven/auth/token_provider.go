// Package auth provides Graph token providers and the non-interactive
// sign-in flows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driven"
	"github.com/custodia-labs/shiftsheet/internal/logger"
)

// Ensure StoredTokenProvider implements the interface.
var _ driven.TokenProvider = (*StoredTokenProvider)(nil)

// ExpiryLeeway is how long before expiry a token is treated as expired.
const ExpiryLeeway = 2 * time.Minute

// Refresher exchanges a refresh token for a new token set.
type Refresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*domain.OAuthToken, error)
}

// StoredTokenProvider serves the cached token, refreshing it when it is
// about to expire.
type StoredTokenProvider struct {
	mu        sync.Mutex
	tokens    driven.TokenStore
	refresher Refresher
}

// NewStoredTokenProvider creates a provider. refresher may be nil, in which
// case an expired token requires signing in again.
func NewStoredTokenProvider(tokens driven.TokenStore, refresher Refresher) *StoredTokenProvider {
	return &StoredTokenProvider{tokens: tokens, refresher: refresher}
}

// GetToken returns a valid access token.
func (p *StoredTokenProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	token, err := p.tokens.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("%w: run 'shiftsheet login' first", domain.ErrAuthRequired)
	}
	if err != nil {
		return "", err
	}

	if !token.IsExpired(ExpiryLeeway) {
		return token.AccessToken, nil
	}

	if p.refresher == nil || token.RefreshToken == "" {
		return "", fmt.Errorf("%w: session expired, run 'shiftsheet login'", domain.ErrAuthRequired)
	}

	logger.Debug("auth: access token expires at %s, refreshing", token.Expiry.Format(time.RFC3339))
	refreshed, err := p.refresher.RefreshToken(ctx, token.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrAuthRequired, err)
	}
	if err := p.tokens.Save(ctx, refreshed); err != nil {
		logger.Warn("auth: failed to cache refreshed token: %v", err)
	}
	return refreshed.AccessToken, nil
}
