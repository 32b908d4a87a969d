package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// DefaultProfile is the credentials row used when no profile is given.
const DefaultProfile = "default"

// TokenStore caches one OAuth token per profile.
type TokenStore struct {
	store   *Store
	profile string
}

// NewTokenStore creates a token store for a profile.
func NewTokenStore(store *Store, profile string) *TokenStore {
	if profile == "" {
		profile = DefaultProfile
	}
	return &TokenStore{store: store, profile: profile}
}

// Load returns the cached token or domain.ErrNotFound.
func (s *TokenStore) Load(ctx context.Context) (*domain.OAuthToken, error) {
	var (
		token  domain.OAuthToken
		expiry string
	)
	err := s.store.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token, token_type, expiry FROM credentials WHERE profile = ?`,
		s.profile,
	).Scan(&token.AccessToken, &token.RefreshToken, &token.TokenType, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}

	token.Expiry, err = parseTime(expiry)
	if err != nil {
		return nil, fmt.Errorf("parse token expiry: %w", err)
	}
	return &token, nil
}

// Save stores the token, replacing any previous one.
func (s *TokenStore) Save(ctx context.Context, token *domain.OAuthToken) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", domain.ErrInvalidInput)
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO credentials (profile, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at`,
		s.profile, token.AccessToken, token.RefreshToken, token.TokenType,
		formatTime(token.Expiry), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Delete removes the cached token. Deleting a missing token is not an error.
func (s *TokenStore) Delete(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, `DELETE FROM credentials WHERE profile = ?`, s.profile); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
