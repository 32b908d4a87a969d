package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driven"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driving"
	"github.com/custodia-labs/shiftsheet/internal/logger"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// AuthService signs the user in and out and tracks the session phase.
type AuthService struct {
	flow    driven.LoginFlow
	tokens  driven.TokenStore
	graph   driven.GraphClient
	session *Session
}

// NewAuthService creates an auth service. session may be nil.
func NewAuthService(
	flow driven.LoginFlow,
	tokens driven.TokenStore,
	graph driven.GraphClient,
	session *Session,
) *AuthService {
	if session == nil {
		session = NewSession()
	}
	return &AuthService{flow: flow, tokens: tokens, graph: graph, session: session}
}

// RestoreSession marks the session signed in if a cached token exists.
func (s *AuthService) RestoreSession(ctx context.Context) bool {
	token, err := s.tokens.Load(ctx)
	if err != nil || token == nil || token.AccessToken == "" {
		return false
	}
	s.session.Restore(domain.PhaseLoggedIn, domain.HeaderSelectTeam)
	return true
}

// Login runs the sign-in flow, caches the token and returns the account.
func (s *AuthService) Login(ctx context.Context) (*domain.Account, error) {
	if s.session.Phase().SignedIn() {
		s.session.Restore(domain.PhaseLoggedOut, domain.HeaderWelcome)
	}
	if err := s.session.Fire(domain.EventLoginStarted); err != nil {
		return nil, err
	}

	account, err := s.login(ctx)
	if err != nil {
		s.session.Fail(err)
		return nil, err
	}

	if err := s.session.Fire(domain.EventLoginSucceeded); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AuthService) login(ctx context.Context) (*domain.Account, error) {
	token, err := s.flow.Login(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}

	account, err := s.graph.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch signed-in user: %w", err)
	}
	logger.Debug("auth: signed in as %s", account.UserPrincipalName)
	return account, nil
}

// Logout clears the cached token and ends the remote session.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.tokens.Delete(ctx); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}

	if err := s.flow.Logout(ctx); err != nil && !errors.Is(err, domain.ErrDialogClosed) {
		logger.Warn("auth: remote sign-out failed: %v", err)
	}

	if s.session.Phase() != domain.PhaseLoggedOut {
		if err := s.session.Fire(domain.EventLoggedOut); err != nil {
			return err
		}
	}
	return nil
}

// WhoAmI returns the signed-in account.
func (s *AuthService) WhoAmI(ctx context.Context) (*domain.Account, error) {
	account, err := s.graph.Me(ctx)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Session returns the session the service drives.
func (s *AuthService) Session() *Session {
	return s.session
}
