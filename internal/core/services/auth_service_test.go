package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
)

func TestAuthService_Login(t *testing.T) {
	tokens := &mockTokenStore{}
	svc := NewAuthService(&mockLoginFlow{}, tokens, &mockGraph{}, nil)

	account, err := svc.Login(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "me@contoso.com", account.UserPrincipalName)
	require.NotNil(t, tokens.token)
	assert.Equal(t, "token", tokens.token.AccessToken)

	state := svc.Session().State()
	assert.Equal(t, domain.PhaseLoggedIn, state.Phase)
	assert.Equal(t, domain.HeaderSelectTeam, state.Header)
}

func TestAuthService_LoginDialogClosed(t *testing.T) {
	flow := &mockLoginFlow{
		LoginFunc: func(context.Context) (*domain.OAuthToken, error) {
			return nil, domain.ErrDialogClosed
		},
	}
	tokens := &mockTokenStore{}
	svc := NewAuthService(flow, tokens, &mockGraph{}, nil)

	_, err := svc.Login(context.Background())

	assert.ErrorIs(t, err, domain.ErrDialogClosed)
	assert.Nil(t, tokens.token)
	state := svc.Session().State()
	assert.Equal(t, domain.PhaseLoggedOut, state.Phase)
	assert.Empty(t, state.ErrorMessage)
}

func TestAuthService_LoginMeFails(t *testing.T) {
	svc := NewAuthService(&mockLoginFlow{}, &mockTokenStore{}, &mockGraph{MeErr: domain.ErrAuthInvalid}, nil)

	_, err := svc.Login(context.Background())

	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	state := svc.Session().State()
	assert.Equal(t, domain.PhaseLoggedOut, state.Phase)
	assert.NotEmpty(t, state.ErrorMessage)
}

func TestAuthService_RestoreSession(t *testing.T) {
	t.Run("cached token", func(t *testing.T) {
		tokens := &mockTokenStore{token: &domain.OAuthToken{AccessToken: "cached"}}
		svc := NewAuthService(&mockLoginFlow{}, tokens, &mockGraph{}, nil)

		assert.True(t, svc.RestoreSession(context.Background()))
		assert.Equal(t, domain.PhaseLoggedIn, svc.Session().Phase())
	})

	t.Run("no token", func(t *testing.T) {
		svc := NewAuthService(&mockLoginFlow{}, &mockTokenStore{}, &mockGraph{}, nil)

		assert.False(t, svc.RestoreSession(context.Background()))
		assert.Equal(t, domain.PhaseLoggedOut, svc.Session().Phase())
	})
}

func TestAuthService_Logout(t *testing.T) {
	tokens := &mockTokenStore{token: &domain.OAuthToken{AccessToken: "cached"}}
	flow := &mockLoginFlow{}
	svc := NewAuthService(flow, tokens, &mockGraph{}, nil)
	require.True(t, svc.RestoreSession(context.Background()))

	err := svc.Logout(context.Background())

	require.NoError(t, err)
	assert.True(t, tokens.deleted)
	assert.Equal(t, 1, flow.logoutCall)
	assert.Equal(t, domain.PhaseLoggedOut, svc.Session().Phase())
	assert.Equal(t, domain.HeaderWelcome, svc.Session().State().Header)
}

func TestAuthService_LogoutRemoteFailureIsNotFatal(t *testing.T) {
	tokens := &mockTokenStore{}
	flow := &mockLoginFlow{LogoutErr: errors.New("browser unavailable")}
	svc := NewAuthService(flow, tokens, &mockGraph{}, nil)

	err := svc.Logout(context.Background())

	assert.NoError(t, err)
	assert.True(t, tokens.deleted)
}

func TestAuthService_ReLoginFromSignedIn(t *testing.T) {
	tokens := &mockTokenStore{token: &domain.OAuthToken{AccessToken: "old"}}
	flow := &mockLoginFlow{
		LoginFunc: func(context.Context) (*domain.OAuthToken, error) {
			return &domain.OAuthToken{AccessToken: "new"}, nil
		},
	}
	svc := NewAuthService(flow, tokens, &mockGraph{}, nil)
	svc.RestoreSession(context.Background())

	_, err := svc.Login(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "new", tokens.token.AccessToken)
	assert.Equal(t, domain.PhaseLoggedIn, svc.Session().Phase())
}
