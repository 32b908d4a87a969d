package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
)

func TestNewSession(t *testing.T) {
	s := NewSession()

	state := s.State()
	assert.Equal(t, domain.PhaseLoggedOut, state.Phase)
	assert.Equal(t, domain.HeaderWelcome, state.Header)
	assert.Empty(t, state.ErrorMessage)
}

func TestSession_SyncInProgress(t *testing.T) {
	s := NewSession()
	s.Restore(domain.PhaseLoggedIn, domain.HeaderSelectTeam)

	require.NoError(t, s.Fire(domain.EventSyncStarted))
	assert.Equal(t, domain.HeaderSyncing, s.State().Header)

	err := s.Fire(domain.EventSyncStarted)
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	require.NoError(t, s.Fire(domain.EventSyncCompleted))
	assert.Equal(t, domain.PhaseSynced, s.Phase())
	assert.Equal(t, domain.HeaderSyncComplete, s.State().Header)
}

func TestSession_FailDuringSync(t *testing.T) {
	s := NewSession()
	s.Restore(domain.PhaseLoggedIn, domain.HeaderSelectTeam)
	require.NoError(t, s.Fire(domain.EventSyncStarted))

	s.Fail(errors.New("request failed with status 503"))

	state := s.State()
	assert.Equal(t, domain.PhaseLoggedIn, state.Phase)
	assert.Equal(t, "request failed with status 503", state.ErrorMessage)
}

func TestSession_DialogClosedIsSilent(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Fire(domain.EventLoginStarted))

	s.Fail(domain.ErrDialogClosed)

	state := s.State()
	assert.Equal(t, domain.PhaseLoggedOut, state.Phase)
	assert.Equal(t, domain.HeaderWelcome, state.Header)
	assert.Empty(t, state.ErrorMessage)
}

func TestSession_LoginFailureShowsError(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Fire(domain.EventLoginStarted))

	s.Fail(errors.New("AADSTS50011: redirect mismatch"))

	state := s.State()
	assert.Equal(t, domain.PhaseLoggedOut, state.Phase)
	assert.Contains(t, state.ErrorMessage, "AADSTS50011")
}

func TestSession_DismissErrorRevertsInProcess(t *testing.T) {
	tests := []struct {
		name  string
		phase domain.Phase
		want  domain.Phase
	}{
		{"logging in", domain.PhaseLoggingIn, domain.PhaseLoggedOut},
		{"fetching", domain.PhaseFetching, domain.PhaseLoggedIn},
		{"syncing", domain.PhaseSyncing, domain.PhaseLoggedIn},
		{"synced unchanged", domain.PhaseSynced, domain.PhaseSynced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			s.Restore(tt.phase, "")
			s.errorMsg = "boom"

			s.DismissError()

			assert.Equal(t, tt.want, s.Phase())
			assert.Empty(t, s.State().ErrorMessage)
		})
	}
}
