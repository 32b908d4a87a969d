package teams

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shiftsheet/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/shiftsheet/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driving"
)

// MockSyncService implements driving.SyncService for testing.
type MockSyncService struct {
	ListTeamsFunc func(ctx context.Context) ([]domain.Team, error)
}

func (m *MockSyncService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	if m.ListTeamsFunc != nil {
		return m.ListTeamsFunc(ctx)
	}
	return []domain.Team{{ID: "t1", DisplayName: "Ops"}, {ID: "t2", DisplayName: "Support"}}, nil
}

func (m *MockSyncService) WriteTeams(context.Context, string) ([]domain.Team, error) {
	return nil, nil
}

func (m *MockSyncService) Export(context.Context, string, string) error { return nil }

func (m *MockSyncService) Sync(context.Context, string, driving.SyncOptions) (*domain.SyncReport, error) {
	return nil, nil
}

func (m *MockSyncService) History(context.Context, int) ([]domain.SyncRun, error) { return nil, nil }

// MockAuthService implements driving.AuthService for testing.
type MockAuthService struct {
	LogoutErr error
}

func (m *MockAuthService) Login(context.Context) (*domain.Account, error) { return nil, nil }

func (m *MockAuthService) Logout(context.Context) error { return m.LogoutErr }

func (m *MockAuthService) WhoAmI(context.Context) (*domain.Account, error) { return nil, nil }

func (m *MockAuthService) RestoreSession(context.Context) bool { return true }

func loaded(t *testing.T, view *View) {
	t.Helper()
	view.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	view.Update(view.load()())
	require.Len(t, view.teams, 2)
}

func TestView_Init_NilService(t *testing.T) {
	view := NewView(context.Background(), nil, nil, nil)

	cmd := view.Init()

	require.NotNil(t, cmd)
	errMsg, ok := cmd().(messages.ErrorOccurred)
	require.True(t, ok)
	assert.Error(t, errMsg.Err)
}

func TestView_Init_Loads(t *testing.T) {
	view := NewView(context.Background(), styles.DefaultStyles(), &MockSyncService{}, nil)

	cmd := view.Init()

	require.NotNil(t, cmd)
	assert.True(t, view.loading)
	assert.Contains(t, view.View(), "Loading your teams")

	loaded(t, view)
	assert.False(t, view.loading)
	assert.Contains(t, view.View(), "Ops")
}

func TestView_TeamsLoaded_Error(t *testing.T) {
	view := NewView(context.Background(), nil, &MockSyncService{}, nil)

	_, cmd := view.Update(teamsLoaded{err: errors.New("Forbidden")})

	require.NotNil(t, cmd)
	errMsg, ok := cmd().(messages.ErrorOccurred)
	require.True(t, ok)
	assert.EqualError(t, errMsg.Err, "Forbidden")
}

func TestView_Empty(t *testing.T) {
	sync := &MockSyncService{ListTeamsFunc: func(context.Context) ([]domain.Team, error) {
		return nil, nil
	}}
	view := NewView(context.Background(), nil, sync, nil)

	view.Update(view.load()())

	assert.Contains(t, view.View(), "You have not joined any teams.")
}

func TestView_Enter_SelectsTeam(t *testing.T) {
	view := NewView(context.Background(), nil, &MockSyncService{}, nil)
	loaded(t, view)

	cmd, handled := view.handleKey(tea.KeyMsg{Type: tea.KeyEnter})

	require.True(t, handled)
	require.NotNil(t, cmd)
}

func TestView_Logout(t *testing.T) {
	view := NewView(context.Background(), nil, &MockSyncService{}, &MockAuthService{})

	cmd, handled := view.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})

	require.True(t, handled)
	require.NotNil(t, cmd)
	out, ok := cmd().(messages.LoggedOut)
	require.True(t, ok)
	assert.NoError(t, out.Err)

	_, next := view.Update(out)
	require.NotNil(t, next)
	changed, ok := next().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewWelcome, changed.View)
}

func TestView_Refresh(t *testing.T) {
	view := NewView(context.Background(), nil, &MockSyncService{}, nil)

	cmd, handled := view.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})

	assert.True(t, handled)
	assert.NotNil(t, cmd)
	assert.True(t, view.loading)
}
