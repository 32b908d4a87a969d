package team

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
	ExportFunc func(ctx context.Context, teamID, path string) error
	SyncFunc   func(ctx context.Context, teamID string, opts driving.SyncOptions) (*domain.SyncReport, error)
}

func (m *MockSyncService) ListTeams(context.Context) ([]domain.Team, error) { return nil, nil }

func (m *MockSyncService) WriteTeams(context.Context, string) ([]domain.Team, error) {
	return nil, nil
}

func (m *MockSyncService) Export(ctx context.Context, teamID, path string) error {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, teamID, path)
	}
	return nil
}

func (m *MockSyncService) Sync(ctx context.Context, teamID string, opts driving.SyncOptions) (*domain.SyncReport, error) {
	if m.SyncFunc != nil {
		return m.SyncFunc(ctx, teamID, opts)
	}
	return &domain.SyncReport{TeamID: teamID, DryRun: opts.DryRun}, nil
}

func (m *MockSyncService) History(context.Context, int) ([]domain.SyncRun, error) { return nil, nil }

func key(r string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)} }

func selected(sync driving.SyncService) *View {
	view := NewView(context.Background(), styles.DefaultStyles(), sync, "roster.xlsx")
	view.Update(messages.TeamSelected{Team: domain.Team{ID: "t1", DisplayName: "Ops"}})
	return view
}

func TestView_NoTeam(t *testing.T) {
	view := NewView(context.Background(), nil, nil, "roster.xlsx")

	_, cmd := view.Update(key("e"))

	assert.Nil(t, cmd)
	assert.False(t, view.Busy())
	assert.Contains(t, view.View(), "No team selected.")
}

func TestView_Export(t *testing.T) {
	var gotTeam, gotPath string
	sync := &MockSyncService{ExportFunc: func(_ context.Context, teamID, path string) error {
		gotTeam, gotPath = teamID, path
		return nil
	}}
	view := selected(sync)

	_, cmd := view.Update(key("e"))
	require.NotNil(t, cmd)
	assert.True(t, view.Busy())

	msg := view.export()()
	done, ok := msg.(messages.ExportCompleted)
	require.True(t, ok)
	assert.Equal(t, "t1", gotTeam)
	assert.Equal(t, "roster.xlsx", gotPath)

	view.Update(done)
	assert.False(t, view.Busy())
	assert.Contains(t, view.View(), "Exported members and schedule groups to roster.xlsx")
	assert.Contains(t, view.View(), "Schedule Membership")
}

func TestView_SyncAndDryRun(t *testing.T) {
	var opts []driving.SyncOptions
	sync := &MockSyncService{SyncFunc: func(_ context.Context, _ string, o driving.SyncOptions) (*domain.SyncReport, error) {
		opts = append(opts, o)
		return &domain.SyncReport{
			DryRun: o.DryRun,
			Operations: []domain.SyncOperation{
				{Kind: domain.OperationCreate, Group: &domain.ScheduleGroup{DisplayName: "Night", UserIDs: []string{"u1"}}},
			},
		}, nil
	}}
	view := selected(sync)

	view.Update(view.runSync(true)())
	assert.Contains(t, view.View(), "Dry run: 1 created, 0 updated, 0 skipped, 0 failed")

	view.Update(view.runSync(false)())
	assert.Contains(t, view.View(), "Synced: 1 created")
	assert.Contains(t, view.View(), "create Night (1 members)")

	require.Len(t, opts, 2)
	assert.True(t, opts[0].DryRun)
	assert.False(t, opts[1].DryRun)
	assert.Equal(t, "roster.xlsx", opts[1].WorkbookPath)
}

func TestView_SyncUpToDate(t *testing.T) {
	view := selected(&MockSyncService{})

	view.Update(view.runSync(false)())

	assert.Contains(t, view.View(), "schedule groups are up to date")
}

func TestView_SyncError(t *testing.T) {
	view := selected(&MockSyncService{})
	view.busy = "Syncing"

	_, cmd := view.Update(messages.SyncCompleted{Err: errors.New("Forbidden")})

	assert.False(t, view.Busy())
	require.NotNil(t, cmd)
	errMsg, ok := cmd().(messages.ErrorOccurred)
	require.True(t, ok)
	assert.EqualError(t, errMsg.Err, "Forbidden")
}

func TestView_KeysIgnoredWhileBusy(t *testing.T) {
	view := selected(&MockSyncService{})
	view.busy = "Syncing"

	_, cmd := view.Update(key("s"))

	assert.Nil(t, cmd)
}

func TestView_EscapeGoesBack(t *testing.T) {
	view := selected(&MockSyncService{})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewTeams, changed.View)
}

func TestView_SetTeamClearsResults(t *testing.T) {
	view := selected(&MockSyncService{})
	view.status = "old"
	view.report = &domain.SyncReport{}

	view.SetTeam(domain.Team{ID: "t2"})

	assert.Equal(t, "t2", view.Team().ID)
	assert.Empty(t, view.status)
	assert.Nil(t, view.report)
}
