package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driven"
)

// mockGraph implements driven.GraphClient for testing.
type mockGraph struct {
	mu sync.Mutex

	teams   []domain.Team
	members []domain.Member
	owners  []domain.Member
	groups  []domain.ScheduleGroup

	ListMembersErr error
	CreateErr      map[string]error
	ReplaceErr     map[string]error
	MeErr          error

	created  []*domain.ScheduleGroup
	replaced []*domain.ScheduleGroup
	nextID   int
}

func (m *mockGraph) ListJoinedTeams(_ context.Context) ([]domain.Team, error) {
	return m.teams, nil
}

func (m *mockGraph) ListMembers(_ context.Context, _ string) ([]domain.Member, error) {
	if m.ListMembersErr != nil {
		return nil, m.ListMembersErr
	}
	return slices.Clone(m.members), nil
}

func (m *mockGraph) ListOwners(_ context.Context, _ string) ([]domain.Member, error) {
	return slices.Clone(m.owners), nil
}

func (m *mockGraph) ListScheduleGroups(_ context.Context, _ string) ([]domain.ScheduleGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ScheduleGroup, 0, len(m.groups))
	for i := range m.groups {
		out = append(out, *m.groups[i].Clone())
	}
	return out, nil
}

func (m *mockGraph) CreateScheduleGroup(
	_ context.Context, _ string, group *domain.ScheduleGroup,
) (*domain.ScheduleGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.CreateErr[group.DisplayName]; err != nil {
		return nil, err
	}
	m.nextID++
	created := group.Clone()
	created.ID = fmt.Sprintf("created-%d", m.nextID)
	created.IsNew = false
	created.ShouldSync = false
	m.created = append(m.created, created)
	m.groups = append(m.groups, *created)
	return created, nil
}

func (m *mockGraph) ReplaceScheduleGroup(
	_ context.Context, _ string, group *domain.ScheduleGroup,
) (*domain.ScheduleGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ReplaceErr[group.DisplayName]; err != nil {
		return nil, err
	}
	replaced := group.Clone()
	replaced.ShouldSync = false
	m.replaced = append(m.replaced, replaced)
	for i := range m.groups {
		if m.groups[i].ID == group.ID {
			m.groups[i] = *replaced
		}
	}
	return replaced, nil
}

func (m *mockGraph) Me(_ context.Context) (*domain.Account, error) {
	if m.MeErr != nil {
		return nil, m.MeErr
	}
	return &domain.Account{ID: "me", DisplayName: "Me", UserPrincipalName: "me@contoso.com"}, nil
}

// mockWorkbook implements driven.Workbook for testing.
type mockWorkbook struct {
	rows    []domain.ScheduleRow
	readErr error

	teams          []domain.Team
	writtenMembers *domain.MembersMap
	writtenGroups  *domain.ScheduleGroupNamesMap
	saved          bool
	closed         bool
}

func (w *mockWorkbook) WriteTeams(teams []domain.Team) error {
	w.teams = teams
	return nil
}

func (w *mockWorkbook) WriteTeamMembers(members *domain.MembersMap, _ *domain.ScheduleGroupNamesMap) error {
	w.writtenMembers = members
	return nil
}

func (w *mockWorkbook) WriteScheduleGroups(_ *domain.MembersMap, groups *domain.ScheduleGroupNamesMap) error {
	w.writtenGroups = groups
	return nil
}

func (w *mockWorkbook) ReadScheduleRows() ([]domain.ScheduleRow, error) {
	return w.rows, w.readErr
}

func (w *mockWorkbook) Save() error {
	w.saved = true
	return nil
}

func (w *mockWorkbook) Close() error {
	w.closed = true
	return nil
}

// mockOpener implements driven.WorkbookOpener for testing.
type mockOpener struct {
	wb      *mockWorkbook
	OpenErr error
	paths   []string
}

func (o *mockOpener) Open(path string, _ bool) (driven.Workbook, error) {
	o.paths = append(o.paths, path)
	if o.OpenErr != nil {
		return nil, o.OpenErr
	}
	return o.wb, nil
}

// mockHistory implements driven.SyncHistoryStore for testing.
type mockHistory struct {
	runs []domain.SyncRun
}

func (h *mockHistory) Record(_ context.Context, run domain.SyncRun) error {
	h.runs = append(h.runs, run)
	return nil
}

func (h *mockHistory) List(_ context.Context, limit int) ([]domain.SyncRun, error) {
	if limit > 0 && limit < len(h.runs) {
		return h.runs[:limit], nil
	}
	return h.runs, nil
}

// mockTokenStore implements driven.TokenStore for testing.
type mockTokenStore struct {
	token   *domain.OAuthToken
	deleted bool
}

func (s *mockTokenStore) Load(_ context.Context) (*domain.OAuthToken, error) {
	if s.token == nil {
		return nil, domain.ErrNotFound
	}
	return s.token, nil
}

func (s *mockTokenStore) Save(_ context.Context, token *domain.OAuthToken) error {
	s.token = token
	return nil
}

func (s *mockTokenStore) Delete(_ context.Context) error {
	s.token = nil
	s.deleted = true
	return nil
}

// mockLoginFlow implements driven.LoginFlow for testing.
type mockLoginFlow struct {
	LoginFunc  func(ctx context.Context) (*domain.OAuthToken, error)
	LogoutErr  error
	logoutCall int
}

func (f *mockLoginFlow) Login(ctx context.Context) (*domain.OAuthToken, error) {
	if f.LoginFunc != nil {
		return f.LoginFunc(ctx)
	}
	return &domain.OAuthToken{AccessToken: "token"}, nil
}

func (f *mockLoginFlow) Logout(_ context.Context) error {
	f.logoutCall++
	return f.LogoutErr
}

// contosoTeam returns members, owners and groups for a small team.
func contosoTeam() (members, owners []domain.Member, groups []domain.ScheduleGroup) {
	members = []domain.Member{
		{ID: "alice", UserPrincipalName: "alice@contoso.com", DisplayName: "Alice"},
		{ID: "bob", UserPrincipalName: "bob@contoso.com", DisplayName: "Bob"},
		{ID: "carol", UserPrincipalName: "carol@contoso.com", DisplayName: "Carol"},
	}
	owners = []domain.Member{
		{ID: "dave", UserPrincipalName: "dave@contoso.com", DisplayName: "Dave"},
	}
	groups = []domain.ScheduleGroup{
		{ID: "g-night", DisplayName: "Night Crew", UserIDs: []string{"bob"}, IsActive: true},
		{ID: "g-old", DisplayName: "Retired", UserIDs: []string{"carol"}, IsActive: false},
	}
	return members, owners, groups
}
