package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driving"
)

// mockAuthService implements driving.AuthService for testing.
type mockAuthService struct {
	LoginFunc  func(ctx context.Context) (*domain.Account, error)
	LogoutFunc func(ctx context.Context) error
	WhoAmIFunc func(ctx context.Context) (*domain.Account, error)
	restored   bool
}

func (m *mockAuthService) Login(ctx context.Context) (*domain.Account, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx)
	}
	return &domain.Account{DisplayName: "Ada Lovelace", UserPrincipalName: "ada@contoso.com"}, nil
}

func (m *mockAuthService) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *mockAuthService) WhoAmI(ctx context.Context) (*domain.Account, error) {
	if m.WhoAmIFunc != nil {
		return m.WhoAmIFunc(ctx)
	}
	return &domain.Account{ID: "u1", DisplayName: "Ada Lovelace", UserPrincipalName: "ada@contoso.com"}, nil
}

func (m *mockAuthService) RestoreSession(context.Context) bool {
	return m.restored
}

// mockSyncService implements driving.SyncService for testing.
type mockSyncService struct {
	ListTeamsFunc  func(ctx context.Context) ([]domain.Team, error)
	WriteTeamsFunc func(ctx context.Context, path string) ([]domain.Team, error)
	ExportFunc     func(ctx context.Context, teamID, path string) error
	SyncFunc       func(ctx context.Context, teamID string, opts driving.SyncOptions) (*domain.SyncReport, error)
	HistoryFunc    func(ctx context.Context, limit int) ([]domain.SyncRun, error)
}

func (m *mockSyncService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	if m.ListTeamsFunc != nil {
		return m.ListTeamsFunc(ctx)
	}
	return []domain.Team{{ID: "t1", DisplayName: "Ops"}}, nil
}

func (m *mockSyncService) WriteTeams(ctx context.Context, path string) ([]domain.Team, error) {
	if m.WriteTeamsFunc != nil {
		return m.WriteTeamsFunc(ctx, path)
	}
	return []domain.Team{{ID: "t1", DisplayName: "Ops"}}, nil
}

func (m *mockSyncService) Export(ctx context.Context, teamID, path string) error {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, teamID, path)
	}
	return nil
}

func (m *mockSyncService) Sync(ctx context.Context, teamID string, opts driving.SyncOptions) (*domain.SyncReport, error) {
	if m.SyncFunc != nil {
		return m.SyncFunc(ctx, teamID, opts)
	}
	return &domain.SyncReport{TeamID: teamID, DryRun: opts.DryRun}, nil
}

func (m *mockSyncService) History(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, limit)
	}
	return nil, nil
}

// mockConfigService implements driving.ConfigService for testing.
type mockConfigService struct {
	cfg *domain.Config
}

func (m *mockConfigService) Current(context.Context) (*domain.Config, error) {
	if m.cfg == nil {
		m.cfg = domain.DefaultConfig()
	}
	return m.cfg, nil
}

func (m *mockConfigService) Get(ctx context.Context, key string) (string, error) {
	cfg, _ := m.Current(ctx)
	return cfg.Get(key)
}

func (m *mockConfigService) Set(ctx context.Context, key, value string) error {
	cfg, _ := m.Current(ctx)
	return cfg.Set(key, value)
}

func (m *mockConfigService) Path() string { return "/home/ada/.shiftsheet/config.toml" }

// setupTestServices injects mock services for testing and returns a cleanup func.
func setupTestServices(auth driving.AuthService, sync driving.SyncService) func() {
	oldAuth, oldSync, oldConfig := authService, syncService, configService
	oldBook, oldSetup, oldBootstrap := defaultBook, setupErr, bootstrap

	authService = auth
	syncService = sync
	configService = &mockConfigService{}
	defaultBook = "shiftsheet.xlsx"
	setupErr = nil
	bootstrap = nil

	return func() {
		authService, syncService, configService = oldAuth, oldSync, oldConfig
		defaultBook, setupErr, bootstrap = oldBook, oldSetup, oldBootstrap
	}
}

// runCommand executes the root command with args and returns its output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Flag variables outlive a single execution.
	teamsWorkbook, exportWorkbook, syncWorkbook = "", "", ""
	syncDryRun, syncWatch, syncStrict = false, false, false
	historyLimit = 20

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
