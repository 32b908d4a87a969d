// Package driving defines the interfaces the CLI and TUI use to drive shiftsheet.
package driving

import (
	"context"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
)

// SyncOptions controls a sync run.
type SyncOptions struct {
	// WorkbookPath is the spreadsheet to read the schedule table from.
	WorkbookPath string
	// DryRun computes the plan without pushing it.
	DryRun bool
	// UnknownUserPolicy decides how rows naming non-members are handled.
	UnknownUserPolicy domain.UnknownUserPolicy
}

// SyncService reads Graph data into the workbook and pushes edits back.
type SyncService interface {
	// ListTeams returns the signed-in user's joined teams.
	ListTeams(ctx context.Context) ([]domain.Team, error)

	// WriteTeams writes the joined teams table to the workbook.
	WriteTeams(ctx context.Context, workbookPath string) ([]domain.Team, error)

	// Export writes a team's members and schedule groups to the workbook.
	Export(ctx context.Context, teamID, workbookPath string) error

	// Sync reconciles the workbook schedule table into Graph.
	Sync(ctx context.Context, teamID string, opts SyncOptions) (*domain.SyncReport, error)

	// History returns recent sync runs, newest first.
	History(ctx context.Context, limit int) ([]domain.SyncRun, error)
}

// AuthService manages the signed-in session.
type AuthService interface {
	// Login signs the user in and caches the token.
	Login(ctx context.Context) (*domain.Account, error)

	// Logout clears cached credentials and ends the remote session.
	Logout(ctx context.Context) error

	// WhoAmI returns the signed-in account.
	WhoAmI(ctx context.Context) (*domain.Account, error)

	// RestoreSession marks the session signed in if a cached token exists.
	RestoreSession(ctx context.Context) bool
}

// SessionView exposes the workflow session to the view layer.
type SessionView interface {
	// State returns a snapshot of the phase, header and error message.
	State() domain.SessionState

	// SelectTeam records the team the user is working on.
	SelectTeam(teamID string)

	// DismissError clears the error message.
	DismissError()
}

// ConfigService reads and edits the configuration file.
type ConfigService interface {
	// Current returns the effective configuration.
	Current(ctx context.Context) (*domain.Config, error)

	// Get returns one setting by dotted key.
	Get(ctx context.Context, key string) (string, error)

	// Set validates and stores one setting.
	Set(ctx context.Context, key, value string) error

	// Path returns the configuration file location.
	Path() string
}
