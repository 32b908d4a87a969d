// Package messages defines the tea.Msg types passed between TUI views.
package messages

import "github.com/custodia-labs/shiftsheet/internal/core/domain"

// ViewType identifies a screen.
type ViewType int

// Screens.
const (
	ViewWelcome ViewType = iota
	ViewTeams
	ViewTeam
)

// ViewChanged asks the app to switch screens.
type ViewChanged struct {
	View ViewType
}

// ErrorOccurred reports an error to show in the banner.
type ErrorOccurred struct {
	Err error
}

// LoginCompleted reports the end of a sign-in attempt.
type LoginCompleted struct {
	Account *domain.Account
	Err     error
}

// LoggedOut reports the end of a sign-out.
type LoggedOut struct {
	Err error
}

// TeamSelected carries the team the user picked.
type TeamSelected struct {
	Team domain.Team
}

// ExportCompleted reports the end of an export.
type ExportCompleted struct {
	Path string
	Err  error
}

// SyncCompleted reports the end of a sync pass.
type SyncCompleted struct {
	Report *domain.SyncReport
	Err    error
}
