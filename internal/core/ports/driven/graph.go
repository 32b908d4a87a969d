// Package driven defines the interfaces core services use to reach the
// outside world: Microsoft Graph, the workbook file and local storage.
package driven

import (
	"context"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
)

// TokenProvider supplies bearer tokens for Microsoft Graph.
type TokenProvider interface {
	// GetToken returns a valid access token, refreshing it if needed.
	GetToken(ctx context.Context) (string, error)
}

// TeamsReader reads team, membership and schedule data.
type TeamsReader interface {
	// ListJoinedTeams returns the teams the signed-in user has joined.
	ListJoinedTeams(ctx context.Context) ([]domain.Team, error)

	// ListMembers returns the regular members of a team.
	ListMembers(ctx context.Context, teamID string) ([]domain.Member, error)

	// ListOwners returns the owners of a team.
	ListOwners(ctx context.Context, teamID string) ([]domain.Member, error)

	// ListScheduleGroups returns every scheduling group of a team, active or not.
	ListScheduleGroups(ctx context.Context, teamID string) ([]domain.ScheduleGroup, error)
}

// ScheduleGroupWriter pushes schedule group changes.
type ScheduleGroupWriter interface {
	// CreateScheduleGroup creates a group seeded with its members.
	CreateScheduleGroup(ctx context.Context, teamID string, group *domain.ScheduleGroup) (*domain.ScheduleGroup, error)

	// ReplaceScheduleGroup replaces an existing group's membership and marks it active.
	ReplaceScheduleGroup(ctx context.Context, teamID string, group *domain.ScheduleGroup) (*domain.ScheduleGroup, error)
}

// GraphClient is the full Graph surface used by shiftsheet.
type GraphClient interface {
	TeamsReader
	ScheduleGroupWriter

	// Me returns the signed-in account.
	Me(ctx context.Context) (*domain.Account, error)
}
