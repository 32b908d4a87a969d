package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/logger"
)

// SyncPlan is the outcome of reconciling a schedule table against remote state.
type SyncPlan struct {
	// Groups are the groups whose membership must be pushed, in map order.
	Groups []*domain.ScheduleGroup
	// Skipped are rows that were not applied.
	Skipped []domain.SkippedRow
}

// Empty reports whether the plan has nothing to push.
func (p *SyncPlan) Empty() bool {
	return len(p.Groups) == 0
}

// Operations converts the plan to push operations scoped to the team.
// Update operations always mark the group active.
func (p *SyncPlan) Operations(teamID string) []domain.SyncOperation {
	ops := make([]domain.SyncOperation, 0, len(p.Groups))
	for _, g := range p.Groups {
		group := g.Clone()
		kind := domain.OperationUpdate
		if group.IsNew {
			kind = domain.OperationCreate
		}
		group.IsActive = true
		ops = append(ops, domain.SyncOperation{Kind: kind, TeamID: teamID, Group: group})
	}
	return ops
}

// Reconcile applies the schedule rows to the group map and returns the groups
// that changed. It mutates groups: new groups are inserted and missing user
// IDs appended. Membership is only ever added, never removed.
func Reconcile(
	members *domain.MembersMap,
	groups *domain.ScheduleGroupNamesMap,
	rows []domain.ScheduleRow,
	policy domain.UnknownUserPolicy,
) (*SyncPlan, error) {
	byUPN, err := MembersByUPN(members)
	if err != nil {
		return nil, err
	}

	plan := &SyncPlan{}

	for _, row := range rows {
		if row.IsBlank() {
			continue
		}

		groupName := strings.TrimSpace(row.GroupName)
		if groupName == "" {
			groupName = domain.NewGroupFallbackName
		}

		if upnKey(row.UserPrincipalName) == "" {
			plan.skip(row, groupName, domain.SkipReasonMissingUPN)
			continue
		}

		user, ok := byUPN[upnKey(row.UserPrincipalName)]
		if !ok {
			if policy == domain.UnknownUserFail {
				return nil, fmt.Errorf("%w: row %d: %s", domain.ErrUnknownUser, row.Row, row.UserPrincipalName)
			}
			plan.skip(row, groupName, domain.SkipReasonUnknownUser)
			continue
		}

		group, exists := groups.Get(groupName)
		switch {
		case !exists:
			logger.Debug("reconcile: row %d creates group %q for %s", row.Row, groupName, user.UserPrincipalName)
			groups.Set(&domain.ScheduleGroup{
				DisplayName: groupName,
				UserIDs:     []string{user.ID},
				IsActive:    true,
				IsNew:       true,
				ShouldSync:  true,
			})
		case !group.HasUser(user.ID):
			logger.Debug("reconcile: row %d adds %s to group %q", row.Row, user.UserPrincipalName, groupName)
			group.UserIDs = append(group.UserIDs, user.ID)
			group.ShouldSync = true
		}
	}

	for _, group := range groups.Values() {
		if group.ShouldSync {
			plan.Groups = append(plan.Groups, group)
		}
	}

	return plan, nil
}

func (p *SyncPlan) skip(row domain.ScheduleRow, groupName, reason string) {
	logger.Warn("reconcile: skipping row %d (%s): %s", row.Row, row.UserPrincipalName, reason)
	p.Skipped = append(p.Skipped, domain.SkippedRow{
		Row:               row.Row,
		GroupName:         groupName,
		UserPrincipalName: row.UserPrincipalName,
		Reason:            reason,
	})
}
