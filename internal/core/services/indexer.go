package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/logger"
)

// BuildMembersMap indexes members and owners by ID.
// Owners are applied after members, so a user in both lists is an owner.
func BuildMembersMap(owners, members []domain.Member) *domain.MembersMap {
	m := domain.NewMembersMap()
	for i := range members {
		member := members[i]
		member.IsOwner = false
		m.Set(&member)
	}
	for i := range owners {
		owner := owners[i]
		owner.IsOwner = true
		m.Set(&owner)
	}
	return m
}

// upnKey normalises a user principal name for lookup.
// UPNs are case-insensitive in the directory.
func upnKey(upn string) string {
	return strings.ToLower(strings.TrimSpace(upn))
}

// MembersByUPN reindexes members by user principal name.
// Members without a UPN are not indexed. Two members sharing a UPN is an error.
func MembersByUPN(members *domain.MembersMap) (map[string]*domain.Member, error) {
	byUPN := make(map[string]*domain.Member, members.Len())
	for _, member := range members.Values() {
		key := upnKey(member.UserPrincipalName)
		if key == "" {
			continue
		}
		if existing, ok := byUPN[key]; ok {
			return nil, fmt.Errorf("%w: %s is shared by members %s and %s",
				domain.ErrDuplicateUPN, member.UserPrincipalName, existing.ID, member.ID)
		}
		byUPN[key] = member
	}
	return byUPN, nil
}

// BuildScheduleGroupNamesMap indexes active schedule groups by display name.
// Inactive groups are dropped.
func BuildScheduleGroupNamesMap(groups []domain.ScheduleGroup) *domain.ScheduleGroupNamesMap {
	m := domain.NewScheduleGroupNamesMap()
	for i := range groups {
		if !groups[i].IsActive {
			continue
		}
		group := groups[i].Clone()
		if _, exists := m.Get(group.DisplayName); exists {
			logger.Warn("schedule group name %q is used by more than one active group, keeping %s",
				group.DisplayName, group.ID)
		}
		m.Set(group)
	}
	return m
}
