package domain

import (
	"slices"
	"strings"
)

// NewGroupFallbackName names a group synthesized from a row with a blank group cell.
const NewGroupFallbackName = "new group"

// ScheduleGroup is a Shifts scheduling group: a named subset of team members.
type ScheduleGroup struct {
	// ID is empty for groups created locally and not yet pushed.
	ID          string
	DisplayName string
	UserIDs     []string
	IsActive    bool
	// ETag is the last seen entity tag, sent as If-Match on replace.
	ETag string

	// IsNew and ShouldSync are set by reconciliation and consumed by the push.
	IsNew      bool
	ShouldSync bool
}

// HasUser reports whether the user ID is already in the group.
func (g *ScheduleGroup) HasUser(userID string) bool {
	return slices.Contains(g.UserIDs, userID)
}

// Clone returns a deep copy of the group.
func (g *ScheduleGroup) Clone() *ScheduleGroup {
	c := *g
	c.UserIDs = slices.Clone(g.UserIDs)
	return &c
}

// ScheduleGroupNamesMap maps display name to active schedule group,
// preserving insertion order. Names are keyed with surrounding whitespace
// removed, matching how worksheet cells are read; the group keeps its
// original DisplayName.
type ScheduleGroupNamesMap struct {
	order  []string
	byName map[string]*ScheduleGroup
}

// NewScheduleGroupNamesMap creates an empty map.
func NewScheduleGroupNamesMap() *ScheduleGroupNamesMap {
	return &ScheduleGroupNamesMap{byName: make(map[string]*ScheduleGroup)}
}

func groupKey(name string) string {
	return strings.TrimSpace(name)
}

// Set stores a group under its display name.
func (m *ScheduleGroupNamesMap) Set(group *ScheduleGroup) {
	key := groupKey(group.DisplayName)
	if _, ok := m.byName[key]; !ok {
		m.order = append(m.order, key)
	}
	m.byName[key] = group
}

// Get returns the group with the given display name.
func (m *ScheduleGroupNamesMap) Get(name string) (*ScheduleGroup, bool) {
	group, ok := m.byName[groupKey(name)]
	return group, ok
}

// Len returns the number of groups.
func (m *ScheduleGroupNamesMap) Len() int {
	return len(m.order)
}

// Values returns groups in insertion order.
func (m *ScheduleGroupNamesMap) Values() []*ScheduleGroup {
	out := make([]*ScheduleGroup, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.byName[name])
	}
	return out
}

// ContainsUser reports whether any group in the map includes the user.
func (m *ScheduleGroupNamesMap) ContainsUser(userID string) bool {
	for _, g := range m.byName {
		if g.HasUser(userID) {
			return true
		}
	}
	return false
}
