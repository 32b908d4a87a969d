package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduleGroupNamesMap_PreservesInsertionOrder(t *testing.T) {
	m := NewScheduleGroupNamesMap()
	m.Set(&ScheduleGroup{DisplayName: "Night"})
	m.Set(&ScheduleGroup{DisplayName: "Morning"})
	m.Set(&ScheduleGroup{DisplayName: "Night", ID: "replaced"})

	values := m.Values()
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "Night", values[0].DisplayName)
	assert.Equal(t, "replaced", values[0].ID)
	assert.Equal(t, "Morning", values[1].DisplayName)
}

func TestScheduleGroupNamesMap_IgnoresSurroundingWhitespace(t *testing.T) {
	m := NewScheduleGroupNamesMap()
	m.Set(&ScheduleGroup{ID: "g1", DisplayName: " Morning Crew "})

	group, ok := m.Get("Morning Crew")
	assert.True(t, ok)
	assert.Equal(t, "g1", group.ID)
	assert.Equal(t, " Morning Crew ", group.DisplayName)

	_, ok = m.Get("Morning Crew  ")
	assert.True(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestScheduleGroupNamesMap_ContainsUser(t *testing.T) {
	m := NewScheduleGroupNamesMap()
	m.Set(&ScheduleGroup{DisplayName: "Night", UserIDs: []string{"u1"}})

	assert.True(t, m.ContainsUser("u1"))
	assert.False(t, m.ContainsUser("u2"))
}

func TestScheduleGroup_Clone(t *testing.T) {
	g := &ScheduleGroup{DisplayName: "Night", UserIDs: []string{"u1"}}
	c := g.Clone()
	c.UserIDs = append(c.UserIDs, "u2")

	assert.Equal(t, []string{"u1"}, g.UserIDs)
	assert.True(t, c.HasUser("u2"))
}

func TestMembersMap_SetKeepsPosition(t *testing.T) {
	m := NewMembersMap()
	m.Set(&Member{ID: "a"})
	m.Set(&Member{ID: "b"})
	m.Set(&Member{ID: "a", IsOwner: true})

	values := m.Values()
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "a", values[0].ID)
	assert.True(t, values[0].IsOwner)

	_, ok := m.Get("missing")
	assert.False(t, ok)
}

func TestSyncReport_Summary(t *testing.T) {
	r := &SyncReport{
		RunID:  "run-1",
		TeamID: "team-1",
		Operations: []SyncOperation{
			{Kind: OperationCreate},
			{Kind: OperationUpdate},
			{Kind: OperationUpdate},
		},
		Skipped: []SkippedRow{{Row: 3}},
	}

	s := r.Summary()
	assert.Equal(t, 1, s.Created)
	assert.Equal(t, 2, s.Updated)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 0, s.Failed)
}
