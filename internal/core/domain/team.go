package domain

// Team is a Microsoft Teams team the signed-in user has joined.
type Team struct {
	ID          string
	DisplayName string
	Description string
}

// Member is a team member or owner.
// ID is the stable directory object ID; UserPrincipalName is the
// secondary key used by the worksheet.
type Member struct {
	ID                string
	DisplayName       string
	UserPrincipalName string
	Mail              string
	GivenName         string
	Surname           string
	IsOwner           bool
}

// MembersMap maps member ID to member, preserving insertion order.
type MembersMap struct {
	order []string
	byID  map[string]*Member
}

// NewMembersMap creates an empty MembersMap.
func NewMembersMap() *MembersMap {
	return &MembersMap{byID: make(map[string]*Member)}
}

// Set stores a member under its ID. Re-setting an existing ID replaces the
// value but keeps its original position.
func (m *MembersMap) Set(member *Member) {
	if _, ok := m.byID[member.ID]; !ok {
		m.order = append(m.order, member.ID)
	}
	m.byID[member.ID] = member
}

// Get returns the member with the given ID.
func (m *MembersMap) Get(id string) (*Member, bool) {
	member, ok := m.byID[id]
	return member, ok
}

// Len returns the number of members.
func (m *MembersMap) Len() int {
	return len(m.order)
}

// Values returns members in insertion order.
func (m *MembersMap) Values() []*Member {
	out := make([]*Member, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}
