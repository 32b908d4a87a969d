package domain

// Fixed worksheet and table names.
const (
	ScheduleSheetName = "Schedule Membership"
	ScheduleTableName = "ScheduleGroups"
	MembersSheetName  = "Team Membership"
	MembersTableName  = "TeamMembers"
	TeamsSheetName    = "Joined Teams"
	TeamsTableName    = "JoinedTeams"
)

// ScheduleHeader is the header row of the schedule table.
var ScheduleHeader = []string{"Schedule Group Name", "User Email", "Display Name", "First Name", "Last Name"}

// MembersHeader is the header row of the team members table.
var MembersHeader = []string{"User Email", "DisplayName", "FirstName", "LastName", "isOwner", "inSchedule"}

// TeamsHeader is the header row of the joined teams table.
var TeamsHeader = []string{"Team ID", "Display Name", "Description"}

// ScheduleRow is one row of the schedule table: a claim that a user belongs to a group.
type ScheduleRow struct {
	// Row is the 1-based sheet row, for diagnostics.
	Row               int
	GroupName         string
	UserPrincipalName string
	DisplayName       string
	GivenName         string
	Surname           string
}

// IsBlank reports whether every cell of the row is empty.
func (r ScheduleRow) IsBlank() bool {
	return r.GroupName == "" && r.UserPrincipalName == "" &&
		r.DisplayName == "" && r.GivenName == "" && r.Surname == ""
}

// MemberRow is one row of the team members table.
type MemberRow struct {
	UserPrincipalName string
	DisplayName       string
	GivenName         string
	Surname           string
	IsOwner           bool
	InSchedule        bool
}
