package driven

import "github.com/custodia-labs/shiftsheet/internal/core/domain"

// Workbook reads and writes the fixed shiftsheet tables of a spreadsheet file.
type Workbook interface {
	// WriteTeams replaces the joined teams table.
	WriteTeams(teams []domain.Team) error

	// WriteTeamMembers replaces the team members table.
	WriteTeamMembers(members *domain.MembersMap, groups *domain.ScheduleGroupNamesMap) error

	// WriteScheduleGroups replaces the schedule membership table.
	WriteScheduleGroups(members *domain.MembersMap, groups *domain.ScheduleGroupNamesMap) error

	// ReadScheduleRows returns the data body of the schedule membership table.
	// Returns domain.ErrTableNotFound if the sheet or table is missing.
	ReadScheduleRows() ([]domain.ScheduleRow, error)

	// Save persists pending writes.
	Save() error

	// Close releases the workbook.
	Close() error
}

// WorkbookOpener opens or creates a workbook file.
type WorkbookOpener interface {
	// Open opens the workbook at path. A missing file is created on Save
	// when create is true, otherwise domain.ErrNotFound is returned.
	Open(path string, create bool) (Workbook, error)
}
