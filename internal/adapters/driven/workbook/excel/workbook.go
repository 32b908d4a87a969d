// Package excel reads and writes the shiftsheet tables of an .xlsx workbook.
package excel

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driven"
	"github.com/custodia-labs/shiftsheet/internal/logger"
)

// Ensure the adapters implement the interfaces.
var (
	_ driven.Workbook       = (*Workbook)(nil)
	_ driven.WorkbookOpener = (*Opener)(nil)
)

const (
	// TableStyle is applied to every table shiftsheet writes.
	TableStyle = "TableStyleMedium2"

	defaultSheet = "Sheet1"
	scratchSheet = "shiftsheet_tmp"

	minColumnWidth = 8
	maxColumnWidth = 80
)

// Opener opens workbook files from disk.
type Opener struct{}

// NewOpener creates an Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open opens the workbook at path. A missing file is created on Save when
// create is true, otherwise domain.ErrNotFound is returned.
func (o *Opener) Open(path string, create bool) (driven.Workbook, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: workbook path is empty", domain.ErrInvalidInput)
	}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		return &Workbook{file: f, path: path}, nil
	case errors.Is(err, os.ErrNotExist):
		if !create {
			return nil, fmt.Errorf("%w: workbook %s", domain.ErrNotFound, path)
		}
		return &Workbook{file: excelize.NewFile(), path: path, created: true}, nil
	default:
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
}

// Workbook is an open .xlsx file.
type Workbook struct {
	file    *excelize.File
	path    string
	created bool
}

// WriteTeams replaces the joined teams table.
func (w *Workbook) WriteTeams(teams []domain.Team) error {
	rows := make([][]any, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, []any{t.ID, t.DisplayName, t.Description})
	}
	return w.writeTable(domain.TeamsSheetName, domain.TeamsTableName, domain.TeamsHeader, rows)
}

// WriteTeamMembers replaces the team members table.
func (w *Workbook) WriteTeamMembers(members *domain.MembersMap, groups *domain.ScheduleGroupNamesMap) error {
	memberRows := MemberRows(members, groups)
	rows := make([][]any, 0, len(memberRows))
	for _, m := range memberRows {
		rows = append(rows, []any{m.UserPrincipalName, m.DisplayName, m.GivenName, m.Surname, m.IsOwner, m.InSchedule})
	}
	return w.writeTable(domain.MembersSheetName, domain.MembersTableName, domain.MembersHeader, rows)
}

// WriteScheduleGroups replaces the schedule membership table with one row
// per group member.
func (w *Workbook) WriteScheduleGroups(members *domain.MembersMap, groups *domain.ScheduleGroupNamesMap) error {
	scheduleRows := ScheduleRows(members, groups)
	rows := make([][]any, 0, len(scheduleRows))
	for _, r := range scheduleRows {
		rows = append(rows, []any{r.GroupName, r.UserPrincipalName, r.DisplayName, r.GivenName, r.Surname})
	}
	return w.writeTable(domain.ScheduleSheetName, domain.ScheduleTableName, domain.ScheduleHeader, rows)
}

// ReadScheduleRows returns the non-blank data rows of the schedule table.
func (w *Workbook) ReadScheduleRows() ([]domain.ScheduleRow, error) {
	sheet := domain.ScheduleSheetName
	if idx, err := w.file.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: sheet %q", domain.ErrTableNotFound, sheet)
	}

	table, err := w.findTable(sheet, domain.ScheduleTableName)
	if err != nil {
		return nil, err
	}

	x1, y1, _, y2, err := parseRange(table.Range)
	if err != nil {
		return nil, fmt.Errorf("table %s range %q: %w", table.Name, table.Range, err)
	}

	cells, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var rows []domain.ScheduleRow
	// y1 is the header row.
	for r := y1 + 1; r <= y2; r++ {
		var line []string
		if r-1 < len(cells) {
			line = cells[r-1]
		}
		cell := func(offset int) string {
			i := x1 - 1 + offset
			if i < len(line) {
				return strings.TrimSpace(line[i])
			}
			return ""
		}
		row := domain.ScheduleRow{
			Row:               r,
			GroupName:         cell(0),
			UserPrincipalName: cell(1),
			DisplayName:       cell(2),
			GivenName:         cell(3),
			Surname:           cell(4),
		}
		if row.IsBlank() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Save writes the workbook to its path.
func (w *Workbook) Save() error {
	if w.created {
		w.dropDefaultSheet()
	}
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("save %s: %w", w.path, err)
	}
	w.created = false
	return nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) findTable(sheet, name string) (*excelize.Table, error) {
	tables, err := w.file.GetTables(sheet)
	if err != nil {
		return nil, fmt.Errorf("list tables on %q: %w", sheet, err)
	}
	for i := range tables {
		if tables[i].Name == name {
			return &tables[i], nil
		}
	}
	return nil, fmt.Errorf("%w: table %q on sheet %q", domain.ErrTableNotFound, name, sheet)
}

// writeTable recreates sheet with a single table holding header and rows,
// sizes its columns and makes it the active sheet.
func (w *Workbook) writeTable(sheet, table string, header []string, rows [][]any) error {
	if err := w.recreateSheet(sheet); err != nil {
		return err
	}

	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := w.file.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return fmt.Errorf("write %s header: %w", table, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.file.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", table, i+2, err)
		}
	}

	// A table needs at least one body row; an empty table keeps one blank row.
	lastRow := len(rows) + 1
	if lastRow < 2 {
		lastRow = 2
	}
	ref, err := tableRange(len(header), lastRow)
	if err != nil {
		return err
	}
	if err := w.file.AddTable(sheet, &excelize.Table{
		Range:     ref,
		Name:      table,
		StyleName: TableStyle,
	}); err != nil {
		return fmt.Errorf("add table %s: %w", table, err)
	}

	if err := w.autofit(sheet, header, rows); err != nil {
		return err
	}

	idx, err := w.file.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	w.file.SetActiveSheet(idx)
	return nil
}

// recreateSheet replaces sheet with an empty one. Its tables are deleted
// first so their names can be reused.
func (w *Workbook) recreateSheet(sheet string) error {
	idx, err := w.file.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("look up sheet %q: %w", sheet, err)
	}
	if idx < 0 {
		if _, err := w.file.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %q: %w", sheet, err)
		}
		return nil
	}

	tables, err := w.file.GetTables(sheet)
	if err != nil {
		return fmt.Errorf("list tables on %q: %w", sheet, err)
	}
	for _, t := range tables {
		if err := w.file.DeleteTable(t.Name); err != nil {
			return fmt.Errorf("delete table %s: %w", t.Name, err)
		}
	}

	// A workbook must keep one sheet, so build the replacement before deleting.
	if _, err := w.file.NewSheet(scratchSheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", scratchSheet, err)
	}
	if err := w.file.DeleteSheet(sheet); err != nil {
		return fmt.Errorf("delete sheet %q: %w", sheet, err)
	}
	if err := w.file.SetSheetName(scratchSheet, sheet); err != nil {
		return fmt.Errorf("rename sheet %q: %w", scratchSheet, err)
	}
	return nil
}

func (w *Workbook) autofit(sheet string, header []string, rows [][]any) error {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, v := range row {
			if i >= len(widths) {
				break
			}
			if n := utf8.RuneCountInString(fmt.Sprint(v)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for i, n := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := min(max(n+2, minColumnWidth), maxColumnWidth)
		if err := w.file.SetColWidth(sheet, col, col, float64(width)); err != nil {
			return fmt.Errorf("set width of column %s: %w", col, err)
		}
	}
	return nil
}

// dropDefaultSheet removes the blank sheet a new workbook starts with once
// shiftsheet has added its own.
func (w *Workbook) dropDefaultSheet() {
	if len(w.file.GetSheetList()) < 2 {
		return
	}
	if idx, err := w.file.GetSheetIndex(defaultSheet); err != nil || idx < 0 {
		return
	}
	rows, err := w.file.GetRows(defaultSheet)
	if err != nil || len(rows) > 0 {
		return
	}
	active := w.file.GetSheetName(w.file.GetActiveSheetIndex())
	if err := w.file.DeleteSheet(defaultSheet); err != nil {
		logger.Debug("workbook: keep %s: %v", defaultSheet, err)
		return
	}
	if idx, err := w.file.GetSheetIndex(active); err == nil && idx >= 0 {
		w.file.SetActiveSheet(idx)
	}
}

// MemberRows builds the team members table body in member map order.
func MemberRows(members *domain.MembersMap, groups *domain.ScheduleGroupNamesMap) []domain.MemberRow {
	rows := make([]domain.MemberRow, 0, members.Len())
	for _, m := range members.Values() {
		rows = append(rows, domain.MemberRow{
			UserPrincipalName: m.UserPrincipalName,
			DisplayName:       m.DisplayName,
			GivenName:         m.GivenName,
			Surname:           m.Surname,
			IsOwner:           m.IsOwner,
			InSchedule:        groups.ContainsUser(m.ID),
		})
	}
	return rows
}

// ScheduleRows builds the schedule table body: one row per (group, member)
// in group order then group member order. Member IDs that are no longer in
// the team are skipped.
func ScheduleRows(members *domain.MembersMap, groups *domain.ScheduleGroupNamesMap) []domain.ScheduleRow {
	var rows []domain.ScheduleRow
	for _, g := range groups.Values() {
		for _, id := range g.UserIDs {
			m, ok := members.Get(id)
			if !ok {
				logger.Warn("schedule group %q lists user %s who is not a team member; not exported", g.DisplayName, id)
				continue
			}
			rows = append(rows, domain.ScheduleRow{
				Row:               len(rows) + 2,
				GroupName:         g.DisplayName,
				UserPrincipalName: m.UserPrincipalName,
				DisplayName:       m.DisplayName,
				GivenName:         m.GivenName,
				Surname:           m.Surname,
			})
		}
	}
	return rows
}

func tableRange(columns, lastRow int) (string, error) {
	end, err := excelize.CoordinatesToCellName(columns, lastRow)
	if err != nil {
		return "", err
	}
	return "A1:" + end, nil
}

// parseRange splits a reference such as "A1:E12" into coordinates.
func parseRange(ref string) (x1, y1, x2, y2 int, err error) {
	parts := strings.Split(strings.ReplaceAll(ref, "$", ""), ":")
	if len(parts) != 2 {
		return 0, 0, 0, 0, fmt.Errorf("%w: range %q", domain.ErrInvalidInput, ref)
	}
	if x1, y1, err = excelize.CellNameToCoordinates(parts[0]); err != nil {
		return 0, 0, 0, 0, err
	}
	if x2, y2, err = excelize.CellNameToCoordinates(parts[1]); err != nil {
		return 0, 0, 0, 0, err
	}
	return x1, y1, x2, y2, nil
}
