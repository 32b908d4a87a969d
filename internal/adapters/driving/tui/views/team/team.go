// Package team runs export and sync for the selected team.
package team

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/shiftsheet/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/shiftsheet/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driving"
)

// View shows one team and its actions.
type View struct {
	ctx          context.Context
	styles       *styles.Styles
	sync         driving.SyncService
	workbookPath string
	spinner      spinner.Model

	team     *domain.Team
	busy     string
	status   string
	report   *domain.SyncReport
	exported bool

	width  int
	height int
	ready  bool
}

// NewView creates the team screen for the given workbook.
func NewView(ctx context.Context, s *styles.Styles, sync driving.SyncService, workbookPath string) *View {
	if ctx == nil {
		ctx = context.Background()
	}
	return &View{
		ctx:          ctx,
		styles:       s,
		sync:         sync,
		workbookPath: workbookPath,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// SetTeam switches the screen to a team and clears earlier results.
func (v *View) SetTeam(t domain.Team) {
	v.team = &t
	v.status = ""
	v.report = nil
	v.exported = false
}

// Team returns the selected team.
func (v *View) Team() *domain.Team {
	return v.team
}

// Busy reports whether an operation is running.
func (v *View) Busy() bool {
	return v.busy != ""
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (v *View) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
		v.ready = true
		return v, nil

	case messages.TeamSelected:
		v.SetTeam(msg.Team)
		return v, nil

	case spinner.TickMsg:
		if v.busy == "" {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.ExportCompleted:
		v.busy = ""
		if msg.Err != nil {
			return v, errorCmd(msg.Err)
		}
		v.exported = true
		v.status = fmt.Sprintf("Exported members and schedule groups to %s", msg.Path)
		return v, nil

	case messages.SyncCompleted:
		v.busy = ""
		v.report = msg.Report
		if msg.Err != nil {
			return v, errorCmd(msg.Err)
		}
		v.status = summary(msg.Report)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.busy != "" {
		return v, nil
	}
	switch msg.String() {
	case "esc", "backspace":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewTeams} }
	case "e":
		return v.start("Exporting", v.export())
	case "s":
		return v.start("Syncing", v.runSync(false))
	case "d":
		return v.start("Planning", v.runSync(true))
	}
	return v, nil
}

func (v *View) start(label string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if cmd == nil {
		return v, nil
	}
	v.busy = label
	v.status = ""
	return v, tea.Batch(v.spinner.Tick, cmd)
}

func (v *View) export() tea.Cmd {
	if v.team == nil || v.sync == nil {
		return nil
	}
	ctx, sync, teamID, path := v.ctx, v.sync, v.team.ID, v.workbookPath
	return func() tea.Msg {
		return messages.ExportCompleted{Path: path, Err: sync.Export(ctx, teamID, path)}
	}
}

func (v *View) runSync(dryRun bool) tea.Cmd {
	if v.team == nil || v.sync == nil {
		return nil
	}
	ctx, sync, teamID := v.ctx, v.sync, v.team.ID
	opts := driving.SyncOptions{WorkbookPath: v.workbookPath, DryRun: dryRun}
	return func() tea.Msg {
		report, err := sync.Sync(ctx, teamID, opts)
		return messages.SyncCompleted{Report: report, Err: err}
	}
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg { return messages.ErrorOccurred{Err: err} }
}

func summary(r *domain.SyncReport) string {
	if r == nil {
		return ""
	}
	created, updated := r.Counts()
	prefix := "Synced"
	if r.DryRun {
		prefix = "Dry run"
	}
	if len(r.Operations) == 0 && len(r.Skipped) == 0 {
		return prefix + ": schedule groups are up to date"
	}
	return fmt.Sprintf("%s: %d created, %d updated, %d skipped, %d failed",
		prefix, created, updated, len(r.Skipped), len(r.Failed))
}

// View implements tea.Model.
func (v *View) View() string {
	if v.team == nil {
		return "No team selected.\n\nesc back"
	}
	render := func(st func(*styles.Styles) string, s string) string {
		if v.styles == nil {
			return s
		}
		return st(v.styles)
	}

	var b strings.Builder
	b.WriteString(render(func(s *styles.Styles) string { return s.Title.Render(v.team.DisplayName) }, v.team.DisplayName))
	b.WriteString("\n")
	b.WriteString(render(func(s *styles.Styles) string { return s.Muted.Render(v.team.ID) }, v.team.ID))
	b.WriteString("\n\nWorkbook: " + v.workbookPath + "\n\n")

	switch {
	case v.busy != "":
		b.WriteString(v.spinner.View() + " " + v.busy + "...")
	case v.status != "":
		b.WriteString(render(func(s *styles.Styles) string { return s.Success.Render(v.status) }, v.status))
	}

	if v.exported && v.report == nil && v.busy == "" {
		b.WriteString("\n\nEdit the " + domain.ScheduleSheetName + " sheet, save it, then press s to sync.")
	}

	if v.report != nil && v.busy == "" {
		for _, op := range v.report.Operations {
			fmt.Fprintf(&b, "\n  %s %s (%d members)", op.Kind, op.Group.DisplayName, len(op.Group.UserIDs))
		}
		for _, s := range v.report.Skipped {
			fmt.Fprintf(&b, "\n  skipped row %d: %s (%s)", s.Row, s.UserPrincipalName, s.Reason)
		}
		for _, f := range v.report.Failed {
			fmt.Fprintf(&b, "\n  failed %s: %s", f.Operation.Group.DisplayName, f.Err)
		}
	}

	help := "e export • s sync • d dry run • esc back"
	b.WriteString("\n")
	b.WriteString(render(func(s *styles.Styles) string { return s.Help.Render(help) }, "\n"+help))
	return b.String()
}
