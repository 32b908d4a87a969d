// Package tui is the interactive terminal front end. It drives the same
// services as the CLI and renders the session header and error banner.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/shiftsheet/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/shiftsheet/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/shiftsheet/internal/adapters/driving/tui/views/team"
	"github.com/custodia-labs/shiftsheet/internal/adapters/driving/tui/views/teams"
	"github.com/custodia-labs/shiftsheet/internal/adapters/driving/tui/views/welcome"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driving"
)

// Options wires the app to the services.
type Options struct {
	Auth         driving.AuthService
	Sync         driving.SyncService
	Session      driving.SessionView
	WorkbookPath string
}

// App is the root bubbletea model.
type App struct {
	ctx     context.Context
	styles  *styles.Styles
	auth    driving.AuthService
	session driving.SessionView

	current messages.ViewType
	welcome *welcome.View
	teams   *teams.View
	team    *team.View

	// err is shown when the session has no message of its own.
	err error

	width  int
	height int
}

// New creates the app.
func New(ctx context.Context, opts Options) *App {
	if ctx == nil {
		ctx = context.Background()
	}
	s := styles.DefaultStyles()
	return &App{
		ctx:     ctx,
		styles:  s,
		auth:    opts.Auth,
		session: opts.Session,
		current: messages.ViewWelcome,
		welcome: welcome.NewView(ctx, s, opts.Auth),
		teams:   teams.NewView(ctx, s, opts.Sync, opts.Auth),
		team:    team.NewView(ctx, s, opts.Sync, opts.WorkbookPath),
	}
}

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Current returns the active screen.
func (a *App) Current() messages.ViewType {
	return a.current
}

// Init restores a cached session and opens the first screen.
func (a *App) Init() tea.Cmd {
	if a.auth != nil && a.auth.RestoreSession(a.ctx) {
		a.current = messages.ViewTeams
		return a.teams.Init()
	}
	return a.welcome.Init()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.errorMessage() != "" {
			a.dismiss()
			return a, nil
		}

	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-4, 1)}
		a.welcome.Update(inner)
		a.teams.Update(inner)
		a.team.Update(inner)
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.TeamSelected:
		if a.session != nil {
			a.session.SelectTeam(msg.Team.ID)
		}
		_, cmd := a.team.Update(msg)
		return a, cmd

	case messages.LoginCompleted:
		_, cmd := a.welcome.Update(msg)
		return a, cmd

	case messages.ExportCompleted, messages.SyncCompleted:
		_, cmd := a.team.Update(msg)
		return a, cmd

	case spinner.TickMsg:
		// Ticks carry the spinner ID, so each view ignores the others'.
		_, c1 := a.welcome.Update(msg)
		_, c2 := a.teams.Update(msg)
		_, c3 := a.team.Update(msg)
		return a, tea.Batch(c1, c2, c3)
	}

	var cmd tea.Cmd
	switch a.current {
	case messages.ViewWelcome:
		_, cmd = a.welcome.Update(msg)
	case messages.ViewTeams:
		_, cmd = a.teams.Update(msg)
	case messages.ViewTeam:
		_, cmd = a.team.Update(msg)
	}
	return a, cmd
}

func (a *App) switchTo(v messages.ViewType) tea.Cmd {
	prev := a.current
	a.current = v
	if v == messages.ViewTeams && prev == messages.ViewWelcome {
		return a.teams.Init()
	}
	return nil
}

func (a *App) errorMessage() string {
	if a.session != nil {
		if msg := a.session.State().ErrorMessage; msg != "" {
			return msg
		}
	}
	if a.err != nil {
		return a.err.Error()
	}
	return ""
}

func (a *App) dismiss() {
	if a.session != nil {
		a.session.DismissError()
	}
	a.err = nil
}

func (a *App) header() string {
	if a.session == nil {
		return "Shiftsheet"
	}
	return a.session.State().Header
}

// View implements tea.Model.
func (a *App) View() string {
	var body string
	switch a.current {
	case messages.ViewWelcome:
		body = a.welcome.View()
	case messages.ViewTeams:
		body = a.teams.View()
	case messages.ViewTeam:
		body = a.team.View()
	}

	var b strings.Builder
	b.WriteString(a.styles.Header.Render(a.header()))
	b.WriteString("\n\n")
	if msg := a.errorMessage(); msg != "" {
		banner := a.styles.Error.Render(msg) + "\n" + a.styles.Muted.Render("press any key to dismiss")
		b.WriteString(a.styles.Box.Render(banner))
		b.WriteString("\n\n")
	}
	b.WriteString(body)
	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}
