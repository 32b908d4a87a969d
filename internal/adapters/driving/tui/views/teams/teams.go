// Package teams lists the joined teams and lets the user pick one.
package teams

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/shiftsheet/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/shiftsheet/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driving"
)

// teamsLoaded carries the result of listing teams.
type teamsLoaded struct {
	teams []domain.Team
	err   error
}

// item adapts a team to the list.
type item struct {
	team domain.Team
}

func (i item) Title() string       { return i.team.DisplayName }
func (i item) Description() string { return i.team.Description }
func (i item) FilterValue() string { return i.team.DisplayName }

// View is the team picker.
type View struct {
	ctx     context.Context
	styles  *styles.Styles
	sync    driving.SyncService
	auth    driving.AuthService
	list    list.Model
	spinner spinner.Model

	teams   []domain.Team
	loading bool

	width  int
	height int
	ready  bool
}

// NewView creates the team picker.
func NewView(ctx context.Context, s *styles.Styles, sync driving.SyncService, auth driving.AuthService) *View {
	if ctx == nil {
		ctx = context.Background()
	}
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Joined teams"
	l.SetShowHelp(true)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
			key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
			key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sign out")),
		}
	}
	if s != nil {
		l.Styles.Title = s.Header
	}
	return &View{
		ctx:     ctx,
		styles:  s,
		sync:    sync,
		auth:    auth,
		list:    l,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init loads the teams.
func (v *View) Init() tea.Cmd {
	if v.sync == nil {
		return func() tea.Msg {
			return messages.ErrorOccurred{Err: errors.New("sync service not available")}
		}
	}
	v.loading = true
	return tea.Batch(v.spinner.Tick, v.load())
}

func (v *View) load() tea.Cmd {
	ctx, sync := v.ctx, v.sync
	return func() tea.Msg {
		teams, err := sync.ListTeams(ctx)
		return teamsLoaded{teams: teams, err: err}
	}
}

// Update implements tea.Model.
func (v *View) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
		v.ready = true
		v.list.SetSize(msg.Width, max(msg.Height-4, 5))
		return v, nil

	case spinner.TickMsg:
		if !v.loading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case teamsLoaded:
		v.loading = false
		if msg.err != nil {
			return v, func() tea.Msg { return messages.ErrorOccurred{Err: msg.err} }
		}
		v.teams = msg.teams
		items := make([]list.Item, len(msg.teams))
		for i, t := range msg.teams {
			items[i] = item{team: t}
		}
		return v, v.list.SetItems(items)

	case messages.LoggedOut:
		if msg.Err != nil {
			return v, func() tea.Msg { return messages.ErrorOccurred{Err: msg.Err} }
		}
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewWelcome} }

	case tea.KeyMsg:
		if v.list.FilterState() != list.Filtering {
			if cmd, ok := v.handleKey(msg); ok {
				return v, cmd
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "enter":
		selected, ok := v.list.SelectedItem().(item)
		if !ok {
			return nil, true
		}
		team := selected.team
		return tea.Sequence(
			func() tea.Msg { return messages.TeamSelected{Team: team} },
			func() tea.Msg { return messages.ViewChanged{View: messages.ViewTeam} },
		), true
	case "r":
		if v.loading || v.sync == nil {
			return nil, true
		}
		v.loading = true
		return tea.Batch(v.spinner.Tick, v.load()), true
	case "o":
		if v.auth == nil {
			return nil, true
		}
		ctx, auth := v.ctx, v.auth
		return func() tea.Msg {
			return messages.LoggedOut{Err: auth.Logout(ctx)}
		}, true
	}
	return nil, false
}

// View implements tea.Model.
func (v *View) View() string {
	if v.loading {
		return v.spinner.View() + " Loading your teams..."
	}
	if len(v.teams) == 0 {
		s := "You have not joined any teams.\n\nr refresh • o sign out"
		if v.styles != nil {
			return v.styles.Muted.Render(s)
		}
		return s
	}
	return v.list.View()
}
