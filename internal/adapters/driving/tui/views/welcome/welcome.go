// Package welcome is the sign-in screen.
package welcome

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/shiftsheet/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/shiftsheet/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driving"
)

// View is the sign-in screen.
type View struct {
	ctx     context.Context
	styles  *styles.Styles
	auth    driving.AuthService
	spinner spinner.Model

	busy   bool
	cancel context.CancelFunc

	width  int
	height int
	ready  bool
}

// NewView creates the sign-in screen.
func NewView(ctx context.Context, s *styles.Styles, auth driving.AuthService) *View {
	if ctx == nil {
		ctx = context.Background()
	}
	return &View{
		ctx:     ctx,
		styles:  s,
		auth:    auth,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd {
	return nil
}

// Busy reports whether a sign-in is running.
func (v *View) Busy() bool {
	return v.busy
}

// Update implements tea.Model.
func (v *View) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
		v.ready = true
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.LoginCompleted:
		v.busy = false
		v.cancel = nil
		if msg.Err != nil {
			if errors.Is(msg.Err, domain.ErrDialogClosed) {
				return v, nil
			}
			return v, errorCmd(msg.Err)
		}
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewTeams} }
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "l":
		if v.busy {
			return v, nil
		}
		if v.auth == nil {
			return v, errorCmd(errors.New("sign-in is not available"))
		}
		ctx, cancel := context.WithCancel(v.ctx)
		v.busy = true
		v.cancel = cancel
		return v, tea.Batch(v.spinner.Tick, login(ctx, cancel, v.auth))
	case "esc":
		// Closing the browser dialog from here reverts silently.
		if v.busy && v.cancel != nil {
			v.cancel()
		}
	}
	return v, nil
}

func login(ctx context.Context, cancel context.CancelFunc, auth driving.AuthService) tea.Cmd {
	return func() tea.Msg {
		defer cancel()
		account, err := auth.Login(ctx)
		return messages.LoginCompleted{Account: account, Err: err}
	}
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg { return messages.ErrorOccurred{Err: err} }
}

// View implements tea.Model.
func (v *View) View() string {
	var b strings.Builder
	title, muted := "Shiftsheet", ""
	if v.styles != nil {
		title = v.styles.Title.Render(title)
	}
	b.WriteString(title + "\n\n")
	b.WriteString("Edit Microsoft Teams schedule groups in a spreadsheet.\n\n")

	if v.busy {
		b.WriteString(v.spinner.View() + " Waiting for sign-in in your browser...")
		muted = "esc cancel"
	} else {
		b.WriteString("Press enter to sign in with your Microsoft 365 account.")
		muted = "enter sign in • ctrl+c quit"
	}
	if v.styles != nil {
		muted = v.styles.Help.Render(muted)
	} else {
		muted = "\n" + muted
	}
	b.WriteString("\n" + muted)
	return b.String()
}
