package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/shiftsheet/internal/adapters/driving/tui"
)

// isTerminal reports whether stdin and stdout are attached to a terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// runTUI starts the interactive UI. Replaced in tests.
var runTUI = tui.Run

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal UI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireGraph(); err != nil {
			return err
		}
		if !isTerminal() {
			return errors.New("the interactive UI needs a terminal; use the login, teams, export and sync commands instead")
		}
		return runTUI(cmd.Context(), tui.Options{
			Auth:         authService,
			Sync:         syncService,
			Session:      sessionView,
			WorkbookPath: defaultBook,
		})
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
