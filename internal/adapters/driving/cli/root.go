package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driving"
	"github.com/custodia-labs/shiftsheet/internal/logger"
)

var (
	// Version is set by goreleaser ldflags.
	version = "dev"

	// Verbose enables debug logging.
	verbose bool

	// configPath overrides the configuration file location.
	configPath string

	// Services holds injected service implementations for CLI commands.
	authService    driving.AuthService
	syncService    driving.SyncService
	configService  driving.ConfigService
	sessionView    driving.SessionView
	defaultBook    string
	setupErr       error
	bootstrap      Bootstrap
	releaseBackend func()
)

// Services holds configuration for CLI commands.
type Services struct {
	Auth    driving.AuthService
	Sync    driving.SyncService
	Config  driving.ConfigService
	Session driving.SessionView

	// WorkbookPath is used when --workbook is not given.
	WorkbookPath string
	// SetupErr is reported by commands that need Graph when the
	// configuration cannot sign in yet.
	SetupErr error
	// Close releases stores opened for the services.
	Close func()
}

// Bootstrap builds the services once flags are parsed.
type Bootstrap func(ctx context.Context, configPath string) (*Services, error)

// SetBootstrap registers the function that builds services for a command.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects service implementations for CLI commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	authService = s.Auth
	syncService = s.Sync
	configService = s.Config
	sessionView = s.Session
	defaultBook = s.WorkbookPath
	setupErr = s.SetupErr
	releaseBackend = s.Close
}

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "shiftsheet",
	Short: "Edit Microsoft Teams schedule groups in a spreadsheet",
	Long: `Shiftsheet exports a team's members and Shifts schedule groups to an Excel
workbook and syncs edits to the schedule table back to Microsoft Teams.

Sign in with 'shiftsheet login', then run 'shiftsheet teams' to pick a team.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with a cancellable context.
func ExecuteContext(ctx context.Context) error {
	defer closeBackend()
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.shiftsheet/config.toml)")

	// Use PersistentPreRunE to set verbose mode before any command executes
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if bootstrap == nil || cmd.Annotations[annotationNoServices] != "" {
			return nil
		}
		s, err := bootstrap(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		SetServices(s)
		return nil
	}
}

// annotationNoServices marks commands that run without the backend.
const annotationNoServices = "no-services"

func closeBackend() {
	if releaseBackend != nil {
		releaseBackend()
		releaseBackend = nil
	}
}

// requireGraph reports why Graph commands cannot run yet.
func requireGraph() error {
	if authService == nil || syncService == nil {
		return errors.New("services not initialised")
	}
	if setupErr != nil {
		return fmt.Errorf("%w\nrun 'shiftsheet config set auth.client_id <app id>' to configure sign-in", setupErr)
	}
	return nil
}

// signedIn restores a cached session and fails with a login hint otherwise.
func signedIn(ctx context.Context) error {
	if err := requireGraph(); err != nil {
		return err
	}
	if !authService.RestoreSession(ctx) {
		return fmt.Errorf("%w: run 'shiftsheet login' first", domain.ErrAuthRequired)
	}
	return nil
}

// workbookPath returns the --workbook flag or the configured default.
func workbookPath(flag string) string {
	if flag != "" {
		return flag
	}
	return defaultBook
}
