package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driving"
	"github.com/custodia-labs/shiftsheet/internal/logger"
)

// watchDebounce groups the burst of events a spreadsheet save produces.
const watchDebounce = 750 * time.Millisecond

var (
	syncWorkbook string
	syncDryRun   bool
	syncWatch    bool
	syncStrict   bool
)

var syncCmd = &cobra.Command{
	Use:   "sync TEAM_ID",
	Short: "Push schedule table edits to Microsoft Teams",
	Long: `Read the Schedule Membership table of the workbook and create or update
the team's schedule groups to match. Rows are only ever added to groups:
removing a row does not remove the user from the group.

With --watch the sync runs again each time the workbook is saved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := signedIn(ctx); err != nil {
			return err
		}

		teamID := args[0]
		opts := driving.SyncOptions{
			WorkbookPath: workbookPath(syncWorkbook),
			DryRun:       syncDryRun,
		}
		if syncStrict {
			opts.UnknownUserPolicy = domain.UnknownUserFail
		}

		if !syncWatch {
			return runSync(ctx, cmd.OutOrStdout(), teamID, opts)
		}

		cmd.Printf("Watching %s (Ctrl-C to stop)\n", opts.WorkbookPath)
		if err := runSync(ctx, cmd.OutOrStdout(), teamID, opts); err != nil {
			logger.Error("%v", err)
		}
		err := watchFile(ctx, opts.WorkbookPath, watchDebounce, func() {
			if err := runSync(ctx, cmd.OutOrStdout(), teamID, opts); err != nil {
				logger.Error("%v", err)
			}
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func runSync(ctx context.Context, out io.Writer, teamID string, opts driving.SyncOptions) error {
	report, err := syncService.Sync(ctx, teamID, opts)
	if report != nil {
		printReport(out, report)
	}
	return err
}

func printReport(out io.Writer, r *domain.SyncReport) {
	created, updated := r.Counts()
	prefix := ""
	if r.DryRun {
		prefix = "[dry run] "
	}

	if len(r.Operations) == 0 && len(r.Skipped) == 0 && r.Error == "" {
		fmt.Fprintf(out, "%sSchedule groups are up to date.\n", prefix)
		return
	}

	for _, op := range r.Operations {
		fmt.Fprintf(out, "%s%s %q (%d members)\n", prefix, op.Kind, op.Group.DisplayName, len(op.Group.UserIDs))
	}
	for _, s := range r.Skipped {
		fmt.Fprintf(out, "  skipped row %d: %s (%s)\n", s.Row, s.UserPrincipalName, s.Reason)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(out, "  failed %s %q: %s\n", f.Operation.Kind, f.Operation.Group.DisplayName, f.Err)
	}
	fmt.Fprintf(out, "%s%d created, %d updated, %d skipped, %d failed\n",
		prefix, created, updated, len(r.Skipped), len(r.Failed))
}

func init() {
	syncCmd.Flags().StringVar(&syncWorkbook, "workbook", "", "workbook path (default from config)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "show the changes without pushing them")
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "sync again whenever the workbook changes")
	syncCmd.Flags().BoolVar(&syncStrict, "strict", false, "fail when a row names a user who is not a team member")
	rootCmd.AddCommand(syncCmd)
}
