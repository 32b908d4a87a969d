package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if syncService == nil {
			return errors.New("services not initialised")
		}
		runs, err := syncService.History(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			cmd.Println("No sync runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tTEAM\tCREATED\tUPDATED\tSKIPPED\tFAILED\tNOTE")
		for _, r := range runs {
			note := r.Error
			if r.DryRun {
				note = "dry run " + note
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
				r.StartedAt.Local().Format(time.DateTime), r.TeamID,
				r.Created, r.Updated, r.Skipped, r.Failed, note)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
