package cli

import (
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
)

var teamsWorkbook string

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List your joined teams",
	Long: `List the teams you have joined. With --workbook the list is also
written to the Joined Teams sheet.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := signedIn(ctx); err != nil {
			return err
		}

		var (
			teams []domain.Team
			err   error
		)
		if teamsWorkbook != "" {
			teams, err = syncService.WriteTeams(ctx, teamsWorkbook)
		} else {
			teams, err = syncService.ListTeams(ctx)
		}
		if err != nil {
			return err
		}

		if len(teams) == 0 {
			cmd.Println("You have not joined any teams.")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		_, _ = w.Write([]byte("ID\tNAME\n"))
		for _, t := range teams {
			_, _ = w.Write([]byte(t.ID + "\t" + t.DisplayName + "\n"))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if teamsWorkbook != "" {
			cmd.Printf("\nWrote %d teams to %s\n", len(teams), teamsWorkbook)
		}
		return nil
	},
}

var exportWorkbook string

var exportCmd = &cobra.Command{
	Use:   "export TEAM_ID",
	Short: "Write a team's members and schedule groups to the workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := signedIn(ctx); err != nil {
			return err
		}
		path := workbookPath(exportWorkbook)
		if err := syncService.Export(ctx, args[0], path); err != nil {
			return err
		}
		cmd.Printf("Exported team %s to %s\n", args[0], path)
		return nil
	},
}

func init() {
	teamsCmd.Flags().StringVar(&teamsWorkbook, "workbook", "", "also write the list to this workbook")
	exportCmd.Flags().StringVar(&exportWorkbook, "workbook", "", "workbook path (default from config)")
	rootCmd.AddCommand(teamsCmd, exportCmd)
}
