package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fondo-app/fondo/internal/activity"
	"github.com/fondo-app/fondo/internal/cli"
)

func newActivityCommand(a *app) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the most recent changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := activity.Tail(a.path(a.cfg.Storage.ActivityLog), n)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, cli.Muted("No activity yet."))
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.Timestamp.Local().Format("2006-01-02 15:04"),
					e.Action,
					e.Amount,
					e.Balance,
					e.Details,
				})
			}
			fmt.Fprintln(out, cli.RenderTable(cli.Table{
				Title:   "Activity",
				Headers: []string{"When", "Action", "Amount", "Balance", "Details"},
				Rows:    rows,
			}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "lines", "n", 20, "number of entries")
	return cmd
}
