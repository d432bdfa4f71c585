package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fondo-app/fondo/internal/analysis"
	"github.com/fondo-app/fondo/internal/cli"
	"github.com/fondo-app/fondo/internal/config"
	"github.com/fondo-app/fondo/internal/model"
	"github.com/fondo-app/fondo/internal/month"
)

func newAnalyzeCommand(a *app) *cobra.Command {
	var monthFlag string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare the month's spending with the recommended distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.month(monthFlag)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			obs, err := st.LoadObligations(ctx)
			if err != nil {
				return err
			}
			txns, err := st.LoadTransactions(ctx)
			if err != nil {
				return err
			}

			opts := a.cfg.AnalysisOptions()
			if now := a.now(); month.Of(now) == m {
				opts.Day, opts.DaysInMonth = now.Day(), m.Days()
			}
			income := analysis.MonthlyIncome(a.cfg.Budget.BaseIncome, txns, m)
			res, err := analysis.Analyze(a.classifier, income, analysis.Items(obs, txns, m), opts)
			if err != nil {
				return fmt.Errorf("analyzing %s (set budget.base_income in %s or record income): %w", m, config.FileName, err)
			}

			a.log.WithField("month", m.String()).Debug("analysis complete")
			renderAnalysis(cmd.OutOrStdout(), m, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&monthFlag, "month", "", "month to analyze (YYYY-MM, default current)")
	return cmd
}

func renderAnalysis(out io.Writer, m month.Month, res analysis.Result) {
	fmt.Fprintln(out, cli.RenderTitle("Distribution "+m.String()))

	row := func(name string, class model.Classification, b analysis.Bucket) []string {
		c := res.Comparison[class]
		return []string{name, cli.FormatMoney(b.Total), cli.FormatPercent(b.Percent), cli.FormatPercent(c.Recommended), cli.FormatSignedPercent(c.Deviation)}
	}
	rows := [][]string{
		row("Needs", model.Needs, res.Needs),
		row("Wants", model.Wants, res.Wants),
		row("Debt", model.Debt, res.Debt),
		row("Savings", model.Savings, res.Savings),
	}
	if res.Unclassified.Total.IsPositive() {
		rows = append(rows, []string{"Unclassified", cli.FormatMoney(res.Unclassified.Total), cli.FormatPercent(res.Unclassified.Percent), "", ""})
	}
	rows = append(rows, []string{"---"}, []string{"Income", cli.FormatMoney(res.Income), "", "", ""})
	fmt.Fprintln(out, cli.RenderTable(cli.Table{
		Headers: []string{"Bucket", "Amount", "Real", "Target", "Deviation"},
		Rows:    rows,
	}))

	fmt.Fprintf(out, "Available now: %s   Spendable (after 10%% savings): %s\n", cli.Money(res.AvailableNow), cli.Money(res.SpendableNow))
	ov := res.Overspend
	fmt.Fprintln(out, cli.Level(string(ov.Alert), fmt.Sprintf("Spent %s of income (%s).", cli.FormatPercent(ov.PercentOfIncome), cli.FormatMoney(ov.TotalSpent))))
	if ov.Overspent {
		fmt.Fprintln(out, cli.Level("critical", fmt.Sprintf("Overspent by %s.", cli.FormatMoney(ov.Remaining.Neg()))))
	}
	if p := res.Projection; p != nil {
		fmt.Fprintf(out, "At %s/day the month ends near %s (%d days left).\n", cli.FormatMoney(p.DailyAverage), cli.FormatMoney(p.ProjectedTotal), p.DaysLeft)
	}

	fmt.Fprintln(out)
	for _, s := range res.Suggestions {
		fmt.Fprintf(out, "%s %s\n  %s\n", cli.Level(string(s.Level), "●"), s.Message, cli.Muted(s.Action))
	}
}
