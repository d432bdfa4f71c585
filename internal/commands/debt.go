package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fondo-app/fondo/internal/cli"
	"github.com/fondo-app/fondo/internal/debt"
)

func newDebtCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debt",
		Short: "Plan debt payoff",
	}
	cmd.AddCommand(newDebtPlanCommand(a))
	return cmd
}

func newDebtPlanCommand(a *app) *cobra.Command {
	var strategyFlag, extraFlag string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Project payoff under snowball or avalanche, with optional extra payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strategyFlag == "" {
				strategyFlag = a.cfg.Debt.Strategy
			}
			strategy, err := debt.ParseStrategy(strategyFlag)
			if err != nil {
				return err
			}
			extra, err := parseAmount(extraFlag)
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
			plan, err := debt.Project(debt.Candidates(obs, a.classifier), strategy, extra)
			if err != nil {
				return err
			}

			a.log.WithFields(logrus.Fields{"strategy": plan.Strategy, "status": plan.Status, "months": plan.TotalMonths}).Debug("debt plan projected")
			renderPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}

	cmd.Flags().StringVarP(&strategyFlag, "strategy", "s", "", "snowball or avalanche (default from config)")
	cmd.Flags().StringVar(&extraFlag, "extra", "0", "extra monthly payment")
	return cmd
}

func renderPlan(out io.Writer, plan debt.Plan) {
	if plan.Status == debt.StatusNoDebts {
		fmt.Fprintln(out, cli.Level("success", "No active debts with installments left."))
		return
	}

	fmt.Fprintln(out, cli.RenderTitle(fmt.Sprintf("Debt plan (%s)", plan.Strategy)))

	rows := make([][]string, 0, len(plan.Payoffs))
	for _, p := range plan.Payoffs {
		months := strconv.Itoa(p.Months)
		if !p.PaidOff {
			months = cli.Level("critical", "never")
		}
		rows = append(rows, []string{strconv.Itoa(p.Position), p.Name, cli.FormatMoney(p.Balance), months})
	}
	fmt.Fprintln(out, cli.RenderTable(cli.Table{
		Headers: []string{"#", "Debt", "Balance", "Months"},
		Rows:    rows,
	}))

	if len(plan.Releases) > 0 {
		rows = rows[:0]
		for _, r := range plan.Releases {
			rows = append(rows, []string{"Month " + strconv.Itoa(r.Month), r.Name, cli.FormatMoney(r.Freed)})
		}
		fmt.Fprintln(out, cli.RenderTable(cli.Table{
			Title:   "Freed payments",
			Headers: []string{"When", "Debt", "Per month"},
			Rows:    rows,
		}))
	}

	if plan.Status == debt.StatusDiverged {
		fmt.Fprintln(out, cli.Level("critical", fmt.Sprintf("Not paid off within %d months.", debt.MaxMonths)))
		return
	}
	fmt.Fprintf(out, "Debt free in %d months.\n", plan.TotalMonths)
	if c := plan.Comparison; c != nil {
		fmt.Fprintln(out, cli.Level("success", fmt.Sprintf("Paying %s extra saves %d months (baseline %d) and %s in interest.",
			cli.FormatMoney(plan.Extra), c.MonthsSaved, c.BaselineMonths, cli.FormatMoney(c.InterestSaved))))
	}
}
