package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fondo-app/fondo/internal/cli"
	"github.com/fondo-app/fondo/internal/id"
	"github.com/fondo-app/fondo/internal/model"
)

func newObligationCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "obligation",
		Aliases: []string{"fixed"},
		Short:   "Manage fixed recurring expenses and installment debts",
	}
	cmd.AddCommand(
		newObligationAddCommand(a),
		newObligationListCommand(a),
		newObligationStatusCommand(a),
	)
	return cmd
}

func newObligationAddCommand(a *app) *cobra.Command {
	var (
		day          int
		kind         string
		category     string
		installments int
		total        int
		rate         string
	)

	cmd := &cobra.Command{
		Use:   "add <name> <amount>",
		Short: "Add a recurring obligation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			o := model.RecurringObligation{
				ID:         id.New(id.PrefixObligation),
				Name:       args[0],
				Amount:     amount,
				DayOfMonth: day,
				Kind:       model.ObligationKind(kind),
				Status:     model.StatusActive,
				Category:   category,
			}
			flags := cmd.Flags()
			if flags.Changed("installments") {
				o.InstallmentsRemaining = &installments
			}
			if flags.Changed("total") {
				o.InstallmentsTotal = &total
			}
			if flags.Changed("rate") {
				r, err := parseAmount(rate)
				if err != nil {
					return err
				}
				o.InterestRatePct = &r
			}
			if verrs := o.Validate(); len(verrs) > 0 {
				errs := make([]error, len(verrs))
				for i, e := range verrs {
					errs[i] = e
				}
				return fmt.Errorf("invalid obligation: %w", errors.Join(errs...))
			}

			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.StoreObligation(ctx, o); err != nil {
				return err
			}
			fund, err := st.LoadFundState(ctx)
			if err != nil {
				return err
			}

			a.record("obligation_add", o.ID, &amount, fund.Balance, o.Name)
			a.log.WithFields(logrus.Fields{"obligation_id": o.ID, "kind": o.Kind}).Info("obligation added")

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s on day %d).\n", id.Short(o.ID), cli.FormatMoney(amount), day)
			return nil
		},
	}

	cmd.Flags().IntVar(&day, "day", 1, "day of month it is charged (1-31)")
	cmd.Flags().StringVar(&kind, "kind", string(model.ObligationOther), "subscription, service, debt or other")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category label for analysis")
	cmd.Flags().IntVar(&installments, "installments", 0, "installments remaining (debts)")
	cmd.Flags().IntVar(&total, "total", 0, "total installments (debts)")
	cmd.Flags().StringVar(&rate, "rate", "", "annual interest rate in percent (debts)")
	return cmd
}

func newObligationListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recurring obligations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.month("")
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

			out := cmd.OutOrStdout()
			if len(obs) == 0 {
				fmt.Fprintln(out, cli.Muted("No obligations."))
				return nil
			}

			var rows [][]string
			active := decimal.Zero
			for _, o := range obs {
				left := ""
				if o.InstallmentsRemaining != nil {
					left = strconv.Itoa(*o.InstallmentsRemaining)
					if o.InstallmentsTotal != nil {
						left += "/" + strconv.Itoa(*o.InstallmentsTotal)
					}
				}
				status := string(o.Status)
				if o.Status == model.StatusActive {
					active = active.Add(o.Amount)
				} else {
					status = cli.Muted(status)
				}
				rows = append(rows, []string{
					id.Short(o.ID),
					o.Name,
					string(o.Kind),
					strconv.Itoa(o.ChargeDay(m.Year, m.Month)),
					status,
					left,
					cli.FormatMoney(o.Amount),
				})
			}
			rows = append(rows, []string{"---"}, []string{"Active per month", "", "", "", "", "", cli.FormatMoney(active)})

			fmt.Fprintln(out, cli.RenderTable(cli.Table{
				Title:   "Obligations " + m.String(),
				Headers: []string{"ID", "Name", "Kind", "Day", "Status", "Left", "Amount"},
				Rows:    rows,
			}))
			return nil
		},
	}
}

func newObligationStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id|name> <active|paused|ended>",
		Short: "Pause, resume or end an obligation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			o, err := findObligation(obs, args[0])
			if err != nil {
				return err
			}
			o.Status = model.ObligationStatus(args[1])
			if verrs := o.Validate(); len(verrs) > 0 {
				return fmt.Errorf("invalid obligation: %w", verrs[0])
			}
			if err := st.StoreObligation(ctx, o); err != nil {
				return err
			}
			fund, err := st.LoadFundState(ctx)
			if err != nil {
				return err
			}

			a.record("obligation_status", o.ID, nil, fund.Balance, string(o.Status))
			a.log.WithFields(logrus.Fields{"obligation_id": o.ID, "status": o.Status}).Info("obligation status changed")

			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s.\n", o.Name, o.Status)
			return nil
		},
	}
}
