package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fondo-app/fondo/internal/cli"
	"github.com/fondo-app/fondo/internal/envelopes"
	"github.com/fondo-app/fondo/internal/ledger"
)

func newFundCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Inspect and move the available funds",
	}
	cmd.AddCommand(
		newFundShowCommand(a),
		newFundDepositCommand(a),
		newFundSetCommand(a),
		newFundHistoryCommand(a),
	)
	return cmd
}

func newFundShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the fund balance and how it is partitioned",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			ls, err := loadLedger(ctx, st)
			if err != nil {
				return err
			}

			f := ls.book.Fund
			last := "never"
			if f.LastDepositDate != nil {
				last = f.LastDepositDate.Format(dateLayout)
			}
			rows := [][]string{
				{"Balance", cli.Money(f.Balance)},
				{"Last deposit", last},
				{"Assigned to envelopes", cli.FormatMoney(ls.alloc.TotalAssigned())},
				{"Unassigned", cli.FormatMoney(ls.alloc.Unassigned)},
			}
			expected := ledger.Expected(ls.book)
			if !expected.Equal(f.Balance) {
				rows = append(rows, []string{"---"}, []string{"Expected from history", cli.FormatMoney(expected)})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderTable(cli.Table{Title: "Fund", Rows: rows}))
			if over := envelopes.Overcommitted(ls.alloc); over.IsPositive() {
				fmt.Fprintln(out, cli.Level("warning", fmt.Sprintf("Envelopes hold %s more than the fund.", cli.FormatMoney(over))))
			}
			return nil
		},
	}
}

func newFundDepositCommand(a *app) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Credit income to the fund",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			date, err := a.parseDate(dateFlag)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			ls, err := loadLedger(ctx, st)
			if err != nil {
				return err
			}
			if ls.book, err = ledger.Deposit(ls.book, amount, date); err != nil {
				return err
			}
			if ls, err = saveLedger(ctx, st, ls); err != nil {
				return err
			}

			balance := ls.book.Fund.Balance
			a.record("deposit", "", &amount, balance, "")
			a.log.WithFields(logrus.Fields{"amount": amount.String(), "balance": balance.String()}).Info("deposit recorded")

			fmt.Fprintf(cmd.OutOrStdout(), "Deposited %s. Balance: %s\n", cli.FormatMoney(amount), cli.FormatMoney(balance))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "deposit date (YYYY-MM-DD, default today)")
	return cmd
}

func newFundSetCommand(a *app) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "set <amount>",
		Short: "Correct the fund balance by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			ls, err := loadLedger(ctx, st)
			if err != nil {
				return err
			}
			previous := ls.book.Fund.Balance
			ls.book = ledger.SetManualBalance(ls.book, amount, reason, a.now())
			if ls, err = saveLedger(ctx, st, ls); err != nil {
				return err
			}

			delta := amount.Sub(previous)
			a.record("set_balance", "", &delta, amount, reason)
			a.log.WithFields(logrus.Fields{"previous": previous.String(), "balance": amount.String()}).Info("balance corrected")

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Balance set to %s (was %s).\n", cli.FormatMoney(amount), cli.FormatMoney(previous))
			if over := envelopes.Overcommitted(ls.alloc); over.IsPositive() {
				fmt.Fprintln(out, cli.Level("warning", fmt.Sprintf("Envelopes now hold %s more than the fund.", cli.FormatMoney(over))))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "ajuste manual", "reason recorded with the correction")
	return cmd
}

func newFundHistoryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List deposits and manual corrections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			f, err := st.LoadFundState(ctx)
			if err != nil {
				return err
			}

			type event struct {
				date   time.Time
				kind   string
				amount decimal.Decimal
				note   string
			}
			var events []event
			for _, d := range f.Deposits {
				events = append(events, event{d.Date, "deposit", d.Amount, ""})
			}
			for _, adj := range f.Adjustments {
				events = append(events, event{adj.Date, "correction", adj.Delta(), adj.Reason})
			}
			sort.SliceStable(events, func(i, j int) bool { return events[i].date.Before(events[j].date) })

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, cli.Muted("No fund history yet."))
				return nil
			}
			rows := make([][]string, 0, len(events))
			for _, e := range events {
				rows = append(rows, []string{e.date.Format(dateLayout), e.kind, cli.Money(e.amount), e.note})
			}
			fmt.Fprintln(out, cli.RenderTable(cli.Table{
				Title:   "Fund history",
				Headers: []string{"Date", "Type", "Amount", "Reason"},
				Rows:    rows,
			}))
			return nil
		},
	}
}
