package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fondo-app/fondo/internal/cli"
	"github.com/fondo-app/fondo/internal/envelopes"
	"github.com/fondo-app/fondo/internal/id"
	"github.com/fondo-app/fondo/internal/ledger"
	"github.com/fondo-app/fondo/internal/model"
	"github.com/fondo-app/fondo/internal/month"
)

func newExpenseCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record variable expenses paid from the fund",
	}
	cmd.AddCommand(
		newExpenseAddCommand(a),
		newExpenseEditCommand(a),
		newExpenseDeleteCommand(a),
		newExpenseListCommand(a),
	)
	return cmd
}

type expenseOptions struct {
	category string
	date     string
	envelope string
}

func newExpenseAddCommand(a *app) *cobra.Command {
	var opts expenseOptions

	cmd := &cobra.Command{
		Use:   "add <concept> <amount>",
		Short: "Record an expense and take it out of the fund",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExpenseAdd(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.category, "category", "c", "General", "category label")
	cmd.Flags().StringVar(&opts.date, "date", "", "expense date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&opts.envelope, "envelope", "e", "", "envelope to charge (id or name)")
	return cmd
}

func (a *app) runExpenseAdd(ctx context.Context, out io.Writer, concept, amountArg string, opts expenseOptions) error {
	amount, err := parseAmount(amountArg)
	if err != nil {
		return err
	}
	date, err := a.parseDate(opts.date)
	if err != nil {
		return err
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	ls, err := loadLedger(ctx, st)
	if err != nil {
		return err
	}

	tx := model.Transaction{
		ID:       id.New(id.PrefixTransaction),
		Kind:     model.KindExpense,
		Date:     date,
		Concept:  concept,
		Amount:   amount,
		Category: opts.category,
	}
	var env model.Envelope
	if opts.envelope != "" {
		if env, err = findEnvelope(ls.alloc, opts.envelope); err != nil {
			return err
		}
		tx.EnvelopeID = env.ID
	}

	if ls.book, err = ledger.Record(ls.book, tx); err != nil {
		return err
	}
	if tx.EnvelopeID != "" {
		if ls.alloc, err = envelopes.RecordSpend(ls.alloc, tx.EnvelopeID, amount); err != nil {
			return err
		}
	}
	if ls, err = saveLedger(ctx, st, ls); err != nil {
		return err
	}

	balance := ls.book.Fund.Balance
	a.record("expense_add", tx.ID, &amount, balance, concept)
	a.log.WithFields(logrus.Fields{"tx_id": tx.ID, "amount": amount.String(), "balance": balance.String()}).Info("expense recorded")

	fmt.Fprintf(out, "Recorded %s (%s). Balance: %s\n", id.Short(tx.ID), cli.FormatMoney(amount), cli.Money(balance))
	if tx.EnvelopeID != "" {
		if e := ls.alloc.Envelopes[ls.alloc.Find(tx.EnvelopeID)]; e.Exceeded() {
			fmt.Fprintln(out, cli.Level("warning", fmt.Sprintf("Envelope %s exceeded by %s.", e.Name, cli.FormatMoney(e.Available().Neg()))))
		}
	}
	return nil
}

func newExpenseEditCommand(a *app) *cobra.Command {
	var concept, amount, category, date string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an expense, moving the fund by the difference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var changes ledger.Changes
			flags := cmd.Flags()
			if flags.Changed("concept") {
				changes.Concept = &concept
			}
			if flags.Changed("category") {
				changes.Category = &category
			}
			if flags.Changed("amount") {
				d, err := parseAmount(amount)
				if err != nil {
					return err
				}
				changes.Amount = &d
			}
			if flags.Changed("date") {
				t, err := a.parseDate(date)
				if err != nil {
					return err
				}
				changes.Date = &t
			}
			return a.runExpenseEdit(cmd.Context(), cmd.OutOrStdout(), args[0], changes)
		},
	}

	cmd.Flags().StringVar(&concept, "concept", "", "new concept")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category")
	cmd.Flags().StringVar(&date, "date", "", "new date (YYYY-MM-DD)")
	return cmd
}

func (a *app) runExpenseEdit(ctx context.Context, out io.Writer, ref string, changes ledger.Changes) error {
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	ls, err := loadLedger(ctx, st)
	if err != nil {
		return err
	}
	old, err := findTransaction(ls.book.Transactions, ref)
	if err != nil {
		return err
	}

	if ls.book, err = ledger.Edit(ls.book, old.ID, changes); err != nil {
		return err
	}
	if old.EnvelopeID != "" && changes.Amount != nil {
		if ls.alloc, err = shiftSpend(ls.alloc, old.EnvelopeID, old.Amount, *changes.Amount); err != nil {
			return err
		}
	}
	if ls, err = saveLedger(ctx, st, ls); err != nil {
		return err
	}

	balance := ls.book.Fund.Balance
	a.record("expense_edit", old.ID, changes.Amount, balance, "")
	a.log.WithFields(logrus.Fields{"tx_id": old.ID, "balance": balance.String()}).Info("expense edited")

	fmt.Fprintf(out, "Updated %s. Balance: %s\n", id.Short(old.ID), cli.Money(balance))
	return nil
}

// shiftSpend moves an envelope's spend from oldAmount to newAmount.
func shiftSpend(s model.AllocatorState, envelopeID string, oldAmount, newAmount decimal.Decimal) (model.AllocatorState, error) {
	switch diff := newAmount.Sub(oldAmount); {
	case diff.IsPositive():
		return envelopes.RecordSpend(s, envelopeID, diff)
	case diff.IsNegative():
		return envelopes.RefundSpend(s, envelopeID, diff.Neg())
	}
	return s, nil
}

func newExpenseDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction, returning its amount to the fund",
		Args:  cobra.ExactArgs(1),
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
			tx, err := findTransaction(ls.book.Transactions, args[0])
			if err != nil {
				return err
			}

			ls.book = ledger.Delete(ls.book, tx.ID)
			if tx.EnvelopeID != "" && tx.IsExpense() {
				if ls.alloc, err = envelopes.RefundSpend(ls.alloc, tx.EnvelopeID, tx.Amount); err != nil {
					return err
				}
			}
			if ls, err = saveLedger(ctx, st, ls); err != nil {
				return err
			}

			balance := ls.book.Fund.Balance
			a.record("transaction_delete", tx.ID, &tx.Amount, balance, tx.Concept)
			a.log.WithFields(logrus.Fields{"tx_id": tx.ID, "balance": balance.String()}).Info("transaction deleted")

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s. Balance: %s\n", id.Short(tx.ID), cli.Money(balance))
			return nil
		},
	}
}

func newExpenseListCommand(a *app) *cobra.Command {
	var monthFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the month's transactions",
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

			txns, err := st.LoadTransactions(ctx)
			if err != nil {
				return err
			}

			var rows [][]string
			spent, income := decimal.Zero, decimal.Zero
			for _, t := range txns {
				if !m.Contains(t.Date) {
					continue
				}
				amount := cli.FormatMoney(t.Amount)
				if t.IsExpense() {
					spent = spent.Add(t.Amount)
				} else {
					income = income.Add(t.Amount)
					amount = cli.Level("success", "+"+amount)
				}
				rows = append(rows, []string{id.Short(t.ID), t.Date.Format(dateLayout), t.Concept, t.Category, amount})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, cli.Muted("No transactions in "+m.String()+"."))
				return nil
			}
			rows = append(rows, []string{"---"},
				[]string{"Spent", "", "", "", cli.FormatMoney(spent)},
				[]string{"Income", "", "", "", cli.FormatMoney(income)})
			fmt.Fprintln(out, cli.RenderTable(cli.Table{
				Title:   "Transactions " + m.String(),
				Headers: []string{"ID", "Date", "Concept", "Category", "Amount"},
				Rows:    rows,
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&monthFlag, "month", "", "month to list (YYYY-MM, default current)")
	return cmd
}

func newIncomeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Record extra income",
	}
	cmd.AddCommand(newIncomeAddCommand(a))
	return cmd
}

func newIncomeAddCommand(a *app) *cobra.Command {
	var (
		category string
		dateFlag string
		deposit  bool
	)

	cmd := &cobra.Command{
		Use:   "add <concept> <amount>",
		Short: "Record income for the month's analysis",
		Long: "Record income for the month's analysis. Income records do not touch the fund " +
			"unless --deposit is given, which also credits the amount.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
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
			tx := model.Transaction{
				ID:       id.New(id.PrefixTransaction),
				Kind:     model.KindIncome,
				Date:     date,
				Concept:  args[0],
				Amount:   amount,
				Category: category,
			}
			if ls.book, err = ledger.Record(ls.book, tx); err != nil {
				return err
			}
			if deposit {
				if ls.book, err = ledger.Deposit(ls.book, amount, date); err != nil {
					return err
				}
			}
			if ls, err = saveLedger(ctx, st, ls); err != nil {
				return err
			}

			balance := ls.book.Fund.Balance
			a.record("income_add", tx.ID, &amount, balance, args[0])
			a.log.WithFields(logrus.Fields{"tx_id": tx.ID, "amount": amount.String(), "deposit": deposit}).Info("income recorded")

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded income %s (%s). Balance: %s\n", id.Short(tx.ID), cli.FormatMoney(amount), cli.Money(balance))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "Ingresos", "category label")
	cmd.Flags().StringVar(&dateFlag, "date", "", "income date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&deposit, "deposit", false, "also credit the amount to the fund")
	return cmd
}

// month resolves a --month flag, falling back to the configured month.
func (a *app) month(flag string) (month.Month, error) {
	if flag != "" {
		return month.Parse(flag)
	}
	return a.cfg.Month(a.now())
}
