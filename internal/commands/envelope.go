package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fondo-app/fondo/internal/cli"
	"github.com/fondo-app/fondo/internal/envelopes"
	"github.com/fondo-app/fondo/internal/model"
)

func newEnvelopeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "envelope",
		Short: "Partition the fund into envelopes",
	}
	cmd.AddCommand(
		newEnvelopeListCommand(a),
		newEnvelopeAssignCommand(a),
		newEnvelopeTransferCommand(a),
		newEnvelopeCreateCommand(a),
		newEnvelopeDeleteCommand(a),
		newEnvelopeAutoCommand(a),
	)
	return cmd
}

// withEnvelopes loads the allocator synced to the fund, lets fn change it and
// saves the result. fn returning the state unchanged still saves the resync.
func (a *app) withEnvelopes(ctx context.Context, fn func(s model.AllocatorState) (model.AllocatorState, error)) (model.AllocatorState, error) {
	st, err := a.openStore(ctx)
	if err != nil {
		return model.AllocatorState{}, err
	}
	defer st.Close()

	ls, err := loadLedger(ctx, st)
	if err != nil {
		return model.AllocatorState{}, err
	}
	next, err := fn(ls.alloc)
	if err != nil {
		return ls.alloc, err
	}
	if err := st.StoreEnvelopes(ctx, next); err != nil {
		return ls.alloc, err
	}
	return next, nil
}

func newEnvelopeListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show envelopes with their assigned, spent and available amounts",
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
			s := ls.alloc

			var rows [][]string
			for _, e := range s.Envelopes {
				name := e.Name
				if e.Exceeded() {
					name = cli.Level("critical", name+" (exceeded)")
				}
				rows = append(rows, []string{
					name,
					string(e.Kind),
					cli.FormatMoney(e.Assigned),
					cli.FormatMoney(e.Spent),
					cli.Money(e.Available()),
				})
			}
			rows = append(rows, []string{"---"},
				[]string{"Unassigned", "", "", "", cli.FormatMoney(s.Unassigned)},
				[]string{"Fund", "", cli.FormatMoney(s.TotalAssigned()), "", cli.Money(s.FundBalance)})

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderTable(cli.Table{
				Title:   "Envelopes",
				Headers: []string{"Envelope", "Kind", "Assigned", "Spent", "Available"},
				Rows:    rows,
			}))
			if over := envelopes.Overcommitted(s); over.IsPositive() {
				fmt.Fprintln(out, cli.Level("warning", fmt.Sprintf("Assigned exceeds the fund by %s. Lower some envelopes.", cli.FormatMoney(over))))
			}
			return nil
		},
	}
}

func newEnvelopeAssignCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <envelope> <amount>",
		Short: "Set an envelope's assigned amount",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			var env model.Envelope
			s, err := a.withEnvelopes(cmd.Context(), func(s model.AllocatorState) (model.AllocatorState, error) {
				var err error
				if env, err = findEnvelope(s, args[0]); err != nil {
					return s, err
				}
				return envelopes.SetAssigned(s, env.ID, amount)
			})
			if err != nil {
				return err
			}

			a.record("envelope_assign", env.ID, &amount, s.FundBalance, env.Name)
			a.log.WithFields(logrus.Fields{"envelope": env.ID, "assigned": amount.String(), "unassigned": s.Unassigned.String()}).Info("envelope assigned")

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s assigned. Unassigned: %s\n", env.Name, cli.FormatMoney(amount), cli.FormatMoney(s.Unassigned))
			return nil
		},
	}
}

func newEnvelopeTransferCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <from> <to> <amount>",
		Short: "Move available money between envelopes",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			var from, to model.Envelope
			s, err := a.withEnvelopes(cmd.Context(), func(s model.AllocatorState) (model.AllocatorState, error) {
				var err error
				if from, err = findEnvelope(s, args[0]); err != nil {
					return s, err
				}
				if to, err = findEnvelope(s, args[1]); err != nil {
					return s, err
				}
				return envelopes.Transfer(s, from.ID, to.ID, amount)
			})
			if err != nil {
				return err
			}

			a.record("envelope_transfer", from.ID, &amount, s.FundBalance, from.ID+" -> "+to.ID)
			a.log.WithFields(logrus.Fields{"from": from.ID, "to": to.ID, "amount": amount.String()}).Info("envelope transfer")

			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s from %s to %s.\n", cli.FormatMoney(amount), from.Name, to.Name)
			return nil
		},
	}
}

func newEnvelopeCreateCommand(a *app) *cobra.Command {
	var color, kind string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a custom envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var newID string
			s, err := a.withEnvelopes(cmd.Context(), func(s model.AllocatorState) (model.AllocatorState, error) {
				var err error
				s, newID, err = envelopes.Create(s, args[0], color, model.EnvelopeKind(kind))
				return s, err
			})
			if err != nil {
				return err
			}

			a.record("envelope_create", newID, nil, s.FundBalance, args[0])
			a.log.WithField("envelope", newID).Info("envelope created")

			fmt.Fprintf(cmd.OutOrStdout(), "Created envelope %s (%s).\n", args[0], newID)
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "display color (default gray)")
	cmd.Flags().StringVar(&kind, "kind", "", "fixed, variable, savings or debt (default variable)")
	return cmd
}

func newEnvelopeDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <envelope>",
		Short: "Delete a custom envelope, returning its money to the pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				env      model.Envelope
				released decimal.Decimal
			)
			s, err := a.withEnvelopes(cmd.Context(), func(s model.AllocatorState) (model.AllocatorState, error) {
				var err error
				if env, err = findEnvelope(s, args[0]); err != nil {
					return s, err
				}
				s, released, err = envelopes.Delete(s, env.ID)
				return s, err
			})
			if err != nil {
				return err
			}

			a.record("envelope_delete", env.ID, &released, s.FundBalance, env.Name)
			a.log.WithFields(logrus.Fields{"envelope": env.ID, "released": released.String()}).Info("envelope deleted")

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s, released %s. Unassigned: %s\n", env.Name, cli.FormatMoney(released), cli.FormatMoney(s.Unassigned))
			return nil
		},
	}
}

func newEnvelopeAutoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "auto",
		Short: "Distribute the whole fund with the default percentages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.withEnvelopes(cmd.Context(), func(s model.AllocatorState) (model.AllocatorState, error) {
				return envelopes.AutoAllocate(s, s.FundBalance), nil
			})
			if err != nil {
				return err
			}

			a.record("envelope_auto", "", nil, s.FundBalance, "")
			a.log.WithField("fund", s.FundBalance.String()).Info("envelopes auto-allocated")

			out := cmd.OutOrStdout()
			for _, e := range s.Envelopes {
				if e.Assigned.IsPositive() {
					fmt.Fprintf(out, "%-24s %s\n", e.Name, cli.FormatMoney(e.Assigned))
				}
			}
			fmt.Fprintf(out, "Unassigned: %s\n", cli.FormatMoney(s.Unassigned))
			return nil
		},
	}
}
