package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fondo-app/fondo/internal/cli"
	"github.com/fondo-app/fondo/internal/envelopes"
	"github.com/fondo-app/fondo/internal/goals"
	"github.com/fondo-app/fondo/internal/model"
	"github.com/fondo-app/fondo/internal/month"
)

func newGoalCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Track savings goals",
	}
	cmd.AddCommand(
		newGoalAddCommand(a),
		newGoalEditCommand(a),
		newGoalContributeCommand(a),
		newGoalListCommand(a),
	)
	return cmd
}

func parseDeadline(s string) (*month.Month, error) {
	if s == "" {
		return nil, nil
	}
	m, err := month.Parse(s)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func newGoalAddCommand(a *app) *cobra.Command {
	var deadlineFlag, icon, color string

	cmd := &cobra.Command{
		Use:   "add <name> <target>",
		Short: "Create a savings goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			deadline, err := parseDeadline(deadlineFlag)
			if err != nil {
				return err
			}
			g, err := goals.New(args[0], target, deadline)
			if err != nil {
				return err
			}
			if icon != "" {
				g.Icon = icon
			}
			if color != "" {
				g.Color = color
			}

			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			all, err := st.LoadGoals(ctx)
			if err != nil {
				return err
			}
			if err := st.StoreGoals(ctx, append(all, g)); err != nil {
				return err
			}
			fund, err := st.LoadFundState(ctx)
			if err != nil {
				return err
			}

			a.record("goal_add", g.ID, &target, fund.Balance, g.Name)
			a.log.WithField("goal_id", g.ID).Info("goal created")

			fmt.Fprintf(cmd.OutOrStdout(), "Created goal %s %s (%s).\n", g.Icon, g.Name, cli.FormatMoney(target))
			return nil
		},
	}

	cmd.Flags().StringVar(&deadlineFlag, "deadline", "", "deadline month (YYYY-MM)")
	cmd.Flags().StringVar(&icon, "icon", "", "display icon")
	cmd.Flags().StringVar(&color, "color", "", "display color")
	return cmd
}

func newGoalEditCommand(a *app) *cobra.Command {
	var (
		name, target, deadlineFlag, icon, color string
		clearDeadline                           bool
	)

	cmd := &cobra.Command{
		Use:   "edit <goal>",
		Short: "Change a goal without touching its progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := goals.Changes{ClearDeadline: clearDeadline}
			flags := cmd.Flags()
			if flags.Changed("name") {
				c.Name = &name
			}
			if flags.Changed("target") {
				d, err := parseAmount(target)
				if err != nil {
					return err
				}
				c.Target = &d
			}
			if flags.Changed("deadline") {
				m, err := parseDeadline(deadlineFlag)
				if err != nil {
					return err
				}
				c.Deadline = m
			}
			if flags.Changed("icon") {
				c.Icon = &icon
			}
			if flags.Changed("color") {
				c.Color = &color
			}

			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			all, err := st.LoadGoals(ctx)
			if err != nil {
				return err
			}
			g, err := findGoal(all, args[0])
			if err != nil {
				return err
			}
			updated, err := goals.Edit(g, c)
			if err != nil {
				return err
			}
			for i := range all {
				if all[i].ID == g.ID {
					all[i] = updated
				}
			}
			if err := st.StoreGoals(ctx, all); err != nil {
				return err
			}
			fund, err := st.LoadFundState(ctx)
			if err != nil {
				return err
			}

			a.record("goal_edit", g.ID, c.Target, fund.Balance, updated.Name)
			a.log.WithField("goal_id", g.ID).Info("goal edited")

			fmt.Fprintf(cmd.OutOrStdout(), "Updated goal %s.\n", updated.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&target, "target", "", "new target amount")
	cmd.Flags().StringVar(&deadlineFlag, "deadline", "", "new deadline month (YYYY-MM)")
	cmd.Flags().BoolVar(&clearDeadline, "clear-deadline", false, "remove the deadline")
	cmd.Flags().StringVar(&icon, "icon", "", "new icon")
	cmd.Flags().StringVar(&color, "color", "", "new color")
	return cmd
}

func newGoalContributeCommand(a *app) *cobra.Command {
	var source, envelopeRef string

	cmd := &cobra.Command{
		Use:   "contribute <goal> <amount>",
		Short: "Record a contribution towards a goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			all, err := st.LoadGoals(ctx)
			if err != nil {
				return err
			}
			before, err := findGoal(all, args[0])
			if err != nil {
				return err
			}

			// Money taken from an envelope counts as spent there.
			var ls ledgerState
			if envelopeRef != "" {
				if ls, err = loadLedger(ctx, st); err != nil {
					return err
				}
				env, err := findEnvelope(ls.alloc, envelopeRef)
				if err != nil {
					return err
				}
				if amount.GreaterThan(env.Available()) {
					return fmt.Errorf("%s has %s available: %w", env.Name, cli.FormatMoney(env.Available()), envelopes.ErrInsufficientEnvelopeFunds)
				}
				if ls.alloc, err = envelopes.RecordSpend(ls.alloc, env.ID, amount); err != nil {
					return err
				}
				if source == "" {
					source = env.Name
				}
			}

			if source == "" {
				source = "manual"
			}
			all, err = goals.ContributeTo(all, before.ID, amount, source, a.now())
			if err != nil {
				return err
			}
			if envelopeRef != "" {
				err = st.StoreGoalsAndEnvelopes(ctx, all, ls.alloc)
			} else {
				err = st.StoreGoals(ctx, all)
			}
			if err != nil {
				return err
			}
			after, _ := findGoal(all, before.ID)
			fund, err := st.LoadFundState(ctx)
			if err != nil {
				return err
			}

			a.record("goal_contribute", before.ID, &amount, fund.Balance, source)
			a.log.WithFields(logrus.Fields{"goal_id": before.ID, "amount": amount.String(), "progress": after.Progress.String()}).Info("goal contribution")

			out := cmd.OutOrStdout()
			stats := goals.Stats(after, a.now())
			fmt.Fprintf(out, "%s %s: %s\n", after.Icon, after.Name, cli.RenderProgressBar(stats.Percent, 20))
			for _, m := range goals.Crossed(before, after) {
				fmt.Fprintln(out, cli.Level("success", fmt.Sprintf("Milestone reached: %d%%", m)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "where the money came from")
	cmd.Flags().StringVarP(&envelopeRef, "envelope", "e", "", "take the money from this envelope")
	return cmd
}

func newGoalListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show goal progress and envelope surpluses to put towards them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			all, err := st.LoadGoals(ctx)
			if err != nil {
				return err
			}
			ls, err := loadLedger(ctx, st)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(all) == 0 {
				fmt.Fprintln(out, cli.Muted("No goals yet."))
				return nil
			}

			now := a.now()
			rows := make([][]string, 0, len(all))
			for _, g := range goals.Sort(all) {
				rows = append(rows, goalRow(g, goals.Stats(g, now)))
			}
			fmt.Fprintln(out, cli.RenderTable(cli.Table{
				Title:   "Goals",
				Headers: []string{"Goal", "Progress", "Saved", "Target", "Deadline", "Per month"},
				Rows:    rows,
			}))

			if surplus := envelopes.Surpluses(ls.alloc, a.cfg.Budget.SurplusThreshold); len(surplus) > 0 {
				parts := make([]string, len(surplus))
				for i, s := range surplus {
					parts[i] = fmt.Sprintf("%s %s", s.Name, cli.FormatMoney(s.Available))
				}
				fmt.Fprintln(out, cli.Muted("Available to contribute: "+strings.Join(parts, ", ")))
			}
			return nil
		},
	}
}

func goalRow(g model.SavingsGoal, s goals.Summary) []string {
	name := strings.TrimSpace(g.Icon + " " + g.Name)
	if s.Completed {
		name = cli.Level("success", name+" ✓")
	}
	deadline, perMonth := "", ""
	if s.HasDeadline {
		deadline = g.Deadline.String() + " (" + strconv.Itoa(s.MonthsRemaining) + "m)"
		if !s.Completed {
			perMonth = cli.FormatMoney(s.RequiredMonthly)
		}
	}
	return []string{
		name,
		cli.RenderProgressBar(s.Percent, 12),
		cli.FormatMoney(g.Progress),
		cli.FormatMoney(g.Target),
		deadline,
		perMonth,
	}
}
