package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fondo-app/fondo/internal/classify"
	"github.com/fondo-app/fondo/internal/config"
	"github.com/fondo-app/fondo/internal/ledger"
	"github.com/fondo-app/fondo/internal/month"
)

type initOptions struct {
	baseIncome string
	month      string
	fund       string
}

func newInitCommand(a *app) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.baseIncome, "base-income", "", "fixed monthly income")
	cmd.Flags().StringVar(&opts.month, "month", "", "current budget month (YYYY-MM)")
	cmd.Flags().StringVar(&opts.fund, "fund", "", "opening fund balance")

	return cmd
}

func (a *app) runInit(ctx context.Context, out io.Writer, opts initOptions) error {
	if err := os.MkdirAll(filepath.Join(a.home, "logs"), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if opts.baseIncome != "" {
		income, err := parseAmount(opts.baseIncome)
		if err != nil {
			return err
		}
		a.cfg.Budget.BaseIncome = income
	}
	if opts.month != "" {
		if _, err := month.Parse(opts.month); err != nil {
			return err
		}
		a.cfg.Budget.CurrentMonth = opts.month
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(filepath.Join(a.home, config.FileName), a.cfg); err != nil {
		return err
	}

	keywords := a.path(a.cfg.Storage.Keywords)
	if _, err := os.Stat(keywords); errors.Is(err, fs.ErrNotExist) {
		if err := classify.SaveTable(keywords, classify.DefaultTable()); err != nil {
			return err
		}
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
	if opts.fund != "" {
		balance, err := parseAmount(opts.fund)
		if err != nil {
			return err
		}
		ls.book = ledger.SetManualBalance(ls.book, balance, "saldo inicial", a.now())
	}
	if ls, err = saveLedger(ctx, st, ls); err != nil {
		return err
	}

	balance := ls.book.Fund.Balance
	a.record("init", "", nil, balance, a.home)
	a.log.WithField("home", a.home).Info("data directory initialized")

	fmt.Fprintf(out, "Initialized fondo at %s\n", a.home)
	return nil
}
