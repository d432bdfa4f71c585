package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fondo-app/fondo/internal/cli"
	"github.com/fondo-app/fondo/internal/config"
	"github.com/fondo-app/fondo/internal/envelopes"
	"github.com/fondo-app/fondo/internal/gitops"
	"github.com/fondo-app/fondo/internal/snapshot"
)

func newBackupCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore all data as JSON",
	}
	cmd.AddCommand(newBackupExportCommand(a), newBackupImportCommand(a))
	return cmd
}

func newBackupExportCommand(a *app) *cobra.Command {
	var commit bool

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write a snapshot of all data (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if commit && len(args) == 0 {
				return errors.New("--commit needs a backup file")
			}
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			now := a.now()
			snap, err := st.LoadSnapshot(ctx, now)
			if err != nil {
				return err
			}
			m, err := a.cfg.Month(now)
			if err != nil {
				return err
			}
			snap.Settings = &snapshot.Settings{BaseIncome: a.cfg.Budget.BaseIncome, CurrentMonth: m}

			var w io.Writer = cmd.OutOrStdout()
			if len(args) == 1 {
				if err := os.MkdirAll(filepath.Dir(args[0]), 0o755); err != nil {
					return fmt.Errorf("creating backup directory: %w", err)
				}
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("creating backup: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := snapshot.Export(w, snap); err != nil {
				return err
			}

			a.log.WithFields(logrus.Fields{"transactions": len(snap.Transactions), "goals": len(snap.Goals)}).Info("snapshot exported")
			if len(args) == 0 {
				return nil
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Exported to %s\n", args[0])
			if !commit {
				return nil
			}

			file, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			dir := filepath.Dir(file)
			if err := gitops.EnsureRepo(ctx, dir); err != nil {
				return err
			}
			hash, err := gitops.CommitFile(ctx, dir, file, "backup: "+m.String(), gitops.DefaultAuthor)
			if errors.Is(err, gitops.ErrNoChanges) {
				fmt.Fprintln(out, cli.Muted("Backup unchanged since the last commit."))
				return nil
			}
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"file": file, "commit": hash}).Info("backup committed")
			fmt.Fprintf(out, "Committed %s\n", hash)
			return nil
		},
	}

	cmd.Flags().BoolVar(&commit, "commit", false, "commit the backup file to a git repository in its directory")
	return cmd
}

func newBackupImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all data with a snapshot or a legacy browser backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening backup: %w", err)
			}
			defer f.Close()

			snap, err := snapshot.Import(f)
			if err != nil {
				return fmt.Errorf("importing %s: %w", args[0], err)
			}
			if len(snap.Envelopes.Envelopes) == 0 {
				snap.Envelopes = envelopes.NewState(snap.FundState.Balance)
			}
			snap.Envelopes = envelopes.Resync(snap.Envelopes, snap.FundState.Balance)

			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.ReplaceAll(ctx, snap); err != nil {
				return err
			}

			if s := snap.Settings; s != nil {
				a.cfg.Budget.BaseIncome = s.BaseIncome
				if !s.CurrentMonth.IsZero() {
					a.cfg.Budget.CurrentMonth = s.CurrentMonth.String()
				}
				if err := config.Save(filepath.Join(a.home, config.FileName), a.cfg); err != nil {
					return err
				}
			}

			balance := snap.FundState.Balance
			a.record("import", "", nil, balance, filepath.Base(args[0]))
			a.log.WithFields(logrus.Fields{"file": args[0], "transactions": len(snap.Transactions)}).Info("snapshot imported")

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions, %d obligations, %d goals. Balance: %s\n",
				len(snap.Transactions), len(snap.Obligations), len(snap.Goals), cli.Money(balance))
			return nil
		},
	}
}
