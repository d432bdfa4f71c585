package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fondo-app/fondo/internal/buildinfo"
	"github.com/fondo-app/fondo/internal/classify"
	"github.com/fondo-app/fondo/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{now: time.Now}
	var (
		homeFlag string
		verbose  bool
	)

	rootCmd := &cobra.Command{
		Use:     "fondo",
		Short:   "Personal fund accounting and budget allocation",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, homeFlag, verbose)
		},
	}

	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "data directory (default $"+config.HomeEnv+" or ~/.fondo)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newInitCommand(a),
		newFundCommand(a),
		newExpenseCommand(a),
		newIncomeCommand(a),
		newObligationCommand(a),
		newEnvelopeCommand(a),
		newAnalyzeCommand(a),
		newDebtCommand(a),
		newGoalCommand(a),
		newBackupCommand(a),
		newActivityCommand(a),
	)

	return rootCmd
}

// setup loads .env, config and the keyword table, and builds the logger.
// The store is opened per command so it can be closed on every path.
func (a *app) setup(cmd *cobra.Command, homeFlag string, verbose bool) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	home, err := config.Home(homeFlag)
	if err != nil {
		return err
	}
	a.home = home

	cfg, err := config.LoadOrDefault(filepath.Join(home, config.FileName))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid %s: %w", config.FileName, err)
	}
	a.cfg = cfg

	a.log = newLogger(cmd.ErrOrStderr(), cfg.Log.Level, verbose)
	a.log.WithField("home", home).Debug("config loaded")

	table, err := classify.LoadTable(config.Resolve(home, cfg.Storage.Keywords))
	if err != nil {
		return err
	}
	a.classifier = classify.New(table)
	return nil
}

// newLogger builds the text logger. Validate has already checked level.
func newLogger(w io.Writer, level string, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	log.SetLevel(lvl)
	return log
}
