package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fondo-app/fondo/internal/activity"
	"github.com/fondo-app/fondo/internal/classify"
	"github.com/fondo-app/fondo/internal/commands"
	"github.com/fondo-app/fondo/internal/config"
	"github.com/fondo-app/fondo/internal/store"
)

// runFondo executes the CLI in-process against the data directory home.
func runFondo(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--home", home))
	err := cmd.Execute()
	return out.String(), err
}

// initHome initializes a data directory for May 2024 with 2000 of base income.
func initHome(t *testing.T, fund string) string {
	t.Helper()
	home := t.TempDir()
	_, err := runFondo(t, home, "init", "--base-income", "2000", "--month", "2024-05", "--fund", fund)
	require.NoError(t, err)
	return home
}

func openStore(t *testing.T, home string) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(home, "fondo.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestInit_CreatesDataDir(t *testing.T) {
	home := t.TempDir()
	out, err := runFondo(t, home, "init", "--base-income", "2000", "--month", "2024-05")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized fondo at")

	for _, f := range []string{config.FileName, "keywords.toml", "fondo.db", filepath.Join("logs", "activity.csv")} {
		_, err := os.Stat(filepath.Join(home, f))
		require.NoError(t, err, "%s should exist", f)
	}
}

func TestInit_Config(t *testing.T) {
	home := initHome(t, "0")

	cfg, err := config.Load(filepath.Join(home, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "2000", cfg.Budget.BaseIncome.String())
	assert.Equal(t, "2024-05", cfg.Budget.CurrentMonth)
	assert.Equal(t, "snowball", cfg.Debt.Strategy)
}

func TestInit_KeywordTable(t *testing.T) {
	home := initHome(t, "0")

	table, err := classify.LoadTable(filepath.Join(home, "keywords.toml"))
	require.NoError(t, err)
	assert.Equal(t, classify.DefaultTable(), table)
}

func TestInit_OpeningBalance(t *testing.T) {
	home := initHome(t, "750,25")
	st := openStore(t, home)

	b, err := st.LoadBook(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "750.25", b.Fund.Balance.String())
	require.Len(t, b.Fund.Adjustments, 1)
	assert.Equal(t, "saldo inicial", b.Fund.Adjustments[0].Reason)

	alloc, err := st.LoadEnvelopes(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, alloc.Envelopes, "built-in envelopes are seeded")
	assert.Equal(t, "750.25", alloc.Unassigned.String())
}

func TestInit_KeepsExistingConfig(t *testing.T) {
	home := initHome(t, "0")

	_, err := runFondo(t, home, "init")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(home, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "2000", cfg.Budget.BaseIncome.String(), "re-running init keeps settings")
}

func TestInit_InvalidMonth(t *testing.T) {
	_, err := runFondo(t, t.TempDir(), "init", "--month", "2024-13")
	require.Error(t, err)
}

func TestInit_RecordsActivity(t *testing.T) {
	home := initHome(t, "0")

	entries, err := activity.Read(filepath.Join(home, "logs", "activity.csv"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "init", entries[0].Action)
}
