package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fondo-app/fondo/internal/model"
)

func TestClassify_Default(t *testing.T) {
	c := Default()
	tests := []struct {
		label string
		want  model.Classification
	}{
		{"Alquiler", model.Needs},
		{"alquiler piso", model.Needs},
		{"SUPERMERCADO", model.Needs},
		{"Netflix", model.Wants},
		{"Ocio", model.Wants},
		{"Ahorro", model.Savings},
		{"Fondo de emergencia", model.Savings},
		{"Préstamo coche", model.Debt},
		{"Tarjeta de crédito", model.Debt},
		{"suscripcion", model.Needs},
		{"Cosas varias", model.Unclassified},
		{"", model.Unclassified},
		{"   ", model.Unclassified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.label), "Classify(%q)", tt.label)
	}
}

func TestClassify_DebtBeforeWants(t *testing.T) {
	c := New(Table{
		Wants: []string{"card"},
		Debt:  []string{"credit card"},
	})
	assert.Equal(t, model.Debt, c.Classify("Credit Card payment"))
	assert.Equal(t, model.Wants, c.Classify("gift card"))
	assert.True(t, c.IsDebt("credit card"))
	assert.False(t, c.IsDebt("gift card"))
}

func TestClassify_Deterministic(t *testing.T) {
	c := Default()
	first := c.Classify("Restaurantes")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify("Restaurantes"))
	}
}

func TestClassify_BlankKeywordsIgnored(t *testing.T) {
	c := New(Table{Needs: []string{"", "  "}, Wants: []string{"cine"}})
	assert.Equal(t, model.Unclassified, c.Classify("anything"))
	assert.Equal(t, model.Wants, c.Classify("Cine"))
}

func TestLoadTable_Missing(t *testing.T) {
	tbl, err := LoadTable(filepath.Join(t.TempDir(), "keywords.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultTable(), tbl)
}

func TestLoadTable_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.toml")
	require.NoError(t, os.WriteFile(path, []byte("wants = [\"Videojuegos\"]\n"), 0o644))

	tbl, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Videojuegos"}, tbl.Wants)
	assert.Equal(t, DefaultTable().Needs, tbl.Needs)

	c := New(tbl)
	assert.Equal(t, model.Wants, c.Classify("videojuegos"))
	assert.Equal(t, model.Unclassified, c.Classify("Netflix"))
}

func TestLoadTable_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.toml")
	require.NoError(t, os.WriteFile(path, []byte("needs = ["), 0o644))

	_, err := LoadTable(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing keyword table")
}

func TestSaveTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "keywords.toml")
	tbl := DefaultTable()
	require.NoError(t, SaveTable(path, tbl))

	got, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, tbl, got)
}
