package snapshot

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fondo-app/fondo/internal/envelopes"
	"github.com/fondo-app/fondo/internal/ledger"
	"github.com/fondo-app/fondo/internal/model"
	"github.com/fondo-app/fondo/internal/month"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sample(t *testing.T) Snapshot {
	t.Helper()
	b, err := ledger.Deposit(ledger.Book{}, dec("2000"), date("2024-05-01"))
	require.NoError(t, err)
	b, err = ledger.Record(b, model.Transaction{
		ID: "tx_1", Kind: model.KindExpense, Date: date("2024-05-03"),
		Concept: "Compra", Amount: dec("49.5"), Category: "Supermercado", EnvelopeID: envelopes.Food,
	})
	require.NoError(t, err)
	b = ledger.SetManualBalance(b, dec("1900"), "recount", date("2024-05-04"))

	env, err := envelopes.SetAssigned(envelopes.NewState(b.Fund.Balance), envelopes.Food, dec("300"))
	require.NoError(t, err)
	env, err = envelopes.RecordSpend(env, envelopes.Food, dec("49.5"))
	require.NoError(t, err)

	remaining, total := 10, 24
	deadline := month.Month{Year: 2024, Month: time.December}
	return Snapshot{
		ExportedAt:   time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC),
		FundState:    b.Fund,
		Transactions: b.Transactions,
		Obligations: []model.RecurringObligation{{
			ID: "ob_1", Name: "Préstamo coche", Amount: dec("200"), DayOfMonth: 5,
			Kind: model.ObligationDebt, Status: model.StatusActive,
			InstallmentsRemaining: &remaining, InstallmentsTotal: &total,
		}},
		Envelopes: env,
		Goals: []model.SavingsGoal{{
			ID: "goal_1", Name: "Viaje", Target: dec("1200"), Deadline: &deadline,
			Progress: dec("100"), Contributions: []model.Contribution{{Date: date("2024-05-02"), Amount: dec("100"), Source: "manual"}},
			Icon: "✈️", Color: "blue",
		}},
	}
}

func TestRoundTrip(t *testing.T) {
	in := sample(t)

	var first bytes.Buffer
	require.NoError(t, Export(&first, in))

	out, err := Import(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)

	var second bytes.Buffer
	require.NoError(t, Export(&second, out))
	assert.Equal(t, first.String(), second.String())

	assert.Equal(t, CurrentVersion, out.Version)
	assert.True(t, in.FundState.Balance.Equal(out.FundState.Balance))
	assert.Equal(t, in.FundState.Adjustments[0].Reason, out.FundState.Adjustments[0].Reason)
	require.Len(t, out.Transactions, 1)
	assert.Equal(t, in.Transactions[0].ID, out.Transactions[0].ID)
	assert.True(t, out.Transactions[0].FundLinked)
	assert.Equal(t, in.Transactions[0].Date, out.Transactions[0].Date)
	assert.Len(t, out.Envelopes.Envelopes, len(in.Envelopes.Envelopes))
	require.NoError(t, envelopes.Check(out.Envelopes))
	require.NotNil(t, out.Goals[0].Deadline)
	assert.Equal(t, *in.Goals[0].Deadline, *out.Goals[0].Deadline)
	assert.Equal(t, 10, *out.Obligations[0].InstallmentsRemaining)
	assert.Nil(t, out.Settings)
	assert.True(t, ledger.Expected(ledger.Book{Fund: out.FundState, Transactions: out.Transactions}).Equal(out.FundState.Balance))
}

func TestExport_EmptyCollectionsAreArrays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, Snapshot{}))
	assert.Contains(t, buf.String(), `"transactions": []`)
	assert.Contains(t, buf.String(), `"goals": []`)

	_, err := Import(&buf)
	require.NoError(t, err)
}

func TestImport_MissingKey(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sample(t)))

	doc := strings.Replace(buf.String(), `"goals":`, `"metas":`, 1)
	_, err := Import(strings.NewReader(doc))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingKey))
	assert.Contains(t, err.Error(), "goals")
}

func TestImport_UnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sample(t)))

	doc := strings.Replace(buf.String(), `"version": 2`, `"version": 3`, 1)
	_, err := Import(strings.NewReader(doc))
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestImport_InvalidJSON(t *testing.T) {
	_, err := Import(strings.NewReader("{not json"))
	assert.Error(t, err)
}

const legacyDoc = `{
  "version": "1.0",
  "fecha": "2024-05-20T10:00:00.000Z",
  "config": {
    "incomeBase": 2000,
    "mesActual": "2024-03",
    "fondoDisponible": "1450.5",
    "ultimaNomina": "2024-05-01",
    "historialNominas": [{"fecha": "2024-05-01", "cantidad": 2000}],
    "migratedToFundModel": true
  },
  "gastosFijos": [
    {"id": "1700000000000", "nombre": "Préstamo coche", "cantidad": 200, "diaDelMes": 5, "tipo": "credito",
     "estado": "activo", "categoria": "Préstamo", "cuotasRestantes": "10", "cuotasTotales": 24, "fechaInicio": null},
    {"id": "1700000000001", "nombre": "Netflix", "cantidad": "12,99", "diaDelMes": 31, "tipo": "suscripcion",
     "estado": "pausado", "categoria": "Streaming", "cuotasRestantes": null, "cuotasTotales": null}
  ],
  "gastosVariables": [
    {"id": "1700000000002", "fecha": "2024-05-03", "concepto": "Compra", "cantidad": 49.5, "categoria": "Supermercado", "deductedFromFund": true},
    {"id": 1700000000003, "fecha": "2024-04-10", "concepto": "Cena", "cantidad": 30, "categoria": "Restaurante"}
  ],
  "ingresos": [
    {"id": "1700000000004", "fecha": "2024-05-15", "concepto": "Freelance", "cantidad": 300, "tipo": "puntual"}
  ]
}`

func TestImport_Legacy(t *testing.T) {
	s, err := Import(strings.NewReader(legacyDoc))
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, s.Version)
	assert.Equal(t, time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC), s.ExportedAt)

	require.Len(t, s.Obligations, 2)
	loan := s.Obligations[0]
	assert.Equal(t, "ob_1700000000000", loan.ID)
	assert.Equal(t, model.ObligationDebt, loan.Kind)
	assert.Equal(t, model.StatusActive, loan.Status)
	require.NotNil(t, loan.InstallmentsRemaining)
	assert.Equal(t, 10, *loan.InstallmentsRemaining)
	assert.Equal(t, 24, *loan.InstallmentsTotal)

	netflix := s.Obligations[1]
	assert.Equal(t, model.ObligationSubscription, netflix.Kind)
	assert.Equal(t, model.StatusPaused, netflix.Status)
	assert.True(t, dec("12.99").Equal(netflix.Amount))
	assert.Nil(t, netflix.InstallmentsRemaining)

	require.Len(t, s.Transactions, 3)
	assert.Equal(t, "tx_1700000000002", s.Transactions[0].ID)
	assert.True(t, s.Transactions[0].FundLinked)
	assert.Equal(t, "tx_1700000000003", s.Transactions[1].ID)
	assert.False(t, s.Transactions[1].FundLinked)
	assert.Equal(t, model.KindIncome, s.Transactions[2].Kind)
	assert.Equal(t, "puntual", s.Transactions[2].Category)

	// The stored balance wins; one adjustment reconciles it with the history.
	assert.True(t, dec("1450.5").Equal(s.FundState.Balance))
	require.Len(t, s.FundState.Deposits, 1)
	require.Len(t, s.FundState.Adjustments, 1)
	assert.True(t, dec("-500").Equal(s.FundState.Adjustments[0].Delta()))
	assert.True(t, ledger.Expected(ledger.Book{Fund: s.FundState, Transactions: s.Transactions}).Equal(s.FundState.Balance))
	require.NotNil(t, s.FundState.LastDepositDate)

	require.NoError(t, envelopes.Check(s.Envelopes))
	assert.True(t, dec("1450.5").Equal(s.Envelopes.Unassigned))

	require.NotNil(t, s.Settings)
	assert.True(t, dec("2000").Equal(s.Settings.BaseIncome))
	assert.Equal(t, "2024-05", s.Settings.CurrentMonth.String())
}

func TestImport_LegacyMissingKey(t *testing.T) {
	doc := strings.Replace(legacyDoc, `"ingresos"`, `"otros"`, 1)
	_, err := Import(strings.NewReader(doc))
	assert.True(t, errors.Is(err, ErrMissingKey))
}

func TestMigrateLegacy_FundFromBaseIncome(t *testing.T) {
	base := amount(dec("1800"))
	s, err := MigrateLegacy(LegacyBackup{Config: legacyConfig{BaseIncome: &base, CurrentMonth: "2024-02"}})
	require.NoError(t, err)

	assert.True(t, dec("1800").Equal(s.FundState.Balance))
	assert.Equal(t, "2024-02", s.Settings.CurrentMonth.String())
}

func TestMigrateLegacy_InvalidObligation(t *testing.T) {
	_, err := MigrateLegacy(LegacyBackup{FixedExpenses: []legacyObligation{{Name: "Luz", Amount: amount(dec("40"))}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dayOfMonth")
}

func TestBestMonth(t *testing.T) {
	fallback := month.Month{Year: 2023, Month: time.January}
	assert.Equal(t, fallback, BestMonth(nil, fallback))

	txns := []model.Transaction{
		{Date: date("2024-03-10")},
		{Date: date("2024-07-01")},
		{Date: date("2024-05-31")},
		{},
	}
	assert.Equal(t, month.Month{Year: 2024, Month: time.July}, BestMonth(txns, fallback))
}
