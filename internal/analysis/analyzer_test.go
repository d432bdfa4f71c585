package analysis

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fondo-app/fondo/internal/classify"
	"github.com/fondo-app/fondo/internal/model"
	"github.com/fondo-app/fondo/internal/month"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got}, msgAndArgs...)...)
}

func TestAnalyze_Classification(t *testing.T) {
	res, err := Analyze(classify.Default(), dec("2000"), []Item{
		{Category: "Alquiler", Amount: dec("700")},
		{Category: "Netflix", Amount: dec("15")},
		{Category: "Ahorro", Amount: dec("400")},
		{Category: "Ocio", Amount: dec("300")},
	}, Options{})
	require.NoError(t, err)

	assertDec(t, "700", res.Needs.Total)
	assertDec(t, "35", res.Needs.Percent)
	assertDec(t, "315", res.Wants.Total)
	assertDec(t, "15.75", res.Wants.Percent)
	assertDec(t, "0", res.Debt.Percent)

	// Savings is the residual; the explicit "Ahorro" item is not counted.
	assertDec(t, "985", res.Savings.Total)
	assertDec(t, "49.25", res.Savings.Percent)
	assert.False(t, res.Savings.Total.IsNegative())

	assert.Equal(t, StandardModel(), res.Model)
	assert.Equal(t, 4, res.ItemCount)
}

func TestAnalyze_InvalidIncome(t *testing.T) {
	for _, income := range []string{"0", "-100"} {
		_, err := Analyze(classify.Default(), dec(income), nil, Options{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	}
}

func TestAnalyze_NilItems(t *testing.T) {
	res, err := Analyze(classify.Default(), dec("1000"), nil, Options{})
	require.NoError(t, err)
	assertDec(t, "1000", res.Savings.Total)
	assertDec(t, "100", res.Savings.Percent)
	require.Len(t, res.Suggestions, 1)
	assert.Equal(t, LevelSuccess, res.Suggestions[0].Level)
}

func TestAnalyze_DebtSelectsDebtModel(t *testing.T) {
	res, err := Analyze(classify.Default(), dec("2000"), []Item{
		{Category: "Alquiler", Amount: dec("800")},
		{Category: "Préstamo coche", Amount: dec("300")},
	}, Options{})
	require.NoError(t, err)

	assert.Equal(t, DebtModel(), res.Model)
	assertDec(t, "15", res.Debt.Percent)
	assertDec(t, "-15", res.Comparison[model.Debt].Deviation)
	assertDec(t, "-20", res.Comparison[model.Wants].Deviation)
	assertDec(t, "-10", res.Comparison[model.Needs].Deviation)
	assertDec(t, "35", res.Comparison[model.Savings].Deviation)
}

func TestAnalyze_CustomModel(t *testing.T) {
	custom := Model{Needs: dec("60"), Wants: dec("20"), Savings: dec("20")}
	res, err := Analyze(classify.Default(), dec("1000"), []Item{
		{Category: "Alquiler", Amount: dec("600")},
	}, Options{Standard: &custom})
	require.NoError(t, err)
	assert.Equal(t, custom, res.Model)
	assertDec(t, "0", res.Comparison[model.Needs].Deviation)
}

func TestAnalyze_Unclassified(t *testing.T) {
	res, err := Analyze(classify.Default(), dec("1000"), []Item{
		{Category: "Cosas varias", Amount: dec("100")},
	}, Options{})
	require.NoError(t, err)
	assertDec(t, "100", res.Unclassified.Total)
	assertDec(t, "10", res.Unclassified.Percent)
	assertDec(t, "900", res.Savings.Total)
	assertDec(t, "0", res.Wants.Total)
}

func TestAnalyze_Spendable(t *testing.T) {
	res, err := Analyze(classify.Default(), dec("2000"), []Item{
		{Category: "Alquiler", Amount: dec("700")},
		{Category: "Ocio", Amount: dec("300")},
		{Category: "Deuda tarjeta", Amount: dec("100")},
		{Category: "Varios", Amount: dec("50")},
	}, Options{})
	require.NoError(t, err)
	assertDec(t, "850", res.AvailableNow)
	assertDec(t, "650", res.SpendableNow)
}

func TestSuggestions(t *testing.T) {
	tests := []struct {
		name   string
		items  []Item
		levels map[string]Level
	}{
		{
			name:   "balanced",
			items:  []Item{{"Alquiler", dec("500")}, {"Ocio", dec("300")}},
			levels: map[string]Level{"general": LevelSuccess},
		},
		{
			name:  "needs over",
			items: []Item{{"Alquiler", dec("650")}, {"Ocio", dec("100")}},
			levels: map[string]Level{
				"needs":   LevelCritical,
				"savings": LevelSuccess,
			},
		},
		{
			name:  "wants over and savings short",
			items: []Item{{"Alquiler", dec("500")}, {"Ocio", dec("450")}},
			levels: map[string]Level{
				"wants":   LevelWarning,
				"savings": LevelCritical,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Analyze(classify.Default(), dec("1000"), tt.items, Options{})
			require.NoError(t, err)

			got := map[string]Level{}
			for _, s := range res.Suggestions {
				got[s.Bucket] = s.Level
			}
			for bucket, level := range tt.levels {
				if level == LevelSuccess && bucket != "general" {
					_, present := got[bucket]
					assert.False(t, present, "no suggestion expected for %s", bucket)
					continue
				}
				assert.Equal(t, level, got[bucket], "bucket %s", bucket)
			}
		})
	}
}

func TestSuggestion_ActionAmount(t *testing.T) {
	res, err := Analyze(classify.Default(), dec("2000"), []Item{
		{Category: "Alquiler", Amount: dec("1300")},
	}, Options{})
	require.NoError(t, err)
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, "needs", res.Suggestions[0].Bucket)
	// 65% vs 50% -> 15 points of 2000.
	assertDec(t, "300", res.Suggestions[0].Amount)
	assert.Contains(t, res.Suggestions[0].Action, "300.00")
}

func TestOverspend(t *testing.T) {
	tests := []struct {
		spent     string
		overspent bool
		alert     Level
	}{
		{"500", false, LevelNormal},
		{"900", false, LevelWarning},
		{"960", false, LevelCritical},
		{"1200", true, LevelCritical},
	}
	for _, tt := range tests {
		res, err := Analyze(classify.Default(), dec("1000"), []Item{{"Alquiler", dec(tt.spent)}}, Options{})
		require.NoError(t, err)
		assert.Equal(t, tt.overspent, res.Overspend.Overspent, "spent %s", tt.spent)
		assert.Equal(t, tt.alert, res.Overspend.Alert, "spent %s", tt.spent)
		assertDec(t, tt.spent, res.Overspend.TotalSpent)
	}
}

func TestProjection(t *testing.T) {
	res, err := Analyze(classify.Default(), dec("3000"), []Item{{"Supermercado", dec("300")}}, Options{Day: 10, DaysInMonth: 30})
	require.NoError(t, err)
	require.NotNil(t, res.Projection)
	assertDec(t, "30", res.Projection.DailyAverage)
	assertDec(t, "900", res.Projection.ProjectedTotal)
	assert.Equal(t, 20, res.Projection.DaysLeft)

	res, err = Analyze(classify.Default(), dec("3000"), nil, Options{Day: 31, DaysInMonth: 30})
	require.NoError(t, err)
	assert.Nil(t, res.Projection)
}

func TestItemsAndIncome(t *testing.T) {
	m := month.Month{Year: 2025, Month: time.March}
	obligations := []model.RecurringObligation{
		{Name: "Piso", Category: "Alquiler", Amount: dec("700"), Status: model.StatusActive},
		{Name: "Gym", Kind: model.ObligationSubscription, Amount: dec("30"), Status: model.StatusPaused},
		{Name: "Coche", Kind: model.ObligationDebt, Amount: dec("200"), Status: model.StatusActive},
	}
	txns := []model.Transaction{
		{Kind: model.KindExpense, Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), Category: "Ocio", Amount: dec("40")},
		{Kind: model.KindExpense, Date: time.Date(2025, 2, 27, 0, 0, 0, 0, time.UTC), Category: "Ocio", Amount: dec("99")},
		{Kind: model.KindIncome, Date: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), Amount: dec("250")},
		{Kind: model.KindIncome, Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), Amount: dec("999")},
	}

	items := Items(obligations, txns, m)
	require.Len(t, items, 3)
	assert.Equal(t, "Alquiler", items[0].Category)
	assert.Equal(t, model.Debt, classify.Default().Classify(items[1].Category))
	assertDec(t, "40", items[2].Amount)

	assertDec(t, "2250", MonthlyIncome(dec("2000"), txns, m))
}

func TestItems_DebtKindWinsOverCategory(t *testing.T) {
	m := month.Month{Year: 2025, Month: time.March}
	obligations := []model.RecurringObligation{
		{Name: "Letra", Kind: model.ObligationDebt, Category: "Coche", Amount: dec("200"), Status: model.StatusActive},
	}

	items := Items(obligations, nil, m)
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Category, "Coche")
	assert.Equal(t, model.Debt, classify.Default().Classify(items[0].Category))

	res, err := Analyze(classify.Default(), dec("2000"), items, Options{})
	require.NoError(t, err)
	assert.Equal(t, DebtModel(), res.Model)
	assertDec(t, "200", res.Debt.Total)
}
