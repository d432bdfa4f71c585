package debt

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fondo-app/fondo/internal/classify"
	"github.com/fondo-app/fondo/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func rate(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intp(n int) *int {
	return &n
}

func names(debts []Debt) []string {
	var out []string
	for _, d := range debts {
		out = append(out, d.Name)
	}
	return out
}

var abc = []Debt{
	{Name: "A", Monthly: dec("500"), Installments: 3},
	{Name: "B", Monthly: dec("200"), Installments: 2, RatePct: rate("5")},
	{Name: "C", Monthly: dec("800"), Installments: 1, RatePct: rate("20")},
}

func TestOrder_SnowballVsAvalanche(t *testing.T) {
	snow, err := Order(abc, Snowball)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A"}, names(snow))

	avalanche, err := Order(abc, Avalanche)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, names(avalanche))

	assert.Equal(t, "A", abc[0].Name, "input is not reordered")
}

func TestOrder_AvalancheWithoutRatesIsSnowball(t *testing.T) {
	debts := []Debt{
		{Name: "big", Monthly: dec("100"), Installments: 10},
		{Name: "small", Monthly: dec("50"), Installments: 2},
		{Name: "mid", Monthly: dec("60"), Installments: 5},
	}
	snow, err := Order(debts, Snowball)
	require.NoError(t, err)
	avalanche, err := Order(debts, Avalanche)
	require.NoError(t, err)
	assert.Equal(t, names(snow), names(avalanche))
	assert.Equal(t, []string{"small", "mid", "big"}, names(snow))
}

func TestOrder_AvalancheRateTieUsesBalance(t *testing.T) {
	debts := []Debt{
		{Name: "x", Monthly: dec("100"), Installments: 5, RatePct: rate("10")},
		{Name: "y", Monthly: dec("100"), Installments: 2, RatePct: rate("10")},
		{Name: "z", Monthly: dec("10"), Installments: 1},
	}
	got, err := Order(debts, Avalanche)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x", "z"}, names(got))
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy(" Avalanche ")
	require.NoError(t, err)
	assert.Equal(t, Avalanche, s)

	_, err = ParseStrategy("random")
	assert.True(t, errors.Is(err, ErrUnknownStrategy))

	_, err = Project(abc, Strategy("random"), decimal.Zero)
	assert.True(t, errors.Is(err, ErrUnknownStrategy))
}

func TestProject_Baseline(t *testing.T) {
	plan, err := Project(abc, Snowball, decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, StatusPaidOff, plan.Status)
	assert.Equal(t, 3, plan.TotalMonths)
	assert.Nil(t, plan.Comparison)

	require.Len(t, plan.Payoffs, 3)
	assert.Equal(t, 1, plan.Payoffs[0].Position)
	assert.Equal(t, "B", plan.Payoffs[0].Name)
	assert.True(t, dec("400").Equal(plan.Payoffs[0].Balance))
	assert.Equal(t, 2, plan.Payoffs[0].Months)
	assert.Equal(t, 1, plan.Payoffs[1].Months)
	assert.Equal(t, 3, plan.Payoffs[2].Months)

	require.Len(t, plan.Releases, 3)
	assert.Equal(t, 1, plan.Releases[0].Month)
	assert.Equal(t, "C", plan.Releases[0].Name)
	assert.True(t, dec("800").Equal(plan.Releases[0].Freed))
	assert.Equal(t, 2, plan.Releases[1].Month)
	assert.Equal(t, "A", plan.Releases[2].Name)
}

func TestProject_ExtraPaymentShortensPayoff(t *testing.T) {
	debts := []Debt{
		{Name: "coche", Monthly: dec("100"), Installments: 10},
		{Name: "móvil", Monthly: dec("50"), Installments: 4},
	}
	plan, err := Project(debts, Snowball, dec("50"))
	require.NoError(t, err)

	assert.Equal(t, 8, plan.TotalMonths)
	require.NotNil(t, plan.Comparison)
	assert.Equal(t, 10, plan.Comparison.BaselineMonths)
	assert.Equal(t, 2, plan.Comparison.MonthsSaved)
	assert.Greater(t, plan.Comparison.MonthsSaved, 0)
	assert.True(t, plan.Comparison.InterestSaved.IsZero(), "no rates, no interest estimate")

	assert.Equal(t, "móvil", plan.Payoffs[0].Name)
	assert.Equal(t, 2, plan.Payoffs[0].Months)
	assert.Equal(t, 8, plan.Payoffs[1].Months)
}

func TestProject_ExtraCascades(t *testing.T) {
	// tiny closes on its own installment, so all the extra falls through to rest.
	debts := []Debt{
		{Name: "tiny", Monthly: dec("20"), Installments: 1, RatePct: rate("12")},
		{Name: "rest", Monthly: dec("100"), Installments: 3, RatePct: rate("6")},
	}
	plan, err := Project(debts, Snowball, dec("100"))
	require.NoError(t, err)

	// Month 1: tiny closes on its installment, rest gets 100 + 100 extra.
	// Month 2: rest pays its last 100.
	assert.Equal(t, 2, plan.TotalMonths)
	require.NotNil(t, plan.Comparison)
	assert.Equal(t, 1, plan.Comparison.MonthsSaved)
	// 100 * 6 / 1200
	assert.True(t, dec("0.5").Equal(plan.Comparison.InterestSaved), plan.Comparison.InterestSaved.String())
}

func TestProject_InterestSaved(t *testing.T) {
	debts := []Debt{{Name: "tarjeta", Monthly: dec("100"), Installments: 6, RatePct: rate("24")}}
	plan, err := Project(debts, Avalanche, dec("100"))
	require.NoError(t, err)

	// 200 a month for 3 months; 100 extra applied each month at 2% monthly.
	assert.Equal(t, 3, plan.TotalMonths)
	assert.True(t, dec("6").Equal(plan.Comparison.InterestSaved), plan.Comparison.InterestSaved.String())
}

func TestProject_NoDebts(t *testing.T) {
	plan, err := Project(nil, Snowball, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, StatusNoDebts, plan.Status)
	assert.Empty(t, plan.Payoffs)
}

func TestProject_NegativeExtra(t *testing.T) {
	_, err := Project(abc, Snowball, dec("-1"))
	assert.True(t, errors.Is(err, ErrInvalidAmount))
}

func TestProject_Diverges(t *testing.T) {
	debts := []Debt{
		{Name: "hipoteca", Monthly: dec("500"), Installments: 400},
		{Name: "corto", Monthly: dec("10"), Installments: 2},
	}
	plan, err := Project(debts, Snowball, decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, StatusDiverged, plan.Status)
	assert.Equal(t, MaxMonths, plan.TotalMonths)
	assert.True(t, plan.Payoffs[0].PaidOff)
	assert.False(t, plan.Payoffs[1].PaidOff)
	assert.Equal(t, 0, plan.Payoffs[1].Months)
}

func TestCandidates(t *testing.T) {
	obligations := []model.RecurringObligation{
		{ID: "ob_1", Name: "Préstamo coche", Amount: dec("200"), Kind: model.ObligationOther, Status: model.StatusActive, InstallmentsRemaining: intp(12)},
		{ID: "ob_2", Name: "Portátil", Amount: dec("50"), Kind: model.ObligationDebt, Status: model.StatusPaused, InstallmentsRemaining: intp(3), InterestRatePct: rate("9")},
		{ID: "ob_3", Name: "Netflix", Amount: dec("15"), Kind: model.ObligationSubscription, Status: model.StatusActive},
		{ID: "ob_4", Name: "Viejo", Amount: dec("80"), Kind: model.ObligationDebt, Status: model.StatusEnded, InstallmentsRemaining: intp(2)},
		{ID: "ob_5", Name: "Sofá", Amount: dec("40"), Kind: model.ObligationDebt, Status: model.StatusActive, InstallmentsRemaining: intp(0)},
		{ID: "ob_6", Name: "Gimnasio", Category: "Cuota", Amount: dec("30"), Kind: model.ObligationService, Status: model.StatusActive, InstallmentsRemaining: intp(5)},
	}

	got := Candidates(obligations, classify.Default())
	assert.Equal(t, []string{"Préstamo coche", "Portátil", "Gimnasio"}, names(got))
	assert.Equal(t, 12, got[0].Installments)
	require.NotNil(t, got[1].RatePct)
	assert.True(t, dec("9").Equal(*got[1].RatePct))
}
