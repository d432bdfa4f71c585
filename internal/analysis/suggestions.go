package analysis

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fondo-app/fondo/internal/model"
)

// Level is the severity of a suggestion or alert.
type Level string

const (
	LevelSuccess  Level = "success"
	LevelNormal   Level = "normal"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Deviation thresholds in percentage points.
var (
	overThreshold      = decimal.NewFromInt(10)
	shortfallThreshold = decimal.NewFromInt(-5)
)

// Suggestion is one piece of user-facing guidance.
type Suggestion struct {
	Level   Level
	Bucket  string
	Message string
	Action  string
	// Amount is the money the action refers to (reduce or set aside).
	Amount decimal.Decimal
}

func suggest(cmp map[model.Classification]Comparison, income decimal.Decimal) []Suggestion {
	var out []Suggestion

	if c := cmp[model.Needs]; c.Deviation.GreaterThan(overThreshold) {
		amt := pointsToMoney(c.Deviation, income)
		out = append(out, Suggestion{
			Level:   LevelCritical,
			Bucket:  model.Needs.String(),
			Message: fmt.Sprintf("Needs take %s%% of income, %s points above the recommended %s%%. Housing or transport costs may be high; review fixed expenses.", pct(c.Real), pct(c.Deviation.Abs()), c.Recommended),
			Action:  fmt.Sprintf("Try to cut %s from essential spending", amt.StringFixed(2)),
			Amount:  amt,
		})
	}

	if c := cmp[model.Wants]; c.Deviation.GreaterThan(overThreshold) {
		amt := pointsToMoney(c.Deviation, income)
		out = append(out, Suggestion{
			Level:   LevelWarning,
			Bucket:  model.Wants.String(),
			Message: fmt.Sprintf("Wants take %s%% of income, above the recommended %s%%.", pct(c.Real), c.Recommended),
			Action:  fmt.Sprintf("Cutting %s from leisure would balance the budget", amt.StringFixed(2)),
			Amount:  amt,
		})
	}

	if c := cmp[model.Debt]; c.Deviation.GreaterThan(overThreshold) {
		amt := pointsToMoney(c.Deviation, income)
		out = append(out, Suggestion{
			Level:   LevelCritical,
			Bucket:  model.Debt.String(),
			Message: fmt.Sprintf("Debt payments take %s%% of income, above the recommended %s%%.", pct(c.Real), c.Recommended),
			Action:  fmt.Sprintf("Look at refinancing or paying down %s of monthly installments", amt.StringFixed(2)),
			Amount:  amt,
		})
	}

	if c := cmp[model.Savings]; c.Deviation.LessThan(shortfallThreshold) {
		amt := pointsToMoney(c.Deviation, income)
		out = append(out, Suggestion{
			Level:   LevelCritical,
			Bucket:  model.Savings.String(),
			Message: fmt.Sprintf("Only %s%% of income is left for savings. The target is %s%%.", pct(c.Real), c.Recommended),
			Action:  fmt.Sprintf("Set aside %s more each month, ideally with an automatic transfer", amt.StringFixed(2)),
			Amount:  amt,
		})
	}

	if len(out) == 0 {
		out = append(out, Suggestion{
			Level:   LevelSuccess,
			Bucket:  "general",
			Message: "Your spending is balanced against the target model.",
			Action:  "Keep it up and consider raising savings if you can.",
		})
	}
	return out
}

// pointsToMoney converts a percentage-point deviation into an amount of income.
func pointsToMoney(points, income decimal.Decimal) decimal.Decimal {
	return points.Abs().Div(hundred).Mul(income).Round(2)
}

func pct(d decimal.Decimal) string {
	return d.StringFixed(1)
}
