package debt

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fondo-app/fondo/internal/model"
)

var (
	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrInvalidAmount   = errors.New("invalid amount")
)

// Strategy decides which debt receives extra payments first.
type Strategy string

const (
	// Snowball pays the smallest remaining balance first.
	Snowball Strategy = "snowball"
	// Avalanche pays the highest interest rate first.
	Avalanche Strategy = "avalanche"
)

// ParseStrategy accepts "snowball" or "avalanche" in any case.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case Snowball, Avalanche:
		return st, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownStrategy)
}

// Debt is one installment debt taken from a recurring obligation.
type Debt struct {
	ID           string
	Name         string
	Monthly      decimal.Decimal
	Installments int
	RatePct      *decimal.Decimal
}

// Balance estimates what is still owed as monthly amount times installments left.
func (d Debt) Balance() decimal.Decimal {
	return d.Monthly.Mul(decimal.NewFromInt(int64(d.Installments)))
}

// DebtMatcher recognizes debt-like labels.
type DebtMatcher interface {
	IsDebt(label string) bool
}

// Candidates picks the obligations that are debts still being paid: kind debt
// or a debt keyword in the category or name, with installments left, and not ended.
func Candidates(obligations []model.RecurringObligation, m DebtMatcher) []Debt {
	var out []Debt
	for _, o := range obligations {
		if o.Status == model.StatusEnded || o.Remaining() <= 0 {
			continue
		}
		isDebt := o.Kind == model.ObligationDebt
		if !isDebt && m != nil {
			isDebt = m.IsDebt(o.Category) || m.IsDebt(o.Name)
		}
		if !isDebt {
			continue
		}
		out = append(out, Debt{
			ID:           o.ID,
			Name:         o.Name,
			Monthly:      o.Amount,
			Installments: o.Remaining(),
			RatePct:      o.InterestRatePct,
		})
	}
	return out
}

// Order returns a copy of debts sorted by strategy.
//
// Avalanche puts rated debts first by descending rate; ties and unrated debts
// fall back to snowball order, so with no rates at all it equals snowball.
func Order(debts []Debt, strategy Strategy) ([]Debt, error) {
	out := append([]Debt(nil), debts...)
	snowball := func(a, b Debt) bool {
		return a.Balance().LessThan(b.Balance())
	}

	switch strategy {
	case Snowball:
		sort.SliceStable(out, func(i, j int) bool {
			return snowball(out[i], out[j])
		})
	case Avalanche:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			switch {
			case a.RatePct != nil && b.RatePct == nil:
				return true
			case a.RatePct == nil && b.RatePct != nil:
				return false
			case a.RatePct != nil && !a.RatePct.Equal(*b.RatePct):
				return a.RatePct.GreaterThan(*b.RatePct)
			}
			return snowball(a, b)
		})
	default:
		return nil, fmt.Errorf("%q: %w", strategy, ErrUnknownStrategy)
	}
	return out, nil
}
