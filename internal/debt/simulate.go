package debt

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxMonths bounds the simulation.
const MaxMonths = 360

// Status describes how a projection ended.
type Status string

const (
	StatusPaidOff  Status = "paid_off"
	StatusNoDebts  Status = "no_debts"
	StatusDiverged Status = "diverged"
)

// Payoff is one debt's line in the plan, in strategy order.
type Payoff struct {
	Position int
	ID       string
	Name     string
	Balance  decimal.Decimal
	// Months until the balance hits zero. Zero when it never did within MaxMonths.
	Months  int
	PaidOff bool
}

// Release is the monthly payment freed when a debt is paid off.
type Release struct {
	Month int
	Name  string
	Freed decimal.Decimal
}

// Comparison measures a plan with extra payments against the same debts without them.
type Comparison struct {
	BaselineMonths int
	MonthsSaved    int
	InterestSaved  decimal.Decimal
}

// Plan is the result of Project.
type Plan struct {
	Strategy    Strategy
	Status      Status
	Extra       decimal.Decimal
	Payoffs     []Payoff
	Releases    []Release
	TotalMonths int
	Comparison  *Comparison
}

type run struct {
	payoffs     []Payoff
	releases    []Release
	months      int
	diverged    bool
	interestCut decimal.Decimal
}

// Project simulates paying off debts month by month. Every open debt pays one
// installment (or what is left of it); extra goes to the first open debt in
// strategy order and any leftover cascades to the next.
func Project(debts []Debt, strategy Strategy, extra decimal.Decimal) (Plan, error) {
	if extra.IsNegative() {
		return Plan{}, fmt.Errorf("extra payment %s: %w", extra, ErrInvalidAmount)
	}
	ordered, err := Order(debts, strategy)
	if err != nil {
		return Plan{}, err
	}
	plan := Plan{Strategy: strategy, Extra: extra}
	if len(ordered) == 0 {
		plan.Status = StatusNoDebts
		return plan, nil
	}

	r := simulate(ordered, extra)
	plan.Payoffs = r.payoffs
	plan.Releases = r.releases
	plan.TotalMonths = r.months
	plan.Status = StatusPaidOff
	if r.diverged {
		plan.Status = StatusDiverged
	}

	if extra.IsPositive() {
		base := simulate(ordered, decimal.Zero)
		plan.Comparison = &Comparison{
			BaselineMonths: base.months,
			MonthsSaved:    base.months - r.months,
			InterestSaved:  r.interestCut.Round(2),
		}
	}
	return plan, nil
}

func simulate(ordered []Debt, extra decimal.Decimal) run {
	balances := make([]decimal.Decimal, len(ordered))
	r := run{payoffs: make([]Payoff, len(ordered)), interestCut: decimal.Zero}
	open := 0
	for i, d := range ordered {
		balances[i] = d.Balance()
		r.payoffs[i] = Payoff{Position: i + 1, ID: d.ID, Name: d.Name, Balance: balances[i]}
		if balances[i].IsPositive() {
			open++
		} else {
			r.payoffs[i].PaidOff = true
		}
	}

	month := 0
	for open > 0 && month < MaxMonths {
		month++
		for i, d := range ordered {
			if !balances[i].IsPositive() || !d.Monthly.IsPositive() {
				continue
			}
			balances[i] = balances[i].Sub(decimal.Min(d.Monthly, balances[i]))
		}

		pool := extra
		for i, d := range ordered {
			if !pool.IsPositive() {
				break
			}
			if !balances[i].IsPositive() {
				continue
			}
			applied := decimal.Min(pool, balances[i])
			balances[i] = balances[i].Sub(applied)
			pool = pool.Sub(applied)
			if d.RatePct != nil {
				r.interestCut = r.interestCut.Add(applied.Mul(*d.RatePct).Div(decimal.NewFromInt(1200)))
			}
		}

		for i, d := range ordered {
			if r.payoffs[i].PaidOff || balances[i].IsPositive() {
				continue
			}
			r.payoffs[i].PaidOff = true
			r.payoffs[i].Months = month
			r.releases = append(r.releases, Release{Month: month, Name: d.Name, Freed: d.Monthly})
			open--
		}
	}

	r.months = month
	r.diverged = open > 0
	return r
}
