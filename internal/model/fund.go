package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundState is the single pool of money available to spend right now.
type FundState struct {
	Balance         decimal.Decimal `json:"balance"`
	LastDepositDate *time.Time      `json:"lastDepositDate"`
	Deposits        []Deposit       `json:"depositHistory"`
	Adjustments     []Adjustment    `json:"adjustmentHistory"`
}

// Deposit is one income event credited to the fund.
type Deposit struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// Adjustment records a manual balance correction. Adjustments are never pruned.
type Adjustment struct {
	Date            time.Time       `json:"date"`
	PreviousBalance decimal.Decimal `json:"previousBalance"`
	NewBalance      decimal.Decimal `json:"newBalance"`
	Reason          string          `json:"reason"`
}

// Delta is the signed change the adjustment applied to the balance.
func (a Adjustment) Delta() decimal.Decimal {
	return a.NewBalance.Sub(a.PreviousBalance)
}

// Clone returns a deep copy so callers can mutate the result freely.
func (f FundState) Clone() FundState {
	out := f
	if f.LastDepositDate != nil {
		d := *f.LastDepositDate
		out.LastDepositDate = &d
	}
	out.Deposits = append([]Deposit(nil), f.Deposits...)
	out.Adjustments = append([]Adjustment(nil), f.Adjustments...)
	return out
}
