package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind separates money leaving the fund from income records.
type TransactionKind string

const (
	KindExpense TransactionKind = "expense"
	KindIncome  TransactionKind = "income"
)

// Transaction is a variable expense or an income record.
type Transaction struct {
	ID         string          `json:"id"`
	Kind       TransactionKind `json:"kind"`
	Date       time.Time       `json:"date"`
	Concept    string          `json:"concept"`
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category"`
	EnvelopeID string          `json:"envelopeId,omitempty"`
	// FundLinked is set once the amount has been taken out of FundState.Balance.
	FundLinked bool `json:"fundLinked"`
}

// IsExpense reports whether the transaction draws from the fund.
// Records without a kind are treated as expenses.
func (t Transaction) IsExpense() bool {
	return t.Kind == KindExpense || t.Kind == ""
}

// InMonth reports whether the transaction date falls in the given year and month.
func (t Transaction) InMonth(year int, month time.Month) bool {
	return t.Date.Year() == year && t.Date.Month() == month
}
