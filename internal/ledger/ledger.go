// Package ledger keeps the available-funds balance consistent with deposits,
// fund-linked expenses and manual corrections.
//
// Every function takes a Book by value and returns a new Book; nothing is
// shared between calls. Operations that reference an unknown transaction are
// no-ops: callers may retry or race with a deletion made elsewhere.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fondo-app/fondo/internal/model"
)

// ErrInvalidAmount is returned for a non-positive amount where a positive one is required.
var ErrInvalidAmount = errors.New("invalid amount")

// Book is the fund together with the transactions that can move it.
type Book struct {
	Fund         model.FundState
	Transactions []model.Transaction
}

func (b Book) clone() Book {
	return Book{
		Fund:         b.Fund.Clone(),
		Transactions: append([]model.Transaction(nil), b.Transactions...),
	}
}

// Find returns the index of a transaction, or -1.
func (b Book) Find(txID string) int {
	for i, t := range b.Transactions {
		if t.ID == txID {
			return i
		}
	}
	return -1
}

// Deposit credits an income event to the fund.
func Deposit(b Book, amount decimal.Decimal, date time.Time) (Book, error) {
	if !amount.IsPositive() {
		return b, fmt.Errorf("deposit %s: %w", amount, ErrInvalidAmount)
	}
	out := b.clone()
	out.Fund.Balance = out.Fund.Balance.Add(amount)
	out.Fund.Deposits = append(out.Fund.Deposits, model.Deposit{Date: date, Amount: amount})
	d := date
	out.Fund.LastDepositDate = &d
	return out, nil
}

// Withdraw takes amount out of the fund on behalf of one transaction and marks
// it fund-linked. The balance may go negative. A transaction that is already
// linked is left alone so a retried call cannot charge twice.
func Withdraw(b Book, txID string, amount decimal.Decimal) (Book, error) {
	if !amount.IsPositive() {
		return b, fmt.Errorf("withdraw %s: %w", amount, ErrInvalidAmount)
	}
	i := b.Find(txID)
	if i < 0 || b.Transactions[i].FundLinked {
		return b, nil
	}
	out := b.clone()
	out.Fund.Balance = out.Fund.Balance.Sub(amount)
	out.Transactions[i].FundLinked = true
	return out, nil
}

// Reverse gives a linked transaction's amount back to the fund and clears the link.
func Reverse(b Book, txID string) Book {
	i := b.Find(txID)
	if i < 0 || !b.Transactions[i].FundLinked {
		return b
	}
	out := b.clone()
	out.Fund.Balance = out.Fund.Balance.Add(out.Transactions[i].Amount)
	out.Transactions[i].FundLinked = false
	return out
}

// AdjustForEdit moves the balance by oldAmount-newAmount when the transaction is linked.
// The transaction record itself is not touched.
func AdjustForEdit(b Book, txID string, oldAmount, newAmount decimal.Decimal) (Book, error) {
	if !newAmount.IsPositive() {
		return b, fmt.Errorf("edit amount %s: %w", newAmount, ErrInvalidAmount)
	}
	i := b.Find(txID)
	if i < 0 || !b.Transactions[i].FundLinked {
		return b, nil
	}
	out := b.clone()
	out.Fund.Balance = out.Fund.Balance.Add(oldAmount.Sub(newAmount))
	return out, nil
}

// SetManualBalance overwrites the balance and records the correction.
// It bypasses every other rule on purpose; the adjustment history is the audit trail.
func SetManualBalance(b Book, newBalance decimal.Decimal, reason string, at time.Time) Book {
	out := b.clone()
	out.Fund.Adjustments = append(out.Fund.Adjustments, model.Adjustment{
		Date:            at,
		PreviousBalance: out.Fund.Balance,
		NewBalance:      newBalance,
		Reason:          reason,
	})
	out.Fund.Balance = newBalance
	return out
}
