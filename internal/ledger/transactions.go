package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fondo-app/fondo/internal/model"
)

// Record adds a transaction. Expenses are withdrawn from the fund immediately;
// income records are kept for analysis and do not touch the balance.
func Record(b Book, tx model.Transaction) (Book, error) {
	if !tx.Amount.IsPositive() {
		return b, fmt.Errorf("record %s: %w", tx.Amount, ErrInvalidAmount)
	}
	if b.Find(tx.ID) >= 0 {
		return b, fmt.Errorf("transaction %s already exists", tx.ID)
	}
	tx.FundLinked = false
	out := b.clone()
	out.Transactions = append(out.Transactions, tx)
	if !tx.IsExpense() {
		return out, nil
	}
	return Withdraw(out, tx.ID, tx.Amount)
}

// Changes holds the fields to change on a transaction. Nil fields are left alone.
type Changes struct {
	Date     *time.Time
	Concept  *string
	Amount   *decimal.Decimal
	Category *string
}

// Edit applies changes to a transaction, moving the balance by the amount
// difference when it is linked.
func Edit(b Book, txID string, e Changes) (Book, error) {
	i := b.Find(txID)
	if i < 0 {
		return b, nil
	}

	out := b
	if e.Amount != nil {
		var err error
		out, err = AdjustForEdit(b, txID, b.Transactions[i].Amount, *e.Amount)
		if err != nil {
			return b, err
		}
	}
	out = out.clone()

	tx := &out.Transactions[i]
	if e.Date != nil {
		tx.Date = *e.Date
	}
	if e.Concept != nil {
		tx.Concept = *e.Concept
	}
	if e.Amount != nil {
		tx.Amount = *e.Amount
	}
	if e.Category != nil {
		tx.Category = *e.Category
	}
	return out, nil
}

// Delete reverses a linked transaction and removes it.
func Delete(b Book, txID string) Book {
	i := b.Find(txID)
	if i < 0 {
		return b
	}
	out := Reverse(b, txID).clone()
	out.Transactions = append(out.Transactions[:i], out.Transactions[i+1:]...)
	return out
}

// Expected recomputes the balance from history: deposits, minus linked
// expenses, plus every manual correction's delta.
func Expected(b Book) decimal.Decimal {
	total := decimal.Zero
	for _, d := range b.Fund.Deposits {
		total = total.Add(d.Amount)
	}
	for _, t := range b.Transactions {
		if t.FundLinked {
			total = total.Sub(t.Amount)
		}
	}
	for _, a := range b.Fund.Adjustments {
		total = total.Add(a.Delta())
	}
	return total
}
