package store

import (
	"context"
	"fmt"

	"github.com/fondo-app/fondo/internal/model"
)

const transactionColumns = `id, kind, date, concept, amount, category, envelope_id, fund_linked`

// LoadTransactions returns all transactions ordered by date, then insertion.
func (s *Store) LoadTransactions(ctx context.Context) ([]model.Transaction, error) {
	return loadTransactions(ctx, s.db)
}

// StoreTransaction inserts or updates one transaction.
func (s *Store) StoreTransaction(ctx context.Context, t model.Transaction) error {
	return upsertTransaction(ctx, s.db, t)
}

// RemoveTransaction deletes a transaction. Missing ids are ignored.
func (s *Store) RemoveTransaction(ctx context.Context, txID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, txID); err != nil {
		return fmt.Errorf("remove transaction %s: %w", txID, err)
	}
	return nil
}

// StoreTransactions replaces the full transaction set.
func (s *Store) StoreTransactions(ctx context.Context, txns []model.Transaction) error {
	return s.withTx(ctx, func(q queryer) error {
		return replaceTransactions(ctx, q, txns)
	})
}

func loadTransactions(ctx context.Context, q queryer) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY date, rowid`)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var (
			t          model.Transaction
			kind, date string
			amount     string
			linked     int
		)
		if err := rows.Scan(&t.ID, &kind, &date, &t.Concept, &amount, &t.Category, &t.EnvelopeID, &linked); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = model.TransactionKind(kind)
		t.FundLinked = linked != 0
		if t.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		if t.Amount, err = parseDecimal(amount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return out, nil
}

func upsertTransaction(ctx context.Context, q queryer, t model.Transaction) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   kind = excluded.kind, date = excluded.date, concept = excluded.concept,
		   amount = excluded.amount, category = excluded.category,
		   envelope_id = excluded.envelope_id, fund_linked = excluded.fund_linked`,
		t.ID, string(t.Kind), formatTime(t.Date), t.Concept, t.Amount.String(), t.Category, t.EnvelopeID, boolInt(t.FundLinked))
	if err != nil {
		return fmt.Errorf("store transaction %s: %w", t.ID, err)
	}
	return nil
}

func replaceTransactions(ctx context.Context, q queryer, txns []model.Transaction) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	for _, t := range txns {
		if err := upsertTransaction(ctx, q, t); err != nil {
			return err
		}
	}
	return nil
}
