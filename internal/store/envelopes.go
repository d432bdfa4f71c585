package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fondo-app/fondo/internal/model"
)

// LoadEnvelopes returns the allocator state. A fresh database has no
// envelopes and zero balances.
func (s *Store) LoadEnvelopes(ctx context.Context) (model.AllocatorState, error) {
	return loadEnvelopes(ctx, s.db)
}

// StoreEnvelopes replaces the envelope set and the pool totals.
func (s *Store) StoreEnvelopes(ctx context.Context, st model.AllocatorState) error {
	return s.withTx(ctx, func(q queryer) error {
		return storeEnvelopes(ctx, q, st)
	})
}

func loadEnvelopes(ctx context.Context, q queryer) (model.AllocatorState, error) {
	st := model.AllocatorState{Unassigned: decimal.Zero, FundBalance: decimal.Zero}

	var unassigned, balance string
	err := q.QueryRowContext(ctx, `SELECT unassigned, fund_balance FROM allocator WHERE id = 1`).Scan(&unassigned, &balance)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return st, fmt.Errorf("load allocator: %w", err)
	default:
		if st.Unassigned, err = parseDecimal(unassigned); err != nil {
			return st, err
		}
		if st.FundBalance, err = parseDecimal(balance); err != nil {
			return st, err
		}
	}

	rows, err := q.QueryContext(ctx, `SELECT id, name, color, kind, assigned, spent, custom FROM envelopes ORDER BY position`)
	if err != nil {
		return st, fmt.Errorf("load envelopes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			e                     model.Envelope
			kind, assigned, spent string
			custom                int
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Color, &kind, &assigned, &spent, &custom); err != nil {
			return st, fmt.Errorf("scan envelope: %w", err)
		}
		e.Kind = model.EnvelopeKind(kind)
		e.Custom = custom != 0
		if e.Assigned, err = parseDecimal(assigned); err != nil {
			return st, err
		}
		if e.Spent, err = parseDecimal(spent); err != nil {
			return st, err
		}
		st.Envelopes = append(st.Envelopes, e)
	}
	if err := rows.Err(); err != nil {
		return st, fmt.Errorf("load envelopes: %w", err)
	}
	return st, nil
}

func storeEnvelopes(ctx context.Context, q queryer, st model.AllocatorState) error {
	if _, err := q.ExecContext(ctx,
		`INSERT INTO allocator (id, unassigned, fund_balance) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET unassigned = excluded.unassigned, fund_balance = excluded.fund_balance`,
		st.Unassigned.String(), st.FundBalance.String()); err != nil {
		return fmt.Errorf("store allocator: %w", err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM envelopes`); err != nil {
		return fmt.Errorf("clear envelopes: %w", err)
	}
	for i, e := range st.Envelopes {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO envelopes (id, position, name, color, kind, assigned, spent, custom) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, i, e.Name, e.Color, string(e.Kind), e.Assigned.String(), e.Spent.String(), boolInt(e.Custom)); err != nil {
			return fmt.Errorf("store envelope %s: %w", e.ID, err)
		}
	}
	return nil
}
