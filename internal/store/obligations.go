package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fondo-app/fondo/internal/model"
)

const obligationColumns = `id, name, amount, day_of_month, kind, status, category,
	installments_remaining, installments_total, interest_rate_pct`

// LoadObligations returns all recurring obligations by charge day.
func (s *Store) LoadObligations(ctx context.Context) ([]model.RecurringObligation, error) {
	return loadObligations(ctx, s.db)
}

// StoreObligation inserts or updates one obligation.
func (s *Store) StoreObligation(ctx context.Context, o model.RecurringObligation) error {
	return upsertObligation(ctx, s.db, o)
}

// RemoveObligation deletes an obligation. Missing ids are ignored.
func (s *Store) RemoveObligation(ctx context.Context, obID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM obligations WHERE id = ?`, obID); err != nil {
		return fmt.Errorf("remove obligation %s: %w", obID, err)
	}
	return nil
}

func loadObligations(ctx context.Context, q queryer) ([]model.RecurringObligation, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+obligationColumns+` FROM obligations ORDER BY day_of_month, rowid`)
	if err != nil {
		return nil, fmt.Errorf("load obligations: %w", err)
	}
	defer rows.Close()

	var out []model.RecurringObligation
	for rows.Next() {
		var (
			o                model.RecurringObligation
			amount           string
			kind, status     string
			remaining, total sql.NullInt64
			rate             sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.Name, &amount, &o.DayOfMonth, &kind, &status, &o.Category,
			&remaining, &total, &rate); err != nil {
			return nil, fmt.Errorf("scan obligation: %w", err)
		}
		o.Kind = model.ObligationKind(kind)
		o.Status = model.ObligationStatus(status)
		if o.Amount, err = parseDecimal(amount); err != nil {
			return nil, err
		}
		o.InstallmentsRemaining = intPtr(remaining)
		o.InstallmentsTotal = intPtr(total)
		if rate.Valid {
			r, err := parseDecimal(rate.String)
			if err != nil {
				return nil, err
			}
			o.InterestRatePct = &r
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load obligations: %w", err)
	}
	return out, nil
}

func upsertObligation(ctx context.Context, q queryer, o model.RecurringObligation) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO obligations (`+obligationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name, amount = excluded.amount, day_of_month = excluded.day_of_month,
		   kind = excluded.kind, status = excluded.status, category = excluded.category,
		   installments_remaining = excluded.installments_remaining,
		   installments_total = excluded.installments_total,
		   interest_rate_pct = excluded.interest_rate_pct`,
		o.ID, o.Name, o.Amount.String(), o.DayOfMonth, string(o.Kind), string(o.Status), o.Category,
		nullInt(o.InstallmentsRemaining), nullInt(o.InstallmentsTotal), nullDecimal(o.InterestRatePct))
	if err != nil {
		return fmt.Errorf("store obligation %s: %w", o.ID, err)
	}
	return nil
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
