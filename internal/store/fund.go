package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fondo-app/fondo/internal/ledger"
	"github.com/fondo-app/fondo/internal/model"
)

// LoadFundState reads the fund with its deposit and adjustment history.
func (s *Store) LoadFundState(ctx context.Context) (model.FundState, error) {
	return loadFund(ctx, s.db)
}

// StoreFundState replaces the stored fund.
func (s *Store) StoreFundState(ctx context.Context, f model.FundState) error {
	return s.withTx(ctx, func(q queryer) error {
		return storeFund(ctx, q, f)
	})
}

// LoadBook reads the fund together with all transactions.
func (s *Store) LoadBook(ctx context.Context) (ledger.Book, error) {
	f, err := loadFund(ctx, s.db)
	if err != nil {
		return ledger.Book{}, err
	}
	txns, err := loadTransactions(ctx, s.db)
	if err != nil {
		return ledger.Book{}, err
	}
	return ledger.Book{Fund: f, Transactions: txns}, nil
}

// StoreBook saves the fund and every transaction atomically.
func (s *Store) StoreBook(ctx context.Context, b ledger.Book) error {
	return s.withTx(ctx, func(q queryer) error {
		if err := storeFund(ctx, q, b.Fund); err != nil {
			return err
		}
		return replaceTransactions(ctx, q, b.Transactions)
	})
}

// StoreLedger saves the book and the allocator state in one transaction, so
// the fund balance and the envelope pool never disagree on disk.
func (s *Store) StoreLedger(ctx context.Context, b ledger.Book, alloc model.AllocatorState) error {
	return s.withTx(ctx, func(q queryer) error {
		if err := storeFund(ctx, q, b.Fund); err != nil {
			return err
		}
		if err := replaceTransactions(ctx, q, b.Transactions); err != nil {
			return err
		}
		return storeEnvelopes(ctx, q, alloc)
	})
}

func loadFund(ctx context.Context, q queryer) (model.FundState, error) {
	var (
		f       model.FundState
		balance string
		last    sql.NullString
	)
	err := q.QueryRowContext(ctx, `SELECT balance, last_deposit_date FROM fund_state WHERE id = 1`).Scan(&balance, &last)
	if err != nil {
		return f, fmt.Errorf("load fund state: %w", err)
	}
	if f.Balance, err = parseDecimal(balance); err != nil {
		return f, err
	}
	if last.Valid && last.String != "" {
		t, err := parseTime(last.String)
		if err != nil {
			return f, err
		}
		f.LastDepositDate = &t
	}

	rows, err := q.QueryContext(ctx, `SELECT date, amount FROM deposits ORDER BY seq`)
	if err != nil {
		return f, fmt.Errorf("load deposits: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var date, amount string
		if err := rows.Scan(&date, &amount); err != nil {
			return f, fmt.Errorf("scan deposit: %w", err)
		}
		d := model.Deposit{}
		if d.Date, err = parseTime(date); err != nil {
			return f, err
		}
		if d.Amount, err = parseDecimal(amount); err != nil {
			return f, err
		}
		f.Deposits = append(f.Deposits, d)
	}
	if err := rows.Err(); err != nil {
		return f, fmt.Errorf("load deposits: %w", err)
	}

	adj, err := q.QueryContext(ctx, `SELECT date, previous_balance, new_balance, reason FROM adjustments ORDER BY seq`)
	if err != nil {
		return f, fmt.Errorf("load adjustments: %w", err)
	}
	defer adj.Close()
	for adj.Next() {
		var date, prev, next string
		a := model.Adjustment{}
		if err := adj.Scan(&date, &prev, &next, &a.Reason); err != nil {
			return f, fmt.Errorf("scan adjustment: %w", err)
		}
		if a.Date, err = parseTime(date); err != nil {
			return f, err
		}
		if a.PreviousBalance, err = parseDecimal(prev); err != nil {
			return f, err
		}
		if a.NewBalance, err = parseDecimal(next); err != nil {
			return f, err
		}
		f.Adjustments = append(f.Adjustments, a)
	}
	if err := adj.Err(); err != nil {
		return f, fmt.Errorf("load adjustments: %w", err)
	}
	return f, nil
}

func storeFund(ctx context.Context, q queryer, f model.FundState) error {
	var last sql.NullString
	if f.LastDepositDate != nil {
		last = sql.NullString{String: formatTime(*f.LastDepositDate), Valid: true}
	}
	if _, err := q.ExecContext(ctx,
		`INSERT INTO fund_state (id, balance, last_deposit_date) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET balance = excluded.balance, last_deposit_date = excluded.last_deposit_date`,
		f.Balance.String(), last); err != nil {
		return fmt.Errorf("store fund state: %w", err)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM deposits`); err != nil {
		return fmt.Errorf("clear deposits: %w", err)
	}
	for _, d := range f.Deposits {
		if _, err := q.ExecContext(ctx, `INSERT INTO deposits (date, amount) VALUES (?, ?)`,
			formatTime(d.Date), d.Amount.String()); err != nil {
			return fmt.Errorf("store deposit: %w", err)
		}
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM adjustments`); err != nil {
		return fmt.Errorf("clear adjustments: %w", err)
	}
	for _, a := range f.Adjustments {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO adjustments (date, previous_balance, new_balance, reason) VALUES (?, ?, ?, ?)`,
			formatTime(a.Date), a.PreviousBalance.String(), a.NewBalance.String(), a.Reason); err != nil {
			return fmt.Errorf("store adjustment: %w", err)
		}
	}
	return nil
}
