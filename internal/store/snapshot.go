package store

import (
	"context"
	"fmt"
	"time"

	"github.com/fondo-app/fondo/internal/snapshot"
)

// LoadSnapshot reads everything into one snapshot stamped with now.
func (s *Store) LoadSnapshot(ctx context.Context, now time.Time) (snapshot.Snapshot, error) {
	snap := snapshot.Snapshot{Version: snapshot.CurrentVersion, ExportedAt: now.UTC()}
	var err error
	if snap.FundState, err = loadFund(ctx, s.db); err != nil {
		return snap, err
	}
	if snap.Transactions, err = loadTransactions(ctx, s.db); err != nil {
		return snap, err
	}
	if snap.Obligations, err = loadObligations(ctx, s.db); err != nil {
		return snap, err
	}
	if snap.Envelopes, err = loadEnvelopes(ctx, s.db); err != nil {
		return snap, err
	}
	if snap.Goals, err = loadGoals(ctx, s.db); err != nil {
		return snap, err
	}
	return snap, nil
}

// ReplaceAll overwrites every table with the snapshot's contents in one
// transaction. On error nothing changes.
func (s *Store) ReplaceAll(ctx context.Context, snap snapshot.Snapshot) error {
	err := s.withTx(ctx, func(q queryer) error {
		if err := storeFund(ctx, q, snap.FundState); err != nil {
			return err
		}
		if err := replaceTransactions(ctx, q, snap.Transactions); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM obligations`); err != nil {
			return fmt.Errorf("clear obligations: %w", err)
		}
		for _, o := range snap.Obligations {
			if err := upsertObligation(ctx, q, o); err != nil {
				return err
			}
		}
		if err := storeEnvelopes(ctx, q, snap.Envelopes); err != nil {
			return err
		}
		return storeGoals(ctx, q, snap.Goals)
	})
	if err != nil {
		return err
	}
	s.log.WithField("transactions", len(snap.Transactions)).Info("store replaced from snapshot")
	return nil
}
