package store

import (
	"context"
	"fmt"

	"github.com/fondo-app/fondo/internal/model"
	"github.com/fondo-app/fondo/internal/month"
)

// LoadGoals returns all savings goals with their contribution history.
func (s *Store) LoadGoals(ctx context.Context) ([]model.SavingsGoal, error) {
	return loadGoals(ctx, s.db)
}

// StoreGoals replaces the goal set.
func (s *Store) StoreGoals(ctx context.Context, goals []model.SavingsGoal) error {
	return s.withTx(ctx, func(q queryer) error {
		return storeGoals(ctx, q, goals)
	})
}

// StoreGoalsAndEnvelopes saves goals and the allocator state in one
// transaction. A contribution drawn from an envelope changes both.
func (s *Store) StoreGoalsAndEnvelopes(ctx context.Context, goals []model.SavingsGoal, alloc model.AllocatorState) error {
	return s.withTx(ctx, func(q queryer) error {
		if err := storeGoals(ctx, q, goals); err != nil {
			return err
		}
		return storeEnvelopes(ctx, q, alloc)
	})
}

func loadGoals(ctx context.Context, q queryer) ([]model.SavingsGoal, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, target, deadline, progress, icon, color FROM goals ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	defer rows.Close()

	var out []model.SavingsGoal
	index := map[string]int{}
	for rows.Next() {
		var (
			g                          model.SavingsGoal
			target, deadline, progress string
		)
		if err := rows.Scan(&g.ID, &g.Name, &target, &deadline, &progress, &g.Icon, &g.Color); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if g.Target, err = parseDecimal(target); err != nil {
			return nil, err
		}
		if g.Progress, err = parseDecimal(progress); err != nil {
			return nil, err
		}
		if deadline != "" {
			m, err := month.Parse(deadline)
			if err != nil {
				return nil, fmt.Errorf("goal %s deadline: %w", g.ID, err)
			}
			g.Deadline = &m
		}
		index[g.ID] = len(out)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}

	// Read after the goal rows are drained; the store holds a single connection.
	contrib, err := q.QueryContext(ctx, `SELECT goal_id, date, amount, source FROM goal_contributions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("load contributions: %w", err)
	}
	defer contrib.Close()
	for contrib.Next() {
		var goalID, date, amount string
		var c model.Contribution
		if err := contrib.Scan(&goalID, &date, &amount, &c.Source); err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		i, ok := index[goalID]
		if !ok {
			continue
		}
		if c.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		if c.Amount, err = parseDecimal(amount); err != nil {
			return nil, err
		}
		out[i].Contributions = append(out[i].Contributions, c)
	}
	if err := contrib.Err(); err != nil {
		return nil, fmt.Errorf("load contributions: %w", err)
	}
	return out, nil
}

func storeGoals(ctx context.Context, q queryer, goals []model.SavingsGoal) error {
	for _, stmt := range []string{`DELETE FROM goal_contributions`, `DELETE FROM goals`} {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear goals: %w", err)
		}
	}
	for i, g := range goals {
		deadline := ""
		if g.Deadline != nil {
			deadline = g.Deadline.String()
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO goals (id, position, name, target, deadline, progress, icon, color) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			g.ID, i, g.Name, g.Target.String(), deadline, g.Progress.String(), g.Icon, g.Color); err != nil {
			return fmt.Errorf("store goal %s: %w", g.ID, err)
		}
		for _, c := range g.Contributions {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO goal_contributions (goal_id, date, amount, source) VALUES (?, ?, ?, ?)`,
				g.ID, formatTime(c.Date), c.Amount.String(), c.Source); err != nil {
				return fmt.Errorf("store contribution for %s: %w", g.ID, err)
			}
		}
	}
	return nil
}
