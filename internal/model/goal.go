package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fondo-app/fondo/internal/month"
)

// SavingsGoal is a named savings target with a contribution history.
type SavingsGoal struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Target        decimal.Decimal `json:"targetAmount"`
	Deadline      *month.Month    `json:"deadlineMonth"`
	Progress      decimal.Decimal `json:"progress"`
	Contributions []Contribution  `json:"contributionHistory"`
	Icon          string          `json:"icon,omitempty"`
	Color         string          `json:"color,omitempty"`
}

// Contribution is one recorded payment into a goal.
type Contribution struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Source string          `json:"source"`
}

// Clone returns a copy with its own contribution slice.
func (g SavingsGoal) Clone() SavingsGoal {
	out := g
	if g.Deadline != nil {
		d := *g.Deadline
		out.Deadline = &d
	}
	out.Contributions = append([]Contribution(nil), g.Contributions...)
	return out
}
