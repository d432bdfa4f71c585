package goals

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fondo-app/fondo/internal/id"
	"github.com/fondo-app/fondo/internal/model"
	"github.com/fondo-app/fondo/internal/month"
)

var (
	ErrInvalidGoal   = errors.New("invalid goal")
	ErrInvalidAmount = errors.New("invalid amount")
)

// Milestones are the progress percentages worth celebrating.
var Milestones = []int{25, 50, 75, 100}

const (
	defaultIcon  = "🎯"
	defaultColor = "blue"
)

var hundred = decimal.NewFromInt(100)

// New creates a goal with no progress.
func New(name string, target decimal.Decimal, deadline *month.Month) (model.SavingsGoal, error) {
	g := model.SavingsGoal{
		ID:       id.New(id.PrefixGoal),
		Name:     strings.TrimSpace(name),
		Target:   target,
		Deadline: deadline,
		Progress: decimal.Zero,
		Icon:     defaultIcon,
		Color:    defaultColor,
	}
	if err := validate(g); err != nil {
		return model.SavingsGoal{}, err
	}
	return g, nil
}

func validate(g model.SavingsGoal) error {
	if g.Name == "" {
		return fmt.Errorf("name is required: %w", ErrInvalidGoal)
	}
	if !g.Target.IsPositive() {
		return fmt.Errorf("target %s must be positive: %w", g.Target, ErrInvalidGoal)
	}
	return nil
}

// Changes holds editable goal fields. Nil fields are left alone.
type Changes struct {
	Name          *string
	Target        *decimal.Decimal
	Deadline      *month.Month
	ClearDeadline bool
	Icon          *string
	Color         *string
}

// Edit applies changes. Progress and contribution history are never touched.
func Edit(g model.SavingsGoal, c Changes) (model.SavingsGoal, error) {
	out := g.Clone()
	if c.Name != nil {
		out.Name = strings.TrimSpace(*c.Name)
	}
	if c.Target != nil {
		out.Target = *c.Target
	}
	if c.ClearDeadline {
		out.Deadline = nil
	} else if c.Deadline != nil {
		d := *c.Deadline
		out.Deadline = &d
	}
	if c.Icon != nil {
		out.Icon = *c.Icon
	}
	if c.Color != nil {
		out.Color = *c.Color
	}
	if err := validate(out); err != nil {
		return g, err
	}
	return out, nil
}

// Contribute records a payment into the goal.
func Contribute(g model.SavingsGoal, amount decimal.Decimal, source string, at time.Time) (model.SavingsGoal, error) {
	if !amount.IsPositive() {
		return g, fmt.Errorf("contribute %s: %w", amount, ErrInvalidAmount)
	}
	out := g.Clone()
	out.Contributions = append(out.Contributions, model.Contribution{Date: at, Amount: amount, Source: source})
	out.Progress = out.Progress.Add(amount)
	return out, nil
}

// ContributeTo contributes to the goal with the given id. An unknown id
// returns the list unchanged.
func ContributeTo(goals []model.SavingsGoal, goalID string, amount decimal.Decimal, source string, at time.Time) ([]model.SavingsGoal, error) {
	for i, g := range goals {
		if g.ID != goalID {
			continue
		}
		updated, err := Contribute(g, amount, source, at)
		if err != nil {
			return goals, err
		}
		out := append([]model.SavingsGoal(nil), goals...)
		out[i] = updated
		return out, nil
	}
	return goals, nil
}

// Summary is derived goal progress. It is never stored.
type Summary struct {
	Percent         decimal.Decimal
	Remaining       decimal.Decimal
	HasDeadline     bool
	MonthsRemaining int
	RequiredMonthly decimal.Decimal
	Milestones      []int
	Completed       bool
}

// Stats computes progress as of the month containing now. Without a deadline
// there is no required monthly amount.
func Stats(g model.SavingsGoal, now time.Time) Summary {
	s := Summary{
		Percent:         decimal.Zero,
		Remaining:       decimal.Max(decimal.Zero, g.Target.Sub(g.Progress)),
		RequiredMonthly: decimal.Zero,
		Completed:       g.Target.IsPositive() && !g.Progress.LessThan(g.Target),
	}
	if g.Target.IsPositive() {
		s.Percent = decimal.Min(hundred, g.Progress.Div(g.Target).Mul(hundred)).Round(2)
	}
	for _, m := range Milestones {
		if s.Percent.GreaterThanOrEqual(decimal.NewFromInt(int64(m))) {
			s.Milestones = append(s.Milestones, m)
		}
	}

	if g.Deadline == nil {
		return s
	}
	s.HasDeadline = true
	s.MonthsRemaining = max(0, g.Deadline.Sub(month.Of(now)))
	if s.MonthsRemaining > 0 {
		s.RequiredMonthly = s.Remaining.Div(decimal.NewFromInt(int64(s.MonthsRemaining))).Round(2)
	} else {
		s.RequiredMonthly = s.Remaining
	}
	return s
}

// Crossed returns the milestones reached by after that before had not reached.
func Crossed(before, after model.SavingsGoal) []int {
	had := map[int]bool{}
	for _, m := range Stats(before, time.Time{}).Milestones {
		had[m] = true
	}
	var out []int
	for _, m := range Stats(after, time.Time{}).Milestones {
		if !had[m] {
			out = append(out, m)
		}
	}
	return out
}

// Sort orders goals incomplete first, then by percent descending.
func Sort(goals []model.SavingsGoal) []model.SavingsGoal {
	out := append([]model.SavingsGoal(nil), goals...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := Stats(out[i], time.Time{}), Stats(out[j], time.Time{})
		if a.Completed != b.Completed {
			return !a.Completed
		}
		return a.Percent.GreaterThan(b.Percent)
	})
	return out
}
