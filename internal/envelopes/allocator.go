// Package envelopes partitions the fund balance into budget envelopes.
//
// All functions are pure: they take an AllocatorState and return a new one.
// After every successful mutation sum(assigned) + unassigned equals the fund
// balance the state was last synced against, unless the fund itself dropped
// below what was already assigned (see Overcommitted).
package envelopes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fondo-app/fondo/internal/id"
	"github.com/fondo-app/fondo/internal/model"
)

var (
	ErrOverAllocation            = errors.New("assignment exceeds fund balance")
	ErrInsufficientEnvelopeFunds = errors.New("insufficient funds in envelope")
	ErrBuiltinEnvelope           = errors.New("built-in envelopes cannot be deleted")
	ErrImbalanced                = errors.New("envelopes do not add up to fund balance")
	ErrInvalidAmount             = errors.New("invalid amount")
	ErrInvalidName               = errors.New("envelope name is required")
)

// Resync recomputes the unassigned pool for a new fund balance.
func Resync(s model.AllocatorState, fundBalance decimal.Decimal) model.AllocatorState {
	out := s.Clone()
	out.FundBalance = fundBalance
	out.Unassigned = decimal.Max(decimal.Zero, fundBalance.Sub(out.TotalAssigned()))
	return out
}

// Overcommitted returns how much more is assigned than the fund holds, or zero.
func Overcommitted(s model.AllocatorState) decimal.Decimal {
	return decimal.Max(decimal.Zero, s.TotalAssigned().Sub(s.FundBalance))
}

// Check verifies the conservation law.
func Check(s model.AllocatorState) error {
	got := s.TotalAssigned().Add(s.Unassigned)
	if !got.Equal(s.FundBalance) {
		return fmt.Errorf("assigned+unassigned=%s, fund=%s: %w", got.StringFixed(2), s.FundBalance.StringFixed(2), ErrImbalanced)
	}
	return nil
}

// SetAssigned sets one envelope's budget. A raise may not take the other
// envelopes plus the new amount past the fund balance.
func SetAssigned(s model.AllocatorState, envelopeID string, amount decimal.Decimal) (model.AllocatorState, error) {
	if amount.IsNegative() {
		return s, fmt.Errorf("assign %s: %w", amount, ErrInvalidAmount)
	}
	i := s.Find(envelopeID)
	if i < 0 {
		return s, nil
	}
	// Lowering an assignment is always allowed, even while overcommitted.
	others := s.TotalAssigned().Sub(s.Envelopes[i].Assigned)
	if amount.GreaterThan(s.Envelopes[i].Assigned) && others.Add(amount).GreaterThan(s.FundBalance) {
		return s, fmt.Errorf("assign %s to %s with %s already assigned of %s: %w",
			amount.StringFixed(2), envelopeID, others.StringFixed(2), s.FundBalance.StringFixed(2), ErrOverAllocation)
	}
	out := s.Clone()
	out.Envelopes[i].Assigned = amount
	return Resync(out, s.FundBalance), nil
}

// Transfer moves assigned budget between envelopes. Only what is still
// available in the source can move.
func Transfer(s model.AllocatorState, fromID, toID string, amount decimal.Decimal) (model.AllocatorState, error) {
	if !amount.IsPositive() {
		return s, fmt.Errorf("transfer %s: %w", amount, ErrInvalidAmount)
	}
	if fromID == toID {
		return s, nil
	}
	from, to := s.Find(fromID), s.Find(toID)
	if from < 0 || to < 0 {
		return s, nil
	}
	if avail := s.Envelopes[from].Available(); amount.GreaterThan(avail) {
		return s, fmt.Errorf("transfer %s from %s with %s available: %w",
			amount.StringFixed(2), fromID, avail.StringFixed(2), ErrInsufficientEnvelopeFunds)
	}
	out := s.Clone()
	out.Envelopes[from].Assigned = out.Envelopes[from].Assigned.Sub(amount)
	out.Envelopes[to].Assigned = out.Envelopes[to].Assigned.Add(amount)
	return out, nil
}

// RecordSpend adds to an envelope's spent total. Spending past the budget is
// allowed and leaves the envelope exceeded.
func RecordSpend(s model.AllocatorState, envelopeID string, amount decimal.Decimal) (model.AllocatorState, error) {
	if !amount.IsPositive() {
		return s, fmt.Errorf("spend %s: %w", amount, ErrInvalidAmount)
	}
	i := s.Find(envelopeID)
	if i < 0 {
		return s, nil
	}
	out := s.Clone()
	out.Envelopes[i].Spent = out.Envelopes[i].Spent.Add(amount)
	return out, nil
}

// RefundSpend takes amount back off an envelope's spend, as when the expense
// it was charged for is edited down or deleted. Spent never drops below zero.
func RefundSpend(s model.AllocatorState, envelopeID string, amount decimal.Decimal) (model.AllocatorState, error) {
	if !amount.IsPositive() {
		return s, fmt.Errorf("refund %s: %w", amount, ErrInvalidAmount)
	}
	i := s.Find(envelopeID)
	if i < 0 {
		return s, nil
	}
	out := s.Clone()
	out.Envelopes[i].Spent = decimal.Max(decimal.Zero, out.Envelopes[i].Spent.Sub(amount))
	return out, nil
}

// Create adds a custom envelope with nothing assigned and returns its id.
func Create(s model.AllocatorState, name, color string, kind model.EnvelopeKind) (model.AllocatorState, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, "", ErrInvalidName
	}
	if color == "" {
		color = "gray"
	}
	if kind == "" {
		kind = model.EnvelopeVariable
	}
	e := model.Envelope{
		ID:       id.New(id.PrefixEnvelope),
		Name:     name,
		Color:    color,
		Kind:     kind,
		Assigned: decimal.Zero,
		Spent:    decimal.Zero,
		Custom:   true,
	}
	out := s.Clone()
	out.Envelopes = append(out.Envelopes, e)
	return out, e.ID, nil
}

// Delete removes a custom envelope. Released is what was still available in
// it (assigned minus spent); its whole assignment goes back to the pool.
func Delete(s model.AllocatorState, envelopeID string) (out model.AllocatorState, released decimal.Decimal, err error) {
	i := s.Find(envelopeID)
	if i < 0 {
		return s, decimal.Zero, nil
	}
	if !s.Envelopes[i].Custom && !id.IsCustomEnvelope(envelopeID) {
		return s, decimal.Zero, fmt.Errorf("delete %s: %w", envelopeID, ErrBuiltinEnvelope)
	}
	released = s.Envelopes[i].Available()
	out = s.Clone()
	out.Envelopes = append(out.Envelopes[:i], out.Envelopes[i+1:]...)
	return Resync(out, s.FundBalance), released, nil
}

// AutoAllocate assigns the suggested distribution of fundBalance to the
// built-in envelopes. Amounts are floored to cents so they never sum past the
// balance; the rounding remainder stays unassigned.
func AutoAllocate(s model.AllocatorState, fundBalance decimal.Decimal) model.AllocatorState {
	out := s.Clone()
	for i := range out.Envelopes {
		amount := decimal.Zero
		if fundBalance.IsPositive() {
			amount = fundBalance.Mul(Share(out.Envelopes[i].ID)).RoundFloor(2)
		}
		out.Envelopes[i].Assigned = amount
	}
	return Resync(out, fundBalance)
}
