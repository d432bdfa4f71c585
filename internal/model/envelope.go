package model

import "github.com/shopspring/decimal"

// EnvelopeKind groups envelopes by the purpose of the money they hold.
type EnvelopeKind string

const (
	EnvelopeFixed    EnvelopeKind = "fixed"
	EnvelopeVariable EnvelopeKind = "variable"
	EnvelopeSavings  EnvelopeKind = "savings"
	EnvelopeDebt     EnvelopeKind = "debt"
)

// Envelope is a named slice of the fund with an assigned budget and tracked spend.
type Envelope struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Color    string          `json:"color"`
	Kind     EnvelopeKind    `json:"kind"`
	Assigned decimal.Decimal `json:"assigned"`
	Spent    decimal.Decimal `json:"spent"`
	Custom   bool            `json:"custom"`
}

// Available is assigned minus spent. Negative means the envelope is exceeded.
func (e Envelope) Available() decimal.Decimal {
	return e.Assigned.Sub(e.Spent)
}

// Exceeded reports whether spend has gone past the assigned budget.
func (e Envelope) Exceeded() bool {
	return e.Available().IsNegative()
}

// AllocatorState is the full set of envelopes plus the unassigned pool.
type AllocatorState struct {
	Envelopes   []Envelope      `json:"envelopes"`
	Unassigned  decimal.Decimal `json:"unassignedMoney"`
	FundBalance decimal.Decimal `json:"fundBalance"`
}

// TotalAssigned sums Assigned across all envelopes.
func (s AllocatorState) TotalAssigned() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.Envelopes {
		total = total.Add(e.Assigned)
	}
	return total
}

// Find returns the index of the envelope with the given id, or -1.
func (s AllocatorState) Find(id string) int {
	for i, e := range s.Envelopes {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy whose envelope slice can be mutated independently.
func (s AllocatorState) Clone() AllocatorState {
	out := s
	out.Envelopes = append([]Envelope(nil), s.Envelopes...)
	return out
}
