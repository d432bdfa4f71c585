package envelopes

import (
	"github.com/shopspring/decimal"

	"github.com/fondo-app/fondo/internal/model"
)

// Built-in envelope ids.
const (
	Needs            = "needs"
	Food             = "food"
	Transport        = "transport"
	Leisure          = "leisure"
	EmergencyFund    = "emergency_fund"
	ExtraDebtPayment = "extra_debt_payment"
	Other            = "other"
)

type builtin struct {
	id    string
	name  string
	color string
	kind  model.EnvelopeKind
	share string
}

// Order matters: it is the display order and the order AutoAllocate walks.
var builtins = []builtin{
	{Needs, "Necesidades básicas", "blue", model.EnvelopeFixed, "0.50"},
	{Food, "Alimentación", "green", model.EnvelopeVariable, "0.15"},
	{Transport, "Transporte", "purple", model.EnvelopeVariable, "0.10"},
	{Leisure, "Ocio", "yellow", model.EnvelopeVariable, "0.10"},
	{EmergencyFund, "Fondo de emergencia", "emerald", model.EnvelopeSavings, "0.10"},
	{ExtraDebtPayment, "Pago extra deudas", "red", model.EnvelopeDebt, "0.05"},
	{Other, "Otros", "gray", model.EnvelopeVariable, "0"},
}

// Colors lists the accepted envelope colors.
var Colors = []string{"blue", "green", "purple", "yellow", "red", "emerald", "orange", "pink", "gray"}

// Defaults returns the built-in envelopes with nothing assigned.
func Defaults() []model.Envelope {
	out := make([]model.Envelope, 0, len(builtins))
	for _, b := range builtins {
		out = append(out, model.Envelope{
			ID:       b.id,
			Name:     b.name,
			Color:    b.color,
			Kind:     b.kind,
			Assigned: decimal.Zero,
			Spent:    decimal.Zero,
		})
	}
	return out
}

// Share returns the fraction of the fund AutoAllocate gives an envelope.
// Custom envelopes get nothing.
func Share(envelopeID string) decimal.Decimal {
	for _, b := range builtins {
		if b.id == envelopeID {
			return decimal.RequireFromString(b.share)
		}
	}
	return decimal.Zero
}

// NewState returns the default envelope set resynced against a fund balance.
func NewState(fundBalance decimal.Decimal) model.AllocatorState {
	return Resync(model.AllocatorState{Envelopes: Defaults()}, fundBalance)
}
