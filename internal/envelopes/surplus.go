package envelopes

import (
	"github.com/shopspring/decimal"

	"github.com/fondo-app/fondo/internal/model"
)

// DefaultSurplusThreshold is the available amount above which an envelope is
// suggested as a source for goal contributions.
var DefaultSurplusThreshold = decimal.NewFromInt(10)

// Surplus is money left in an envelope that could go to a savings goal.
type Surplus struct {
	EnvelopeID string
	Name       string
	Available  decimal.Decimal
}

// Surpluses lists non-savings envelopes whose available amount exceeds threshold.
func Surpluses(s model.AllocatorState, threshold decimal.Decimal) []Surplus {
	var out []Surplus
	for _, e := range s.Envelopes {
		if e.Kind == model.EnvelopeSavings {
			continue
		}
		if avail := e.Available(); avail.GreaterThan(threshold) {
			out = append(out, Surplus{EnvelopeID: e.ID, Name: e.Name, Available: avail})
		}
	}
	return out
}
