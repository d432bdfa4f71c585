package analysis

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fondo-app/fondo/internal/model"
	"github.com/fondo-app/fondo/internal/month"
)

// Items builds analyzer input for a month: every active obligation plus the
// expenses dated in that month. Obligations without a category, and every
// debt, are labeled by kind so the classifier sees them as such.
func Items(obligations []model.RecurringObligation, txns []model.Transaction, m month.Month) []Item {
	var items []Item
	for _, o := range obligations {
		if o.Status != model.StatusActive {
			continue
		}
		label := o.Category
		if label == "" || o.Kind == model.ObligationDebt {
			label = strings.TrimSpace(obligationLabel(o) + " " + o.Category)
		}
		items = append(items, Item{Category: label, Amount: o.Amount})
	}
	for _, t := range txns {
		if !t.IsExpense() || !m.Contains(t.Date) {
			continue
		}
		label := t.Category
		if label == "" {
			label = "General"
		}
		items = append(items, Item{Category: label, Amount: t.Amount})
	}
	return items
}

// MonthlyIncome is the base income plus income records dated in the month.
func MonthlyIncome(base decimal.Decimal, txns []model.Transaction, m month.Month) decimal.Decimal {
	total := base
	for _, t := range txns {
		if t.Kind == model.KindIncome && m.Contains(t.Date) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// obligationLabel maps a kind to a label the default keyword table recognizes.
func obligationLabel(o model.RecurringObligation) string {
	switch o.Kind {
	case model.ObligationDebt:
		return "Deuda " + o.Name
	case model.ObligationSubscription:
		return "Suscripción " + o.Name
	case model.ObligationService:
		return "Servicios " + o.Name
	default:
		return o.Name
	}
}
