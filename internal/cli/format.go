package cli

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount the way the app shows euros:
// 1234.5 -> "1.234,50 €", -15 -> "-15,00 €".
func FormatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if d.IsNegative() && !d.Round(2).IsZero() {
		b.WriteByte('-')
	}
	b.WriteString(groupThousands(intPart))
	b.WriteByte(',')
	b.WriteString(frac)
	b.WriteString(" €")
	return b.String()
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPercent formats a percentage with one decimal: 35.75 -> "35.8%".
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

// FormatSignedPercent is FormatPercent with an explicit plus sign.
func FormatSignedPercent(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + FormatPercent(d)
	}
	return FormatPercent(d)
}
