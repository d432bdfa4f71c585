package analysis

import (
	"github.com/shopspring/decimal"
)

// Overspend compares what has been spent with income.
type Overspend struct {
	Overspent       bool
	TotalSpent      decimal.Decimal
	Remaining       decimal.Decimal
	PercentOfIncome decimal.Decimal
	Alert           Level
}

// Projection extrapolates the current daily pace to the end of the month.
type Projection struct {
	SpentSoFar     decimal.Decimal
	DailyAverage   decimal.Decimal
	ProjectedTotal decimal.Decimal
	DaysLeft       int
}

func detectOverspend(spent, income decimal.Decimal) Overspend {
	o := Overspend{
		Overspent:       spent.GreaterThan(income),
		TotalSpent:      spent,
		Remaining:       income.Sub(spent),
		PercentOfIncome: spent.Div(income).Mul(hundred),
		Alert:           LevelNormal,
	}
	switch {
	case spent.GreaterThan(income.Mul(criticalShare)):
		o.Alert = LevelCritical
	case spent.GreaterThan(income.Mul(warningShare)):
		o.Alert = LevelWarning
	}
	return o
}

// project returns nil when day is outside 1..daysInMonth.
func project(spent decimal.Decimal, day, daysInMonth int) *Projection {
	if day <= 0 || day > daysInMonth {
		return nil
	}
	daily := spent.Div(decimal.NewFromInt(int64(day)))
	return &Projection{
		SpentSoFar:     spent,
		DailyAverage:   daily,
		ProjectedTotal: daily.Mul(decimal.NewFromInt(int64(daysInMonth))),
		DaysLeft:       daysInMonth - day,
	}
}
