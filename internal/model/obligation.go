package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ObligationKind classifies a fixed recurring expense.
type ObligationKind string

const (
	ObligationSubscription ObligationKind = "subscription"
	ObligationService      ObligationKind = "service"
	ObligationDebt         ObligationKind = "debt"
	ObligationOther        ObligationKind = "other"
)

// ObligationStatus is the lifecycle state of a recurring obligation.
type ObligationStatus string

const (
	StatusActive ObligationStatus = "active"
	StatusPaused ObligationStatus = "paused"
	StatusEnded  ObligationStatus = "ended"
)

// RecurringObligation is a fixed monthly expense, possibly a debt paid in installments.
type RecurringObligation struct {
	ID                    string           `json:"id"`
	Name                  string           `json:"name"`
	Amount                decimal.Decimal  `json:"amount"`
	DayOfMonth            int              `json:"dayOfMonth"`
	Kind                  ObligationKind   `json:"kind"`
	Status                ObligationStatus `json:"status"`
	Category              string           `json:"category,omitempty"`
	InstallmentsRemaining *int             `json:"installmentsRemaining"`
	InstallmentsTotal     *int             `json:"installmentsTotal"`
	InterestRatePct       *decimal.Decimal `json:"interestRatePct"`
}

// ValidationError describes one problem with a record.
type ValidationError struct {
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

// Validate checks the obligation's field ranges and installment bounds.
func (o RecurringObligation) Validate() []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(o.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Description: "must not be empty"})
	}
	if !o.Amount.IsPositive() {
		errs = append(errs, ValidationError{Field: "amount", Description: fmt.Sprintf("must be positive, got %s", o.Amount)})
	}
	if o.DayOfMonth < 1 || o.DayOfMonth > 31 {
		errs = append(errs, ValidationError{Field: "dayOfMonth", Description: fmt.Sprintf("must be 1-31, got %d", o.DayOfMonth)})
	}

	switch o.Kind {
	case ObligationSubscription, ObligationService, ObligationDebt, ObligationOther:
	default:
		errs = append(errs, ValidationError{Field: "kind", Description: fmt.Sprintf("unknown kind %q", o.Kind)})
	}
	switch o.Status {
	case StatusActive, StatusPaused, StatusEnded:
	default:
		errs = append(errs, ValidationError{Field: "status", Description: fmt.Sprintf("unknown status %q", o.Status)})
	}

	if o.InstallmentsRemaining != nil && *o.InstallmentsRemaining < 0 {
		errs = append(errs, ValidationError{Field: "installmentsRemaining", Description: "must not be negative"})
	}
	if o.InstallmentsRemaining != nil && o.InstallmentsTotal != nil && *o.InstallmentsRemaining > *o.InstallmentsTotal {
		errs = append(errs, ValidationError{
			Field:       "installmentsRemaining",
			Description: fmt.Sprintf("%d exceeds total %d", *o.InstallmentsRemaining, *o.InstallmentsTotal),
		})
	}
	if o.InterestRatePct != nil && o.InterestRatePct.IsNegative() {
		errs = append(errs, ValidationError{Field: "interestRatePct", Description: "must not be negative"})
	}
	return errs
}

// Remaining returns the installments still to pay, or 0 when not tracked.
func (o RecurringObligation) Remaining() int {
	if o.InstallmentsRemaining == nil {
		return 0
	}
	return *o.InstallmentsRemaining
}

// ChargeDay returns the day the obligation is actually charged in a month.
// A day past the end of the month is charged on the last day.
func (o RecurringObligation) ChargeDay(year int, month time.Month) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if o.DayOfMonth > last {
		return last
	}
	return o.DayOfMonth
}
