package analysis

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fondo-app/fondo/internal/model"
)

// ErrInvalidInput is returned when the analyzer arguments are malformed.
var ErrInvalidInput = errors.New("invalid input")

var (
	hundred       = decimal.NewFromInt(100)
	savingsFloor  = decimal.RequireFromString("0.10")
	criticalShare = decimal.RequireFromString("0.95")
	warningShare  = decimal.RequireFromString("0.85")
)

// Classifier maps a category label to a bucket.
type Classifier interface {
	Classify(label string) model.Classification
}

// Item is one amount to analyze.
type Item struct {
	Category string
	Amount   decimal.Decimal
}

// Model is a target percentage split. Debt is zero in the plain 50/30/20 model.
type Model struct {
	Needs   decimal.Decimal `yaml:"needs"`
	Wants   decimal.Decimal `yaml:"wants"`
	Debt    decimal.Decimal `yaml:"debt"`
	Savings decimal.Decimal `yaml:"savings"`
}

// StandardModel is the 50/30/20 split.
func StandardModel() Model {
	return Model{
		Needs:   decimal.NewFromInt(50),
		Wants:   decimal.NewFromInt(30),
		Savings: decimal.NewFromInt(20),
	}
}

// DebtModel is the split used while any debt is being paid.
func DebtModel() Model {
	return Model{
		Needs:   decimal.NewFromInt(50),
		Wants:   decimal.NewFromInt(20),
		Debt:    decimal.NewFromInt(30),
		Savings: decimal.NewFromInt(10),
	}
}

// Options tunes an analysis. The zero value selects the built-in models and skips projection.
type Options struct {
	// Standard and WithDebt override the built-in target models when non-nil.
	Standard *Model
	WithDebt *Model
	// Day and DaysInMonth enable the month-end projection.
	Day         int
	DaysInMonth int
}

// Bucket is the total and share of income for one classification.
type Bucket struct {
	Total   decimal.Decimal
	Percent decimal.Decimal
}

// Comparison is one bucket measured against its target.
type Comparison struct {
	Real        decimal.Decimal
	Recommended decimal.Decimal
	Deviation   decimal.Decimal
}

// Result is the full distribution analysis. It is never persisted.
type Result struct {
	Income       decimal.Decimal
	Needs        Bucket
	Wants        Bucket
	Debt         Bucket
	Savings      Bucket
	Unclassified Bucket

	Model       Model
	Comparison  map[model.Classification]Comparison
	Suggestions []Suggestion

	AvailableNow decimal.Decimal
	SpendableNow decimal.Decimal

	Overspend  Overspend
	Projection *Projection
	ItemCount  int
}

// Analyze classifies items, derives savings as the residual of income and
// compares every bucket with the target model.
// Items classified as savings are ignored: savings is always the residual.
func Analyze(c Classifier, income decimal.Decimal, items []Item, opts Options) (Result, error) {
	if !income.IsPositive() {
		return Result{}, fmt.Errorf("monthly income must be positive, got %s: %w", income, ErrInvalidInput)
	}

	totals := map[model.Classification]decimal.Decimal{}
	for _, it := range items {
		class := c.Classify(it.Category)
		if class == model.Savings {
			continue
		}
		totals[class] = totals[class].Add(it.Amount)
	}

	spent := totals[model.Needs].Add(totals[model.Wants]).Add(totals[model.Debt]).Add(totals[model.Unclassified])
	savings := decimal.Max(decimal.Zero, income.Sub(spent))

	res := Result{
		Income:       income,
		Needs:        bucketOf(totals[model.Needs], income),
		Wants:        bucketOf(totals[model.Wants], income),
		Debt:         bucketOf(totals[model.Debt], income),
		Savings:      bucketOf(savings, income),
		Unclassified: bucketOf(totals[model.Unclassified], income),
		ItemCount:    len(items),
	}

	res.Model = selectModel(totals[model.Debt].IsPositive(), opts)
	res.Comparison = map[model.Classification]Comparison{
		model.Needs:   compare(res.Needs.Percent, res.Model.Needs),
		model.Wants:   compare(res.Wants.Percent, res.Model.Wants),
		model.Debt:    compare(res.Debt.Percent, res.Model.Debt),
		model.Savings: compare(res.Savings.Percent, res.Model.Savings),
	}
	res.Suggestions = suggest(res.Comparison, income)

	res.AvailableNow = income.Sub(spent)
	res.SpendableNow = res.AvailableNow.Sub(income.Mul(savingsFloor))

	res.Overspend = detectOverspend(spent, income)
	res.Projection = project(spent, opts.Day, opts.DaysInMonth)

	return res, nil
}

func bucketOf(total, income decimal.Decimal) Bucket {
	return Bucket{Total: total, Percent: total.Div(income).Mul(hundred)}
}

func compare(actual, recommended decimal.Decimal) Comparison {
	return Comparison{Real: actual, Recommended: recommended, Deviation: actual.Sub(recommended)}
}

func selectModel(hasDebt bool, opts Options) Model {
	if hasDebt {
		if opts.WithDebt != nil {
			return *opts.WithDebt
		}
		return DebtModel()
	}
	if opts.Standard != nil {
		return *opts.Standard
	}
	return StandardModel()
}
