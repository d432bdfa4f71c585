package classify

import (
	"strings"

	"github.com/fondo-app/fondo/internal/model"
)

// Table holds the keyword lists for each bucket.
type Table struct {
	Needs   []string `toml:"needs"`
	Wants   []string `toml:"wants"`
	Debt    []string `toml:"debt"`
	Savings []string `toml:"savings"`
}

// Classifier matches labels against a lowercased copy of a Table.
// It is safe to share: Classify never mutates it.
type Classifier struct {
	lists []bucket
}

type bucket struct {
	class    model.Classification
	keywords []string
}

// New builds a Classifier from a table. Lists are checked in the order
// debt, needs, wants, savings so "tarjeta de crédito" never lands in wants.
func New(t Table) *Classifier {
	return &Classifier{lists: []bucket{
		{model.Debt, normalize(t.Debt)},
		{model.Needs, normalize(t.Needs)},
		{model.Wants, normalize(t.Wants)},
		{model.Savings, normalize(t.Savings)},
	}}
}

// Default returns a Classifier over DefaultTable.
func Default() *Classifier {
	return New(DefaultTable())
}

// Classify returns the bucket of the first keyword contained in label.
func (c *Classifier) Classify(label string) model.Classification {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return model.Unclassified
	}
	for _, b := range c.lists {
		for _, kw := range b.keywords {
			if strings.Contains(l, kw) {
				return b.class
			}
		}
	}
	return model.Unclassified
}

// IsDebt reports whether label matches a debt keyword.
func (c *Classifier) IsDebt(label string) bool {
	return c.Classify(label) == model.Debt
}

func normalize(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		out = append(out, kw)
	}
	return out
}
