package model

import "fmt"

// Classification is the budgeting bucket a category label falls into.
type Classification int

const (
	Unclassified Classification = iota
	Needs
	Wants
	Debt
	Savings
)

var classificationNames = map[Classification]string{
	Unclassified: "unclassified",
	Needs:        "needs",
	Wants:        "wants",
	Debt:         "debt",
	Savings:      "savings",
}

func (c Classification) String() string {
	if name, ok := classificationNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Classification(%d)", int(c))
}

// ParseClassification is the inverse of String.
func ParseClassification(s string) (Classification, error) {
	for c, name := range classificationNames {
		if name == s {
			return c, nil
		}
	}
	return Unclassified, fmt.Errorf("unknown classification %q", s)
}
