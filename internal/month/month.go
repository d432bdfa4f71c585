package month

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Month is a calendar month without a day component.
type Month struct {
	Year  int
	Month time.Month
}

// Of returns the month containing t.
func Of(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Parse parses "2025-01" into a Month.
func Parse(s string) (Month, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return Month{}, fmt.Errorf("invalid month format: %q", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Month{}, fmt.Errorf("invalid year in month %q: %w", s, err)
	}

	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return Month{}, fmt.Errorf("invalid month in month %q: %w", s, err)
	}
	if m < 1 || m > 12 {
		return Month{}, fmt.Errorf("month %d out of range in %q", m, s)
	}

	return Month{Year: year, Month: time.Month(m)}, nil
}

// String returns the "YYYY-MM" key.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Sub returns the number of whole months from other to m.
// "2025-06".Sub("2025-01") == 5.
func (m Month) Sub(other Month) int {
	return (m.Year-other.Year)*12 + int(m.Month) - int(other.Month)
}

// Add returns the month n months after m.
func (m Month) Add(n int) Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return Of(t)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Contains reports whether t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

// MarshalJSON encodes the month as its "YYYY-MM" key, or "" when zero.
func (m Month) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a "YYYY-MM" key.
func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding month: %w", err)
	}
	if s == "" {
		*m = Month{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
