package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fondo-app/fondo/internal/model"
	"github.com/fondo-app/fondo/internal/month"
)

// CurrentVersion is written by Export. Version 1 was the browser app's backup.
const CurrentVersion = 2

var (
	ErrMissingKey         = errors.New("missing key")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

// Snapshot is everything needed to rebuild the store.
type Snapshot struct {
	Version      int                         `json:"version"`
	ExportedAt   time.Time                   `json:"exportedAt"`
	FundState    model.FundState             `json:"fundState"`
	Transactions []model.Transaction         `json:"transactions"`
	Obligations  []model.RecurringObligation `json:"obligations"`
	Envelopes    model.AllocatorState        `json:"envelopes"`
	Goals        []model.SavingsGoal         `json:"goals"`
	// Settings is only present when the source carried app settings, as
	// legacy backups do.
	Settings *Settings `json:"settings,omitempty"`
}

// Settings are configuration values recovered from a backup.
type Settings struct {
	BaseIncome   decimal.Decimal `json:"baseIncome"`
	CurrentMonth month.Month     `json:"currentMonth"`
}

var requiredKeys = []string{"version", "exportedAt", "fundState", "transactions", "obligations", "envelopes", "goals"}

// Export writes s as indented JSON with the current version.
func Export(w io.Writer, s Snapshot) error {
	s.Version = CurrentVersion
	if s.Transactions == nil {
		s.Transactions = []model.Transaction{}
	}
	if s.Obligations == nil {
		s.Obligations = []model.RecurringObligation{}
	}
	if s.Goals == nil {
		s.Goals = []model.SavingsGoal{}
	}
	if s.Envelopes.Envelopes == nil {
		s.Envelopes.Envelopes = []model.Envelope{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// Import reads a snapshot of any supported version. Legacy backups are
// converted with MigrateLegacy. The result is meant to replace the store
// wholesale; nothing is merged.
func Import(r io.Reader) (Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading snapshot: %w", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Snapshot{}, fmt.Errorf("parsing snapshot: %w", err)
	}

	if isLegacy(top) {
		var doc LegacyBackup
		for _, k := range legacyKeys {
			if _, ok := top[k]; !ok {
				return Snapshot{}, fmt.Errorf("legacy backup: %q: %w", k, ErrMissingKey)
			}
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return Snapshot{}, fmt.Errorf("parsing legacy backup: %w", err)
		}
		return MigrateLegacy(doc)
	}

	for _, k := range requiredKeys {
		if _, ok := top[k]; !ok {
			return Snapshot{}, fmt.Errorf("%q: %w", k, ErrMissingKey)
		}
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("parsing snapshot: %w", err)
	}
	if s.Version != CurrentVersion {
		return Snapshot{}, fmt.Errorf("version %d: %w", s.Version, ErrUnsupportedVersion)
	}
	return s, nil
}

// isLegacy reports whether the document predates numeric versions.
func isLegacy(top map[string]json.RawMessage) bool {
	v, ok := top["version"]
	if !ok {
		return true
	}
	v = bytes.TrimSpace(v)
	return len(v) > 0 && v[0] == '"'
}

// BestMonth returns the latest month that has transactions, or fallback when there are none.
func BestMonth(txns []model.Transaction, fallback month.Month) month.Month {
	var best month.Month
	for _, t := range txns {
		if t.Date.IsZero() {
			continue
		}
		if m := month.Of(t.Date); best.IsZero() || m.Sub(best) > 0 {
			best = m
		}
	}
	if best.IsZero() {
		return fallback
	}
	return best
}
