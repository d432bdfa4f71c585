package classify

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LoadTable reads a TOML keyword table. A missing file yields DefaultTable.
// Buckets left out of the file also fall back to their defaults.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultTable(), nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("reading keyword table: %w", err)
	}

	var t Table
	if _, err := toml.Decode(string(data), &t); err != nil {
		return Table{}, fmt.Errorf("parsing keyword table: %w", err)
	}

	def := DefaultTable()
	if t.Needs == nil {
		t.Needs = def.Needs
	}
	if t.Wants == nil {
		t.Wants = def.Wants
	}
	if t.Debt == nil {
		t.Debt = def.Debt
	}
	if t.Savings == nil {
		t.Savings = def.Savings
	}
	return t, nil
}

// SaveTable writes a keyword table as TOML.
func SaveTable(path string, t Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating keyword table dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating keyword table: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(t); err != nil {
		return fmt.Errorf("encoding keyword table: %w", err)
	}
	return nil
}
