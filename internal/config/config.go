package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/fondo-app/fondo/internal/analysis"
	"github.com/fondo-app/fondo/internal/debt"
	"github.com/fondo-app/fondo/internal/month"
)

// FileName is the config file inside the data directory.
const FileName = "fondo.yaml"

// HomeEnv overrides the default data directory.
const HomeEnv = "FONDO_HOME"

// Config represents the top-level fondo.yaml configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Budget  BudgetConfig  `yaml:"budget"`
	Targets TargetsConfig `yaml:"targets,omitempty"`
	Debt    DebtConfig    `yaml:"debt"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig locates data files. Relative paths are relative to the data directory.
type StorageConfig struct {
	Database    string `yaml:"database"`
	Keywords    string `yaml:"keywords"`
	ActivityLog string `yaml:"activity_log"`
}

// BudgetConfig holds the monthly income baseline and analysis settings.
type BudgetConfig struct {
	BaseIncome       decimal.Decimal `yaml:"base_income"`
	CurrentMonth     string          `yaml:"current_month,omitempty"` // "YYYY-MM"; empty means the calendar month
	SurplusThreshold decimal.Decimal `yaml:"surplus_threshold"`
}

// TargetsConfig overrides the recommended distributions. Nil keeps the built-in model.
type TargetsConfig struct {
	Standard *analysis.Model `yaml:"standard,omitempty"`
	WithDebt *analysis.Model `yaml:"with_debt,omitempty"`
}

// DebtConfig sets payoff simulation defaults.
type DebtConfig struct {
	Strategy string `yaml:"strategy"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a fondo.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new data directory.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Database:    "fondo.db",
			Keywords:    "keywords.toml",
			ActivityLog: filepath.Join("logs", "activity.csv"),
		},
		Budget: BudgetConfig{
			BaseIncome:       decimal.Zero,
			SurplusThreshold: decimal.NewFromInt(10),
		},
		Debt: DebtConfig{Strategy: string(debt.Snowball)},
		Log:  LogConfig{Level: "info"},
	}
}

// Validate reports every problem in the config at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Budget.BaseIncome.IsNegative() {
		errs = append(errs, fmt.Errorf("budget.base_income: must not be negative, got %s", c.Budget.BaseIncome))
	}
	if c.Budget.SurplusThreshold.IsNegative() {
		errs = append(errs, fmt.Errorf("budget.surplus_threshold: must not be negative, got %s", c.Budget.SurplusThreshold))
	}
	if c.Budget.CurrentMonth != "" {
		if _, err := month.Parse(c.Budget.CurrentMonth); err != nil {
			errs = append(errs, fmt.Errorf("budget.current_month: %w", err))
		}
	}
	for name, m := range map[string]*analysis.Model{"standard": c.Targets.Standard, "with_debt": c.Targets.WithDebt} {
		if m == nil {
			continue
		}
		for _, v := range []decimal.Decimal{m.Needs, m.Wants, m.Debt, m.Savings} {
			if v.IsNegative() {
				errs = append(errs, fmt.Errorf("targets.%s: percentages must not be negative", name))
				break
			}
		}
	}
	if _, err := debt.ParseStrategy(c.Debt.Strategy); err != nil {
		errs = append(errs, fmt.Errorf("debt.strategy: %w", err))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// Month returns the configured current month, or the month containing now.
func (c *Config) Month(now time.Time) (month.Month, error) {
	if c.Budget.CurrentMonth == "" {
		return month.Of(now), nil
	}
	return month.Parse(c.Budget.CurrentMonth)
}

// AnalysisOptions builds analyzer options from the target overrides.
func (c *Config) AnalysisOptions() analysis.Options {
	return analysis.Options{Standard: c.Targets.Standard, WithDebt: c.Targets.WithDebt}
}

// Resolve makes p absolute relative to home.
func Resolve(home, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(home, p)
}

// Home picks the data directory: the flag value, then $FONDO_HOME, then ~/.fondo.
func Home(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(HomeEnv); env != "" {
		return filepath.Abs(env)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".fondo"), nil
}

// LoadDotEnv loads variables from a .env file without overriding ones already
// set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
