package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fondo-app/fondo/internal/envelopes"
	"github.com/fondo-app/fondo/internal/id"
	"github.com/fondo-app/fondo/internal/ledger"
	"github.com/fondo-app/fondo/internal/model"
	"github.com/fondo-app/fondo/internal/month"
)

var legacyKeys = []string{"config", "gastosFijos", "gastosVariables", "ingresos"}

// LegacyBackup is the browser app's export format.
type LegacyBackup struct {
	Version         string              `json:"version"`
	Date            string              `json:"fecha"`
	Config          legacyConfig        `json:"config"`
	FixedExpenses   []legacyObligation  `json:"gastosFijos"`
	VariableExpense []legacyTransaction `json:"gastosVariables"`
	Incomes         []legacyTransaction `json:"ingresos"`
}

type legacyConfig struct {
	BaseIncome     *amount         `json:"incomeBase"`
	CurrentMonth   string          `json:"mesActual"`
	Fund           *amount         `json:"fondoDisponible"`
	LastPayroll    *string         `json:"ultimaNomina"`
	PayrollHistory []legacyPayroll `json:"historialNominas"`
}

type legacyPayroll struct {
	Date   string `json:"fecha"`
	Amount amount `json:"cantidad"`
}

type legacyObligation struct {
	ID           flexString `json:"id"`
	Name         string     `json:"nombre"`
	Amount       amount     `json:"cantidad"`
	Day          amount     `json:"diaDelMes"`
	Kind         string     `json:"tipo"`
	Status       string     `json:"estado"`
	Category     string     `json:"categoria"`
	Remaining    *amount    `json:"cuotasRestantes"`
	Total        *amount    `json:"cuotasTotales"`
	InterestRate *amount    `json:"tasaInteres"`
}

type legacyTransaction struct {
	ID       flexString `json:"id"`
	Date     string     `json:"fecha"`
	Concept  string     `json:"concepto"`
	Amount   amount     `json:"cantidad"`
	Category string     `json:"categoria"`
	Kind     string     `json:"tipo"`
	Deducted bool       `json:"deductedFromFund"`
}

// amount accepts a JSON number, a numeric string, an empty string or null.
type amount decimal.Decimal

func (a *amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = amount(decimal.Zero)
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
		if s == "" {
			*a = amount(decimal.Zero)
			return nil
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	*a = amount(d)
	return nil
}

func (a *amount) value() decimal.Decimal {
	if a == nil {
		return decimal.Zero
	}
	return decimal.Decimal(*a)
}

func (a *amount) intPtr() *int {
	if a == nil {
		return nil
	}
	n := int(a.value().IntPart())
	return &n
}

// flexString accepts ids written as strings or numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	*f = flexString(strings.TrimSpace(string(data)))
	return nil
}

var legacyDateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05.000Z"}

func parseLegacyDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range legacyDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

var legacyKinds = map[string]model.ObligationKind{
	"suscripcion": model.ObligationSubscription,
	"suscripción": model.ObligationSubscription,
	"servicio":    model.ObligationService,
	"credito":     model.ObligationDebt,
	"crédito":     model.ObligationDebt,
	"prestamo":    model.ObligationDebt,
	"préstamo":    model.ObligationDebt,
}

var legacyStatuses = map[string]model.ObligationStatus{
	"activo":     model.StatusActive,
	"pausado":    model.StatusPaused,
	"finalizado": model.StatusEnded,
}

// MigrateLegacy converts a browser backup into a current snapshot.
//
// The old app kept only a running balance, so the migrated fund gets one
// adjustment reconciling its history with the stored balance.
func MigrateLegacy(doc LegacyBackup) (Snapshot, error) {
	s := Snapshot{Version: CurrentVersion}
	if t, ok := parseLegacyDate(doc.Date); ok {
		s.ExportedAt = t
	}

	for _, o := range doc.FixedExpenses {
		kind, ok := legacyKinds[strings.ToLower(strings.TrimSpace(o.Kind))]
		if !ok {
			kind = model.ObligationOther
		}
		status, ok := legacyStatuses[strings.ToLower(strings.TrimSpace(o.Status))]
		if !ok {
			status = model.StatusActive
		}
		ob := model.RecurringObligation{
			ID:                    legacyID(id.PrefixObligation, o.ID),
			Name:                  o.Name,
			Amount:                o.Amount.value(),
			DayOfMonth:            int(o.Day.value().IntPart()),
			Kind:                  kind,
			Status:                status,
			Category:              o.Category,
			InstallmentsRemaining: o.Remaining.intPtr(),
			InstallmentsTotal:     o.Total.intPtr(),
		}
		if o.InterestRate != nil {
			r := o.InterestRate.value()
			ob.InterestRatePct = &r
		}
		if errs := ob.Validate(); len(errs) > 0 {
			return Snapshot{}, fmt.Errorf("legacy fixed expense %q: %w", o.Name, errs[0])
		}
		s.Obligations = append(s.Obligations, ob)
	}

	for _, e := range doc.VariableExpense {
		tx, err := legacyTx(e, model.KindExpense)
		if err != nil {
			return Snapshot{}, err
		}
		tx.FundLinked = e.Deducted
		s.Transactions = append(s.Transactions, tx)
	}
	for _, in := range doc.Incomes {
		tx, err := legacyTx(in, model.KindIncome)
		if err != nil {
			return Snapshot{}, err
		}
		s.Transactions = append(s.Transactions, tx)
	}

	s.FundState = legacyFund(doc.Config, s.Transactions)
	s.Envelopes = envelopes.NewState(s.FundState.Balance)

	settings := &Settings{BaseIncome: doc.Config.BaseIncome.value()}
	if m, err := month.Parse(doc.Config.CurrentMonth); err == nil {
		settings.CurrentMonth = m
	}
	settings.CurrentMonth = BestMonth(s.Transactions, settings.CurrentMonth)
	s.Settings = settings
	return s, nil
}

func legacyTx(e legacyTransaction, kind model.TransactionKind) (model.Transaction, error) {
	date, ok := parseLegacyDate(e.Date)
	if !ok {
		return model.Transaction{}, fmt.Errorf("legacy %s %q: invalid date %q", kind, e.Concept, e.Date)
	}
	category := e.Category
	if kind == model.KindIncome && category == "" {
		category = e.Kind
	}
	return model.Transaction{
		ID:       legacyID(id.PrefixTransaction, e.ID),
		Kind:     kind,
		Date:     date,
		Concept:  e.Concept,
		Amount:   e.Amount.value(),
		Category: category,
	}, nil
}

func legacyFund(cfg legacyConfig, txns []model.Transaction) model.FundState {
	balance := cfg.BaseIncome.value()
	if cfg.Fund != nil {
		balance = cfg.Fund.value()
	}

	fund := model.FundState{Balance: decimal.Zero}
	for _, p := range cfg.PayrollHistory {
		date, _ := parseLegacyDate(p.Date)
		fund.Deposits = append(fund.Deposits, model.Deposit{Date: date, Amount: p.Amount.value()})
	}
	if cfg.LastPayroll != nil {
		if t, ok := parseLegacyDate(*cfg.LastPayroll); ok {
			fund.LastDepositDate = &t
		}
	}

	b := ledger.Book{Fund: fund, Transactions: txns}
	expected := ledger.Expected(b)
	b.Fund.Balance = expected
	if !expected.Equal(balance) {
		at := time.Time{}
		if fund.LastDepositDate != nil {
			at = *fund.LastDepositDate
		}
		b = ledger.SetManualBalance(b, balance, "saldo importado", at)
	}
	return b.Fund
}

func legacyID(prefix string, old flexString) string {
	if old == "" {
		return id.New(prefix)
	}
	return prefix + "_" + string(old)
}
