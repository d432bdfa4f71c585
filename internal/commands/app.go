package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fondo-app/fondo/internal/activity"
	"github.com/fondo-app/fondo/internal/classify"
	"github.com/fondo-app/fondo/internal/config"
	"github.com/fondo-app/fondo/internal/envelopes"
	"github.com/fondo-app/fondo/internal/id"
	"github.com/fondo-app/fondo/internal/ledger"
	"github.com/fondo-app/fondo/internal/model"
	"github.com/fondo-app/fondo/internal/store"
)

const dateLayout = "2006-01-02"

// maxSuggestDistance bounds "did you mean" matches.
const maxSuggestDistance = 3

// app is the state shared by every subcommand, filled in by the root
// command's PersistentPreRunE.
type app struct {
	home       string
	cfg        *config.Config
	log        *logrus.Logger
	classifier *classify.Classifier
	now        func() time.Time
}

func (a *app) path(p string) string {
	return config.Resolve(a.home, p)
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, a.path(a.cfg.Storage.Database), a.log)
}

// ledgerState is the book plus the envelopes partitioning its balance.
type ledgerState struct {
	book  ledger.Book
	alloc model.AllocatorState
}

// loadLedger reads the book and envelopes. A database that has never held
// envelopes gets the built-in set.
func loadLedger(ctx context.Context, st *store.Store) (ledgerState, error) {
	b, err := st.LoadBook(ctx)
	if err != nil {
		return ledgerState{}, err
	}
	alloc, err := st.LoadEnvelopes(ctx)
	if err != nil {
		return ledgerState{}, err
	}
	if len(alloc.Envelopes) == 0 {
		alloc = envelopes.NewState(b.Fund.Balance)
	}
	return ledgerState{book: b, alloc: envelopes.Resync(alloc, b.Fund.Balance)}, nil
}

// saveLedger resyncs the envelopes to the book's balance and saves both.
func saveLedger(ctx context.Context, st *store.Store, ls ledgerState) (ledgerState, error) {
	ls.alloc = envelopes.Resync(ls.alloc, ls.book.Fund.Balance)
	if err := st.StoreLedger(ctx, ls.book, ls.alloc); err != nil {
		return ls, err
	}
	return ls, nil
}

// record appends one activity row. A failed write is logged, not returned:
// the mutation it describes has already been committed.
func (a *app) record(action, subject string, amount *decimal.Decimal, balance decimal.Decimal, details string) {
	e := activity.Entry{
		Timestamp: a.now(),
		Action:    action,
		Subject:   subject,
		Balance:   balance.StringFixed(2),
		Details:   details,
	}
	if amount != nil {
		e.Amount = amount.StringFixed(2)
	}
	if err := activity.Append(a.path(a.cfg.Storage.ActivityLog), e); err != nil {
		a.log.WithError(err).Warn("failed to write activity log")
	}
}

// parseAmount accepts "12.50" and the Spanish "12,50".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

// parseDate reads a YYYY-MM-DD flag; empty means today.
func (a *app) parseDate(s string) (time.Time, error) {
	if s == "" {
		y, m, d := a.now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// match resolves ref against records by id, short id or case-insensitive
// name, returning the index or an error suggesting the closest name.
func match(kind, ref string, ids, names []string) (int, error) {
	for i, v := range ids {
		if v == ref || id.Short(v) == ref {
			return i, nil
		}
	}
	for i, n := range names {
		if strings.EqualFold(n, ref) {
			return i, nil
		}
	}
	if s := closest(ref, names); s != "" {
		return -1, fmt.Errorf("unknown %s %q (did you mean %q?)", kind, ref, s)
	}
	return -1, fmt.Errorf("unknown %s %q", kind, ref)
}

func closest(ref string, names []string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, n := range names {
		if d := levenshtein.ComputeDistance(strings.ToLower(ref), strings.ToLower(n)); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

func findEnvelope(s model.AllocatorState, ref string) (model.Envelope, error) {
	ids := make([]string, len(s.Envelopes))
	names := make([]string, len(s.Envelopes))
	for i, e := range s.Envelopes {
		ids[i], names[i] = e.ID, e.Name
	}
	i, err := match("envelope", ref, ids, names)
	if err != nil {
		return model.Envelope{}, err
	}
	return s.Envelopes[i], nil
}

func findGoal(goals []model.SavingsGoal, ref string) (model.SavingsGoal, error) {
	ids := make([]string, len(goals))
	names := make([]string, len(goals))
	for i, g := range goals {
		ids[i], names[i] = g.ID, g.Name
	}
	i, err := match("goal", ref, ids, names)
	if err != nil {
		return model.SavingsGoal{}, err
	}
	return goals[i], nil
}

func findTransaction(txns []model.Transaction, ref string) (model.Transaction, error) {
	ids := make([]string, len(txns))
	for i, t := range txns {
		ids[i] = t.ID
	}
	i, err := match("transaction", ref, ids, nil)
	if err != nil {
		return model.Transaction{}, err
	}
	return txns[i], nil
}

func findObligation(obs []model.RecurringObligation, ref string) (model.RecurringObligation, error) {
	ids := make([]string, len(obs))
	names := make([]string, len(obs))
	for i, o := range obs {
		ids[i], names[i] = o.ID, o.Name
	}
	i, err := match("obligation", ref, ids, names)
	if err != nil {
		return model.RecurringObligation{}, err
	}
	return obs[i], nil
}
