package ledger

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fondo-app/fondo/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func expense(id, amount string) model.Transaction {
	return model.Transaction{
		ID:       id,
		Kind:     model.KindExpense,
		Date:     date("2024-03-10"),
		Concept:  "Compra " + id,
		Amount:   dec(amount),
		Category: "Supermercado",
	}
}

func TestDeposit(t *testing.T) {
	b, err := Deposit(Book{}, dec("1500"), date("2024-03-01"))
	require.NoError(t, err)

	assert.True(t, dec("1500").Equal(b.Fund.Balance))
	require.Len(t, b.Fund.Deposits, 1)
	require.NotNil(t, b.Fund.LastDepositDate)
	assert.Equal(t, date("2024-03-01"), *b.Fund.LastDepositDate)
}

func TestDeposit_RejectsNonPositive(t *testing.T) {
	start := Book{Fund: model.FundState{Balance: dec("10")}}
	for _, amt := range []string{"0", "-5"} {
		b, err := Deposit(start, dec(amt), date("2024-03-01"))
		assert.True(t, errors.Is(err, ErrInvalidAmount))
		assert.Equal(t, start, b)
	}
}

func TestWithdraw_Overspend(t *testing.T) {
	b := Book{
		Fund:         model.FundState{Balance: dec("50")},
		Transactions: []model.Transaction{expense("tx_1", "100")},
	}

	b, err := Withdraw(b, "tx_1", dec("100"))
	require.NoError(t, err)

	assert.True(t, dec("-50").Equal(b.Fund.Balance))
	assert.True(t, b.Transactions[0].FundLinked)
}

func TestWithdraw_AlreadyLinkedIsNoop(t *testing.T) {
	b := Book{Transactions: []model.Transaction{expense("tx_1", "30")}}
	b, err := Withdraw(b, "tx_1", dec("30"))
	require.NoError(t, err)

	again, err := Withdraw(b, "tx_1", dec("30"))
	require.NoError(t, err)
	assert.True(t, dec("-30").Equal(again.Fund.Balance))
}

func TestWithdraw_UnknownID(t *testing.T) {
	start := Book{Fund: model.FundState{Balance: dec("10")}}
	b, err := Withdraw(start, "tx_missing", dec("5"))
	require.NoError(t, err)
	assert.Equal(t, start, b)
}

func TestReverse(t *testing.T) {
	b := Book{Fund: model.FundState{Balance: dec("100")}, Transactions: []model.Transaction{expense("tx_1", "40")}}
	b, err := Withdraw(b, "tx_1", dec("40"))
	require.NoError(t, err)

	b = Reverse(b, "tx_1")
	assert.True(t, dec("100").Equal(b.Fund.Balance))
	assert.False(t, b.Transactions[0].FundLinked)

	// Unlinked now, so a second reverse changes nothing.
	b = Reverse(b, "tx_1")
	assert.True(t, dec("100").Equal(b.Fund.Balance))
}

func TestAdjustForEdit(t *testing.T) {
	tx := expense("tx_1", "40")
	tx.FundLinked = true
	b := Book{Fund: model.FundState{Balance: dec("60")}, Transactions: []model.Transaction{tx}}

	got, err := AdjustForEdit(b, "tx_1", dec("40"), dec("55"))
	require.NoError(t, err)
	assert.True(t, dec("45").Equal(got.Fund.Balance))

	_, err = AdjustForEdit(b, "tx_1", dec("40"), dec("0"))
	assert.True(t, errors.Is(err, ErrInvalidAmount))

	unlinked := Book{Fund: model.FundState{Balance: dec("60")}, Transactions: []model.Transaction{expense("tx_2", "40")}}
	got, err = AdjustForEdit(unlinked, "tx_2", dec("40"), dec("55"))
	require.NoError(t, err)
	assert.True(t, dec("60").Equal(got.Fund.Balance))
}

func TestSetManualBalance(t *testing.T) {
	b := Book{Fund: model.FundState{Balance: dec("120")}}
	b = SetManualBalance(b, dec("-20"), "bank fee", date("2024-03-05"))
	b = SetManualBalance(b, dec("300"), "recount", date("2024-03-06"))

	assert.True(t, dec("300").Equal(b.Fund.Balance))
	require.Len(t, b.Fund.Adjustments, 2)
	assert.True(t, dec("120").Equal(b.Fund.Adjustments[0].PreviousBalance))
	assert.True(t, dec("-140").Equal(b.Fund.Adjustments[0].Delta()))
	assert.Equal(t, "recount", b.Fund.Adjustments[1].Reason)
}

func TestRecord(t *testing.T) {
	b, err := Deposit(Book{}, dec("200"), date("2024-03-01"))
	require.NoError(t, err)

	b, err = Record(b, expense("tx_1", "75.50"))
	require.NoError(t, err)
	assert.True(t, dec("124.50").Equal(b.Fund.Balance))
	assert.True(t, b.Transactions[0].FundLinked)

	b, err = Record(b, model.Transaction{ID: "tx_2", Kind: model.KindIncome, Amount: dec("500"), Concept: "Extra"})
	require.NoError(t, err)
	assert.True(t, dec("124.50").Equal(b.Fund.Balance), "income records do not move the fund")
	assert.False(t, b.Transactions[1].FundLinked)

	_, err = Record(b, expense("tx_1", "10"))
	assert.Error(t, err, "duplicate id")

	_, err = Record(b, expense("tx_3", "0"))
	assert.True(t, errors.Is(err, ErrInvalidAmount))
}

func TestEdit(t *testing.T) {
	b, err := Record(Book{Fund: model.FundState{Balance: dec("100")}}, expense("tx_1", "30"))
	require.NoError(t, err)

	amount := dec("10")
	concept := "Pan"
	b, err = Edit(b, "tx_1", Changes{Amount: &amount, Concept: &concept})
	require.NoError(t, err)

	assert.True(t, dec("90").Equal(b.Fund.Balance))
	assert.True(t, amount.Equal(b.Transactions[0].Amount))
	assert.Equal(t, "Pan", b.Transactions[0].Concept)
	assert.Equal(t, "Supermercado", b.Transactions[0].Category)
}

func TestEdit_InvalidAmountLeavesBookUnchanged(t *testing.T) {
	start, err := Record(Book{Fund: model.FundState{Balance: dec("100")}}, expense("tx_1", "30"))
	require.NoError(t, err)

	bad := dec("-1")
	concept := "x"
	b, err := Edit(start, "tx_1", Changes{Amount: &bad, Concept: &concept})
	assert.True(t, errors.Is(err, ErrInvalidAmount))
	assert.Equal(t, start, b)
}

func TestDelete(t *testing.T) {
	b, err := Record(Book{Fund: model.FundState{Balance: dec("100")}}, expense("tx_1", "30"))
	require.NoError(t, err)

	b = Delete(b, "tx_1")
	assert.True(t, dec("100").Equal(b.Fund.Balance))
	assert.Empty(t, b.Transactions)

	assert.Equal(t, b, Delete(b, "tx_1"))
}

func TestFunctionsDoNotMutateInput(t *testing.T) {
	start, err := Record(Book{}, expense("tx_1", "30"))
	require.NoError(t, err)
	before := start.clone()

	_ = Delete(start, "tx_1")
	_ = Reverse(start, "tx_1")
	_ = SetManualBalance(start, dec("1"), "", date("2024-01-01"))

	assert.Equal(t, before, start)
}

// Any sequence of ledger operations keeps the balance equal to what the
// history says it should be.
func TestConservation_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	amount := func() decimal.Decimal {
		return decimal.New(rng.Int63n(50000)+1, -2)
	}

	for run := 0; run < 50; run++ {
		b := Book{}
		next := 0
		for step := 0; step < 200; step++ {
			var err error
			pick := func() string {
				if len(b.Transactions) == 0 {
					return "tx_none"
				}
				return b.Transactions[rng.Intn(len(b.Transactions))].ID
			}

			switch rng.Intn(7) {
			case 0:
				b, err = Deposit(b, amount(), date("2024-03-01"))
			case 1:
				next++
				b, err = Record(b, expense(fmt.Sprintf("tx_%d", next), amount().String()))
			case 2:
				id := pick()
				if i := b.Find(id); i >= 0 {
					b, err = Withdraw(b, id, b.Transactions[i].Amount)
				}
			case 3:
				b = Reverse(b, pick())
			case 4:
				a := amount()
				b, err = Edit(b, pick(), Changes{Amount: &a})
			case 5:
				b = Delete(b, pick())
			case 6:
				if rng.Intn(4) == 0 {
					b = SetManualBalance(b, decimal.New(rng.Int63n(200000)-100000, -2), "fix", date("2024-03-02"))
				}
			}
			require.NoError(t, err)
			require.True(t, Expected(b).Equal(b.Fund.Balance),
				"run %d step %d: expected %s, balance %s", run, step, Expected(b), b.Fund.Balance)
		}
	}
}
