package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/ledgerfall/beanledger/ast"
)

func mustDate(t *testing.T, s string) ast.Date {
	t.Helper()
	d, err := ast.ParseDate(s)
	assert.NoError(t, err)
	return d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBalanceSheetAddAccumulatesWithinSameLot(t *testing.T) {
	b := NewBalanceSheet()
	b.Add("Assets:Cash", "USD", nil, dec("100"))
	b.Add("Assets:Cash", "USD", nil, dec("50"))

	assert.Equal(t, dec("150").String(), b.Total("Assets:Cash", "USD").String())
	assert.Equal(t, 1, len(b.Lots("Assets:Cash", "USD")))
}

func TestBalanceSheetCostLotsAreKeyedByAmountAndDate(t *testing.T) {
	b := NewBalanceSheet()
	d1 := mustDate(t, "2024-01-01")
	d2 := mustDate(t, "2024-02-01")

	lotA := &UnitCost{Amount: ast.Amount{Value: "10", Currency: "USD"}, Date: d1}
	lotB := &UnitCost{Amount: ast.Amount{Value: "12", Currency: "USD"}, Date: d2}

	b.Add("Assets:Brokerage", "AAPL", lotA, dec("5"))
	b.Add("Assets:Brokerage", "AAPL", lotB, dec("3"))

	assert.Equal(t, 2, len(b.Lots("Assets:Brokerage", "AAPL")))
	assert.Equal(t, dec("8").String(), b.Total("Assets:Brokerage", "AAPL").String())

	found := b.FindLot("Assets:Brokerage", "AAPL", lotA)
	assert.True(t, found != nil)
	assert.Equal(t, dec("5").String(), found.Amount.String())
}

func TestBalanceSheetPruneDropsZeroLots(t *testing.T) {
	b := NewBalanceSheet()
	b.Add("Assets:Cash", "USD", nil, dec("100"))
	b.Add("Assets:Cash", "USD", nil, dec("-100"))

	b.Prune()
	assert.Equal(t, 0, len(b.Lots("Assets:Cash", "USD")))
}

func TestBalanceSheetCloneIsIndependent(t *testing.T) {
	b := NewBalanceSheet()
	b.Add("Assets:Cash", "USD", nil, dec("100"))

	clone := b.Clone()
	clone.Add("Assets:Cash", "USD", nil, dec("50"))

	assert.Equal(t, dec("100").String(), b.Total("Assets:Cash", "USD").String())
	assert.Equal(t, dec("150").String(), clone.Total("Assets:Cash", "USD").String())
}

func TestAccountInfoIsOpenAt(t *testing.T) {
	open := mustDate(t, "2024-01-01")
	closeDate := mustDate(t, "2024-06-01")
	info := &AccountInfo{Account: "Assets:Cash", OpenDate: open, CloseDate: &closeDate}

	assert.False(t, info.IsOpenAt(mustDate(t, "2023-12-31")))
	assert.True(t, info.IsOpenAt(mustDate(t, "2024-03-01")))
	assert.False(t, info.IsOpenAt(mustDate(t, "2024-07-01")))
}

func TestAccountInfoAllowsCurrency(t *testing.T) {
	unrestricted := &AccountInfo{Account: "Assets:Cash"}
	assert.True(t, unrestricted.AllowsCurrency("USD"))

	restricted := &AccountInfo{Account: "Assets:Cash", Currencies: map[string]bool{"USD": true}}
	assert.True(t, restricted.AllowsCurrency("USD"))
	assert.False(t, restricted.AllowsCurrency("EUR"))
}
