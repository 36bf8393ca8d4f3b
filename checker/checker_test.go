package checker

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/ledgerfall/beanledger/ast"
	"github.com/ledgerfall/beanledger/draft"
)

func mustDate(t *testing.T, s string) ast.Date {
	t.Helper()
	d, err := ast.ParseDate(s)
	assert.NoError(t, err)
	return d
}

func buildDraft(t *testing.T, directives ...ast.Directive) *draft.LedgerDraft {
	t.Helper()
	return draft.FromAST(&ast.AST{Directives: directives}, "test.beancount")
}

func TestCheckBalancedTransactionProducesOneTxn(t *testing.T) {
	open := mustDate(t, "2024-01-01")
	txnDate := mustDate(t, "2024-01-02")

	d := buildDraft(t,
		&ast.Open{Date: open, Account: "Assets:Cash"},
		&ast.Open{Date: open, Account: "Equity:Opening"},
		&ast.Transaction{Date: txnDate, Flag: "*", Narration: "Opening balance", Postings: []*ast.Posting{
			{Account: "Assets:Cash", Amount: &ast.Amount{Value: "100", Currency: "USD"}},
			{Account: "Equity:Opening", Amount: &ast.Amount{Value: "-100", Currency: "USD"}},
		}},
	)

	l, diags := Check(d)
	assert.Equal(t, 0, len(diags))
	assert.Equal(t, 1, len(l.Txns()))
	assert.Equal(t, 2, len(l.Txns()[0].Postings))
}

func TestCheckInfersOmittedPostingAmount(t *testing.T) {
	open := mustDate(t, "2024-01-01")
	txnDate := mustDate(t, "2024-01-02")

	d := buildDraft(t,
		&ast.Open{Date: open, Account: "Assets:Cash"},
		&ast.Open{Date: open, Account: "Equity:Opening"},
		&ast.Transaction{Date: txnDate, Flag: "*", Narration: "Opening balance", Postings: []*ast.Posting{
			{Account: "Assets:Cash", Amount: &ast.Amount{Value: "100", Currency: "USD"}},
			{Account: "Equity:Opening"},
		}},
	)

	l, diags := Check(d)
	assert.Equal(t, 0, len(diags))
	assert.Equal(t, 1, len(l.Txns()))

	txn := l.Txns()[0]
	assert.Equal(t, 2, len(txn.Postings))
	for _, p := range txn.Postings {
		if p.Account == "Equity:Opening" {
			assert.Equal(t, "-100", p.Amount.Value)
		}
	}
}

func TestCheckUnbalancedTransactionReportsNotBalanced(t *testing.T) {
	open := mustDate(t, "2024-01-01")
	txnDate := mustDate(t, "2024-01-02")

	d := buildDraft(t,
		&ast.Open{Date: open, Account: "Assets:Cash"},
		&ast.Open{Date: open, Account: "Equity:Opening"},
		&ast.Transaction{Date: txnDate, Flag: "*", Narration: "Broken", Postings: []*ast.Posting{
			{Account: "Assets:Cash", Amount: &ast.Amount{Value: "100", Currency: "USD"}},
			{Account: "Equity:Opening", Amount: &ast.Amount{Value: "-90", Currency: "USD"}},
		}},
	)

	l, diags := Check(d)
	assert.Equal(t, 0, len(l.Txns()))
	assert.Equal(t, 1, len(diags))
}

func TestCheckBalanceAssertionWithoutPadFails(t *testing.T) {
	open := mustDate(t, "2024-01-01")
	balDate := mustDate(t, "2024-01-05")

	d := buildDraft(t,
		&ast.Open{Date: open, Account: "Assets:Cash"},
		&ast.Balance{Date: balDate, Account: "Assets:Cash", Amount: &ast.Amount{Value: "50", Currency: "USD"}},
	)

	l, diags := Check(d)
	assert.Equal(t, 0, len(l.Txns()))
	assert.Equal(t, 1, len(diags))
}

func TestCheckPadRealizesOnFailedBalanceAssertion(t *testing.T) {
	open := mustDate(t, "2024-01-01")
	padDate := mustDate(t, "2024-01-02")
	balDate := mustDate(t, "2024-01-05")

	d := buildDraft(t,
		&ast.Open{Date: open, Account: "Assets:Cash"},
		&ast.Open{Date: open, Account: "Equity:Opening"},
		&ast.Pad{Date: padDate, Account: "Assets:Cash", AccountPad: "Equity:Opening"},
		&ast.Balance{Date: balDate, Account: "Assets:Cash", Amount: &ast.Amount{Value: "100", Currency: "USD"}},
	)

	l, diags := Check(d)
	assert.Equal(t, 0, len(diags))
	assert.Equal(t, 2, len(l.Txns()))

	pad := l.Txns()[0]
	assert.Equal(t, 2, len(pad.Postings))

	bal := l.Txns()[1]
	assert.Equal(t, 1, len(bal.Postings))
}

func TestCheckOpensAndClosesCostLotWithPerUnitCost(t *testing.T) {
	open := mustDate(t, "2024-01-01")
	buyDate := mustDate(t, "2024-01-10")
	sellDate := mustDate(t, "2024-01-15")

	d := buildDraft(t,
		&ast.Open{Date: open, Account: "Assets:Brokerage"},
		&ast.Open{Date: open, Account: "Assets:Cash"},
		&ast.Transaction{Date: buyDate, Flag: "*", Narration: "Buy", Postings: []*ast.Posting{
			{Account: "Assets:Brokerage", Amount: &ast.Amount{Value: "10", Currency: "FOO"},
				Cost: &ast.Cost{Amount: &ast.Amount{Value: "50", Currency: "USD"}}},
			{Account: "Assets:Cash", Amount: &ast.Amount{Value: "-500", Currency: "USD"}},
		}},
		&ast.Transaction{Date: sellDate, Flag: "*", Narration: "Sell", Postings: []*ast.Posting{
			{Account: "Assets:Brokerage", Amount: &ast.Amount{Value: "-10", Currency: "FOO"},
				Cost: &ast.Cost{Amount: &ast.Amount{Value: "50", Currency: "USD"}, Date: &buyDate}},
			{Account: "Assets:Cash", Amount: &ast.Amount{Value: "500", Currency: "USD"}},
		}},
	)

	l, diags := Check(d)
	assert.Equal(t, 0, len(diags))
	assert.Equal(t, 2, len(l.Txns()))
}

// TestCheckClosesCostLotWithTotalCostForm exercises closing a cost lot using
// the `{{total, date}}` form: the total basis must convert to a per-unit
// cost (total/|amount|) before it is matched against the held lot, the same
// conversion the opening path already applies.
func TestCheckClosesCostLotWithTotalCostForm(t *testing.T) {
	open := mustDate(t, "2024-01-01")
	buyDate := mustDate(t, "2024-01-10")
	sellDate := mustDate(t, "2024-01-15")

	d := buildDraft(t,
		&ast.Open{Date: open, Account: "Assets:Brokerage"},
		&ast.Open{Date: open, Account: "Assets:Cash"},
		&ast.Transaction{Date: buyDate, Flag: "*", Narration: "Buy", Postings: []*ast.Posting{
			{Account: "Assets:Brokerage", Amount: &ast.Amount{Value: "10", Currency: "FOO"},
				Cost: &ast.Cost{Amount: &ast.Amount{Value: "50", Currency: "USD"}}},
			{Account: "Assets:Cash", Amount: &ast.Amount{Value: "-500", Currency: "USD"}},
		}},
		&ast.Transaction{Date: sellDate, Flag: "*", Narration: "Sell", Postings: []*ast.Posting{
			{Account: "Assets:Brokerage", Amount: &ast.Amount{Value: "-10", Currency: "FOO"},
				Cost: &ast.Cost{Amount: &ast.Amount{Value: "500", Currency: "USD"}, Date: &buyDate, IsTotal: true}},
			{Account: "Assets:Cash", Amount: &ast.Amount{Value: "500", Currency: "USD"}},
		}},
	)

	l, diags := Check(d)
	assert.Equal(t, 0, len(diags))
	assert.Equal(t, 2, len(l.Txns()))
}

func TestCheckRejectsZeroAmountPostingWithPrice(t *testing.T) {
	open := mustDate(t, "2024-01-01")
	txnDate := mustDate(t, "2024-01-02")

	d := buildDraft(t,
		&ast.Open{Date: open, Account: "Assets:Cash"},
		&ast.Open{Date: open, Account: "Assets:Brokerage"},
		&ast.Transaction{Date: txnDate, Flag: "*", Narration: "Zero with price", Postings: []*ast.Posting{
			{Account: "Assets:Cash", Amount: &ast.Amount{Value: "0", Currency: "USD"},
				Price: &ast.Amount{Value: "10", Currency: "EUR"}},
			{Account: "Assets:Brokerage"},
		}},
	)

	l, diags := Check(d)
	assert.Equal(t, 0, len(l.Txns()))
	assert.Equal(t, 1, len(diags))
}

func TestCheckTreatsImbalanceEqualToToleranceAsUnbalanced(t *testing.T) {
	open := mustDate(t, "2024-01-01")
	txnDate := mustDate(t, "2024-01-02")

	// default_tolerance is 0.006; an exact 0.006 USD gap must fail per the
	// strict "< tolerance" comparison rule, not be rounded away.
	d := buildDraft(t,
		&ast.Open{Date: open, Account: "Assets:Cash"},
		&ast.Open{Date: open, Account: "Equity:Opening"},
		&ast.Transaction{Date: txnDate, Flag: "*", Narration: "Borderline", Postings: []*ast.Posting{
			{Account: "Assets:Cash", Amount: &ast.Amount{Value: "100", Currency: "USD"}},
			{Account: "Equity:Opening", Amount: &ast.Amount{Value: "-99.994", Currency: "USD"}},
		}},
	)

	l, diags := Check(d)
	assert.Equal(t, 0, len(l.Txns()))
	assert.Equal(t, 1, len(diags))
}
