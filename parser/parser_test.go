package parser

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/repr"

	"github.com/ledgerfall/beanledger/ast"
)

// parseSource dumps the recovered tree via repr whenever a parse produced
// diagnostics, so a failing assertion on the directive slice is easy to
// diagnose from test output without attaching a debugger.
func parseSource(t *testing.T, src string) (*ast.AST, []interface{ Error() string }) {
	t.Helper()
	tree, diags := Parse("test.beancount", []byte(src))
	if len(diags) > 0 {
		t.Logf("recovered tree: %s", repr.String(tree, repr.Indent("  ")))
	}
	errs := make([]interface{ Error() string }, len(diags))
	for i, d := range diags {
		errs[i] = d
	}
	return tree, errs
}

func TestParseOpenDirective(t *testing.T) {
	tree, diags := parseSource(t, "2024-01-01 open Assets:Cash USD,EUR\n")
	assert.Equal(t, 0, len(diags))
	assert.Equal(t, 1, len(tree.Directives))

	open, ok := tree.Directives[0].(*ast.Open)
	assert.True(t, ok)
	assert.Equal(t, ast.Account("Assets:Cash"), open.Account)
	assert.Equal(t, []string{"USD", "EUR"}, open.ConstraintCurrencies)
}

func TestParseBalanceDirective(t *testing.T) {
	tree, diags := parseSource(t, "2024-01-05 balance Assets:Cash 100.00 USD\n")
	assert.Equal(t, 0, len(diags))
	bal, ok := tree.Directives[0].(*ast.Balance)
	assert.True(t, ok)
	assert.Equal(t, "100.00", bal.Amount.Value)
	assert.Equal(t, "USD", bal.Amount.Currency)
}

func TestParseTransactionWithPostingsTagsAndLinks(t *testing.T) {
	src := "2024-01-02 * \"Café\" \"Lunch\" #food ^receipt123\n" +
		"  Assets:Cash          -10.00 USD\n" +
		"  Expenses:Food\n"

	tree, diags := parseSource(t, src)
	assert.Equal(t, 0, len(diags))
	assert.Equal(t, 1, len(tree.Directives))

	txn, ok := tree.Directives[0].(*ast.Transaction)
	assert.True(t, ok)
	assert.Equal(t, "*", txn.Flag)
	assert.Equal(t, "Café", txn.Payee)
	assert.Equal(t, "Lunch", txn.Narration)
	assert.Equal(t, 1, len(txn.Tags))
	assert.Equal(t, 1, len(txn.Links))
	assert.Equal(t, 2, len(txn.Postings))
	assert.Equal(t, "-10.00", txn.Postings[0].Amount.Value)
	assert.True(t, txn.Postings[1].Amount == nil)
}

func TestParsePushtagAppliesToFollowingTransactions(t *testing.T) {
	src := "pushtag #trip\n" +
		"2024-01-02 * \"Payee\" \"Narration\"\n" +
		"  Assets:Cash -10.00 USD\n" +
		"  Expenses:Food\n" +
		"poptag #trip\n" +
		"2024-01-03 * \"Payee\" \"Narration\"\n" +
		"  Assets:Cash -5.00 USD\n" +
		"  Expenses:Food\n"

	tree, diags := parseSource(t, src)
	assert.Equal(t, 0, len(diags))
	assert.Equal(t, 2, len(tree.Directives))

	first := tree.Directives[0].(*ast.Transaction)
	second := tree.Directives[1].(*ast.Transaction)
	assert.Equal(t, 1, len(first.Tags))
	assert.Equal(t, 0, len(second.Tags))
}

func TestParseIncludeAndOption(t *testing.T) {
	tree, diags := parseSource(t, "option \"title\" \"My Ledger\"\ninclude \"other.beancount\"\n")
	assert.Equal(t, 0, len(diags))
	assert.Equal(t, 1, len(tree.Options))
	assert.Equal(t, "title", tree.Options[0].Name)
	assert.Equal(t, 1, len(tree.Includes))
	assert.Equal(t, "other.beancount", tree.Includes[0].Filename)
}

func TestParseRecoversFromSyntaxErrorAndKeepsGoing(t *testing.T) {
	src := "2024-01-01 bogus Assets:Cash\n" +
		"2024-01-02 open Assets:Cash USD\n"

	tree, diags := parseSource(t, src)
	assert.True(t, len(diags) >= 1)
	assert.Equal(t, 1, len(tree.Directives))
	_, ok := tree.Directives[0].(*ast.Open)
	assert.True(t, ok)
}
