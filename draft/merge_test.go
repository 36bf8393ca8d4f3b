package draft

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/ledgerfall/beanledger/ast"
)

func mustDate(t *testing.T, s string) ast.Date {
	t.Helper()
	d, err := ast.ParseDate(s)
	assert.NoError(t, err)
	return d
}

func TestFromASTBucketsDirectivesByKind(t *testing.T) {
	date := mustDate(t, "2024-01-01")
	open := &ast.Open{Pos: ast.Position{Line: 1}, Date: date, Account: "Assets:Cash"}
	txn := &ast.Transaction{Pos: ast.Position{Line: 2}, Date: date, Flag: "*", Narration: "test"}

	tree := &ast.AST{
		Directives: []ast.Directive{open, txn},
		Options:    []*ast.Option{{Name: "operating_currency", Value: "USD"}},
	}

	d := FromAST(tree, "main.beancount")

	assert.Equal(t, []string{"main.beancount"}, d.Files)
	assert.Equal(t, 1, len(d.Transactions))
	assert.Equal(t, 1, len(d.Options))
	info := d.Accounts["Assets:Cash"]
	assert.True(t, info != nil)
	assert.Equal(t, open, info.Open)
}

func TestMergeAppendsTransactionsAcrossFiles(t *testing.T) {
	date := mustDate(t, "2024-01-01")

	a := New()
	a.Transactions = append(a.Transactions, &ast.Transaction{Date: date, Narration: "from a"})

	b := New()
	b.Transactions = append(b.Transactions, &ast.Transaction{Date: date, Narration: "from b"})

	merged, diags := Merge(a, b)
	assert.Equal(t, 0, len(diags))
	assert.Equal(t, 2, len(merged.Transactions))
}

func TestMergeKeepsFirstOptionAndWarnsOnDuplicate(t *testing.T) {
	a := New()
	a.Options = append(a.Options, &ast.Option{Pos: ast.Position{Line: 1}, Name: "default_tolerance", Value: "0.01"})

	b := New()
	b.Options = append(b.Options, &ast.Option{Pos: ast.Position{Line: 5}, Name: "default_tolerance", Value: "0.02"})

	merged, diags := Merge(a, b)
	assert.Equal(t, 1, len(merged.Options))
	assert.Equal(t, "0.01", merged.Options[0].Value)
	assert.Equal(t, 1, len(diags))
}

func TestMergeConflictingOpensAreRejected(t *testing.T) {
	date := mustDate(t, "2024-01-01")

	a := New()
	a.accountInfo("Assets:Cash").Open = &ast.Open{Pos: ast.Position{Line: 1}, Date: date, Account: "Assets:Cash"}

	b := New()
	b.accountInfo("Assets:Cash").Open = &ast.Open{Pos: ast.Position{Line: 1}, Date: date, Account: "Assets:Cash"}

	merged, diags := Merge(a, b)
	assert.Equal(t, 1, len(diags))
	assert.True(t, merged.Accounts["Assets:Cash"].Open != nil)
}

func TestMergeCombinesNotesAndDocumentsForSameAccount(t *testing.T) {
	date := mustDate(t, "2024-01-01")

	a := New()
	a.accountInfo("Assets:Cash").Open = &ast.Open{Date: date, Account: "Assets:Cash"}
	a.accountInfo("Assets:Cash").Notes = append(a.accountInfo("Assets:Cash").Notes, &ast.Note{Date: date, Account: "Assets:Cash"})

	b := New()
	b.accountInfo("Assets:Cash").Notes = append(b.accountInfo("Assets:Cash").Notes, &ast.Note{Date: date, Account: "Assets:Cash"})

	merged, diags := Merge(a, b)
	assert.Equal(t, 0, len(diags))
	assert.Equal(t, 2, len(merged.Accounts["Assets:Cash"].Notes))
}
