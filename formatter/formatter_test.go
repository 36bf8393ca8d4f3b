package formatter_test

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/ledgerfall/beanledger/ast"
	"github.com/ledgerfall/beanledger/formatter"
)

func mustParseDate(t *testing.T, s string) ast.Date {
	t.Helper()
	d, err := ast.ParseDate(s)
	assert.NoError(t, err)
	return d
}

func TestFormatOpen(t *testing.T) {
	open := &ast.Open{
		Pos:                  ast.Position{Line: 1},
		Date:                 mustParseDate(t, "2014-05-01"),
		Account:              "Assets:Checking",
		ConstraintCurrencies: []string{"USD", "EUR"},
	}

	var buf strings.Builder
	f := formatter.New()
	assert.NoError(t, f.FormatDirective(open, &buf))
	assert.Equal(t, "2014-05-01 open Assets:Checking USD,EUR\n", buf.String())
}

func TestFormatClose(t *testing.T) {
	closeDir := &ast.Close{
		Pos:     ast.Position{Line: 1},
		Date:    mustParseDate(t, "2015-09-23"),
		Account: "Assets:Checking",
	}

	var buf strings.Builder
	f := formatter.New()
	assert.NoError(t, f.FormatDirective(closeDir, &buf))
	assert.Equal(t, "2015-09-23 close Assets:Checking\n", buf.String())
}

func TestFormatBalance(t *testing.T) {
	bal := &ast.Balance{
		Pos:     ast.Position{Line: 1},
		Date:    mustParseDate(t, "2014-08-09"),
		Account: "Assets:Checking",
		Amount:  &ast.Amount{Value: "562.00", Currency: "USD"},
	}

	var buf strings.Builder
	f := formatter.New()
	assert.NoError(t, f.FormatDirective(bal, &buf))
	assert.Equal(t, "2014-08-09 balance Assets:Checking 562.00 USD\n", buf.String())
}

func TestFormatTransactionAlignsAmounts(t *testing.T) {
	txn := &ast.Transaction{
		Pos:       ast.Position{Line: 1},
		Date:      mustParseDate(t, "2014-05-05"),
		Flag:      "*",
		Payee:     "Cafe Mogador",
		Narration: "Lamb tagine",
		Postings: []*ast.Posting{
			{Account: "Liabilities:CreditCard", Amount: &ast.Amount{Value: "-37.45", Currency: "USD"}},
			{Account: "Expenses:Food:Restaurant", Amount: &ast.Amount{Value: "37.45", Currency: "USD"}},
		},
	}

	var buf strings.Builder
	f := formatter.New(formatter.WithCurrencyColumn(40))
	assert.NoError(t, f.FormatTransaction(txn, &buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, 3, len(lines))
	assert.Equal(t, `2014-05-05 * "Cafe Mogador" "Lamb tagine"`, lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "-37.45 USD"))
	assert.True(t, strings.HasSuffix(lines[2], "37.45 USD"))
}

func TestFormatCostOpeningLot(t *testing.T) {
	p := &ast.Posting{
		Account: "Assets:Brokerage",
		Amount:  &ast.Amount{Value: "10", Currency: "HOOL"},
		Cost: &ast.Cost{
			Amount: &ast.Amount{Value: "500.00", Currency: "USD"},
			Date:   ptrDate(mustParseDate(t, "2014-05-01")),
		},
	}

	txn := &ast.Transaction{
		Pos:      ast.Position{Line: 1},
		Date:     mustParseDate(t, "2014-05-01"),
		Flag:     "*",
		Postings: []*ast.Posting{p},
	}

	var buf strings.Builder
	f := formatter.New()
	assert.NoError(t, f.FormatTransaction(txn, &buf))
	assert.Contains(t, buf.String(), `{500.00 USD, 2014-05-01}`)
}

func TestQuoteEscapesSpecialCharacters(t *testing.T) {
	note := &ast.Note{
		Pos:         ast.Position{Line: 1},
		Date:        mustParseDate(t, "2014-07-09"),
		Account:     "Assets:Checking",
		Description: `has "quotes" and a\backslash`,
	}

	var buf strings.Builder
	f := formatter.New()
	assert.NoError(t, f.FormatDirective(note, &buf))
	assert.Contains(t, buf.String(), `\"quotes\"`)
	assert.Contains(t, buf.String(), `a\\backslash`)
}

func ptrDate(d ast.Date) *ast.Date { return &d }
