package parser

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func scan(t *testing.T, src string) []Token {
	t.Helper()
	l := NewLexer([]byte(src), "test.beancount")
	tokens, err := l.ScanAll()
	assert.NoError(t, err)
	return tokens
}

func types(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func TestLexerScansOpenDirective(t *testing.T) {
	tokens := scan(t, `2024-01-01 open Assets:Cash USD`)
	assert.Equal(t, []TokenType{DATE, OPEN, ACCOUNT, IDENT, EOF}, types(tokens))
}

func TestLexerScansTransactionHeader(t *testing.T) {
	tokens := scan(t, `2024-01-01 txn "Payee" "Narration" #tag ^link`)
	assert.Equal(t, []TokenType{DATE, TXN, STRING, STRING, TAG, LINK, EOF}, types(tokens))
}

func TestLexerDistinguishesAccountFromIdent(t *testing.T) {
	tokens := scan(t, "Assets:Cash USD")
	assert.Equal(t, []TokenType{ACCOUNT, IDENT, EOF}, types(tokens))
}

func TestLexerScansSignedNumbersAndThousandsSeparators(t *testing.T) {
	tokens := scan(t, "-1,234.56")
	assert.Equal(t, []TokenType{NUMBER, EOF}, types(tokens))
	assert.Equal(t, "-1,234.56", tokens[0].String([]byte("-1,234.56")))
}

func TestLexerScansPriceAnnotations(t *testing.T) {
	tokens := scan(t, "@ @@ { {{ } }}")
	assert.Equal(t, []TokenType{AT, ATAT, LBRACE, LDBRACE, RBRACE, RDBRACE, EOF}, types(tokens))
}

func TestLexerEmitsOneNewlineTokenPerBlankLine(t *testing.T) {
	tokens := scan(t, "2024-01-01 open Assets:Cash\n\n\n2024-01-02 close Assets:Cash")
	assert.Equal(t, []TokenType{DATE, OPEN, ACCOUNT, NEWLINE, NEWLINE, DATE, CLOSE, ACCOUNT, EOF}, types(tokens))
}

func TestLexerRejectsUnterminatedString(t *testing.T) {
	tokens := scan(t, `"unterminated`)
	assert.Equal(t, []TokenType{ILLEGAL, EOF}, types(tokens))
}

func TestLexerRejectsInvalidCalendarDate(t *testing.T) {
	tokens := scan(t, "2024-02-30 open Assets:Cash")
	assert.Equal(t, ILLEGAL, tokens[0].Type)
}

func TestLexerReportsInvalidControlCharacter(t *testing.T) {
	l := NewLexer([]byte("2024-01-01\x01 open"), "test.beancount")
	_, err := l.ScanAll()
	assert.Error(t, err)
}
