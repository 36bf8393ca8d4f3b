package errors_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/ledgerfall/beanledger/ast"
	"github.com/ledgerfall/beanledger/errors"
)

func TestDiagnosticError(t *testing.T) {
	tests := []struct {
		name string
		d    *errors.Diagnostic
		want string
	}{
		{
			name: "with position",
			d: errors.New(errors.Account, errors.Error,
				ast.Position{Filename: "main.beancount", Line: 10, Column: 1},
				"account %s is not open on %s", "Assets:Checking", "2014-05-01"),
			want: "main.beancount:10:1: error: account Assets:Checking is not open on 2014-05-01",
		},
		{
			name: "without position",
			d:    errors.New(errors.Io, errors.Error, ast.Position{}, "file not found"),
			want: "error: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.Error())
		})
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind errors.Kind
		want string
	}{
		{errors.Io, "io"},
		{errors.Syntax, "syntax"},
		{errors.NotBalanced, "not-balanced"},
		{errors.Incomplete, "incomplete"},
		{errors.Account, "account"},
		{errors.NoMatch, "no-match"},
		{errors.Ambiguous, "ambiguous"},
		{errors.Duplicate, "duplicate"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "info", errors.Info.String())
	assert.Equal(t, "warning", errors.Warning.String())
	assert.Equal(t, "error", errors.Error.String())
}

func TestWithDirective(t *testing.T) {
	date, err := ast.ParseDate("2014-05-05")
	assert.NoError(t, err)

	txn := &ast.Transaction{
		Pos:  ast.Position{Line: 1},
		Date: date,
		Flag: "*",
	}

	d := errors.New(errors.NotBalanced, errors.Error, ast.Position{Line: 1}, "transaction does not balance").
		WithDirective(txn)

	assert.Equal(t, txn, d.Directive)
}
