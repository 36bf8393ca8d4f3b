// Package errors defines the closed error taxonomy the checker and parser
// report through (spec §7) and renders it for different consumers: CLI text
// output, JSON for APIs, or programmatic inspection via Kind/Level.
//
// A single Diagnostic type carries every diagnostic instead of one Go type per
// failure mode. Error-level diagnostics cause the offending directive to be
// dropped from the resulting Ledger, but never abort a run; Warning and Info
// are purely informational.
package errors

import (
	"fmt"

	"github.com/ledgerfall/beanledger/ast"
)

// Kind classifies what went wrong.
type Kind int

const (
	// Io covers file-system failures: missing includes, unreadable files.
	Io Kind = iota
	// Syntax covers lexer/parser failures: malformed tokens, unexpected input.
	Syntax
	// NotBalanced marks a transaction whose postings do not sum to zero
	// within tolerance, after inference.
	NotBalanced
	// Incomplete marks a transaction missing information the checker needs
	// (e.g. more than one posting omitting its amount).
	Incomplete
	// Account marks a reference to an account that is not open on the
	// relevant date, or a close/open conflict.
	Account
	// NoMatch marks a cost-basis reduction that could not be resolved to
	// one lot: no matching lot, more than one matching lot, or too little
	// held in the matched lot.
	NoMatch
	// Ambiguous classifies a cost-basis reduction matching more than one
	// lot; the checker reports that case as NoMatch and never emits
	// Ambiguous.
	Ambiguous
	// Duplicate marks a directive that conflicts with one already accepted
	// (e.g. two `option` declarations, two opens for the same account).
	Duplicate
)

func (k Kind) String() string {
	switch k {
	case Io:
		return "io"
	case Syntax:
		return "syntax"
	case NotBalanced:
		return "not-balanced"
	case Incomplete:
		return "incomplete"
	case Account:
		return "account"
	case NoMatch:
		return "no-match"
	case Ambiguous:
		return "ambiguous"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Level is the severity of a diagnostic.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is one reported problem. Directive, when non-nil, is the
// offending node, which the text formatter renders alongside the message.
type Diagnostic struct {
	Kind      Kind
	Level     Level
	Message   string
	Pos       ast.Position
	Directive ast.Directive
}

func (d *Diagnostic) Error() string {
	if d.Pos.Line > 0 {
		return fmt.Sprintf("%s: %s: %s", d.Pos, d.Level, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Level, d.Message)
}

// New builds a Diagnostic with no directive context.
func New(kind Kind, level Level, pos ast.Position, message string, args ...any) *Diagnostic {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	return &Diagnostic{Kind: kind, Level: level, Pos: pos, Message: message}
}

// WithDirective attaches the offending directive to a Diagnostic, for
// display.
func (d *Diagnostic) WithDirective(dir ast.Directive) *Diagnostic {
	d.Directive = dir
	return d
}
