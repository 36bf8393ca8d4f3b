// Package parser implements the Beancount lexer and recursive-descent
// parser: a zero-copy, single-token-lookahead scanner (lexer.go, token.go)
// feeding a hand-written Parser (this file, directives.go, transaction.go,
// helpers.go) that builds an ast.AST. Syntax errors are collected as
// errors.Diagnostic values rather than aborting the parse: the parser
// recovers to the next directive-starting line and keeps going, per spec's
// error-recovery requirement that a single bad directive never kills a run.
package parser

import (
	"github.com/ledgerfall/beanledger/ast"
	"github.com/ledgerfall/beanledger/errors"
)

// Parser consumes a pre-lexed token stream and produces an ast.AST plus any
// diagnostics encountered along the way.
type Parser struct {
	source   []byte
	filename string
	tokens   []Token
	pos      int
	interner *Interner

	// activeTags mirrors the parser's live pushtag/poptag stack (spec
	// §4.C): every non-Balance transaction inherits the tags currently on
	// the stack at the point it is parsed. There is no post-processing
	// pass — a Transaction's Tags are final the moment it is returned.
	activeTags []ast.Tag

	diagnostics []*errors.Diagnostic
}

// New lexes source and returns a Parser ready to produce an AST.
func New(filename string, source []byte) (*Parser, error) {
	lx := NewLexer(source, filename)
	tokens, err := lx.ScanAll()
	if err != nil {
		return nil, err
	}
	return &Parser{
		source:   source,
		filename: filename,
		tokens:   tokens,
		interner: lx.Interner(),
	}, nil
}

// Parse lexes and parses source in one call, returning whatever directives
// it could recover plus a diagnostic for every syntax error encountered.
func Parse(filename string, source []byte) (*ast.AST, []*errors.Diagnostic) {
	p, err := New(filename, source)
	if err != nil {
		pos := ast.Position{Filename: filename, Line: 1, Column: 1}
		if invalid, ok := err.(*InvalidUTF8Error); ok {
			pos.Line = invalid.Line
			pos.Column = invalid.Column
		}
		return &ast.AST{}, []*errors.Diagnostic{errors.New(errors.Syntax, errors.Error, pos, err.Error())}
	}
	return p.Parse(), p.diagnostics
}

// Interner returns the string interner built up while lexing, for reuse by
// callers that process multiple files and want a shared pool.
func (p *Parser) Interner() *Interner { return p.interner }

// Diagnostics returns every syntax diagnostic recorded during Parse.
func (p *Parser) Diagnostics() []*errors.Diagnostic { return p.diagnostics }

// Parse walks the token stream top to bottom, dispatching on each
// directive's leading keyword. A date-prefixed line dispatches to the
// matching directive parser; `option`/`include`/`pushtag`/`poptag` are
// handled inline since they have no date. Anything else is a syntax error
// that recovers by skipping to the next line.
func (p *Parser) Parse() *ast.AST {
	tree := &ast.AST{}

	for !p.isAtEnd() {
		tok := p.peek()

		switch tok.Type {
		case NEWLINE, COMMENT:
			p.advance()
			continue

		case OPTION:
			if opt := p.parseOption(); opt != nil {
				tree.Options = append(tree.Options, opt)
			}

		case INCLUDE:
			if inc := p.parseInclude(); inc != nil {
				tree.Includes = append(tree.Includes, inc)
			}

		case PUSHTAG:
			p.parsePushtag()

		case POPTAG:
			p.parsePoptag()

		case DATE:
			if d := p.parseDirective(); d != nil {
				tree.Directives = append(tree.Directives, d)
			}

		default:
			p.errorAtToken(tok, "unexpected token %s", tok.Type)
			p.skipLine()
		}
	}

	return tree
}

// parseDirective parses one DATE-led directive, dispatching on the keyword
// that follows the date.
func (p *Parser) parseDirective() ast.Directive {
	pos := p.tokenPositionFromPeek()
	date, err := p.parseDate()
	if err != nil {
		p.skipLine()
		return nil
	}

	kw := p.peek()
	var (
		d   ast.Directive
		dir error
	)
	switch kw.Type {
	case BALANCE:
		d, dir = p.parseBalance(pos, date)
	case OPEN:
		d, dir = p.parseOpen(pos, date)
	case CLOSE:
		d, dir = p.parseClose(pos, date)
	case COMMODITY:
		d, dir = p.parseCommodity(pos, date)
	case PAD:
		d, dir = p.parsePad(pos, date)
	case NOTE:
		d, dir = p.parseNote(pos, date)
	case DOCUMENT:
		d, dir = p.parseDocument(pos, date)
	case PRICE:
		d, dir = p.parsePrice(pos, date)
	case EVENT:
		d, dir = p.parseEvent(pos, date)
	case CUSTOM:
		d, dir = p.parseCustom(pos, date)
	case TXN, ASTERISK, QUESTION:
		d, dir = p.parseTransaction(pos, date)
	default:
		p.errorAtToken(kw, "expected directive keyword, got %s", kw.Type)
		p.skipLine()
		return nil
	}

	if dir != nil {
		p.skipLine()
		return nil
	}
	return d
}

func (p *Parser) parseOption() *ast.Option {
	pos := p.tokenPositionFromPeek()
	p.consume(OPTION, "expected 'option'")

	name, err := p.parseString()
	if err != nil {
		p.skipLine()
		return nil
	}
	value, err := p.parseString()
	if err != nil {
		p.skipLine()
		return nil
	}
	if !p.isAtEnd() && p.peek().Line == pos.Line {
		p.skipLine()
	}
	return &ast.Option{Pos: pos, Name: name, Value: value}
}

func (p *Parser) parseInclude() *ast.Include {
	pos := p.tokenPositionFromPeek()
	p.consume(INCLUDE, "expected 'include'")

	filename, err := p.parseString()
	if err != nil {
		p.skipLine()
		return nil
	}
	if !p.isAtEnd() && p.peek().Line == pos.Line {
		p.skipLine()
	}
	return &ast.Include{Pos: pos, Filename: filename}
}

func (p *Parser) parsePushtag() {
	line := p.peek().Line
	p.consume(PUSHTAG, "expected 'pushtag'")
	tag, err := p.parseTag()
	if err != nil {
		p.skipLine()
		return
	}
	p.activeTags = append(p.activeTags, tag)
	if !p.isAtEnd() && p.peek().Line == line {
		p.skipLine()
	}
}

func (p *Parser) parsePoptag() {
	line := p.peek().Line
	p.consume(POPTAG, "expected 'poptag'")
	tag, err := p.parseTag()
	if err != nil {
		p.skipLine()
		return
	}
	for i := len(p.activeTags) - 1; i >= 0; i-- {
		if p.activeTags[i] == tag {
			p.activeTags = append(p.activeTags[:i], p.activeTags[i+1:]...)
			break
		}
	}
	if !p.isAtEnd() && p.peek().Line == line {
		p.skipLine()
	}
}
