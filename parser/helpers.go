package parser

import (
	"strings"

	"github.com/ledgerfall/beanledger/ast"
	"github.com/ledgerfall/beanledger/errors"
)

// errSyntax is returned by parse helpers when consume/expect already
// recorded a diagnostic for the failure; it exists only to signal control
// flow to the caller and must never be recorded again.
var errSyntax = &errors.Diagnostic{Kind: errors.Syntax, Level: errors.Error, Message: "syntax error"}

// Helper parsing methods used across directive parsers.
// These implement the common patterns in Beancount syntax.

// parseDate parses a DATE token and converts it to ast.Date.
func (p *Parser) parseDate() (ast.Date, error) {
	tok := p.expect(DATE, "expected date")
	if tok.Type == ILLEGAL {
		return ast.Date{}, errSyntax
	}

	date, err := ast.ParseDate(tok.String(p.source))
	if err != nil {
		return ast.Date{}, p.errorAtToken(tok, "invalid date: %v", err)
	}
	return date, nil
}

// parseAccount parses an ACCOUNT token and validates it against spec's
// general account grammar (spec §4.A). The account name is interned.
func (p *Parser) parseAccount() (ast.Account, error) {
	tok := p.expect(ACCOUNT, "expected account")
	if tok.Type == ILLEGAL {
		return "", errSyntax
	}

	accountStr := p.internIdent(tok)
	if err := ast.ValidateAccount(accountStr); err != nil {
		return "", p.errorAtToken(tok, "invalid account: %v", err)
	}

	return ast.Account(accountStr), nil
}

// parseAmount parses an amount: NUMBER CURRENCY.
func (p *Parser) parseAmount() (*ast.Amount, error) {
	numTok := p.expect(NUMBER, "expected number")
	if numTok.Type == ILLEGAL {
		return nil, errSyntax
	}
	value := numTok.String(p.source)

	currTok := p.expect(IDENT, "expected currency")
	if currTok.Type == ILLEGAL {
		return nil, errSyntax
	}
	currency := p.internCurrency(currTok)

	return &ast.Amount{Value: value, Currency: currency}, nil
}

// parseCost parses a cost specification: `{ [AMOUNT] [, DATE] [, LABEL] }`,
// `{ DATE [, LABEL] }`, or the total-cost form `{{ AMOUNT [, DATE] [, LABEL] }}`. Tax-lot
// auto-selection (the `{*}` merge marker) is out of scope, see ast.Cost.
func (p *Parser) parseCost() (*ast.Cost, error) {
	isTotal := false
	if p.check(LDBRACE) {
		p.advance()
		isTotal = true
	} else {
		p.consume(LBRACE, "expected '{' or '{{'")
	}

	cost := &ast.Cost{IsTotal: isTotal}

	closingToken := RBRACE
	if isTotal {
		closingToken = RDBRACE
	}

	if p.check(closingToken) {
		if isTotal {
			return nil, p.error("empty total cost {{}} is not allowed")
		}
		p.advance()
		return cost, nil
	}

	if p.check(NUMBER) {
		amt, err := p.parseAmount()
		if err != nil {
			return nil, err
		}
		cost.Amount = amt
	} else if isTotal {
		return nil, p.error("total cost {{}} requires an amount")
	} else if p.check(DATE) {
		date, err := p.parseDate()
		if err != nil {
			return nil, err
		}
		cost.Date = &date
	}

	if p.match(COMMA) {
		if p.check(DATE) {
			date, err := p.parseDate()
			if err != nil {
				return nil, err
			}
			cost.Date = &date

			if p.match(COMMA) {
				if p.check(STRING) {
					label, err := p.parseString()
					if err != nil {
						return nil, err
					}
					cost.Label = label
				}
			}
		} else if p.check(STRING) {
			label, err := p.parseString()
			if err != nil {
				return nil, err
			}
			cost.Label = label
		}
	}

	if isTotal {
		p.consume(RDBRACE, "expected '}}'")
	} else {
		p.consume(RBRACE, "expected '}'")
	}

	return cost, nil
}

// parseString parses a STRING token, unquotes it, and interns the result.
func (p *Parser) parseString() (string, error) {
	tok := p.expect(STRING, "expected string")
	if tok.Type == ILLEGAL {
		return "", errSyntax
	}

	unquoted, err := p.unquoteString(tok.String(p.source))
	if err != nil {
		return "", p.errorAtToken(tok, "invalid string literal: %v", err)
	}

	return p.internString(unquoted), nil
}

// unquoteString unquotes a string by removing surrounding quotes and processing escapes.
func (p *Parser) unquoteString(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s, &StringLiteralError{Message: "string must be enclosed in double quotes"}
	}

	inner := s[1 : len(s)-1]
	if strings.IndexByte(inner, '\\') < 0 {
		return inner, nil
	}
	return p.processEscapeSequences(inner)
}

// StringLiteralError represents an error in string literal parsing.
type StringLiteralError struct {
	Message string
}

func (e *StringLiteralError) Error() string { return e.Message }

func (p *Parser) processEscapeSequences(inner string) (string, error) {
	var buf strings.Builder
	buf.Grow(len(inner))

	i := 0
	for i < len(inner) {
		if inner[i] != '\\' {
			buf.WriteByte(inner[i])
			i++
			continue
		}
		if i+1 >= len(inner) {
			return "", &StringLiteralError{Message: "escape sequence at end of string"}
		}
		switch inner[i+1] {
		case '"':
			buf.WriteByte('"')
		case '\\':
			buf.WriteByte('\\')
		case 'n':
			buf.WriteByte('\n')
		case 't':
			buf.WriteByte('\t')
		case 'r':
			buf.WriteByte('\r')
		default:
			return "", &StringLiteralError{Message: "invalid escape sequence '\\" + string(inner[i+1]) + "'"}
		}
		i += 2
	}

	return buf.String(), nil
}

// parseIdent parses an IDENT token (currency codes, booking methods, ...).
func (p *Parser) parseIdent() (string, error) {
	tok := p.expect(IDENT, "expected identifier")
	if tok.Type == ILLEGAL {
		return "", errSyntax
	}
	return tok.String(p.source), nil
}

// parseTag parses a TAG token, stripping its `#` prefix.
func (p *Parser) parseTag() (ast.Tag, error) {
	tok := p.expect(TAG, "expected tag")
	if tok.Type == ILLEGAL {
		return "", errSyntax
	}
	text := tok.String(p.source)
	return ast.Tag(p.interner.Intern(text[1:])), nil
}

// parseLink parses a LINK token, stripping its `^` prefix.
func (p *Parser) parseLink() (ast.Link, error) {
	tok := p.expect(LINK, "expected link")
	if tok.Type == ILLEGAL {
		return "", errSyntax
	}
	text := tok.String(p.source)
	return ast.Link(p.interner.Intern(text[1:])), nil
}

// parseMetadataFromLine parses metadata entries following a directive or
// posting. ownerLine marks the directive/posting's own source line, so
// metadata appearing on that same line (postings only) is tagged Inline.
func (p *Parser) parseMetadataFromLine(ownerLine int) []*ast.Metadata {
	var metadata []*ast.Metadata

	for {
		keyTok := p.peek()

		isMetadataKey := (keyTok.Type == IDENT || p.isKeyword(keyTok.Type)) &&
			p.peekAhead(1).Type == COLON &&
			keyTok.Column+keyTok.Len() == p.peekAhead(1).Column

		if !isMetadataKey {
			break
		}

		p.advance()
		p.consume(COLON, "expected ':'")

		value := p.parseMetadataValue()
		inline := ownerLine > 0 && keyTok.Line == ownerLine

		metadata = append(metadata, &ast.Metadata{
			Pos:    tokenPosition(keyTok, p.filename),
			Key:    keyTok.String(p.source),
			Value:  value,
			Inline: inline,
		})
	}

	return metadata
}

// parseMetadataValue parses a typed metadata value: one of the nine forms
// the grammar recognizes (string, date, account, currency, tag, link,
// number, amount, boolean).
func (p *Parser) parseMetadataValue() *ast.MetadataValue {
	tok := p.peek()

	switch tok.Type {
	case STRING:
		if str, err := p.parseString(); err == nil {
			return &ast.MetadataValue{StringValue: &str}
		}

	case DATE:
		if date, err := p.parseDate(); err == nil {
			return &ast.MetadataValue{Date: &date}
		}

	case TAG:
		if tag, err := p.parseTag(); err == nil {
			return &ast.MetadataValue{Tag: &tag}
		}

	case LINK:
		if link, err := p.parseLink(); err == nil {
			return &ast.MetadataValue{Link: &link}
		}

	case ACCOUNT:
		if account, err := p.parseAccount(); err == nil {
			return &ast.MetadataValue{Account: &account}
		}

	case NUMBER:
		if p.peekAhead(1).Type == IDENT {
			if amount, err := p.parseAmount(); err == nil {
				return &ast.MetadataValue{Amount: amount}
			}
		} else {
			numStr := tok.String(p.source)
			p.advance()
			return &ast.MetadataValue{Number: &numStr}
		}

	case IDENT:
		identStr := tok.String(p.source)
		switch identStr {
		case "TRUE":
			p.advance()
			v := true
			return &ast.MetadataValue{Boolean: &v}
		case "FALSE":
			p.advance()
			v := false
			return &ast.MetadataValue{Boolean: &v}
		}
		p.advance()
		return &ast.MetadataValue{Currency: &identStr}
	}

	value := p.parseRestOfLine()
	unquoted, err := p.unquoteString(value)
	if err != nil {
		return &ast.MetadataValue{StringValue: &value}
	}
	return &ast.MetadataValue{StringValue: &unquoted}
}

// isKeyword returns true if the token type is one of spec's grammar
// keywords (plugin/pushmeta/popmeta are not part of the grammar, see
// token.go).
func (p *Parser) isKeyword(typ TokenType) bool {
	switch typ {
	case TXN, BALANCE, OPEN, CLOSE, COMMODITY, PAD, NOTE, DOCUMENT,
		PRICE, EVENT, CUSTOM, OPTION, INCLUDE, PUSHTAG, POPTAG:
		return true
	default:
		return false
	}
}

// parseRestOfLine reads all tokens until end of line and returns as string.
func (p *Parser) parseRestOfLine() string {
	currentLine := p.peek().Line

	var parts []string
	for !p.isAtEnd() && p.peek().Line == currentLine {
		tok := p.advance()
		parts = append(parts, tok.String(p.source))
	}

	return strings.TrimSpace(strings.Join(parts, " "))
}

// skipLine skips all tokens on the current line, the parser's error
// recovery unit: a bad directive never aborts the whole parse.
func (p *Parser) skipLine() {
	line := p.peek().Line
	for !p.isAtEnd() && p.peek().Line == line {
		p.advance()
	}
}

// Helper methods for token navigation

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAhead(n int) Token {
	pos := p.pos + n
	if pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[pos]
}

func (p *Parser) previous() Token {
	if p.pos == 0 {
		return Token{Type: ILLEGAL}
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == EOF
}

func (p *Parser) check(typ TokenType) bool {
	return p.peek().Type == typ
}

func (p *Parser) match(types ...TokenType) bool {
	for _, typ := range types {
		if p.check(typ) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) consume(typ TokenType, message string) Token {
	if p.check(typ) {
		return p.advance()
	}

	tok := p.peek()
	_ = p.errorAtToken(tok, "%s", message)
	return Token{Type: ILLEGAL, Start: tok.Start, End: tok.End, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) expect(typ TokenType, message string) Token {
	return p.consume(typ, message)
}

// String interning helpers - deduplicate repeated strings for memory efficiency.

func (p *Parser) internCurrency(tok Token) string {
	return p.interner.InternBytes(tok.Bytes(p.source))
}

func (p *Parser) internString(s string) string {
	return p.interner.Intern(s)
}

func (p *Parser) internIdent(tok Token) string {
	return p.interner.InternBytes(tok.Bytes(p.source))
}

// Error helpers

func (p *Parser) errorAtToken(tok Token, format string, args ...interface{}) error {
	pos := tokenPosition(tok, p.filename)
	d := errors.New(errors.Syntax, errors.Error, pos, format, args...)
	p.diagnostics = append(p.diagnostics, d)
	return d
}

func (p *Parser) error(format string, args ...interface{}) error {
	return p.errorAtToken(p.peek(), format, args...)
}

func tokenPosition(tok Token, filename string) ast.Position {
	return ast.Position{
		Filename: filename,
		Offset:   tok.Start,
		Line:     tok.Line,
		Column:   tok.Column,
	}
}

func (p *Parser) tokenPositionFromPeek() ast.Position {
	return tokenPosition(p.peek(), p.filename)
}

// positionAtEndOfPrevious returns a position at the end of the previous
// token, used to point at where a missing token was expected.
func (p *Parser) positionAtEndOfPrevious() ast.Position {
	if p.pos == 0 {
		return p.tokenPositionFromPeek()
	}
	prev := p.previous()
	return ast.Position{
		Filename: p.filename,
		Offset:   prev.End,
		Line:     prev.Line,
		Column:   prev.Column + (prev.End - prev.Start),
	}
}

func (p *Parser) errorAtEndOfPrevious(format string, args ...interface{}) error {
	pos := p.positionAtEndOfPrevious()
	d := errors.New(errors.Syntax, errors.Error, pos, format, args...)
	p.diagnostics = append(p.diagnostics, d)
	return d
}
