package parser

import "github.com/ledgerfall/beanledger/ast"

// Directive parsers for all non-transaction directives.
// These are relatively simple parsers with deterministic structure: a
// header line of fixed shape, an optional trailing inline comment, and
// zero or more indented metadata lines.

// finishLine consumes whatever trails a directive's header on its own
// line (an inline comment) plus any indented metadata lines that follow,
// attaching both to dir.
func (p *Parser) finishLine(dir interface {
	ast.WithMetadata
	ast.WithComment
}, headerLine int) {
	if p.check(COMMENT) {
		tok := p.advance()
		dir.SetComment(tok.String(p.source))
	}
	if !p.isAtEnd() && p.peek().Line == headerLine {
		p.skipLine()
	}
	dir.AddMetadata(p.parseMetadataFromLine(-1)...)
}

// parseBalance parses: DATE balance ACCOUNT AMOUNT
func (p *Parser) parseBalance(pos ast.Position, date ast.Date) (*ast.Balance, error) {
	headerLine := p.peek().Line
	p.consume(BALANCE, "expected 'balance'")

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	amount, err := p.parseAmount()
	if err != nil {
		return nil, err
	}

	bal := &ast.Balance{Pos: pos, Date: date, Account: account, Amount: amount}
	p.finishLine(bal, headerLine)
	return bal, nil
}

// parseOpen parses: DATE open ACCOUNT [CURRENCY[,CURRENCY]*] ["BOOKING_METHOD"]
func (p *Parser) parseOpen(pos ast.Position, date ast.Date) (*ast.Open, error) {
	headerLine := p.peek().Line
	p.consume(OPEN, "expected 'open'")

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	open := &ast.Open{Pos: pos, Date: date, Account: account}

	if p.check(IDENT) && p.peek().Line == headerLine {
		currency, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		open.ConstraintCurrencies = append(open.ConstraintCurrencies, currency)

		for p.match(COMMA) {
			currency, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			open.ConstraintCurrencies = append(open.ConstraintCurrencies, currency)
		}
	}

	if p.check(STRING) && p.peek().Line == headerLine {
		method, err := p.parseString()
		if err != nil {
			return nil, err
		}
		open.BookingMethod = method
	}

	p.finishLine(open, headerLine)
	return open, nil
}

// parseClose parses: DATE close ACCOUNT
func (p *Parser) parseClose(pos ast.Position, date ast.Date) (*ast.Close, error) {
	headerLine := p.peek().Line
	p.consume(CLOSE, "expected 'close'")

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	close := &ast.Close{Pos: pos, Date: date, Account: account}
	p.finishLine(close, headerLine)
	return close, nil
}

// parseCommodity parses: DATE commodity CURRENCY
func (p *Parser) parseCommodity(pos ast.Position, date ast.Date) (*ast.Commodity, error) {
	headerLine := p.peek().Line
	p.consume(COMMODITY, "expected 'commodity'")

	currency, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	commodity := &ast.Commodity{Pos: pos, Date: date, Currency: currency}
	p.finishLine(commodity, headerLine)
	return commodity, nil
}

// parsePad parses: DATE pad ACCOUNT ACCOUNT_PAD
func (p *Parser) parsePad(pos ast.Position, date ast.Date) (*ast.Pad, error) {
	headerLine := p.peek().Line
	p.consume(PAD, "expected 'pad'")

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	accountPad, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	pad := &ast.Pad{Pos: pos, Date: date, Account: account, AccountPad: accountPad}
	p.finishLine(pad, headerLine)
	return pad, nil
}

// parseNote parses: DATE note ACCOUNT STRING
func (p *Parser) parseNote(pos ast.Position, date ast.Date) (*ast.Note, error) {
	headerLine := p.peek().Line
	p.consume(NOTE, "expected 'note'")

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	description, err := p.parseString()
	if err != nil {
		return nil, err
	}

	note := &ast.Note{Pos: pos, Date: date, Account: account, Description: description}
	p.finishLine(note, headerLine)
	return note, nil
}

// parseDocument parses: DATE document ACCOUNT STRING
func (p *Parser) parseDocument(pos ast.Position, date ast.Date) (*ast.Document, error) {
	headerLine := p.peek().Line
	p.consume(DOCUMENT, "expected 'document'")

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}

	path, err := p.parseString()
	if err != nil {
		return nil, err
	}

	doc := &ast.Document{Pos: pos, Date: date, Account: account, PathToDocument: path}
	p.finishLine(doc, headerLine)
	return doc, nil
}

// parsePrice parses: DATE price CURRENCY AMOUNT
func (p *Parser) parsePrice(pos ast.Position, date ast.Date) (*ast.Price, error) {
	headerLine := p.peek().Line
	p.consume(PRICE, "expected 'price'")

	commodity, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	amount, err := p.parseAmount()
	if err != nil {
		return nil, err
	}

	price := &ast.Price{Pos: pos, Date: date, Commodity: commodity, Amount: amount}
	p.finishLine(price, headerLine)
	return price, nil
}

// parseEvent parses: DATE event STRING STRING
func (p *Parser) parseEvent(pos ast.Position, date ast.Date) (*ast.Event, error) {
	headerLine := p.peek().Line
	p.consume(EVENT, "expected 'event'")

	name, err := p.parseString()
	if err != nil {
		return nil, err
	}

	value, err := p.parseString()
	if err != nil {
		return nil, err
	}

	event := &ast.Event{Pos: pos, Date: date, Name: name, Value: value}
	p.finishLine(event, headerLine)
	return event, nil
}

// parseCustom parses: DATE custom STRING VALUE*
// where VALUE can be STRING | BOOL | AMOUNT | NUMBER | ACCOUNT
func (p *Parser) parseCustom(pos ast.Position, date ast.Date) (*ast.Custom, error) {
	headerLine := p.peek().Line
	p.consume(CUSTOM, "expected 'custom'")

	customType, err := p.parseString()
	if err != nil {
		return nil, err
	}

	custom := &ast.Custom{Pos: pos, Date: date, Type: customType}

	for !p.isAtEnd() && p.peek().Line == headerLine {
		tok := p.peek()

		// Stop at the first metadata key (IDENT immediately followed by ':').
		if tok.Type == IDENT && p.peekAhead(1).Type == COLON &&
			tok.Column+tok.Len() == p.peekAhead(1).Column {
			break
		}

		var val *ast.CustomValue

		switch tok.Type {
		case STRING:
			s, err := p.parseString()
			if err != nil {
				return nil, err
			}
			val = &ast.CustomValue{String: &s}

		case IDENT:
			p.advance()
			ident := tok.String(p.source)
			switch ident {
			case "TRUE", "FALSE":
				val = &ast.CustomValue{BooleanValue: &ident}
			default:
				val = &ast.CustomValue{String: &ident}
			}

		case NUMBER:
			p.advance()
			numStr := tok.String(p.source)
			if p.check(IDENT) && p.peek().Line == headerLine {
				currTok := p.advance()
				amt := &ast.Amount{Value: numStr, Currency: p.internCurrency(currTok)}
				val = &ast.CustomValue{Amount: amt}
			} else {
				val = &ast.CustomValue{Number: &numStr}
			}

		case ACCOUNT:
			p.advance()
			acct := tok.String(p.source)
			val = &ast.CustomValue{String: &acct}

		default:
			// Unexpected token on the directive line: stop collecting values.
		}

		if val == nil {
			break
		}
		custom.Values = append(custom.Values, val)
	}

	p.finishLine(custom, headerLine)
	return custom, nil
}
