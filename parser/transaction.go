package parser

import "github.com/ledgerfall/beanledger/ast"

// Transaction parsing - the most complex directive type.
// Transactions have postings, which are indented on subsequent lines.

// parseTransaction parses a transaction:
// DATE [txn] FLAG [PAYEE] NARRATION [TAG|LINK]*
//
//	POSTING*
//
// FLAG is "*" (Posted) or "?" (Pending); see spec §6's deviation from the
// conventional Beancount flag set.
func (p *Parser) parseTransaction(pos ast.Position, date ast.Date) (*ast.Transaction, error) {
	txn := &ast.Transaction{Pos: pos, Date: date}

	p.match(TXN)

	switch {
	case p.match(ASTERISK):
		txn.Flag = "*"
	case p.match(QUESTION):
		txn.Flag = "?"
	default:
		return nil, p.error("expected transaction flag (* or ?)")
	}

	hasNarration := false
	if p.check(STRING) {
		first, err := p.parseString()
		if err != nil {
			return nil, err
		}

		if p.check(STRING) {
			second, err := p.parseString()
			if err != nil {
				return nil, err
			}
			txn.Payee = first
			txn.Narration = second
		} else {
			txn.Narration = first
		}
		hasNarration = true
	}

	if !hasNarration {
		return nil, p.error("expected transaction payee or narration string")
	}

	// Tags and links on the header line are added on top of whatever
	// pushtag currently has active (spec §4.C); there is no later pass to
	// reconcile this, the stack is applied live as each transaction is parsed.
	txn.Tags = append(txn.Tags, p.activeTags...)
	for p.check(TAG) || p.check(LINK) {
		if p.check(TAG) {
			tag, err := p.parseTag()
			if err != nil {
				return nil, err
			}
			txn.Tags = append(txn.Tags, tag)
		} else {
			link, err := p.parseLink()
			if err != nil {
				return nil, err
			}
			txn.Links = append(txn.Links, link)
		}
	}

	if p.check(COMMENT) && p.peek().Line == txn.Pos.Line {
		tok := p.advance()
		txn.SetComment(tok.String(p.source))
	}

	if !p.isAtEnd() && p.peek().Line > txn.Pos.Line && p.peek().Column > 1 {
		txn.AddMetadata(p.parseMetadataFromLine(txn.Pos.Line)...)
	}

	postings, err := p.parsePostings(txn.Pos.Line)
	if err != nil {
		return nil, err
	}
	txn.Postings = postings

	return txn, nil
}

// parsePostings parses all postings for a transaction.
// Postings are indented lines following the transaction header.
func (p *Parser) parsePostings(headerLine int) ([]*ast.Posting, error) {
	var postings []*ast.Posting

	for !p.isAtEnd() {
		tok := p.peek()

		if tok.Line == headerLine && (tok.Type == ASTERISK || tok.Type == ACCOUNT) {
			return nil, p.errorAtToken(tok, "postings must start on a new line")
		}

		if tok.Type == NEWLINE {
			// A blank line ends the transaction unless another indented
			// posting line follows it.
			nextIdx := p.pos + 1
			if nextIdx < len(p.tokens) {
				nextTok := p.tokens[nextIdx]
				if nextTok.Column <= 1 || nextTok.Type == EOF {
					break
				}
			}
			p.advance()
			continue
		}

		if tok.Column <= 1 {
			break
		}

		if tok.Type != ASTERISK && tok.Type != ACCOUNT {
			if tok.Type == COMMENT {
				p.advance()
				continue
			}
			break
		}

		posting, err := p.parsePosting()
		if err != nil {
			return nil, err
		}

		postings = append(postings, posting)
	}

	return postings, nil
}

// parsePosting parses a single posting:
// [FLAG] ACCOUNT [AMOUNT] [COST] [PRICE]
//
//	[METADATA]*
func (p *Parser) parsePosting() (*ast.Posting, error) {
	postingLine := p.peek().Line

	posting := &ast.Posting{}

	if p.match(ASTERISK) {
		posting.Flag = "*"
	}

	account, err := p.parseAccount()
	if err != nil {
		return nil, err
	}
	posting.Account = account

	if p.check(NUMBER) {
		amount, err := p.parseAmount()
		if err != nil {
			return nil, err
		}
		posting.Amount = amount
	}

	if p.check(LBRACE) || p.check(LDBRACE) {
		cost, err := p.parseCost()
		if err != nil {
			return nil, err
		}
		posting.Cost = cost
	}

	if p.match(ATAT) {
		posting.PriceTotal = true
		amount, err := p.parseAmount()
		if err != nil {
			return nil, err
		}
		posting.Price = amount
	} else if p.match(AT) {
		posting.PriceTotal = false
		amount, err := p.parseAmount()
		if err != nil {
			return nil, err
		}
		posting.Price = amount
	}

	if p.check(COMMENT) && p.peek().Line == postingLine {
		tok := p.advance()
		posting.SetComment(tok.String(p.source))
	}

	posting.AddMetadata(p.parseMetadataFromLine(postingLine)...)

	return posting, nil
}
