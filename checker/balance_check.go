package checker

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerfall/beanledger/ast"
	"github.com/ledgerfall/beanledger/errors"
	"github.com/ledgerfall/beanledger/ledger"
)

// checkBalance implements spec §4.E.6: compares the running balance against
// the asserted amount within tolerance, and on mismatch attempts to realize
// an outstanding pad before giving up.
func checkBalance(s *replayState, bal *ast.Balance) (*ledger.Txn, []*errors.Diagnostic) {
	currency := bal.Amount.Currency
	expected, err := decimal.NewFromString(bal.Amount.Value)
	if err != nil {
		return nil, []*errors.Diagnostic{errors.New(errors.Syntax, errors.Error, bal.Pos,
			"invalid balance amount %q", bal.Amount.Value).WithDirective(bal)}
	}

	holdingTotal := s.balance.Total(bal.Account, currency)
	gap := expected.Sub(holdingTotal)

	if gap.Abs().LessThan(s.tolerances.For(currency)) {
		return &ledger.Txn{Pos: bal.Pos, Date: bal.Date, Flag: ledger.Balance,
			Postings: []*ast.Posting{{Pos: bal.Pos, Account: bal.Account, Amount: bal.Amount}}}, nil
	}

	info, ok := s.padFrom[bal.Account]
	if !ok {
		return nil, []*errors.Diagnostic{errors.New(errors.NotBalanced, errors.Error, bal.Pos,
			"failed assertion: expected %s %s but holding is %s", expected, currency, holdingTotal).WithDirective(bal)}
	}
	if info.filledCurrencies[currency] {
		// A pad may realize at most once per currency; this assertion is
		// simply dropped rather than re-using it a second time.
		return nil, nil
	}
	if from := s.accounts[info.from]; from != nil && len(from.Currencies) > 0 && !from.Currencies[currency] {
		return nil, []*errors.Diagnostic{errors.New(errors.Account, errors.Error, bal.Pos,
			"pad source account %s does not allow currency %s", info.from, currency).WithDirective(bal)}
	}

	s.balance.Add(bal.Account, currency, nil, gap)
	s.balance.Add(info.from, currency, nil, gap.Neg())
	info.filledCurrencies[currency] = true

	placeholder := s.txns[info.placeholderIndex]
	placeholder.Postings = append(placeholder.Postings,
		&ast.Posting{Pos: bal.Pos, Account: bal.Account, Amount: &ast.Amount{Value: gap.String(), Currency: currency}},
		&ast.Posting{Pos: bal.Pos, Account: info.from, Amount: &ast.Amount{Value: gap.Neg().String(), Currency: currency}},
	)

	return &ledger.Txn{Pos: bal.Pos, Date: bal.Date, Flag: ledger.Balance,
		Postings: []*ast.Posting{{Pos: bal.Pos, Account: bal.Account, Amount: bal.Amount}}}, nil
}
