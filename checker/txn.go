package checker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerfall/beanledger/ast"
	"github.com/ledgerfall/beanledger/errors"
	"github.com/ledgerfall/beanledger/ledger"
)

// currencyDelta is one currency's net effect of a single posting, used to
// build per_currency_change (spec §4.E.5).
type currencyDelta struct {
	currency string
	amount   decimal.Decimal
}

// costResult is what processing a single cost-carrying posting produces:
// the output posting(s) (more than one only for expand-close-all) and the
// per-currency changes they contribute.
type costResult struct {
	postings []*ast.Posting
	changes  []currencyDelta
}

func clonePosting(p *ast.Posting) *ast.Posting {
	c := *p
	return &c
}

func signOf(n decimal.Decimal) decimal.Decimal {
	if n.IsNegative() {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// checkCompleteTxn implements spec §4.E.5: validates and completes the
// postings of a Posted or Pending transaction against a scratch copy of the
// running balance, committing only on success.
func checkCompleteTxn(s *replayState, txn *ast.Transaction, flag ledger.Flag) (*ledger.Txn, []*errors.Diagnostic) {
	working := s.balance.Clone()
	perCurrencyChange := make(map[string]decimal.Decimal)
	var inferrable *ast.Posting
	var valid []*ast.Posting
	var diags []*errors.Diagnostic

	addChange := func(currency string, amount decimal.Decimal) {
		perCurrencyChange[currency] = perCurrencyChange[currency].Add(amount)
	}

	for _, p := range txn.Postings {
		switch {
		case p.Amount == nil:
			if inferrable != nil {
				diags = append(diags, errors.New(errors.Incomplete, errors.Error, p.Pos,
					"more than one posting without an amount").WithDirective(txn))
				return nil, diags
			}
			inferrable = p

		case p.Cost == nil:
			num, err := decimal.NewFromString(p.Amount.Value)
			if err != nil {
				diags = append(diags, errors.New(errors.Syntax, errors.Error, p.Pos,
					"invalid amount %q", p.Amount.Value).WithDirective(txn))
				return nil, diags
			}
			if p.Price != nil && num.IsZero() {
				diags = append(diags, errors.New(errors.Incomplete, errors.Error, p.Pos,
					"posting with a price must have a nonzero amount").WithDirective(txn))
				return nil, diags
			}
			canon := clonePosting(p)
			changeCurrency := p.Amount.Currency
			changeAmt := num
			if p.Price != nil {
				priceAmt, err := decimal.NewFromString(p.Price.Value)
				if err != nil {
					diags = append(diags, errors.New(errors.Syntax, errors.Error, p.Pos,
						"invalid price %q", p.Price.Value).WithDirective(txn))
					return nil, diags
				}
				changeCurrency = p.Price.Currency
				if p.PriceTotal {
					changeAmt = signOf(num).Mul(priceAmt)
					if !num.IsZero() {
						unit := priceAmt.Div(num.Abs())
						canon.Price = &ast.Amount{Value: unit.String(), Currency: p.Price.Currency}
						canon.PriceTotal = false
					}
				} else {
					changeAmt = num.Mul(priceAmt)
				}
			}
			addChange(changeCurrency, changeAmt)
			working.Add(p.Account, p.Amount.Currency, nil, num)
			valid = append(valid, canon)

		default:
			result, deferred, diag := applyCostPosting(working, p, txn.Date)
			if diag != nil {
				diags = append(diags, diag.WithDirective(txn))
				return nil, diags
			}
			if deferred {
				if inferrable != nil {
					diags = append(diags, errors.New(errors.Incomplete, errors.Error, p.Pos,
						"more than one posting without an amount").WithDirective(txn))
					return nil, diags
				}
				inferrable = p
				continue
			}
			for _, change := range result.changes {
				addChange(change.currency, change.amount)
			}
			valid = append(valid, result.postings...)
		}
	}

	notBalanced := make(map[string]decimal.Decimal)
	for currency, change := range perCurrencyChange {
		if change.Abs().GreaterThanOrEqual(s.tolerances.For(currency)) {
			notBalanced[currency] = change
		}
	}

	if inferrable != nil {
		if inferrable.Cost == nil {
			for currency, change := range notBalanced {
				amount := change.Neg()
				posting := &ast.Posting{Pos: inferrable.Pos, Flag: inferrable.Flag, Account: inferrable.Account,
					Amount: &ast.Amount{Value: amount.String(), Currency: currency}}
				working.Add(inferrable.Account, currency, nil, amount)
				valid = append(valid, posting)
			}
			notBalanced = nil
		} else {
			if len(notBalanced) != 1 {
				diags = append(diags, errors.New(errors.Incomplete, errors.Error, inferrable.Pos,
					"cannot infer cost basis: more than one unbalanced currency").WithDirective(txn))
				return nil, diags
			}
			var currency string
			var change decimal.Decimal
			for c, v := range notBalanced {
				currency, change = c, v
			}
			infNum, err := decimal.NewFromString(inferrable.Amount.Value)
			if err != nil || infNum.IsZero() {
				diags = append(diags, errors.New(errors.Incomplete, errors.Error, inferrable.Pos,
					"cannot infer cost basis for posting").WithDirective(txn))
				return nil, diags
			}
			perUnit := change.Neg().Div(infNum)
			costDate := txn.Date
			if inferrable.Cost.Date != nil {
				costDate = *inferrable.Cost.Date
			}
			unitCost := &ledger.UnitCost{Amount: ast.Amount{Value: perUnit.String(), Currency: currency}, Date: costDate}
			working.Add(inferrable.Account, inferrable.Amount.Currency, unitCost, infNum)
			posting := &ast.Posting{Pos: inferrable.Pos, Flag: inferrable.Flag, Account: inferrable.Account,
				Amount: inferrable.Amount,
				Cost:   &ast.Cost{Amount: &ast.Amount{Value: perUnit.String(), Currency: currency}, Date: &costDate, Label: inferrable.Cost.Label}}
			valid = append(valid, posting)
			delete(notBalanced, currency)
		}
	}

	if len(notBalanced) > 0 {
		parts := make([]string, 0, len(notBalanced))
		for currency, change := range notBalanced {
			parts = append(parts, fmt.Sprintf("%s %s", change, currency))
		}
		sort.Strings(parts)
		diags = append(diags, errors.New(errors.NotBalanced, errors.Error, txn.Pos,
			"transaction does not balance: %s", strings.Join(parts, ", ")).WithDirective(txn))
		return nil, diags
	}

	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Account < valid[j].Account })
	s.balance = working

	return &ledger.Txn{
		Pos:       txn.Pos,
		Date:      txn.Date,
		Flag:      flag,
		Payee:     txn.Payee,
		Narration: txn.Narration,
		Tags:      txn.Tags,
		Links:     txn.Links,
		Postings:  valid,
	}, diags
}

// applyCostPosting implements spec §4.E.5 step 3: deciding whether a
// cost-carrying posting opens or closes a lot, and applying it to working.
// deferred is true when an opening posting omits its basis, meaning the
// caller should treat it as the transaction's single inferrable posting.
func applyCostPosting(working *ledger.BalanceSheet, p *ast.Posting, txnDate ast.Date) (result *costResult, deferred bool, diag *errors.Diagnostic) {
	currency := p.Amount.Currency
	num, err := decimal.NewFromString(p.Amount.Value)
	if err != nil {
		return nil, false, errors.New(errors.Syntax, errors.Error, p.Pos, "invalid amount %q", p.Amount.Value)
	}

	opening := true
	for _, lot := range working.Lots(p.Account, currency) {
		if !lot.HasCost() {
			continue
		}
		if !lot.Amount.IsZero() && signOf(lot.Amount) != signOf(num) {
			opening = false
			break
		}
	}

	if opening {
		if p.Cost.Amount == nil {
			return nil, true, nil
		}
		basisAmt, err := decimal.NewFromString(p.Cost.Amount.Value)
		if err != nil {
			return nil, false, errors.New(errors.Syntax, errors.Error, p.Pos, "invalid cost amount %q", p.Cost.Amount.Value)
		}
		if num.IsZero() {
			return nil, false, errors.New(errors.Incomplete, errors.Error, p.Pos, "cannot open a zero-amount lot")
		}
		perUnit := basisAmt
		var changeAmt decimal.Decimal
		if p.Cost.IsTotal {
			perUnit = basisAmt.Div(num.Abs())
			changeAmt = signOf(num).Mul(basisAmt)
		} else {
			changeAmt = num.Mul(basisAmt)
		}
		costDate := txnDate
		if p.Cost.Date != nil {
			costDate = *p.Cost.Date
		}
		unitCost := &ledger.UnitCost{Amount: ast.Amount{Value: perUnit.String(), Currency: p.Cost.Amount.Currency}, Date: costDate}
		working.Add(p.Account, currency, unitCost, num)

		canon := clonePosting(p)
		canon.Cost = &ast.Cost{Amount: &ast.Amount{Value: perUnit.String(), Currency: p.Cost.Amount.Currency}, Date: &costDate, Label: p.Cost.Label}

		return &costResult{
			postings: []*ast.Posting{canon},
			changes:  []currencyDelta{{currency: p.Cost.Amount.Currency, amount: changeAmt}},
		}, false, nil
	}

	// Closing: branch on which parts of the cost literal were specified.
	basisSpecified := p.Cost.Amount != nil
	dateSpecified := p.Cost.Date != nil

	switch {
	case !basisSpecified && !dateSpecified:
		return expandCloseAll(working, p, num, currency)

	case basisSpecified && dateSpecified:
		basisAmt, err := decimal.NewFromString(p.Cost.Amount.Value)
		if err != nil {
			return nil, false, errors.New(errors.Syntax, errors.Error, p.Pos, "invalid cost amount %q", p.Cost.Amount.Value)
		}
		if p.Cost.IsTotal {
			if num.IsZero() {
				return nil, false, errors.New(errors.Incomplete, errors.Error, p.Pos, "cannot close a zero-amount lot")
			}
			basisAmt = basisAmt.Div(num.Abs())
		}
		key := &ledger.UnitCost{Amount: ast.Amount{Value: basisAmt.String(), Currency: p.Cost.Amount.Currency}, Date: *p.Cost.Date}
		lot := working.FindLot(p.Account, currency, key)
		if lot == nil {
			return nil, false, errors.New(errors.NoMatch, errors.Error, p.Pos, "no matching lot to close in %s", currency)
		}
		return closeExactLot(working, p, lot, num, currency)

	default:
		candidates, matchErr := matchingLots(working, p, currency, num, basisSpecified, dateSpecified)
		if matchErr != nil {
			return nil, false, matchErr
		}
		switch len(candidates) {
		case 0:
			return nil, false, errors.New(errors.NoMatch, errors.Error, p.Pos, "no matching lot to close in %s", currency)
		case 1:
			return closeExactLot(working, p, candidates[0], num, currency)
		default:
			return nil, false, errors.New(errors.NoMatch, errors.Error, p.Pos, "multiple positions match cost selector in %s", currency)
		}
	}
}

func matchingLots(working *ledger.BalanceSheet, p *ast.Posting, currency string, num decimal.Decimal, basisSpecified, dateSpecified bool) ([]*ledger.Lot, *errors.Diagnostic) {
	var basisAmt decimal.Decimal
	if basisSpecified {
		var err error
		basisAmt, err = decimal.NewFromString(p.Cost.Amount.Value)
		if err != nil {
			return nil, errors.New(errors.Syntax, errors.Error, p.Pos, "invalid cost amount %q", p.Cost.Amount.Value)
		}
		if p.Cost.IsTotal {
			if num.IsZero() {
				return nil, errors.New(errors.Incomplete, errors.Error, p.Pos, "cannot close a zero-amount lot")
			}
			basisAmt = basisAmt.Div(num.Abs())
		}
	}

	var candidates []*ledger.Lot
	for _, lot := range working.Lots(p.Account, currency) {
		if !lot.HasCost() {
			continue
		}
		if basisSpecified {
			lotAmt, err := decimal.NewFromString(lot.Cost.Amount.Value)
			if err != nil || !lotAmt.Equal(basisAmt) || lot.Cost.Amount.Currency != p.Cost.Amount.Currency {
				continue
			}
		}
		if dateSpecified && !lot.Cost.Date.Equal(*p.Cost.Date) {
			continue
		}
		candidates = append(candidates, lot)
	}
	return candidates, nil
}

func closeExactLot(working *ledger.BalanceSheet, p *ast.Posting, lot *ledger.Lot, num decimal.Decimal, currency string) (*costResult, bool, *errors.Diagnostic) {
	if lot.Amount.Abs().LessThan(num.Abs()) {
		return nil, false, errors.New(errors.NoMatch, errors.Error, p.Pos, "insufficient lot held to close in %s", currency)
	}
	working.Add(p.Account, currency, lot.Cost, num)

	perUnit, err := decimal.NewFromString(lot.Cost.Amount.Value)
	if err != nil {
		return nil, false, errors.New(errors.Syntax, errors.Error, p.Pos, "invalid lot cost amount %q", lot.Cost.Amount.Value)
	}
	changeAmt := num.Mul(perUnit)

	costDate := lot.Cost.Date
	canon := clonePosting(p)
	canon.Amount = &ast.Amount{Value: num.String(), Currency: currency}
	canon.Cost = &ast.Cost{Amount: &ast.Amount{Value: lot.Cost.Amount.Value, Currency: lot.Cost.Amount.Currency}, Date: &costDate, Label: p.Cost.Label}

	return &costResult{
		postings: []*ast.Posting{canon},
		changes:  []currencyDelta{{currency: lot.Cost.Amount.Currency, amount: changeAmt}},
	}, false, nil
}

// expandCloseAll implements spec §4.E.5's (None, None) closing branch: the
// posting's amount must exactly offset every existing cost lot, each of
// which is closed in full and reported as its own synthetic posting.
func expandCloseAll(working *ledger.BalanceSheet, p *ast.Posting, num decimal.Decimal, currency string) (*costResult, bool, *errors.Diagnostic) {
	lots := working.Lots(p.Account, currency)
	var costLots []*ledger.Lot
	sum := decimal.Zero
	for _, lot := range lots {
		if lot.HasCost() {
			costLots = append(costLots, lot)
			sum = sum.Add(lot.Amount)
		}
	}
	if !sum.Add(num).IsZero() {
		return nil, false, errors.New(errors.NoMatch, errors.Error, p.Pos,
			"posting amount does not exactly offset held lots in %s", currency)
	}

	var postings []*ast.Posting
	var changes []currencyDelta
	for _, lot := range costLots {
		closeAmt := lot.Amount.Neg()
		working.Add(p.Account, currency, lot.Cost, closeAmt)

		perUnit, err := decimal.NewFromString(lot.Cost.Amount.Value)
		if err != nil {
			return nil, false, errors.New(errors.Syntax, errors.Error, p.Pos, "invalid lot cost amount %q", lot.Cost.Amount.Value)
		}
		changes = append(changes, currencyDelta{currency: lot.Cost.Amount.Currency, amount: closeAmt.Mul(perUnit)})

		costDate := lot.Cost.Date
		postings = append(postings, &ast.Posting{
			Pos:     p.Pos,
			Flag:    p.Flag,
			Account: p.Account,
			Amount:  &ast.Amount{Value: closeAmt.String(), Currency: currency},
			Cost:    &ast.Cost{Amount: &ast.Amount{Value: lot.Cost.Amount.Value, Currency: lot.Cost.Amount.Currency}, Date: &costDate},
		})
	}

	return &costResult{postings: postings, changes: changes}, false, nil
}
