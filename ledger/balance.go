package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerfall/beanledger/ast"
)

// UnitCost identifies a tax lot: the cost it was acquired at, and the date
// of acquisition. Two lots are the same lot iff both fields match exactly
// (spec §3 "UnitCost = (Amount, Date)").
type UnitCost struct {
	Amount ast.Amount
	Date   ast.Date
}

// Lot is one holding of a currency within an account: either acquired at a
// UnitCost (Cost non-nil) or held without cost basis (Cost nil, the "None"
// lot key in spec §4.E.7).
type Lot struct {
	Cost   *UnitCost
	Amount decimal.Decimal
}

// HasCost reports whether l is a cost-tracked lot rather than the
// currencyless "None" slot.
func (l *Lot) HasCost() bool { return l.Cost != nil }

func (l *Lot) matchesKey(cost *UnitCost) bool {
	if (l.Cost == nil) != (cost == nil) {
		return false
	}
	if l.Cost == nil {
		return true
	}
	return l.Cost.Amount == cost.Amount && l.Cost.Date.Equal(cost.Date)
}

// position is one account's holdings of one currency, across every lot.
type position struct {
	lots []*Lot
}

func (p *position) find(cost *UnitCost) *Lot {
	for _, lot := range p.lots {
		if lot.matchesKey(cost) {
			return lot
		}
	}
	return nil
}

// add credits amount to the lot identified by cost, creating it if absent.
func (p *position) add(cost *UnitCost, amount decimal.Decimal) *Lot {
	if lot := p.find(cost); lot != nil {
		lot.Amount = lot.Amount.Add(amount)
		return lot
	}
	lot := &Lot{Cost: cost, Amount: amount}
	p.lots = append(p.lots, lot)
	return lot
}

// total sums every lot's amount, regardless of cost basis.
func (p *position) total() decimal.Decimal {
	sum := decimal.Zero
	for _, lot := range p.lots {
		sum = sum.Add(lot.Amount)
	}
	return sum
}

// prune drops lots that have settled to exactly zero.
func (p *position) prune() {
	kept := p.lots[:0]
	for _, lot := range p.lots {
		if !lot.Amount.IsZero() {
			kept = append(kept, lot)
		}
	}
	p.lots = kept
}

// BalanceSheet is the nested account → currency → lot → amount mapping
// spec §3 describes. It is mutated in place by the checker's chronological
// replay (spec §4.E.4) and exposed read-only on the final Ledger.
type BalanceSheet struct {
	accounts map[ast.Account]map[string]*position
}

// NewBalanceSheet returns an empty BalanceSheet.
func NewBalanceSheet() *BalanceSheet {
	return &BalanceSheet{accounts: make(map[ast.Account]map[string]*position)}
}

func (b *BalanceSheet) positionFor(account ast.Account, currency string) *position {
	byCurrency, ok := b.accounts[account]
	if !ok {
		byCurrency = make(map[string]*position)
		b.accounts[account] = byCurrency
	}
	pos, ok := byCurrency[currency]
	if !ok {
		pos = &position{}
		byCurrency[currency] = pos
	}
	return pos
}

// Add credits amount to account's holding of currency, in the lot
// identified by cost (nil for the currencyless "None" lot).
func (b *BalanceSheet) Add(account ast.Account, currency string, cost *UnitCost, amount decimal.Decimal) {
	b.positionFor(account, currency).add(cost, amount)
}

// Lots returns every lot held for account/currency, used by the checker's
// expand-close-all and partial-match cases (spec §4.E.5).
func (b *BalanceSheet) Lots(account ast.Account, currency string) []*Lot {
	byCurrency, ok := b.accounts[account]
	if !ok {
		return nil
	}
	pos, ok := byCurrency[currency]
	if !ok {
		return nil
	}
	return pos.lots
}

// FindLot returns the lot matching cost exactly (nil cost matches the
// currencyless slot), or nil if account/currency holds no such lot.
func (b *BalanceSheet) FindLot(account ast.Account, currency string, cost *UnitCost) *Lot {
	byCurrency, ok := b.accounts[account]
	if !ok {
		return nil
	}
	pos, ok := byCurrency[currency]
	if !ok {
		return nil
	}
	return pos.find(cost)
}

// Clone deep-copies the sheet so the checker can stage a transaction's
// effects against a scratch copy and discard it on failure without
// disturbing the real running balance (spec §4.E.5's balance_change).
func (b *BalanceSheet) Clone() *BalanceSheet {
	clone := NewBalanceSheet()
	for account, byCurrency := range b.accounts {
		clonedCurrencies := make(map[string]*position, len(byCurrency))
		for currency, pos := range byCurrency {
			lots := make([]*Lot, len(pos.lots))
			for i, lot := range pos.lots {
				lots[i] = &Lot{Cost: lot.Cost, Amount: lot.Amount}
			}
			clonedCurrencies[currency] = &position{lots: lots}
		}
		clone.accounts[account] = clonedCurrencies
	}
	return clone
}

// Total sums every lot of account's holding of currency.
func (b *BalanceSheet) Total(account ast.Account, currency string) decimal.Decimal {
	byCurrency, ok := b.accounts[account]
	if !ok {
		return decimal.Zero
	}
	pos, ok := byCurrency[currency]
	if !ok {
		return decimal.Zero
	}
	return pos.total()
}

// Prune removes zero-amount lots across the whole sheet. The checker calls
// this once, after replay, keeping the final sheet's lot lists minimal.
func (b *BalanceSheet) Prune() {
	for _, byCurrency := range b.accounts {
		for _, pos := range byCurrency {
			pos.prune()
		}
	}
}

// Accounts returns every account with at least one non-zero holding.
func (b *BalanceSheet) Accounts() []ast.Account {
	accounts := make([]ast.Account, 0, len(b.accounts))
	for account, byCurrency := range b.accounts {
	held:
		for _, pos := range byCurrency {
			for _, lot := range pos.lots {
				if !lot.Amount.IsZero() {
					accounts = append(accounts, account)
					break held
				}
			}
		}
	}
	return accounts
}

// Currencies returns every currency account holds a position in.
func (b *BalanceSheet) Currencies(account ast.Account) []string {
	byCurrency, ok := b.accounts[account]
	if !ok {
		return nil
	}
	currencies := make([]string, 0, len(byCurrency))
	for currency := range byCurrency {
		currencies = append(currencies, currency)
	}
	return currencies
}
