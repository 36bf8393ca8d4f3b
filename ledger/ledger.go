// Package ledger holds the checked, validated output of the ingestion
// pipeline: accounts, commodities, the chronologically-replayed transaction
// list, and the final balance sheet. Nothing in this package performs
// validation; it is pure data plus read-only accessors, built exclusively by
// the checker package (spec §4.F).
package ledger

import (
	"sort"

	"github.com/ledgerfall/beanledger/ast"
)

// Flag distinguishes the four kinds of chronologically-replayed entry a
// Txn can represent. Only Posted and Pending come from `ast.Transaction`
// directly; Pad and Balance are the realized form of their respective
// directives once the checker has given them their final postings (spec
// §4.E.4, §4.E.6, scenario 5 in spec §8).
type Flag int

const (
	Pending Flag = iota
	Posted
	Pad
	Balance
)

func (f Flag) String() string {
	switch f {
	case Pending:
		return "?"
	case Posted:
		return "*"
	case Pad:
		return "P"
	case Balance:
		return "B"
	default:
		return "?"
	}
}

// Txn is one chronologically-ordered entry in the final ledger: a checked
// transaction, a realized pad (its two back-patched postings), or a checked
// balance assertion (its single posting, kept only if still valid).
type Txn struct {
	Pos       ast.Position
	Date      ast.Date
	Flag      Flag
	Payee     string
	Narration string
	Tags      []ast.Tag
	Links     []ast.Link
	Postings  []*ast.Posting
}

// Ledger is the validated, immutable result of ingesting one or more
// Beancount-flavored files. A fresh FromFile call is the only way to
// produce an updated Ledger; nothing here is mutated after the checker
// returns it.
type Ledger struct {
	files        []string
	accounts     map[ast.Account]*AccountInfo
	commodities  map[string]*Commodity
	txns         []*Txn
	options      []*ast.Option
	events       map[string][]*ast.Event
	balanceSheet *BalanceSheet
}

// New assembles a Ledger from its checked parts. Called only by the
// checker package once replay has finished.
func New(files []string, accounts map[ast.Account]*AccountInfo, commodities map[string]*Commodity,
	txns []*Txn, options []*ast.Option, events map[string][]*ast.Event, balanceSheet *BalanceSheet) *Ledger {
	return &Ledger{
		files:        files,
		accounts:     accounts,
		commodities:  commodities,
		txns:         txns,
		options:      options,
		events:       events,
		balanceSheet: balanceSheet,
	}
}

func (l *Ledger) Files() []string { return l.files }

// Account returns the checked info for name, or nil if it was never opened.
func (l *Ledger) Account(name ast.Account) *AccountInfo { return l.accounts[name] }

// Accounts returns every open account, sorted by name.
func (l *Ledger) Accounts() []*AccountInfo {
	names := make([]ast.Account, 0, len(l.accounts))
	for name := range l.accounts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	infos := make([]*AccountInfo, len(names))
	for i, name := range names {
		infos[i] = l.accounts[name]
	}
	return infos
}

// Commodity returns the checked commodity info for currency, or nil.
func (l *Ledger) Commodity(currency string) *Commodity { return l.commodities[currency] }

func (l *Ledger) Commodities() []*Commodity {
	currencies := make([]string, 0, len(l.commodities))
	for c := range l.commodities {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	commodities := make([]*Commodity, len(currencies))
	for i, c := range currencies {
		commodities[i] = l.commodities[c]
	}
	return commodities
}

// Txns returns every entry of the chronological replay, sorted by
// (date, flag order key) per spec §4.E.3 / invariant 6.
func (l *Ledger) Txns() []*Txn { return l.txns }

func (l *Ledger) Options() []*ast.Option { return l.options }

// Events returns every event recorded under name, in the order observed.
func (l *Ledger) Events(name string) []*ast.Event { return l.events[name] }

// EventNames returns every distinct event name recorded, sorted.
func (l *Ledger) EventNames() []string {
	names := make([]string, 0, len(l.events))
	for name := range l.events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Ledger) BalanceSheet() *BalanceSheet { return l.balanceSheet }
