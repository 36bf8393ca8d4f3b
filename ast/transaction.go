package ast

// Transaction records one ledger entry. Flag is the raw parsed marker: "*"
// for a Posted (cleared) transaction or "?" for a Pending one — the spec's
// §6 deviation adding `?` alongside the conventional `!`. The checker's
// internal replay further distinguishes Pad/Balance as pseudo-transaction
// flags; those never appear here, only on ast.Pad/ast.Balance themselves.
//
//	2014-05-05 * "Cafe Mogador" "Lamb tagine"
//	  Liabilities:CreditCard   -37.45 USD
//	  Expenses:Food:Restaurant
type Transaction struct {
	Pos       Position
	Date      Date
	Flag      string
	Payee     string
	Narration string
	Links     []Link
	Tags      []Tag
	Postings  []*Posting

	withMetadata
	withComment
}

var _ Directive = &Transaction{}

func (t *Transaction) Position() Position  { return t.Pos }
func (t *Transaction) GetDate() Date       { return t.Date }
func (t *Transaction) Kind() DirectiveKind { return KindTransaction }
func (t *Transaction) Directive() string   { return "transaction" }

func (t *Transaction) IsPending() bool { return t.Flag == "?" }

// Posting is one leg of a transaction. Amount is nil when the amount is to
// be inferred by the checker (spec §4.E.5); at most one posting per
// transaction may omit it.
type Posting struct {
	Pos        Position
	Flag       string
	Account    Account
	Amount     *Amount
	Cost       *Cost
	Price      *Amount
	PriceTotal bool // true for `@@` (aggregate), false for `@` (per-unit)

	withMetadata
	withComment
}
