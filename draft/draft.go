// Package draft accumulates directives parsed out of one or more included
// files into a LedgerDraft, and merges per-file drafts into one per spec
// §4.D's policy. The draft is unchecked: no account/balance validation
// happens here, that is the checker package's job (spec §4.E). Draft types
// reuse the ast package's directive types directly rather than re-typing
// them, since nothing about a transaction/pad/balance changes shape between
// "parsed" and "about to be checked".
package draft

import "github.com/ledgerfall/beanledger/ast"

// AccountInfoDraft accumulates everything parsed about one account across
// however many files mention it, before the checker validates it into a
// ledger.AccountInfo.
type AccountInfoDraft struct {
	Account   ast.Account
	Open      *ast.Open
	Close     *ast.Close
	Notes     []*ast.Note
	Documents []*ast.Document
}

// LedgerDraft is the parser's output: every directive it recovered, grouped
// by kind, not yet validated against each other.
type LedgerDraft struct {
	Files        []string
	Transactions []*ast.Transaction
	Pads         []*ast.Pad
	Balances     []*ast.Balance
	Events       []*ast.Event
	Options      []*ast.Option
	Commodities  map[string]*ast.Commodity
	Accounts     map[ast.Account]*AccountInfoDraft
}

// New returns an empty LedgerDraft ready to accumulate directives.
func New() *LedgerDraft {
	return &LedgerDraft{
		Commodities: make(map[string]*ast.Commodity),
		Accounts:    make(map[ast.Account]*AccountInfoDraft),
	}
}

func (d *LedgerDraft) accountInfo(account ast.Account) *AccountInfoDraft {
	info, ok := d.Accounts[account]
	if !ok {
		info = &AccountInfoDraft{Account: account}
		d.Accounts[account] = info
	}
	return info
}

// FromAST folds one parsed file's directives into a fresh LedgerDraft.
// filename is recorded in Files even if the AST is empty, so an included
// file that parses to nothing still shows up in Ledger.Files.
func FromAST(tree *ast.AST, filename string) *LedgerDraft {
	d := New()
	d.Files = append(d.Files, filename)
	d.Options = append(d.Options, tree.Options...)

	for _, directive := range tree.Directives {
		switch dir := directive.(type) {
		case *ast.Transaction:
			d.Transactions = append(d.Transactions, dir)
		case *ast.Pad:
			d.Pads = append(d.Pads, dir)
		case *ast.Balance:
			d.Balances = append(d.Balances, dir)
		case *ast.Event:
			d.Events = append(d.Events, dir)
		case *ast.Commodity:
			if _, exists := d.Commodities[dir.Currency]; !exists {
				d.Commodities[dir.Currency] = dir
			}
		case *ast.Open:
			d.accountInfo(dir.Account).Open = dir
		case *ast.Close:
			d.accountInfo(dir.Account).Close = dir
		case *ast.Note:
			info := d.accountInfo(dir.Account)
			info.Notes = append(info.Notes, dir)
		case *ast.Document:
			info := d.accountInfo(dir.Account)
			info.Documents = append(info.Documents, dir)
		}
	}

	return d
}
