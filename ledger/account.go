package ledger

import "github.com/ledgerfall/beanledger/ast"

// AccountInfo is the checked view of an account: it always has an Open,
// possibly a Close, and whatever currency restriction, notes and documents
// survived validation (spec §4.E.1).
type AccountInfo struct {
	Account     ast.Account
	OpenDate    ast.Date
	OpenPos     ast.Position
	CloseDate   *ast.Date
	ClosePos    ast.Position
	Currencies  map[string]bool // allowed currencies; empty/nil means unrestricted
	Notes       []*ast.Note
	Documents   []*ast.Document
	Metadata    []*ast.Metadata
}

// IsOpenAt reports whether the account is open on date d: opened on or
// before d, and (if closed) not yet past its close date.
func (a *AccountInfo) IsOpenAt(d ast.Date) bool {
	if d.Before(a.OpenDate) {
		return false
	}
	if a.CloseDate != nil && d.After(*a.CloseDate) {
		return false
	}
	return true
}

// AllowsCurrency reports whether cur may be held in this account. An empty
// restriction set means unrestricted.
func (a *AccountInfo) AllowsCurrency(cur string) bool {
	if len(a.Currencies) == 0 {
		return true
	}
	return a.Currencies[cur]
}
