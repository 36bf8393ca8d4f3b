package ledger

import "github.com/ledgerfall/beanledger/ast"

// Commodity is the checked view of a `commodity` directive: mostly a home
// for metadata, notably the per-currency `tolerance:` override (spec
// §4.E.2).
type Commodity struct {
	Currency string
	Date     ast.Date
	Pos      ast.Position
	Metadata []*ast.Metadata
}
