package ast

// withComment is embedded by directive and posting types that may carry a
// trailing inline comment (`; ...` at the end of their source line). The
// comment is decorative only: it plays no role in checking and is not
// required for the round-trip invariant, which concerns ledger-semantic
// equivalence rather than literal source text.
type withComment struct {
	Comment string
}

func (w *withComment) GetComment() string   { return w.Comment }
func (w *withComment) SetComment(c string)  { w.Comment = c }
