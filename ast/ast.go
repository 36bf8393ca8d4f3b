// Package ast declares the in-memory representation of a parsed Beancount
// file: directives, top-level options/includes, and the shared value types
// (Account, Amount, Cost, Date, Metadata, ...) they are built from.
package ast

// AST is everything the parser extracts from a single source file. Tag-stack
// application (pushtag/poptag) happens live during parsing, so pushed tags
// are already baked into Transaction.Tags by the time an AST is returned —
// there is no separate post-processing pass.
type AST struct {
	Directives []Directive
	Options    []*Option
	Includes   []*Include
}
