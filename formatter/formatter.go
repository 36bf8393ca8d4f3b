// Package formatter renders ast directives back to Beancount source text.
//
// Rendering is canonical, not preservationist: it does not try to reproduce
// the original file's comments, blank lines, or column choices verbatim.
// Spec's round-trip invariant only requires that re-parsing a rendered open,
// close, posted transaction, or balance yield the same ledger-semantic
// content — not that the bytes match the input file. Amounts within a
// transaction are aligned on a configurable currency column, matching
// Beancount's conventional layout.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ledgerfall/beanledger/ast"
)

const (
	// DefaultCurrencyColumn is the column (0-indexed) at which a posting's
	// amount text starts; a prefix wider than that falls back to
	// MinimumSpacing.
	DefaultCurrencyColumn = 52

	// DefaultIndentation is the number of spaces a posting or metadata line
	// is indented under its parent directive.
	DefaultIndentation = 2

	// MinimumSpacing is the smallest gap kept between an account name (or
	// other prefix) and the amount that follows it.
	MinimumSpacing = 2
)

// Formatter renders directives with a fixed set of layout choices.
type Formatter struct {
	currencyColumn int
	indentation    int
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithCurrencyColumn overrides the column amounts align to.
func WithCurrencyColumn(col int) Option {
	return func(f *Formatter) { f.currencyColumn = col }
}

// WithIndentation overrides the posting/metadata indentation width.
func WithIndentation(n int) Option {
	return func(f *Formatter) { f.indentation = n }
}

// New builds a Formatter with the given options applied over the defaults.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		currencyColumn: DefaultCurrencyColumn,
		indentation:    DefaultIndentation,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FormatDirective renders a single directive, dispatching on its kind.
func (f *Formatter) FormatDirective(d ast.Directive, w io.Writer) error {
	switch v := d.(type) {
	case *ast.Commodity:
		return f.formatCommodity(v, w)
	case *ast.Open:
		return f.formatOpen(v, w)
	case *ast.Close:
		return f.formatClose(v, w)
	case *ast.Balance:
		return f.formatBalance(v, w)
	case *ast.Pad:
		return f.formatPad(v, w)
	case *ast.Note:
		return f.formatNote(v, w)
	case *ast.Document:
		return f.formatDocument(v, w)
	case *ast.Price:
		return f.formatPrice(v, w)
	case *ast.Event:
		return f.formatEvent(v, w)
	case *ast.Custom:
		return f.formatCustom(v, w)
	case *ast.Transaction:
		return f.FormatTransaction(v, w)
	default:
		return fmt.Errorf("formatter: unknown directive type %T", d)
	}
}

// FormatOption renders a top-level `option` directive.
func (f *Formatter) FormatOption(o *ast.Option, w io.Writer) error {
	_, err := fmt.Fprintf(w, "option %s %s\n", quote(o.Name), quote(o.Value))
	return err
}

// FormatInclude renders a top-level `include` directive.
func (f *Formatter) FormatInclude(i *ast.Include, w io.Writer) error {
	_, err := fmt.Fprintf(w, "include %s\n", quote(i.Filename))
	return err
}

func (f *Formatter) formatCommodity(c *ast.Commodity, w io.Writer) error {
	if _, err := fmt.Fprintln(w, withComment(fmt.Sprintf("%s commodity %s", c.Date, c.Currency), c.Comment)); err != nil {
		return err
	}
	return f.formatMetadata(c.Metadata, w)
}

func (f *Formatter) formatOpen(o *ast.Open, w io.Writer) error {
	line := fmt.Sprintf("%s open %s", o.Date, o.Account)
	if len(o.ConstraintCurrencies) > 0 {
		line += " " + strings.Join(o.ConstraintCurrencies, ",")
	}
	if o.BookingMethod != "" {
		line += " " + quote(o.BookingMethod)
	}
	if _, err := fmt.Fprintln(w, withComment(line, o.Comment)); err != nil {
		return err
	}
	return f.formatMetadata(o.Metadata, w)
}

func (f *Formatter) formatClose(c *ast.Close, w io.Writer) error {
	line := fmt.Sprintf("%s close %s", c.Date, c.Account)
	if _, err := fmt.Fprintln(w, withComment(line, c.Comment)); err != nil {
		return err
	}
	return f.formatMetadata(c.Metadata, w)
}

func (f *Formatter) formatBalance(b *ast.Balance, w io.Writer) error {
	line := fmt.Sprintf("%s balance %s %s %s", b.Date, b.Account, b.Amount.Value, b.Amount.Currency)
	if _, err := fmt.Fprintln(w, withComment(line, b.Comment)); err != nil {
		return err
	}
	return f.formatMetadata(b.Metadata, w)
}

func (f *Formatter) formatPad(p *ast.Pad, w io.Writer) error {
	line := fmt.Sprintf("%s pad %s %s", p.Date, p.Account, p.AccountPad)
	if _, err := fmt.Fprintln(w, withComment(line, p.Comment)); err != nil {
		return err
	}
	return f.formatMetadata(p.Metadata, w)
}

func (f *Formatter) formatNote(n *ast.Note, w io.Writer) error {
	line := fmt.Sprintf("%s note %s %s", n.Date, n.Account, quote(n.Description))
	if _, err := fmt.Fprintln(w, withComment(line, n.Comment)); err != nil {
		return err
	}
	return f.formatMetadata(n.Metadata, w)
}

func (f *Formatter) formatDocument(d *ast.Document, w io.Writer) error {
	line := fmt.Sprintf("%s document %s %s", d.Date, d.Account, quote(d.PathToDocument))
	if _, err := fmt.Fprintln(w, withComment(line, d.Comment)); err != nil {
		return err
	}
	return f.formatMetadata(d.Metadata, w)
}

func (f *Formatter) formatPrice(p *ast.Price, w io.Writer) error {
	line := fmt.Sprintf("%s price %s %s %s", p.Date, p.Commodity, p.Amount.Value, p.Amount.Currency)
	if _, err := fmt.Fprintln(w, withComment(line, p.Comment)); err != nil {
		return err
	}
	return f.formatMetadata(p.Metadata, w)
}

func (f *Formatter) formatEvent(e *ast.Event, w io.Writer) error {
	line := fmt.Sprintf("%s event %s %s", e.Date, quote(e.Name), quote(e.Value))
	if _, err := fmt.Fprintln(w, withComment(line, e.Comment)); err != nil {
		return err
	}
	return f.formatMetadata(e.Metadata, w)
}

func (f *Formatter) formatCustom(c *ast.Custom, w io.Writer) error {
	parts := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		parts = append(parts, formatCustomValue(v))
	}
	line := fmt.Sprintf("%s custom %s %s", c.Date, quote(c.Type), strings.Join(parts, " "))
	if _, err := fmt.Fprintln(w, withComment(line, c.Comment)); err != nil {
		return err
	}
	return f.formatMetadata(c.Metadata, w)
}

func formatCustomValue(v *ast.CustomValue) string {
	switch {
	case v.String != nil:
		return quote(*v.String)
	case v.BooleanValue != nil:
		return *v.BooleanValue
	case v.Amount != nil:
		return v.Amount.Value + " " + v.Amount.Currency
	case v.Number != nil:
		return *v.Number
	default:
		return ""
	}
}

// FormatTransaction renders a single transaction, aligning each posting's
// amount (when present) to the formatter's currency column.
func (f *Formatter) FormatTransaction(t *ast.Transaction, w io.Writer) error {
	header := fmt.Sprintf("%s %s", t.Date, t.Flag)
	if t.Payee != "" {
		header += " " + quote(t.Payee)
	}
	if t.Narration != "" || t.Payee != "" {
		header += " " + quote(t.Narration)
	}
	for _, tag := range t.Tags {
		header += " #" + string(tag)
	}
	for _, link := range t.Links {
		header += " ^" + string(link)
	}
	if _, err := fmt.Fprintln(w, withComment(header, t.Comment)); err != nil {
		return err
	}
	if err := f.formatMetadata(t.Metadata, w); err != nil {
		return err
	}
	for _, p := range t.Postings {
		if err := f.formatPosting(p, w); err != nil {
			return err
		}
	}
	return nil
}

func (f *Formatter) formatPosting(p *ast.Posting, w io.Writer) error {
	indent := strings.Repeat(" ", f.indentation)
	prefix := indent
	if p.Flag != "" {
		prefix += p.Flag + " "
	}
	prefix += string(p.Account)

	var suffix string
	if p.Amount != nil {
		suffix = p.Amount.Value + " " + p.Amount.Currency
		if p.Cost != nil {
			suffix += " " + formatCost(p.Cost)
		}
		if p.Price != nil {
			marker := "@"
			if p.PriceTotal {
				marker = "@@"
			}
			suffix += " " + marker + " " + p.Price.Value + " " + p.Price.Currency
		}
	}

	line := prefix
	if suffix != "" {
		line = f.align(prefix, suffix)
	}
	if _, err := fmt.Fprintln(w, withComment(line, p.Comment)); err != nil {
		return err
	}
	return f.formatMetadata(p.Metadata, w)
}

// align pads prefix with spaces so suffix starts at the formatter's
// currency column, falling back to a minimum gap when the prefix is already
// wider than that column.
func (f *Formatter) align(prefix, suffix string) string {
	width := runewidth.StringWidth(prefix)
	pad := f.currencyColumn - width
	if pad < MinimumSpacing {
		pad = MinimumSpacing
	}
	return prefix + strings.Repeat(" ", pad) + suffix
}

func formatCost(c *ast.Cost) string {
	if c.IsEmpty() {
		if c.IsTotal {
			return "{{}}"
		}
		return "{}"
	}
	open, close := "{", "}"
	if c.IsTotal {
		open, close = "{{", "}}"
	}
	var parts []string
	if c.Amount != nil {
		parts = append(parts, c.Amount.Value+" "+c.Amount.Currency)
	}
	if c.Date != nil {
		parts = append(parts, c.Date.String())
	}
	if c.Label != "" {
		parts = append(parts, quote(c.Label))
	}
	return open + strings.Join(parts, ", ") + close
}

func (f *Formatter) formatMetadata(meta []*ast.Metadata, w io.Writer) error {
	indent := strings.Repeat(" ", f.indentation)
	for _, m := range meta {
		if m.Inline {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s%s: %s\n", indent, m.Key, m.Value.String()); err != nil {
			return err
		}
	}
	return nil
}

func withComment(line, comment string) string {
	if comment == "" {
		return line
	}
	return line + "  ; " + comment
}

// quote wraps s in double quotes, escaping characters that would otherwise
// break the Beancount string grammar.
func quote(s string) string {
	var buf strings.Builder
	buf.Grow(len(s) + 2)
	buf.WriteByte('"')
	for _, c := range s {
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\t':
			buf.WriteString(`\t`)
		case '\r':
			buf.WriteString(`\r`)
		default:
			buf.WriteRune(c)
		}
	}
	buf.WriteByte('"')
	return buf.String()
}
