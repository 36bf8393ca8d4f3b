package ast

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Amount pairs a decimal literal (kept as its exact source text) with a
// currency code. Parsing to decimal.Decimal happens lazily downstream, in
// the checker, the first time a numeric value is actually needed.
type Amount struct {
	Value    string
	Currency string
}

// Cost is a posting's cost-basis specification: `{amount}`, `{{amount}}`
// (total), `{date}`, `{amount, date}`, `{amount, "label"}`, or the empty
// `{}` (any lot). IsTotal distinguishes the double-brace total-cost form.
//
// Tax-lot auto-selection strategies (FIFO/LIFO/average, the `{*}` merge
// marker) are out of scope: the checker only ever matches a lot by exact or
// partial (cost, date) key.
type Cost struct {
	Amount  *Amount
	Date    *Date
	Label   string
	IsTotal bool
}

// IsEmpty reports whether this is an empty cost specification `{}`,
// meaning "match any lot" rather than "no cost at all" (a nil *Cost).
func (c *Cost) IsEmpty() bool {
	return c != nil && c.Amount == nil && c.Date == nil && c.Label == ""
}

// Account is a colon-separated account name. Per the grammar (spec §4.A) the
// first segment must start with a character that is not lowercase, not a
// digit, and not punctuation; every segment must be non-empty and must not
// contain any of `,#^":;{}` or whitespace. Unlike stock Beancount, the root
// segment is not restricted to a fixed vocabulary (Assets/Liabilities/...).
type Account string

func ValidateAccount(s string) error {
	segments := strings.Split(s, ":")
	if len(segments) < 2 {
		return fmt.Errorf("account must have at least two colon-separated segments: %q", s)
	}
	for i, seg := range segments {
		if seg == "" {
			return fmt.Errorf("account %q has an empty segment", s)
		}
		if strings.ContainsAny(seg, ",#^\":;{} \t") {
			return fmt.Errorf("account segment %q contains an invalid character", seg)
		}
		if i == 0 {
			r := []rune(seg)[0]
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || unicode.IsPunct(r) {
				return fmt.Errorf("account %q must start with a non-lowercase, non-digit, non-punctuation character", s)
			}
		}
	}
	return nil
}

func (a Account) Segments() []string {
	return strings.Split(string(a), ":")
}

func (a Account) Root() string {
	segs := a.Segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[0]
}

// Date is a calendar date (YYYY-MM-DD). Every directive and transaction
// carries one; it drives both chronological replay and source ordering.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: t}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d Date) IsZero() bool {
	return d.Time.IsZero()
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// Link is a `^`-prefixed reference used to connect related transactions.
type Link string

// Tag is a `#`-prefixed label. Tags pushed with `pushtag` apply to every
// subsequent non-Balance transaction until popped or EOF (spec §4.C).
type Tag string

// MetadataValue is a discriminated union over the nine metadata value
// types the grammar recognizes. Exactly one field is non-nil.
type MetadataValue struct {
	StringValue *string
	Date        *Date
	Account     *Account
	Currency    *string
	Tag         *Tag
	Link        *Link
	Number      *string
	Amount      *Amount
	Boolean     *bool
}

func (m *MetadataValue) Type() string {
	if m == nil {
		return "nil"
	}
	switch {
	case m.StringValue != nil:
		return "string"
	case m.Date != nil:
		return "date"
	case m.Account != nil:
		return "account"
	case m.Currency != nil:
		return "currency"
	case m.Tag != nil:
		return "tag"
	case m.Link != nil:
		return "link"
	case m.Number != nil:
		return "number"
	case m.Amount != nil:
		return "amount"
	case m.Boolean != nil:
		return "boolean"
	default:
		return "unknown"
	}
}

func (m *MetadataValue) String() string {
	if m == nil {
		return ""
	}
	switch {
	case m.StringValue != nil:
		return *m.StringValue
	case m.Date != nil:
		return m.Date.String()
	case m.Account != nil:
		return string(*m.Account)
	case m.Currency != nil:
		return *m.Currency
	case m.Tag != nil:
		return string(*m.Tag)
	case m.Link != nil:
		return string(*m.Link)
	case m.Number != nil:
		return *m.Number
	case m.Amount != nil:
		return m.Amount.Value + " " + m.Amount.Currency
	case m.Boolean != nil:
		if *m.Boolean {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Metadata is a key/value pair attached to a directive or posting. Inline
// metadata appears on the same source line as its parent (postings only);
// block metadata is indented on the following lines.
type Metadata struct {
	Pos    Position
	Key    string
	Value  *MetadataValue
	Inline bool
}

// withMetadata is embedded by every directive and posting type.
type withMetadata struct {
	Metadata []*Metadata
}

func (w *withMetadata) AddMetadata(m ...*Metadata) {
	w.Metadata = append(w.Metadata, m...)
}

func (w *withMetadata) GetMetadata() []*Metadata {
	return w.Metadata
}
