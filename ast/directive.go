package ast

// DirectiveKind is a closed enumeration of the directive types spec §4.A's
// grammar names.
type DirectiveKind int

const (
	KindCommodity DirectiveKind = iota
	KindOpen
	KindClose
	KindBalance
	KindPad
	KindNote
	KindDocument
	KindPrice
	KindEvent
	KindCustom
	KindTransaction
)

func (k DirectiveKind) String() string {
	switch k {
	case KindCommodity:
		return "commodity"
	case KindOpen:
		return "open"
	case KindClose:
		return "close"
	case KindBalance:
		return "balance"
	case KindPad:
		return "pad"
	case KindNote:
		return "note"
	case KindDocument:
		return "document"
	case KindPrice:
		return "price"
	case KindEvent:
		return "event"
	case KindCustom:
		return "custom"
	case KindTransaction:
		return "transaction"
	default:
		return "unknown"
	}
}

// WithMetadata is implemented by every directive and posting.
type WithMetadata interface {
	AddMetadata(...*Metadata)
	GetMetadata() []*Metadata
}

// WithComment is implemented by every directive and posting.
type WithComment interface {
	GetComment() string
	SetComment(string)
}

// Directive is the interface implemented by every top-level dated entry.
type Directive interface {
	WithMetadata
	WithComment

	Position() Position
	GetDate() Date
	Kind() DirectiveKind
	Directive() string
}

// Commodity declares a currency/commodity code. Optional; mainly a home for
// metadata such as display precision.
//
//	2014-01-01 commodity USD
//	  name: "US Dollar"
type Commodity struct {
	Pos      Position
	Date     Date
	Currency string

	withMetadata
	withComment
}

var _ Directive = &Commodity{}

func (c *Commodity) Position() Position      { return c.Pos }
func (c *Commodity) GetDate() Date           { return c.Date }
func (c *Commodity) Kind() DirectiveKind     { return KindCommodity }
func (c *Commodity) Directive() string       { return "commodity" }

// Open marks the start of an account's lifetime, optionally restricting the
// currencies it may hold.
//
//	2014-05-01 open Assets:Checking USD
//	2014-05-01 open Assets:Brokerage USD,EUR
type Open struct {
	Pos                  Position
	Date                 Date
	Account              Account
	ConstraintCurrencies []string
	BookingMethod        string

	withMetadata
	withComment
}

var _ Directive = &Open{}

func (o *Open) Position() Position  { return o.Pos }
func (o *Open) GetDate() Date       { return o.Date }
func (o *Open) Kind() DirectiveKind { return KindOpen }
func (o *Open) Directive() string   { return "open" }

// Close marks the end of an account's lifetime.
//
//	2015-09-23 close Assets:Checking
type Close struct {
	Pos     Position
	Date    Date
	Account Account

	withMetadata
	withComment
}

var _ Directive = &Close{}

func (c *Close) Position() Position  { return c.Pos }
func (c *Close) GetDate() Date       { return c.Date }
func (c *Close) Kind() DirectiveKind { return KindClose }
func (c *Close) Directive() string   { return "close" }

// Balance asserts an account's running total at the start of the given
// date.
//
//	2014-08-09 balance Assets:Checking 562.00 USD
type Balance struct {
	Pos     Position
	Date    Date
	Account Account
	Amount  *Amount

	withMetadata
	withComment
}

var _ Directive = &Balance{}

func (b *Balance) Position() Position  { return b.Pos }
func (b *Balance) GetDate() Date       { return b.Date }
func (b *Balance) Kind() DirectiveKind { return KindBalance }
func (b *Balance) Directive() string   { return "balance" }

// Pad registers a deferred placeholder that the next matching Balance
// assertion for Account realizes against AccountPad.
//
//	2014-01-01 pad Assets:Checking Equity:Opening-Balances
type Pad struct {
	Pos        Position
	Date       Date
	Account    Account
	AccountPad Account

	withMetadata
	withComment
}

var _ Directive = &Pad{}

func (p *Pad) Position() Position  { return p.Pos }
func (p *Pad) GetDate() Date       { return p.Date }
func (p *Pad) Kind() DirectiveKind { return KindPad }
func (p *Pad) Directive() string   { return "pad" }

// Note attaches a dated text note to an account.
//
//	2014-07-09 note Assets:Checking "Called bank about pending deposit"
type Note struct {
	Pos         Position
	Date        Date
	Account     Account
	Description string

	withMetadata
	withComment
}

var _ Directive = &Note{}

func (n *Note) Position() Position  { return n.Pos }
func (n *Note) GetDate() Date       { return n.Date }
func (n *Note) Kind() DirectiveKind { return KindNote }
func (n *Note) Directive() string   { return "note" }

// Document links an external file to an account at a given date.
//
//	2014-07-09 document Assets:Checking "statements/2014-07.pdf"
type Document struct {
	Pos            Position
	Date           Date
	Account        Account
	PathToDocument string

	withMetadata
	withComment
}

var _ Directive = &Document{}

func (d *Document) Position() Position  { return d.Pos }
func (d *Document) GetDate() Date       { return d.Date }
func (d *Document) Kind() DirectiveKind { return KindDocument }
func (d *Document) Directive() string   { return "document" }

// Price records a market price for a commodity on a given date.
//
//	2014-07-09 price HOOL 582.26 USD
type Price struct {
	Pos       Position
	Date      Date
	Commodity string
	Amount    *Amount

	withMetadata
	withComment
}

var _ Directive = &Price{}

func (p *Price) Position() Position  { return p.Pos }
func (p *Price) GetDate() Date       { return p.Date }
func (p *Price) Kind() DirectiveKind { return KindPrice }
func (p *Price) Directive() string   { return "price" }

// Event records a named state change at a given date.
//
//	2014-07-09 event "location" "New York, USA"
type Event struct {
	Pos   Position
	Date  Date
	Name  string
	Value string

	withMetadata
	withComment
}

var _ Directive = &Event{}

func (e *Event) Position() Position  { return e.Pos }
func (e *Event) GetDate() Date       { return e.Date }
func (e *Event) Kind() DirectiveKind { return KindEvent }
func (e *Event) Directive() string   { return "event" }

// Custom carries an arbitrary typed payload under a named directive type.
//
//	2014-07-09 custom "budget" "rent" TRUE 45.30 USD
type Custom struct {
	Pos    Position
	Date   Date
	Type   string
	Values []*CustomValue

	withMetadata
	withComment
}

var _ Directive = &Custom{}

func (c *Custom) Position() Position  { return c.Pos }
func (c *Custom) GetDate() Date       { return c.Date }
func (c *Custom) Kind() DirectiveKind { return KindCustom }
func (c *Custom) Directive() string   { return "custom" }

// CustomValue is one positional value of a Custom directive. Exactly one
// field is non-nil.
type CustomValue struct {
	String       *string
	BooleanValue *string // literal "TRUE"/"FALSE"
	Amount       *Amount
	Number       *string
}

func (cv *CustomValue) IsBoolean() bool {
	return cv.BooleanValue != nil
}

func (cv *CustomValue) Boolean() bool {
	return cv.BooleanValue != nil && *cv.BooleanValue == "TRUE"
}

func (cv *CustomValue) GetValue() any {
	switch {
	case cv.String != nil:
		return *cv.String
	case cv.BooleanValue != nil:
		return cv.Boolean()
	case cv.Amount != nil:
		return cv.Amount
	case cv.Number != nil:
		return *cv.Number
	default:
		return nil
	}
}
