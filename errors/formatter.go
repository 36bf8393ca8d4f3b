package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ledgerfall/beanledger/formatter"
	"github.com/ledgerfall/beanledger/output"
)

// Formatter renders diagnostics for a consumer (CLI, API).
type Formatter interface {
	Format(d *Diagnostic) string
	FormatAll(ds []*Diagnostic) string
}

// TextFormatter formats diagnostics for command-line output, including the
// offending directive rendered back to source when one is attached.
type TextFormatter struct {
	formatter *formatter.Formatter
	styles    *output.Styles
}

// NewTextFormatter builds a TextFormatter. A nil formatter uses defaults; a
// nil styles disables ANSI color output.
func NewTextFormatter(f *formatter.Formatter, styles *output.Styles) *TextFormatter {
	if f == nil {
		f = formatter.New()
	}
	return &TextFormatter{formatter: f, styles: styles}
}

func (tf *TextFormatter) Format(d *Diagnostic) string {
	message := fmt.Sprintf("%s: %s", d.Pos, d.Message)
	if tf.styles != nil {
		switch d.Level {
		case Error:
			message = fmt.Sprintf("%s: %s", d.Pos, tf.styles.Error(d.Message))
		case Warning:
			message = fmt.Sprintf("%s: %s", d.Pos, tf.styles.Warning(d.Message))
		default:
			message = fmt.Sprintf("%s: %s", d.Pos, d.Message)
		}
	}

	if d.Directive == nil {
		return message
	}

	var buf bytes.Buffer
	buf.WriteString(message)
	buf.WriteString("\n\n")
	if err := tf.formatter.FormatDirective(d.Directive, &buf); err == nil {
		indented := indentLines(buf.String()[len(message)+2:], "   ")
		buf.Truncate(len(message) + 2)
		buf.WriteString(indented)
	}
	return buf.String()
}

func (tf *TextFormatter) FormatAll(ds []*Diagnostic) string {
	if len(ds) == 0 {
		return ""
	}
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = tf.Format(d)
	}
	return strings.Join(parts, "\n\n")
}

func indentLines(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	var buf strings.Builder
	for _, line := range lines {
		if line == "" {
			buf.WriteByte('\n')
			continue
		}
		buf.WriteString(prefix)
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.String()
}

// JSONFormatter formats diagnostics as structured JSON for APIs.
type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter { return &JSONFormatter{} }

// DiagnosticJSON is the wire shape of a single Diagnostic.
type DiagnosticJSON struct {
	Kind     string        `json:"kind"`
	Level    string        `json:"level"`
	Message  string        `json:"message"`
	Position *PositionJSON `json:"position,omitempty"`
}

type PositionJSON struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

func (jf *JSONFormatter) Format(d *Diagnostic) string {
	data, _ := json.Marshal(toJSON(d))
	return string(data)
}

func (jf *JSONFormatter) FormatAll(ds []*Diagnostic) string {
	out := make([]DiagnosticJSON, len(ds))
	for i, d := range ds {
		out[i] = toJSON(d)
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return string(data)
}

func toJSON(d *Diagnostic) DiagnosticJSON {
	return DiagnosticJSON{
		Kind:    d.Kind.String(),
		Level:   d.Level.String(),
		Message: d.Message,
		Position: &PositionJSON{
			Filename: d.Pos.Filename,
			Line:     d.Pos.Line,
			Column:   d.Pos.Column,
		},
	}
}
