// Package output renders diagnostics and ledger text with ANSI styling,
// falling back to plain text automatically when termenv detects a
// non-interactive or color-incapable writer.
package output

import (
	"io"

	"github.com/muesli/termenv"
)

// ANSI color indices used throughout diagnostic rendering. Named here so
// every Styles helper, and the errors package's formatter through them,
// draws from one palette.
const (
	colorSuccess = "2" // green
	colorError   = "1" // red
	colorPath    = "6" // cyan
	colorAccount = "3" // yellow
	colorAmount  = "5" // magenta
)

// Styles wraps a termenv.Output bound to one writer, so every call site
// downstream shares the same color-capability detection.
type Styles struct {
	output *termenv.Output
}

// NewStyles binds a Styles to w, detecting its color profile once.
func NewStyles(w io.Writer) *Styles {
	return &Styles{output: termenv.NewOutput(w)}
}

func (s *Styles) fg(text, color string, bold bool) string {
	styled := s.output.String(text).Foreground(s.output.Color(color))
	if bold {
		styled = styled.Bold()
	}
	return styled.String()
}

// Success styles a completed-without-error message.
func (s *Styles) Success(text string) string { return s.fg(text, colorSuccess, true) }

// Error styles a diagnostic at errors.Error level.
func (s *Styles) Error(text string) string { return s.fg(text, colorError, true) }

// Warning styles a diagnostic at errors.Warning level.
func (s *Styles) Warning(text string) string { return s.fg(text, colorAccount, true) }

// FilePath styles a source filename in a diagnostic location.
func (s *Styles) FilePath(text string) string { return s.fg(text, colorPath, false) }

// Account styles an account name such as Assets:Brokerage:USD.
func (s *Styles) Account(text string) string { return s.fg(text, colorAccount, false) }

// Amount styles a numeric amount or currency code.
func (s *Styles) Amount(text string) string { return s.fg(text, colorAmount, false) }

// Keyword styles a directive keyword (open, balance, pad, ...).
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

// Dim styles secondary or de-emphasized text.
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Timing styles an elapsed-duration string, flagging slow operations in
// red and leaving fast ones dimmed so a telemetry report's bottlenecks
// stand out without scanning every number.
func (s *Styles) Timing(text string, isSlowOperation bool) string {
	if isSlowOperation {
		return s.fg(text, colorError, false)
	}
	return s.Dim(text)
}

// Output exposes the underlying termenv.Output for callers that need
// capabilities Styles doesn't wrap directly.
func (s *Styles) Output() *termenv.Output {
	return s.output
}
