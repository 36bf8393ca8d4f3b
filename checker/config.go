package checker

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerfall/beanledger/ast"
	"github.com/ledgerfall/beanledger/draft"
)

// defaultTolerance is the fallback per-currency imbalance tolerance (spec
// §4.E.2, glossary "Tolerance").
var defaultTolerance = decimal.RequireFromString("0.006")

// Config holds the subset of ledger-wide options the checker understands:
// `default_tolerance` and `balance_at_day_end` (spec §6). Unrecognized
// options are not errors; they simply pass through to Ledger.Options
// untouched.
type Config struct {
	DefaultTolerance decimal.Decimal
	BalanceAtDayEnd  bool
}

// NewConfig returns a Config with spec's defaults.
func NewConfig() *Config {
	return &Config{DefaultTolerance: defaultTolerance}
}

// configFromOptions parses a draft's `option` directives into a Config.
// Malformed values are reported and ignored (the default is kept), since an
// unparsable option should never abort the whole ingestion run.
func configFromOptions(options []*ast.Option) (*Config, []error) {
	cfg := NewConfig()
	var errs []error

	for _, opt := range options {
		switch opt.Name {
		case "default_tolerance":
			tol, err := decimal.NewFromString(opt.Value)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid default_tolerance %q: %w", opt.Value, err))
				continue
			}
			cfg.DefaultTolerance = tol.Abs()

		case "balance_at_day_end":
			cfg.BalanceAtDayEnd = strings.EqualFold(opt.Value, "true")
		}
	}

	return cfg, errs
}

// configFromDraft is a small convenience wrapper used by Check.
func configFromDraft(d *draft.LedgerDraft) (*Config, []error) {
	return configFromOptions(d.Options)
}
