package checker

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerfall/beanledger/ast"
)

// toleranceTable answers "how much imbalance is permissible in currency X"
// (spec §4.E.2): a per-currency override sourced from that commodity's
// `tolerance:` metadata, falling back to the configured default.
type toleranceTable struct {
	byCurrency map[string]decimal.Decimal
	fallback   decimal.Decimal
}

func buildToleranceTable(commodities map[string]*ast.Commodity, cfg *Config) *toleranceTable {
	t := &toleranceTable{
		byCurrency: make(map[string]decimal.Decimal, len(commodities)),
		fallback:   cfg.DefaultTolerance,
	}

	for currency, commodity := range commodities {
		for _, meta := range commodity.Metadata {
			if meta.Key != "tolerance" {
				continue
			}
			if tol, err := decimal.NewFromString(meta.Value.String()); err == nil {
				t.byCurrency[currency] = tol.Abs()
			}
		}
	}

	return t
}

// For returns the tolerance applicable to currency.
func (t *toleranceTable) For(currency string) decimal.Decimal {
	if tol, ok := t.byCurrency[currency]; ok {
		return tol
	}
	return t.fallback
}
