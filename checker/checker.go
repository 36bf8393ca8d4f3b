// Package checker implements spec §4.E: the single-threaded pass that
// validates a draft.LedgerDraft and replays it chronologically into a
// checked ledger.Ledger.
package checker

import (
	"context"

	"github.com/ledgerfall/beanledger/ast"
	"github.com/ledgerfall/beanledger/draft"
	"github.com/ledgerfall/beanledger/errors"
	"github.com/ledgerfall/beanledger/ledger"
)

// Check validates and replays d, returning the checked Ledger alongside
// every diagnostic accumulated along the way. A non-empty error list does
// not mean Check failed outright: offending directives and postings are
// simply dropped from the returned Ledger (spec §7).
func Check(d *draft.LedgerDraft) (*ledger.Ledger, []*errors.Diagnostic) {
	return CheckContext(context.Background(), d)
}

// CheckContext is Check with an explicit context, carrying a telemetry
// collector through to the replay loop (spec §9).
func CheckContext(ctx context.Context, d *draft.LedgerDraft) (*ledger.Ledger, []*errors.Diagnostic) {
	var diagnostics []*errors.Diagnostic

	cfg, cfgErrs := configFromDraft(d)
	for _, err := range cfgErrs {
		diagnostics = append(diagnostics, errors.New(errors.Syntax, errors.Warning, ast.Position{}, err.Error()))
	}

	accounts, accountDiags := validateAccounts(d.Accounts)
	diagnostics = append(diagnostics, accountDiags...)

	tolerances := buildToleranceTable(d.Commodities, cfg)

	txns, balanceSheet, replayDiags := replay(ctx, d, cfg, accounts, tolerances)
	diagnostics = append(diagnostics, replayDiags...)
	balanceSheet.Prune()

	commodities := make(map[string]*ledger.Commodity, len(d.Commodities))
	for currency, c := range d.Commodities {
		commodities[currency] = &ledger.Commodity{Currency: currency, Date: c.Date, Pos: c.Pos, Metadata: c.GetMetadata()}
	}

	events := make(map[string][]*ast.Event)
	for _, e := range d.Events {
		events[e.Name] = append(events[e.Name], e)
	}

	return ledger.New(d.Files, accounts, commodities, txns, d.Options, events, balanceSheet), diagnostics
}
