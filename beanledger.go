// Package beanledger is the top-level entry point for ingesting a
// Beancount-flavored ledger: parse, follow includes, merge, check, and
// return a validated Ledger alongside every diagnostic collected along the
// way (spec §6's "top-level callable").
package beanledger

import (
	"context"
	"sort"

	"github.com/ledgerfall/beanledger/checker"
	"github.com/ledgerfall/beanledger/draft"
	"github.com/ledgerfall/beanledger/errors"
	"github.com/ledgerfall/beanledger/ledger"
	"github.com/ledgerfall/beanledger/parser"
)

// FromFile reads path, recursively follows its `include` directives across
// a bounded worker pool, merges every file's draft, and checks the result.
// It always returns a usable Ledger: offending directives are dropped and
// reported rather than aborting the run (spec §7).
func FromFile(path string) (*ledger.Ledger, []*errors.Diagnostic) {
	return FromFileContext(context.Background(), path)
}

// FromFileContext is FromFile with an explicit context, used to carry a
// telemetry collector through parsing and checking.
func FromFileContext(ctx context.Context, path string) (*ledger.Ledger, []*errors.Diagnostic) {
	loaded, diagnostics := parser.LoadAll(ctx, path)

	// Stable file order regardless of parse completion order, so the
	// resulting Ledger.Files() and merge diagnostics are deterministic.
	sort.Slice(loaded, func(i, j int) bool { return loaded[i].Path < loaded[j].Path })

	drafts := make([]*draft.LedgerDraft, 0, len(loaded))
	for _, result := range loaded {
		if result.Tree == nil {
			continue
		}
		drafts = append(drafts, draft.FromAST(result.Tree, result.Path))
	}

	merged, mergeDiags := draft.Merge(drafts...)
	diagnostics = append(diagnostics, mergeDiags...)

	checked, checkDiags := checker.CheckContext(ctx, merged)
	diagnostics = append(diagnostics, checkDiags...)

	return checked, diagnostics
}
