package draft

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/ledgerfall/beanledger/ast"
	"github.com/ledgerfall/beanledger/errors"
)

// Merge combines drafts parsed from separate (root + included) files into
// one, per spec §4.D: transactions and events append; options and
// commodities are first-wins with a Warning/Duplicate on conflict; accounts
// merge field-by-field, with two opens or two closes for the same account
// reported as an Error/Duplicate that keeps the first.
//
// drafts should be given in include-visit order; that order only needs to
// be deterministic, not any particular order, since the checker's
// chronological replay is the actual source of ordering guarantees (spec
// §4.D "Merge order is deterministic only up to the include-visit order").
func Merge(drafts ...*LedgerDraft) (*LedgerDraft, []*errors.Diagnostic) {
	merged := New()
	var diags []*errors.Diagnostic

	seenOptions := make(map[string]*ast.Option)

	for _, d := range drafts {
		merged.Files = append(merged.Files, d.Files...)
		merged.Transactions = append(merged.Transactions, d.Transactions...)
		merged.Pads = append(merged.Pads, d.Pads...)
		merged.Balances = append(merged.Balances, d.Balances...)
		merged.Events = append(merged.Events, d.Events...)

		for _, opt := range d.Options {
			if existing, exists := seenOptions[opt.Name]; exists {
				diags = append(diags, errors.New(errors.Duplicate, errors.Warning, opt.Pos,
					"option %q already set at %s, keeping first value", opt.Name, existing.Pos).
					WithDirective(opt))
				continue
			}
			seenOptions[opt.Name] = opt
			merged.Options = append(merged.Options, opt)
		}

		for currency, commodity := range d.Commodities {
			if existing, exists := merged.Commodities[currency]; exists {
				diags = append(diags, errors.New(errors.Duplicate, errors.Warning, commodity.Pos,
					"commodity %q already declared at %s, keeping first declaration", currency, existing.Pos).
					WithDirective(commodity))
				continue
			}
			merged.Commodities[currency] = commodity
		}

		accounts := make([]ast.Account, 0, len(d.Accounts))
		for account := range d.Accounts {
			accounts = append(accounts, account)
		}
		slices.Sort(accounts)

		for _, account := range accounts {
			info := d.Accounts[account]
			existing := merged.accountInfo(account)

			if info.Open != nil {
				if existing.Open != nil {
					diags = append(diags, errors.New(errors.Duplicate, errors.Error, info.Open.Pos,
						fmt.Sprintf("account %s already opened at %s, keeping first open", account, existing.Open.Pos)).
						WithDirective(info.Open))
				} else {
					existing.Open = info.Open
				}
			}

			if info.Close != nil {
				if existing.Close != nil {
					diags = append(diags, errors.New(errors.Duplicate, errors.Error, info.Close.Pos,
						fmt.Sprintf("account %s already closed at %s, keeping first close", account, existing.Close.Pos)).
						WithDirective(info.Close))
				} else {
					existing.Close = info.Close
				}
			}

			existing.Notes = append(existing.Notes, info.Notes...)
			existing.Documents = append(existing.Documents, info.Documents...)
		}
	}

	return merged, diags
}
