package checker

import (
	"github.com/ledgerfall/beanledger/ast"
	"github.com/ledgerfall/beanledger/draft"
	"github.com/ledgerfall/beanledger/errors"
	"github.com/ledgerfall/beanledger/ledger"
)

// validateAccounts is the checker's first pass (spec §4.E.1): every account
// draft must have an `open`; a `close` preceding its `open` is dropped; notes
// and documents dated outside the account's open/close window are dropped.
func validateAccounts(accounts map[ast.Account]*draft.AccountInfoDraft) (map[ast.Account]*ledger.AccountInfo, []*errors.Diagnostic) {
	checked := make(map[ast.Account]*ledger.AccountInfo, len(accounts))
	var diags []*errors.Diagnostic

	for name, info := range accounts {
		if info.Open == nil {
			if info.Close != nil {
				diags = append(diags, errors.New(errors.Account, errors.Error, info.Close.Pos,
					"reference to unknown account %s", name).WithDirective(info.Close))
			}
			for _, note := range info.Notes {
				diags = append(diags, errors.New(errors.Account, errors.Error, note.Pos,
					"reference to unknown account %s", name).WithDirective(note))
			}
			for _, doc := range info.Documents {
				diags = append(diags, errors.New(errors.Account, errors.Error, doc.Pos,
					"reference to unknown account %s", name).WithDirective(doc))
			}
			continue
		}

		checkedInfo := &ledger.AccountInfo{
			Account:  name,
			OpenDate: info.Open.Date,
			OpenPos:  info.Open.Pos,
			Metadata: info.Open.GetMetadata(),
		}
		if len(info.Open.ConstraintCurrencies) > 0 {
			checkedInfo.Currencies = make(map[string]bool, len(info.Open.ConstraintCurrencies))
			for _, cur := range info.Open.ConstraintCurrencies {
				checkedInfo.Currencies[cur] = true
			}
		}

		if info.Close != nil {
			if info.Close.Date.Before(info.Open.Date) {
				diags = append(diags, errors.New(errors.Account, errors.Error, info.Close.Pos,
					"close date %s precedes open date %s for account %s", info.Close.Date, info.Open.Date, name).
					WithDirective(info.Close))
			} else {
				closeDate := info.Close.Date
				checkedInfo.CloseDate = &closeDate
				checkedInfo.ClosePos = info.Close.Pos
			}
		}

		for _, note := range info.Notes {
			if note.Date.Before(info.Open.Date) || (checkedInfo.CloseDate != nil && note.Date.After(*checkedInfo.CloseDate)) {
				diags = append(diags, errors.New(errors.Account, errors.Error, note.Pos,
					"note on %s is outside account %s's open/close window", note.Date, name).WithDirective(note))
				continue
			}
			checkedInfo.Notes = append(checkedInfo.Notes, note)
		}

		for _, doc := range info.Documents {
			if doc.Date.Before(info.Open.Date) || (checkedInfo.CloseDate != nil && doc.Date.After(*checkedInfo.CloseDate)) {
				diags = append(diags, errors.New(errors.Account, errors.Error, doc.Pos,
					"document on %s is outside account %s's open/close window", doc.Date, name).WithDirective(doc))
				continue
			}
			checkedInfo.Documents = append(checkedInfo.Documents, doc)
		}

		checked[name] = checkedInfo
	}

	return checked, diags
}
