package checker

import (
	"context"
	"fmt"
	"sort"

	"github.com/ledgerfall/beanledger/ast"
	"github.com/ledgerfall/beanledger/draft"
	"github.com/ledgerfall/beanledger/errors"
	"github.com/ledgerfall/beanledger/ledger"
	"github.com/ledgerfall/beanledger/telemetry"
)

// padInfo tracks one outstanding pad directive: the source account it pulls
// from, which currencies it has already filled on behalf of a balance
// assertion, and the index of its placeholder ledger.Txn (spec §4.E.4,
// §4.E.6, §9's arena/index pattern).
type padInfo struct {
	from             ast.Account
	filledCurrencies map[string]bool
	placeholderIndex int
}

// replayState is the mutable context threaded through one pass of the
// chronological replay (spec §4.E.4).
type replayState struct {
	cfg         *Config
	accounts    map[ast.Account]*ledger.AccountInfo
	tolerances  *toleranceTable
	balance     *ledger.BalanceSheet
	txns        []*ledger.Txn
	padFrom     map[ast.Account]*padInfo // dest account -> pad info
	padTo       map[ast.Account]map[ast.Account]bool // from account -> dests it pads
	diagnostics []*errors.Diagnostic
}

func newReplayState(cfg *Config, accounts map[ast.Account]*ledger.AccountInfo, tolerances *toleranceTable) *replayState {
	return &replayState{
		cfg:        cfg,
		accounts:   accounts,
		tolerances: tolerances,
		balance:    ledger.NewBalanceSheet(),
		padFrom:    make(map[ast.Account]*padInfo),
		padTo:      make(map[ast.Account]map[ast.Account]bool),
	}
}

func (s *replayState) report(d *errors.Diagnostic) {
	if d != nil {
		s.diagnostics = append(s.diagnostics, d)
	}
}

// invalidatePads drops any outstanding pads touching account, in both
// directions of the pad_from/pad_to index: the pad whose destination is
// account and every pad drawing from it. registerPad calls it before
// registering a new pad for account.
func (s *replayState) invalidatePads(account ast.Account) {
	if info, ok := s.padFrom[account]; ok {
		delete(s.padFrom, account)
		if dests, ok := s.padTo[info.from]; ok {
			delete(dests, account)
			if len(dests) == 0 {
				delete(s.padTo, info.from)
			}
		}
	}
	if dests, ok := s.padTo[account]; ok {
		for dest := range dests {
			delete(s.padFrom, dest)
		}
		delete(s.padTo, account)
	}
}

// entry is one chronologically-ordered unit of replay input: either a
// Posted/Pending transaction, a pad, or a balance assertion.
type entry struct {
	flag ledger.Flag
	date ast.Date
	txn  *ast.Transaction
	pad  *ast.Pad
	bal  *ast.Balance
}

// orderKey implements spec §4.E.3: the sort key within a single day.
func orderKey(flag ledger.Flag, balanceAtDayEnd bool) int {
	if balanceAtDayEnd {
		return int(flag)
	}
	return (int(flag) + 1) % 4
}

func collectEntries(d *draft.LedgerDraft) []entry {
	entries := make([]entry, 0, len(d.Transactions)+len(d.Pads)+len(d.Balances))
	for _, txn := range d.Transactions {
		flag := ledger.Posted
		if txn.IsPending() {
			flag = ledger.Pending
		}
		entries = append(entries, entry{flag: flag, date: txn.Date, txn: txn})
	}
	for _, pad := range d.Pads {
		entries = append(entries, entry{flag: ledger.Pad, date: pad.Date, pad: pad})
	}
	for _, bal := range d.Balances {
		entries = append(entries, entry{flag: ledger.Balance, date: bal.Date, bal: bal})
	}
	return entries
}

// replay runs spec §4.E.3/§4.E.4: sorts entries chronologically and folds
// them one at a time into a running BalanceSheet, producing the final,
// checked transaction list.
func replay(ctx context.Context, d *draft.LedgerDraft, cfg *Config, accounts map[ast.Account]*ledger.AccountInfo, tolerances *toleranceTable) ([]*ledger.Txn, *ledger.BalanceSheet, []*errors.Diagnostic) {
	entries := collectEntries(d)
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].date.Equal(entries[j].date) {
			return entries[i].date.Before(entries[j].date)
		}
		return orderKey(entries[i].flag, cfg.BalanceAtDayEnd) < orderKey(entries[j].flag, cfg.BalanceAtDayEnd)
	})

	collector := telemetry.FromContext(ctx)
	timer := collector.Start(fmt.Sprintf("checker.replay (%d transactions)", len(entries)))
	defer timer.End()

	s := newReplayState(cfg, accounts, tolerances)

	for _, e := range entries {
		switch e.flag {
		case ledger.Pending, ledger.Posted:
			if diags := validatePostingAccounts(accounts, e.date, e.txn.Postings); anyError(diags) {
				s.diagnostics = append(s.diagnostics, diags...)
				continue
			}
			txn, diags := checkCompleteTxn(s, e.txn, e.flag)
			s.diagnostics = append(s.diagnostics, diags...)
			if txn != nil {
				s.txns = append(s.txns, txn)
			}

		case ledger.Balance:
			postings := []*ast.Posting{{Pos: e.bal.Pos, Account: e.bal.Account, Amount: e.bal.Amount}}
			if diags := validatePostingAccounts(accounts, e.date, postings); anyError(diags) {
				s.diagnostics = append(s.diagnostics, diags...)
				continue
			}
			// Pads drawing from the asserted account end here; a pad into it
			// stays available so checkBalance can realize it.
			if dests, ok := s.padTo[e.bal.Account]; ok {
				for dest := range dests {
					delete(s.padFrom, dest)
				}
				delete(s.padTo, e.bal.Account)
			}
			txn, diags := checkBalance(s, e.bal)
			s.diagnostics = append(s.diagnostics, diags...)
			if txn != nil {
				s.txns = append(s.txns, txn)
			}

		case ledger.Pad:
			registerPad(s, e.pad)
		}
	}

	return s.txns, s.balance, s.diagnostics
}

func anyError(diags []*errors.Diagnostic) bool {
	for _, d := range diags {
		if d.Level == errors.Error {
			return true
		}
	}
	return false
}

// validatePostingAccounts applies spec §4.E.1's constraints to each
// posting's account at date: the account must be open (and not yet
// closed), and if it declares a currency constraint the posting's currency
// must be among them.
func validatePostingAccounts(accounts map[ast.Account]*ledger.AccountInfo, date ast.Date, postings []*ast.Posting) []*errors.Diagnostic {
	var diags []*errors.Diagnostic
	for _, posting := range postings {
		info, ok := accounts[posting.Account]
		if !ok {
			diags = append(diags, errors.New(errors.Account, errors.Error, posting.Pos,
				"reference to unknown account %s", posting.Account))
			continue
		}
		if !info.IsOpenAt(date) {
			diags = append(diags, errors.New(errors.Account, errors.Error, posting.Pos,
				"account %s is not open on %s", posting.Account, date))
			continue
		}
		if posting.Amount != nil && !info.AllowsCurrency(posting.Amount.Currency) {
			diags = append(diags, errors.New(errors.Account, errors.Error, posting.Pos,
				"account %s does not allow currency %s", posting.Account, posting.Amount.Currency))
		}
	}
	return diags
}

// registerPad implements the Pad arm of spec §4.E.4: on success, a
// placeholder ledger.Txn with no postings yet is appended to the arena and
// indexed by destination account; checkBalance later back-patches it.
func registerPad(s *replayState, pad *ast.Pad) {
	postings := []*ast.Posting{
		{Pos: pad.Pos, Account: pad.Account},
		{Pos: pad.Pos, Account: pad.AccountPad},
	}
	if diags := validatePostingAccounts(s.accounts, pad.Date, postings); anyError(diags) {
		s.diagnostics = append(s.diagnostics, diags...)
		return
	}

	s.invalidatePads(pad.Account)

	placeholder := &ledger.Txn{
		Pos:  pad.Pos,
		Date: pad.Date,
		Flag: ledger.Pad,
	}
	s.txns = append(s.txns, placeholder)
	index := len(s.txns) - 1

	s.padFrom[pad.Account] = &padInfo{
		from:             pad.AccountPad,
		filledCurrencies: make(map[string]bool),
		placeholderIndex: index,
	}
	if s.padTo[pad.AccountPad] == nil {
		s.padTo[pad.AccountPad] = make(map[ast.Account]bool)
	}
	s.padTo[pad.AccountPad][pad.Account] = true
}
