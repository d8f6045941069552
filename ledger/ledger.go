/*
Package ledger implements balance accounting for leave day balances.

Every account carries two named balances: the ordinary leave balance and the
compensatory credit (CCL) balance. Each balance is backed by an append-only
history of entries, and the balance field is a cached projection of that
history: summing the signed days of all entries (plus the opening grant)
must always reproduce the current balance. Replay exists to assert exactly
that.

INVARIANTS:
 1. APPEND-ONLY: history entries are never modified or deleted.
 2. Corrections are made via "restored" entries, not edits.
 3. Entry.Days is always the absolute magnitude; direction is carried by
    Entry.Type.

The ledger itself enforces no negative-balance rule. Sufficiency is the
caller's concern: the approval workflow checks balances before debiting, and
when it chooses to proceed anyway (approval is a human override point) the
ledger applies the delta and the balance goes negative.
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// BALANCES - The two named balances on an account
// =============================================================================

// BalanceKind names one of the two balances held by an account.
type BalanceKind string

const (
	BalanceLeave BalanceKind = "leave"
	BalanceCCL   BalanceKind = "ccl"
)

// OpeningLeaveBalance is the leave balance granted to every new account.
var OpeningLeaveBalance = decimal.NewFromInt(12)

// Balances holds the numeric balances and their history logs. It is embedded
// by the account aggregate; the ledger mutates it in place and the store
// persists it in the same save as the triggering state transition.
type Balances struct {
	LeaveBalance decimal.Decimal
	CCLBalance   decimal.Decimal
	LeaveHistory []Entry
	CCLHistory   []Entry
}

// NewBalances returns balances for a freshly created account: 12 leave days
// and no CCL credit.
func NewBalances() Balances {
	return Balances{
		LeaveBalance: OpeningLeaveBalance,
		CCLBalance:   decimal.Zero,
	}
}

// Balance returns the current value of the named balance.
func (b *Balances) Balance(kind BalanceKind) decimal.Decimal {
	if kind == BalanceCCL {
		return b.CCLBalance
	}
	return b.LeaveBalance
}

// History returns the history log for the named balance.
func (b *Balances) History(kind BalanceKind) []Entry {
	if kind == BalanceCCL {
		return b.CCLHistory
	}
	return b.LeaveHistory
}

// =============================================================================
// ENTRY - One immutable history record
// =============================================================================

type EntryType string

const (
	EntryEarned   EntryType = "earned"   // credit (CCL work approved, opening grant)
	EntryUsed     EntryType = "used"     // debit (leave approved)
	EntryRestored EntryType = "restored" // reversal of a prior "used" entry
)

// ReferenceKind says what kind of record an entry points back to.
type ReferenceKind string

const (
	RefLeaveRequest ReferenceKind = "leave_request"
	RefCCLWork      ReferenceKind = "ccl_work"
	RefOpening      ReferenceKind = "opening"
)

// Ref links an entry to the record that caused it.
type Ref struct {
	ID   string
	Kind ReferenceKind
}

// Entry is one immutable balance-change record. Days is the magnitude of the
// change; Type carries the direction.
type Entry struct {
	ID      string
	Type    EntryType
	Date    Date
	Days    decimal.Decimal
	RefID   string
	RefKind ReferenceKind
	Remarks string
}

// Signed returns the entry's contribution to the balance: positive for
// earned/restored, negative for used.
func (e Entry) Signed() decimal.Decimal {
	if e.Type == EntryUsed {
		return e.Days.Neg()
	}
	return e.Days
}

// =============================================================================
// APPLY - The single mutation point for balances
// =============================================================================

// Apply adjusts the named balance by delta and appends one history entry.
// The entry type is derived from the sign of delta: positive deltas record
// "earned", negative deltas record "used". Use ApplyRestore when reversing a
// prior debit so the audit trail distinguishes restores from fresh credits.
//
// Apply never rejects a delta that would make the balance negative; that
// policy belongs to the workflow calling it.
func Apply(b *Balances, kind BalanceKind, delta decimal.Decimal, ref Ref, remarks string, on Date) (decimal.Decimal, Entry) {
	entryType := EntryEarned
	if delta.IsNegative() {
		entryType = EntryUsed
	}
	return apply(b, kind, delta, entryType, ref, remarks, on)
}

// ApplyRestore credits back a previously debited amount, recording a
// "restored" entry. The amount must be the magnitude of the original debit.
func ApplyRestore(b *Balances, kind BalanceKind, amount decimal.Decimal, ref Ref, remarks string, on Date) (decimal.Decimal, Entry) {
	return apply(b, kind, amount.Abs(), EntryRestored, ref, remarks, on)
}

func apply(b *Balances, kind BalanceKind, delta decimal.Decimal, entryType EntryType, ref Ref, remarks string, on Date) (decimal.Decimal, Entry) {
	entry := Entry{
		ID:      newEntryID(),
		Type:    entryType,
		Date:    on,
		Days:    delta.Abs(),
		RefID:   ref.ID,
		RefKind: ref.Kind,
		Remarks: remarks,
	}

	switch kind {
	case BalanceCCL:
		b.CCLBalance = b.CCLBalance.Add(delta)
		b.CCLHistory = append(b.CCLHistory, entry)
	default:
		b.LeaveBalance = b.LeaveBalance.Add(delta)
		b.LeaveHistory = append(b.LeaveHistory, entry)
	}

	return b.Balance(kind), entry
}

// =============================================================================
// BALANCE UPDATE - Persistable result of an Apply
// =============================================================================

// BalanceUpdate is the durable side effect of a state transition: the new
// cached balance plus the single history entry to append. Stores persist it
// in the same transaction as the status change so a lost race leaves no
// partial debit behind.
type BalanceUpdate struct {
	AccountID  string
	Kind       BalanceKind
	NewBalance decimal.Decimal
	Entry      Entry
}

// =============================================================================
// REPLAY - Derive a balance from its history
// =============================================================================

// Replay sums the signed days of all entries on top of an opening balance.
// Used to assert the ledger/balance consistency invariant: for any account,
// Replay(history, opening) must equal the cached balance field.
func Replay(entries []Entry, opening decimal.Decimal) decimal.Decimal {
	balance := opening
	for _, e := range entries {
		balance = balance.Add(e.Signed())
	}
	return balance
}

// Consistent reports whether the cached balance of kind matches its history
// replayed from the given opening value.
func (b *Balances) Consistent(kind BalanceKind, opening decimal.Decimal) bool {
	return Replay(b.History(kind), opening).Equal(b.Balance(kind))
}
