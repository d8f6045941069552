/*
Package cclwork implements the compensatory-credit work flow: an employee
records extra duty (covering someone else's periods), the record moves
through HOD → Principal approval, and on principal approval exactly one CCL
day is credited to the submitter's balance.

Structurally this is the leave workflow's smaller sibling: two approval
hops, a single credit side effect, no debit and no reversal of an approved
credit.
*/
package cclwork

import (
	"strings"

	"github.com/warp/leave-engine/ledger"
)

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusPending              Status = "Pending"
	StatusForwardedToPrincipal Status = "ForwardedToPrincipal"
	StatusApproved             Status = "Approved"
	StatusRejected             Status = "Rejected"
)

// ParseStatus normalizes a status string case-insensitively.
func ParseStatus(s string) (Status, bool) {
	for _, st := range []Status{StatusPending, StatusForwardedToPrincipal, StatusApproved, StatusRejected} {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return Status(s), false
}

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// =============================================================================
// WORK RECORD
// =============================================================================

// Period is one period of extra duty performed.
type Period struct {
	Number            int // 1..7
	Class             string
	Subject           string
	OriginalFacultyID string // whose period was covered
}

// Work is one extra-duty record. Like leave requests it is mutated in place
// by approval steps and never deleted.
type Work struct {
	ID          string
	SubmittedBy string // account id of the employee who performed the duty

	Date    ledger.Date
	Periods []Period
	Reason  string

	Status              Status
	HODRemarks          string
	PrincipalRemarks    string
	HODActionDate       ledger.Date
	PrincipalActionDate ledger.Date
}
