/*
Package leave implements the leave-request workflow: submission validation
and the approval state machine.

A request enters through Validate, is created in Pending, and is driven
through HOD/Principal transitions by the WorkflowService. Balance debits and
restores go through the ledger package; authorization goes through
directory.Authorize; persistence goes through the Store interface, whose
ApplyTransition is a conditional (compare-and-swap) write so two concurrent
approvals can never both debit.
*/
package leave

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/ledger"
)

// =============================================================================
// LEAVE TYPES
// =============================================================================

type LeaveType string

const (
	TypeCL        LeaveType = "CL"     // casual leave, debits the leave balance
	TypeCCL       LeaveType = "CCL"    // compensatory credit leave, debits the ccl balance
	TypeMedical   LeaveType = "Medical"
	TypeMaternity LeaveType = "Maternity"
	TypeOD        LeaveType = "OD"     // on duty, no debit
	TypeOthers    LeaveType = "Others"
)

// ParseLeaveType normalizes a leave type string case-insensitively.
func ParseLeaveType(s string) (LeaveType, bool) {
	for _, t := range []LeaveType{TypeCL, TypeCCL, TypeMedical, TypeMaternity, TypeOD, TypeOthers} {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return LeaveType(s), false
}

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusPending        Status = "Pending"
	StatusForwardedByHOD Status = "ForwardedByHOD"
	StatusApproved       Status = "Approved"
	StatusRejected       Status = "Rejected"
)

// ParseStatus normalizes a status string case-insensitively.
func ParseStatus(s string) (Status, bool) {
	for _, st := range []Status{StatusPending, StatusForwardedByHOD, StatusApproved, StatusRejected} {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return Status(s), false
}

// Terminal reports whether the status ends HOD-level action. Approved is not
// fully terminal: a principal may still reverse it once to Rejected.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// =============================================================================
// SESSIONS AND ALTERNATE SCHEDULE
// =============================================================================

// Session constrains which half of the day a half-day request covers.
type Session string

const (
	SessionMorning   Session = "morning"
	SessionAfternoon Session = "afternoon"
)

// MinPeriod and MaxPeriod bound valid teaching period numbers.
const (
	MinPeriod = 1
	MaxPeriod = 7
)

// Period is one teaching period handed over to a substitute.
type Period struct {
	Number        int    // 1..7
	SubstituteID  string // account id of the covering faculty member
	AssignedClass string
}

// DaySchedule is the substitute assignment for one calendar day of the
// leave range.
type DaySchedule struct {
	Date    ledger.Date
	Periods []Period
}

// =============================================================================
// REQUEST
// =============================================================================

// ApprovalMarks tracks which roles have actioned the request. "Actioned" is
// transition-specific: an HOD forwarding sets HOD=true, a principal
// rejecting sets Principal=false.
type ApprovalMarks struct {
	HOD       bool
	Principal bool
}

// Request is a leave request. It is created once, mutated in place by each
// approval step, and never deleted.
type Request struct {
	ID        string
	AccountID string

	LeaveType    LeaveType
	IsHalfDay    bool
	Session      Session // set only when IsHalfDay
	StartDate    ledger.Date
	EndDate      ledger.Date
	NumberOfDays decimal.Decimal
	Reason       string

	AlternateSchedule []DaySchedule

	Status              Status
	Remarks             string
	HODRemarks          string
	PrincipalRemarks    string
	ApprovedBy          ApprovalMarks
	AppliedOn           ledger.Date // immutable, set at submission
	PrincipalActionDate ledger.Date
}

// Debit returns the balance and amount an approval debits. OD and the
// non-accounted types (Medical, Maternity, Others) consume no balance.
func (r *Request) Debit() (ledger.BalanceKind, decimal.Decimal, bool) {
	switch r.LeaveType {
	case TypeCL:
		return ledger.BalanceLeave, r.NumberOfDays, true
	case TypeCCL:
		return ledger.BalanceCCL, r.NumberOfDays, true
	}
	return "", decimal.Zero, false
}
