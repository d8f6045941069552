package leave

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/directory"
	"github.com/warp/leave-engine/ledger"
)

// =============================================================================
// SUBMISSION VALIDATION
// =============================================================================

// MaxRequestDays is the maximum duration of a single request.
const MaxRequestDays = 20

// HalfDay is the only valid day count for a half-day request.
var HalfDay = decimal.NewFromFloat(0.5)

// Submission is a candidate request as received from the caller, dates still
// in their textual YYYY-MM-DD form. Validate turns it into a Request or
// rejects it.
type Submission struct {
	LeaveType    string
	IsHalfDay    bool
	Session      string
	StartDate    string
	EndDate      string
	NumberOfDays decimal.Decimal
	Reason       string

	AlternateSchedule []SubmissionDay
}

type SubmissionDay struct {
	Date    string
	Periods []Period
}

// Validate checks a candidate request against the account submitting it.
// Checks run in order and short-circuit on the first failure. Validation is
// front-loaded here so the approval chain only deals with authorization and
// bookkeeping; balance sufficiency alone is re-checked at approval time,
// because other requests may land between submission and approval.
//
// Returns *ValidationError for client-fixable problems and
// *ledger.InsufficientBalanceError when the balance cannot cover the request.
func Validate(sub Submission, acct *directory.Account, today ledger.Date) (*Request, error) {
	leaveType, ok := ParseLeaveType(sub.LeaveType)
	if !ok {
		return nil, invalid(CodeBadLeaveType, "unknown leave type %q", sub.LeaveType)
	}
	if strings.TrimSpace(sub.Reason) == "" {
		return nil, invalid(CodeMissingReason, "reason is required")
	}

	// 1. Dates parse and are ordered.
	start, err := ledger.ParseDate(sub.StartDate)
	if err != nil {
		return nil, invalid(CodeBadDate, "start date: %v", err)
	}
	end, err := ledger.ParseDate(sub.EndDate)
	if err != nil {
		return nil, invalid(CodeBadDate, "end date: %v", err)
	}
	if end.Before(start) {
		return nil, invalid(CodeBadRange, "end date %s is before start date %s", end, start)
	}

	// 2. Requests cannot start in the past, compared at day granularity.
	if start.Before(today) {
		return nil, invalid(CodePastStart, "start date %s is before today %s", start, today)
	}

	// 3. Day count must match the range exactly.
	var session Session
	if sub.IsHalfDay {
		if !start.Equal(end) {
			return nil, invalid(CodeBadRange, "half-day request must start and end on the same date")
		}
		if !sub.NumberOfDays.Equal(HalfDay) {
			return nil, invalid(CodeDayCountMismatch, "half-day request must be exactly 0.5 days, got %s", sub.NumberOfDays)
		}
		switch Session(strings.ToLower(sub.Session)) {
		case SessionMorning:
			session = SessionMorning
		case SessionAfternoon:
			session = SessionAfternoon
		default:
			return nil, invalid(CodeBadSession, "session must be morning or afternoon, got %q", sub.Session)
		}
	} else {
		want := decimal.NewFromInt(int64(ledger.InclusiveDays(start, end)))
		if !sub.NumberOfDays.Equal(want) {
			return nil, invalid(CodeDayCountMismatch, "range %s..%s is %s days, got %s", start, end, want, sub.NumberOfDays)
		}
	}

	// 4. Duration cap.
	if sub.NumberOfDays.GreaterThan(decimal.NewFromInt(MaxRequestDays)) {
		return nil, invalid(CodeTooLong, "request exceeds %d days", MaxRequestDays)
	}

	// 5. Balance sufficiency. A hard reject at submission only; at approval
	// time the same shortfall is demoted to a warning (human override point).
	switch leaveType {
	case TypeCL:
		if acct.LeaveBalance.LessThan(sub.NumberOfDays) {
			return nil, &ledger.InsufficientBalanceError{
				Kind:      ledger.BalanceLeave,
				Available: acct.LeaveBalance,
				Requested: sub.NumberOfDays,
			}
		}
	case TypeCCL:
		if acct.CCLBalance.LessThan(sub.NumberOfDays) {
			return nil, &ledger.InsufficientBalanceError{
				Kind:      ledger.BalanceCCL,
				Available: acct.CCLBalance,
				Requested: sub.NumberOfDays,
			}
		}
	}

	// 6. Faculty members going on full-day leave must hand over every period.
	schedule, verr := validateSchedule(sub, acct, start, end)
	if verr != nil {
		return nil, verr
	}

	return &Request{
		ID:                uuid.NewString(),
		AccountID:         acct.ID,
		LeaveType:         leaveType,
		IsHalfDay:         sub.IsHalfDay,
		Session:           session,
		StartDate:         start,
		EndDate:           end,
		NumberOfDays:      sub.NumberOfDays,
		Reason:            sub.Reason,
		AlternateSchedule: schedule,
		Status:            StatusPending,
		AppliedOn:         today,
	}, nil
}

// validateSchedule enforces the alternate-schedule rules for faculty
// full-day requests: one entry per calendar date in the range, period
// numbers 1..7 unique within each date, every period carrying a substitute.
func validateSchedule(sub Submission, acct *directory.Account, start, end ledger.Date) ([]DaySchedule, *ValidationError) {
	if !acct.Designation.IsFaculty() || sub.IsHalfDay {
		return nil, nil
	}
	if len(sub.AlternateSchedule) == 0 {
		return nil, invalid(CodeBadSchedule, "faculty leave requires an alternate schedule")
	}

	covered := make(map[string]bool, len(sub.AlternateSchedule))
	schedule := make([]DaySchedule, 0, len(sub.AlternateSchedule))

	for _, day := range sub.AlternateSchedule {
		date, err := ledger.ParseDate(day.Date)
		if err != nil {
			return nil, invalid(CodeBadSchedule, "schedule date: %v", err)
		}
		if date.Before(start) || date.After(end) {
			return nil, invalid(CodeBadSchedule, "schedule date %s outside leave range %s..%s", date, start, end)
		}
		if covered[date.String()] {
			return nil, invalid(CodeBadSchedule, "duplicate schedule entry for %s", date)
		}
		covered[date.String()] = true

		seen := make(map[int]bool, len(day.Periods))
		for _, p := range day.Periods {
			if p.Number < MinPeriod || p.Number > MaxPeriod {
				return nil, invalid(CodeBadSchedule, "period number %d out of range %d..%d", p.Number, MinPeriod, MaxPeriod)
			}
			if seen[p.Number] {
				return nil, invalid(CodeBadSchedule, "duplicate period %d on %s", p.Number, date)
			}
			seen[p.Number] = true
			if strings.TrimSpace(p.SubstituteID) == "" {
				return nil, invalid(CodeBadSchedule, "period %d on %s has no substitute", p.Number, date)
			}
		}
		schedule = append(schedule, DaySchedule{Date: date, Periods: day.Periods})
	}

	// Every date in the range must be covered.
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if !covered[d.String()] {
			return nil, invalid(CodeBadSchedule, "no schedule entry for %s", d)
		}
	}
	return schedule, nil
}
