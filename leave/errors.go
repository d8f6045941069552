package leave

import (
	"fmt"

	"github.com/warp/leave-engine/directory"
	"github.com/warp/leave-engine/ledger"
)

// =============================================================================
// VALIDATION ERRORS - Client-fixable, always rejected before any state change
// =============================================================================

// Validation error codes.
const (
	CodeBadLeaveType     = "bad_leave_type"
	CodeBadDate          = "bad_date"
	CodeBadRange         = "bad_range"
	CodePastStart        = "start_in_past"
	CodeBadSession       = "bad_session"
	CodeDayCountMismatch = "day_count_mismatch"
	CodeTooLong          = "too_long"
	CodeMissingReason    = "missing_reason"
	CodeBadSchedule      = "bad_alternate_schedule"
)

type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// =============================================================================
// TRANSITION ERRORS
// =============================================================================

// InvalidTransitionError reports a target status not reachable from the
// current one. It unwraps to ledger.ErrAlreadyInState when the request is
// already in the requested terminal status, ledger.ErrInvalidTransition
// otherwise.
type InvalidTransitionError struct {
	Current Status
	Target  Status
	Actor   directory.Role
}

func (e *InvalidTransitionError) Error() string {
	if e.Current == e.Target {
		return fmt.Sprintf("request is already %s", e.Current)
	}
	return fmt.Sprintf("cannot move request from %s to %s as %s", e.Current, e.Target, e.Actor)
}

func (e *InvalidTransitionError) Unwrap() error {
	if e.Current == e.Target && e.Current.Terminal() {
		return ledger.ErrAlreadyInState
	}
	return ledger.ErrInvalidTransition
}
