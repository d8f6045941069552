package directory

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// AUTHORIZATION SCOPE CHECK
// =============================================================================

// Action names the workflow operation being authorized.
type Action string

const (
	ActionForwardLeave    Action = "forward_leave"
	ActionDecideLeave     Action = "decide_leave"
	ActionForwardCCLWork  Action = "forward_ccl_work"
	ActionDecideCCLWork   Action = "decide_ccl_work"
	ActionViewBalances    Action = "view_balances"
)

// ErrDenied is the sentinel for authorization failures. It is distinct from
// ledger.ErrNotFound: a denied caller learns the record exists but is out of
// their scope (403), a missing record is a 404.
var ErrDenied = errors.New("authorization denied")

// DenyError carries the reason a caller's scope does not cover the target.
type DenyError struct {
	Action Action
	Reason string
}

func (e *DenyError) Error() string {
	return fmt.Sprintf("denied %s: %s", e.Action, e.Reason)
}

func (e *DenyError) Unwrap() error { return ErrDenied }

// Authorize decides whether the caller's campus/department/role scope
// permits the action on the target account's records.
//
//   - Super admins act anywhere.
//   - HODs act on accounts within their own department (case-insensitive
//     department-code match).
//   - Principals act on accounts whose normalized campus matches their
//     campus assignment.
//   - Employees only view their own balances.
func Authorize(caller Identity, target *Account, action Action) error {
	if caller.Role == RoleSuperAdmin {
		return nil
	}

	switch action {
	case ActionViewBalances:
		if caller.AccountID == target.ID {
			return nil
		}
	case ActionForwardLeave, ActionForwardCCLWork:
		if caller.Role != RoleHOD {
			return &DenyError{Action: action, Reason: fmt.Sprintf("role %s cannot forward", caller.Role)}
		}
	case ActionDecideLeave, ActionDecideCCLWork:
		if caller.Role != RolePrincipal && caller.Role != RoleHOD {
			return &DenyError{Action: action, Reason: fmt.Sprintf("role %s cannot decide", caller.Role)}
		}
	}

	switch caller.Role {
	case RoleHOD:
		if !strings.EqualFold(caller.Department, target.Department) {
			return &DenyError{Action: action, Reason: fmt.Sprintf("department %q outside HOD scope %q", target.Department, caller.Department)}
		}
		return nil
	case RolePrincipal:
		callerCampus := strings.ToLower(strings.TrimSpace(caller.Campus))
		if callerCampus == "" || callerCampus != target.Campus.Normalize() {
			return &DenyError{Action: action, Reason: fmt.Sprintf("campus %q outside principal scope %q", target.Campus.Normalize(), caller.Campus)}
		}
		return nil
	}

	return &DenyError{Action: action, Reason: fmt.Sprintf("role %s has no scope for %s", caller.Role, action)}
}
