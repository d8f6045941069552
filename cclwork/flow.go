package cclwork

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/directory"
	"github.com/warp/leave-engine/ledger"
)

// CreditPerWork is the CCL credit earned by one approved work record,
// regardless of how many periods it covers.
var CreditPerWork = decimal.NewFromInt(1)

// =============================================================================
// SUBMISSION VALIDATION
// =============================================================================

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Submission is a candidate work record, date still textual.
type Submission struct {
	Date    string
	Periods []Period
	Reason  string
}

// Validate checks a candidate work record for the submitting account.
func Validate(sub Submission, acct *directory.Account) (*Work, error) {
	date, err := ledger.ParseDate(sub.Date)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if strings.TrimSpace(sub.Reason) == "" {
		return nil, &ValidationError{Message: "reason is required"}
	}
	if len(sub.Periods) == 0 {
		return nil, &ValidationError{Message: "at least one period is required"}
	}

	seen := make(map[int]bool, len(sub.Periods))
	for _, p := range sub.Periods {
		if p.Number < 1 || p.Number > 7 {
			return nil, &ValidationError{Message: fmt.Sprintf("period number %d out of range 1..7", p.Number)}
		}
		if seen[p.Number] {
			return nil, &ValidationError{Message: fmt.Sprintf("duplicate period %d", p.Number)}
		}
		seen[p.Number] = true
	}

	return &Work{
		ID:          uuid.NewString(),
		SubmittedBy: acct.ID,
		Date:        date,
		Periods:     sub.Periods,
		Reason:      sub.Reason,
		Status:      StatusPending,
	}, nil
}

// =============================================================================
// TRANSITION ERRORS
// =============================================================================

// InvalidTransitionError mirrors the leave workflow's: same-terminal-state
// attempts unwrap to ledger.ErrAlreadyInState, anything else to
// ledger.ErrInvalidTransition.
type InvalidTransitionError struct {
	Current Status
	Target  Status
	Actor   directory.Role
}

func (e *InvalidTransitionError) Error() string {
	if e.Current == e.Target {
		return fmt.Sprintf("work record is already %s", e.Current)
	}
	return fmt.Sprintf("cannot move work record from %s to %s as %s", e.Current, e.Target, e.Actor)
}

func (e *InvalidTransitionError) Unwrap() error {
	if e.Current == e.Target && e.Current.Terminal() {
		return ledger.ErrAlreadyInState
	}
	return ledger.ErrInvalidTransition
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

type Filter struct {
	SubmittedBy string
	Status      Status
}

// Store mirrors leave.Store: ApplyCCLTransition is a conditional write on
// the expected prior status, atomic with the credit when one is present.
type Store interface {
	GetAccount(ctx context.Context, id string) (*directory.Account, error)
	CreateCCLWork(ctx context.Context, work *Work) error
	GetCCLWork(ctx context.Context, id string) (*Work, error)
	ListCCLWork(ctx context.Context, filter Filter) ([]*Work, error)
	ApplyCCLTransition(ctx context.Context, work *Work, expected Status, update *ledger.BalanceUpdate) error
}

// =============================================================================
// FLOW SERVICE
// =============================================================================

type Result struct {
	Work       *Work
	NewBalance *decimal.Decimal // set only on principal approval
}

type FlowService struct {
	Store Store
	Clock func() ledger.Date
}

func NewFlowService(store Store) *FlowService {
	return &FlowService{Store: store, Clock: ledger.Today}
}

func (fs *FlowService) today() ledger.Date {
	if fs.Clock != nil {
		return fs.Clock()
	}
	return ledger.Today()
}

// Submit validates and creates a work record in Pending.
func (fs *FlowService) Submit(ctx context.Context, accountID string, sub Submission) (*Work, error) {
	acct, err := fs.Store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	work, err := Validate(sub, acct)
	if err != nil {
		return nil, err
	}

	if err := fs.Store.CreateCCLWork(ctx, work); err != nil {
		return nil, fmt.Errorf("create ccl work: %w", err)
	}
	return work, nil
}

// Transition moves a work record along Pending → ForwardedToPrincipal →
// {Approved, Rejected}. Principal transitions require the record to be in
// ForwardedToPrincipal exactly; this flow does not reverse an approved
// credit.
func (fs *FlowService) Transition(ctx context.Context, caller directory.Identity, workID string, target Status, remarks string) (*Result, error) {
	work, err := fs.Store.GetCCLWork(ctx, workID)
	if err != nil {
		return nil, err
	}
	acct, err := fs.Store.GetAccount(ctx, work.SubmittedBy)
	if err != nil {
		return nil, err
	}

	action := directory.ActionDecideCCLWork
	if target == StatusForwardedToPrincipal {
		action = directory.ActionForwardCCLWork
	}
	if err := directory.Authorize(caller, acct, action); err != nil {
		return nil, err
	}

	expected := work.Status
	on := fs.today()

	var update *ledger.BalanceUpdate
	result := &Result{Work: work}

	switch {
	case expected == StatusPending && target == StatusForwardedToPrincipal && isHODOrAdmin(caller.Role):
		work.Status = StatusForwardedToPrincipal
		work.HODRemarks = remarks
		work.HODActionDate = on

	case expected == StatusForwardedToPrincipal && target == StatusApproved && isPrincipalOrAdmin(caller.Role):
		work.Status = StatusApproved
		work.PrincipalRemarks = remarks
		work.PrincipalActionDate = on

		newBalance, entry := ledger.Apply(&acct.Balances, ledger.BalanceCCL, CreditPerWork,
			ledger.Ref{ID: work.ID, Kind: ledger.RefCCLWork},
			fmt.Sprintf("extra duty on %s", work.Date), on)
		update = &ledger.BalanceUpdate{
			AccountID:  acct.ID,
			Kind:       ledger.BalanceCCL,
			NewBalance: newBalance,
			Entry:      entry,
		}
		balance := newBalance
		result.NewBalance = &balance

	case expected == StatusForwardedToPrincipal && target == StatusRejected && isPrincipalOrAdmin(caller.Role):
		work.Status = StatusRejected
		work.PrincipalRemarks = remarks
		work.PrincipalActionDate = on

	default:
		return nil, &InvalidTransitionError{Current: expected, Target: target, Actor: caller.Role}
	}

	if err := fs.Store.ApplyCCLTransition(ctx, work, expected, update); err != nil {
		return nil, err
	}
	return result, nil
}

func isHODOrAdmin(r directory.Role) bool {
	return r == directory.RoleHOD || r == directory.RoleSuperAdmin
}

func isPrincipalOrAdmin(r directory.Role) bool {
	return r == directory.RolePrincipal || r == directory.RoleSuperAdmin
}
