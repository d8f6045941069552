/*
workflow.go - The approval state machine.

States: Pending → ForwardedByHOD → {Approved, Rejected}, plus the direct
Pending → {Approved, Rejected} short-circuit for HODs and super admins.
Approved is not fully terminal: a principal may reverse it once to Rejected,
restoring the debited balance with a "restored" ledger entry. There is no
Rejected → Approved path; rejecting then re-approving takes a fresh request.

Legal transitions live in one explicit table. Side effects (remarks, marks,
ledger debits/restores) are computed in memory by the rule's apply func and
persisted atomically by the store's conditional update: the status write
only succeeds if the record is still in the expected prior status, so the
losing side of a concurrent race observes ledger.ErrConcurrentModification
and never double-debits.
*/
package leave

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/directory"
	"github.com/warp/leave-engine/ledger"
)

// =============================================================================
// TRANSITION TABLE
// =============================================================================

// transitionInput carries the actor's contribution to a transition.
type transitionInput struct {
	Actor   directory.Role
	Remarks string
	On      ledger.Date
}

// applyFunc mutates the request and account in memory and returns the
// balance update to persist (nil when the transition touches no balance)
// plus a non-fatal warning for the approver.
type applyFunc func(req *Request, acct *directory.Account, in transitionInput) (*ledger.BalanceUpdate, string)

type transitionRule struct {
	From   Status
	To     Status
	Actors []directory.Role
	Apply  applyFunc
}

var hodOrAdmin = []directory.Role{directory.RoleHOD, directory.RoleSuperAdmin}
var principalOrAdmin = []directory.Role{directory.RolePrincipal, directory.RoleSuperAdmin}

var transitions = []transitionRule{
	// First hop: the HOD forwards or short-circuits.
	{From: StatusPending, To: StatusForwardedByHOD, Actors: hodOrAdmin, Apply: applyForward},
	{From: StatusPending, To: StatusRejected, Actors: hodOrAdmin, Apply: applyReject},
	{From: StatusPending, To: StatusApproved, Actors: hodOrAdmin, Apply: applyApprove},

	// Second hop: the principal decides.
	{From: StatusForwardedByHOD, To: StatusApproved, Actors: principalOrAdmin, Apply: applyApprove},
	{From: StatusForwardedByHOD, To: StatusRejected, Actors: principalOrAdmin, Apply: applyReject},

	// Reversal: a higher authority rejects an already-approved request,
	// restoring the debited balance.
	{From: StatusApproved, To: StatusRejected, Actors: principalOrAdmin, Apply: applyReverse},
}

func ruleFor(from, to Status, actor directory.Role) (transitionRule, bool) {
	for _, rule := range transitions {
		if rule.From != from || rule.To != to {
			continue
		}
		for _, a := range rule.Actors {
			if a == actor {
				return rule, true
			}
		}
	}
	return transitionRule{}, false
}

// =============================================================================
// TRANSITION SIDE EFFECTS
// =============================================================================

func applyForward(req *Request, _ *directory.Account, in transitionInput) (*ledger.BalanceUpdate, string) {
	req.Status = StatusForwardedByHOD
	req.HODRemarks = in.Remarks
	req.ApprovedBy.HOD = true
	return nil, ""
}

func applyReject(req *Request, _ *directory.Account, in transitionInput) (*ledger.BalanceUpdate, string) {
	req.Status = StatusRejected
	setActorMarks(req, in, false)
	return nil, ""
}

// applyApprove debits the request's balance. Insufficiency here is a soft
// policy violation, not an error: the approver overrode it, so the debit
// proceeds, the balance may go negative, and the result carries a warning.
func applyApprove(req *Request, acct *directory.Account, in transitionInput) (*ledger.BalanceUpdate, string) {
	req.Status = StatusApproved
	setActorMarks(req, in, true)

	kind, amount, debits := req.Debit()
	if !debits {
		return nil, ""
	}

	warning := ""
	if acct.Balance(kind).LessThan(amount) {
		warning = fmt.Sprintf("insufficient %s balance: available %s, debiting %s", kind, acct.Balance(kind), amount)
	}

	newBalance, entry := ledger.Apply(&acct.Balances, kind, amount.Neg(),
		ledger.Ref{ID: req.ID, Kind: ledger.RefLeaveRequest},
		fmt.Sprintf("%s leave approved", req.LeaveType), in.On)

	return &ledger.BalanceUpdate{
		AccountID:  acct.ID,
		Kind:       kind,
		NewBalance: newBalance,
		Entry:      entry,
	}, warning
}

// applyReverse undoes a prior approval: the previously debited amount comes
// back as a "restored" entry of the same magnitude.
func applyReverse(req *Request, acct *directory.Account, in transitionInput) (*ledger.BalanceUpdate, string) {
	req.Status = StatusRejected
	req.PrincipalRemarks = in.Remarks
	req.PrincipalActionDate = in.On
	req.ApprovedBy.Principal = false

	kind, amount, debits := req.Debit()
	if !debits {
		return nil, ""
	}

	newBalance, entry := ledger.ApplyRestore(&acct.Balances, kind, amount,
		ledger.Ref{ID: req.ID, Kind: ledger.RefLeaveRequest},
		"approval reversed", in.On)

	return &ledger.BalanceUpdate{
		AccountID:  acct.ID,
		Kind:       kind,
		NewBalance: newBalance,
		Entry:      entry,
	}, ""
}

func setActorMarks(req *Request, in transitionInput, approved bool) {
	switch in.Actor {
	case directory.RolePrincipal, directory.RoleSuperAdmin:
		req.PrincipalRemarks = in.Remarks
		req.PrincipalActionDate = in.On
		req.ApprovedBy.Principal = approved
	default:
		req.HODRemarks = in.Remarks
		req.ApprovedBy.HOD = approved
	}
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Filter narrows request listings.
type Filter struct {
	AccountID string
	Status    Status
}

// Store is the persistence the workflow needs. ApplyTransition MUST be a
// conditional write: the request row is updated only if its current status
// still equals expected, and the balance update (when present) lands in the
// same transaction. A failed condition returns
// ledger.ErrConcurrentModification and writes nothing.
type Store interface {
	GetAccount(ctx context.Context, id string) (*directory.Account, error)
	CreateLeaveRequest(ctx context.Context, req *Request) error
	GetLeaveRequest(ctx context.Context, id string) (*Request, error)
	ListLeaveRequests(ctx context.Context, filter Filter) ([]*Request, error)
	ApplyLeaveTransition(ctx context.Context, req *Request, expected Status, update *ledger.BalanceUpdate) error
}

// =============================================================================
// WORKFLOW SERVICE
// =============================================================================

// Result is the outcome of a successful transition.
type Result struct {
	Request    *Request
	NewBalance *decimal.Decimal // nil when the transition touched no balance
	Warning    string           // non-fatal, e.g. balance went negative
}

type WorkflowService struct {
	Store Store

	// Clock returns "today" for date comparisons. Defaults to ledger.Today;
	// tests pin it.
	Clock func() ledger.Date
}

func NewWorkflowService(store Store) *WorkflowService {
	return &WorkflowService{Store: store, Clock: ledger.Today}
}

func (ws *WorkflowService) today() ledger.Date {
	if ws.Clock != nil {
		return ws.Clock()
	}
	return ledger.Today()
}

// Submit validates a candidate request and creates it in Pending.
func (ws *WorkflowService) Submit(ctx context.Context, accountID string, sub Submission) (*Request, error) {
	acct, err := ws.Store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	req, err := Validate(sub, acct, ws.today())
	if err != nil {
		return nil, err
	}

	if err := ws.Store.CreateLeaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("create leave request: %w", err)
	}
	return req, nil
}

// Transition moves a request to the target status on behalf of the caller.
// Sequence: load → authorize → table lookup → apply side effects in memory →
// conditional persist. Any error leaves the stored record untouched.
func (ws *WorkflowService) Transition(ctx context.Context, caller directory.Identity, requestID string, target Status, remarks string) (*Result, error) {
	req, err := ws.Store.GetLeaveRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	acct, err := ws.Store.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	action := directory.ActionDecideLeave
	if target == StatusForwardedByHOD {
		action = directory.ActionForwardLeave
	}
	if err := directory.Authorize(caller, acct, action); err != nil {
		return nil, err
	}

	rule, ok := ruleFor(req.Status, target, caller.Role)
	if !ok {
		return nil, &InvalidTransitionError{Current: req.Status, Target: target, Actor: caller.Role}
	}

	expected := req.Status
	update, warning := rule.Apply(req, acct, transitionInput{
		Actor:   caller.Role,
		Remarks: remarks,
		On:      ws.today(),
	})

	if err := ws.Store.ApplyLeaveTransition(ctx, req, expected, update); err != nil {
		return nil, err
	}

	result := &Result{Request: req, Warning: warning}
	if update != nil {
		balance := update.NewBalance
		result.NewBalance = &balance
	}
	return result, nil
}
