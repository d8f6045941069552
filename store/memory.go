package store

import (
	"context"
	"strings"
	"sync"

	"github.com/warp/leave-engine/cclwork"
	"github.com/warp/leave-engine/directory"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements Store with maps under a mutex. Reads hand out clones so
// callers can mutate freely; writes land only through the conditional
// transition methods or explicit saves, mirroring the durable store's
// semantics.
type Memory struct {
	mu       sync.RWMutex
	accounts map[string]*directory.Account
	requests map[string]*leave.Request
	work     map[string]*cclwork.Work
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]*directory.Account),
		requests: make(map[string]*leave.Request),
		work:     make(map[string]*cclwork.Work),
	}
}

var _ Store = (*Memory)(nil)

// -----------------------------------------------------------------------------
// Accounts
// -----------------------------------------------------------------------------

func (m *Memory) SaveAccount(_ context.Context, acct *directory.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[acct.ID] = cloneAccount(acct)
	return nil
}

func (m *Memory) GetAccount(_ context.Context, id string) (*directory.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, ok := m.accounts[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return cloneAccount(acct), nil
}

func (m *Memory) GetAccountByEmail(_ context.Context, email string) (*directory.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acct := range m.accounts {
		if strings.EqualFold(acct.Email, email) {
			return cloneAccount(acct), nil
		}
	}
	return nil, ledger.ErrNotFound
}

func (m *Memory) ListAccounts(_ context.Context) ([]*directory.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]*directory.Account, 0, len(m.accounts))
	for _, acct := range m.accounts {
		accounts = append(accounts, cloneAccount(acct))
	}
	return accounts, nil
}

// -----------------------------------------------------------------------------
// Leave requests
// -----------------------------------------------------------------------------

func (m *Memory) CreateLeaveRequest(_ context.Context, req *leave.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = cloneRequest(req)
	return nil
}

func (m *Memory) GetLeaveRequest(_ context.Context, id string) (*leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return cloneRequest(req), nil
}

func (m *Memory) ListLeaveRequests(_ context.Context, filter leave.Filter) ([]*leave.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*leave.Request
	for _, req := range m.requests {
		if filter.AccountID != "" && req.AccountID != filter.AccountID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		out = append(out, cloneRequest(req))
	}
	return out, nil
}

// ApplyLeaveTransition is the compare-and-swap write: the stored request
// must still hold the expected status, otherwise nothing is written and the
// caller observes the conflict.
func (m *Memory) ApplyLeaveTransition(_ context.Context, req *leave.Request, expected leave.Status, update *ledger.BalanceUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.requests[req.ID]
	if !ok {
		return ledger.ErrNotFound
	}
	if current.Status != expected {
		return ledger.ErrConcurrentModification
	}

	m.requests[req.ID] = cloneRequest(req)
	return m.applyBalanceLocked(update)
}

// -----------------------------------------------------------------------------
// CCL work
// -----------------------------------------------------------------------------

func (m *Memory) CreateCCLWork(_ context.Context, work *cclwork.Work) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.work[work.ID] = cloneWork(work)
	return nil
}

func (m *Memory) GetCCLWork(_ context.Context, id string) (*cclwork.Work, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	work, ok := m.work[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return cloneWork(work), nil
}

func (m *Memory) ListCCLWork(_ context.Context, filter cclwork.Filter) ([]*cclwork.Work, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*cclwork.Work
	for _, work := range m.work {
		if filter.SubmittedBy != "" && work.SubmittedBy != filter.SubmittedBy {
			continue
		}
		if filter.Status != "" && work.Status != filter.Status {
			continue
		}
		out = append(out, cloneWork(work))
	}
	return out, nil
}

func (m *Memory) ApplyCCLTransition(_ context.Context, work *cclwork.Work, expected cclwork.Status, update *ledger.BalanceUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.work[work.ID]
	if !ok {
		return ledger.ErrNotFound
	}
	if current.Status != expected {
		return ledger.ErrConcurrentModification
	}

	m.work[work.ID] = cloneWork(work)
	return m.applyBalanceLocked(update)
}

// -----------------------------------------------------------------------------
// Balance application
// -----------------------------------------------------------------------------

// applyBalanceLocked moves the stored account's balance by the entry's
// signed delta and appends the history entry. Delta application (rather
// than overwriting with the caller's computed balance) keeps concurrent
// approvals of different requests from losing each other's debits.
func (m *Memory) applyBalanceLocked(update *ledger.BalanceUpdate) error {
	if update == nil {
		return nil
	}
	acct, ok := m.accounts[update.AccountID]
	if !ok {
		return ledger.ErrNotFound
	}

	delta := update.Entry.Signed()
	switch update.Kind {
	case ledger.BalanceCCL:
		acct.CCLBalance = acct.CCLBalance.Add(delta)
		acct.CCLHistory = append(acct.CCLHistory, update.Entry)
	default:
		acct.LeaveBalance = acct.LeaveBalance.Add(delta)
		acct.LeaveHistory = append(acct.LeaveHistory, update.Entry)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Clones - reads must not alias stored records
// -----------------------------------------------------------------------------

func cloneAccount(acct *directory.Account) *directory.Account {
	out := *acct
	out.LeaveHistory = append([]ledger.Entry(nil), acct.LeaveHistory...)
	out.CCLHistory = append([]ledger.Entry(nil), acct.CCLHistory...)
	return &out
}

func cloneRequest(req *leave.Request) *leave.Request {
	out := *req
	out.AlternateSchedule = make([]leave.DaySchedule, len(req.AlternateSchedule))
	for i, day := range req.AlternateSchedule {
		out.AlternateSchedule[i] = leave.DaySchedule{
			Date:    day.Date,
			Periods: append([]leave.Period(nil), day.Periods...),
		}
	}
	return &out
}

func cloneWork(work *cclwork.Work) *cclwork.Work {
	out := *work
	out.Periods = append([]cclwork.Period(nil), work.Periods...)
	return &out
}
