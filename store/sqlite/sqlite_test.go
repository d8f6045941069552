package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/cclwork"
	"github.com/warp/leave-engine/directory"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
	"github.com/warp/leave-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func seedAccount(t *testing.T, st *sqlite.Store) *directory.Account {
	t.Helper()
	acct := directory.NewAccount("Faculty Member", "faculty@example.edu",
		directory.RoleEmployee, directory.DesignationFaculty, "CSE",
		directory.StructuredCampus("Engineering", "College of Engineering", "North"))
	acct.PasswordHash = "not-a-real-hash"
	require.NoError(t, st.SaveAccount(context.Background(), acct))
	return acct
}

func pendingRequest(t *testing.T, st *sqlite.Store, accountID string) *leave.Request {
	t.Helper()
	req := &leave.Request{
		ID:           "req-1",
		AccountID:    accountID,
		LeaveType:    leave.TypeCL,
		StartDate:    ledger.NewDate(2026, time.March, 10),
		EndDate:      ledger.NewDate(2026, time.March, 11),
		NumberOfDays: decimal.NewFromInt(2),
		Reason:       "family function",
		AlternateSchedule: []leave.DaySchedule{
			{Date: ledger.NewDate(2026, time.March, 10), Periods: []leave.Period{{Number: 1, SubstituteID: "sub-1", AssignedClass: "CS101"}}},
			{Date: ledger.NewDate(2026, time.March, 11), Periods: []leave.Period{{Number: 2, SubstituteID: "sub-2"}}},
		},
		Status:    leave.StatusPending,
		AppliedOn: ledger.NewDate(2026, time.March, 1),
	}
	require.NoError(t, st.CreateLeaveRequest(context.Background(), req))
	return req
}

// =============================================================================
// ACCOUNT ROUND-TRIP TESTS
// =============================================================================

func TestSQLite_AccountRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	acct := seedAccount(t, st)

	loaded, err := st.GetAccount(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, acct.Name, loaded.Name)
	assert.Equal(t, directory.RoleEmployee, loaded.Role)
	assert.Equal(t, directory.CampusStructured, loaded.Campus.Kind)
	assert.Equal(t, "engineering", loaded.Campus.Normalize())
	assert.Equal(t, "not-a-real-hash", loaded.PasswordHash)
	assert.True(t, loaded.LeaveBalance.Equal(ledger.OpeningLeaveBalance))
	assert.True(t, loaded.CCLBalance.IsZero())
}

func TestSQLite_GetAccountByEmailCaseInsensitive(t *testing.T) {
	st := newTestStore(t)
	acct := seedAccount(t, st)

	loaded, err := st.GetAccountByEmail(context.Background(), "FACULTY@example.EDU")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, loaded.ID)
}

func TestSQLite_GetAccountNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetAccount(context.Background(), "missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestSQLite_LegacyCampusRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	acct := directory.NewAccount("Old Principal", "old@example.edu",
		directory.RolePrincipal, directory.DesignationNonTeaching, "",
		directory.LegacyCampus("Pharmacy"))
	require.NoError(t, st.SaveAccount(ctx, acct))

	loaded, err := st.GetAccount(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, directory.CampusLegacy, loaded.Campus.Kind)
	assert.Equal(t, "pharmacy", loaded.Campus.Normalize())
}

// =============================================================================
// LEAVE REQUEST TESTS
// =============================================================================

func TestSQLite_LeaveRequestRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	acct := seedAccount(t, st)
	req := pendingRequest(t, st, acct.ID)

	loaded, err := st.GetLeaveRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.TypeCL, loaded.LeaveType)
	assert.True(t, loaded.NumberOfDays.Equal(decimal.NewFromInt(2)))
	assert.True(t, loaded.StartDate.Equal(req.StartDate))
	require.Len(t, loaded.AlternateSchedule, 2)
	assert.Equal(t, "sub-1", loaded.AlternateSchedule[0].Periods[0].SubstituteID)
	assert.True(t, loaded.PrincipalActionDate.IsZero())
}

func TestSQLite_ListLeaveRequestsFilters(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	acct := seedAccount(t, st)
	pendingRequest(t, st, acct.ID)

	byAccount, err := st.ListLeaveRequests(ctx, leave.Filter{AccountID: acct.ID})
	require.NoError(t, err)
	assert.Len(t, byAccount, 1)

	byStatus, err := st.ListLeaveRequests(ctx, leave.Filter{Status: leave.StatusApproved})
	require.NoError(t, err)
	assert.Empty(t, byStatus)
}

// =============================================================================
// CONDITIONAL TRANSITION TESTS
// =============================================================================

func TestSQLite_ApplyLeaveTransition_DebitsAndAppends(t *testing.T) {
	// GIVEN: A pending request and a computed approval side effect
	// WHEN: The conditional transition is applied
	// THEN: Status, balance, and history land together; the balance column
	//       moved by the entry's delta

	st := newTestStore(t)
	ctx := context.Background()
	acct := seedAccount(t, st)
	req := pendingRequest(t, st, acct.ID)

	newBalance, entry := ledger.Apply(&acct.Balances, ledger.BalanceLeave, decimal.NewFromInt(2).Neg(),
		ledger.Ref{ID: req.ID, Kind: ledger.RefLeaveRequest}, "CL leave approved", ledger.NewDate(2026, time.March, 2))
	req.Status = leave.StatusApproved
	req.ApprovedBy.HOD = true

	err := st.ApplyLeaveTransition(ctx, req, leave.StatusPending, &ledger.BalanceUpdate{
		AccountID: acct.ID, Kind: ledger.BalanceLeave, NewBalance: newBalance, Entry: entry,
	})
	require.NoError(t, err)

	loadedReq, _ := st.GetLeaveRequest(ctx, req.ID)
	assert.Equal(t, leave.StatusApproved, loadedReq.Status)
	assert.True(t, loadedReq.ApprovedBy.HOD)

	loadedAcct, _ := st.GetAccount(ctx, acct.ID)
	assert.True(t, loadedAcct.LeaveBalance.Equal(decimal.NewFromInt(10)))
	require.Len(t, loadedAcct.LeaveHistory, 1)
	assert.Equal(t, ledger.EntryUsed, loadedAcct.LeaveHistory[0].Type)
	assert.True(t, loadedAcct.Consistent(ledger.BalanceLeave, ledger.OpeningLeaveBalance))
}

func TestSQLite_ApplyLeaveTransition_StaleStatusConflicts(t *testing.T) {
	// GIVEN: A request already moved out of Pending
	// WHEN: A second writer still expects Pending
	// THEN: The write fails with ErrConcurrentModification and no balance
	//       effect is applied

	st := newTestStore(t)
	ctx := context.Background()
	acct := seedAccount(t, st)
	req := pendingRequest(t, st, acct.ID)

	first := *req
	first.Status = leave.StatusForwardedByHOD
	require.NoError(t, st.ApplyLeaveTransition(ctx, &first, leave.StatusPending, nil))

	second := *req
	second.Status = leave.StatusApproved
	_, entry := ledger.Apply(&acct.Balances, ledger.BalanceLeave, decimal.NewFromInt(2).Neg(),
		ledger.Ref{ID: req.ID, Kind: ledger.RefLeaveRequest}, "", ledger.NewDate(2026, time.March, 2))
	err := st.ApplyLeaveTransition(ctx, &second, leave.StatusPending, &ledger.BalanceUpdate{
		AccountID: acct.ID, Kind: ledger.BalanceLeave, Entry: entry,
	})
	assert.ErrorIs(t, err, ledger.ErrConcurrentModification)

	loadedReq, _ := st.GetLeaveRequest(ctx, req.ID)
	assert.Equal(t, leave.StatusForwardedByHOD, loadedReq.Status, "first write stands")

	loadedAcct, _ := st.GetAccount(ctx, acct.ID)
	assert.True(t, loadedAcct.LeaveBalance.Equal(ledger.OpeningLeaveBalance), "losing debit must not land")
	assert.Empty(t, loadedAcct.LeaveHistory)
}

func TestSQLite_ApplyLeaveTransition_MissingRequest(t *testing.T) {
	st := newTestStore(t)
	seedAccount(t, st)

	ghost := &leave.Request{ID: "ghost", Status: leave.StatusApproved}
	err := st.ApplyLeaveTransition(context.Background(), ghost, leave.StatusPending, nil)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestSQLite_DeltaApplication_SurvivesInterleavedApprovals(t *testing.T) {
	// Two different requests approved back to back, each computed from its
	// own in-memory copy of the account. Delta application means both
	// debits land even though the copies never saw each other.

	st := newTestStore(t)
	ctx := context.Background()
	acct := seedAccount(t, st)

	reqA := pendingRequest(t, st, acct.ID)
	reqB := &leave.Request{
		ID: "req-2", AccountID: acct.ID, LeaveType: leave.TypeCL,
		StartDate: ledger.NewDate(2026, time.April, 1), EndDate: ledger.NewDate(2026, time.April, 1),
		NumberOfDays: decimal.NewFromInt(1), Reason: "errand", Status: leave.StatusPending,
		AppliedOn: ledger.NewDate(2026, time.March, 1),
	}
	require.NoError(t, st.CreateLeaveRequest(ctx, reqB))

	copyA, _ := st.GetAccount(ctx, acct.ID)
	copyB, _ := st.GetAccount(ctx, acct.ID)

	_, entryA := ledger.Apply(&copyA.Balances, ledger.BalanceLeave, decimal.NewFromInt(2).Neg(),
		ledger.Ref{ID: reqA.ID, Kind: ledger.RefLeaveRequest}, "", ledger.NewDate(2026, time.March, 2))
	reqA.Status = leave.StatusApproved
	require.NoError(t, st.ApplyLeaveTransition(ctx, reqA, leave.StatusPending, &ledger.BalanceUpdate{
		AccountID: acct.ID, Kind: ledger.BalanceLeave, Entry: entryA,
	}))

	_, entryB := ledger.Apply(&copyB.Balances, ledger.BalanceLeave, decimal.NewFromInt(1).Neg(),
		ledger.Ref{ID: reqB.ID, Kind: ledger.RefLeaveRequest}, "", ledger.NewDate(2026, time.March, 2))
	reqB.Status = leave.StatusApproved
	require.NoError(t, st.ApplyLeaveTransition(ctx, reqB, leave.StatusPending, &ledger.BalanceUpdate{
		AccountID: acct.ID, Kind: ledger.BalanceLeave, Entry: entryB,
	}))

	loaded, _ := st.GetAccount(ctx, acct.ID)
	assert.True(t, loaded.LeaveBalance.Equal(decimal.NewFromInt(9)), "12 - 2 - 1, got %s", loaded.LeaveBalance)
	assert.Len(t, loaded.LeaveHistory, 2)
	assert.True(t, loaded.Consistent(ledger.BalanceLeave, ledger.OpeningLeaveBalance))
}

// =============================================================================
// CCL WORK TESTS
// =============================================================================

func TestSQLite_CCLWorkRoundTripAndTransition(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	acct := seedAccount(t, st)

	work := &cclwork.Work{
		ID:          "work-1",
		SubmittedBy: acct.ID,
		Date:        ledger.NewDate(2026, time.February, 20),
		Periods:     []cclwork.Period{{Number: 3, Class: "CS202", Subject: "Algorithms", OriginalFacultyID: "absent-1"}},
		Reason:      "covered absent colleague",
		Status:      cclwork.StatusPending,
	}
	require.NoError(t, st.CreateCCLWork(ctx, work))

	loaded, err := st.GetCCLWork(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, cclwork.StatusPending, loaded.Status)
	require.Len(t, loaded.Periods, 1)
	assert.Equal(t, "absent-1", loaded.Periods[0].OriginalFacultyID)

	// Forward, then approve with the credit in the same transaction.
	work.Status = cclwork.StatusForwardedToPrincipal
	work.HODActionDate = ledger.NewDate(2026, time.February, 21)
	require.NoError(t, st.ApplyCCLTransition(ctx, work, cclwork.StatusPending, nil))

	_, entry := ledger.Apply(&acct.Balances, ledger.BalanceCCL, decimal.NewFromInt(1),
		ledger.Ref{ID: work.ID, Kind: ledger.RefCCLWork}, "extra duty", ledger.NewDate(2026, time.February, 22))
	work.Status = cclwork.StatusApproved
	work.PrincipalActionDate = ledger.NewDate(2026, time.February, 22)
	require.NoError(t, st.ApplyCCLTransition(ctx, work, cclwork.StatusForwardedToPrincipal, &ledger.BalanceUpdate{
		AccountID: acct.ID, Kind: ledger.BalanceCCL, Entry: entry,
	}))

	loadedAcct, _ := st.GetAccount(ctx, acct.ID)
	assert.True(t, loadedAcct.CCLBalance.Equal(decimal.NewFromInt(1)))
	require.Len(t, loadedAcct.CCLHistory, 1)
	assert.Equal(t, ledger.EntryEarned, loadedAcct.CCLHistory[0].Type)

	loadedWork, _ := st.GetCCLWork(ctx, work.ID)
	assert.Equal(t, cclwork.StatusApproved, loadedWork.Status)
	assert.Equal(t, "2026-02-22", loadedWork.PrincipalActionDate.String())
}

func TestSQLite_CCLTransitionStaleConflicts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	acct := seedAccount(t, st)

	work := &cclwork.Work{
		ID: "work-1", SubmittedBy: acct.ID,
		Date:    ledger.NewDate(2026, time.February, 20),
		Periods: []cclwork.Period{{Number: 1}},
		Reason:  "cover", Status: cclwork.StatusPending,
	}
	require.NoError(t, st.CreateCCLWork(ctx, work))

	first := *work
	first.Status = cclwork.StatusForwardedToPrincipal
	require.NoError(t, st.ApplyCCLTransition(ctx, &first, cclwork.StatusPending, nil))

	second := *work
	second.Status = cclwork.StatusRejected
	err := st.ApplyCCLTransition(ctx, &second, cclwork.StatusPending, nil)
	assert.ErrorIs(t, err, ledger.ErrConcurrentModification)
}
