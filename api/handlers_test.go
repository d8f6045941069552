package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/directory"
	"github.com/warp/leave-engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const testPassword = "correct-horse"

type testEnv struct {
	server   *httptest.Server
	store    *store.Memory
	employee *directory.Account
	hod      *directory.Account
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()

	hash, err := api.HashPassword(testPassword)
	require.NoError(t, err)

	employee := directory.NewAccount("Lakshmi Rao", "lakshmi@example.edu",
		directory.RoleEmployee, directory.DesignationNonTeaching, "CSE",
		directory.LegacyCampus("Engineering"))
	employee.PasswordHash = hash
	require.NoError(t, mem.SaveAccount(ctx, employee))

	hod := directory.NewAccount("Suresh Nair", "hod@example.edu",
		directory.RoleHOD, directory.DesignationFaculty, "CSE",
		directory.LegacyCampus("Engineering"))
	hod.PasswordHash = hash
	require.NoError(t, mem.SaveAccount(ctx, hod))

	handler := api.NewHandler(mem, "test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := httptest.NewServer(api.NewRouter(handler, logger))
	t.Cleanup(server.Close)

	return &testEnv{server: server, store: mem, employee: employee, hod: hod}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		// Lists come back as arrays; wrap them so callers can still index.
		if raw[0] == '[' {
			var list []any
			require.NoError(t, json.Unmarshal(raw, &list))
			decoded = map[string]any{"items": list}
		} else {
			require.NoError(t, json.Unmarshal(raw, &decoded))
		}
	}
	return resp.StatusCode, decoded
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Email: email, Password: testPassword,
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func submitBody() api.SubmitLeaveRequest {
	start := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	end := time.Now().UTC().AddDate(0, 0, 8).Format("2006-01-02")
	return api.SubmitLeaveRequest{
		LeaveType:    "CL",
		StartDate:    start,
		EndDate:      end,
		NumberOfDays: "2",
		Reason:       "family function",
	}
}

// =============================================================================
// AUTH TESTS
// =============================================================================

func TestAPI_LoginAndMe(t *testing.T) {
	env := newTestEnv(t)

	token := env.login(t, "lakshmi@example.edu")

	status, body := env.do(t, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, env.employee.ID, body["id"])
}

func TestAPI_LoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Email: "lakshmi@example.edu", Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	// Unknown email gets the same response shape as a wrong password.
	status, _ = env.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Email: "nobody@example.edu", Password: testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodGet, "/api/leave-requests", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

// =============================================================================
// LEAVE FLOW OVER HTTP
// =============================================================================

func TestAPI_SubmitForwardApprove(t *testing.T) {
	// GIVEN: An employee and their HOD
	// WHEN: The employee submits a 2-day CL request and the HOD approves it
	// THEN: The responses carry each status hop and the final balance

	env := newTestEnv(t)
	employeeToken := env.login(t, "lakshmi@example.edu")
	hodToken := env.login(t, "hod@example.edu")

	status, created := env.do(t, http.MethodPost, "/api/leave-requests", employeeToken, submitBody())
	require.Equal(t, http.StatusCreated, status)
	reqID, _ := created["id"].(string)
	require.NotEmpty(t, reqID)
	assert.Equal(t, "Pending", created["status"])

	status, res := env.do(t, http.MethodPost, "/api/leave-requests/"+reqID+"/transition", hodToken,
		api.TransitionRequest{Status: "Approved", Remarks: "ok"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "10", res["new_balance"])

	status, balances := env.do(t, http.MethodGet, "/api/accounts/"+env.employee.ID+"/balances", employeeToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "10", balances["leave_balance"])

	status, history := env.do(t, http.MethodGet, "/api/accounts/"+env.employee.ID+"/history/leave", employeeToken, nil)
	require.Equal(t, http.StatusOK, status)
	entries, _ := history["entries"].([]any)
	assert.Len(t, entries, 1)
}

func TestAPI_ValidationErrorsAre400(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "lakshmi@example.edu")

	bad := submitBody()
	bad.NumberOfDays = "5" // mismatch with the 2-day range

	status, body := env.do(t, http.MethodPost, "/api/leave-requests", token, bad)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])
}

func TestAPI_EmployeeCannotTransition(t *testing.T) {
	env := newTestEnv(t)
	employeeToken := env.login(t, "lakshmi@example.edu")

	status, created := env.do(t, http.MethodPost, "/api/leave-requests", employeeToken, submitBody())
	require.Equal(t, http.StatusCreated, status)
	reqID, _ := created["id"].(string)

	status, _ = env.do(t, http.MethodPost, "/api/leave-requests/"+reqID+"/transition", employeeToken,
		api.TransitionRequest{Status: "Approved"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAPI_RepeatDecisionIs409(t *testing.T) {
	env := newTestEnv(t)
	employeeToken := env.login(t, "lakshmi@example.edu")
	hodToken := env.login(t, "hod@example.edu")

	status, created := env.do(t, http.MethodPost, "/api/leave-requests", employeeToken, submitBody())
	require.Equal(t, http.StatusCreated, status)
	reqID, _ := created["id"].(string)

	status, _ = env.do(t, http.MethodPost, "/api/leave-requests/"+reqID+"/transition", hodToken,
		api.TransitionRequest{Status: "Rejected"})
	require.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodPost, "/api/leave-requests/"+reqID+"/transition", hodToken,
		api.TransitionRequest{Status: "Rejected"})
	assert.Equal(t, http.StatusConflict, status)
}

func TestAPI_BalanceScope(t *testing.T) {
	// An employee can read their own balances but not a colleague's.
	env := newTestEnv(t)
	employeeToken := env.login(t, "lakshmi@example.edu")

	status, _ := env.do(t, http.MethodGet, "/api/accounts/"+env.employee.ID+"/balances", employeeToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodGet, "/api/accounts/"+env.hod.ID+"/balances", employeeToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAPI_ListLeaveScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	employeeToken := env.login(t, "lakshmi@example.edu")
	hodToken := env.login(t, "hod@example.edu")

	status, _ := env.do(t, http.MethodPost, "/api/leave-requests", employeeToken, submitBody())
	require.Equal(t, http.StatusCreated, status)

	// The employee sees their own request even when asking for someone else's.
	status, body := env.do(t, http.MethodGet, "/api/leave-requests?account_id="+env.hod.ID, employeeToken, nil)
	require.Equal(t, http.StatusOK, status)
	items, _ := body["items"].([]any)
	require.Len(t, items, 1)
	first, _ := items[0].(map[string]any)
	assert.Equal(t, env.employee.ID, first["account_id"])

	// The HOD can filter by account.
	status, body = env.do(t, http.MethodGet, "/api/leave-requests?account_id="+env.employee.ID, hodToken, nil)
	require.Equal(t, http.StatusOK, status)
	items, _ = body["items"].([]any)
	assert.Len(t, items, 1)
}

// =============================================================================
// CCL WORK OVER HTTP
// =============================================================================

func TestAPI_CCLWorkFlow(t *testing.T) {
	env := newTestEnv(t)
	employeeToken := env.login(t, "lakshmi@example.edu")
	hodToken := env.login(t, "hod@example.edu")

	status, created := env.do(t, http.MethodPost, "/api/ccl-work", employeeToken, api.SubmitCCLWorkRequest{
		Date:    time.Now().UTC().Format("2006-01-02"),
		Periods: []api.CCLPeriodDTO{{Number: 2, Class: "CS101", OriginalFacultyID: "absent-1"}},
		Reason:  "covered a colleague",
	})
	require.Equal(t, http.StatusCreated, status)
	workID, _ := created["id"].(string)
	require.NotEmpty(t, workID)

	status, _ = env.do(t, http.MethodPost, "/api/ccl-work/"+workID+"/transition", hodToken,
		api.TransitionRequest{Status: "ForwardedToPrincipal", Remarks: "verified"})
	require.Equal(t, http.StatusOK, status)

	// The HOD cannot give the final approval; that hop is the principal's.
	status, _ = env.do(t, http.MethodPost, "/api/ccl-work/"+workID+"/transition", hodToken,
		api.TransitionRequest{Status: "Approved"})
	assert.Equal(t, http.StatusConflict, status)
}
