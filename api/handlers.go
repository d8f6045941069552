/*
handlers.go - HTTP handlers for the leave engine API.

HANDLER PATTERN:
 1. Decode and validate input
 2. Resolve the caller's identity from the request context
 3. Call domain logic (validator, workflow, flow)
 4. Serialize response
 5. Map domain errors to HTTP status codes

ERROR HANDLING:
  Domain errors carry sentinels the transport maps uniformly:
  - 400: validation failures, insufficient balance at submission
  - 401: missing/invalid token
  - 403: authorization scope failures
  - 404: record not found
  - 409: invalid transition, already-decided, concurrent modification
  - 500: everything else
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/cclwork"
	"github.com/warp/leave-engine/directory"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
	"github.com/warp/leave-engine/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store store.Store
	Leave *leave.WorkflowService
	CCL   *cclwork.FlowService

	JWTSecret string
	TokenTTL  time.Duration
}

// NewHandler wires the workflow services over the given store.
func NewHandler(st store.Store, jwtSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{
		Store:     st,
		Leave:     leave.NewWorkflowService(st),
		CCL:       cclwork.NewFlowService(st),
		JWTSecret: jwtSecret,
		TokenTTL:  tokenTTL,
	}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login verifies credentials and returns a signed token.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	acct, err := h.Store.GetAccountByEmail(r.Context(), strings.TrimSpace(body.Email))
	if err != nil {
		// Same response as a bad password so the endpoint does not leak
		// which emails exist.
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if err := CheckPassword(acct.PasswordHash, body.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	token, err := GenerateToken(h.JWTSecret, acct, h.TokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Account: toAccountDTO(acct)})
}

// Me returns the authenticated caller's account.
// GET /api/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return
	}
	acct, err := h.Store.GetAccount(r.Context(), identity.AccountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(acct))
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns all accounts. Approver roles only.
// GET /api/accounts
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())
	if identity.Role == directory.RoleEmployee {
		writeError(w, http.StatusForbidden, "Approver role required", nil)
		return
	}

	accounts, err := h.Store.ListAccounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, acct := range accounts {
		dtos[i] = toAccountDTO(acct)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAccount provisions a new account with the opening balances.
// POST /api/accounts (super admin only)
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())
	if identity.Role != directory.RoleSuperAdmin {
		writeError(w, http.StatusForbidden, "Super admin role required", nil)
		return
	}

	var body CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	role, ok := directory.ParseRole(body.Role)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown role", nil)
		return
	}
	if strings.TrimSpace(body.Email) == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required", nil)
		return
	}

	hash, err := HashPassword(body.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password", err)
		return
	}

	designation := directory.Designation(body.Designation)
	if designation != directory.DesignationFaculty && designation != directory.DesignationNonTeaching {
		designation = directory.DesignationNonTeaching
	}

	acct := directory.NewAccount(body.Name, body.Email, role, designation, body.Department,
		directory.StructuredCampus(body.Campus.Type, body.Campus.Name, body.Campus.Location))
	acct.PasswordHash = hash

	if err := h.Store.SaveAccount(r.Context(), acct); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(acct))
}

// GetBalances returns the two current balances for an account, gated by the
// caller's scope.
// GET /api/accounts/{id}/balances
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	acct, err := h.Store.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := directory.Authorize(identity, acct, directory.ActionViewBalances); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalancesDTO{
		AccountID:    acct.ID,
		LeaveBalance: acct.LeaveBalance.String(),
		CCLBalance:   acct.CCLBalance.String(),
	})
}

// GetHistory returns the append-only entry log for one of the account's
// balances.
// GET /api/accounts/{id}/history/{kind}
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	kind := ledger.BalanceKind(strings.ToLower(chi.URLParam(r, "kind")))
	if kind != ledger.BalanceLeave && kind != ledger.BalanceCCL {
		writeError(w, http.StatusBadRequest, "Balance kind must be leave or ccl", nil)
		return
	}

	acct, err := h.Store.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := directory.Authorize(identity, acct, directory.ActionViewBalances); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, HistoryDTO{
		AccountID: acct.ID,
		Balance:   acct.Balance(kind).String(),
		Entries:   toEntryDTOs(acct.History(kind)),
	})
}

// =============================================================================
// LEAVE REQUEST HANDLERS
// =============================================================================

// SubmitLeave creates a leave request for the authenticated caller.
// POST /api/leave-requests
func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var body SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	days, err := decimal.NewFromString(body.NumberOfDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid number_of_days", err)
		return
	}

	sub := leave.Submission{
		LeaveType:    body.LeaveType,
		IsHalfDay:    body.IsHalfDay,
		Session:      body.Session,
		StartDate:    body.StartDate,
		EndDate:      body.EndDate,
		NumberOfDays: days,
		Reason:       body.Reason,
	}
	for _, day := range body.AlternateSchedule {
		periods := make([]leave.Period, len(day.Periods))
		for i, p := range day.Periods {
			periods[i] = leave.Period{Number: p.Number, SubstituteID: p.SubstituteID, AssignedClass: p.AssignedClass}
		}
		sub.AlternateSchedule = append(sub.AlternateSchedule, leave.SubmissionDay{Date: day.Date, Periods: periods})
	}

	req, err := h.Leave.Submit(r.Context(), identity.AccountID, sub)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveRequestDTO(req))
}

// ListLeave lists leave requests. Employees only see their own; approvers
// may filter by account and status.
// GET /api/leave-requests?account_id=&status=
func (h *Handler) ListLeave(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	filter := leave.Filter{AccountID: r.URL.Query().Get("account_id")}
	if identity.Role == directory.RoleEmployee {
		filter.AccountID = identity.AccountID
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status, ok := leave.ParseStatus(s)
		if !ok {
			writeError(w, http.StatusBadRequest, "Unknown status", nil)
			return
		}
		filter.Status = status
	}

	reqs, err := h.Store.ListLeaveRequests(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave requests", err)
		return
	}

	dtos := make([]*LeaveRequestDTO, len(reqs))
	for i, req := range reqs {
		dtos[i] = toLeaveRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLeave returns one leave request.
// GET /api/leave-requests/{id}
func (h *Handler) GetLeave(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	req, err := h.Store.GetLeaveRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if identity.Role == directory.RoleEmployee && req.AccountID != identity.AccountID {
		writeError(w, http.StatusForbidden, "Not your request", nil)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(req))
}

// TransitionLeave moves a request to a new status on behalf of the caller.
// POST /api/leave-requests/{id}/transition
func (h *Handler) TransitionLeave(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var body TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	target, ok := leave.ParseStatus(body.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown status", nil)
		return
	}

	result, err := h.Leave.Transition(r.Context(), identity, chi.URLParam(r, "id"), target, body.Remarks)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := TransitionResponse{Request: toLeaveRequestDTO(result.Request), Warning: result.Warning}
	if result.NewBalance != nil {
		resp.NewBalance = strPtr(result.NewBalance.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// CCL WORK HANDLERS
// =============================================================================

// SubmitCCLWork records extra duty performed by the authenticated caller.
// POST /api/ccl-work
func (h *Handler) SubmitCCLWork(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var body SubmitCCLWorkRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sub := cclwork.Submission{Date: body.Date, Reason: body.Reason}
	sub.Periods = make([]cclwork.Period, len(body.Periods))
	for i, p := range body.Periods {
		sub.Periods[i] = cclwork.Period{Number: p.Number, Class: p.Class, Subject: p.Subject, OriginalFacultyID: p.OriginalFacultyID}
	}

	work, err := h.CCL.Submit(r.Context(), identity.AccountID, sub)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCCLWorkDTO(work))
}

// ListCCLWork lists work records. Employees only see their own.
// GET /api/ccl-work?submitted_by=&status=
func (h *Handler) ListCCLWork(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	filter := cclwork.Filter{SubmittedBy: r.URL.Query().Get("submitted_by")}
	if identity.Role == directory.RoleEmployee {
		filter.SubmittedBy = identity.AccountID
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status, ok := cclwork.ParseStatus(s)
		if !ok {
			writeError(w, http.StatusBadRequest, "Unknown status", nil)
			return
		}
		filter.Status = status
	}

	works, err := h.Store.ListCCLWork(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list ccl work", err)
		return
	}

	dtos := make([]*CCLWorkDTO, len(works))
	for i, work := range works {
		dtos[i] = toCCLWorkDTO(work)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCCLWork returns one work record.
// GET /api/ccl-work/{id}
func (h *Handler) GetCCLWork(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	work, err := h.Store.GetCCLWork(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if identity.Role == directory.RoleEmployee && work.SubmittedBy != identity.AccountID {
		writeError(w, http.StatusForbidden, "Not your record", nil)
		return
	}
	writeJSON(w, http.StatusOK, toCCLWorkDTO(work))
}

// TransitionCCLWork moves a work record along the approval chain.
// POST /api/ccl-work/{id}/transition
func (h *Handler) TransitionCCLWork(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	var body TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	target, ok := cclwork.ParseStatus(body.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown status", nil)
		return
	}

	result, err := h.CCL.Transition(r.Context(), identity, chi.URLParam(r, "id"), target, body.Remarks)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := TransitionResponse{Work: toCCLWorkDTO(result.Work)}
	if result.NewBalance != nil {
		resp.NewBalance = strPtr(result.NewBalance.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// ERROR MAPPING AND RESPONSE HELPERS
// =============================================================================

// writeDomainError maps domain error sentinels to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *leave.ValidationError
	var cclValidationErr *cclwork.ValidationError

	switch {
	case errors.As(err, &validationErr), errors.As(err, &cclValidationErr):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	case errors.Is(err, ledger.ErrInsufficientBalance):
		writeError(w, http.StatusBadRequest, "Insufficient balance", err)
	case errors.Is(err, directory.ErrDenied):
		writeError(w, http.StatusForbidden, "Not allowed", err)
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, ledger.ErrAlreadyInState):
		writeError(w, http.StatusConflict, "Already decided", err)
	case errors.Is(err, ledger.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "Invalid transition", err)
	case errors.Is(err, ledger.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "Record was modified concurrently, reload and retry", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func strPtr(s string) *string {
	return &s
}
