/*
dto.go - Data Transfer Objects for API requests and responses.

These types decouple the internal domain model from the external API
contract. Dates cross the wire as YYYY-MM-DD strings and day counts as
decimal strings, matching the ledger's textual forms.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
*/
package api

import (
	"github.com/warp/leave-engine/cclwork"
	"github.com/warp/leave-engine/directory"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/ledger"
)

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string     `json:"token"`
	Account AccountDTO `json:"account"`
}

// =============================================================================
// ACCOUNTS AND BALANCES
// =============================================================================

type CampusDTO struct {
	Type     string `json:"type,omitempty"`
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`
}

type AccountDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Designation string    `json:"designation"`
	Department  string    `json:"department"`
	Campus      CampusDTO `json:"campus"`
}

type CreateAccountRequest struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Password    string    `json:"password"`
	Role        string    `json:"role"`
	Designation string    `json:"designation"`
	Department  string    `json:"department"`
	Campus      CampusDTO `json:"campus"`
}

type BalancesDTO struct {
	AccountID    string `json:"account_id"`
	LeaveBalance string `json:"leave_balance"`
	CCLBalance   string `json:"ccl_balance"`
}

type EntryDTO struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Date          string `json:"date"`
	Days          string `json:"days"`
	ReferenceID   string `json:"reference_id,omitempty"`
	ReferenceKind string `json:"reference_kind,omitempty"`
	Remarks       string `json:"remarks,omitempty"`
}

type HistoryDTO struct {
	AccountID string     `json:"account_id"`
	Balance   string     `json:"balance"`
	Entries   []EntryDTO `json:"entries"`
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

type PeriodDTO struct {
	Number        int    `json:"number"`
	SubstituteID  string `json:"substitute_id"`
	AssignedClass string `json:"assigned_class,omitempty"`
}

type DayScheduleDTO struct {
	Date    string      `json:"date"`
	Periods []PeriodDTO `json:"periods"`
}

type SubmitLeaveRequest struct {
	LeaveType         string           `json:"leave_type"`
	IsHalfDay         bool             `json:"is_half_day"`
	Session           string           `json:"session,omitempty"`
	StartDate         string           `json:"start_date"`
	EndDate           string           `json:"end_date"`
	NumberOfDays      string           `json:"number_of_days"`
	Reason            string           `json:"reason"`
	AlternateSchedule []DayScheduleDTO `json:"alternate_schedule,omitempty"`
}

type LeaveRequestDTO struct {
	ID                  string           `json:"id"`
	AccountID           string           `json:"account_id"`
	LeaveType           string           `json:"leave_type"`
	IsHalfDay           bool             `json:"is_half_day"`
	Session             string           `json:"session,omitempty"`
	StartDate           string           `json:"start_date"`
	EndDate             string           `json:"end_date"`
	NumberOfDays        string           `json:"number_of_days"`
	Reason              string           `json:"reason"`
	AlternateSchedule   []DayScheduleDTO `json:"alternate_schedule,omitempty"`
	Status              string           `json:"status"`
	HODRemarks          string           `json:"hod_remarks,omitempty"`
	PrincipalRemarks    string           `json:"principal_remarks,omitempty"`
	ApprovedByHOD       bool             `json:"approved_by_hod"`
	ApprovedByPrincipal bool             `json:"approved_by_principal"`
	AppliedOn           string           `json:"applied_on"`
	PrincipalActionDate string           `json:"principal_action_date,omitempty"`
}

// TransitionRequest asks to move a request or work record to a new status.
type TransitionRequest struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}

type TransitionResponse struct {
	Request    *LeaveRequestDTO `json:"request,omitempty"`
	Work       *CCLWorkDTO      `json:"work,omitempty"`
	NewBalance *string          `json:"new_balance,omitempty"`
	Warning    string           `json:"warning,omitempty"`
}

// =============================================================================
// CCL WORK
// =============================================================================

type CCLPeriodDTO struct {
	Number            int    `json:"number"`
	Class             string `json:"class,omitempty"`
	Subject           string `json:"subject,omitempty"`
	OriginalFacultyID string `json:"original_faculty_id,omitempty"`
}

type SubmitCCLWorkRequest struct {
	Date    string         `json:"date"`
	Periods []CCLPeriodDTO `json:"periods"`
	Reason  string         `json:"reason"`
}

type CCLWorkDTO struct {
	ID                  string         `json:"id"`
	SubmittedBy         string         `json:"submitted_by"`
	Date                string         `json:"date"`
	Periods             []CCLPeriodDTO `json:"periods"`
	Reason              string         `json:"reason"`
	Status              string         `json:"status"`
	HODRemarks          string         `json:"hod_remarks,omitempty"`
	PrincipalRemarks    string         `json:"principal_remarks,omitempty"`
	HODActionDate       string         `json:"hod_action_date,omitempty"`
	PrincipalActionDate string         `json:"principal_action_date,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// DOMAIN <-> DTO CONVERSIONS
// =============================================================================

func toAccountDTO(acct *directory.Account) AccountDTO {
	return AccountDTO{
		ID:          acct.ID,
		Name:        acct.Name,
		Email:       acct.Email,
		Role:        string(acct.Role),
		Designation: string(acct.Designation),
		Department:  acct.Department,
		Campus:      toCampusDTO(acct.Campus),
	}
}

func toCampusDTO(c directory.Campus) CampusDTO {
	if c.Kind == directory.CampusLegacy {
		return CampusDTO{Type: c.Value}
	}
	return CampusDTO{Type: c.Type, Name: c.Name, Location: c.Location}
}

func toEntryDTOs(entries []ledger.Entry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = EntryDTO{
			ID:            e.ID,
			Type:          string(e.Type),
			Date:          e.Date.String(),
			Days:          e.Days.String(),
			ReferenceID:   e.RefID,
			ReferenceKind: string(e.RefKind),
			Remarks:       e.Remarks,
		}
	}
	return dtos
}

func toLeaveRequestDTO(req *leave.Request) *LeaveRequestDTO {
	dto := &LeaveRequestDTO{
		ID:                  req.ID,
		AccountID:           req.AccountID,
		LeaveType:           string(req.LeaveType),
		IsHalfDay:           req.IsHalfDay,
		Session:             string(req.Session),
		StartDate:           req.StartDate.String(),
		EndDate:             req.EndDate.String(),
		NumberOfDays:        req.NumberOfDays.String(),
		Reason:              req.Reason,
		Status:              string(req.Status),
		HODRemarks:          req.HODRemarks,
		PrincipalRemarks:    req.PrincipalRemarks,
		ApprovedByHOD:       req.ApprovedBy.HOD,
		ApprovedByPrincipal: req.ApprovedBy.Principal,
		AppliedOn:           req.AppliedOn.String(),
	}
	if !req.PrincipalActionDate.IsZero() {
		dto.PrincipalActionDate = req.PrincipalActionDate.String()
	}
	for _, day := range req.AlternateSchedule {
		periods := make([]PeriodDTO, len(day.Periods))
		for i, p := range day.Periods {
			periods[i] = PeriodDTO{Number: p.Number, SubstituteID: p.SubstituteID, AssignedClass: p.AssignedClass}
		}
		dto.AlternateSchedule = append(dto.AlternateSchedule, DayScheduleDTO{Date: day.Date.String(), Periods: periods})
	}
	return dto
}

func toCCLWorkDTO(work *cclwork.Work) *CCLWorkDTO {
	dto := &CCLWorkDTO{
		ID:               work.ID,
		SubmittedBy:      work.SubmittedBy,
		Date:             work.Date.String(),
		Reason:           work.Reason,
		Status:           string(work.Status),
		HODRemarks:       work.HODRemarks,
		PrincipalRemarks: work.PrincipalRemarks,
	}
	if !work.HODActionDate.IsZero() {
		dto.HODActionDate = work.HODActionDate.String()
	}
	if !work.PrincipalActionDate.IsZero() {
		dto.PrincipalActionDate = work.PrincipalActionDate.String()
	}
	dto.Periods = make([]CCLPeriodDTO, len(work.Periods))
	for i, p := range work.Periods {
		dto.Periods[i] = CCLPeriodDTO{Number: p.Number, Class: p.Class, Subject: p.Subject, OriginalFacultyID: p.OriginalFacultyID}
	}
	return dto
}
