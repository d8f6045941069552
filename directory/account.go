/*
Package directory holds the people side of the system: accounts, roles, the
campus representation, and the authorization scope checks that gate every
approval action.

An Account is the aggregate root the workflow operates on. It embeds
ledger.Balances, so a state transition that debits a balance mutates the
account in memory and the store persists account + history + request status
in one save.
*/
package directory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/leave-engine/ledger"
)

// =============================================================================
// ROLES
// =============================================================================

type Role string

const (
	RoleEmployee   Role = "employee"
	RoleHOD        Role = "hod"
	RolePrincipal  Role = "principal"
	RoleSuperAdmin Role = "super_admin"
)

// ParseRole normalizes a role string. Unknown roles come back as-is with
// ok=false so callers can reject them.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleEmployee:
		return RoleEmployee, true
	case RoleHOD:
		return RoleHOD, true
	case RolePrincipal:
		return RolePrincipal, true
	case RoleSuperAdmin:
		return RoleSuperAdmin, true
	}
	return Role(s), false
}

// Designation distinguishes teaching staff, who must hand over their periods
// before going on leave, from non-teaching staff.
type Designation string

const (
	DesignationFaculty     Designation = "faculty"
	DesignationNonTeaching Designation = "non_teaching"
)

// IsFaculty reports whether the designation carries teaching periods.
func (d Designation) IsFaculty() bool { return d == DesignationFaculty }

// =============================================================================
// ACCOUNT - Aggregate root
// =============================================================================

// Account is an employee, HOD, principal, or super admin. All four roles use
// the same record; role-specific behavior lives in the scope checks and the
// workflow transition table, not in the shape of the data.
type Account struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	Designation  Designation
	Department   string // department code, matched case-insensitively
	Campus       Campus
	PasswordHash string
	CreatedAt    time.Time

	ledger.Balances
}

// NewAccount provisions an account with the opening balances: 12 leave
// days, zero CCL credit.
func NewAccount(name, email string, role Role, designation Designation, department string, campus Campus) *Account {
	return &Account{
		ID:          uuid.NewString(),
		Name:        name,
		Email:       strings.TrimSpace(email),
		Role:        role,
		Designation: designation,
		Department:  department,
		Campus:      campus,
		CreatedAt:   time.Now().UTC(),
		Balances:    ledger.NewBalances(),
	}
}

// Identity is the verified caller identity handed in by the transport layer
// after token verification. The workflow trusts it as-is.
type Identity struct {
	AccountID  string
	Role       Role
	Campus     string // normalized lowercase campus type
	Department string
}
