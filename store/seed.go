package store

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/warp/leave-engine/directory"
)

// SeedDemo populates the store with a small institution for development:
// one super admin, a principal per campus, an HOD, and two faculty members.
// Every account's password is "changeme". Safe to call more than once;
// accounts are keyed by email and re-seeding overwrites them.
//
// Only use in development and demo environments.
func SeedDemo(ctx context.Context, st Store) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	engineering := directory.StructuredCampus("engineering", "College of Engineering", "North Campus")
	pharmacy := directory.LegacyCampus("Pharmacy")

	seeds := []*directory.Account{
		directory.NewAccount("Asha Verma", "admin@example.edu",
			directory.RoleSuperAdmin, directory.DesignationNonTeaching, "", directory.Campus{}),
		directory.NewAccount("Ravi Iyer", "principal.engg@example.edu",
			directory.RolePrincipal, directory.DesignationNonTeaching, "", engineering),
		directory.NewAccount("Meera Pillai", "principal.pharm@example.edu",
			directory.RolePrincipal, directory.DesignationNonTeaching, "", pharmacy),
		directory.NewAccount("Suresh Nair", "hod.cse@example.edu",
			directory.RoleHOD, directory.DesignationFaculty, "CSE", engineering),
		directory.NewAccount("Lakshmi Rao", "lakshmi.rao@example.edu",
			directory.RoleEmployee, directory.DesignationFaculty, "CSE", engineering),
		directory.NewAccount("John Mathew", "john.mathew@example.edu",
			directory.RoleEmployee, directory.DesignationNonTeaching, "Office", pharmacy),
	}

	for _, acct := range seeds {
		// Stable ids so re-seeding replaces rather than duplicates.
		acct.ID = "seed-" + acct.Email
		acct.PasswordHash = string(hash)
		if err := st.SaveAccount(ctx, acct); err != nil {
			return fmt.Errorf("seed %s: %w", acct.Email, err)
		}
	}
	return nil
}
