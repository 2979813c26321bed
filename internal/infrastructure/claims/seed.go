package claims

import (
	"time"

	domainClaims "github.com/claimflow/claimflow-go/internal/domain/claims"
	"github.com/claimflow/claimflow-go/internal/domain/security"
)

// SeedUsers returns the demo identities.
func SeedUsers() []domainClaims.User {
	return []domainClaims.User{
		{ID: "usr-001", Name: "Alice Smith", Email: "alice.s@example.com", Role: security.RolePolicyholder},
		{ID: "usr-002", Name: "Bob Johnson", Email: "bob.j@example.com", Role: security.RoleClaimsOfficer},
		{ID: "usr-003", Name: "Charlie Brown", Email: "charlie.b@example.com", Role: security.RoleVerificationOfficer},
		{ID: "usr-004", Name: "Diana Prince", Email: "diana.p@example.com", Role: security.RoleFinanceTeam},
		{ID: "usr-005", Name: "Eve Adams", Email: "eve.a@example.com", Role: security.RoleAdmin},
		{ID: "usr-006", Name: "Frank White", Email: "frank.w@example.com", Role: security.RolePolicyholder},
		{ID: "usr-007", Name: "Grace Lee", Email: "grace.l@example.com", Role: security.RoleClaimsOfficer},
	}
}

// SeedPolicies returns the demo policies.
func SeedPolicies() []domainClaims.Policy {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	return []domainClaims.Policy{
		{ID: "pol-001", HolderID: "usr-001", Number: "INS-001-2023-A", Type: "Auto Insurance", Premium: 1200, StartDate: day(2023, 1, 1), EndDate: day(2023, 12, 31)},
		{ID: "pol-002", HolderID: "usr-001", Number: "INS-002-2023-H", Type: "Home Insurance", Premium: 2500, StartDate: day(2023, 3, 15), EndDate: day(2024, 3, 14)},
		{ID: "pol-003", HolderID: "usr-006", Number: "INS-003-2023-L", Type: "Life Insurance", Premium: 800, StartDate: day(2022, 6, 1), EndDate: day(2042, 5, 31)},
		{ID: "pol-004", HolderID: "usr-006", Number: "INS-004-2023-M", Type: "Medical Insurance", Premium: 1800, StartDate: day(2023, 2, 1), EndDate: day(2024, 1, 31)},
	}
}

// SeedDirectories builds directories populated with the demo data.
func SeedDirectories() (*UserDirectory, *PolicyDirectory) {
	return NewUserDirectory(SeedUsers()...), NewPolicyDirectory(SeedPolicies()...)
}
