// Package security provides the role and permission model for claimflow.
package security

import (
	"fmt"
	"strings"
)

// Role represents a user role. A user holds exactly one role.
type Role string

const (
	RolePolicyholder        Role = "policyholder"
	RoleClaimsOfficer       Role = "claims_officer"
	RoleVerificationOfficer Role = "verification_officer"
	RoleFinanceTeam         Role = "finance_team"
	RoleAdmin               Role = "admin"
)

// AllRoles returns every role in display order.
func AllRoles() []Role {
	return []Role{
		RolePolicyholder,
		RoleClaimsOfficer,
		RoleVerificationOfficer,
		RoleFinanceTeam,
		RoleAdmin,
	}
}

var roleNames = map[Role]string{
	RolePolicyholder:        "Policyholder",
	RoleClaimsOfficer:       "Claims Officer",
	RoleVerificationOfficer: "Verification Officer",
	RoleFinanceTeam:         "Finance Team",
	RoleAdmin:               "Admin",
}

// IsValid returns true if the role is valid.
func (r Role) IsValid() bool {
	_, ok := roleNames[r]
	return ok
}

// DisplayName returns the human-readable role name.
func (r Role) DisplayName() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return string(r)
}

// ParseRole accepts the role token, its display name, or a camel-cased form
// ("ClaimsOfficer").
func ParseRole(s string) (Role, error) {
	key := normalize(s)
	for _, r := range AllRoles() {
		if normalize(string(r)) == key || normalize(r.DisplayName()) == key {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

func normalize(s string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(s) {
		if c == '_' || c == ' ' || c == '-' {
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Permission represents a specific non-transition permission.
type Permission string

const (
	// Claim permissions
	PermClaimCreate      Permission = "claims.create"
	PermClaimCreateOther Permission = "claims.create.on_behalf"
	PermClaimEditAny     Permission = "claims.edit.any"
	PermClaimEditOwn     Permission = "claims.edit.own_draft"
	PermClaimReadAll     Permission = "claims.read.all"

	// Directory permissions
	PermUserDirectory   Permission = "directory.users"
	PermPolicyDirectory Permission = "directory.policies"
)

// AllPermissions returns all available permissions.
func AllPermissions() []Permission {
	return []Permission{
		PermClaimCreate, PermClaimCreateOther,
		PermClaimEditAny, PermClaimEditOwn,
		PermClaimReadAll,
		PermUserDirectory, PermPolicyDirectory,
	}
}

// PermissionSet represents a set of permissions.
type PermissionSet map[Permission]bool

// NewPermissionSet creates a new permission set.
func NewPermissionSet(permissions ...Permission) PermissionSet {
	ps := make(PermissionSet)
	for _, p := range permissions {
		ps[p] = true
	}
	return ps
}

// Has returns true if the set contains the permission.
func (ps PermissionSet) Has(permission Permission) bool {
	return ps[permission]
}

// RolePermissions maps roles to their permissions. Status transitions are
// governed by the transition table in the claims domain, not by this map.
var RolePermissions = map[Role]PermissionSet{
	RoleAdmin: NewPermissionSet(
		PermClaimCreate, PermClaimCreateOther,
		PermClaimEditAny, PermClaimEditOwn,
		PermClaimReadAll,
		PermUserDirectory, PermPolicyDirectory,
	),
	RoleClaimsOfficer: NewPermissionSet(
		PermClaimEditAny,
		PermClaimReadAll,
		PermPolicyDirectory,
	),
	RoleVerificationOfficer: NewPermissionSet(
		PermClaimReadAll,
	),
	RoleFinanceTeam: NewPermissionSet(
		PermClaimReadAll,
	),
	RolePolicyholder: NewPermissionSet(
		PermClaimCreate,
		PermClaimEditOwn,
	),
}

// GetRolePermissions returns a copy of the permissions for a role.
func GetRolePermissions(role Role) PermissionSet {
	result := make(PermissionSet)
	for p := range RolePermissions[role] {
		result[p] = true
	}
	return result
}

// CanPerform checks if a role can perform a specific action.
func CanPerform(role Role, permission Permission) bool {
	return RolePermissions[role].Has(permission)
}
