package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input    string
		expected Role
	}{
		{"policyholder", RolePolicyholder},
		{"Claims Officer", RoleClaimsOfficer},
		{"ClaimsOfficer", RoleClaimsOfficer},
		{"verification_officer", RoleVerificationOfficer},
		{"FINANCE-TEAM", RoleFinanceTeam},
		{"Admin", RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ParseRole("auditor")
	require.Error(t, err)
}

func TestDirectoryPermissions(t *testing.T) {
	assert.True(t, CanPerform(RoleAdmin, PermUserDirectory))
	for _, r := range []Role{RolePolicyholder, RoleClaimsOfficer, RoleVerificationOfficer, RoleFinanceTeam} {
		assert.False(t, CanPerform(r, PermUserDirectory), "role %s", r)
	}

	assert.True(t, CanPerform(RoleAdmin, PermPolicyDirectory))
	assert.True(t, CanPerform(RoleClaimsOfficer, PermPolicyDirectory))
	assert.False(t, CanPerform(RoleFinanceTeam, PermPolicyDirectory))
}

func TestGetRolePermissionsReturnsCopy(t *testing.T) {
	perms := GetRolePermissions(RoleFinanceTeam)
	perms[PermUserDirectory] = true

	assert.False(t, CanPerform(RoleFinanceTeam, PermUserDirectory))
}

func TestUnknownRoleHasNoPermissions(t *testing.T) {
	for _, p := range AllPermissions() {
		assert.False(t, CanPerform(Role("ghost"), p))
	}
	assert.False(t, Role("ghost").IsValid())
	assert.Equal(t, "ghost", Role("ghost").DisplayName())
}
