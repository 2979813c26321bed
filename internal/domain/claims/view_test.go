package claims

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/claimflow/claimflow-go/internal/domain/security"
)

func sampleClaims() []*Claim {
	mk := func(id, holder, title, desc string, status Status, updated int) *Claim {
		return &Claim{
			ID: id, HolderID: holder, Title: title, Description: desc, Status: status,
			LastUpdate: t0.Add(time.Duration(updated) * time.Hour),
		}
	}
	return []*Claim{
		mk("CLM-001", "usr-001", "Front Bumper Damage", "front bumper requires replacement", StatusApproved, 9),
		mk("CLM-002", "usr-001", "Water Leak in Kitchen", "Burst pipe under kitchen sink", StatusInReview, 11),
		mk("CLM-003", "usr-001", "Side Mirror Broken", "Vandalism incident", StatusPendingVerification, 10),
		mk("CLM-004", "usr-006", "Critical Illness Benefit", "diagnosis as per policy terms", StatusSettled, 0),
		mk("CLM-005", "usr-006", "Hospitalization Expenses", "Emergency hospitalization", StatusSubmitted, 15),
		mk("CLM-006", "usr-001", "Roof Damage from Storm", "High winds", StatusPendingSubmission, 17),
		mk("CLM-007", "usr-006", "Dental Procedure", "Routine check-up", StatusRejected, 19),
	}
}

func TestVisibleToPolicyholderSeesOnlyOwnClaims(t *testing.T) {
	alice := User{ID: "usr-001", Role: security.RolePolicyholder}
	visible := VisibleTo(alice, sampleClaims())

	assert.Len(t, visible, 4)
	for _, c := range visible {
		assert.Equal(t, alice.ID, c.HolderID)
	}
}

func TestVisibleToStaffSeesEverything(t *testing.T) {
	for _, role := range []security.Role{security.RoleClaimsOfficer, security.RoleVerificationOfficer, security.RoleFinanceTeam, security.RoleAdmin} {
		assert.Len(t, VisibleTo(User{ID: "x", Role: role}, sampleClaims()), 7, "role %s", role)
	}
}

func TestSearch(t *testing.T) {
	all := sampleClaims()

	assert.Len(t, Search(all, ""), 7)
	assert.Len(t, Search(all, "   "), 7)

	ids := func(cs []*Claim) []string {
		out := make([]string, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.ID)
		}
		return out
	}

	assert.Equal(t, []string{"CLM-002"}, ids(Search(all, "KITCHEN")))
	assert.Equal(t, []string{"CLM-004"}, ids(Search(all, "clm-004")))
	assert.Equal(t, []string{"CLM-002"}, ids(Search(all, "in review")))
	assert.Equal(t, []string{"CLM-003", "CLM-006"}, ids(Search(all, "pending")))
	assert.Empty(t, Search(all, "motorcycle"))
}

func TestSortByLastUpdate(t *testing.T) {
	all := sampleClaims()
	SortByLastUpdate(all)

	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].LastUpdate.After(all[i-1].LastUpdate))
	}
	assert.Equal(t, "CLM-007", all[0].ID)
}

func TestDashboard(t *testing.T) {
	stats := Dashboard(sampleClaims())
	assert.Equal(t, DashboardStats{Total: 7, ApprovedCount: 1, PendingCount: 3, SettledCount: 1}, stats)

	alice := User{ID: "usr-001", Role: security.RolePolicyholder}
	stats = Dashboard(VisibleTo(alice, sampleClaims()))
	assert.Equal(t, DashboardStats{Total: 4, ApprovedCount: 1, PendingCount: 2, SettledCount: 0}, stats)
}
