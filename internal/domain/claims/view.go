package claims

import (
	"sort"
	"strings"

	"github.com/claimflow/claimflow-go/internal/domain/security"
)

// ========================================================================
// View Filter
// ========================================================================

// CanSee reports whether the user may see the claim. Policyholders see
// only their own claims; every other role sees all of them.
func CanSee(user User, claim *Claim) bool {
	if security.CanPerform(user.Role, security.PermClaimReadAll) {
		return true
	}
	return claim.IsOwnedBy(user.ID)
}

// VisibleTo returns the subset of claims the user may see.
func VisibleTo(user User, all []*Claim) []*Claim {
	result := make([]*Claim, 0, len(all))
	for _, c := range all {
		if CanSee(user, c) {
			result = append(result, c)
		}
	}
	return result
}

// Search keeps claims whose id, title, description or status label contains
// term, case-insensitively. An empty term keeps everything.
func Search(subset []*Claim, term string) []*Claim {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return subset
	}

	result := make([]*Claim, 0, len(subset))
	for _, c := range subset {
		if strings.Contains(strings.ToLower(c.ID), needle) ||
			strings.Contains(strings.ToLower(c.Title), needle) ||
			strings.Contains(strings.ToLower(c.Description), needle) ||
			strings.Contains(strings.ToLower(c.Status.Label()), needle) {
			result = append(result, c)
		}
	}
	return result
}

// SortByLastUpdate orders claims newest first; ties fall back to id.
func SortByLastUpdate(subset []*Claim) {
	sort.SliceStable(subset, func(i, j int) bool {
		if !subset[i].LastUpdate.Equal(subset[j].LastUpdate) {
			return subset[i].LastUpdate.After(subset[j].LastUpdate)
		}
		return subset[i].ID > subset[j].ID
	})
}

// DashboardStats holds the dashboard counters.
type DashboardStats struct {
	Total         int `json:"total"`
	ApprovedCount int `json:"approvedCount"`
	PendingCount  int `json:"pendingCount"`
	SettledCount  int `json:"settledCount"`
}

// Dashboard counts over the given subset. It is recomputed on every call.
func Dashboard(subset []*Claim) DashboardStats {
	stats := DashboardStats{Total: len(subset)}
	for _, c := range subset {
		switch {
		case c.Status == StatusApproved:
			stats.ApprovedCount++
		case c.Status == StatusSettled:
			stats.SettledCount++
		case c.Status.IsPending():
			stats.PendingCount++
		}
	}
	return stats
}
