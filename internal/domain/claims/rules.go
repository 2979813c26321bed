package claims

import (
	"fmt"
	"sort"

	"github.com/claimflow/claimflow-go/internal/domain/security"
)

// ========================================================================
// Transition Table
// ========================================================================

// Rule is one row of the transition table.
type Rule struct {
	From  Status          `json:"from"`
	To    Status          `json:"to"`
	Roles []security.Role `json:"roles"`
	// OwnerOnly restricts the Policyholder grant to the claim's own holder.
	OwnerOnly bool `json:"ownerOnly,omitempty"`
}

// nonTerminal lists the statuses covered by the "any non-terminal" rows.
var nonTerminal = []Status{
	StatusPendingSubmission,
	StatusSubmitted,
	StatusInReview,
	StatusPendingVerification,
}

// transitionRules is the single source of truth for status changes.
// Admin appears on every row.
func transitionRules() []Rule {
	officer := []security.Role{security.RoleClaimsOfficer, security.RoleAdmin}
	holder := []security.Role{security.RolePolicyholder, security.RoleAdmin}

	rules := []Rule{
		{From: StatusPendingSubmission, To: StatusSubmitted, Roles: holder, OwnerOnly: true},
		{From: StatusSubmitted, To: StatusInReview, Roles: officer},
		{From: StatusInReview, To: StatusPendingVerification, Roles: []security.Role{security.RoleVerificationOfficer, security.RoleAdmin}},
		{From: StatusInReview, To: StatusApproved, Roles: officer},
		{From: StatusPendingVerification, To: StatusInReview, Roles: []security.Role{security.RoleVerificationOfficer, security.RoleAdmin}},
		{From: StatusApproved, To: StatusSettled, Roles: []security.Role{security.RoleFinanceTeam, security.RoleAdmin}},
	}
	for _, from := range nonTerminal {
		rules = append(rules,
			Rule{From: from, To: StatusRejected, Roles: officer},
			Rule{From: from, To: StatusWithdrawn, Roles: holder, OwnerOnly: true},
		)
	}
	return rules
}

type transitionKey struct {
	role     security.Role
	from, to Status
}

type grant struct {
	ownerOnly bool
}

var transitionTable = buildTransitionTable(transitionRules())

func buildTransitionTable(rules []Rule) map[transitionKey]grant {
	table := make(map[transitionKey]grant)
	for _, rule := range rules {
		for _, role := range rule.Roles {
			table[transitionKey{role: role, from: rule.From, to: rule.To}] = grant{
				ownerOnly: rule.OwnerOnly && role == security.RolePolicyholder,
			}
		}
	}
	return table
}

// Rules returns the transition table merged by edge, ordered by workflow.
func Rules() []Rule {
	merged := make(map[[2]Status]*Rule)
	order := make([][2]Status, 0)
	for _, rule := range transitionRules() {
		key := [2]Status{rule.From, rule.To}
		if existing, ok := merged[key]; ok {
			existing.Roles = append(existing.Roles, rule.Roles...)
			existing.OwnerOnly = existing.OwnerOnly || rule.OwnerOnly
			continue
		}
		r := rule
		r.Roles = append([]security.Role(nil), rule.Roles...)
		merged[key] = &r
		order = append(order, key)
	}

	rank := make(map[Status]int)
	for i, s := range AllStatuses() {
		rank[s] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		if rank[order[i][0]] != rank[order[j][0]] {
			return rank[order[i][0]] < rank[order[j][0]]
		}
		return rank[order[i][1]] < rank[order[j][1]]
	})

	result := make([]Rule, 0, len(order))
	for _, key := range order {
		result = append(result, *merged[key])
	}
	return result
}

// Authorize reports whether role may move a claim from one status to
// another. Ownership conditions are not evaluated; see AuthorizeActor.
func Authorize(role security.Role, from, to Status) bool {
	_, ok := transitionTable[transitionKey{role: role, from: from, to: to}]
	return ok
}

// AuthorizeActor checks a concrete transition request against the table,
// including the own-claim restriction on Policyholder rows.
func AuthorizeActor(actor User, claim *Claim, to Status) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, string(to))
	}

	g, ok := transitionTable[transitionKey{role: actor.Role, from: claim.Status, to: to}]
	if !ok {
		return fmt.Errorf("%w: %s may not move claim %s from %s to %s",
			ErrTransitionDenied, actor.Role.DisplayName(), claim.ID, claim.Status.Label(), to.Label())
	}
	if g.ownerOnly && !claim.IsOwnedBy(actor.ID) {
		return fmt.Errorf("%w: claim %s does not belong to %s",
			ErrTransitionDenied, claim.ID, actor.ID)
	}
	return nil
}

// AllowedTransitions lists the statuses the actor may request for the claim now.
func AllowedTransitions(actor User, claim *Claim) []Status {
	result := make([]Status, 0)
	for _, to := range AllStatuses() {
		if AuthorizeActor(actor, claim, to) == nil {
			result = append(result, to)
		}
	}
	return result
}

// ========================================================================
// Field Edit and Creation Rules
// ========================================================================

// CanEditFields reports whether the actor may edit a claim's fields (not
// its status). Claims officers and admins always may; the owning
// policyholder only while the claim is still a draft.
func CanEditFields(actor User, claim *Claim) bool {
	if security.CanPerform(actor.Role, security.PermClaimEditAny) {
		return true
	}
	return security.CanPerform(actor.Role, security.PermClaimEditOwn) &&
		claim.IsOwnedBy(actor.ID) &&
		claim.Status == StatusPendingSubmission
}

// CanCreateFor reports whether the actor may create a claim owned by holder.
func CanCreateFor(actor User, holder User) bool {
	if holder.Role != security.RolePolicyholder {
		return false
	}
	if security.CanPerform(actor.Role, security.PermClaimCreateOther) {
		return true
	}
	return security.CanPerform(actor.Role, security.PermClaimCreate) && actor.ID == holder.ID
}
