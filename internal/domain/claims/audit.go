package claims

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/claimflow/claimflow-go/internal/domain/security"
)

// EntryKind classifies an audit entry.
type EntryKind string

const (
	EntryStatusChange   EntryKind = "status_change"
	EntryDocumentUpload EntryKind = "document_upload"
	EntryClaimCreation  EntryKind = "claim_creation"
	EntryClaimUpdate    EntryKind = "claim_update"
)

// AuditEntry is an immutable record of one accepted mutation.
type AuditEntry struct {
	ID        string        `json:"id"`
	ClaimID   string        `json:"entity"`
	Kind      EntryKind     `json:"type"`
	ActorID   string        `json:"actorId"`
	ActorName string        `json:"by"`
	ActorRole security.Role `json:"role"`
	Timestamp time.Time     `json:"timestamp"`
	Detail    string        `json:"details"`
	// Sequence is the ledger position, assigned on append.
	Sequence int64 `json:"sequence"`
	// ClaimVersion is the claim version this entry produced.
	ClaimVersion int `json:"claimVersion"`
	// Override marks status changes performed through the Admin superuser grant.
	Override bool `json:"override,omitempty"`
	// FromStatus and ToStatus are set on status changes.
	FromStatus Status `json:"fromStatus,omitempty"`
	ToStatus   Status `json:"toStatus,omitempty"`
}

// newEntry creates an entry attributed to actor for the claim's current version.
func newEntry(id string, kind EntryKind, actor User, claim *Claim, now time.Time, detail string) AuditEntry {
	return AuditEntry{
		ID:           id,
		ClaimID:      claim.ID,
		Kind:         kind,
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		ActorRole:    actor.Role,
		Timestamp:    now,
		Detail:       detail,
		ClaimVersion: claim.Version,
	}
}

// NewCreationEntry records a claim creation.
func NewCreationEntry(id string, actor User, claim *Claim, now time.Time) AuditEntry {
	detail := "New claim created with status " + claim.Status.Label()
	if actor.ID != claim.HolderID {
		detail += " on behalf of " + claim.HolderID
	}
	return newEntry(id, EntryClaimCreation, actor, claim, now, detail)
}

// NewStatusChangeEntry records a status change. The detail always names
// both the old and the new status label.
func NewStatusChangeEntry(id string, actor User, claim *Claim, from Status, now time.Time) AuditEntry {
	detail := fmt.Sprintf("Status changed from %s to %s", from.Label(), claim.Status.Label())
	if claim.Status == StatusSettled && claim.AmountSettled != nil {
		detail += ", amount settled " + formatAmount(*claim.AmountSettled)
	}
	override := actor.Role == security.RoleAdmin
	if override {
		detail += " (admin override)"
	}

	entry := newEntry(id, EntryStatusChange, actor, claim, now, detail)
	entry.FromStatus = from
	entry.ToStatus = claim.Status
	entry.Override = override
	return entry
}

// NewUpdateEntry records a field edit, naming the changed fields.
func NewUpdateEntry(id string, actor User, before, after *Claim, now time.Time) AuditEntry {
	changed := ChangedFields(before, after)
	detail := "Claim updated"
	if len(changed) > 0 {
		detail += ": " + strings.Join(changed, ", ")
	}
	return newEntry(id, EntryClaimUpdate, actor, after, now, detail)
}

// NewDocumentEntry records one attachment batch.
func NewDocumentEntry(id string, actor User, claim *Claim, docs []Document, now time.Time) AuditEntry {
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	return newEntry(id, EntryDocumentUpload, actor, claim, now, "Uploaded "+strings.Join(names, ", "))
}

// ChangedFields lists the editable fields that differ between two claims.
func ChangedFields(before, after *Claim) []string {
	changed := make([]string, 0, 4)
	if before.Title != after.Title {
		changed = append(changed, "title")
	}
	if before.Description != after.Description {
		changed = append(changed, "description")
	}
	if before.PolicyID != after.PolicyID {
		changed = append(changed, "policyId")
	}
	if before.AmountClaimed != after.AmountClaimed {
		changed = append(changed, "amountClaimed")
	}
	return changed
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
