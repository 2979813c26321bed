package claims

import (
	"fmt"
	"strings"
	"time"
)

// Claim is a policyholder's request for compensation under a policy.
type Claim struct {
	ID             string     `json:"id"`
	PolicyID       string     `json:"policyId"`
	HolderID       string     `json:"holderId"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         Status     `json:"status"`
	AmountClaimed  float64    `json:"amountClaimed"`
	AmountSettled  *float64   `json:"amountSettled,omitempty"`
	SubmissionDate time.Time  `json:"submissionDate"`
	LastUpdate     time.Time  `json:"lastUpdate"`
	Documents      []Document `json:"documents"`
	Version        int        `json:"version"`
}

// ClaimFields holds the editable, mandatory fields of a claim.
type ClaimFields struct {
	PolicyID      string  `json:"policyId"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	AmountClaimed float64 `json:"amountClaimed"`
}

// Validate checks the mandatory fields.
func (f ClaimFields) Validate() error {
	errs := make(FieldErrors)
	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "is mandatory"
	}
	if strings.TrimSpace(f.Description) == "" {
		errs["description"] = "is mandatory"
	}
	if strings.TrimSpace(f.PolicyID) == "" {
		errs["policyId"] = "is mandatory"
	}
	if !(f.AmountClaimed > 0) {
		errs["amountClaimed"] = "must be greater than 0"
	}
	return errs.orNil()
}

// FieldsPatch is a partial field update; nil leaves a field unchanged.
type FieldsPatch struct {
	PolicyID      *string  `json:"policyId,omitempty"`
	Title         *string  `json:"title,omitempty"`
	Description   *string  `json:"description,omitempty"`
	AmountClaimed *float64 `json:"amountClaimed,omitempty"`
}

// IsEmpty returns true if the patch changes nothing.
func (p FieldsPatch) IsEmpty() bool {
	return p.PolicyID == nil && p.Title == nil && p.Description == nil && p.AmountClaimed == nil
}

// NewClaim creates a claim in the given initial status.
func NewClaim(id, holderID string, fields ClaimFields, status Status, now time.Time) *Claim {
	return &Claim{
		ID:             id,
		PolicyID:       strings.TrimSpace(fields.PolicyID),
		HolderID:       holderID,
		Title:          strings.TrimSpace(fields.Title),
		Description:    strings.TrimSpace(fields.Description),
		Status:         status,
		AmountClaimed:  fields.AmountClaimed,
		SubmissionDate: now,
		LastUpdate:     now,
		Documents:      make([]Document, 0),
		Version:        1,
	}
}

// Clone returns a deep copy of the claim.
func (c *Claim) Clone() *Claim {
	if c == nil {
		return nil
	}
	clone := *c
	if c.AmountSettled != nil {
		amount := *c.AmountSettled
		clone.AmountSettled = &amount
	}
	clone.Documents = make([]Document, len(c.Documents))
	copy(clone.Documents, c.Documents)
	return &clone
}

// Fields returns the editable fields of the claim.
func (c *Claim) Fields() ClaimFields {
	return ClaimFields{
		PolicyID:      c.PolicyID,
		Title:         c.Title,
		Description:   c.Description,
		AmountClaimed: c.AmountClaimed,
	}
}

// IsOwnedBy returns true if the claim belongs to the given holder.
func (c *Claim) IsOwnedBy(userID string) bool {
	return c.HolderID == userID
}

// touch records an accepted mutation.
func (c *Claim) touch(now time.Time) {
	c.LastUpdate = now
	c.Version++
}

// ApplyStatus moves the claim to a new status. Entering Settled records
// the settled amount: the override when given, otherwise AmountClaimed.
// Authorization happens before this is called.
func (c *Claim) ApplyStatus(to Status, settledOverride *float64, now time.Time) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, string(to))
	}
	if settledOverride != nil && to != StatusSettled {
		return FieldErrors{"amountSettled": "may only be set when settling"}
	}

	var settled *float64
	if to == StatusSettled {
		amount := c.AmountClaimed
		if settledOverride != nil {
			if !(*settledOverride > 0) || *settledOverride > c.AmountClaimed {
				return FieldErrors{"amountSettled": "must be greater than 0 and at most the amount claimed"}
			}
			amount = *settledOverride
		}
		settled = &amount
	}

	c.Status = to
	c.AmountSettled = settled
	c.touch(now)
	return nil
}

// ApplyFields applies a patch and re-validates the mandatory fields.
// A settled claim's amount is fixed by the settlement.
func (c *Claim) ApplyFields(patch FieldsPatch, now time.Time) error {
	fields := c.Fields()
	if patch.PolicyID != nil {
		fields.PolicyID = strings.TrimSpace(*patch.PolicyID)
	}
	if patch.Title != nil {
		fields.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		fields.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.AmountClaimed != nil {
		if c.Status == StatusSettled && *patch.AmountClaimed != c.AmountClaimed {
			return FieldErrors{"amountClaimed": "cannot change after settlement"}
		}
		fields.AmountClaimed = *patch.AmountClaimed
	}
	if err := fields.Validate(); err != nil {
		return err
	}

	c.PolicyID = fields.PolicyID
	c.Title = fields.Title
	c.Description = fields.Description
	c.AmountClaimed = fields.AmountClaimed
	c.touch(now)
	return nil
}

// AppendDocuments appends documents after the existing ones.
func (c *Claim) AppendDocuments(docs []Document, now time.Time) error {
	if len(docs) == 0 {
		return FieldErrors{"documents": "at least one document is required"}
	}
	errs := make(FieldErrors)
	for i, d := range docs {
		if strings.TrimSpace(d.Name) == "" {
			errs[fmt.Sprintf("documents[%d].name", i)] = "is mandatory"
		}
		if strings.TrimSpace(d.Locator) == "" {
			errs[fmt.Sprintf("documents[%d].locator", i)] = "is mandatory"
		}
	}
	if err := errs.orNil(); err != nil {
		return err
	}

	c.Documents = append(c.Documents, docs...)
	c.touch(now)
	return nil
}
