// Package claims provides application services for the claims system.
package claims

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	domainClaims "github.com/claimflow/claimflow-go/internal/domain/claims"
	"github.com/claimflow/claimflow-go/internal/domain/security"
	infraClaims "github.com/claimflow/claimflow-go/internal/infrastructure/claims"
	"github.com/claimflow/claimflow-go/internal/shared"
)

// IdentitySource resolves user ids to users.
type IdentitySource interface {
	User(id string) (domainClaims.User, error)
	Users() []domainClaims.User
}

// PolicySource resolves policy ids to policies.
type PolicySource interface {
	Policy(id string) (domainClaims.Policy, error)
	Policies() []domainClaims.Policy
}

// AuditLedger is the append-only audit record.
type AuditLedger interface {
	Append(entry domainClaims.AuditEntry) (domainClaims.AuditEntry, error)
	EntriesFor(claimID string) []domainClaims.AuditEntry
	Recent(n int, keep func(domainClaims.AuditEntry) bool) []domainClaims.AuditEntry
}

// Publisher receives committed audit entries. Publish must not block.
type Publisher interface {
	Publish(entry domainClaims.AuditEntry)
}

// DocumentStore turns uploaded bytes into a stored document.
type DocumentStore interface {
	Put(ctx context.Context, claimID, name string, body io.Reader) (domainClaims.Document, error)
}

// DocumentLinker is implemented by document stores that can hand out
// download links for their locators.
type DocumentLinker interface {
	Link(ctx context.Context, locator string) (string, error)
}

// CreateRequest describes a new claim.
type CreateRequest struct {
	// HolderID is the policyholder the claim is for. Empty means the actor.
	HolderID string
	Fields   domainClaims.ClaimFields
	// Draft creates the claim in PendingSubmission instead of Submitted.
	Draft bool
}

// TransitionRequest describes a status change.
type TransitionRequest struct {
	To domainClaims.Status
	// SettledAmount overrides the copied amount when To is Settled.
	SettledAmount *float64
	// ExpectedVersion, when non-zero, must equal the claim's current version,
	// otherwise the call fails with ErrConflict. Without it a caller that
	// loses a race may instead see the winner's status and fail with
	// ErrTransitionDenied, or succeed if the new status also permits the
	// move. Callers acting on a claim they displayed should pass the version
	// they read.
	ExpectedVersion int
}

// Upload is one file to store and attach.
type Upload struct {
	Name string
	Body io.Reader
}

// Service implements the claim workflow operations. Every mutation commits
// the claim and its audit entry together, and the ledger order matches the
// order in which mutations were accepted.
type Service struct {
	claimRepo infraClaims.ClaimRepository
	users     IdentitySource
	policies  PolicySource
	ledger    AuditLedger
	publisher Publisher
	documents DocumentStore
	clock     shared.Clock
	claimID   func() string
	auditID   func() string
	logger    *slog.Logger

	// commitMu orders the claim write and the ledger append of one mutation
	// against every other mutation.
	commitMu sync.Mutex
}

// Option configures the Service.
type Option func(*Service)

// WithClock sets the clock.
func WithClock(clock shared.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

// WithPublisher sets where committed entries are forwarded.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithDocumentStore sets the store used by UploadDocuments.
func WithDocumentStore(store DocumentStore) Option {
	return func(s *Service) { s.documents = store }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithIDGenerators overrides claim and audit id generation.
func WithIDGenerators(claimID, auditID func() string) Option {
	return func(s *Service) {
		if claimID != nil {
			s.claimID = claimID
		}
		if auditID != nil {
			s.auditID = auditID
		}
	}
}

// NewService creates a new claim service.
func NewService(
	claimRepo infraClaims.ClaimRepository,
	users IdentitySource,
	policies PolicySource,
	ledger AuditLedger,
	opts ...Option,
) *Service {
	s := &Service{
		claimRepo: claimRepo,
		users:     users,
		policies:  policies,
		ledger:    ledger,
		clock:     shared.SystemClock{},
		claimID:   shared.NewClaimID,
		auditID:   shared.NewAuditID,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ============================================================================
// Mutations
// ============================================================================

// CreateClaim creates a claim for the actor, or for req.HolderID when the
// actor may create claims on behalf of policyholders.
func (s *Service) CreateClaim(actorID string, req CreateRequest) (*domainClaims.Claim, error) {
	actor, err := s.users.User(actorID)
	if err != nil {
		return nil, err
	}

	holderID := req.HolderID
	if holderID == "" {
		holderID = actor.ID
	}
	holder, err := s.users.User(holderID)
	if err != nil {
		return nil, err
	}
	if !domainClaims.CanCreateFor(actor, holder) {
		return nil, fmt.Errorf("%w: %s may not create a claim for %s",
			domainClaims.ErrTransitionDenied, actor.Role.DisplayName(), holder.ID)
	}

	if err := req.Fields.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkPolicy(req.Fields.PolicyID, holder.ID); err != nil {
		return nil, err
	}

	status := domainClaims.StatusSubmitted
	if req.Draft {
		status = domainClaims.StatusPendingSubmission
	}

	s.commitMu.Lock()
	now := s.clock.Now()
	claim := domainClaims.NewClaim(s.claimID(), holder.ID, req.Fields, status, now)
	entry := domainClaims.NewCreationEntry(s.auditID(), actor, claim, now)

	if err := s.claimRepo.Insert(claim); err != nil {
		s.commitMu.Unlock()
		return nil, fmt.Errorf("failed to save claim: %w", err)
	}
	entry, err = s.ledger.Append(entry)
	if err != nil {
		if rbErr := s.claimRepo.Remove(claim.ID); rbErr != nil {
			s.logger.Error("failed to roll back claim", "claim_id", claim.ID, "error", rbErr)
		}
		s.commitMu.Unlock()
		return nil, fmt.Errorf("failed to append audit entry: %w", err)
	}
	s.commitMu.Unlock()

	s.committed(entry)
	return claim.Clone(), nil
}

// TransitionClaim moves a claim to req.To if the actor's role allows it.
func (s *Service) TransitionClaim(actorID, claimID string, req TransitionRequest) (*domainClaims.Claim, error) {
	actor, claim, err := s.load(actorID, claimID, req.ExpectedVersion)
	if err != nil {
		return nil, err
	}
	if err := domainClaims.AuthorizeActor(actor, claim, req.To); err != nil {
		return nil, err
	}

	from := claim.Status
	return s.commit(claim, func(c *domainClaims.Claim, now time.Time) (domainClaims.AuditEntry, error) {
		if err := c.ApplyStatus(req.To, req.SettledAmount, now); err != nil {
			return domainClaims.AuditEntry{}, err
		}
		return domainClaims.NewStatusChangeEntry(s.auditID(), actor, c, from, now), nil
	})
}

// UpdateClaim edits a claim's fields. Status is never changed here.
func (s *Service) UpdateClaim(actorID, claimID string, patch domainClaims.FieldsPatch) (*domainClaims.Claim, error) {
	actor, claim, err := s.load(actorID, claimID, 0)
	if err != nil {
		return nil, err
	}
	if !domainClaims.CanEditFields(actor, claim) {
		return nil, fmt.Errorf("%w: %s may not edit claim %s in status %s",
			domainClaims.ErrTransitionDenied, actor.Role.DisplayName(), claim.ID, claim.Status.Label())
	}
	if patch.IsEmpty() {
		return nil, domainClaims.FieldErrors{"fields": "nothing to update"}
	}
	if patch.PolicyID != nil {
		if err := s.checkPolicy(*patch.PolicyID, claim.HolderID); err != nil {
			return nil, err
		}
	}

	before := claim.Clone()
	return s.commit(claim, func(c *domainClaims.Claim, now time.Time) (domainClaims.AuditEntry, error) {
		if err := c.ApplyFields(patch, now); err != nil {
			return domainClaims.AuditEntry{}, err
		}
		return domainClaims.NewUpdateEntry(s.auditID(), actor, before, c, now), nil
	})
}

// AttachDocuments appends already stored documents to a claim as one batch.
func (s *Service) AttachDocuments(actorID, claimID string, docs []domainClaims.Document) (*domainClaims.Claim, error) {
	actor, claim, err := s.load(actorID, claimID, 0)
	if err != nil {
		return nil, err
	}
	if !domainClaims.CanEditFields(actor, claim) {
		return nil, fmt.Errorf("%w: %s may not attach documents to claim %s",
			domainClaims.ErrTransitionDenied, actor.Role.DisplayName(), claim.ID)
	}

	batch := make([]domainClaims.Document, len(docs))
	copy(batch, docs)
	return s.commit(claim, func(c *domainClaims.Claim, now time.Time) (domainClaims.AuditEntry, error) {
		if err := c.AppendDocuments(batch, now); err != nil {
			return domainClaims.AuditEntry{}, err
		}
		return domainClaims.NewDocumentEntry(s.auditID(), actor, c, batch, now), nil
	})
}

// UploadDocuments stores files through the document store and attaches
// them in one batch. Files already stored stay in the store if the attach
// fails.
func (s *Service) UploadDocuments(ctx context.Context, actorID, claimID string, files []Upload) (*domainClaims.Claim, error) {
	if s.documents == nil {
		return nil, errors.New("no document store configured")
	}
	actor, claim, err := s.load(actorID, claimID, 0)
	if err != nil {
		return nil, err
	}
	if !domainClaims.CanEditFields(actor, claim) {
		return nil, fmt.Errorf("%w: %s may not attach documents to claim %s",
			domainClaims.ErrTransitionDenied, actor.Role.DisplayName(), claim.ID)
	}
	if len(files) == 0 {
		return nil, domainClaims.FieldErrors{"documents": "at least one document is required"}
	}

	docs := make([]domainClaims.Document, 0, len(files))
	for _, f := range files {
		doc, err := s.documents.Put(ctx, claim.ID, f.Name, f.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to store %s: %w", f.Name, err)
		}
		docs = append(docs, doc)
	}
	return s.AttachDocuments(actorID, claimID, docs)
}

// ============================================================================
// Queries
// ============================================================================

// ListVisibleClaims returns the claims the actor may see that match query,
// most recently updated first.
func (s *Service) ListVisibleClaims(actorID, query string) ([]*domainClaims.Claim, error) {
	visible, err := s.visible(actorID)
	if err != nil {
		return nil, err
	}
	result := domainClaims.Search(visible, query)
	domainClaims.SortByLastUpdate(result)
	return result, nil
}

// GetClaim returns a claim by id.
func (s *Service) GetClaim(claimID string) (*domainClaims.Claim, error) {
	return s.claimRepo.FindByID(claimID)
}

// GetAuditTrail returns a claim's audit entries, newest first.
func (s *Service) GetAuditTrail(claimID string) ([]domainClaims.AuditEntry, error) {
	if _, err := s.claimRepo.FindByID(claimID); err != nil {
		return nil, err
	}
	return s.ledger.EntriesFor(claimID), nil
}

// GetDashboardStats counts over the claims visible to the actor.
func (s *Service) GetDashboardStats(actorID string) (domainClaims.DashboardStats, error) {
	visible, err := s.visible(actorID)
	if err != nil {
		return domainClaims.DashboardStats{}, err
	}
	return domainClaims.Dashboard(visible), nil
}

// RecentActivity returns the n most recent entries about claims visible to
// the actor.
func (s *Service) RecentActivity(actorID string, n int) ([]domainClaims.AuditEntry, error) {
	visible, err := s.visible(actorID)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(visible))
	for _, c := range visible {
		ids[c.ID] = struct{}{}
	}
	return s.ledger.Recent(n, func(e domainClaims.AuditEntry) bool {
		_, ok := ids[e.ClaimID]
		return ok
	}), nil
}

// AllowedTransitions lists the statuses the actor may move the claim to now.
func (s *Service) AllowedTransitions(actorID, claimID string) ([]domainClaims.Status, error) {
	actor, claim, err := s.load(actorID, claimID, 0)
	if err != nil {
		return nil, err
	}
	return domainClaims.AllowedTransitions(actor, claim), nil
}

// CanEdit reports whether the actor may edit the claim's fields or attach
// documents to it.
func (s *Service) CanEdit(actorID, claimID string) (bool, error) {
	actor, claim, err := s.load(actorID, claimID, 0)
	if err != nil {
		return false, err
	}
	return domainClaims.CanEditFields(actor, claim), nil
}

// ListUsers returns the user directory.
func (s *Service) ListUsers(actorID string) ([]domainClaims.User, error) {
	if _, err := s.require(actorID, security.PermUserDirectory); err != nil {
		return nil, err
	}
	return s.users.Users(), nil
}

// ListPolicies returns every policy.
func (s *Service) ListPolicies(actorID string) ([]domainClaims.Policy, error) {
	if _, err := s.require(actorID, security.PermPolicyDirectory); err != nil {
		return nil, err
	}
	return s.policies.Policies(), nil
}

// DocumentLink returns a download link for one of the claim's documents.
// Stores that cannot sign links return the locator unchanged.
func (s *Service) DocumentLink(ctx context.Context, actorID, claimID, locator string) (string, error) {
	actor, claim, err := s.load(actorID, claimID, 0)
	if err != nil {
		return "", err
	}
	if !domainClaims.CanSee(actor, claim) {
		return "", fmt.Errorf("%w: %s may not read claim %s",
			domainClaims.ErrTransitionDenied, actor.Role.DisplayName(), claim.ID)
	}

	found := false
	for _, d := range claim.Documents {
		if d.Locator == locator {
			found = true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("%w: document %s on claim %s", domainClaims.ErrNotFound, locator, claim.ID)
	}

	linker, ok := s.documents.(DocumentLinker)
	if !ok {
		return locator, nil
	}
	return linker.Link(ctx, locator)
}

// PoliciesFor returns the policies held by the actor.
func (s *Service) PoliciesFor(actorID string) ([]domainClaims.Policy, error) {
	actor, err := s.users.User(actorID)
	if err != nil {
		return nil, err
	}
	result := make([]domainClaims.Policy, 0)
	for _, p := range s.policies.Policies() {
		if p.HolderID == actor.ID {
			result = append(result, p)
		}
	}
	return result, nil
}

// ============================================================================
// Helpers
// ============================================================================

// load resolves the actor and a working copy of the claim.
func (s *Service) load(actorID, claimID string, expectedVersion int) (domainClaims.User, *domainClaims.Claim, error) {
	actor, err := s.users.User(actorID)
	if err != nil {
		return domainClaims.User{}, nil, err
	}
	claim, err := s.claimRepo.FindByID(claimID)
	if err != nil {
		return domainClaims.User{}, nil, err
	}
	if expectedVersion != 0 && claim.Version != expectedVersion {
		return domainClaims.User{}, nil, fmt.Errorf("%w: claim %s is at version %d, expected %d",
			domainClaims.ErrConflict, claim.ID, claim.Version, expectedVersion)
	}
	return actor, claim, nil
}

// commit applies mutate to the working copy and stores it together with the
// entry mutate returns. It fails with ErrConflict if the claim changed since
// it was loaded.
func (s *Service) commit(
	claim *domainClaims.Claim,
	mutate func(c *domainClaims.Claim, now time.Time) (domainClaims.AuditEntry, error),
) (*domainClaims.Claim, error) {
	s.commitMu.Lock()
	loadedVersion := claim.Version
	before := claim.Clone()

	entry, err := mutate(claim, s.clock.Now())
	if err != nil {
		s.commitMu.Unlock()
		return nil, err
	}
	if err := s.claimRepo.CompareAndSwap(claim, loadedVersion); err != nil {
		s.commitMu.Unlock()
		return nil, err
	}
	entry, err = s.ledger.Append(entry)
	if err != nil {
		if rbErr := s.claimRepo.CompareAndSwap(before, claim.Version); rbErr != nil {
			s.logger.Error("failed to roll back claim", "claim_id", claim.ID, "error", rbErr)
		}
		s.commitMu.Unlock()
		return nil, fmt.Errorf("failed to append audit entry: %w", err)
	}
	s.commitMu.Unlock()

	s.committed(entry)
	return claim.Clone(), nil
}

// committed logs an accepted mutation and forwards its entry.
func (s *Service) committed(entry domainClaims.AuditEntry) {
	s.logger.Debug("claim mutation committed",
		"claim_id", entry.ClaimID,
		"entry_id", entry.ID,
		"kind", string(entry.Kind),
		"actor", entry.ActorID,
		"version", entry.ClaimVersion,
	)
	if s.publisher != nil {
		s.publisher.Publish(entry)
	}
}

// checkPolicy verifies the policy exists and belongs to the holder.
func (s *Service) checkPolicy(policyID, holderID string) error {
	policy, err := s.policies.Policy(policyID)
	if err != nil {
		return err
	}
	if policy.HolderID != holderID {
		return domainClaims.FieldErrors{"policyId": "does not belong to the claim holder"}
	}
	return nil
}

// visible returns the claims the actor may see.
func (s *Service) visible(actorID string) ([]*domainClaims.Claim, error) {
	actor, err := s.users.User(actorID)
	if err != nil {
		return nil, err
	}
	all, err := s.claimRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	return domainClaims.VisibleTo(actor, all), nil
}

// require resolves the actor and checks a permission.
func (s *Service) require(actorID string, perm security.Permission) (domainClaims.User, error) {
	actor, err := s.users.User(actorID)
	if err != nil {
		return domainClaims.User{}, err
	}
	if !security.CanPerform(actor.Role, perm) {
		return domainClaims.User{}, fmt.Errorf("%w: %s lacks %s",
			domainClaims.ErrTransitionDenied, actor.Role.DisplayName(), perm)
	}
	return actor, nil
}
