// Package claims provides in-memory infrastructure for the claim workflow:
// the versioned claim repository and the identity and policy directories.
package claims

import (
	"fmt"
	"sort"
	"sync"

	domainClaims "github.com/claimflow/claimflow-go/internal/domain/claims"
)

// ClaimRepository defines the interface for claim persistence.
type ClaimRepository interface {
	// Insert stores a new claim. The id must not exist.
	Insert(claim *domainClaims.Claim) error
	// CompareAndSwap replaces the stored claim if its version still equals
	// expectedVersion, and fails with ErrConflict otherwise.
	CompareAndSwap(claim *domainClaims.Claim, expectedVersion int) error
	// Remove deletes a claim. It exists to undo an Insert whose commit failed.
	Remove(id string) error
	FindByID(id string) (*domainClaims.Claim, error)
	FindAll() ([]*domainClaims.Claim, error)
	Count() int
}

// InMemoryClaimRepository provides an in-memory claim repository. It hands
// out and stores copies, so callers can never mutate stored state in place.
type InMemoryClaimRepository struct {
	mu     sync.RWMutex
	claims map[string]*domainClaims.Claim
}

// NewInMemoryClaimRepository creates a new in-memory claim repository.
func NewInMemoryClaimRepository() *InMemoryClaimRepository {
	return &InMemoryClaimRepository{
		claims: make(map[string]*domainClaims.Claim),
	}
}

// Insert stores a new claim.
func (r *InMemoryClaimRepository) Insert(claim *domainClaims.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.claims[claim.ID]; exists {
		return fmt.Errorf("%w: claim %s already exists", domainClaims.ErrConflict, claim.ID)
	}
	r.claims[claim.ID] = claim.Clone()
	return nil
}

// CompareAndSwap replaces a claim if nobody else changed it first.
func (r *InMemoryClaimRepository) CompareAndSwap(claim *domainClaims.Claim, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.claims[claim.ID]
	if !exists {
		return fmt.Errorf("%w: claim %s", domainClaims.ErrNotFound, claim.ID)
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("%w: claim %s is at version %d, expected %d",
			domainClaims.ErrConflict, claim.ID, current.Version, expectedVersion)
	}
	r.claims[claim.ID] = claim.Clone()
	return nil
}

// Remove deletes a claim.
func (r *InMemoryClaimRepository) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.claims[id]; !exists {
		return fmt.Errorf("%w: claim %s", domainClaims.ErrNotFound, id)
	}
	delete(r.claims, id)
	return nil
}

// FindByID finds a claim by ID.
func (r *InMemoryClaimRepository) FindByID(id string) (*domainClaims.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	claim, exists := r.claims[id]
	if !exists {
		return nil, fmt.Errorf("%w: claim %s", domainClaims.ErrNotFound, id)
	}
	return claim.Clone(), nil
}

// FindAll returns every claim ordered by id.
func (r *InMemoryClaimRepository) FindAll() ([]*domainClaims.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domainClaims.Claim, 0, len(r.claims))
	for _, claim := range r.claims {
		result = append(result, claim.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Count returns the total number of claims.
func (r *InMemoryClaimRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.claims)
}
