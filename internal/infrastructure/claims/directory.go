package claims

import (
	"fmt"
	"sort"
	"sync"

	domainClaims "github.com/claimflow/claimflow-go/internal/domain/claims"
)

// UserDirectory is an in-memory identity source.
type UserDirectory struct {
	mu    sync.RWMutex
	users map[string]domainClaims.User
}

// NewUserDirectory creates a directory holding the given users.
func NewUserDirectory(users ...domainClaims.User) *UserDirectory {
	d := &UserDirectory{users: make(map[string]domainClaims.User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

// Add registers a user. Users are immutable once created.
func (d *UserDirectory) Add(user domainClaims.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.users[user.ID]; exists {
		return fmt.Errorf("user already exists: %s", user.ID)
	}
	if !user.Role.IsValid() {
		return fmt.Errorf("user %s has invalid role %q", user.ID, user.Role)
	}
	d.users[user.ID] = user
	return nil
}

// User looks up a user by id.
func (d *UserDirectory) User(id string) (domainClaims.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return domainClaims.User{}, fmt.Errorf("%w: user %s", domainClaims.ErrNotFound, id)
	}
	return u, nil
}

// Users returns every user ordered by id.
func (d *UserDirectory) Users() []domainClaims.User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]domainClaims.User, 0, len(d.users))
	for _, u := range d.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// PolicyDirectory is an in-memory policy source.
type PolicyDirectory struct {
	mu       sync.RWMutex
	policies map[string]domainClaims.Policy
}

// NewPolicyDirectory creates a directory holding the given policies.
func NewPolicyDirectory(policies ...domainClaims.Policy) *PolicyDirectory {
	d := &PolicyDirectory{policies: make(map[string]domainClaims.Policy, len(policies))}
	for _, p := range policies {
		d.policies[p.ID] = p
	}
	return d
}

// Add registers a policy.
func (d *PolicyDirectory) Add(policy domainClaims.Policy) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.policies[policy.ID]; exists {
		return fmt.Errorf("policy already exists: %s", policy.ID)
	}
	d.policies[policy.ID] = policy
	return nil
}

// Policy looks up a policy by id.
func (d *PolicyDirectory) Policy(id string) (domainClaims.Policy, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.policies[id]
	if !ok {
		return domainClaims.Policy{}, fmt.Errorf("%w: policy %s", domainClaims.ErrNotFound, id)
	}
	return p, nil
}

// Policies returns every policy ordered by id.
func (d *PolicyDirectory) Policies() []domainClaims.Policy {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]domainClaims.Policy, 0, len(d.policies))
	for _, p := range d.policies {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
