package claims

import (
	"time"

	"github.com/claimflow/claimflow-go/internal/domain/security"
)

// User is an identity owned by the identity-management collaborator.
type User struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Role  security.Role `json:"role"`
}

// Is returns true if the user holds the given role.
func (u User) Is(role security.Role) bool {
	return u.Role == role
}

// Policy is an insurance contract referenced by claims. The core never mutates it.
type Policy struct {
	ID        string    `json:"id"`
	HolderID  string    `json:"holderId"`
	Number    string    `json:"number"`
	Type      string    `json:"type"`
	Premium   float64   `json:"premium"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Document is a stored attachment. The locator is opaque to the core.
type Document struct {
	Name    string `json:"name"`
	Locator string `json:"locator"`
}
