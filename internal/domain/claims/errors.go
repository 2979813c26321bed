// Package claims provides the insurance claim workflow domain: statuses,
// the transition authorizer, the claim aggregate, audit entries and the
// read-only view filter.
package claims

import (
	"errors"
	"sort"
	"strings"
)

// Domain errors for the claim workflow.
var (
	// ErrValidation indicates a missing or invalid mandatory field.
	ErrValidation = errors.New("validation failed")

	// ErrTransitionDenied indicates the role/status combination is not permitted.
	ErrTransitionDenied = errors.New("transition denied")

	// ErrNotFound indicates an unknown claim, policy or user id.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the operation lost a race to a concurrent mutation.
	// Callers may retry against the fresh claim state.
	ErrConflict = errors.New("conflict: claim was modified concurrently")

	// ErrUnknownStatus indicates a status token outside the fixed set.
	ErrUnknownStatus = errors.New("unknown status")
)

// FieldErrors collects per-field validation failures. It matches
// ErrValidation with errors.Is.
type FieldErrors map[string]string

// Error lists the failing fields in a stable order.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrValidation.
func (fe FieldErrors) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns the names of the failing fields, sorted.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// orNil returns nil when no field failed.
func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}
