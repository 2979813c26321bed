// Package shared provides shared types used across all modules in claimflow-go.
package shared

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ============================================================================
// Clock
// ============================================================================

// Clock provides the current time to the core.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system clock. Readings keep their monotonic
// component, so they order correctly even if the wall clock steps back;
// sinks convert to UTC when they store a timestamp.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a settable clock. Each call to Now advances it by Step.
type ManualClock struct {
	mu      sync.Mutex
	current time.Time
	Step    time.Duration
}

// NewManualClock creates a manual clock starting at start.
func NewManualClock(start time.Time, step time.Duration) *ManualClock {
	return &ManualClock{current: start, Step: step}
}

// Now returns the current time and advances the clock by Step.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.current
	c.current = c.current.Add(c.Step)
	return now
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// ============================================================================
// Identifiers
// ============================================================================

const (
	ClaimIDPrefix = "CLM-"
	AuditIDPrefix = "aud-"
)

// NewClaimID returns a new claim id. ULIDs are monotonic within the process,
// so ids are never reused and sort by creation.
func NewClaimID() string {
	return ClaimIDPrefix + ulid.Make().String()
}

// NewAuditID returns a new audit entry id.
func NewAuditID() string {
	return AuditIDPrefix + uuid.New().String()
}
