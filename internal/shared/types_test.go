package shared

import (
	"strings"
	"testing"
	"time"
)

func TestManualClockAdvancesByStep(t *testing.T) {
	start := time.Date(2023, 4, 1, 9, 0, 0, 0, time.UTC)
	clock := NewManualClock(start, time.Minute)

	first := clock.Now()
	second := clock.Now()

	if !first.Equal(start) {
		t.Fatalf("first Now() = %v, expected %v", first, start)
	}
	if second.Sub(first) != time.Minute {
		t.Fatalf("clock advanced by %v, expected 1m", second.Sub(first))
	}

	clock.Set(start)
	if got := clock.Now(); !got.Equal(start) {
		t.Fatalf("Now() after Set = %v, expected %v", got, start)
	}
}

func TestNewClaimIDIsUniqueAndOrdered(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 500; i++ {
		id := NewClaimID()
		if !strings.HasPrefix(id, ClaimIDPrefix) {
			t.Fatalf("claim id %q missing prefix", id)
		}
		if seen[id] {
			t.Fatalf("claim id %q reused", id)
		}
		if prev != "" && id <= prev {
			t.Fatalf("claim id %q does not sort after %q", id, prev)
		}
		seen[id] = true
		prev = id
	}
}

func TestNewAuditID(t *testing.T) {
	a, b := NewAuditID(), NewAuditID()
	if !strings.HasPrefix(a, AuditIDPrefix) {
		t.Fatalf("audit id %q missing prefix", a)
	}
	if a == b {
		t.Fatalf("audit ids collided: %q", a)
	}
}

func TestSystemClockKeepsMonotonicReading(t *testing.T) {
	first := SystemClock{}.Now()
	second := SystemClock{}.Now()

	if !strings.Contains(first.String(), "m=") {
		t.Fatalf("Now() = %v, expected a monotonic clock reading", first)
	}
	if second.Before(first) {
		t.Fatalf("second reading %v is before first %v", second, first)
	}
}
