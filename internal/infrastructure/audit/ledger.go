// Package audit provides the append-only audit ledger and the forwarding of
// its entries to external sinks.
package audit

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/claimflow/claimflow-go/internal/domain/claims"
)

// Ledger errors.
var (
	ErrLedgerClosed = errors.New("audit ledger closed")
	ErrSinkClosed   = errors.New("audit sink closed")
)

// Ledger is the authoritative, append-only record of accepted mutations.
// Entries are never modified or removed once appended.
type Ledger struct {
	mu       sync.RWMutex
	entries  []claims.AuditEntry
	byClaim  map[string][]int
	versions map[string]int
	sequence int64
	closed   bool
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		entries:  make([]claims.AuditEntry, 0),
		byClaim:  make(map[string][]int),
		versions: make(map[string]int),
	}
}

// Append stores an entry and returns it with its sequence number assigned.
// Entries for one claim must arrive in increasing claim version.
func (l *Ledger) Append(entry claims.AuditEntry) (claims.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return claims.AuditEntry{}, ErrLedgerClosed
	}
	if entry.ClaimID == "" {
		return claims.AuditEntry{}, fmt.Errorf("%w: audit entry has no claim", claims.ErrValidation)
	}
	if last := l.versions[entry.ClaimID]; entry.ClaimVersion <= last {
		return claims.AuditEntry{}, fmt.Errorf("%w: audit entry for %s at version %d, ledger already at %d",
			claims.ErrConflict, entry.ClaimID, entry.ClaimVersion, last)
	}

	l.sequence++
	entry.Sequence = l.sequence
	l.entries = append(l.entries, entry)
	l.byClaim[entry.ClaimID] = append(l.byClaim[entry.ClaimID], len(l.entries)-1)
	l.versions[entry.ClaimID] = entry.ClaimVersion
	return entry, nil
}

// EntriesFor returns the entries of one claim, newest first.
func (l *Ledger) EntriesFor(claimID string) []claims.AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := l.byClaim[claimID]
	result := make([]claims.AuditEntry, 0, len(idx))
	for _, i := range idx {
		result = append(result, l.entries[i])
	}
	sortNewestFirst(result)
	return result
}

// Recent returns up to n entries accepted by keep, newest first. A nil keep
// accepts everything; n <= 0 means no limit.
func (l *Ledger) Recent(n int, keep func(claims.AuditEntry) bool) []claims.AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]claims.AuditEntry, 0)
	for _, e := range l.entries {
		if keep == nil || keep(e) {
			result = append(result, e)
		}
	}
	sortNewestFirst(result)
	if n > 0 && len(result) > n {
		result = result[:n]
	}
	return result
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Close stops the ledger from accepting entries. Reads keep working.
func (l *Ledger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

// sortNewestFirst orders by timestamp descending, ties by sequence descending.
func sortNewestFirst(entries []claims.AuditEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.After(entries[j].Timestamp)
		}
		return entries[i].Sequence > entries[j].Sequence
	})
}
