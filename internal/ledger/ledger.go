// Package ledger holds the ordered in-memory transaction collection and the
// optimistic-entry lifecycle: a placeholder is inserted at the head before the
// scoring service answers, then replaced in place by the authoritative record
// or rolled back on failure. A periodic full refresh may evict the placeholder
// first; reconciliation falls back to a fresh head insert in that case so the
// authoritative record is never lost.
package ledger

import (
	"strings"
	"sync"

	"github.com/Azaziop/systeme-detect-fraude/internal/core"
)

// Filter narrows a projection. Zero value matches everything.
type Filter struct {
	// Status is matched exactly, case-insensitively, when non-empty.
	Status string
	// Merchant is matched as a case-insensitive substring when non-empty.
	Merchant string
}

// Matches reports whether a record passes the filter.
func (f Filter) Matches(t core.Transaction) bool {
	if f.Status != "" && !strings.EqualFold(string(t.Status), f.Status) {
		return false
	}
	if f.Merchant != "" && !strings.Contains(strings.ToLower(t.Merchant), strings.ToLower(f.Merchant)) {
		return false
	}
	return true
}

// Ledger is the only mutable shared collection in the client. All writes go
// through its own operations; reads hand out copies.
type Ledger struct {
	mu      sync.Mutex
	records []core.Transaction
}

func New() *Ledger {
	return &Ledger{}
}

// InsertProvisional puts the placeholder at the head of the ledger. The
// caller projects immediately afterwards, before the network call resolves.
func (l *Ledger) InsertProvisional(t core.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append([]core.Transaction{t}, l.records...)
}

// ReconcileSuccess swaps the placeholder identified by tempID for the
// authoritative record, preserving its position. When a concurrent full
// refresh already evicted the placeholder the authoritative record is
// inserted at the head instead.
func (l *Ledger) ReconcileSuccess(tempID string, authoritative core.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.records {
		if l.records[i].ID == tempID {
			l.records[i] = authoritative
			return
		}
	}
	l.records = append([]core.Transaction{authoritative}, l.records...)
}

// ReconcileFailure rolls back a failed submission by dropping its placeholder.
// Matching is by the reserved provisional prefix so a refresh that already
// removed it is a no-op.
func (l *Ledger) ReconcileFailure(tempID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.records[:0]
	for _, r := range l.records {
		if r.ID == tempID && core.IsProvisional(r.ID) {
			continue
		}
		kept = append(kept, r)
	}
	l.records = kept
}

// ReplaceAll atomically swaps the ledger contents for a freshly fetched
// sequence, most-recent-first as delivered by the backend.
func (l *Ledger) ReplaceAll(records []core.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append([]core.Transaction(nil), records...)
}

// Clear empties the ledger. Called on logout together with the session
// teardown so no stale refresh can repopulate dead data.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
}

// Snapshot returns a copy of the current contents in display order.
func (l *Ledger) Snapshot() []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Transaction(nil), l.records...)
}

// Project returns a read-only filtered copy of the current snapshot. The
// underlying order is never mutated; repeated calls with different filters
// observe the same snapshot.
func (l *Ledger) Project(f Filter) []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.Transaction, 0, len(l.records))
	for _, r := range l.records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of records currently held.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
