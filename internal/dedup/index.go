package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"NewsHunter/internal/domain"
)

// ExistsChecker is the slice of the persistence gateway the index needs.
type ExistsChecker interface {
	Exists(ctx context.Context, fingerprint string, sessionDate time.Time) (bool, error)
}

// Index decides whether a candidate record is already known for the run's
// session. It owns no durable state: an in-memory set covers records
// accepted earlier in the same run (gateway writes may not be visible
// yet), and the gateway check covers everything persisted before.
type Index struct {
	store ExistsChecker

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewIndex builds a run-scoped index. Create one per run and discard it.
func NewIndex(store ExistsChecker) *Index {
	return &Index{store: store, seen: make(map[string]struct{})}
}

// IsNew computes the record's fingerprint and checks the in-run set, then
// the gateway. Callers that may race from concurrent adapters should use
// Admit instead, which holds the lock across the check-then-mark sequence.
func (i *Index) IsNew(ctx context.Context, record domain.ArticleRecord) (bool, error) {
	fp := Fingerprint(record)

	i.mu.Lock()
	_, inRun := i.seen[fp]
	i.mu.Unlock()
	if inRun {
		return false, nil
	}

	exists, err := i.store.Exists(ctx, fp, record.SessionDate)
	if err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return !exists, nil
}

// MarkSeen records an accepted fingerprint. Must be called immediately
// after acceptance, before the next candidate is checked.
func (i *Index) MarkSeen(record domain.ArticleRecord) {
	fp := Fingerprint(record)
	i.mu.Lock()
	i.seen[fp] = struct{}{}
	i.mu.Unlock()
}

// Admit runs the check-then-mark sequence as one critical section and
// returns the record with its fingerprint populated when it is new. Two
// adapters discovering the same article concurrently admit exactly one.
func (i *Index) Admit(ctx context.Context, record domain.ArticleRecord) (domain.ArticleRecord, bool, error) {
	fp := Fingerprint(record)

	i.mu.Lock()
	defer i.mu.Unlock()

	if _, inRun := i.seen[fp]; inRun {
		return record, false, nil
	}

	exists, err := i.store.Exists(ctx, fp, record.SessionDate)
	if err != nil {
		return record, false, fmt.Errorf("existence check: %w", err)
	}
	if exists {
		// Cache the hit so the next sighting skips the gateway round trip.
		i.seen[fp] = struct{}{}
		return record, false, nil
	}

	i.seen[fp] = struct{}{}
	record.Fingerprint = fp
	return record, true, nil
}
