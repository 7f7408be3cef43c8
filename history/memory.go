package history

import (
	"context"
	"sync"

	"github.com/xraph/courier/delivery"
)

// compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is a bounded, in-process Store.
type MemoryStore struct {
	mu         sync.RWMutex
	records    []*delivery.Record
	maxEntries int
	closed     bool
}

// NewMemoryStore creates a store retaining at most maxEntries records.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{maxEntries: maxEntries}
}

// MaxEntries returns the retention limit.
func (s *MemoryStore) MaxEntries() int { return s.maxEntries }

// Append stores a copy of rec and drops the oldest records over the limit.
func (s *MemoryStore) Append(_ context.Context, rec *delivery.Record) error {
	cp := *rec

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.records = append(s.records, &cp)
	// Evicted records linger until the slice doubles, then the retained tail
	// is compacted into a fresh backing array in one copy.
	if len(s.records) >= 2*s.maxEntries {
		kept := make([]*delivery.Record, s.maxEntries, 2*s.maxEntries)
		copy(kept, s.records[len(s.records)-s.maxEntries:])
		s.records = kept
	}
	return nil
}

// retained returns the newest maxEntries records. Callers hold s.mu.
func (s *MemoryStore) retained() []*delivery.Record {
	if over := len(s.records) - s.maxEntries; over > 0 {
		return s.records[over:]
	}
	return s.records
}

// Query returns copies of the matching records, oldest first.
func (s *MemoryStore) Query(_ context.Context, f Filter) ([]*delivery.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	matched := f.apply(s.retained())
	out := make([]*delivery.Record, len(matched))
	for i, r := range matched {
		cp := *r
		out[i] = &cp
	}
	return out, nil
}

// Clear drops every record.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.records = nil
	return nil
}

// Len returns the number of retained records.
func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}
	return len(s.retained()), nil
}

// Close marks the store as closed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.records = nil
	return nil
}
