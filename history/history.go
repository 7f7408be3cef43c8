// Package history retains completed delivery records for inspection.
//
// Records are kept in insertion order and trimmed FIFO once the store holds
// its configured maximum. Two implementations are provided: an in-process
// MemoryStore and a RedisStore for deployments that share history between
// replicas or want it to survive a restart.
package history

import (
	"context"
	"errors"

	"github.com/xraph/courier/delivery"
	"github.com/xraph/courier/id"
)

// DefaultMaxEntries is the retention used when a store is created with a
// non-positive maximum.
const DefaultMaxEntries = 1000

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("courier: history store closed")

// Store persists delivery records.
type Store interface {
	// Append adds rec, evicting the oldest records beyond the retention limit.
	Append(ctx context.Context, rec *delivery.Record) error

	// Query returns matching records, oldest first.
	Query(ctx context.Context, f Filter) ([]*delivery.Record, error)

	// Clear removes every record.
	Clear(ctx context.Context) error

	// Len returns the number of retained records.
	Len(ctx context.Context) (int, error)

	// Close releases resources held by the store.
	Close() error
}

// Filter selects records from a Store. Zero-valued fields match everything.
type Filter struct {
	SubscriptionID id.ID
	EventID        string
	SuccessOnly    bool

	// Limit, when positive, keeps only the newest Limit matches.
	Limit int
}

// Match reports whether rec passes the filter's predicates. Limit is not
// applied here.
func (f Filter) Match(rec *delivery.Record) bool {
	if !f.SubscriptionID.IsNil() && !rec.SubscriptionID.Equal(f.SubscriptionID) {
		return false
	}
	if f.EventID != "" && rec.EventID != f.EventID {
		return false
	}
	if f.SuccessOnly && !rec.Success {
		return false
	}
	return true
}

// apply filters recs (oldest first) and truncates to the newest Limit.
func (f Filter) apply(recs []*delivery.Record) []*delivery.Record {
	out := make([]*delivery.Record, 0, len(recs))
	for _, r := range recs {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}
