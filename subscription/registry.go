package subscription

import (
	"cmp"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/xraph/courier/event"
	"github.com/xraph/courier/id"
	"github.com/xraph/courier/internal/entity"
)

// Registry is the in-memory store of subscriptions keyed by ID.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	seq    uint64
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		subs:   make(map[string]*Subscription),
		logger: logger,
	}
}

// Register validates in and stores a new active subscription.
// Only a non-empty URL is required; the scheme is not checked.
func (r *Registry) Register(in Input) (*Subscription, error) {
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return nil, &ValidationError{Field: "url", Message: "required"}
	}

	disputeIDs := make([]string, 0, len(in.DisputeIDs))
	for i, raw := range in.DisputeIDs {
		s, ok := event.IntegerString(raw)
		if !ok {
			return nil, &ValidationError{
				Field:   "dispute_ids",
				Message: fmt.Sprintf("entry %d is not an integer", i),
			}
		}
		disputeIDs = append(disputeIDs, s)
	}

	addresses := make([]string, 0, len(in.Addresses))
	for _, a := range in.Addresses {
		addresses = append(addresses, strings.ToLower(a))
	}

	sub := &Subscription{
		Entity:      entity.New(),
		ID:          id.NewSubscriptionID(),
		URL:         url,
		Description: in.Description,
		EventTypes:  slices.Clone(in.EventTypes),
		Addresses:   addresses,
		DisputeIDs:  disputeIDs,
		Secret:      in.Secret,
		Active:      true,
		Metadata:    maps.Clone(in.Metadata),
	}

	r.mu.Lock()
	r.seq++
	sub.seq = r.seq
	r.subs[sub.ID.String()] = sub
	r.mu.Unlock()

	r.logger.Debug("subscription registered",
		"subscription_id", sub.ID,
		"url", sub.URL,
		"event_types", len(sub.EventTypes),
		"signed", sub.HasSecret(),
	)

	return sub.Clone(), nil
}

// Unregister removes the subscription and reports whether it existed.
func (r *Registry) Unregister(subID id.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := subID.String()
	if _, ok := r.subs[key]; !ok {
		return false
	}
	delete(r.subs, key)
	return true
}

// Pause stops deliveries to the subscription. Returns false if unknown.
func (r *Registry) Pause(subID id.ID) bool {
	return r.setActive(subID, false)
}

// Resume restarts deliveries to the subscription. Returns false if unknown.
func (r *Registry) Resume(subID id.ID) bool {
	return r.setActive(subID, true)
}

func (r *Registry) setActive(subID id.ID, active bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[subID.String()]
	if !ok {
		return false
	}
	sub.Active = active
	sub.Touch()
	return true
}

// Get returns a copy of the subscription.
func (r *Registry) Get(subID id.ID) (*Subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.subs[subID.String()]
	if !ok {
		return nil, false
	}
	return sub.Clone(), true
}

// List returns a snapshot of every subscription in registration order.
func (r *Registry) List() []*Subscription {
	r.mu.RLock()
	out := make([]*Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		out = append(out, sub.Clone())
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Subscription) int {
		return cmp.Compare(a.seq, b.seq)
	})
	return out
}

// Len returns the number of registered subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
