// Package subscription holds the registry of webhook subscriptions and the
// predicate that decides which subscriptions receive an event.
package subscription

import (
	"maps"
	"slices"

	"github.com/xraph/courier/event"
	"github.com/xraph/courier/id"
	"github.com/xraph/courier/internal/entity"
)

// Subscription is one registered delivery target.
type Subscription struct {
	entity.Entity

	// ID is the unique TypeID assigned at registration.
	ID id.ID `json:"id"`

	// URL is the webhook delivery URL.
	URL string `json:"url"`

	// Description is free text for operators.
	Description string `json:"description,omitempty"`

	// EventTypes is the event-type allow-list. Empty means every type.
	EventTypes []event.Type `json:"event_types"`

	// Addresses is the optional address allow-list, stored lower-cased.
	Addresses []string `json:"addresses,omitempty"`

	// DisputeIDs is the optional dispute-id allow-list in canonical decimal form.
	DisputeIDs []string `json:"dispute_ids,omitempty"`

	// Secret is the HMAC signing secret. Never serialized.
	Secret string `json:"-"`

	// Active reports whether the subscription currently receives deliveries.
	Active bool `json:"active"`

	// Metadata holds user-defined key-value pairs.
	Metadata map[string]string `json:"metadata,omitempty"`

	seq uint64
}

// HasSecret reports whether deliveries to s are signed.
func (s *Subscription) HasSecret() bool {
	return s.Secret != ""
}

// Clone returns a deep copy of s.
func (s *Subscription) Clone() *Subscription {
	c := *s
	c.EventTypes = slices.Clone(s.EventTypes)
	c.Addresses = slices.Clone(s.Addresses)
	c.DisputeIDs = slices.Clone(s.DisputeIDs)
	c.Metadata = maps.Clone(s.Metadata)
	return &c
}
