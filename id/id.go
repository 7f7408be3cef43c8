// Package id defines TypeID-based identifiers for Courier entities.
//
// Subscriptions and delivery records carry a prefix-qualified, K-sortable
// identifier in the format "prefix_suffix". Event identifiers are supplied by
// the upstream producer and stay plain strings.
package id

import (
	"errors"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix names the entity kind encoded in an ID.
type Prefix string

const (
	PrefixSubscription Prefix = "sub"
	PrefixDelivery     Prefix = "del"
)

// ErrEmpty is returned when parsing an empty string.
var ErrEmpty = errors.New("id: empty string")

// ID wraps a TypeID. The zero value is Nil and encodes as "".
//
//nolint:recvcheck // UnmarshalText needs a pointer receiver.
type ID struct {
	tid typeid.TypeID
	ok  bool
}

// Nil is the zero ID.
var Nil ID

// New mints an ID with the given prefix. Prefixes are compile-time
// constants, so an invalid one panics.
func New(p Prefix) ID {
	tid, err := typeid.Generate(string(p))
	if err != nil {
		panic(fmt.Sprintf("id: generate %q: %v", p, err))
	}
	return ID{tid: tid, ok: true}
}

// NewSubscriptionID mints a subscription ID.
func NewSubscriptionID() ID { return New(PrefixSubscription) }

// NewDeliveryID mints a delivery record ID.
func NewDeliveryID() ID { return New(PrefixDelivery) }

// Parse accepts any valid TypeID string.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, ErrEmpty
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: %q: %w", s, err)
	}
	return ID{tid: tid, ok: true}, nil
}

// ParseWithPrefix parses s and requires prefix want.
func ParseWithPrefix(s string, want Prefix) (ID, error) {
	v, err := Parse(s)
	if err != nil {
		return Nil, err
	}
	if got := v.Prefix(); got != want {
		return Nil, fmt.Errorf("id: %q: prefix %q, want %q", s, got, want)
	}
	return v, nil
}

// ParseSubscriptionID parses a "sub_" ID.
func ParseSubscriptionID(s string) (ID, error) { return ParseWithPrefix(s, PrefixSubscription) }

// ParseDeliveryID parses a "del_" ID.
func ParseDeliveryID(s string) (ID, error) { return ParseWithPrefix(s, PrefixDelivery) }

func (i ID) String() string {
	if !i.ok {
		return ""
	}
	return i.tid.String()
}

// Prefix returns the entity prefix, or "" for Nil.
func (i ID) Prefix() Prefix {
	if !i.ok {
		return ""
	}
	return Prefix(i.tid.Prefix())
}

// IsNil reports whether i is the zero ID.
func (i ID) IsNil() bool { return !i.ok }

// Equal reports whether i and other denote the same ID.
func (i ID) Equal(other ID) bool {
	return i.String() == other.String()
}

func (i ID) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText decodes "" as Nil.
func (i *ID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*i = Nil
		return nil
	}
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*i = v
	return nil
}
