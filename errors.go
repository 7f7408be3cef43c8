package courier

import "errors"

// Sentinel errors returned by Relay operations.
var (
	// ErrInvalidConfig is returned by New when the configuration is unusable.
	ErrInvalidConfig = errors.New("courier: invalid config")

	// ErrSubscriptionNotFound is returned when a subscription cannot be found.
	ErrSubscriptionNotFound = errors.New("courier: subscription not found")

	// ErrInvalidEvent is returned when an event is nil, has an unknown type,
	// or fails payload validation.
	ErrInvalidEvent = errors.New("courier: invalid event")

	// ErrStopped is returned when work is submitted to a stopped relay.
	ErrStopped = errors.New("courier: relay stopped")
)
