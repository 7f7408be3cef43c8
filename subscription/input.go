package subscription

import "github.com/xraph/courier/event"

// Input is the registration payload for a subscription.
type Input struct {
	// URL is the webhook delivery URL. Required.
	URL string `json:"url"`

	// Description is free text for operators.
	Description string `json:"description,omitempty"`

	// EventTypes restricts deliveries to these types. Empty means every type.
	EventTypes []event.Type `json:"events,omitempty"`

	// Addresses restricts deliveries to events touching one of these
	// addresses. Comparison is case-insensitive.
	Addresses []string `json:"addresses,omitempty"`

	// DisputeIDs restricts deliveries to these disputes. Values may be any
	// integer-like form accepted by event.IntegerString.
	DisputeIDs []any `json:"dispute_ids,omitempty"`

	// Secret signs every delivery when set.
	Secret string `json:"secret,omitempty"`

	// Metadata holds user-defined key-value pairs.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ValidationError indicates invalid input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "subscription validation: " + e.Field + ": " + e.Message
}
