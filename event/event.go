// Package event defines the domain events relayed to subscribers.
package event

// Type is the dot-separated event type tag.
type Type string

// The closed set of event types produced upstream.
const (
	TypeDisputeRaised   Type = "dispute.raised"
	TypeDisputeResolved Type = "dispute.resolved"
	TypeDisputeAppealed Type = "dispute.appealed"
	TypeDisputeVoted    Type = "dispute.voted"
	TypeEscrowCreated   Type = "escrow.created"
	TypeEscrowReleased  Type = "escrow.released"
)

// Types lists every known event type in a stable order.
func Types() []Type {
	return []Type{
		TypeDisputeRaised,
		TypeDisputeResolved,
		TypeDisputeAppealed,
		TypeDisputeVoted,
		TypeEscrowCreated,
		TypeEscrowReleased,
	}
}

// Known reports whether t is one of the enumerated event types.
func (t Type) Known() bool {
	for _, k := range Types() {
		if k == t {
			return true
		}
	}
	return false
}

func (t Type) String() string { return string(t) }

// Payload field names the relay understands. Any subset may be present
// depending on the event type.
const (
	FieldClaimant   = "claimant"
	FieldRespondent = "respondent"
	FieldPayer      = "payer"
	FieldPayee      = "payee"
	FieldVoter      = "voter"
	FieldDisputeID  = "disputeId"
)

// AddressFields are the payload keys that may hold an account address.
var AddressFields = []string{
	FieldClaimant,
	FieldRespondent,
	FieldPayer,
	FieldPayee,
	FieldVoter,
}

// Event is an immutable record of a domain occurrence.
type Event struct {
	// Type is the event type tag.
	Type Type `json:"type"`

	// ID is the producer-assigned unique event identifier.
	ID string `json:"event_id"`

	// Timestamp is the unix time (seconds) at which the event occurred.
	Timestamp int64 `json:"timestamp"`

	// Data is the type-specific payload. Values may be strings, Go integers
	// of any width, *big.Int, or nested maps and slices of those.
	Data map[string]any `json:"data"`
}
