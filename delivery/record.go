package delivery

import (
	"time"

	"github.com/xraph/courier/event"
	"github.com/xraph/courier/id"
)

// Record is the outcome of one complete delivery (every attempt included)
// of one event to one subscription. Records are never mutated once stored.
type Record struct {
	// ID is the unique TypeID for this delivery.
	ID id.ID `json:"id"`

	// EventID references the delivered event.
	EventID string `json:"event_id"`

	// EventType is the type of the delivered event.
	EventType event.Type `json:"event_type"`

	// SubscriptionID references the target subscription.
	SubscriptionID id.ID `json:"subscription_id"`

	// URL is the address the delivery was posted to.
	URL string `json:"url"`

	// StatusCode is the last HTTP status received, 0 if no attempt got a response.
	StatusCode int `json:"status_code,omitempty"`

	// Success reports whether an attempt received a 2xx response.
	Success bool `json:"success"`

	// Error is the error message from the last failed attempt.
	Error string `json:"error,omitempty"`

	// Attempts is the number of attempts made.
	Attempts int `json:"attempts"`

	// LatencyMs is the latency of the last attempt.
	LatencyMs int `json:"latency_ms"`

	// CompletedAt is when the last attempt finished.
	CompletedAt time.Time `json:"completed_at"`
}

// Status returns "delivered" or "failed".
func (r *Record) Status() string {
	if r.Success {
		return "delivered"
	}
	return "failed"
}
