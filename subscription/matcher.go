package subscription

import (
	"slices"
	"strings"

	"github.com/xraph/courier/event"
)

// Matches reports whether evt should be delivered to sub.
//
// Filters are applied in order and each non-empty one must pass:
//
//	inactive subscription     → reject
//	event-type allow-list     → type must be listed
//	address allow-list        → one recognized address field must be listed
//	dispute-id allow-list     → disputeId must be present and listed
func Matches(evt *event.Event, sub *Subscription) bool {
	if !sub.Active {
		return false
	}

	if len(sub.EventTypes) > 0 && !slices.Contains(sub.EventTypes, evt.Type) {
		return false
	}

	if len(sub.Addresses) > 0 && !matchAddresses(evt, sub.Addresses) {
		return false
	}

	if len(sub.DisputeIDs) > 0 {
		raw, ok := evt.Data[event.FieldDisputeID]
		if !ok {
			return false
		}
		disputeID, ok := event.IntegerString(raw)
		if !ok || !slices.Contains(sub.DisputeIDs, disputeID) {
			return false
		}
	}

	return true
}

// Addresses returns the lower-cased values of the recognized address fields
// present in the event payload, in event.AddressFields order.
func Addresses(evt *event.Event) []string {
	var out []string
	for _, field := range event.AddressFields {
		v, ok := evt.Data[field].(string)
		if !ok || v == "" {
			continue
		}
		out = append(out, strings.ToLower(v))
	}
	return out
}

func matchAddresses(evt *event.Event, allow []string) bool {
	for _, addr := range Addresses(evt) {
		for _, a := range allow {
			if strings.EqualFold(a, addr) {
				return true
			}
		}
	}
	return false
}
