// Package courier relays dispute lifecycle events to registered webhook
// subscribers.
//
// Courier is a library. Embed a Relay in the process that observes disputes,
// register subscriptions through its administrative surface, and hand it
// each event. Every matching subscription receives a signed JSON POST,
// retried with exponential backoff, and the outcome lands in a bounded
// delivery history.
//
// Key features:
//   - Subscriptions filtered by event type, participant address and dispute id
//   - HMAC-SHA256 signatures verifiable with the signature package
//   - Concurrent fan-out with per-subscription sequential retries
//   - In-memory or Redis-backed delivery history
//   - Optional JSON Schema validation of event payloads
//
// Quick start:
//
//	r, err := courier.New(courier.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Stop(context.Background())
//
//	r.Register(subscription.Input{
//	    URL:        "https://example.com/hooks/disputes",
//	    EventTypes: []event.Type{event.TypeDisputeRaised},
//	    Secret:     "s3cr3t",
//	})
//
//	r.Dispatch(ctx, &event.Event{
//	    Type:      event.TypeDisputeRaised,
//	    ID:        "0xabc:12",
//	    Timestamp: time.Now().Unix(),
//	    Data:      map[string]any{"disputeId": 42, "claimant": "0x1234"},
//	})
package courier
