package catalog

import (
	"encoding/json"

	"github.com/xraph/courier/event"
)

// Definition describes one event type the relay carries.
type Definition struct {
	// Type is the event type tag.
	Type event.Type `json:"type"`

	// Description explains when the event fires.
	Description string `json:"description"`

	// Group is a category for listing ("dispute", "escrow").
	Group string `json:"group,omitempty"`

	// Schema is an optional JSON Schema describing the payload.
	Schema json.RawMessage `json:"schema,omitempty"`

	// Example is an optional example payload for documentation.
	Example json.RawMessage `json:"example,omitempty"`
}

const (
	addressSchema   = `{"type":"string","minLength":1}`
	disputeIDSchema = `{"type":["integer","string"],"pattern":"^[0-9]+$"}`
)

// Defaults returns the built-in definitions, one per event.Types entry.
func Defaults() []Definition {
	return []Definition{
		{
			Type:        event.TypeDisputeRaised,
			Description: "A claimant opened a dispute against a respondent.",
			Group:       "dispute",
			Schema: objectSchema(map[string]string{
				event.FieldDisputeID:  disputeIDSchema,
				event.FieldClaimant:   addressSchema,
				event.FieldRespondent: addressSchema,
			}, event.FieldDisputeID, event.FieldClaimant, event.FieldRespondent),
			Example: json.RawMessage(`{"disputeId":"42","claimant":"0x1111111111111111111111111111111111111111","respondent":"0x2222222222222222222222222222222222222222"}`),
		},
		{
			Type:        event.TypeDisputeResolved,
			Description: "A dispute reached a final ruling.",
			Group:       "dispute",
			Schema: objectSchema(map[string]string{
				event.FieldDisputeID:  disputeIDSchema,
				event.FieldClaimant:   addressSchema,
				event.FieldRespondent: addressSchema,
			}, event.FieldDisputeID),
		},
		{
			Type:        event.TypeDisputeAppealed,
			Description: "A ruling was appealed.",
			Group:       "dispute",
			Schema: objectSchema(map[string]string{
				event.FieldDisputeID: disputeIDSchema,
			}, event.FieldDisputeID),
		},
		{
			Type:        event.TypeDisputeVoted,
			Description: "A juror cast a vote on a dispute.",
			Group:       "dispute",
			Schema: objectSchema(map[string]string{
				event.FieldDisputeID: disputeIDSchema,
				event.FieldVoter:     addressSchema,
			}, event.FieldDisputeID, event.FieldVoter),
		},
		{
			Type:        event.TypeEscrowCreated,
			Description: "Funds were locked in escrow between a payer and a payee.",
			Group:       "escrow",
			Schema: objectSchema(map[string]string{
				event.FieldPayer: addressSchema,
				event.FieldPayee: addressSchema,
			}, event.FieldPayer, event.FieldPayee),
		},
		{
			Type:        event.TypeEscrowReleased,
			Description: "Escrowed funds were released.",
			Group:       "escrow",
			Schema: objectSchema(map[string]string{
				event.FieldPayer: addressSchema,
				event.FieldPayee: addressSchema,
			}, event.FieldPayee),
		},
	}
}

// objectSchema builds an object schema from per-property fragments.
func objectSchema(props map[string]string, required ...string) json.RawMessage {
	properties := make(map[string]json.RawMessage, len(props))
	for name, frag := range props {
		properties[name] = json.RawMessage(frag)
	}
	raw, err := json.Marshal(map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	})
	if err != nil {
		panic("catalog: build schema: " + err.Error())
	}
	return raw
}
