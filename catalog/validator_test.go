package catalog_test

import (
	"encoding/json"
	"testing"

	"github.com/xraph/courier/catalog"
)

const amountSchema = `{
	"type": "object",
	"properties": {
		"amount": {"type": "number"},
		"currency": {"type": "string"}
	},
	"required": ["amount", "currency"]
}`

func TestValidatorEmptySchema(t *testing.T) {
	v := catalog.NewValidator()

	if err := v.Validate(nil, map[string]any{"key": "value"}); err != nil {
		t.Fatal("empty schema should skip validation, got:", err)
	}
}

func TestValidator(t *testing.T) {
	v := catalog.NewValidator()

	tests := []struct {
		name    string
		data    any
		wantErr bool
	}{
		{"valid", map[string]any{"amount": json.Number("100.5"), "currency": "USD"}, false},
		{"missing required", map[string]any{"amount": json.Number("1")}, true},
		{"wrong type", map[string]any{"amount": "lots", "currency": "USD"}, true},
		{"not an object", "nope", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(json.RawMessage(amountSchema), tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatorInvalidSchema(t *testing.T) {
	v := catalog.NewValidator()

	err := v.Validate(json.RawMessage(`{"type": 12}`), map[string]any{})
	if err == nil {
		t.Fatal("expected compilation error for invalid schema")
	}
}

func TestValidatorCachesCompiledSchemas(t *testing.T) {
	v := catalog.NewValidator()
	data := map[string]any{"amount": json.Number("1"), "currency": "EUR"}

	for range 3 {
		if err := v.Validate(json.RawMessage(amountSchema), data); err != nil {
			t.Fatal(err)
		}
	}
}
