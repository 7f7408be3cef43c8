// Package catalog describes the event types the relay carries and validates
// event payloads against their JSON Schema.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/xraph/courier/event"
)

// ErrUnknownType is returned for event types outside the enumeration.
var ErrUnknownType = errors.New("catalog: unknown event type")

// Catalog holds one Definition per event type.
type Catalog struct {
	mu        sync.RWMutex
	defs      map[event.Type]Definition
	validator *Validator
}

// New creates a catalog preloaded with Defaults.
func New() *Catalog {
	c := &Catalog{
		defs:      make(map[event.Type]Definition),
		validator: NewValidator(),
	}
	for _, def := range Defaults() {
		c.defs[def.Type] = def
	}
	return c
}

// Register replaces the definition for def.Type. Only enumerated types are
// accepted, and a non-empty schema must compile.
func (c *Catalog) Register(def Definition) error {
	if !def.Type.Known() {
		return fmt.Errorf("%w: %s", ErrUnknownType, def.Type)
	}
	if len(def.Schema) > 0 {
		if _, err := c.validator.compile(def.Schema); err != nil {
			return fmt.Errorf("catalog: %s: %w", def.Type, err)
		}
	}

	c.mu.Lock()
	c.defs[def.Type] = def
	c.mu.Unlock()
	return nil
}

// Get returns the definition for t.
func (c *Catalog) Get(t event.Type) (Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.defs[t]
	return def, ok
}

// List returns all definitions in event.Types order.
func (c *Catalog) List() []Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Definition, 0, len(c.defs))
	for _, t := range event.Types() {
		if def, ok := c.defs[t]; ok {
			out = append(out, def)
		}
	}
	return out
}

// Validate checks that evt has a known type and that its payload satisfies
// the type's schema. The payload is validated in its wire form, so wide
// integers are checked as the decimal strings subscribers will receive.
func (c *Catalog) Validate(evt *event.Event) error {
	def, ok := c.Get(evt.Type)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownType, evt.Type)
	}
	if len(def.Schema) == 0 {
		return nil
	}

	raw, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("catalog: marshal event: %w", err)
	}
	envelope, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("catalog: decode event: %w", err)
	}

	data := envelope.(map[string]any)["data"]
	if data == nil {
		data = map[string]any{}
	}
	return c.validator.Validate(def.Schema, data)
}
