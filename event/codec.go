package event

import (
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"strconv"
)

// MaxSafeInteger is the largest integer a JSON consumer using IEEE-754
// doubles can represent exactly.
const MaxSafeInteger = 1<<53 - 1

// MarshalJSON encodes the event with integers outside the safe range (and
// every *big.Int) written as decimal strings.
func (e Event) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type      Type           `json:"type"`
		ID        string         `json:"event_id"`
		Timestamp int64          `json:"timestamp"`
		Data      map[string]any `json:"data"`
	}

	var data map[string]any
	if e.Data != nil {
		data = make(map[string]any, len(e.Data))
		for k, v := range e.Data {
			data[k] = normalize(v)
		}
	}

	return json.Marshal(wire{
		Type:      e.Type,
		ID:        e.ID,
		Timestamp: e.Timestamp,
		Data:      data,
	})
}

// normalize rewrites wide integers into decimal strings, walking nested maps
// and slices of any element type.
func normalize(v any) any {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil
		}
		return n.String()
	case big.Int:
		return n.String()
	case int64:
		return safeInt(n)
	case int:
		return safeInt(int64(n))
	case uint64:
		if n > MaxSafeInteger {
			return strconv.FormatUint(n, 10)
		}
		return n
	case uint:
		if uint64(n) > MaxSafeInteger {
			return strconv.FormatUint(uint64(n), 10)
		}
		return n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return safeInt(i)
		}
		if _, ok := new(big.Int).SetString(n.String(), 10); ok {
			return n.String()
		}
		return n
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, inner := range n {
			out[k] = normalize(inner)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, inner := range n {
			out[i] = normalize(inner)
		}
		return out
	case []byte, json.RawMessage, string, bool, float64, nil:
		return v
	default:
		return normalizeReflect(v)
	}
}

// normalizeReflect handles typed containers such as []*big.Int, []int64 or
// map[string]*big.Int, which the fast paths above do not match.
func normalizeReflect(v any) any {
	if _, ok := v.(json.Marshaler); ok {
		return v
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return v
	case reflect.Int, reflect.Int64:
		return safeInt(rv.Int())
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		if u := rv.Uint(); u > MaxSafeInteger {
			return strconv.FormatUint(u, 10)
		}
		return v
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		fallthrough
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalize(iter.Value().Interface())
		}
		return out
	case reflect.Pointer:
		if rv.IsNil() {
			return v
		}
		return normalize(rv.Elem().Interface())
	default:
		return v
	}
}

func safeInt(n int64) any {
	if n > MaxSafeInteger || n < -MaxSafeInteger {
		return strconv.FormatInt(n, 10)
	}
	return n
}

// IntegerString returns the decimal form of an integer-like payload value.
// Accepted inputs are Go integer types, *big.Int, json.Number and decimal
// strings. ok is false for anything else.
func IntegerString(v any) (s string, ok bool) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return "", false
		}
		return n.String(), true
	case big.Int:
		return n.String(), true
	case int:
		return strconv.FormatInt(int64(n), 10), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float64:
		// Decoded JSON numbers land here; only whole values inside the int64
		// range qualify.
		if n < math.MinInt64 || n >= math.MaxInt64 || n != math.Trunc(n) {
			return "", false
		}
		return strconv.FormatInt(int64(n), 10), true
	case json.Number:
		return canonicalDecimal(n.String())
	case string:
		return canonicalDecimal(n)
	default:
		return "", false
	}
}

func canonicalDecimal(s string) (string, bool) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return "", false
	}
	return b.String(), true
}
