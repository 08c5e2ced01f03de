package reconcile

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	case KindJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Value is a single cell read from a table. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	t    time.Time
}

// NullValue returns the null Value.
func NullValue() Value { return Value{} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// IntValue wraps an integer.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue wraps a float. NaN is kept as a float but behaves as null.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// TimeValue wraps a timestamp.
func TimeValue(t time.Time) Value { return Value{kind: KindTime, t: t} }

// JSONValue wraps a raw JSON document as stored by the database.
func JSONValue(raw string) Value { return Value{kind: KindJSON, s: raw} }

// Kind returns the stored variant. NaN floats report KindNull.
func (v Value) Kind() Kind {
	if v.kind == KindFloat && math.IsNaN(v.f) {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether v is null or a NaN float.
func (v Value) IsNull() bool {
	return v.Kind() == KindNull
}

// String renders v for logs; null renders as "<null>".
func (v Value) String() string {
	if s := Stringify(v); s != nil {
		return *s
	}
	return "<null>"
}

// Stringify returns the canonical text of v, or nil for null and NaN.
// Integral floats render without a fractional part so 1.0 and 1 agree.
func Stringify(v Value) *string {
	var s string
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBool:
		s = strconv.FormatBool(v.b)
	case KindInt:
		s = strconv.FormatInt(v.i, 10)
	case KindFloat:
		s = strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString, KindJSON:
		s = v.s
	case KindTime:
		s = v.t.Format(time.RFC3339Nano)
	}
	return &s
}

// FromAny converts a value produced by a database driver or a JSON decoder
// into a Value.
func FromAny(val any) Value {
	switch v := val.(type) {
	case nil:
		return NullValue()
	case Value:
		return v
	case bool:
		return BoolValue(v)
	case int:
		return IntValue(int64(v))
	case int8:
		return IntValue(int64(v))
	case int16:
		return IntValue(int64(v))
	case int32:
		return IntValue(int64(v))
	case int64:
		return IntValue(v)
	case uint:
		return fromUint(uint64(v))
	case uint8:
		return IntValue(int64(v))
	case uint16:
		return IntValue(int64(v))
	case uint32:
		return IntValue(int64(v))
	case uint64:
		return fromUint(v)
	case float32:
		return FloatValue(float64(v))
	case float64:
		return FloatValue(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return IntValue(i)
		}
		if f, err := v.Float64(); err == nil {
			return FloatValue(f)
		}
		return StringValue(v.String())
	case string:
		return StringValue(v)
	case json.RawMessage:
		return JSONValue(string(v))
	case []byte:
		return StringValue(string(v))
	case time.Time:
		return TimeValue(v)
	case *time.Time:
		if v == nil {
			return NullValue()
		}
		return TimeValue(*v)
	case map[string]any, []any:
		raw, err := json.Marshal(v)
		if err != nil {
			return StringValue(fmt.Sprint(v))
		}
		return JSONValue(string(raw))
	case driver.Valuer:
		inner, err := v.Value()
		if err != nil {
			return NullValue()
		}
		return FromAny(inner)
	default:
		return StringValue(fmt.Sprint(v))
	}
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return StringValue(strconv.FormatUint(u, 10))
	}
	return IntValue(int64(u))
}

// ToJSON converts v into a value encoding/json can marshal. Times become
// RFC 3339 strings, NaN and infinities become nil and JSON documents are
// decoded so they nest instead of appearing as escaped strings.
func ToJSON(v Value) any {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		if math.IsInf(v.f, 0) {
			return nil
		}
		return v.f
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	case KindJSON:
		dec := json.NewDecoder(bytes.NewReader([]byte(v.s)))
		dec.UseNumber()
		var decoded any
		if err := dec.Decode(&decoded); err != nil {
			return v.s
		}
		return normalizeJSON(decoded)
	default:
		return v.s
	}
}

func normalizeJSON(val any) any {
	switch v := val.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = normalizeJSON(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeJSON(item)
		}
		return out
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
		return nil
	default:
		return v
	}
}
