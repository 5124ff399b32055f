package query

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which member of the Value union is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
	KindObject
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Value is a single field value of a Record. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	t    time.Time
	obj  map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value. NaN is stored as null.
func Number(n float64) Value {
	if math.IsNaN(n) {
		return Value{}
	}
	return Value{kind: KindNumber, num: n}
}

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Date returns a date value.
func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }

// Object returns a nested object value.
func Object(m map[string]Value) Value {
	if m == nil {
		return Value{}
	}
	return Value{kind: KindObject, obj: m}
}

// FromAny converts a decoded JSON value (or a plain Go scalar) into a Value.
// Unsupported types become null.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{}
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return String(x.String())
		}
		return Number(n)
	case time.Time:
		return Date(x)
	case map[string]any:
		m := make(map[string]Value, len(x))
		for k, e := range x {
			m[k] = FromAny(e)
		}
		return Object(m)
	case []any:
		// Arrays have no comparison domain; keep them searchable as a joined string.
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, FromAny(e).AsString())
		}
		return String(strings.Join(parts, ","))
	default:
		return Value{}
	}
}

// Kind reports which member of the union is set.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString coerces v to a string. Null and objects coerce to "".
func (v Value) AsString() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDate:
		return v.t.Format(time.RFC3339)
	default:
		return ""
	}
}

// AsNumber coerces v to a number. Values without a numeric reading coerce to 0.
func (v Value) AsNumber() float64 {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil || math.IsNaN(n) {
			return 0
		}
		return n
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// AsBool coerces v to a boolean using truthiness of the underlying value.
func (v Value) AsBool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0
	case KindString:
		b, err := strconv.ParseBool(strings.TrimSpace(v.str))
		return err == nil && b
	default:
		return false
	}
}

// AsDate coerces v to an instant. ok is false for null, objects and
// strings that do not parse as a date.
func (v Value) AsDate() (t time.Time, ok bool) {
	switch v.kind {
	case KindDate:
		return v.t, true
	case KindString:
		return ParseDate(v.str)
	case KindNumber:
		// Epoch milliseconds, the way browser timestamps are stored.
		if math.IsInf(v.num, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(v.num)).UTC(), true
	default:
		return time.Time{}, false
	}
}

// Any converts v back to a plain Go value suitable for encoding/json.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindDate:
		return v.t.Format(time.RFC3339Nano)
	case KindObject:
		m := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			m[k] = e.Any()
		}
		return m
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	dateOnlyLayout,
}

const dateOnlyLayout = "2006-01-02"

// ParseDate parses the ISO-8601 shapes found in stored records. Times without
// an offset are read as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isDateOnly reports whether s is a bare calendar date.
func isDateOnly(s string) bool {
	_, err := time.Parse(dateOnlyLayout, strings.TrimSpace(s))
	return err == nil
}
