package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ValueKind identifies which variant of a JSON value a Value holds.
type ValueKind int

const (
	NullValue ValueKind = iota
	BoolValue
	NumberValue
	StringValue
	ArrayValue
	ObjectValue
)

func (k ValueKind) String() string {
	switch k {
	case NullValue:
		return "null"
	case BoolValue:
		return "bool"
	case NumberValue:
		return "number"
	case StringValue:
		return "string"
	case ArrayValue:
		return "array"
	case ObjectValue:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an immutable JSON value tree. Object members keep the order in
// which they appeared in the source text.
type Value struct {
	Kind ValueKind

	Bool bool
	// Str holds the string value, or the raw literal for numbers.
	Str string

	// Integral is set for numbers without a fraction or exponent that fit in
	// an int64. Int is only meaningful when Integral is true.
	Integral bool
	Int      int64
	Float    float64

	Elems   []Value
	Members []Member
}

// Member is a single key/value pair of a JSON object.
type Member struct {
	Key   string
	Value Value
}

// Null returns the JSON null value.
func Null() Value { return Value{Kind: NullValue} }

// Bool returns a JSON boolean.
func Bool(b bool) Value { return Value{Kind: BoolValue, Bool: b} }

// String returns a JSON string.
func String(s string) Value { return Value{Kind: StringValue, Str: s} }

// Int returns an integral JSON number.
func Int(i int64) Value {
	return Value{Kind: NumberValue, Integral: true, Int: i, Float: float64(i), Str: strconv.FormatInt(i, 10)}
}

// Float returns a fractional JSON number.
func Float(f float64) Value {
	return Value{Kind: NumberValue, Float: f, Str: strconv.FormatFloat(f, 'g', -1, 64)}
}

// Array returns a JSON array of the given elements.
func Array(elems ...Value) Value { return Value{Kind: ArrayValue, Elems: elems} }

// Object returns a JSON object of the given members.
func Object(members ...Member) Value { return Value{Kind: ObjectValue, Members: members} }

// Get returns the member value stored under key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Interface converts the value into plain Go values: nil, bool, int64,
// float64, string, []any and map[string]any.
func (v Value) Interface() any {
	switch v.Kind {
	case BoolValue:
		return v.Bool
	case NumberValue:
		if v.Integral {
			return v.Int
		}
		return v.Float
	case StringValue:
		return v.Str
	case ArrayValue:
		out := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			out[i] = e.Interface()
		}
		return out
	case ObjectValue:
		out := make(map[string]any, len(v.Members))
		for _, m := range v.Members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON encodes the value, keeping object member order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.Kind {
	case NullValue:
		buf.WriteString("null")
	case BoolValue:
		buf.WriteString(strconv.FormatBool(v.Bool))
	case NumberValue:
		buf.WriteString(v.Str)
	case StringValue:
		b, err := json.Marshal(v.Str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case ArrayValue:
		buf.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case ObjectValue:
		buf.WriteByte('{')
		for i, m := range v.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}
