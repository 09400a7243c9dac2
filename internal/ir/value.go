package ir

import (
	"fmt"
	"strconv"
)

// Type names persisted alongside variable values.
const (
	TypeString  = "string"
	TypeLong    = "long"
	TypeBoolean = "boolean"
	TypeNull    = "null"
)

// Value is a sealed interface representing a typed variable value.
// Only String, Long, Boolean and Null implement it.
type Value interface {
	// TypeName returns the persisted type name (TypeString, TypeLong, ...).
	TypeName() string

	// String renders the value as a literal, quoting strings.
	String() string

	value() // Sealed - only these types implement it
}

// String is a string-typed value. It is the only type LIKE predicates
// can match.
type String string

func (String) value() {}

// TypeName implements Value.
func (String) TypeName() string { return TypeString }

func (s String) String() string { return strconv.Quote(string(s)) }

// Long is an integer-typed value.
type Long int64

func (Long) value() {}

// TypeName implements Value.
func (Long) TypeName() string { return TypeLong }

func (l Long) String() string { return strconv.FormatInt(int64(l), 10) }

// Boolean is a boolean-typed value.
type Boolean bool

func (Boolean) value() {}

// TypeName implements Value.
func (Boolean) TypeName() string { return TypeBoolean }

func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }

// Null is an explicitly null variable. A Null variable exists, unlike a
// variable that was never set.
type Null struct{}

func (Null) value() {}

// TypeName implements Value.
func (Null) TypeName() string { return TypeNull }

func (Null) String() string { return "null" }

// FromNative converts a decoded YAML/CUE/Go value into a Value.
// Floats are rejected: use Long for numbers.
func FromNative(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Boolean(val), nil
	case int:
		return Long(int64(val)), nil
	case int32:
		return Long(int64(val)), nil
	case int64:
		return Long(val), nil
	case uint32:
		return Long(int64(val)), nil
	case float32, float64:
		return nil, fmt.Errorf("floats are not supported as variable values: %v", val)
	default:
		return nil, fmt.Errorf("unsupported variable value type: %T", v)
	}
}

// Native returns the plain Go value held by v (string, int64, bool or nil).
func Native(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Long:
		return int64(val)
	case Boolean:
		return bool(val)
	default:
		return nil
	}
}
