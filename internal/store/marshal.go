package store

import (
	"database/sql"
	"fmt"

	"github.com/roach88/procquery/internal/ir"
	"github.com/roach88/procquery/internal/pattern"
)

// encodedValue is the column layout of a variable value.
type encodedValue struct {
	typ  string
	text sql.NullString
	long sql.NullInt64
}

// encodeValue splits a typed value into the variables table columns.
// Strings go to text_value in NFC; longs and booleans (0/1) go to long_value.
func encodeValue(v ir.Value) (encodedValue, error) {
	switch val := v.(type) {
	case ir.String:
		return encodedValue{typ: ir.TypeString, text: sql.NullString{String: pattern.Normalize(string(val)), Valid: true}}, nil
	case ir.Long:
		return encodedValue{typ: ir.TypeLong, long: sql.NullInt64{Int64: int64(val), Valid: true}}, nil
	case ir.Boolean:
		var n int64
		if val {
			n = 1
		}
		return encodedValue{typ: ir.TypeBoolean, long: sql.NullInt64{Int64: n, Valid: true}}, nil
	case ir.Null:
		return encodedValue{typ: ir.TypeNull}, nil
	case nil:
		return encodedValue{}, fmt.Errorf("encode value: nil value (use ir.Null)")
	default:
		return encodedValue{}, fmt.Errorf("encode value: unsupported type %T", v)
	}
}

// decodeValue reverses encodeValue.
func decodeValue(enc encodedValue) (ir.Value, error) {
	switch enc.typ {
	case ir.TypeString:
		if !enc.text.Valid {
			return nil, fmt.Errorf("decode value: string variable without text_value")
		}
		return ir.String(enc.text.String), nil
	case ir.TypeLong:
		if !enc.long.Valid {
			return nil, fmt.Errorf("decode value: long variable without long_value")
		}
		return ir.Long(enc.long.Int64), nil
	case ir.TypeBoolean:
		if !enc.long.Valid {
			return nil, fmt.Errorf("decode value: boolean variable without long_value")
		}
		return ir.Boolean(enc.long.Int64 != 0), nil
	case ir.TypeNull:
		return ir.Null{}, nil
	default:
		return nil, fmt.Errorf("decode value: unknown type %q", enc.typ)
	}
}

// nullIfEmpty maps "" to SQL NULL for optional text columns.
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
