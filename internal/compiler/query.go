package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/procquery/internal/ir"
	"github.com/roach88/procquery/internal/query"
	"github.com/roach88/procquery/internal/queryir"
	"github.com/roach88/procquery/internal/querysql"
)

// QueryDoc is a compiled query document.
type QueryDoc struct {
	Mode  querysql.Mode
	Where queryir.Group
}

// Operator labels accepted in leaves.
var leafOperators = map[string]queryir.Operator{
	"equals":         queryir.OpEquals,
	"like":           queryir.OpLike,
	"likeIgnoreCase": queryir.OpLikeIgnoreCase,
}

// CompileQuery parses a CUE value into a QueryDoc.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`where: [{attr: "tenantId", like: "%|%%"}]`)
//	doc, err := CompileQuery(v)
//
// The where list is fed through a query.Builder, so predicate errors are
// the builder's *queryir.InvalidPredicateError wrapped in a CompileError.
func CompileQuery(v cue.Value) (*QueryDoc, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	doc := &QueryDoc{Mode: querysql.ModeList}

	modeVal := v.LookupPath(cue.MakePath(cue.Str("mode")))
	if modeVal.Exists() {
		s, err := modeVal.String()
		if err != nil {
			return nil, &CompileError{Field: FieldMode, Message: "mode must be a string", Pos: modeVal.Pos()}
		}
		mode, err := querysql.ParseMode(s)
		if err != nil {
			return nil, &CompileError{Field: FieldMode, Message: err.Error(), Pos: modeVal.Pos()}
		}
		doc.Mode = mode
	}

	b := query.NewBuilder()
	whereVal := v.LookupPath(cue.MakePath(cue.Str("where")))
	if whereVal.Exists() {
		if err := buildEntries(b, whereVal, "where"); err != nil {
			return nil, err
		}
	}

	g, err := b.Build()
	if err != nil {
		return nil, &PredicateError{Err: err}
	}
	doc.Where = g

	return doc, nil
}

// PredicateError reports a where list that is well-formed CUE but builds
// an invalid predicate. It unwraps to the *queryir.InvalidPredicateError.
type PredicateError struct {
	Err error
}

func (e *PredicateError) Error() string {
	return fmt.Sprintf("%s: %v", FieldPredicate, e.Err)
}

func (e *PredicateError) Unwrap() error {
	return e.Err
}

// buildEntries feeds a list of where entries into the current builder scope.
func buildEntries(b *query.Builder, list cue.Value, path string) error {
	iter, err := list.List()
	if err != nil {
		return &CompileError{Field: FieldWhere, Message: fmt.Sprintf("%s must be a list", path), Pos: list.Pos()}
	}

	for i := 0; iter.Next(); i++ {
		if err := buildEntry(b, iter.Value(), fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func buildEntry(b *query.Builder, entry cue.Value, path string) error {
	iter, err := entry.Fields()
	if err != nil {
		return &CompileError{Field: FieldWhere, Message: fmt.Sprintf("%s must be a struct", path), Pos: entry.Pos()}
	}
	fields := make(map[string]cue.Value)
	var labels []string
	for iter.Next() {
		fields[iter.Label()] = iter.Value()
		labels = append(labels, iter.Label())
	}

	for _, connective := range []string{"or", "and"} {
		nested, ok := fields[connective]
		if !ok {
			continue
		}
		if len(fields) != 1 {
			return &CompileError{Field: FieldWhere, Message: fmt.Sprintf("%s: %s must be the only field", path, connective), Pos: entry.Pos()}
		}
		if connective == "or" {
			b.Or()
		} else {
			b.And()
		}
		if err := buildEntries(b, nested, path+"."+connective); err != nil {
			return err
		}
		b.End()
		return nil
	}

	return buildLeaf(b, entry, fields, labels, path)
}

// buildLeaf adds one condition. labels preserves source order so errors
// are reported against the first offending field.
func buildLeaf(b *query.Builder, entry cue.Value, fields map[string]cue.Value, labels []string, path string) error {
	var attr queryir.Attribute
	var attrCount int
	var op queryir.Operator
	var operandVal cue.Value
	var opCount int

	for _, label := range labels {
		v := fields[label]
		switch label {
		case "attr", "variable":
			name, err := v.String()
			if err != nil {
				return &CompileError{Field: FieldWhere, Message: fmt.Sprintf("%s.%s must be a string", path, label), Pos: v.Pos()}
			}
			if label == "attr" {
				attr = queryir.Field(name)
			} else {
				attr = queryir.Variable(name)
			}
			attrCount++
		default:
			o, ok := leafOperators[label]
			if !ok {
				return &CompileError{Field: FieldWhere, Message: fmt.Sprintf("%s: unknown field %q", path, label), Pos: v.Pos()}
			}
			op = o
			operandVal = v
			opCount++
		}
	}

	if attrCount != 1 {
		return &CompileError{Field: FieldWhere, Message: fmt.Sprintf("%s: exactly one of attr or variable is required", path), Pos: entry.Pos()}
	}
	if opCount != 1 {
		return &CompileError{Field: FieldWhere, Message: fmt.Sprintf("%s: exactly one of equals, like or likeIgnoreCase is required", path), Pos: entry.Pos()}
	}

	operand, err := cueToValue(operandVal)
	if err != nil {
		return &CompileError{Field: FieldValue, Message: fmt.Sprintf("%s: %v", path, err), Pos: operandVal.Pos()}
	}

	b.Condition(attr, op, operand)
	return nil
}

// cueToValue converts a concrete CUE scalar to an ir.Value.
func cueToValue(v cue.Value) (ir.Value, error) {
	switch v.Kind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, err
		}
		return ir.String(s), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, err
		}
		return ir.Long(n), nil
	case cue.BoolKind:
		bv, err := v.Bool()
		if err != nil {
			return nil, err
		}
		return ir.Boolean(bv), nil
	case cue.NullKind:
		return ir.Null{}, nil
	case cue.FloatKind, cue.NumberKind:
		return nil, fmt.Errorf("floats are not supported as operands")
	default:
		return nil, fmt.Errorf("unsupported operand kind %s", v.IncompleteKind())
	}
}
