package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/procquery/internal/ir"
	"github.com/roach88/procquery/internal/pattern"
	"github.com/roach88/procquery/internal/queryir"
)

// InstanceColumns is the column list of List and Single queries, in scan order.
var InstanceColumns = []string{
	"pi.id",
	"pi.tenant_id",
	"pi.name",
	"pi.proc_def_id",
	"pi.proc_def_key",
}

// fieldColumns maps fixed attributes to columns. Only these column names
// ever reach the generated SQL.
var fieldColumns = map[string]string{
	queryir.AttrID:                   "pi.id",
	queryir.AttrTenantID:             "pi.tenant_id",
	queryir.AttrName:                 "pi.name",
	queryir.AttrProcessDefinitionID:  "pi.proc_def_id",
	queryir.AttrProcessDefinitionKey: "pi.proc_def_key",
}

const orderByClause = " ORDER BY pi.id ASC COLLATE BINARY"

// Compiler compiles predicate trees to parameterized SQL for SQLite.
//
// Compiler holds no state between calls and is safe for concurrent use.
type Compiler struct{}

// NewCompiler creates a new Compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// fragment is a compiled piece of a WHERE clause.
// An empty sql means "no restriction".
type fragment struct {
	sql      string
	params   []any
	compound bool // joined with AND/OR; needs parentheses when nested
}

// Compile converts a predicate tree to SQL for the given mode.
// Returns (sql, params, error). A nil predicate or empty group compiles to
// a query without a WHERE clause.
func (c *Compiler) Compile(p queryir.Predicate, mode Mode) (string, []any, error) {
	var where fragment
	if p != nil {
		var err error
		where, err = c.compilePredicate(p)
		if err != nil {
			return "", nil, err
		}
	}

	whereClause := ""
	if where.sql != "" {
		whereClause = " WHERE " + where.sql
	}

	var sql string
	switch mode {
	case ModeList:
		sql = "SELECT " + strings.Join(InstanceColumns, ", ") + " FROM process_instances pi" + whereClause + orderByClause
	case ModeSingle:
		sql = fmt.Sprintf("SELECT %s FROM process_instances pi%s%s LIMIT %d",
			strings.Join(InstanceColumns, ", "), whereClause, orderByClause, SingleLimit)
	case ModeCount:
		sql = "SELECT COUNT(*) FROM process_instances pi" + whereClause
	default:
		return "", nil, fmt.Errorf("unsupported mode: %s", mode)
	}

	params := where.params
	if params == nil {
		params = []any{}
	}
	return sql, params, nil
}

// compilePredicate dispatches on the sealed predicate types.
func (c *Compiler) compilePredicate(p queryir.Predicate) (fragment, error) {
	switch pred := p.(type) {
	case queryir.Condition:
		return c.compileCondition(pred)
	case *queryir.Condition:
		return c.compileCondition(*pred)
	case queryir.Group:
		return c.compileGroup(pred)
	case *queryir.Group:
		return c.compileGroup(*pred)
	default:
		return fragment{}, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileGroup joins the children with the group's connective. Children
// that compile to nothing (empty groups) are skipped, and a group left with
// a single child compiles to that child alone.
func (c *Compiler) compileGroup(g queryir.Group) (fragment, error) {
	var frags []fragment
	for i, child := range g.Children {
		frag, err := c.compilePredicate(child)
		if err != nil {
			return fragment{}, fmt.Errorf("compile %s child %d: %w", g.Connective, i, err)
		}
		if frag.sql != "" {
			frags = append(frags, frag)
		}
	}

	switch len(frags) {
	case 0:
		return fragment{}, nil
	case 1:
		return frags[0], nil
	}

	parts := make([]string, 0, len(frags))
	var params []any
	for _, frag := range frags {
		if frag.compound {
			parts = append(parts, "("+frag.sql+")")
		} else {
			parts = append(parts, frag.sql)
		}
		params = append(params, frag.params...)
	}

	return fragment{
		sql:      strings.Join(parts, " "+g.Connective.String()+" "),
		params:   params,
		compound: true,
	}, nil
}

// compileCondition compiles a single Condition.
// CRITICAL: the operand is NEVER interpolated - always parameterized.
func (c *Compiler) compileCondition(cond queryir.Condition) (fragment, error) {
	if cond.Operand == nil {
		return fragment{}, &queryir.InvalidPredicateError{Attribute: cond.Attr.String(), Reason: "operand is nil"}
	}

	switch cond.Attr.Kind {
	case queryir.KindField:
		return c.compileField(cond)
	case queryir.KindVariable:
		return c.compileVariable(cond)
	default:
		return fragment{}, &queryir.InvalidPredicateError{
			Attribute: cond.Attr.String(),
			Reason:    fmt.Sprintf("unknown attribute kind %d", cond.Attr.Kind),
		}
	}
}

// compileField compiles a condition on a fixed process-instance column.
func (c *Compiler) compileField(cond queryir.Condition) (fragment, error) {
	col, ok := fieldColumns[cond.Attr.Name]
	if !ok {
		return fragment{}, &queryir.InvalidPredicateError{Attribute: cond.Attr.String(), Reason: "unknown attribute"}
	}

	s, ok := cond.Operand.(ir.String)
	if !ok {
		return fragment{}, &queryir.InvalidPredicateError{
			Attribute: cond.Attr.String(),
			Reason:    fmt.Sprintf("operand must be a string, got %s", cond.Operand.TypeName()),
		}
	}

	operand := string(s)
	if col != fieldColumns[queryir.AttrID] {
		// ids are stored verbatim; every other column is stored in NFC.
		operand = pattern.Normalize(operand)
	}
	sql, param, err := compileTextComparison(col, cond.Op, operand)
	if err != nil {
		return fragment{}, err
	}
	return fragment{sql: sql, params: []any{param}}, nil
}

// compileVariable compiles a condition on a process variable into an
// EXISTS subquery correlated on the instance id.
func (c *Compiler) compileVariable(cond queryir.Condition) (fragment, error) {
	prefix := "EXISTS (SELECT 1 FROM variables v WHERE v.instance_id = pi.id AND v.name = ? AND v.type = ?"

	if cond.Op.IsLike() {
		s, ok := cond.Operand.(ir.String)
		if !ok {
			return fragment{}, &queryir.InvalidPredicateError{
				Attribute: cond.Attr.String(),
				Reason:    fmt.Sprintf("%s requires a string pattern, got %s", cond.Op, cond.Operand.TypeName()),
			}
		}
		sql, param, err := compileTextComparison("v.text_value", cond.Op, pattern.Normalize(string(s)))
		if err != nil {
			return fragment{}, err
		}
		return fragment{
			sql:    prefix + " AND " + sql + ")",
			params: []any{cond.Attr.Name, ir.TypeString, param},
		}, nil
	}

	if cond.Op != queryir.OpEquals {
		return fragment{}, fmt.Errorf("unsupported operator: %s", cond.Op)
	}

	params := []any{cond.Attr.Name, cond.Operand.TypeName()}
	switch val := cond.Operand.(type) {
	case ir.String:
		return fragment{sql: prefix + " AND v.text_value = ?)", params: append(params, pattern.Normalize(string(val)))}, nil
	case ir.Long:
		return fragment{sql: prefix + " AND v.long_value = ?)", params: append(params, int64(val))}, nil
	case ir.Boolean:
		var n int64
		if val {
			n = 1
		}
		return fragment{sql: prefix + " AND v.long_value = ?)", params: append(params, n)}, nil
	case ir.Null:
		return fragment{sql: prefix + ")", params: params}, nil
	default:
		return fragment{}, fmt.Errorf("unsupported value type: %T", cond.Operand)
	}
}

// compileTextComparison renders "<col> <op> ?" for text columns and returns
// the bound parameter. Like patterns are used verbatim; LikeIgnoreCase
// folds the pattern here and the column through the SQL fold function.
func compileTextComparison(col string, op queryir.Operator, operand string) (string, any, error) {
	switch op {
	case queryir.OpEquals:
		return col + " = ?", operand, nil
	case queryir.OpLike:
		return col + " LIKE ? " + pattern.EscapeClause, operand, nil
	case queryir.OpLikeIgnoreCase:
		return pattern.SQLFoldFunc + "(" + col + ") LIKE ? " + pattern.EscapeClause, pattern.Fold(operand), nil
	default:
		return "", nil, fmt.Errorf("unsupported operator: %s", op)
	}
}
