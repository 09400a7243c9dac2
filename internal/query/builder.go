package query

import (
	"context"
	"errors"

	"github.com/roach88/procquery/internal/ir"
	"github.com/roach88/procquery/internal/pattern"
	"github.com/roach88/procquery/internal/queryir"
)

// errNoExecutor is returned by terminal calls on a detached Builder.
var errNoExecutor = errors.New("query: builder has no executor (use Executor.NewQuery)")

// scope is the mutable form of a group while the builder is open.
type scope struct {
	connective queryir.Connective
	items      []scopeItem
}

// scopeItem is either a condition or a nested scope.
type scopeItem struct {
	cond queryir.Condition
	sub  *scope
}

// freeze converts s into an immutable queryir.Group. Every slice is newly
// allocated, so later builder calls cannot reach the result.
func (s *scope) freeze() queryir.Group {
	g := queryir.Group{Connective: s.connective}
	if len(s.items) == 0 {
		return g
	}
	g.Children = make([]queryir.Predicate, 0, len(s.items))
	for _, item := range s.items {
		if item.sub != nil {
			g.Children = append(g.Children, item.sub.freeze())
		} else {
			g.Children = append(g.Children, item.cond)
		}
	}
	return g
}

// Builder assembles a predicate tree through fluent calls.
//
// The root scope is an AND. Or() opens an OR scope inside the current
// scope; every following condition joins that OR until EndOr() or End().
// Terminal calls close all open scopes.
//
// Fluent methods never return errors. The first construction error is
// kept and returned by Build and the terminal calls; later calls are
// ignored once an error is recorded.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	exec  *Executor
	root  *scope
	stack []*scope
	err   error
}

// NewBuilder creates a detached Builder. Only Build is usable; use
// Executor.NewQuery for a builder that can run itself.
func NewBuilder() *Builder {
	root := &scope{connective: queryir.And}
	return &Builder{root: root, stack: []*scope{root}}
}

func (b *Builder) current() *scope {
	return b.stack[len(b.stack)-1]
}

// Condition adds an arbitrary condition to the current scope.
func (b *Builder) Condition(attr queryir.Attribute, op queryir.Operator, operand ir.Value) *Builder {
	if b.err != nil {
		return b
	}
	c, err := queryir.NewCondition(attr, op, operand)
	if err != nil {
		b.err = err
		return b
	}
	cur := b.current()
	cur.items = append(cur.items, scopeItem{cond: c})
	return b
}

func (b *Builder) field(name string, op queryir.Operator, value string) *Builder {
	return b.Condition(queryir.Field(name), op, ir.String(value))
}

// ProcessInstanceID matches the instance id exactly.
func (b *Builder) ProcessInstanceID(id string) *Builder {
	return b.field(queryir.AttrID, queryir.OpEquals, id)
}

// ProcessInstanceTenantID matches the tenant id exactly.
func (b *Builder) ProcessInstanceTenantID(tenantID string) *Builder {
	return b.field(queryir.AttrTenantID, queryir.OpEquals, tenantID)
}

// ProcessInstanceTenantIDLike matches the tenant id against a LIKE pattern.
func (b *Builder) ProcessInstanceTenantIDLike(p string) *Builder {
	return b.field(queryir.AttrTenantID, queryir.OpLike, p)
}

// ProcessInstanceTenantIDContains matches tenant ids containing literal.
// Wildcards in literal match themselves.
func (b *Builder) ProcessInstanceTenantIDContains(literal string) *Builder {
	return b.ProcessInstanceTenantIDLike(pattern.Contains(literal))
}

// ProcessInstanceName matches the instance name exactly.
func (b *Builder) ProcessInstanceName(name string) *Builder {
	return b.field(queryir.AttrName, queryir.OpEquals, name)
}

// ProcessInstanceNameLike matches the instance name against a LIKE pattern.
func (b *Builder) ProcessInstanceNameLike(p string) *Builder {
	return b.field(queryir.AttrName, queryir.OpLike, p)
}

// ProcessInstanceNameLikeIgnoreCase is ProcessInstanceNameLike after case
// folding both sides.
func (b *Builder) ProcessInstanceNameLikeIgnoreCase(p string) *Builder {
	return b.field(queryir.AttrName, queryir.OpLikeIgnoreCase, p)
}

// ProcessInstanceNameContains matches names containing literal.
func (b *Builder) ProcessInstanceNameContains(literal string) *Builder {
	return b.ProcessInstanceNameLike(pattern.Contains(literal))
}

// ProcessDefinitionID matches the process definition id exactly.
func (b *Builder) ProcessDefinitionID(id string) *Builder {
	return b.field(queryir.AttrProcessDefinitionID, queryir.OpEquals, id)
}

// ProcessDefinitionKey matches the process definition key exactly.
func (b *Builder) ProcessDefinitionKey(key string) *Builder {
	return b.field(queryir.AttrProcessDefinitionKey, queryir.OpEquals, key)
}

// VariableValueEquals matches instances whose variable name holds value.
// The stored type must match: Long(1) does not equal String("1").
func (b *Builder) VariableValueEquals(name string, value ir.Value) *Builder {
	return b.Condition(queryir.Variable(name), queryir.OpEquals, value)
}

// VariableValueLike matches instances with a string variable name whose
// value matches the LIKE pattern.
func (b *Builder) VariableValueLike(name, p string) *Builder {
	return b.Condition(queryir.Variable(name), queryir.OpLike, ir.String(p))
}

// VariableValueLikeIgnoreCase is VariableValueLike after case folding
// both sides.
func (b *Builder) VariableValueLikeIgnoreCase(name, p string) *Builder {
	return b.Condition(queryir.Variable(name), queryir.OpLikeIgnoreCase, ir.String(p))
}

// VariableValueContains matches string variables containing literal.
func (b *Builder) VariableValueContains(name, literal string) *Builder {
	return b.VariableValueLike(name, pattern.Contains(literal))
}

func (b *Builder) push(c queryir.Connective) *Builder {
	if b.err != nil {
		return b
	}
	sub := &scope{connective: c}
	cur := b.current()
	cur.items = append(cur.items, scopeItem{sub: sub})
	b.stack = append(b.stack, sub)
	return b
}

// Or opens an OR scope as a child of the current scope.
func (b *Builder) Or() *Builder {
	return b.push(queryir.Or)
}

// And opens a nested AND scope, typically inside an Or.
func (b *Builder) And() *Builder {
	return b.push(queryir.And)
}

// End closes the innermost open scope.
func (b *Builder) End() *Builder {
	if b.err != nil {
		return b
	}
	if len(b.stack) == 1 {
		b.err = &queryir.InvalidPredicateError{Reason: "End called with no open scope"}
		return b
	}
	b.stack = b.stack[:len(b.stack)-1]
	return b
}

// EndOr closes the innermost scope, which must be an Or scope.
func (b *Builder) EndOr() *Builder {
	if b.err != nil {
		return b
	}
	if len(b.stack) == 1 || b.current().connective != queryir.Or {
		b.err = &queryir.InvalidPredicateError{Reason: "EndOr called outside an Or scope"}
		return b
	}
	b.stack = b.stack[:len(b.stack)-1]
	return b
}

// Build closes all open scopes and returns an immutable snapshot of the
// tree, or the first construction error.
func (b *Builder) Build() (queryir.Group, error) {
	if b.err != nil {
		return queryir.Group{}, b.err
	}
	b.stack = b.stack[:1]
	return b.root.freeze(), nil
}

func (b *Builder) executor() (*Executor, queryir.Group, error) {
	g, err := b.Build()
	if err != nil {
		return nil, queryir.Group{}, err
	}
	if b.exec == nil {
		return nil, queryir.Group{}, errNoExecutor
	}
	return b.exec, g, nil
}

// List runs the query and returns every match ordered by id.
func (b *Builder) List(ctx context.Context) ([]ir.ProcessInstance, error) {
	exec, g, err := b.executor()
	if err != nil {
		return nil, err
	}
	return exec.List(ctx, g)
}

// SingleResult runs the query and returns the only match, nil if there is
// none, or a *NonUniqueResultError if there are several.
func (b *Builder) SingleResult(ctx context.Context) (*ir.ProcessInstance, error) {
	exec, g, err := b.executor()
	if err != nil {
		return nil, err
	}
	return exec.SingleResult(ctx, g)
}

// Count runs the query and returns the number of matches.
func (b *Builder) Count(ctx context.Context) (int64, error) {
	exec, g, err := b.executor()
	if err != nil {
		return 0, err
	}
	return exec.Count(ctx, g)
}
