package queryir

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/procquery/internal/ir"
)

// Predicate is a node in the predicate tree.
//
// This is a sealed interface - only Condition and Group implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
	String() string
}

// Fixed process-instance attributes.
const (
	AttrID                   = "id"
	AttrTenantID             = "tenantId"
	AttrName                 = "name"
	AttrProcessDefinitionID  = "processDefinitionId"
	AttrProcessDefinitionKey = "processDefinitionKey"
)

var fixedAttributes = map[string]bool{
	AttrID:                   true,
	AttrTenantID:             true,
	AttrName:                 true,
	AttrProcessDefinitionID:  true,
	AttrProcessDefinitionKey: true,
}

// IsFixedAttribute reports whether name is a known process-instance column.
func IsFixedAttribute(name string) bool {
	return fixedAttributes[name]
}

// AttributeKind distinguishes entity columns from variables.
type AttributeKind int

const (
	// KindField is a fixed process-instance attribute.
	KindField AttributeKind = iota
	// KindVariable is a process variable looked up by name.
	KindVariable
)

// Attribute identifies what a Condition filters on.
type Attribute struct {
	Kind AttributeKind
	Name string
}

// Field returns an Attribute for a fixed process-instance column.
func Field(name string) Attribute {
	return Attribute{Kind: KindField, Name: name}
}

// Variable returns an Attribute for the named process variable.
func Variable(name string) Attribute {
	return Attribute{Kind: KindVariable, Name: name}
}

func (a Attribute) String() string {
	if a.Kind == KindVariable {
		return "var:" + a.Name
	}
	return a.Name
}

// Operator is the comparison applied by a Condition.
type Operator int

const (
	// OpEquals is exact, case-sensitive equality.
	OpEquals Operator = iota
	// OpLike is LIKE matching with the '|' escape character.
	OpLike
	// OpLikeIgnoreCase is OpLike after case folding both sides.
	OpLikeIgnoreCase
)

func (o Operator) String() string {
	switch o {
	case OpEquals:
		return "="
	case OpLike:
		return "LIKE"
	case OpLikeIgnoreCase:
		return "ILIKE"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// IsLike reports whether o is a pattern-matching operator.
func (o Operator) IsLike() bool {
	return o == OpLike || o == OpLikeIgnoreCase
}

// Condition is a single attribute comparison.
//
// Example:
//
//	Condition{Attr: Field(AttrTenantID), Op: OpLike, Operand: ir.String("%|%%")}
//
// compiles to:
//
//	pi.tenant_id LIKE ? ESCAPE '|'
//
// Use NewCondition to get construction-time validation.
type Condition struct {
	Attr    Attribute
	Op      Operator
	Operand ir.Value
}

func (Condition) predicateNode() {}

func (c Condition) String() string {
	operand := "<nil>"
	if c.Operand != nil {
		operand = c.Operand.String()
	}
	return fmt.Sprintf("%s %s %s", c.Attr, c.Op, operand)
}

// NewCondition builds a Condition, rejecting structurally invalid input
// with an *InvalidPredicateError.
func NewCondition(attr Attribute, op Operator, operand ir.Value) (Condition, error) {
	c := Condition{Attr: attr, Op: op, Operand: operand}
	if err := checkCondition(c); err != nil {
		return Condition{}, err
	}
	return c, nil
}

// checkCondition holds the rules shared by NewCondition and Validate.
func checkCondition(c Condition) *InvalidPredicateError {
	attrName := c.Attr.String()

	switch c.Attr.Kind {
	case KindField:
		if !IsFixedAttribute(c.Attr.Name) {
			return &InvalidPredicateError{Attribute: attrName, Reason: "unknown attribute"}
		}
	case KindVariable:
		if strings.TrimSpace(c.Attr.Name) == "" {
			return &InvalidPredicateError{Attribute: attrName, Reason: "variable name is empty"}
		}
	default:
		return &InvalidPredicateError{Attribute: attrName, Reason: fmt.Sprintf("unknown attribute kind %d", c.Attr.Kind)}
	}

	if c.Op != OpEquals && !c.Op.IsLike() {
		return &InvalidPredicateError{Attribute: attrName, Reason: fmt.Sprintf("unknown operator %s", c.Op)}
	}

	if c.Operand == nil {
		return &InvalidPredicateError{Attribute: attrName, Reason: "operand is nil"}
	}

	_, isString := c.Operand.(ir.String)

	// Fixed columns are all text.
	if c.Attr.Kind == KindField && !isString {
		return &InvalidPredicateError{Attribute: attrName, Reason: fmt.Sprintf("operand must be a string, got %s", c.Operand.TypeName())}
	}

	if c.Op.IsLike() && !isString {
		return &InvalidPredicateError{Attribute: attrName, Reason: fmt.Sprintf("%s requires a string pattern, got %s", c.Op, c.Operand.TypeName())}
	}

	if c.Op == OpLikeIgnoreCase && c.Attr.Kind == KindField && c.Attr.Name == AttrID {
		return &InvalidPredicateError{Attribute: attrName, Reason: "case-insensitive matching is not supported on id"}
	}

	return nil
}

// Connective combines the children of a Group.
type Connective int

const (
	// And requires every child to hold. It is the default.
	And Connective = iota
	// Or requires at least one child to hold.
	Or
)

func (c Connective) String() string {
	if c == Or {
		return "OR"
	}
	return "AND"
}

// Group is a logical combination of predicates.
//
// Semantics:
//
//	<child1> <connective> <child2> <connective> ... <childN>
//
// An empty Group imposes no restriction, whatever its connective.
type Group struct {
	Connective Connective
	Children   []Predicate
}

func (Group) predicateNode() {}

// AllOf returns an And group of the given predicates.
func AllOf(children ...Predicate) Group {
	return Group{Connective: And, Children: children}
}

// AnyOf returns an Or group of the given predicates.
func AnyOf(children ...Predicate) Group {
	return Group{Connective: Or, Children: children}
}

// IsEmpty reports whether the group has no children.
func (g Group) IsEmpty() bool {
	return len(g.Children) == 0
}

// String renders the group in infix form. Children that impose no
// restriction (empty groups, or groups of them) are left out, as they are
// when compiling, so the text matches what runs.
func (g Group) String() string {
	parts := make([]string, 0, len(g.Children))
	for _, child := range g.Children {
		if isNilPredicate(child) {
			parts = append(parts, "<nil>")
			continue
		}
		if !Restricts(child) {
			continue
		}
		parts = append(parts, child.String())
	}
	if len(parts) == 0 {
		return "TRUE"
	}
	return "(" + strings.Join(parts, " "+g.Connective.String()+" ") + ")"
}

// Restricts reports whether p constrains the result. Conditions always do;
// a group does when at least one child does.
func Restricts(p Predicate) bool {
	switch n := p.(type) {
	case Group:
		return slices.ContainsFunc(n.Children, Restricts)
	case *Group:
		return n == nil || slices.ContainsFunc(n.Children, Restricts)
	default:
		return true
	}
}

func isNilPredicate(p Predicate) bool {
	switch n := p.(type) {
	case nil:
		return true
	case *Group:
		return n == nil
	case *Condition:
		return n == nil
	default:
		return false
	}
}

