// Package queryir provides the predicate tree for process-instance queries.
//
// The IR sits between the fluent query builder and the SQL backend:
//
//	[query.Builder] → [queryir.Group] → [querysql.Compiler] → SQLite
//
// A Condition is one attribute/operator/operand triple. A Group combines
// Conditions and nested Groups under a single Connective (And or Or).
// Arbitrary boolean expressions come from nesting.
//
// ATTRIBUTES:
//
// An Attribute is either a fixed process-instance column (id, tenantId,
// name, processDefinitionId, processDefinitionKey) or a named variable.
// Variable conditions are resolved by the backend as a join on
// (instance id, variable name) and filter on the variable's value.
//
// OPERATORS:
//
//	Equals          exact, case-sensitive equality (type-aware for variables)
//	Like            LIKE with '|' as escape character; operand used verbatim
//	LikeIgnoreCase  Like after case folding both sides
//
// The IR never escapes operands. Callers that start from a raw literal
// escape it with the pattern package before building the Condition.
//
// SEALED INTERFACES:
//
// Predicate is sealed using the marker method pattern, enabling
// exhaustive type switches in backends:
//
//	switch p := pred.(type) {
//	case Condition:
//	case Group:
//	}
//
// IMMUTABILITY:
//
// Once built, a Group is treated as immutable. Clone returns a deep copy
// for callers that need to derive a new tree from an existing one.
package queryir
