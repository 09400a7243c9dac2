// Package query composes and executes process-instance queries.
//
// A Builder assembles a predicate tree through fluent calls. Or() and And()
// open nested scopes; End() and EndOr() close them. The resulting
// queryir.Group is compiled by querysql and run by an Executor, which
// enforces the result mode:
//
//	pi, err := exec.NewQuery().
//		Or().
//		ProcessInstanceTenantIDLike("%|%%").
//		ProcessDefinitionID("undefined").
//		SingleResult(ctx)
//
// Patterns passed to the *Like methods are used verbatim with '|' as the
// escape character. The *Contains methods escape a literal first.
package query
