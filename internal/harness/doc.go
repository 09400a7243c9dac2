// Package harness runs query conformance scenarios.
//
// A scenario seeds a fresh store with process instances and runs a list of
// CUE query documents against it, checking each result.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: escape_clause
//	description: "What this scenario validates"
//	instances:
//	  - tenant_id: "One%"
//	    process_definition_id: "oneTaskProcess:1:4"
//	    variables: { var1: "One%" }
//	queries:
//	  - name: tenant_like_percent
//	    query: |
//	      mode: "single"
//	      where: [{attr: "tenantId", like: "%|%%"}]
//	    expect:
//	      ids: [pi-0001]
//
// An expect clause holds exactly one of:
//
//   - ids: the matching instance ids, in result order ([] for none)
//   - count: the expected count (count mode)
//   - error: "non_unique", "invalid_predicate" or "invalid_query"
//
// # Deterministic Testing
//
// Instances without an id get sequential ids (pi-0001, pi-0002, ...) and
// every scenario runs in its own in-memory database, so traces are
// reproducible and suitable for golden file comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/escape_clause.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
