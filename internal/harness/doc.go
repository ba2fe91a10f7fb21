// Package harness runs search scenarios against compiled fragments.
//
// A scenario names a config file, one of its scopes and a query. The
// harness compiles the query with the scope compiler, checks the fragment
// against the scenario's assertions and, for golden scenarios, compares the
// full statement with a snapshot.
//
// # Scenario Format
//
//	name: one_join_for_two_columns
//	description: "Two columns of one association share a join"
//	config: ../configs/associations.cue
//	scope: belongs_to_two_columns
//	query: foo bar
//	golden: true
//	assertions:
//	  - type: join_count
//	    count: 1
//	  - type: inner_join_count
//	    count: 1
//	  - type: contains
//	    section: condition
//	    text: "@@"
//	  - type: join_associations
//	    index: 0
//	    associations: [another_model]
//	  - type: error
//	    kind: configuration
//	    option: associated_against
//	    text: "has no association"
//
// The config path is resolved relative to the scenario file.
//
// # Assertion Types
//
//   - join_count: number of joins attached to the fragment
//   - inner_join_count: INNER JOIN clauses across all joins
//   - contains / not_contains: substring of a section (condition, rank,
//     order_by, joins, statement)
//   - join_associations: association names served by one join
//   - error: compilation fails with the given error kind and option
//
// Every successful compile is repeated once and the fingerprints compared,
// so any scenario also checks that compilation is deterministic.
//
// # Golden Files
//
// Golden scenarios snapshot the rendered statement (or the error text) in
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
