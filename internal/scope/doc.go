// Package scope compiles a search scope and a query string into an
// ir.Fragment.
//
// Compilation has two phases. Prepare does everything that depends only on
// the declaration: association resolution, join planning, column
// qualification, feature selection and ranked_by checks. Its result is
// immutable and safe for concurrent use. Prepared.Compile does the per-query
// work: every feature compiles the query against the prepared columns and
// the results are composed.
//
// Composition:
//
//	condition  (c1 OR c2 ...)
//	rank       (r1 + r2 ...)  or the ranked_by template
//	order by   <rank> DESC, <order_within_rank | "root"."pk" ASC>
package scope
