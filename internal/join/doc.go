// Package join resolves association names into join clauses.
//
// Every distinct association path becomes exactly one aggregated subselect:
//
//	LEFT OUTER JOIN (
//	    SELECT "posts"."id" AS id,
//	           string_agg("comments"."body"::text, ' ') AS pg_search_<hash>
//	    FROM "posts"
//	    INNER JOIN "comments" ON "comments"."post_id" = "posts"."id"
//	    GROUP BY "posts"."id"
//	) pg_search_<hash> ON pg_search_<hash>.id = "posts"."id"
//
// Aggregating per root row keeps has_many associations from multiplying or
// dropping root rows. Two association names that reach the same tables
// through the same keys share one subselect; the same target table reached
// through different foreign keys gets its own.
package join
