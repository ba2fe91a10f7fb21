// Package sqlast provides the expression tree the search compiler builds
// before any SQL text exists.
//
// Feature compilers and the scope compiler assemble sqlast nodes; the
// sqlrender package turns them into text. Keeping the tree separate from the
// text lets the compiler check invariants (every column qualifier is the
// root table or a planned join alias) on structure instead of on strings.
//
// SEALED INTERFACE:
//
// Expr is a sealed interface using the marker method pattern. Only types in
// this package implement Expr, so renderers and validators can use
// exhaustive type switches:
//
//	switch e := expr.(type) {
//	case Ident:
//	    // column reference
//	case Func:
//	    // function call
//	...
//	}
//
// NODES:
//
//	Node       SQL
//	----       ---
//	Ident      "table"."column"
//	Literal    'text'            (quotes doubled)
//	Number     0, 0.5
//	Cast       expr::type
//	Func       name(arg, arg)
//	Infix      a op b op c
//	Group      (expr)
//	Template   text with :name placeholders bound to expressions
package sqlast
