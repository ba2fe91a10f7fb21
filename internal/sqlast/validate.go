package sqlast

import (
	"fmt"
	"sort"
)

// ValidationResult contains the structural problems found in an expression.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems lists every violation found, in traversal order.
	Problems []string
}

// Validate checks an expression tree for structural problems:
//  1. nil nodes, empty identifiers and empty function names
//  2. Infix nodes with fewer than two operands
//  3. Template placeholders with no bound argument
//  4. column qualifiers outside the allowed set (when allowed is non-nil)
//
// Validate is a pure function with no side effects.
func Validate(expr Expr, allowed map[string]bool) ValidationResult {
	v := &validator{allowed: allowed}
	v.validate(expr)

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// Qualifiers returns the distinct column qualifiers referenced by the
// expression, sorted.
func Qualifiers(expr Expr) []string {
	seen := make(map[string]bool)
	Walk(expr, func(e Expr) {
		if id, ok := e.(Ident); ok && id.Qualifier != "" {
			seen[id.Qualifier] = true
		}
	})

	out := make([]string, 0, len(seen))
	for q := range seen {
		out = append(out, q)
	}
	sort.Strings(out)
	return out
}

// Walk calls fn for every node in the tree, parents before children.
// Template arguments are visited in sorted placeholder-name order.
func Walk(expr Expr, fn func(Expr)) {
	if expr == nil {
		return
	}
	fn(expr)

	switch e := expr.(type) {
	case Cast:
		Walk(e.Expr, fn)
	case Func:
		for _, arg := range e.Args {
			Walk(arg, fn)
		}
	case Infix:
		for _, op := range e.Operands {
			Walk(op, fn)
		}
	case Group:
		Walk(e.Expr, fn)
	case Template:
		names := make([]string, 0, len(e.Args))
		for name := range e.Args {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			Walk(e.Args[name], fn)
		}
	}
}

// validator accumulates problems during traversal.
type validator struct {
	allowed  map[string]bool
	problems []string
}

// addProblem appends a problem message.
func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validate(expr Expr) {
	if expr == nil {
		v.addProblem("nil expression")
		return
	}

	switch e := expr.(type) {
	case Ident:
		if e.Name == "" {
			v.addProblem("identifier with empty name")
		}
		if e.Qualifier != "" && v.allowed != nil && !v.allowed[e.Qualifier] {
			v.addProblem("column %q is qualified by %q, which is neither the root table nor a planned join", e.Name, e.Qualifier)
		}
	case Literal, Number:
		// Always valid
	case Cast:
		if e.Type == "" {
			v.addProblem("cast with empty type")
		}
		v.validate(e.Expr)
	case Func:
		if e.Name == "" {
			v.addProblem("function call with empty name")
		}
		for _, arg := range e.Args {
			v.validate(arg)
		}
	case Infix:
		if len(e.Operands) < 2 {
			v.addProblem("operator %q needs at least two operands, got %d", e.Op, len(e.Operands))
		}
		for _, op := range e.Operands {
			v.validate(op)
		}
	case Group:
		v.validate(e.Expr)
	case Template:
		for _, ph := range Placeholders(e.Text) {
			if _, ok := e.Args[ph.Name]; !ok {
				v.addProblem("template placeholder :%s has no bound expression", ph.Name)
			}
		}
		names := make([]string, 0, len(e.Args))
		for name := range e.Args {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			v.validate(e.Args[name])
		}
	default:
		v.addProblem("unknown expression type: %T", expr)
	}
}
