// Package normalize wraps column and query expressions in the text
// transforms configured for a scope, so both sides of a comparison go through
// exactly the same pipeline.
package normalize

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/pgsearch/internal/ir"
	"github.com/roach88/pgsearch/internal/sqlast"
)

// SQL functions used as normalization steps.
const (
	FuncUnaccent   = "unaccent"
	FuncLower      = "lower"
	FuncDMetaphone = "pg_search_dmetaphone"
)

// stepOrder fixes the nesting of configured steps, innermost first, so the
// order of the ignoring list never changes the generated SQL.
var stepOrder = []string{ir.IgnoreAccents, ir.IgnoreCase}

var stepFuncs = map[string]string{
	ir.IgnoreAccents: FuncUnaccent,
	ir.IgnoreCase:    FuncLower,
}

// Normalizer is an immutable pipeline of single-argument SQL functions.
// The zero value applies no transforms.
type Normalizer struct {
	funcs []string // innermost first
}

// New builds the normalizer for a scope's ignoring list.
// Unknown entries are a ConfigurationError naming the "ignoring" option.
func New(ignoring []string) (Normalizer, error) {
	want := make(map[string]bool, len(ignoring))
	for _, step := range ignoring {
		if !ir.ValidIgnoring[step] {
			return Normalizer{}, &ir.ConfigurationError{
				Option:  "ignoring",
				Message: fmt.Sprintf("unknown normalization %q (valid: %s)", step, strings.Join(stepOrder, ", ")),
			}
		}
		want[step] = true
	}

	var n Normalizer
	for _, step := range stepOrder {
		if want[step] {
			n.funcs = append(n.funcs, stepFuncs[step])
		}
	}
	return n, nil
}

// With returns a copy of the normalizer with fn applied outermost.
func (n Normalizer) With(fn string) Normalizer {
	funcs := make([]string, len(n.funcs), len(n.funcs)+1)
	copy(funcs, n.funcs)
	return Normalizer{funcs: append(funcs, fn)}
}

// Apply wraps expr in every step, innermost first.
func (n Normalizer) Apply(expr sqlast.Expr) sqlast.Expr {
	for _, fn := range n.funcs {
		expr = sqlast.Call(fn, expr)
	}
	return expr
}

// Steps returns the SQL function names, innermost first.
func (n Normalizer) Steps() []string {
	out := make([]string, len(n.funcs))
	copy(out, n.funcs)
	return out
}

// Query prepares raw query text for quoting: NFC-normalizes it so composed
// and decomposed forms of the same characters compile to the same SQL.
func Query(raw string) string {
	return norm.NFC.String(raw)
}
