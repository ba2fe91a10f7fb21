// Package feature implements the text-matching strategies a scope can
// enable. The set is closed: tsearch, dmetaphone and trigram, selected by
// name through New.
//
// Every feature turns (query, columns, normalizer) into a condition and a
// rank expression built from the same normalized document, so a row never
// ranks without matching or matches without ranking.
package feature

import (
	"fmt"

	"github.com/roach88/pgsearch/internal/ir"
	"github.com/roach88/pgsearch/internal/normalize"
	"github.com/roach88/pgsearch/internal/sqlast"
	"github.com/roach88/pgsearch/internal/sqlrender"
)

// Column is a searchable column whose reference has already been qualified
// (by the root table or by a join alias).
type Column struct {
	Name   string // as declared: "title" or "comments.body"
	Ref    sqlast.Expr
	Weight float64 // effective weight, 1 = unweighted
}

// label names the column in error messages, falling back to its SQL.
func (c Column) label() string {
	if c.Name != "" {
		return c.Name
	}
	if sql, err := sqlrender.Render(c.Ref); err == nil {
		return sql
	}
	return "column"
}

// nonPositiveWeight is the error for a column weight of zero or less.
func nonPositiveWeight(c Column) error {
	return &ir.ConfigurationError{
		Option:  "against",
		Message: fmt.Sprintf("column %s: weight must be positive, got %s", c.label(), sqlrender.FormatNumber(c.Weight)),
	}
}

// Result is one feature's contribution to a compiled fragment.
type Result struct {
	Condition sqlast.Expr
	Rank      sqlast.Expr
}

// Feature compiles a query against a set of columns.
type Feature interface {
	Name() ir.FeatureName

	// Check reports column problems that do not depend on the query, such
	// as an empty column set or unsupported weights.
	Check(columns []Column) error

	Compile(query string, columns []Column, n normalize.Normalizer) (Result, error)
}

// Option names, as written in configuration.
const (
	OptDictionary    = "dictionary"
	OptPrefix        = "prefix"
	OptAnyWord       = "any_word"
	OptNegation      = "negation"
	OptNormalization = "normalization"
	OptThreshold     = "threshold"
)

// Options lists the options each feature accepts.
var Options = map[ir.FeatureName][]string{
	ir.FeatureTSearch:    {OptDictionary, OptPrefix, OptAnyWord, OptNegation, OptNormalization},
	ir.FeatureDMetaphone: {OptPrefix, OptAnyWord, OptNormalization},
	ir.FeatureTrigram:    {OptThreshold},
}

// Accepts reports whether the feature takes the named option.
func Accepts(name ir.FeatureName, option string) bool {
	for _, opt := range Options[name] {
		if opt == option {
			return true
		}
	}
	return false
}

// New returns the feature compiler for a configuration entry.
func New(cfg ir.FeatureConfig) (Feature, error) {
	switch cfg.Name {
	case ir.FeatureTSearch:
		return NewTSearch(cfg.Options), nil
	case ir.FeatureDMetaphone:
		return NewDMetaphone(cfg.Options), nil
	case ir.FeatureTrigram:
		return NewTrigram(cfg.Options), nil
	default:
		return nil, &ir.ConfigurationError{
			Option:  "using",
			Message: fmt.Sprintf("unknown feature %q", cfg.Name),
		}
	}
}

// columnSQL makes a column reference null-safe: NULL becomes ''.
//
//	coalesce(<ref>::text, '')
func columnSQL(ref sqlast.Expr) sqlast.Expr {
	return sqlast.Call("coalesce", sqlast.Cast{Expr: ref, Type: "text"}, sqlast.Str(""))
}

// requireColumns rejects an empty column set.
func requireColumns(name ir.FeatureName, columns []Column) error {
	if len(columns) == 0 {
		return &ir.ConfigurationError{
			Option:  "against",
			Message: fmt.Sprintf("feature %s has no columns to search", name),
		}
	}
	return nil
}
