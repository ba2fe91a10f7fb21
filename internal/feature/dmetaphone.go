package feature

import (
	"github.com/roach88/pgsearch/internal/ir"
	"github.com/roach88/pgsearch/internal/normalize"
)

// DMetaphone is tsearch over double-metaphone codes. Both the document and
// the query terms pass through pg_search_dmetaphone (outermost) and the
// dictionary is always "simple", since the codes are not natural language.
type DMetaphone struct {
	base *TSearch
}

// NewDMetaphone returns the dmetaphone feature.
func NewDMetaphone(opts ir.FeatureOptions) *DMetaphone {
	opts.Dictionary = DefaultDictionary
	opts.Negation = false
	return &DMetaphone{base: &TSearch{name: ir.FeatureDMetaphone, opts: opts}}
}

// Name implements Feature.
func (f *DMetaphone) Name() ir.FeatureName { return ir.FeatureDMetaphone }

// Check implements Feature.
func (f *DMetaphone) Check(columns []Column) error { return f.base.Check(columns) }

// Compile implements Feature.
func (f *DMetaphone) Compile(query string, columns []Column, n normalize.Normalizer) (Result, error) {
	return f.base.Compile(query, columns, n.With(normalize.FuncDMetaphone))
}
