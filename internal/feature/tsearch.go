package feature

import (
	"github.com/roach88/pgsearch/internal/ir"
	"github.com/roach88/pgsearch/internal/normalize"
	"github.com/roach88/pgsearch/internal/sqlast"
)

// DefaultDictionary is the text search configuration used when none is set.
const DefaultDictionary = "simple"

// TSearch compiles PostgreSQL full-text search.
//
// Condition:
//
//	((<document>) @@ (<tsquery>))
//
// Rank:
//
//	(ts_rank([<weights>,] (<document>), (<tsquery>), <normalization>))
type TSearch struct {
	name ir.FeatureName
	opts ir.FeatureOptions
}

// NewTSearch returns the tsearch feature with defaults applied.
func NewTSearch(opts ir.FeatureOptions) *TSearch {
	if opts.Dictionary == "" {
		opts.Dictionary = DefaultDictionary
	}
	return &TSearch{name: ir.FeatureTSearch, opts: opts}
}

// Name implements Feature.
func (f *TSearch) Name() ir.FeatureName { return f.name }

// Dictionary returns the text search configuration in effect.
func (f *TSearch) Dictionary() string { return f.opts.Dictionary }

// Check implements Feature.
func (f *TSearch) Check(columns []Column) error {
	if err := requireColumns(f.name, columns); err != nil {
		return err
	}
	_, err := planWeights(columns)
	return err
}

// Compile implements Feature.
func (f *TSearch) Compile(query string, columns []Column, n normalize.Normalizer) (Result, error) {
	if err := requireColumns(f.name, columns); err != nil {
		return Result{}, err
	}
	q, err := PrepareQuery(query)
	if err != nil {
		return Result{}, err
	}
	terms, err := splitTerms(q, f.opts.Negation)
	if err != nil {
		return Result{}, err
	}
	weights, err := planWeights(columns)
	if err != nil {
		return Result{}, err
	}

	doc := sqlast.Paren(f.document(columns, weights, n))
	tsq := sqlast.Paren(f.tsquery(terms, n))

	var rankArgs []sqlast.Expr
	if weights.weighted {
		rankArgs = append(rankArgs, sqlast.Str(weights.array))
	}
	rankArgs = append(rankArgs, doc, tsq, sqlast.Number{Value: float64(f.opts.Normalization)})

	return Result{
		Condition: sqlast.Paren(sqlast.Join("@@", doc, tsq)),
		Rank:      sqlast.Paren(sqlast.Call("ts_rank", rankArgs...)),
	}, nil
}

// document concatenates one tsvector per column.
func (f *TSearch) document(columns []Column, weights weightPlan, n normalize.Normalizer) sqlast.Expr {
	vectors := make([]sqlast.Expr, len(columns))
	for i, c := range columns {
		var tsv sqlast.Expr = sqlast.Call("to_tsvector", sqlast.Str(f.opts.Dictionary), n.Apply(columnSQL(c.Ref)))
		if weights.weighted {
			tsv = sqlast.Call("setweight", tsv, sqlast.Str(weights.labels[i]))
		}
		vectors[i] = tsv
	}
	return sqlast.Join("||", vectors...)
}

// tsquery combines the per-term queries with && (all words) or || (any word).
func (f *TSearch) tsquery(terms []term, n normalize.Normalizer) sqlast.Expr {
	parts := make([]sqlast.Expr, len(terms))
	for i, t := range terms {
		parts[i] = f.termQuery(t, n)
	}
	op := "&&"
	if f.opts.AnyWord {
		op = "||"
	}
	return sqlast.Join(op, parts...)
}

// termQuery quotes a single term as a tsquery phrase:
//
//	to_tsquery('simple', [ '!' || ] ''' ' || <norm>('term') || ' ''' [ || ':*' ])
//
// The normalized term sits between quote literals so the value is matched
// as text even after functions like pg_search_dmetaphone rewrite it.
func (f *TSearch) termQuery(t term, n normalize.Normalizer) sqlast.Expr {
	var parts []sqlast.Expr
	if t.negated {
		parts = append(parts, sqlast.Str("!"))
	}
	parts = append(parts, sqlast.Str("' "), n.Apply(sqlast.Str(t.text)), sqlast.Str(" '"))
	if f.opts.Prefix {
		parts = append(parts, sqlast.Str(":*"))
	}
	return sqlast.Call("to_tsquery", sqlast.Str(f.opts.Dictionary), sqlast.Join("||", parts...))
}
