package feature

import (
	"github.com/roach88/pgsearch/internal/ir"
	"github.com/roach88/pgsearch/internal/normalize"
	"github.com/roach88/pgsearch/internal/sqlast"
)

// Trigram compiles pg_trgm similarity matching over the columns joined
// with single spaces.
//
// Condition, without a threshold the % operator uses pg_trgm's own limit:
//
//	((<document>) % <query>)
//	(similarity((<document>), <query>) >= <threshold>)
//
// Rank:
//
//	(similarity((<document>), <query>))
//	(w1 * similarity(<col1>, <query>) + ...)    when weighted
type Trigram struct {
	opts ir.FeatureOptions
}

// NewTrigram returns the trigram feature.
func NewTrigram(opts ir.FeatureOptions) *Trigram {
	return &Trigram{opts: opts}
}

// Name implements Feature.
func (f *Trigram) Name() ir.FeatureName { return ir.FeatureTrigram }

// Check implements Feature. Trigram weights are plain multipliers, so only
// their sign is checked.
func (f *Trigram) Check(columns []Column) error {
	if err := requireColumns(ir.FeatureTrigram, columns); err != nil {
		return err
	}
	for _, c := range columns {
		if c.Weight <= 0 {
			return nonPositiveWeight(c)
		}
	}
	return nil
}

// Compile implements Feature.
func (f *Trigram) Compile(query string, columns []Column, n normalize.Normalizer) (Result, error) {
	if err := f.Check(columns); err != nil {
		return Result{}, err
	}
	q, err := PrepareQuery(query)
	if err != nil {
		return Result{}, err
	}

	parts := make([]sqlast.Expr, 0, 2*len(columns)-1)
	for i, c := range columns {
		if i > 0 {
			parts = append(parts, sqlast.Str(" "))
		}
		parts = append(parts, columnSQL(c.Ref))
	}
	doc := sqlast.Paren(n.Apply(sqlast.Join("||", parts...)))
	needle := n.Apply(sqlast.Str(q))

	var cond sqlast.Expr
	if f.opts.Threshold > 0 {
		cond = sqlast.Join(">=", sqlast.Call("similarity", doc, needle), sqlast.Number{Value: f.opts.Threshold})
	} else {
		cond = sqlast.Join("%", doc, needle)
	}

	return Result{
		Condition: sqlast.Paren(cond),
		Rank:      sqlast.Paren(f.rank(columns, doc, needle, n)),
	}, nil
}

func (f *Trigram) rank(columns []Column, doc, needle sqlast.Expr, n normalize.Normalizer) sqlast.Expr {
	weighted := false
	for _, c := range columns {
		if c.Weight != 1 {
			weighted = true
			break
		}
	}
	if !weighted {
		return sqlast.Call("similarity", doc, needle)
	}

	terms := make([]sqlast.Expr, len(columns))
	for i, c := range columns {
		sim := sqlast.Call("similarity", n.Apply(columnSQL(c.Ref)), needle)
		terms[i] = sqlast.Join("*", sqlast.Number{Value: c.Weight}, sim)
	}
	return sqlast.Join("+", terms...)
}
