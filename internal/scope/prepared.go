package scope

import (
	"fmt"
	"strings"

	"github.com/roach88/pgsearch/internal/ir"
	"github.com/roach88/pgsearch/internal/join"
	"github.com/roach88/pgsearch/internal/sqlast"
	"github.com/roach88/pgsearch/internal/sqlrender"
)

// Scope returns the declaration the value was prepared from.
func (p *Prepared) Scope() ir.Scope { return p.scope }

// Root returns the searched model.
func (p *Prepared) Root() ir.Model { return p.root }

// Plan returns the association join plan.
func (p *Prepared) Plan() *join.Plan { return p.plan }

// Joins returns every join the fragment carries: association subselects
// first, then plain joins.
func (p *Prepared) Joins() []ir.JoinHandle {
	joins := p.plan.JoinHandles()
	return append(joins, p.plainJoins...)
}

// Compile builds the fragment for one query. A blank query is an
// ArgumentError naming "query".
func (p *Prepared) Compile(query string) (*ir.Fragment, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ir.NewBlankQueryError()
	}

	conditions := make([]sqlast.Expr, 0, len(p.features))
	ranks := make([]sqlast.Expr, 0, len(p.features))
	byName := make(map[string]sqlast.Expr, len(p.features))
	for _, f := range p.features {
		res, err := f.feature.Compile(query, f.columns, p.normalizer)
		if err != nil {
			return nil, tagScope(err, p.scope.Name)
		}
		conditions = append(conditions, res.Condition)
		ranks = append(ranks, res.Rank)
		byName[string(f.feature.Name())] = res.Rank
	}

	condition := combine("OR", conditions)
	rank := combine("+", ranks)
	if p.scope.RankedBy != "" {
		rank = sqlast.Paren(sqlast.Template{Text: p.scope.RankedBy, Args: byName})
	}

	if err := p.validate("condition", condition); err != nil {
		return nil, err
	}
	if err := p.validate("rank", rank); err != nil {
		return nil, err
	}

	condSQL, err := sqlrender.Render(condition)
	if err != nil {
		return nil, fmt.Errorf("render condition: %w", err)
	}
	rankSQL, err := sqlrender.Render(rank)
	if err != nil {
		return nil, fmt.Errorf("render rank: %w", err)
	}

	f := &ir.Fragment{
		Table:     p.root.Table,
		Condition: condSQL,
		Rank:      rankSQL,
		OrderBy:   rankSQL + " DESC, " + p.orderTail,
		Joins:     p.Joins(),
	}

	p.logger.Debug("query compiled",
		"scope", p.scope.Name,
		"fingerprint", f.Fingerprint())
	return f, nil
}

// validate checks that the expression only references the root table and
// planned joins.
func (p *Prepared) validate(what string, expr sqlast.Expr) error {
	if res := sqlast.Validate(expr, p.qualifiers); !res.Valid {
		return fmt.Errorf("compiled %s is invalid: %s", what, strings.Join(res.Problems, "; "))
	}
	return nil
}

// combine joins several expressions with op inside parentheses; a single
// expression is returned as is.
func combine(op string, exprs []sqlast.Expr) sqlast.Expr {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return sqlast.Paren(sqlast.Join(op, exprs...))
}

// RankColumn is the alias of the rank in Statement output.
const RankColumn = "pg_search_rank"

// Statement renders a complete SELECT around a fragment:
//
//	SELECT "t".*, <rank> AS pg_search_rank FROM "t" <joins> WHERE <condition> ORDER BY <order_by>
func Statement(f *ir.Fragment) string {
	table := sqlrender.QuoteIdent(f.Table)

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s.*, %s AS %s FROM %s", table, f.Rank, RankColumn, table)
	if joins := f.JoinSQL(); joins != "" {
		b.WriteByte(' ')
		b.WriteString(joins)
	}
	fmt.Fprintf(&b, " WHERE %s ORDER BY %s", f.Condition, f.OrderBy)
	return b.String()
}
