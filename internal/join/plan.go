package join

import (
	"fmt"
	"strings"

	"github.com/roach88/pgsearch/internal/ir"
	"github.com/roach88/pgsearch/internal/sqlast"
	"github.com/roach88/pgsearch/internal/sqlrender"
)

// Plan is the resolved set of joins for one scope. It is immutable once
// returned by Planner.Plan.
type Plan struct {
	Root    ir.Model
	handles []*Handle
	byName  map[string]*Handle
}

// Handle returns the join serving an association name.
func (p *Plan) Handle(association string) (*Handle, bool) {
	h, ok := p.byName[association]
	return h, ok
}

// Handles returns the distinct joins in request order.
func (p *Plan) Handles() []*Handle {
	out := make([]*Handle, len(p.handles))
	copy(out, p.handles)
	return out
}

// Qualifiers returns every qualifier a fragment may reference: the root
// table and each join alias.
func (p *Plan) Qualifiers() map[string]bool {
	out := map[string]bool{p.Root.Table: true}
	for _, h := range p.handles {
		out[h.Alias] = true
	}
	return out
}

// JoinHandles converts the plan into the fragment's join list.
func (p *Plan) JoinHandles() []ir.JoinHandle {
	out := make([]ir.JoinHandle, len(p.handles))
	for i, h := range p.handles {
		out[i] = h.IR()
	}
	return out
}

// Handle is one materialized subselect join.
type Handle struct {
	Alias        string
	Path         ir.AssociationPath
	Associations []string // every name served, first requested first
	Columns      []string // union of requested columns, first seen first
	Clause       string
}

func (h *Handle) addColumns(columns []string) {
	for _, c := range columns {
		if !h.hasColumn(c) {
			h.Columns = append(h.Columns, c)
		}
	}
}

func (h *Handle) hasColumn(name string) bool {
	for _, c := range h.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ColumnAlias names the aggregated column in the subselect.
func (h *Handle) ColumnAlias(column string) string {
	return ir.Alias(h.Alias, column)
}

// Ref returns the outer-query reference to an aggregated column.
func (h *Handle) Ref(column string) (sqlast.Ident, bool) {
	if !h.hasColumn(column) {
		return sqlast.Ident{}, false
	}
	return sqlast.Col(h.Alias, h.ColumnAlias(column)), true
}

// IR returns the serializable form of the handle.
func (h *Handle) IR() ir.JoinHandle {
	return ir.JoinHandle{
		Alias:        h.Alias,
		Associations: append([]string(nil), h.Associations...),
		Path:         h.Path,
		Columns:      append([]string(nil), h.Columns...),
		Clause:       h.Clause,
	}
}

// hopQualifiers names each table of a path inside one statement. A table
// already used earlier in the path (the root included) is aliased as
// <relation>_<table>, then <relation>_<table>_2, _3 and so on until the
// name is free.
func hopQualifiers(path ir.AssociationPath) []string {
	used := map[string]bool{path.Root: true}
	out := make([]string, len(path.Hops))
	for i, hop := range path.Hops {
		q := hop.ToTable
		if used[q] {
			base := hop.Relation + "_" + hop.ToTable
			q = base
			for n := 2; used[q]; n++ {
				q = fmt.Sprintf("%s_%d", base, n)
			}
		}
		used[q] = true
		out[i] = q
	}
	return out
}

// innerJoins renders one INNER JOIN per hop.
func innerJoins(path ir.AssociationPath) []string {
	quals := hopQualifiers(path)
	from := path.Root
	clauses := make([]string, len(path.Hops))
	for i, hop := range path.Hops {
		target := sqlrender.QuoteIdent(hop.ToTable)
		if quals[i] != hop.ToTable {
			target += " " + sqlrender.QuoteIdent(quals[i])
		}
		clauses[i] = fmt.Sprintf("INNER JOIN %s ON %s.%s = %s.%s",
			target,
			sqlrender.QuoteIdent(quals[i]), sqlrender.QuoteIdent(hop.ToKey),
			sqlrender.QuoteIdent(from), sqlrender.QuoteIdent(hop.FromKey))
		from = quals[i]
	}
	return clauses
}

// subselectClause renders the aggregated LEFT OUTER JOIN for a handle.
func subselectClause(root ir.Model, h *Handle) string {
	quals := hopQualifiers(h.Path)
	target := quals[len(quals)-1]
	pk := sqlrender.QuoteIdent(root.Table) + "." + sqlrender.QuoteIdent(root.PrimaryKey)

	selects := []string{pk + " AS id"}
	for _, c := range h.Columns {
		ref := sqlrender.QuoteIdent(target) + "." + sqlrender.QuoteIdent(c)
		selects = append(selects, fmt.Sprintf("string_agg(%s::text, ' ') AS %s", ref, h.ColumnAlias(c)))
	}

	var b strings.Builder
	b.WriteString("LEFT OUTER JOIN (SELECT ")
	b.WriteString(strings.Join(selects, ", "))
	b.WriteString(" FROM ")
	b.WriteString(sqlrender.QuoteIdent(root.Table))
	for _, j := range innerJoins(h.Path) {
		b.WriteByte(' ')
		b.WriteString(j)
	}
	b.WriteString(" GROUP BY ")
	b.WriteString(pk)
	b.WriteString(") ")
	b.WriteString(h.Alias)
	b.WriteString(" ON ")
	b.WriteString(h.Alias)
	b.WriteString(".id = ")
	b.WriteString(pk)
	return b.String()
}
