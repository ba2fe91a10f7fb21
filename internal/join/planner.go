package join

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/pgsearch/internal/catalog"
	"github.com/roach88/pgsearch/internal/ir"
)

// Request asks for columns reachable through an association name.
// Names may be dotted ("comments.author") to follow several relations.
type Request struct {
	Association string
	Columns     []string
}

// Planner resolves association requests against a catalog.
type Planner struct {
	catalog catalog.Catalog
	logger  *slog.Logger
}

// NewPlanner creates a planner. A nil logger discards output.
func NewPlanner(c catalog.Catalog, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Planner{catalog: c, logger: logger}
}

// RootModel looks up the model a scope searches.
func (p *Planner) RootModel(name string) (ir.Model, error) {
	m, ok := p.catalog.Model(name)
	if !ok {
		return ir.Model{}, &ir.ConfigurationError{
			Option:  "model",
			Message: fmt.Sprintf("unknown model %q", name),
		}
	}
	return m, nil
}

// Plan resolves every request and merges structurally identical paths.
// Handles keep the order in which their first association was requested.
func (p *Planner) Plan(root string, requests []Request) (*Plan, error) {
	model, err := p.RootModel(root)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Root:   model,
		byName: make(map[string]*Handle),
	}
	byKey := make(map[string]*Handle)

	for _, req := range requests {
		if h, ok := plan.byName[req.Association]; ok {
			h.addColumns(req.Columns)
			continue
		}

		path, err := p.resolve(model, req.Association, "associated_against")
		if err != nil {
			return nil, err
		}

		key := path.Key()
		h, ok := byKey[key]
		if ok {
			p.logger.Debug("association shares an existing join",
				"association", req.Association,
				"joined_as", h.Associations[0],
				"alias", h.Alias)
		} else {
			h = &Handle{
				Alias: ir.Alias(model.Table, key),
				Path:  path,
			}
			byKey[key] = h
			plan.handles = append(plan.handles, h)
		}
		h.Associations = append(h.Associations, req.Association)
		h.addColumns(req.Columns)
		plan.byName[req.Association] = h
	}

	for _, h := range plan.handles {
		if len(h.Columns) == 0 {
			return nil, &ir.ConfigurationError{
				Association: h.Associations[0],
				Option:      "associated_against",
				Message:     "association has no columns to search",
			}
		}
		h.Clause = subselectClause(model, h)
	}

	p.logger.Debug("join plan built",
		"root", model.Table,
		"associations", len(plan.byName),
		"joins", len(plan.handles))
	return plan, nil
}

// PlainJoins resolves the scope's extra joins into bare INNER JOIN clauses.
// They restrict the result to rows that have the association but contribute
// no searchable columns.
func (p *Planner) PlainJoins(root string, names []string) ([]ir.JoinHandle, error) {
	model, err := p.RootModel(root)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []ir.JoinHandle
	for _, name := range names {
		path, err := p.resolve(model, name, "joins")
		if err != nil {
			return nil, err
		}
		key := path.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		out = append(out, ir.JoinHandle{
			Alias:        ir.Alias(model.Table, "joins", key),
			Associations: []string{name},
			Path:         path,
			Clause:       strings.Join(innerJoins(path), " "),
		})
	}
	return out, nil
}

// resolve walks a dotted association name hop by hop.
func (p *Planner) resolve(root ir.Model, name, option string) (ir.AssociationPath, error) {
	fail := func(format string, args ...any) error {
		return &ir.ConfigurationError{
			Association: name,
			Option:      option,
			Message:     fmt.Sprintf(format, args...),
		}
	}

	if name == "" {
		return ir.AssociationPath{}, fail("association name is empty")
	}

	path := ir.AssociationPath{Root: root.Table}
	current := root
	for _, relName := range strings.Split(name, ".") {
		rel, ok := p.catalog.Relation(current.Name, relName)
		if !ok {
			return ir.AssociationPath{}, fail("model %q has no association %q", current.Name, relName)
		}
		if !rel.SupportsJoin() {
			return ir.AssociationPath{}, fail("association %q is %s and cannot be joined", relName, rel.Kind)
		}
		target, ok := p.catalog.Model(rel.Target)
		if !ok {
			return ir.AssociationPath{}, fail("association %q targets unknown model %q", relName, rel.Target)
		}

		hop := ir.Hop{
			Relation:  relName,
			Kind:      rel.Kind,
			FromTable: current.Table,
			ToTable:   target.Table,
		}
		if rel.Kind == ir.BelongsTo {
			hop.FromKey, hop.ToKey = rel.ForeignKey, target.PrimaryKey
		} else {
			hop.FromKey, hop.ToKey = current.PrimaryKey, rel.ForeignKey
		}
		path.Hops = append(path.Hops, hop)
		current = target
	}
	return path, nil
}
