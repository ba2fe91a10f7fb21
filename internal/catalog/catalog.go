package catalog

import (
	"fmt"
	"sort"

	"github.com/roach88/pgsearch/internal/ir"
)

// Catalog answers association metadata lookups.
type Catalog interface {
	// Model returns the model with the given name.
	Model(name string) (ir.Model, bool)

	// Relation returns the named relation declared on a model.
	Relation(model, name string) (ir.Relation, bool)
}

// DefaultPrimaryKey is assumed when a model declares none.
const DefaultPrimaryKey = "id"

// Static is an immutable in-memory catalog.
type Static struct {
	models    map[string]ir.Model
	relations map[string]map[string]ir.Relation // source model -> name -> relation
}

var _ Catalog = (*Static)(nil)

// New validates models and relations and builds a catalog.
//
// Models default their table to their name and their primary key to "id".
// Every relation must name a known source model and, unless polymorphic,
// a known target model and a foreign key.
func New(models []ir.Model, relations []ir.Relation) (*Static, error) {
	s := &Static{
		models:    make(map[string]ir.Model, len(models)),
		relations: make(map[string]map[string]ir.Relation),
	}

	for _, m := range models {
		if m.Name == "" {
			return nil, &ir.ConfigurationError{Option: "model", Message: "model name is required"}
		}
		if _, dup := s.models[m.Name]; dup {
			return nil, &ir.ConfigurationError{Option: "model", Message: fmt.Sprintf("model %q declared twice", m.Name)}
		}
		if m.Table == "" {
			m.Table = m.Name
		}
		if m.PrimaryKey == "" {
			m.PrimaryKey = DefaultPrimaryKey
		}
		s.models[m.Name] = m
	}

	for _, r := range relations {
		if err := s.addRelation(r); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Static) addRelation(r ir.Relation) error {
	fail := func(format string, args ...any) error {
		return &ir.ConfigurationError{
			Association: r.Name,
			Option:      "relation",
			Message:     fmt.Sprintf(format, args...),
		}
	}

	if r.Name == "" {
		return fail("relation on model %q has no name", r.Source)
	}
	if !ir.ValidRelationKinds[r.Kind] {
		return fail("unknown relation kind %q", r.Kind)
	}
	if _, ok := s.models[r.Source]; !ok {
		return fail("source model %q is not declared", r.Source)
	}
	if r.Kind != ir.Polymorphic {
		if _, ok := s.models[r.Target]; !ok {
			return fail("target model %q is not declared", r.Target)
		}
		if r.ForeignKey == "" {
			return fail("foreign_key is required")
		}
	}

	byName := s.relations[r.Source]
	if byName == nil {
		byName = make(map[string]ir.Relation)
		s.relations[r.Source] = byName
	}
	if _, dup := byName[r.Name]; dup {
		return fail("relation declared twice on model %q", r.Source)
	}
	byName[r.Name] = r
	return nil
}

// Model implements Catalog.
func (s *Static) Model(name string) (ir.Model, bool) {
	m, ok := s.models[name]
	return m, ok
}

// Relation implements Catalog.
func (s *Static) Relation(model, name string) (ir.Relation, bool) {
	r, ok := s.relations[model][name]
	return r, ok
}

// Models returns every model sorted by name.
func (s *Static) Models() []ir.Model {
	out := make([]ir.Model, 0, len(s.models))
	for _, m := range s.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Relations returns the relations declared on a model sorted by name.
func (s *Static) Relations(model string) []ir.Relation {
	byName := s.relations[model]
	out := make([]ir.Relation, 0, len(byName))
	for _, r := range byName {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
