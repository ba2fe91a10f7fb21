package ir

import (
	"fmt"
	"strings"
)

// FeatureName identifies a text-matching strategy.
type FeatureName string

const (
	// FeatureTSearch is lexical full-text search with to_tsvector/to_tsquery.
	FeatureTSearch FeatureName = "tsearch"

	// FeatureDMetaphone is tsearch over double-metaphone encoded text.
	FeatureDMetaphone FeatureName = "dmetaphone"

	// FeatureTrigram is pg_trgm similarity matching.
	FeatureTrigram FeatureName = "trigram"
)

// Features lists every supported feature in canonical order.
var Features = []FeatureName{FeatureTSearch, FeatureDMetaphone, FeatureTrigram}

// Valid reports whether the name is one of the supported features.
func (f FeatureName) Valid() bool {
	for _, known := range Features {
		if f == known {
			return true
		}
	}
	return false
}

// Normalization steps accepted in Scope.Ignoring.
const (
	// IgnoreAccents makes matching accent-insensitive (unaccent()).
	IgnoreAccents = "accents"

	// IgnoreCase folds case before matching (lower()).
	IgnoreCase = "case"
)

// ValidIgnoring defines the allowed Scope.Ignoring entries.
var ValidIgnoring = map[string]bool{
	IgnoreAccents: true,
	IgnoreCase:    true,
}

// Column describes one searchable column, on the root table when
// Association is empty, otherwise on the associated table.
type Column struct {
	Association string  `json:"association,omitempty"`
	Name        string  `json:"name"`
	Weight      float64 `json:"weight,omitempty"` // 0 = unset (behaves as 1)
}

// EffectiveWeight returns the column weight with the default applied.
func (c Column) EffectiveWeight() float64 {
	if c.Weight == 0 {
		return 1
	}
	return c.Weight
}

// AssociatedColumns groups the columns searched through one association.
// The same association may appear in several groups; the planner merges them.
type AssociatedColumns struct {
	Association string   `json:"association"`
	Columns     []Column `json:"columns"`
}

// FeatureOptions holds the per-feature options. Each feature reads only the
// fields that apply to it; config validation rejects the rest.
type FeatureOptions struct {
	Dictionary    string  `json:"dictionary,omitempty"`    // tsearch
	Prefix        bool    `json:"prefix,omitempty"`        // tsearch, dmetaphone
	AnyWord       bool    `json:"any_word,omitempty"`      // tsearch, dmetaphone
	Negation      bool    `json:"negation,omitempty"`      // tsearch
	Normalization int     `json:"normalization,omitempty"` // tsearch, dmetaphone
	Threshold     float64 `json:"threshold,omitempty"`     // trigram
}

// FeatureConfig enables one feature with its options.
type FeatureConfig struct {
	Name    FeatureName    `json:"name"`
	Options FeatureOptions `json:"options"`
}

// Scope is a declarative search configuration attached to a model.
type Scope struct {
	Name            string              `json:"name"`
	Model           string              `json:"model"`
	Against         []Column            `json:"against,omitempty"`
	Associated      []AssociatedColumns `json:"associated_against,omitempty"`
	Using           []FeatureConfig     `json:"using"`
	Ignoring        []string            `json:"ignoring,omitempty"`
	Joins           []string            `json:"joins,omitempty"`
	RankedBy        string              `json:"ranked_by,omitempty"`
	OrderWithinRank string              `json:"order_within_rank,omitempty"`
}

// AssociationNames returns the distinct association names in declaration order.
func (s Scope) AssociationNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, group := range s.Associated {
		if seen[group.Association] {
			continue
		}
		seen[group.Association] = true
		names = append(names, group.Association)
	}
	return names
}

// NeedsJoins reports whether compiling the scope requires join composition.
func (s Scope) NeedsJoins() bool {
	return len(s.Associated) > 0 || len(s.Joins) > 0
}

// Model is a table known to the association catalog.
type Model struct {
	Name       string `json:"name"`
	Table      string `json:"table"`
	PrimaryKey string `json:"primary_key"`
}

// RelationKind categorizes an association.
type RelationKind string

const (
	// BelongsTo: the source row holds the foreign key.
	BelongsTo RelationKind = "belongs_to"

	// HasOne: the target row holds the foreign key, at most one target.
	HasOne RelationKind = "has_one"

	// HasMany: the target rows hold the foreign key.
	HasMany RelationKind = "has_many"

	// Polymorphic: belongs_to whose target table is chosen per row.
	// It has no single target table and cannot be joined.
	Polymorphic RelationKind = "polymorphic"
)

// ValidRelationKinds defines allowed relation kinds.
var ValidRelationKinds = map[RelationKind]bool{
	BelongsTo:   true,
	HasOne:      true,
	HasMany:     true,
	Polymorphic: true,
}

// Relation is a named association from a source model to a target model.
type Relation struct {
	Name       string       `json:"name"`
	Kind       RelationKind `json:"kind"`
	Source     string       `json:"source"`
	Target     string       `json:"target,omitempty"`
	ForeignKey string       `json:"foreign_key"`
}

// SupportsJoin reports whether the relation kind can be composed into a join.
func (r Relation) SupportsJoin() bool {
	switch r.Kind {
	case BelongsTo, HasOne, HasMany:
		return r.Target != ""
	default:
		return false
	}
}

// Hop is one resolved relation of an association path.
//
// The join condition is: to_table.to_key = from_table.from_key
type Hop struct {
	Relation  string       `json:"relation"`
	Kind      RelationKind `json:"kind"`
	FromTable string       `json:"from_table"`
	FromKey   string       `json:"from_key"`
	ToTable   string       `json:"to_table"`
	ToKey     string       `json:"to_key"`
}

// AssociationPath is the ordered chain of hops from the root table to the
// table holding the searched columns.
type AssociationPath struct {
	Root string `json:"root"`
	Hops []Hop  `json:"hops"`
}

// Name returns the dotted relation names of the path ("comments.author").
func (p AssociationPath) Name() string {
	names := make([]string, len(p.Hops))
	for i, hop := range p.Hops {
		names[i] = hop.Relation
	}
	return strings.Join(names, ".")
}

// Key returns the structural identity of the path. Relation names are not
// part of the key: two names over the same tables and keys share a key, while
// the same target reached through different foreign keys does not.
func (p AssociationPath) Key() string {
	var b strings.Builder
	b.WriteString(p.Root)
	for _, hop := range p.Hops {
		fmt.Fprintf(&b, "|%s.%s=%s.%s", hop.FromTable, hop.FromKey, hop.ToTable, hop.ToKey)
	}
	return b.String()
}

// Target returns the table reached by the last hop.
func (p AssociationPath) Target() string {
	if len(p.Hops) == 0 {
		return p.Root
	}
	return p.Hops[len(p.Hops)-1].ToTable
}

// JoinHandle references one materialized join clause.
type JoinHandle struct {
	Alias        string          `json:"alias"`
	Associations []string        `json:"associations"`
	Path         AssociationPath `json:"path"`
	Columns      []string        `json:"columns,omitempty"`
	Clause       string          `json:"clause"`
}

// Fragment is the compiled output for one query. It is immutable and must
// be attached to the surrounding query as: joins once each, Condition in
// WHERE, Rank/OrderBy in ORDER BY.
type Fragment struct {
	Table     string       `json:"table"`
	Condition string       `json:"condition"`
	Rank      string       `json:"rank"`
	OrderBy   string       `json:"order_by"`
	Joins     []JoinHandle `json:"joins,omitempty"`
}

// JoinSQL returns the join clauses separated by single spaces.
func (f *Fragment) JoinSQL() string {
	clauses := make([]string, len(f.Joins))
	for i, j := range f.Joins {
		clauses[i] = j.Clause
	}
	return strings.Join(clauses, " ")
}
