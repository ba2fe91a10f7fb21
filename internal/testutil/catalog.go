package testutil

import (
	"github.com/roach88/pgsearch/internal/catalog"
	"github.com/roach88/pgsearch/internal/ir"
)

// AssociationModels are the models of the association fixtures. Model names
// are singular and tables plural, so tests notice when one is used for the
// other.
var AssociationModels = []ir.Model{
	{Name: "associated_model", Table: "associated_models", PrimaryKey: "id"},
	{Name: "model_without_against", Table: "model_without_againsts", PrimaryKey: "id"},
	{Name: "model_with_belongs_to", Table: "model_with_belongs_tos", PrimaryKey: "id"},
	{Name: "associated_model_with_has_many", Table: "associated_model_with_has_manies", PrimaryKey: "id"},
	{Name: "model_with_has_many", Table: "model_with_has_manies", PrimaryKey: "id"},
	{Name: "first_associated_model", Table: "first_associated_models", PrimaryKey: "id"},
	{Name: "second_associated_model", Table: "second_associated_models", PrimaryKey: "id"},
	{Name: "model_with_many_associations", Table: "model_with_many_associations", PrimaryKey: "id"},
	{Name: "doubly_associated_model", Table: "doubly_associated_models", PrimaryKey: "id"},
	{Name: "model_with_double_association", Table: "model_with_double_associations", PrimaryKey: "id"},
	{Name: "model_with_association", Table: "model_with_associations", PrimaryKey: "id"},
	{Name: "model", Table: "models", PrimaryKey: "id"},
	{Name: "user", Table: "users", PrimaryKey: "id"},
	{Name: "post", Table: "posts", PrimaryKey: "id"},
	{Name: "comment", Table: "comments", PrimaryKey: "id"},
}

// AssociationRelations are the relations between AssociationModels.
var AssociationRelations = []ir.Relation{
	{Name: "another_model", Kind: ir.BelongsTo, Source: "model_without_against", Target: "associated_model", ForeignKey: "another_model_id"},
	{Name: "another_model", Kind: ir.BelongsTo, Source: "model_with_belongs_to", Target: "associated_model", ForeignKey: "another_model_id"},
	{Name: "other_models", Kind: ir.HasMany, Source: "model_with_has_many", Target: "associated_model_with_has_many", ForeignKey: "model_with_has_many_id"},
	{Name: "models_of_first_type", Kind: ir.HasMany, Source: "model_with_many_associations", Target: "first_associated_model", ForeignKey: "model_with_many_associations_id"},
	{Name: "model_of_second_type", Kind: ir.BelongsTo, Source: "model_with_many_associations", Target: "second_associated_model", ForeignKey: "model_of_second_type_id"},
	{Name: "things", Kind: ir.HasMany, Source: "model_with_double_association", Target: "doubly_associated_model", ForeignKey: "model_with_double_association_id"},
	{Name: "thingamabobs", Kind: ir.HasMany, Source: "model_with_double_association", Target: "doubly_associated_model", ForeignKey: "model_with_double_association_again_id"},
	{Name: "another_model", Kind: ir.BelongsTo, Source: "model_with_association", Target: "associated_model", ForeignKey: "another_model_id"},
	{Name: "another_model", Kind: ir.BelongsTo, Source: "model", Target: "associated_model", ForeignKey: "another_model_id"},

	{Name: "author", Kind: ir.BelongsTo, Source: "post", Target: "user", ForeignKey: "author_id"},
	{Name: "parent", Kind: ir.BelongsTo, Source: "post", Target: "post", ForeignKey: "parent_id"},
	{Name: "children", Kind: ir.HasMany, Source: "post", Target: "post", ForeignKey: "parent_id"},
	{Name: "comments", Kind: ir.HasMany, Source: "post", Target: "comment", ForeignKey: "post_id"},
	{Name: "replies", Kind: ir.HasMany, Source: "post", Target: "comment", ForeignKey: "post_id"},
	{Name: "post", Kind: ir.BelongsTo, Source: "comment", Target: "post", ForeignKey: "post_id"},
	{Name: "author", Kind: ir.BelongsTo, Source: "comment", Target: "user", ForeignKey: "author_id"},
	{Name: "commentable", Kind: ir.Polymorphic, Source: "comment"},
	{Name: "posts", Kind: ir.HasMany, Source: "user", Target: "post", ForeignKey: "author_id"},
}

// AssociationsCatalog returns the fixture catalog. It panics on invalid
// fixtures, which only a broken edit of this file can cause.
func AssociationsCatalog() *catalog.Static {
	c, err := catalog.New(AssociationModels, AssociationRelations)
	if err != nil {
		panic("testutil: invalid fixture catalog: " + err.Error())
	}
	return c
}

// AssociationsDDL creates the fixture tables. It is valid for both SQLite
// and PostgreSQL; ids are supplied explicitly by the fixtures.
const AssociationsDDL = `
CREATE TABLE associated_models (id INTEGER PRIMARY KEY, title TEXT, author TEXT);
CREATE TABLE model_without_againsts (id INTEGER PRIMARY KEY, title TEXT, another_model_id INTEGER REFERENCES associated_models (id));
CREATE TABLE model_with_belongs_tos (id INTEGER PRIMARY KEY, title TEXT, another_model_id INTEGER REFERENCES associated_models (id));
CREATE TABLE model_with_has_manies (id INTEGER PRIMARY KEY, title TEXT);
CREATE TABLE associated_model_with_has_manies (id INTEGER PRIMARY KEY, title TEXT, model_with_has_many_id INTEGER REFERENCES model_with_has_manies (id));
CREATE TABLE second_associated_models (id INTEGER PRIMARY KEY, title TEXT);
CREATE TABLE model_with_many_associations (id INTEGER PRIMARY KEY, title TEXT, model_of_second_type_id INTEGER REFERENCES second_associated_models (id));
CREATE TABLE first_associated_models (id INTEGER PRIMARY KEY, title TEXT, model_with_many_associations_id INTEGER REFERENCES model_with_many_associations (id));
CREATE TABLE model_with_double_associations (id INTEGER PRIMARY KEY, title TEXT);
CREATE TABLE doubly_associated_models (
	id INTEGER PRIMARY KEY,
	title TEXT,
	model_with_double_association_id INTEGER REFERENCES model_with_double_associations (id),
	model_with_double_association_again_id INTEGER REFERENCES model_with_double_associations (id)
);
CREATE TABLE model_with_associations (id INTEGER PRIMARY KEY, another_model_id INTEGER REFERENCES associated_models (id));
CREATE TABLE models (id INTEGER PRIMARY KEY, title TEXT, name TEXT, content TEXT, another_model_id INTEGER REFERENCES associated_models (id));
CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);
CREATE TABLE posts (
	id INTEGER PRIMARY KEY,
	title TEXT,
	body TEXT,
	author_id INTEGER REFERENCES users (id),
	parent_id INTEGER REFERENCES posts (id)
);
CREATE TABLE comments (
	id INTEGER PRIMARY KEY,
	body TEXT,
	post_id INTEGER REFERENCES posts (id),
	author_id INTEGER REFERENCES users (id),
	commentable_type TEXT,
	commentable_id INTEGER
);
`
