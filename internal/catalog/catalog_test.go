package catalog

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pgsearch/internal/ir"
)

func TestNew_Defaults(t *testing.T) {
	c, err := New([]ir.Model{{Name: "posts"}}, nil)
	require.NoError(t, err)

	m, ok := c.Model("posts")
	require.True(t, ok)
	assert.Equal(t, "posts", m.Table)
	assert.Equal(t, DefaultPrimaryKey, m.PrimaryKey)

	_, ok = c.Model("missing")
	assert.False(t, ok)
}

func TestNew_Relations(t *testing.T) {
	c, err := New(
		[]ir.Model{{Name: "post", Table: "posts"}, {Name: "comment", Table: "comments"}},
		[]ir.Relation{
			{Name: "comments", Kind: ir.HasMany, Source: "post", Target: "comment", ForeignKey: "post_id"},
			{Name: "post", Kind: ir.BelongsTo, Source: "comment", Target: "post", ForeignKey: "post_id"},
			{Name: "commentable", Kind: ir.Polymorphic, Source: "comment"},
		},
	)
	require.NoError(t, err)

	r, ok := c.Relation("post", "comments")
	require.True(t, ok)
	assert.Equal(t, ir.HasMany, r.Kind)

	_, ok = c.Relation("post", "post")
	assert.False(t, ok, "relations are scoped to their source model")

	names := []string{}
	for _, r := range c.Relations("comment") {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"commentable", "post"}, names)
}

func TestNew_Invalid(t *testing.T) {
	models := []ir.Model{{Name: "post"}, {Name: "comment"}}

	testCases := []struct {
		name     string
		models   []ir.Model
		relation ir.Relation
		want     string
	}{
		{"duplicate model", append(models, ir.Model{Name: "post"}), ir.Relation{}, "declared twice"},
		{"unnamed model", []ir.Model{{}}, ir.Relation{}, "model name is required"},
		{"unknown kind", models, ir.Relation{Name: "x", Kind: "has_and_belongs_to_many", Source: "post", Target: "comment", ForeignKey: "x"}, "unknown relation kind"},
		{"unknown source", models, ir.Relation{Name: "x", Kind: ir.HasMany, Source: "user", Target: "comment", ForeignKey: "x"}, "source model"},
		{"unknown target", models, ir.Relation{Name: "x", Kind: ir.HasMany, Source: "post", Target: "user", ForeignKey: "x"}, "target model"},
		{"missing foreign key", models, ir.Relation{Name: "x", Kind: ir.HasMany, Source: "post", Target: "comment"}, "foreign_key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var relations []ir.Relation
			if tc.relation.Name != "" {
				relations = append(relations, tc.relation)
			}
			_, err := New(tc.models, relations)
			require.Error(t, err)
			assert.True(t, ir.IsConfigurationError(err))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestNew_DuplicateRelation(t *testing.T) {
	rel := ir.Relation{Name: "comments", Kind: ir.HasMany, Source: "post", Target: "comment", ForeignKey: "post_id"}
	_, err := New([]ir.Model{{Name: "post"}, {Name: "comment"}}, []ir.Relation{rel, rel})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared twice")
}

func TestFromSchema(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c, err := fromSchema([]table{
		{name: "posts", primaryKey: "id", foreignKeys: []foreignKey{
			{column: "parent_id", refTable: "posts"},
			{column: "author_id", refTable: "users", refColumn: "id"},
		}},
		{name: "users", primaryKey: "id"},
		{name: "comments", primaryKey: "id", foreignKeys: []foreignKey{
			{column: "post_id", refTable: "posts", refColumn: "id"},
			{column: "legacy", refTable: "posts", refColumn: "slug"},
		}},
		{name: "tags_posts", foreignKeys: []foreignKey{{column: "post_id", refTable: "posts"}}},
	}, logger)
	require.NoError(t, err)

	_, ok := c.Model("tags_posts")
	assert.False(t, ok, "tables without a primary key are skipped")
	assert.Contains(t, logs.String(), "skipping table without single-column primary key")
	assert.Contains(t, logs.String(), "table=tags_posts")
	assert.Contains(t, logs.String(), "column=legacy")

	testCases := []struct {
		model, name string
		want        ir.Relation
	}{
		{"posts", "parent", ir.Relation{Name: "parent", Kind: ir.BelongsTo, Source: "posts", Target: "posts", ForeignKey: "parent_id"}},
		{"posts", "posts", ir.Relation{Name: "posts", Kind: ir.HasMany, Source: "posts", Target: "posts", ForeignKey: "parent_id"}},
		{"posts", "author", ir.Relation{Name: "author", Kind: ir.BelongsTo, Source: "posts", Target: "users", ForeignKey: "author_id"}},
		{"users", "posts", ir.Relation{Name: "posts", Kind: ir.HasMany, Source: "users", Target: "posts", ForeignKey: "author_id"}},
		{"comments", "post", ir.Relation{Name: "post", Kind: ir.BelongsTo, Source: "comments", Target: "posts", ForeignKey: "post_id"}},
		{"posts", "comments", ir.Relation{Name: "comments", Kind: ir.HasMany, Source: "posts", Target: "comments", ForeignKey: "post_id"}},
	}
	for _, tc := range testCases {
		t.Run(tc.model+"."+tc.name, func(t *testing.T) {
			got, ok := c.Relation(tc.model, tc.name)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, r := range c.Relations("comments") {
		assert.NotEqual(t, "legacy", r.ForeignKey, "foreign keys to non-key columns are skipped")
	}
}

func TestFromSchema_NameCollision(t *testing.T) {
	c, err := fromSchema([]table{
		{name: "users", primaryKey: "id"},
		{name: "messages", primaryKey: "id", foreignKeys: []foreignKey{
			{column: "recipient_id", refTable: "users"},
			{column: "sender_id", refTable: "users"},
		}},
	}, nil)
	require.NoError(t, err)

	first, ok := c.Relation("users", "messages")
	require.True(t, ok)
	assert.Equal(t, "recipient_id", first.ForeignKey)

	second, ok := c.Relation("users", "messages_sender_id")
	require.True(t, ok)
	assert.Equal(t, "sender_id", second.ForeignKey)
}
