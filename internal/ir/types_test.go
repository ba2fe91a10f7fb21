package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnEffectiveWeight(t *testing.T) {
	assert.Equal(t, 1.0, Column{Name: "title"}.EffectiveWeight())
	assert.Equal(t, 2.0, Column{Name: "title", Weight: 2}.EffectiveWeight())
	assert.Equal(t, 0.4, Column{Name: "title", Weight: 0.4}.EffectiveWeight())
}

func TestFeatureNameValid(t *testing.T) {
	for _, f := range Features {
		assert.True(t, f.Valid(), string(f))
	}
	assert.False(t, FeatureName("soundex").Valid())
	assert.False(t, FeatureName("").Valid())
}

func TestScopeAssociationNames(t *testing.T) {
	s := Scope{
		Associated: []AssociatedColumns{
			{Association: "author", Columns: []Column{{Name: "name"}}},
			{Association: "comments", Columns: []Column{{Name: "body"}}},
			{Association: "author", Columns: []Column{{Name: "bio"}}},
		},
	}

	assert.Equal(t, []string{"author", "comments"}, s.AssociationNames())
	assert.True(t, s.NeedsJoins())
}

func TestScopeNeedsJoins(t *testing.T) {
	assert.False(t, Scope{Against: []Column{{Name: "title"}}}.NeedsJoins())
	assert.True(t, Scope{Joins: []string{"author"}}.NeedsJoins())
}

func TestRelationSupportsJoin(t *testing.T) {
	testCases := []struct {
		name     string
		relation Relation
		want     bool
	}{
		{"belongs_to", Relation{Kind: BelongsTo, Target: "users"}, true},
		{"has_one", Relation{Kind: HasOne, Target: "profiles"}, true},
		{"has_many", Relation{Kind: HasMany, Target: "comments"}, true},
		{"polymorphic", Relation{Kind: Polymorphic}, false},
		{"missing target", Relation{Kind: BelongsTo}, false},
		{"unknown kind", Relation{Kind: "has_and_belongs_to_many", Target: "tags"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.relation.SupportsJoin())
		})
	}
}

func TestAssociationPathKey(t *testing.T) {
	things := AssociationPath{Root: "parents", Hops: []Hop{{
		Relation: "things", Kind: HasMany,
		FromTable: "parents", FromKey: "id", ToTable: "children", ToKey: "parent_id",
	}}}
	sameTables := AssociationPath{Root: "parents", Hops: []Hop{{
		Relation: "widgets", Kind: HasMany,
		FromTable: "parents", FromKey: "id", ToTable: "children", ToKey: "parent_id",
	}}}
	otherKey := AssociationPath{Root: "parents", Hops: []Hop{{
		Relation: "thingamabobs", Kind: HasMany,
		FromTable: "parents", FromKey: "id", ToTable: "children", ToKey: "parent_again_id",
	}}}

	// Relation names do not participate in structural identity
	assert.Equal(t, things.Key(), sameTables.Key())
	// Same target table through a different foreign key is a different path
	assert.NotEqual(t, things.Key(), otherKey.Key())

	assert.Equal(t, "things", things.Name())
	assert.Equal(t, "children", things.Target())
}

func TestAssociationPathNameDotted(t *testing.T) {
	p := AssociationPath{Root: "posts", Hops: []Hop{
		{Relation: "comments", FromTable: "posts", FromKey: "id", ToTable: "comments", ToKey: "post_id"},
		{Relation: "author", FromTable: "comments", FromKey: "author_id", ToTable: "users", ToKey: "id"},
	}}

	assert.Equal(t, "comments.author", p.Name())
	assert.Equal(t, "users", p.Target())
	assert.Equal(t, "posts", AssociationPath{Root: "posts"}.Target())
}

func TestFragmentJoinSQL(t *testing.T) {
	f := &Fragment{Joins: []JoinHandle{{Clause: "LEFT OUTER JOIN a"}, {Clause: "LEFT OUTER JOIN b"}}}
	assert.Equal(t, "LEFT OUTER JOIN a LEFT OUTER JOIN b", f.JoinSQL())
	assert.Equal(t, "", (&Fragment{}).JoinSQL())
}
