package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pgsearch/internal/ir"
	"github.com/roach88/pgsearch/internal/sqlast"
	"github.com/roach88/pgsearch/internal/testutil"
)

func TestNew_Empty(t *testing.T) {
	n, err := New(nil)
	require.NoError(t, err)

	col := sqlast.Col("posts", "title")
	assert.Equal(t, sqlast.Expr(col), n.Apply(col))
	assert.Empty(t, n.Steps())
}

func TestNew_FixedOrder(t *testing.T) {
	a, err := New([]string{ir.IgnoreCase, ir.IgnoreAccents})
	require.NoError(t, err)
	b, err := New([]string{ir.IgnoreAccents, ir.IgnoreCase, ir.IgnoreAccents})
	require.NoError(t, err)

	assert.Equal(t, []string{FuncUnaccent, FuncLower}, a.Steps())
	assert.Equal(t, a.Steps(), b.Steps())

	got := testutil.SQL(t, a.Apply(sqlast.Str("Café")))
	assert.Equal(t, `lower(unaccent('Café'))`, got)
}

func TestNew_UnknownStep(t *testing.T) {
	_, err := New([]string{"whitespace"})
	require.Error(t, err)
	assert.True(t, ir.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "ignoring")
	assert.Contains(t, err.Error(), "whitespace")
}

func TestWith_DoesNotMutate(t *testing.T) {
	base, err := New([]string{ir.IgnoreAccents})
	require.NoError(t, err)

	phonetic := base.With(FuncDMetaphone)

	assert.Equal(t, []string{FuncUnaccent}, base.Steps())
	assert.Equal(t, []string{FuncUnaccent, FuncDMetaphone}, phonetic.Steps())
	assert.Equal(t, `pg_search_dmetaphone(unaccent('x'))`, testutil.SQL(t, phonetic.Apply(sqlast.Str("x"))))
}

func TestQuery_NFC(t *testing.T) {
	decomposed := "Cafe\u0301"
	composed := "Caf\u00e9"

	assert.NotEqual(t, composed, decomposed)
	assert.Equal(t, composed, Query(decomposed))
	assert.Equal(t, composed, Query(composed))
	assert.Equal(t, "plain", Query("plain"))
}
