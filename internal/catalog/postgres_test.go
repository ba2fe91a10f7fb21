package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pgsearch/internal/ir"
)

func TestIntrospectPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM information_schema.tables").
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
			AddRow("another_models").
			AddRow("models").
			AddRow("audit_log"))

	mock.ExpectQuery("constraint_type = 'PRIMARY KEY'").
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name"}).
			AddRow("another_models", "id").
			AddRow("audit_log", "at").
			AddRow("audit_log", "seq").
			AddRow("models", "id"))

	mock.ExpectQuery("constraint_type = 'FOREIGN KEY'").
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name", "table_name", "column_name", "table_name", "column_name"}).
			AddRow("models_another_model_id_fkey", "models", "another_model_id", "another_models", "id").
			AddRow("models_pair_fkey", "models", "a", "pairs", "a").
			AddRow("models_pair_fkey", "models", "b", "pairs", "b"))

	c, err := IntrospectPostgres(context.Background(), db, "", nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, ok := c.Model("audit_log")
	assert.False(t, ok, "composite primary key")

	belongs, ok := c.Relation("models", "another_model")
	require.True(t, ok)
	assert.Equal(t, ir.Relation{Name: "another_model", Kind: ir.BelongsTo, Source: "models", Target: "another_models", ForeignKey: "another_model_id"}, belongs)

	hasMany, ok := c.Relation("another_models", "models")
	require.True(t, ok)
	assert.Equal(t, ir.HasMany, hasMany.Kind)

	assert.Len(t, c.Relations("models"), 1, "composite foreign key is skipped")
}

func TestIntrospectPostgres_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM information_schema.tables").
		WithArgs("search").
		WillReturnError(errors.New("permission denied"))

	_, err = IntrospectPostgres(context.Background(), db, "search", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list tables")
	assert.Contains(t, err.Error(), "permission denied")
}
