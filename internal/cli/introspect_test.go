package cli

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/pgsearch/internal/config"
	"github.com/roach88/pgsearch/internal/ir"
)

const blogDDL = `
CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);
CREATE TABLE posts (
	id INTEGER PRIMARY KEY,
	title TEXT,
	author_id INTEGER REFERENCES users(id)
);
`

// blogDatabase creates a SQLite file holding blogDDL.
func blogDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blog.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(blogDDL)
	require.NoError(t, err)
	return path
}

func TestIntrospect_SQLite(t *testing.T) {
	out, _, err := execute(t, "introspect", "--sqlite", blogDatabase(t))
	require.NoError(t, err)

	var file ModelFile
	require.NoError(t, yaml.Unmarshal([]byte(out), &file))
	assert.Equal(t, ModelFile{Model: map[string]ModelDecl{
		"posts": {
			Table: "posts", PrimaryKey: "id",
			Relation: map[string]RelationDecl{
				"author": {Kind: "belongs_to", Model: "users", ForeignKey: "author_id"},
			},
		},
		"users": {
			Table: "users", PrimaryKey: "id",
			Relation: map[string]RelationDecl{
				"posts": {Kind: "has_many", Model: "posts", ForeignKey: "author_id"},
			},
		},
	}}, file)
}

func TestIntrospect_OutputLoadsAsConfig(t *testing.T) {
	out, _, err := execute(t, "introspect", "--sqlite", blogDatabase(t))
	require.NoError(t, err)

	scopes := `
scope:
  by_author:
    model: posts
    against: title
    associated_against:
      author: name
`
	path := filepath.Join(t.TempDir(), "blog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(out+scopes), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Empty(t, config.Validate(cfg))

	rel, ok := cfg.Catalog.Relation("users", "posts")
	require.True(t, ok)
	assert.Equal(t, ir.HasMany, rel.Kind)

	stmt, _, err := execute(t, "compile", path, "--scope", "by_author", "--query", "ada", "--statement")
	require.NoError(t, err)
	assert.Contains(t, stmt, `INNER JOIN "users" ON "users"."id" = "posts"."author_id"`)
}

func TestIntrospect_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "introspect", "--sqlite", blogDatabase(t))
	require.NoError(t, err)

	status, file, _ := decode[ModelFile](t, out)
	assert.Equal(t, "ok", status)
	assert.Len(t, file.Model, 2)
	assert.Equal(t, "author_id", file.Model["posts"].Relation["author"].ForeignKey)
}

func TestIntrospect_SourceFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"neither", []string{"introspect"}},
		{"both", []string{"introspect", "--sqlite", "a.db", "--postgres", "postgres://localhost/app"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error ["+ErrCodeUsage+"]")
		})
	}
}

func TestIntrospect_MissingDatabase(t *testing.T) {
	out, _, err := execute(t, "introspect", "--sqlite", filepath.Join(t.TempDir(), "absent.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeIntrospect+"]")
}
