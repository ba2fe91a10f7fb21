package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/pgsearch/internal/catalog"
)

// IntrospectOptions holds flags for the introspect command.
type IntrospectOptions struct {
	*RootOptions
	SQLite   string
	Postgres string
	Schema   string
}

// ModelFile is the model section of a config, as written by introspect.
type ModelFile struct {
	Model map[string]ModelDecl `yaml:"model" json:"model"`
}

// ModelDecl declares one model.
type ModelDecl struct {
	Table      string                  `yaml:"table" json:"table"`
	PrimaryKey string                  `yaml:"primary_key" json:"primary_key"`
	Relation   map[string]RelationDecl `yaml:"relation,omitempty" json:"relation,omitempty"`
}

// RelationDecl declares one relation of a model.
type RelationDecl struct {
	Kind       string `yaml:"kind" json:"kind"`
	Model      string `yaml:"model,omitempty" json:"model,omitempty"`
	ForeignKey string `yaml:"foreign_key" json:"foreign_key"`
}

// NewIntrospectCommand creates the introspect command.
func NewIntrospectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IntrospectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "Derive model declarations from a database schema",
		Long: `Read tables, primary keys and foreign keys from SQLite or PostgreSQL and
print the equivalent model declarations as YAML, ready to paste into a config.

Each foreign key T.c -> R becomes a belongs_to on T and a has_many on R.

Example:
  pgsearch introspect --sqlite ./app.db
  pgsearch introspect --postgres "postgres://localhost/app?sslmode=disable" --schema public`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntrospect(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SQLite, "sqlite", "", "path to a SQLite database")
	cmd.Flags().StringVar(&opts.Postgres, "postgres", "", "PostgreSQL connection string")
	cmd.Flags().StringVar(&opts.Schema, "schema", catalog.DefaultSchema, "PostgreSQL schema")

	return cmd
}

func runIntrospect(opts *IntrospectOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, formatter.Diagnostics())

	if (opts.SQLite == "") == (opts.Postgres == "") {
		return formatter.fail(ExitCommandError, ErrCodeUsage, "exactly one of --sqlite or --postgres is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		cat *catalog.Static
		err error
	)
	if opts.SQLite != "" {
		logger.Debug("introspecting sqlite", "path", opts.SQLite)
		cat, err = catalog.OpenSQLite(ctx, opts.SQLite, logger)
	} else {
		logger.Debug("introspecting postgres", "schema", opts.Schema)
		cat, err = catalog.OpenPostgres(ctx, opts.Postgres, opts.Schema, logger)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeIntrospect, err.Error())
	}

	file := modelFile(cat)
	logger.Debug("introspection complete", "models", len(file.Model))

	if formatter.JSON() {
		return formatter.Success(file)
	}
	out, err := yaml.Marshal(file)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeIntrospect, fmt.Sprintf("encoding yaml: %v", err))
	}
	_, err = formatter.Writer.Write(out)
	return err
}

// modelFile converts a catalog to its config declaration.
func modelFile(cat *catalog.Static) ModelFile {
	file := ModelFile{Model: make(map[string]ModelDecl)}
	for _, m := range cat.Models() {
		decl := ModelDecl{Table: m.Table, PrimaryKey: m.PrimaryKey}
		for _, r := range cat.Relations(m.Name) {
			if decl.Relation == nil {
				decl.Relation = make(map[string]RelationDecl)
			}
			decl.Relation[r.Name] = RelationDecl{
				Kind:       string(r.Kind),
				Model:      r.Target,
				ForeignKey: r.ForeignKey,
			}
		}
		file.Model[m.Name] = decl
	}
	return file
}
