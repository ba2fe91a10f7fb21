package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pgsearch/internal/ir"
	"github.com/roach88/pgsearch/internal/scope"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Scope     string
	Query     string
	Statement bool
}

// CompileResult is the JSON payload of the compile command.
type CompileResult struct {
	Scope       string       `json:"scope"`
	Fragment    *ir.Fragment `json:"fragment"`
	Fingerprint string       `json:"fingerprint"`
	Statement   string       `json:"statement,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <config>",
		Short: "Compile one search query against a scope",
		Long: `Compile a search query against a scope declared in a .cue or .yaml config.

Prints the WHERE condition, rank expression, ORDER BY clause and join
clauses. With --statement, prints a complete SELECT instead.

Example:
  pgsearch compile search.cue --scope search_posts --query "jumped fox"
  pgsearch compile search.yaml --scope search_posts --query fox --statement`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Scope, "scope", "s", "", "scope name (required)")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "search query (required)")
	cmd.Flags().BoolVar(&opts.Statement, "statement", false, "print a complete SELECT statement")
	_ = cmd.MarkFlagRequired("scope")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, formatter.Diagnostics())

	cfg, err := loadConfig(formatter, path)
	if err != nil {
		return err
	}
	s, err := lookupScope(formatter, cfg, opts.Scope)
	if err != nil {
		return err
	}

	logger.Debug("compiling scope", "scope", s.Name, "model", s.Model, "config", path)
	frag, err := cfg.NewCompiler(logger).Compile(s, opts.Query)
	if err != nil {
		return compileFailure(formatter, err)
	}

	result := CompileResult{
		Scope:       s.Name,
		Fragment:    frag,
		Fingerprint: frag.Fingerprint(),
	}
	if opts.Statement {
		result.Statement = scope.Statement(frag)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	writeCompileText(formatter.Writer, result)
	return nil
}

// writeCompileText prints one SQL section per line group.
func writeCompileText(w io.Writer, r CompileResult) {
	if r.Statement != "" {
		fmt.Fprintln(w, r.Statement)
		return
	}

	fmt.Fprintf(w, "-- scope %s on %q (%s)\n", r.Scope, r.Fragment.Table, r.Fingerprint[:12])
	for _, j := range r.Fragment.Joins {
		fmt.Fprintf(w, "JOIN:     %s\n", j.Clause)
	}
	fmt.Fprintf(w, "WHERE:    %s\n", r.Fragment.Condition)
	fmt.Fprintf(w, "RANK:     %s\n", r.Fragment.Rank)
	fmt.Fprintf(w, "ORDER BY: %s\n", r.Fragment.OrderBy)
}
