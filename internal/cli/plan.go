package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pgsearch/internal/ir"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	Scope string
}

// PlanResult is the JSON payload of the plan command.
type PlanResult struct {
	Scope    string          `json:"scope"`
	Model    string          `json:"model"`
	Table    string          `json:"table"`
	Features []string        `json:"features"`
	Joins    []ir.JoinHandle `json:"joins"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan <config>",
		Short: "Show the joins a scope resolves to",
		Long: `Prepare a scope and print its join plan: one entry per distinct
association path, with the association names it serves, the hops it
walks and the columns it aggregates.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Scope, "scope", "s", "", "scope name (required)")
	_ = cmd.MarkFlagRequired("scope")

	return cmd
}

func runPlan(opts *PlanOptions, path string, cmd *cobra.Command) error {
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

	prepared, err := cfg.NewCompiler(logger).Prepare(s)
	if err != nil {
		return compileFailure(formatter, err)
	}

	result := PlanResult{
		Scope: s.Name,
		Model: prepared.Root().Name,
		Table: prepared.Root().Table,
		Joins: prepared.Joins(),
	}
	for _, f := range prepared.Scope().Using {
		result.Features = append(result.Features, string(f.Name))
	}
	if len(result.Features) == 0 {
		result.Features = []string{string(ir.FeatureTSearch)}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	writePlanText(formatter.Writer, result)
	return nil
}

func writePlanText(w io.Writer, r PlanResult) {
	fmt.Fprintf(w, "scope %s: model %s (table %q), features %s\n",
		r.Scope, r.Model, r.Table, strings.Join(r.Features, ", "))
	if len(r.Joins) == 0 {
		fmt.Fprintln(w, "  no joins")
		return
	}
	for _, j := range r.Joins {
		fmt.Fprintf(w, "\n  %s\n", j.Alias)
		if len(j.Associations) > 0 {
			fmt.Fprintf(w, "    associations: %s\n", strings.Join(j.Associations, ", "))
		}
		for _, hop := range j.Path.Hops {
			fmt.Fprintf(w, "    %-11s %s.%s = %s.%s\n", hop.Kind, hop.ToTable, hop.ToKey, hop.FromTable, hop.FromKey)
		}
		if len(j.Columns) > 0 {
			fmt.Fprintf(w, "    columns: %s\n", strings.Join(j.Columns, ", "))
		}
	}
}
