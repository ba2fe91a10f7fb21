package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pgsearch/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Scopes []string                 `json:"scopes,omitempty"`
	Errors []config.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Check every scope of a config without compiling a query",
		Long: `Validate a search config.

Runs the config checks (models, columns, features, weights, associations)
and reports every problem found. When those pass, each scope is also
prepared against the catalog and query layer exactly as compile would.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	logger := newLogger(opts, formatter.Diagnostics())

	cfg, err := loadConfig(formatter, path)
	if err != nil {
		return err
	}

	errs := config.Validate(cfg)
	if len(errs) == 0 {
		compiler := cfg.NewCompiler(logger)
		for _, s := range cfg.Scopes {
			logger.Debug("preparing scope", "scope", s.Name)
			if _, err := compiler.Prepare(s); err != nil {
				code, message := classify(err)
				errs = append(errs, config.ValidationError{
					Field:   "scope." + s.Name,
					Message: message,
					Code:    code,
				})
			}
		}
	}

	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	if formatter.JSON() {
		return formatter.Success(ValidationResult{Valid: true, Scopes: cfg.ScopeNames()})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d scope(s) valid\n", len(cfg.Scopes))
	for _, name := range cfg.ScopeNames() {
		fmt.Fprintf(formatter.Writer, "  %s\n", name)
	}
	return nil
}

// outputValidationErrors reports every error and fails with ExitFailure.
func outputValidationErrors(formatter *OutputFormatter, errs []config.ValidationError) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.JSON() {
		err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error:  &CLIError{Code: errs[0].Code, Message: errs[0].Message},
		})
		if err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		fmt.Fprintf(formatter.Writer, "  %s\n", e.Error())
	}
	return failure
}
