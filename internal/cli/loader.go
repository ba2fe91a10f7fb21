package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/pgsearch/internal/config"
	"github.com/roach88/pgsearch/internal/ir"
)

// CLI error codes. Load errors use config's E0xx codes and validation uses
// its E2xx codes.
const (
	ErrCodeConfiguration = "E301" // Scope cannot be prepared
	ErrCodeArgument      = "E302" // Invalid compile argument (blank query, unsupported joins)
	ErrCodeUnknownScope  = "E303" // --scope names no declared scope
	ErrCodeIntrospect    = "E304" // Database introspection failed
	ErrCodeUsage         = "E305" // Conflicting or missing flags
)

// loadConfig reads the configuration, reporting failures through the
// formatter as command errors.
func loadConfig(f *OutputFormatter, path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		code, message := classify(err)
		return nil, f.fail(ExitCommandError, code, message)
	}
	return cfg, nil
}

// lookupScope finds the named scope or fails with a command error listing
// the declared ones.
func lookupScope(f *OutputFormatter, cfg *config.Config, name string) (ir.Scope, error) {
	s, ok := cfg.Scope(name)
	if !ok {
		return s, f.fail(ExitCommandError, ErrCodeUnknownScope,
			fmt.Sprintf("scope %q is not declared (declared: %v)", name, cfg.ScopeNames()))
	}
	return s, nil
}

// compileFailure maps a compile or prepare error to its exit code: an
// unusable declaration is a failure, a bad argument a command error.
func compileFailure(f *OutputFormatter, err error) error {
	code, message := classify(err)
	if code == ErrCodeArgument {
		return f.fail(ExitCommandError, code, message)
	}
	return f.fail(ExitFailure, code, message)
}

// classify returns the error code and message for err.
func classify(err error) (string, string) {
	var loadErr *config.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Error()
	}
	if ir.IsArgumentError(err) {
		return ErrCodeArgument, err.Error()
	}
	if ir.IsConfigurationError(err) {
		return ErrCodeConfiguration, err.Error()
	}
	return config.ErrCodeGeneric, err.Error()
}
