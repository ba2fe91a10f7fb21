package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/pgsearch/internal/config"
	"github.com/roach88/pgsearch/internal/scope"
)

// Harness runs scenarios.
type Harness struct {
	logger *slog.Logger
}

// New returns a harness that logs to logger. A nil logger discards.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with a discarding logger.
func Run(s *Scenario) (*Result, error) {
	return New(nil).Run(s)
}

// Run compiles the scenario's query and evaluates its assertions.
//
// A compile error is part of the result, not a Run error: scenarios may
// expect one. Run fails only when the scenario itself cannot be executed
// (unreadable config, undeclared scope).
func (h *Harness) Run(s *Scenario) (*Result, error) {
	cfg, err := config.Load(s.Config)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: loading config: %w", s.Name, err)
	}
	sc, ok := cfg.Scope(s.Scope)
	if !ok {
		return nil, fmt.Errorf("scenario %s: scope %q is not declared in %s", s.Name, s.Scope, s.Config)
	}

	compiler := cfg.NewCompiler(h.logger)
	result := NewResult()

	frag, err := compiler.Compile(sc, s.Query)
	if err != nil {
		result.Err = err
	} else {
		result.Fragment = frag
		result.Statement = scope.Statement(frag)

		again, err := compiler.Compile(sc, s.Query)
		switch {
		case err != nil:
			result.AddError(fmt.Sprintf("second compile failed: %v", err))
		case again.Fingerprint() != frag.Fingerprint():
			result.AddError("compiling twice produced different fragments")
		}
	}

	for _, msg := range EvaluateAssertions(result, s.Assertions) {
		result.AddError(msg)
	}
	if result.Err != nil && !expectsError(s.Assertions) {
		result.AddError(fmt.Sprintf("compile failed: %v", result.Err))
	}

	h.logger.Debug("scenario finished",
		"scenario", s.Name,
		"pass", result.Pass,
		"errors", len(result.Errors))
	return result, nil
}

func expectsError(assertions []Assertion) bool {
	for _, a := range assertions {
		if a.Type == AssertError {
			return true
		}
	}
	return false
}
