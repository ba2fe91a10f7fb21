package harness

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/pgsearch/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type      string
	Expected  string
	Actual    string
	Statement string // compiled statement for context, empty on compile failure
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Statement != "" {
		fmt.Fprintf(&buf, "\nStatement:\n  %s\n", e.Statement)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns one message per
// failure. Fragment assertions are skipped when compilation failed; Run
// reports that failure itself.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		var err error
		switch {
		case a.Type == AssertError:
			err = assertError(result, a)
		case result.Err != nil:
			continue
		default:
			err = assertFragment(result, a)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func assertFragment(result *Result, a Assertion) error {
	switch a.Type {
	case AssertJoinCount:
		return assertCount(result, a, len(result.Fragment.Joins), "joins")
	case AssertInnerJoinCount:
		return assertCount(result, a, strings.Count(result.Fragment.JoinSQL(), "INNER JOIN"), "INNER JOIN clauses")
	case AssertContains:
		if !strings.Contains(result.section(a.Section), a.Text) {
			return &AssertionError{
				Type:      a.Type,
				Expected:  fmt.Sprintf("%s contains %q", a.Section, a.Text),
				Actual:    "not found",
				Statement: result.Statement,
			}
		}
	case AssertNotContains:
		if strings.Contains(result.section(a.Section), a.Text) {
			return &AssertionError{
				Type:      a.Type,
				Expected:  fmt.Sprintf("%s does not contain %q", a.Section, a.Text),
				Actual:    "found",
				Statement: result.Statement,
			}
		}
	case AssertJoinAssociations:
		return assertJoinAssociations(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func assertCount(result *Result, a Assertion, got int, what string) error {
	if got != a.Count {
		return &AssertionError{
			Type:      a.Type,
			Expected:  fmt.Sprintf("%d %s", a.Count, what),
			Actual:    fmt.Sprintf("%d %s", got, what),
			Statement: result.Statement,
		}
	}
	return nil
}

func assertJoinAssociations(result *Result, a Assertion) error {
	joins := result.Fragment.Joins
	if a.Index >= len(joins) {
		return &AssertionError{
			Type:      a.Type,
			Expected:  fmt.Sprintf("join %d serving %v", a.Index, a.Associations),
			Actual:    fmt.Sprintf("only %d joins", len(joins)),
			Statement: result.Statement,
		}
	}
	if got := joins[a.Index].Associations; !slices.Equal(got, a.Associations) {
		return &AssertionError{
			Type:      a.Type,
			Expected:  fmt.Sprintf("join %d serving %v", a.Index, a.Associations),
			Actual:    fmt.Sprintf("serving %v", got),
			Statement: result.Statement,
		}
	}
	return nil
}

// assertError checks the compile error's kind, option and message.
func assertError(result *Result, a Assertion) error {
	expected := fmt.Sprintf("%s error", a.Kind)
	if a.Option != "" {
		expected += fmt.Sprintf(" naming %q", a.Option)
	}
	if a.Text != "" {
		expected += fmt.Sprintf(" containing %q", a.Text)
	}
	fail := func(actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Statement: result.Statement}
	}

	if result.Err == nil {
		return fail("compiled successfully")
	}

	kind, option := errorKind(result.Err)
	if kind != a.Kind {
		return fail(fmt.Sprintf("%v", result.Err))
	}
	if a.Option != "" && option != a.Option {
		return fail(fmt.Sprintf("option %q: %v", option, result.Err))
	}
	if a.Text != "" && !strings.Contains(result.Err.Error(), a.Text) {
		return fail(result.Err.Error())
	}
	return nil
}

// errorKind classifies a compile error and returns the option it names.
func errorKind(err error) (kind, option string) {
	var cfgErr *ir.ConfigurationError
	if errors.As(err, &cfgErr) {
		return KindConfiguration, cfgErr.Option
	}
	var argErr *ir.ArgumentError
	if errors.As(err, &argErr) {
		return KindArgument, argErr.Option
	}
	return "other", ""
}
