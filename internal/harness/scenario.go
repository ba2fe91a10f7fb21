package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one compile of one query against one scope.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Config is the .cue or .yaml config holding the scope. Relative paths
	// are resolved against the scenario file's directory.
	Config string `yaml:"config"`

	// Scope names the scope to compile.
	Scope string `yaml:"scope"`

	// Query is the search text. It may be blank when the scenario expects
	// an argument error.
	Query string `yaml:"query"`

	// Golden compares the statement with testdata/golden/<name>.golden.
	Golden bool `yaml:"golden,omitempty"`

	// Assertions check the compiled fragment or the compile error.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks one property of a compile.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Section is the fragment part a contains/not_contains assertion reads.
	Section string `yaml:"section,omitempty"`

	// Text is the expected substring (contains, not_contains, error).
	Text string `yaml:"text,omitempty"`

	// Count is the expected number (join_count, inner_join_count).
	Count int `yaml:"count,omitempty"`

	// Index selects the join for join_associations.
	Index int `yaml:"index,omitempty"`

	// Associations are the names the selected join serves, in order.
	Associations []string `yaml:"associations,omitempty"`

	// Kind is the expected error kind: "configuration" or "argument".
	Kind string `yaml:"kind,omitempty"`

	// Option is the option the expected error names.
	Option string `yaml:"option,omitempty"`
}

// Assertion type constants.
const (
	AssertJoinCount        = "join_count"
	AssertInnerJoinCount   = "inner_join_count"
	AssertContains         = "contains"
	AssertNotContains      = "not_contains"
	AssertJoinAssociations = "join_associations"
	AssertError            = "error"
)

// Fragment sections readable by contains and not_contains.
const (
	SectionCondition = "condition"
	SectionRank      = "rank"
	SectionOrderBy   = "order_by"
	SectionJoins     = "joins"
	SectionStatement = "statement"
)

// Error kinds for error assertions.
const (
	KindConfiguration = "configuration"
	KindArgument      = "argument"
)

var validSections = map[string]bool{
	SectionCondition: true,
	SectionRank:      true,
	SectionOrderBy:   true,
	SectionJoins:     true,
	SectionStatement: true,
}

// LoadScenario reads and validates a scenario file.
// Unknown fields are rejected so typos do not silently drop assertions.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) {
		scenario.Config = filepath.Join(filepath.Dir(path), scenario.Config)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// LoadDir loads every .yaml scenario in dir, in file name order.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenarios found in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	names := make(map[string]string)
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		if prev, dup := names[s.Name]; dup {
			return nil, fmt.Errorf("scenario name %q used by both %s and %s", s.Name, prev, path)
		}
		names[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Config == "" {
		return fmt.Errorf("config is required")
	}
	if _, err := os.Stat(s.Config); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", s.Config)
	}
	if s.Scope == "" {
		return fmt.Errorf("scope is required")
	}
	if len(s.Assertions) == 0 && !s.Golden {
		return fmt.Errorf("assertions are required unless the scenario is golden")
	}

	errorAssertions := 0
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
		if a.Type == AssertError {
			errorAssertions++
		}
	}
	if errorAssertions > 1 {
		return fmt.Errorf("at most one error assertion is allowed")
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertJoinCount, AssertInnerJoinCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertContains, AssertNotContains:
		if !validSections[a.Section] {
			return fmt.Errorf("assertions[%d]: unknown section %q", index, a.Section)
		}
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertJoinAssociations:
		if a.Index < 0 {
			return fmt.Errorf("assertions[%d]: index must be non-negative", index)
		}
		if len(a.Associations) == 0 {
			return fmt.Errorf("assertions[%d]: associations are required for join_associations", index)
		}
	case AssertError:
		if a.Kind != KindConfiguration && a.Kind != KindArgument {
			return fmt.Errorf("assertions[%d]: kind must be %q or %q", index, KindConfiguration, KindArgument)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
