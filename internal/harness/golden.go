package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden text of a result: the statement, or the error
// message when compilation failed.
func Snapshot(result *Result) []byte {
	if result.Err != nil {
		return []byte("error: " + result.Err.Error() + "\n")
	}
	return []byte(result.Statement + "\n")
}

// RunWithGolden runs a scenario and compares its snapshot with
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check assertions. Returns an error
// only when the scenario cannot be executed.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result with the named golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(result))
}
