package harness

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	scenarioDir       = "testdata/scenarios"
	associationsCue   = "testdata/configs/associations.cue"
	layerWithoutJoins = "testdata/configs/nojoins.yaml"
)

func TestScenarios(t *testing.T) {
	scenarios, err := LoadDir(scenarioDir)
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			var (
				result *Result
				err    error
			)
			if s.Golden {
				result, err = RunWithGolden(t, s)
			} else {
				result, err = Run(s)
			}
			require.NoError(t, err)
			assert.True(t, result.Pass, "failures:\n%v", result.Errors)
		})
	}
}

func TestRun_Success(t *testing.T) {
	s := &Scenario{
		Name:        "titles",
		Description: "root columns only",
		Config:      associationsCue,
		Scope:       "parent_titles",
		Query:       "intro",
		Assertions: []Assertion{
			{Type: AssertJoinCount, Count: 1},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	require.NotNil(t, result.Fragment)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	assert.Nil(t, result.Err)
	assert.Equal(t, "posts", result.Fragment.Table)
	assert.Contains(t, result.Statement, `SELECT "posts".*, `)
	assert.Contains(t, result.Statement, " AS pg_search_rank FROM \"posts\" LEFT OUTER JOIN ")
}

func TestRun_FailedAssertion(t *testing.T) {
	s := &Scenario{
		Name:        "wrong_count",
		Description: "expects a join that is not there",
		Config:      layerWithoutJoins,
		Scope:       "titles",
		Query:       "fox",
		Assertions: []Assertion{
			{Type: AssertJoinCount, Count: 2},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Expected: 2 joins")
	assert.Contains(t, result.Errors[0], "Actual: 0 joins")
}

func TestRun_UnexpectedCompileError(t *testing.T) {
	s := &Scenario{
		Name:        "layer",
		Description: "association on a layer without joins",
		Config:      layerWithoutJoins,
		Scope:       "with_association",
		Query:       "fox",
		Assertions: []Assertion{
			{Type: AssertContains, Section: SectionCondition, Text: "@@"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Nil(t, result.Fragment)
	require.Error(t, result.Err)
	// the contains assertion is skipped; only the compile failure is reported
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "compile failed: argument error: associated_against")
}

func TestRun_ExpectedErrorButCompiled(t *testing.T) {
	s := &Scenario{
		Name:        "no_error",
		Description: "expects an error from a valid scope",
		Config:      layerWithoutJoins,
		Scope:       "titles",
		Query:       "fox",
		Assertions: []Assertion{
			{Type: AssertError, Kind: KindArgument},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Actual: compiled successfully")
}

func TestRun_MissingConfig(t *testing.T) {
	s := &Scenario{
		Name:   "missing",
		Config: filepath.Join(t.TempDir(), "absent.cue"),
		Scope:  "titles",
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario missing: loading config")
}

func TestRun_UndeclaredScope(t *testing.T) {
	s := &Scenario{
		Name:   "undeclared",
		Config: associationsCue,
		Scope:  "nope",
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `scope "nope" is not declared`)
}

func TestHarness_LogsScenario(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := &Scenario{
		Name:        "logged",
		Description: "debug output",
		Config:      associationsCue,
		Scope:       "commenter_names",
		Query:       "ada",
		Assertions:  []Assertion{{Type: AssertInnerJoinCount, Count: 2}},
	}

	result, err := New(logger).Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "%v", result.Errors)

	out := buf.String()
	assert.Contains(t, out, "scenario finished")
	assert.Contains(t, out, "scenario=logged")
	assert.Contains(t, out, "pass=true")
	assert.Contains(t, out, "join plan built")
}

func TestSnapshot(t *testing.T) {
	s := &Scenario{
		Name:        "blank",
		Description: "blank query",
		Config:      associationsCue,
		Scope:       "parent_titles",
		Query:       " ",
		Assertions:  []Assertion{{Type: AssertError, Kind: KindArgument, Option: "query"}},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "%v", result.Errors)
	assert.Equal(t, "error: argument error: query: search query must not be blank\n", string(Snapshot(result)))

	ok := &Result{Statement: "SELECT 1"}
	assert.Equal(t, "SELECT 1\n", string(Snapshot(ok)))
}
