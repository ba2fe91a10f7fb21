package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes a scenario next to a placeholder config and returns
// its path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "search.cue"), []byte("model: post: {}\n"), 0644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: titles
description: "Title search"
config: search.cue
scope: titles
query: "hello world"
assertions:
  - type: contains
    section: condition
    text: "@@"
  - type: join_associations
    index: 1
    associations: [comments, replies]
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "titles", s.Name)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "search.cue"), s.Config)
	assert.Equal(t, "hello world", s.Query)
	assert.False(t, s.Golden)
	require.Len(t, s.Assertions, 2)
	assert.Equal(t, SectionCondition, s.Assertions[0].Section)
	assert.Equal(t, 1, s.Assertions[1].Index)
	assert.Equal(t, []string{"comments", "replies"}, s.Assertions[1].Associations)
}

func TestLoadScenario_GoldenWithoutAssertions(t *testing.T) {
	path := writeScenario(t, `
name: titles
description: "golden only"
config: search.cue
scope: titles
query: hello
golden: true
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.True(t, s.Golden)
	assert.Empty(t, s.Assertions)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: titles
description: "typo"
config: search.cue
scope: titles
asertions: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
	assert.Contains(t, err.Error(), "asertions")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing name",
			body:    "description: d\nconfig: search.cue\nscope: s\ngolden: true\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			body:    "name: n\nconfig: search.cue\nscope: s\ngolden: true\n",
			wantErr: "description is required",
		},
		{
			name:    "missing config",
			body:    "name: n\ndescription: d\nscope: s\ngolden: true\n",
			wantErr: "config is required",
		},
		{
			name:    "config not found",
			body:    "name: n\ndescription: d\nconfig: other.cue\nscope: s\ngolden: true\n",
			wantErr: "config file not found",
		},
		{
			name:    "missing scope",
			body:    "name: n\ndescription: d\nconfig: search.cue\ngolden: true\n",
			wantErr: "scope is required",
		},
		{
			name:    "no assertions",
			body:    "name: n\ndescription: d\nconfig: search.cue\nscope: s\n",
			wantErr: "assertions are required unless the scenario is golden",
		},
		{
			name:    "missing type",
			body:    "name: n\ndescription: d\nconfig: search.cue\nscope: s\nassertions:\n  - count: 1\n",
			wantErr: "assertions[0]: type is required",
		},
		{
			name:    "unknown type",
			body:    "name: n\ndescription: d\nconfig: search.cue\nscope: s\nassertions:\n  - type: trace_contains\n",
			wantErr: `unknown assertion type "trace_contains"`,
		},
		{
			name:    "negative count",
			body:    "name: n\ndescription: d\nconfig: search.cue\nscope: s\nassertions:\n  - type: join_count\n    count: -1\n",
			wantErr: "count must be non-negative",
		},
		{
			name:    "unknown section",
			body:    "name: n\ndescription: d\nconfig: search.cue\nscope: s\nassertions:\n  - type: contains\n    section: where\n    text: x\n",
			wantErr: `unknown section "where"`,
		},
		{
			name:    "contains without text",
			body:    "name: n\ndescription: d\nconfig: search.cue\nscope: s\nassertions:\n  - type: contains\n    section: rank\n",
			wantErr: "text is required for contains",
		},
		{
			name:    "join_associations without names",
			body:    "name: n\ndescription: d\nconfig: search.cue\nscope: s\nassertions:\n  - type: join_associations\n",
			wantErr: "associations are required",
		},
		{
			name:    "bad error kind",
			body:    "name: n\ndescription: d\nconfig: search.cue\nscope: s\nassertions:\n  - type: error\n    kind: runtime\n",
			wantErr: "kind must be",
		},
		{
			name:    "two error assertions",
			body:    "name: n\ndescription: d\nconfig: search.cue\nscope: s\nassertions:\n  - type: error\n    kind: argument\n  - type: error\n    kind: configuration\n",
			wantErr: "at most one error assertion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDir(t *testing.T) {
	scenarios, err := LoadDir(scenarioDir)
	require.NoError(t, err)

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	assert.Contains(t, names, "another_model_title")
	assert.Contains(t, names, "layer_without_joins")
	// file name order
	assert.Equal(t, "another_model_title", names[0])
}

func TestLoadDir_Empty(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenarios found")
}

func TestLoadDir_DuplicateNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "search.cue"), []byte("model: post: {}\n"), 0644))
	body := "name: same\ndescription: d\nconfig: search.cue\nscope: s\ngolden: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(body), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(body), 0644))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `scenario name "same" used by both`)
}
