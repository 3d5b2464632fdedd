package depgraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStripsTargetMarkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), DumpFilename)
	require.NoError(t, os.WriteFile(path, []byte(`{
		"base/base.gyp:base#target": [],
		"math/math.gyp:math#target": ["base/base.gyp:base#target"],
		"math/math.gyp:math_test#target": ["math/math.gyp:math#target", "base/base.gyp:base"]
	}`), 0o644))

	graph, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, Graph{
		"base/base.gyp:base":      []string{},
		"math/math.gyp:math":      {"base/base.gyp:base"},
		"math/math.gyp:math_test": {"math/math.gyp:math", "base/base.gyp:base"},
	}, graph)

	assert.ElementsMatch(t, []string{
		"base/base.gyp:base",
		"math/math.gyp:math",
		"math/math.gyp:math_test",
	}, graph.Targets())
}

func TestParseMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), DumpFilename)
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), DumpFilename))
	require.Error(t, err)
}

func TestDumpErrorNamesCandidates(t *testing.T) {
	err := &DumpError{Candidates: []string{"a/dump.json", "b/dump.json"}}
	assert.Equal(t, "dependency dump not found at a/dump.json or b/dump.json", err.Error())
}
