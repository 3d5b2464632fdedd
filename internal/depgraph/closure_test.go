package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitiveDeps(t *testing.T) {
	graph := Graph{
		"app":  {"ui", "core"},
		"ui":   {"core"},
		"core": {"base"},
		"base": nil,
	}

	deps, err := graph.TransitiveDeps("app")
	require.NoError(t, err)
	// Direct dependencies first, then theirs; each exactly once.
	assert.Equal(t, []string{"ui", "core", "base"}, deps)

	deps, err = graph.TransitiveDeps("base")
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestTransitiveDepsSelfCycle(t *testing.T) {
	graph := Graph{"loop": {"loop"}}

	var cycle *CycleError
	_, err := graph.TransitiveDeps("loop")
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, "loop", cycle.Target)
}

func TestTopoSort(t *testing.T) {
	graph := Graph{
		"app":  {"ui", "core"},
		"ui":   {"core"},
		"core": {"base"},
		"base": nil,
	}

	sorted, err := graph.TopoSort()
	require.NoError(t, err)
	require.Len(t, sorted, 4)

	position := map[string]int{}
	for i, target := range sorted {
		position[target] = i
	}
	for target, deps := range graph {
		for _, dep := range deps {
			assert.Less(t, position[target], position[dep], "%s must precede %s", target, dep)
		}
	}

	// Deterministic across runs.
	again, err := graph.TopoSort()
	require.NoError(t, err)
	assert.Equal(t, sorted, again)
}

func TestTopoSortCycle(t *testing.T) {
	graph := Graph{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
	}

	var cycle *CycleError
	_, err := graph.TopoSort()
	require.ErrorAs(t, err, &cycle)
}
