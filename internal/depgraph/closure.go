package depgraph

import (
	"fmt"
	"slices"
)

// CycleError reports a dependency cycle through the named target.
type CycleError struct {
	Target string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle through %q", e.Target)
}

// TransitiveDeps returns every target reachable from target, in discovery
// order: direct dependencies first, then theirs, which is the proper link
// order for static libraries.
func (g Graph) TransitiveDeps(target string) ([]string, error) {
	var all []string
	seen := map[string]bool{target: true}

	queue := []string{target}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current != target {
			all = append(all, current)
		}
		for _, dep := range g[current] {
			if dep == current {
				return nil, &CycleError{Target: current}
			}
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return all, nil
}

// TopoSort returns all targets ordered so that every target precedes its
// dependencies. Fails with CycleError if the graph is not acyclic.
func (g Graph) TopoSort() ([]string, error) {
	const (
		visiting = 1
		visited  = 2
	)
	state := make(map[string]int, len(g))
	var sorted []string

	var visit func(target string) error
	visit = func(target string) error {
		switch state[target] {
		case visited:
			return nil
		case visiting:
			return &CycleError{Target: target}
		}
		state[target] = visiting
		for _, dep := range g[target] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[target] = visited
		sorted = append(sorted, target)
		return nil
	}

	targets := g.Targets()
	// Deterministic entry order so ties resolve the same way every run.
	slices.Sort(targets)
	for _, target := range targets {
		if err := visit(target); err != nil {
			return nil, err
		}
	}

	// The DFS appends leaves first; dependents come first in the result.
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}
	return sorted, nil
}
