// Package depgraph loads the target dependency manifest produced by the
// generator's dependency-dump mode.
package depgraph

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crossforge-build/crossforge/internal/strategy"
)

// DumpFilename is the manifest the dump generator writes.
const DumpFilename = "dump.json"

// targetSuffix is the marker the generator appends to target identifiers in
// the dump; it is stripped before the identifiers are used.
const targetSuffix = "#target"

// DumpError reports a dump run that exited successfully but left no
// manifest at any candidate location.
type DumpError struct {
	Candidates []string
}

func (e *DumpError) Error() string {
	return fmt.Sprintf("dependency dump not found at %s", strings.Join(e.Candidates, " or "))
}

// Graph maps a build target to its direct dependencies. Read-only after
// load.
type Graph map[string][]string

// Targets returns every target identifier in the graph, in no particular
// order.
func (g Graph) Targets() []string {
	targets := make([]string, 0, len(g))
	for target := range g {
		targets = append(targets, target)
	}
	return targets
}

// Load runs the dump builder over the manifest and parses the result. The
// dump generator does not create its own parent directories, so the output
// directory is created first. The manifest is looked for in the dump output
// directory and then in the build root.
func Load(dump *strategy.Builder, rootDir, manifest string) (Graph, error) {
	if err := os.MkdirAll(dump.OutputRootDir(), 0o755); err != nil {
		return nil, err
	}

	if err := dump.RunGyp(manifest); err != nil {
		return nil, err
	}

	candidates := []string{
		filepath.Join(dump.OutputRootDir(), DumpFilename),
		filepath.Join(rootDir, DumpFilename),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Parse(path)
		}
	}
	return nil, &DumpError{Candidates: candidates}
}

// Parse reads a dump manifest from disk.
func Parse(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var raw map[string][]string
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	graph := make(Graph, len(raw))
	for target, deps := range raw {
		stripped := make([]string, len(deps))
		for i, dep := range deps {
			stripped[i] = stripSuffix(dep)
		}
		graph[stripSuffix(target)] = stripped
	}
	return graph, nil
}

func stripSuffix(target string) string {
	name, _, _ := strings.Cut(target, targetSuffix)
	return name
}
