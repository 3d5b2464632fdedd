package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crossforge-build/crossforge/internal/config"
	"github.com/crossforge-build/crossforge/internal/depgraph"
	"github.com/crossforge-build/crossforge/internal/msg"
	"github.com/crossforge-build/crossforge/internal/scheduler"
	"github.com/crossforge-build/crossforge/internal/strategy"
)

// testRunner wires the dependency dump, target selection and the scheduler
// into the orchestrator's test phase.
type testRunner struct {
	build    *strategy.Builder
	opts     *strategy.Options
	manifest string
	platform string
}

func (t *testRunner) targets() ([]string, error) {
	osName, flavor := splitPlatform(t.platform)
	dump := strategy.NewDependencyDump(t.opts, osName, flavor)
	graph, err := depgraph.Load(dump, t.opts.RootDir, t.manifest)
	if err != nil {
		return nil, err
	}
	targets, err := scheduler.SelectTargets(graph, flagTestFilter)
	if err != nil {
		return nil, err
	}
	slices.Sort(targets)
	return targets, nil
}

func (t *testRunner) scheduler() *scheduler.Scheduler {
	return scheduler.New(t.build, scheduler.Options{
		PoolSize:  t.opts.PoolSize(),
		Verbose:   flagVerbose,
		ExtraArgs: flagTestArgs,
	})
}

func (t *testRunner) RunAll(configuration string) (int, error) {
	targets, err := t.targets()
	if err != nil {
		return 1, err
	}
	return t.scheduler().RunAll(configuration, targets)
}

func (t *testRunner) RunUntilFailure(configuration string) (int, error) {
	targets, err := t.targets()
	if err != nil {
		return 1, err
	}
	return t.scheduler().RunUntilFailure(configuration, targets)
}

// dumpDeps prints every target in the manifest with its direct dependencies.
// The raw dump.json stays behind in the dump output directory.
func dumpDeps(opts *strategy.Options, platform, manifest string) {
	msg.Info("Running gyp in deps mode...")
	osName, flavor := splitPlatform(platform)
	dump := strategy.NewDependencyDump(opts, osName, flavor)
	graph, err := depgraph.Load(dump, opts.RootDir, manifest)
	if err != nil {
		msg.Fatal("%v", err)
	}

	// Dependents print before their dependencies; a cycle in the dump is a
	// generator bug worth failing loudly on.
	targets, err := graph.TopoSort()
	if err != nil {
		msg.Fatal("%v", err)
	}
	for _, target := range targets {
		fmt.Println(target)
		deps := slices.Clone(graph[target])
		slices.Sort(deps)
		for _, dep := range deps {
			fmt.Println("  " + dep)
		}
	}
}

// composeVars merges the project's active build flags with raw -D pairs.
// Only flags the user moved off their declared default are forwarded.
func composeVars(cmd *cobra.Command) map[string]string {
	resolved := make(map[string]any, len(buildFlagDefaults))
	for name, def := range buildFlagDefaults {
		switch def.(type) {
		case int:
			v, _ := cmd.Flags().GetInt(name)
			resolved[name] = v
		case string:
			v, _ := cmd.Flags().GetString(name)
			resolved[name] = v
		}
	}

	vars := make(map[string]string)
	for name, value := range config.ActiveFlags(buildFlagDefaults, resolved) {
		vars[name] = fmt.Sprint(value)
	}
	for _, pair := range flagDefines {
		name, value, _ := strings.Cut(pair, "=")
		vars[name] = value
	}
	return vars
}
