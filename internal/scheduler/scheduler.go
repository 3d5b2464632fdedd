// Package scheduler runs built test binaries in parallel and aggregates
// their exit statuses.
package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/crossforge-build/crossforge/internal/depgraph"
	"github.com/crossforge-build/crossforge/internal/msg"
	"github.com/crossforge-build/crossforge/internal/strategy"
)

// TestSuffix is the naming convention that marks a target as a test.
const TestSuffix = "_test"

// ResultsFilename is the per-run results manifest written next to the build
// output.
const ResultsFilename = "test_results.json"

// Invoker is the part of a builder the scheduler needs: the per-test
// invocation hook, the one-time setup hook, and where to put the results
// manifest.
type Invoker interface {
	Invocation(configuration, target string, extraArgs []string) *strategy.TestInvocation
	GlobalTestSetup() error
	OutputRootDir() string
}

// Result is the outcome of one test invocation. Immutable once produced.
type Result struct {
	Target string `json:"target"`
	Status int    `json:"status"`
	Output string `json:"-"`
}

// Options configures one scheduling run.
type Options struct {
	PoolSize  int
	Verbose   bool
	ExtraArgs []string
}

// SelectTargets filters a dependency graph for test targets, optionally
// narrowed by a glob over target names. The returned order is unspecified.
func SelectTargets(graph depgraph.Graph, filter string) ([]string, error) {
	var targets []string
	for _, target := range graph.Targets() {
		if !strings.HasSuffix(target, TestSuffix) {
			continue
		}
		if filter != "" {
			matched, err := doublestar.Match(filter, target)
			if err != nil {
				return nil, fmt.Errorf("bad test filter %q: %w", filter, err)
			}
			if !matched {
				continue
			}
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// Scheduler submits test invocations to a bounded worker pool and
// serializes their console output.
type Scheduler struct {
	invoker Invoker
	opts    Options

	// stdoutMu guards the console: one test's banner and buffered output
	// are always flushed atomically.
	stdoutMu sync.Mutex

	// run spawns one test process and returns its exit status and combined
	// output. Swapped out by tests.
	run func(argv []string) (int, string)
}

func New(invoker Invoker, opts Options) *Scheduler {
	if opts.PoolSize <= 0 {
		opts.PoolSize = 1
	}
	return &Scheduler{invoker: invoker, opts: opts, run: runCommand}
}

// RunAll submits every target to the worker pool, waits for all results,
// and returns the bitwise OR of the exit statuses: zero only if every test
// passed.
func (s *Scheduler) RunAll(configuration string, targets []string) (int, error) {
	if err := s.invoker.GlobalTestSetup(); err != nil {
		return 1, err
	}
	msg.Info("Running %d test targets.", len(targets))

	results := make([]*Result, len(targets))

	// The pool is created once per run and joined exactly once, on every
	// exit path.
	eg, _ := errgroup.WithContext(context.Background())
	eg.SetLimit(s.opts.PoolSize)
	for i, target := range targets {
		eg.Go(func() error {
			results[i] = s.runOne(configuration, target)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 1, err
	}

	combined := 0
	for _, result := range results {
		if result.Status != 0 {
			// Do not change the line below; downstream result filters
			// match on it.
			fmt.Println("TEST RETURNED NON-ZERO:", result.Target)
		}
		combined |= result.Status
	}

	s.writeResults(configuration, results)
	return combined, nil
}

// RunUntilFailure runs targets one at a time in the order given and returns
// the first non-zero exit status without invoking the remaining targets.
func (s *Scheduler) RunUntilFailure(configuration string, targets []string) (int, error) {
	if err := s.invoker.GlobalTestSetup(); err != nil {
		return 1, err
	}
	msg.Info("Running %d test targets.", len(targets))

	var results []*Result
	for _, target := range targets {
		result := s.runOne(configuration, target)
		results = append(results, result)
		if result.Status != 0 {
			fmt.Println("TEST RETURNED NON-ZERO:", result.Target)
			s.writeResults(configuration, results)
			return result.Status, nil
		}
	}

	s.writeResults(configuration, results)
	return 0, nil
}

// runOne executes one test and flushes its output atomically. Invocations
// with no execution story yield a well-formed zero-status result so the
// aggregation logic stays uniform.
func (s *Scheduler) runOne(configuration, target string) *Result {
	invocation := s.invoker.Invocation(configuration, target, s.opts.ExtraArgs)

	if invocation.Skip {
		s.stdoutMu.Lock()
		fmt.Println(msg.TestHeader(target))
		fmt.Println("No way to run test, skipping", target)
		s.stdoutMu.Unlock()
		return &Result{Target: target, Status: 0}
	}

	status, output := s.run(invocation.Args)

	s.stdoutMu.Lock()
	if status != 0 || s.opts.Verbose {
		if status != 0 {
			fmt.Print(color.RedString("FAILED: "))
		}
		fmt.Println(msg.TestHeader(target))
		fmt.Println(output)
	} else {
		fmt.Printf("%s%s\n", color.GreenString("PASSED: "), target)
	}
	s.stdoutMu.Unlock()

	return &Result{Target: target, Status: status, Output: output}
}

// runCommand spawns a test process and waits for it, capturing combined
// output. An interrupted or signal-killed process reports the sentinel
// status -1 rather than propagating.
func runCommand(argv []string) (int, string) {
	cmd := exec.Command(argv[0], argv[1:]...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	if err == nil {
		return 0, buf.String()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// ExitCode is -1 when the process was killed by a signal.
		return exitErr.ExitCode(), buf.String()
	}
	return -1, buf.String() + err.Error() + "\n"
}

type resultsManifest struct {
	RunID         string    `json:"run_id"`
	Configuration string    `json:"configuration"`
	Results       []*Result `json:"results"`
}

// writeResults records the run's outcomes next to the build output.
// Best-effort; a write failure never fails the run.
func (s *Scheduler) writeResults(configuration string, results []*Result) {
	manifest := resultsManifest{
		RunID:         uuid.NewString(),
		Configuration: configuration,
		Results:       results,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		msg.Warn("failed to encode test results: %v", err)
		return
	}
	path := filepath.Join(s.invoker.OutputRootDir(), ResultsFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		msg.Warn("failed to write %s: %v", path, err)
	}
}
