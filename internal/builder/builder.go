// Package builder drives the build pipeline: resolve the configuration,
// generate native build files, invoke the native build tool, run the tests.
package builder

import (
	"errors"
	"fmt"

	"github.com/crossforge-build/crossforge/internal/config"
	"github.com/crossforge-build/crossforge/internal/msg"
)

// Phase is the orchestrator's position in the pipeline. Transitions are
// straight-line Idle through Done; any failure jumps to Failed and skips
// the remaining phases.
type Phase int

const (
	Idle Phase = iota
	Resolving
	Generating
	Building
	Testing
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Resolving:
		return "resolving"
	case Generating:
		return "generating"
	case Building:
		return "building"
	case Testing:
		return "testing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// PhaseError attributes a pipeline failure to the phase that produced it.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// Strategy is what the orchestrator needs from the active builder.
type Strategy interface {
	RunGyp(manifest string) error
	RunBuild(configuration, manifest string) error
	Clean() error
	ConfigKey() config.Key
}

// TestRunner runs the test phase for one configuration and returns the
// aggregate exit status.
type TestRunner interface {
	RunAll(configuration string) (int, error)
	RunUntilFailure(configuration string) (int, error)
}

// Flags selects which phases run and how.
type Flags struct {
	Clean            bool
	NoGyp            bool
	NoBuild          bool
	Test             bool
	TestUntilFailure bool
	Configuration    string
}

// Orchestrator owns one end-to-end run.
type Orchestrator struct {
	Strategy Strategy
	Resolver *config.Resolver
	Tests    TestRunner
	Flags    Flags

	phase Phase
}

// Phase returns where the pipeline currently is.
func (o *Orchestrator) Phase() Phase { return o.phase }

func (o *Orchestrator) fail(err error) error {
	failed := &PhaseError{Phase: o.phase, Err: err}
	o.phase = Failed
	return failed
}

// Run drives the pipeline over one manifest. A clean request short-circuits
// everything else; with no manifest it terminates successfully after
// cleaning.
func (o *Orchestrator) Run(manifest string) error {
	o.phase = Idle

	if o.Flags.Clean {
		if err := o.Strategy.Clean(); err != nil {
			return o.fail(err)
		}
		if manifest == "" {
			// Nothing more to do; no build target was given.
			o.phase = Done
			return nil
		}
	}

	o.phase = Resolving
	configuration := o.Flags.Configuration
	if configuration == "" {
		configurations, err := o.Resolver.Configurations(o.Strategy.ConfigKey())
		if err != nil {
			return o.fail(err)
		}
		if len(configurations) == 0 {
			return o.fail(fmt.Errorf("no configurations are defined for %s", o.Strategy.ConfigKey()))
		}
		configuration = configurations[0]
	}

	o.phase = Generating
	if !o.Flags.NoGyp {
		msg.Info("Running gyp...")
		if err := o.Strategy.RunGyp(manifest); err != nil {
			return o.fail(err)
		}
	}

	o.phase = Building
	if !o.Flags.NoBuild {
		msg.Info("Building...")
		if err := o.Strategy.RunBuild(configuration, manifest); err != nil {
			return o.fail(err)
		}
		msg.Info("Build succeeded.")
	}

	o.phase = Testing
	if o.Flags.Test || o.Flags.TestUntilFailure {
		if o.Tests == nil {
			return o.fail(errors.New("no test runner is wired"))
		}
		msg.Info("Testing...")

		var status int
		var err error
		if o.Flags.TestUntilFailure {
			status, err = o.Tests.RunUntilFailure(configuration)
		} else {
			status, err = o.Tests.RunAll(configuration)
		}
		if err != nil {
			return o.fail(err)
		}
		if status != 0 {
			return o.fail(fmt.Errorf("there were test failures (status %d)", status))
		}
		msg.Info("All tests passed.")
	}

	o.phase = Done
	return nil
}
