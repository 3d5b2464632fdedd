package builder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossforge-build/crossforge/internal/config"
)

type fakeStrategy struct {
	calls    []string
	gypErr   error
	buildErr error
	cleanErr error

	builtConfiguration string
}

func (f *fakeStrategy) RunGyp(manifest string) error {
	f.calls = append(f.calls, "gyp")
	return f.gypErr
}

func (f *fakeStrategy) RunBuild(configuration, manifest string) error {
	f.calls = append(f.calls, "build")
	f.builtConfiguration = configuration
	return f.buildErr
}

func (f *fakeStrategy) Clean() error {
	f.calls = append(f.calls, "clean")
	return f.cleanErr
}

func (f *fakeStrategy) ConfigKey() config.Key {
	return config.Key{OS: "linux", Generator: "ninja"}
}

type fakeTests struct {
	status int
	err    error

	allRuns           int
	untilFailureRuns  int
	lastConfiguration string
}

func (f *fakeTests) RunAll(configuration string) (int, error) {
	f.allRuns++
	f.lastConfiguration = configuration
	return f.status, f.err
}

func (f *fakeTests) RunUntilFailure(configuration string) (int, error) {
	f.untilFailureRuns++
	f.lastConfiguration = configuration
	return f.status, f.err
}

func newOrchestrator(strategy *fakeStrategy, tests *fakeTests, flags Flags) *Orchestrator {
	return &Orchestrator{Strategy: strategy, Tests: tests, Flags: flags}
}

func phaseOf(t *testing.T, err error) Phase {
	t.Helper()
	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	return phaseErr.Phase
}

func TestFullPipeline(t *testing.T) {
	s := &fakeStrategy{}
	tests := &fakeTests{}
	o := newOrchestrator(s, tests, Flags{Test: true, Configuration: "opt"})

	require.NoError(t, o.Run("proj.gyp"))
	assert.Equal(t, Done, o.Phase())
	assert.Equal(t, []string{"gyp", "build"}, s.calls)
	assert.Equal(t, "opt", s.builtConfiguration)
	assert.Equal(t, 1, tests.allRuns)
	assert.Zero(t, tests.untilFailureRuns)
}

func TestGenerationFailureSkipsTheRest(t *testing.T) {
	s := &fakeStrategy{gypErr: errors.New("boom")}
	tests := &fakeTests{}
	o := newOrchestrator(s, tests, Flags{Test: true, Configuration: "opt"})

	err := o.Run("proj.gyp")
	assert.Equal(t, Generating, phaseOf(t, err))
	assert.Equal(t, Failed, o.Phase())
	assert.Equal(t, []string{"gyp"}, s.calls)
	assert.Zero(t, tests.allRuns)
}

func TestBuildFailureSkipsTests(t *testing.T) {
	s := &fakeStrategy{buildErr: errors.New("boom")}
	tests := &fakeTests{}
	o := newOrchestrator(s, tests, Flags{Test: true, Configuration: "opt"})

	err := o.Run("proj.gyp")
	assert.Equal(t, Building, phaseOf(t, err))
	assert.Equal(t, []string{"gyp", "build"}, s.calls)
	assert.Zero(t, tests.allRuns)
}

func TestTestFailuresFailTheRun(t *testing.T) {
	s := &fakeStrategy{}
	tests := &fakeTests{status: 2}
	o := newOrchestrator(s, tests, Flags{Test: true, Configuration: "opt"})

	err := o.Run("proj.gyp")
	assert.Equal(t, Testing, phaseOf(t, err))
}

func TestUntilFailureModeSelectsSequentialRunner(t *testing.T) {
	s := &fakeStrategy{}
	tests := &fakeTests{}
	o := newOrchestrator(s, tests, Flags{TestUntilFailure: true, Configuration: "opt"})

	require.NoError(t, o.Run("proj.gyp"))
	assert.Zero(t, tests.allRuns)
	assert.Equal(t, 1, tests.untilFailureRuns)
}

func TestPhaseSkips(t *testing.T) {
	s := &fakeStrategy{}
	o := newOrchestrator(s, &fakeTests{}, Flags{NoGyp: true, NoBuild: true, Configuration: "opt"})

	require.NoError(t, o.Run("proj.gyp"))
	assert.Equal(t, Done, o.Phase())
	assert.Empty(t, s.calls)
}

func TestCleanWithoutManifest(t *testing.T) {
	s := &fakeStrategy{}
	o := newOrchestrator(s, &fakeTests{}, Flags{Clean: true})

	require.NoError(t, o.Run(""))
	assert.Equal(t, Done, o.Phase())
	assert.Equal(t, []string{"clean"}, s.calls)
}

func TestCleanThenBuild(t *testing.T) {
	s := &fakeStrategy{}
	o := newOrchestrator(s, &fakeTests{}, Flags{Clean: true, Configuration: "opt"})

	require.NoError(t, o.Run("proj.gyp"))
	assert.Equal(t, []string{"clean", "gyp", "build"}, s.calls)
}

func TestConfigurationDefaultsToFirstResolved(t *testing.T) {
	docPath := filepath.Join(t.TempDir(), "os.toml")
	require.NoError(t, os.WriteFile(docPath, []byte(`
[target_defaults]
default_configuration = "opt"

[target_defaults.configurations.dbg]
[target_defaults.configurations.opt]
`), 0o644))

	s := &fakeStrategy{}
	o := newOrchestrator(s, &fakeTests{}, Flags{})
	o.Resolver = config.NewResolver(docPath)

	require.NoError(t, o.Run("proj.gyp"))
	assert.Equal(t, "opt", s.builtConfiguration)
}

func TestNoConfigurationsIsAResolutionFailure(t *testing.T) {
	s := &fakeStrategy{}
	o := newOrchestrator(s, &fakeTests{}, Flags{})
	o.Resolver = config.NewResolver(filepath.Join(t.TempDir(), "absent.toml"))

	err := o.Run("proj.gyp")
	assert.Equal(t, Resolving, phaseOf(t, err))
	assert.Empty(t, s.calls)
}
