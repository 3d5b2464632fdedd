package strategy

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/crossforge-build/crossforge/internal/config"
	"github.com/crossforge-build/crossforge/internal/msg"
)

// Subdirectories of the build root where outputs land. Build outputs are
// namespaced per profile under OutDirName; generated IDE projects share
// ProjectsDirName and are not namespaced, so project names must not collide
// across platforms.
const (
	OutDirName      = "gyp-out"
	ProjectsDirName = "gyp-projects/build"
)

// InvalidTargetError is raised before any subprocess is spawned when the
// current host cannot build for the requested target platform.
type InvalidTargetError struct {
	Target string
	Host   string
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("cannot build for target OS %q on host OS %q", e.Target, e.Host)
}

// HostOS maps the running platform to a host identifier.
func HostOS() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return "linux", nil
	case "darwin":
		return "mac", nil
	case "windows":
		return "win", nil
	}
	return "", fmt.Errorf("unknown host OS %q", runtime.GOOS)
}

// Options carries the resolved command-line state one builder run needs.
// A Builder holds a reference to this and is not reused across runs.
type Options struct {
	RootDir string
	HostOS  string

	Threads   int // 0 means pick per tool
	KeepGoing bool
	Verbose   bool

	// Vars is the variable set forwarded to the generator: active build
	// flags plus raw -D pairs.
	Vars map[string]string
	// GenFlags are raw -G values forwarded to the generator.
	GenFlags []string

	// Revision is the source tree revision stamp, when resolvable.
	Revision string

	// Resolver provides configuration lists for profiles that must forward
	// them to the generator.
	Resolver *config.Resolver
}

// PoolSize is the test worker pool size: --threads if given, otherwise the
// host logical CPU count.
func (o *Options) PoolSize() int {
	if o.Threads > 0 {
		return o.Threads
	}
	return runtime.NumCPU()
}

// Builder encapsulates everything platform- and generator-specific about
// one build: which generator to invoke and with what arguments, where the
// output lives, how to run the native build tool, and how to locate and
// execute built test binaries. Behavior is driven by the capability Profile.
type Builder struct {
	profile Profile
	opts    *Options
}

// New constructs a builder for a profile. Construction never spawns
// anything; host compatibility is checked when a subprocess is about to run.
func New(profile Profile, opts *Options) *Builder {
	return &Builder{profile: profile, opts: opts}
}

func (b *Builder) Profile() Profile { return b.profile }

// ConfigKey is the resolver key for this builder.
func (b *Builder) ConfigKey() config.Key {
	return config.Key{OS: b.profile.OS, Flavor: b.profile.Flavor, Generator: b.profile.Generator}
}

// CanBuildOnHost reports whether the current host is in the profile's
// allow-list.
func (b *Builder) CanBuildOnHost() bool {
	for _, host := range b.profile.Hosts {
		if host == b.opts.HostOS {
			return true
		}
	}
	return false
}

func (b *Builder) hostCheck() error {
	if !b.CanBuildOnHost() {
		return &InvalidTargetError{Target: b.profile.KeyOS(), Host: b.opts.HostOS}
	}
	return nil
}

// OutputRootDir is where all of this builder's build output goes, distinct
// per (OS, flavor, generator) so concurrent builds never collide.
func (b *Builder) OutputRootDir() string {
	return filepath.Join(b.opts.RootDir, OutDirName, b.profile.OutSubdir)
}

// OutputDir is the build output directory for one configuration.
func (b *Builder) OutputDir(configuration string) string {
	return filepath.Join(b.OutputRootDir(), configuration)
}

// ProjectsDir is the shared directory for generated IDE project files.
func (b *Builder) ProjectsDir() string {
	return filepath.Join(b.opts.RootDir, ProjectsDirName)
}

// gypBinary locates the generator executable: $GYP wins, then PATH.
func gypBinary() string {
	if p := os.Getenv("GYP"); p != "" {
		return p
	}
	return "gyp"
}

// GypDefines returns the platform-mandatory defines every generator run
// gets. Profile-independent variables (active build flags, -D pairs) are
// merged in separately.
func (b *Builder) GypDefines() (map[string]string, error) {
	defines := map[string]string{
		"host_os":        b.opts.HostOS,
		"OS":             b.profile.OS,
		"flavor":         b.profile.Flavor,
		"gyp_out_os_dir": b.OutputRootDir(),
		// Downstream manifests contain conditionals on target_arch, so the
		// variable must at least exist.
		"target_arch": "",
	}
	if b.opts.Revision != "" {
		defines["build_revision"] = b.opts.Revision
	}
	if b.profile.ConfigurationsDefine {
		if b.opts.Resolver == nil {
			return nil, fmt.Errorf("profile %s needs a configuration resolver", b.profile.KeyOS())
		}
		configurations, err := b.opts.Resolver.Configurations(b.ConfigKey())
		if err != nil {
			return nil, err
		}
		defines["possible_configurations"] = strings.Join(configurations, " ")
	}
	return defines, nil
}

// GypArgs returns the extra arguments this builder passes to the generator,
// before defines and the manifest are appended.
func (b *Builder) GypArgs() *config.Args {
	args := config.NewArgs()
	args.Append("-G", b.opts.GenFlags...)
	args.Append("-G", "output_dir="+b.OutputRootDir())
	args.Set("--depth", b.opts.RootDir)
	args.SetBare("--check")
	args.Set("--suffix", "_"+b.profile.OS)

	if b.profile.ProjectsOut {
		args.Set("--generator-output", b.ProjectsDir())
	}
	if b.profile.NoSuffix {
		args.Delete("--suffix")
	}
	if b.profile.NoParallel {
		args.SetBare("--no-parallel")
	}
	if b.profile.CustomEnvFiles {
		args.Append("-G", "ninja_use_custom_environment_files")
	}
	if b.profile.XcodeProjectVersion != "" {
		args.Append("-G", "xcode_project_version="+b.profile.XcodeProjectVersion)
	}
	return args
}

// gypFilePath returns the manifest path to hand the generator. Ninja passes
// get an absolute path; a relative one makes ninja emit duplicate rules.
func (b *Builder) gypFilePath(manifest, generator string) string {
	if strings.HasPrefix(generator, "ninja") {
		return filepath.Clean(filepath.Join(b.opts.RootDir, manifest))
	}
	return manifest
}

// ComposeGeneratorArgs assembles the full generator argument list for one
// generator pass over the manifest.
func (b *Builder) ComposeGeneratorArgs(manifest, generator string) ([]string, error) {
	args := b.GypArgs()

	defines, err := b.GypDefines()
	if err != nil {
		return nil, err
	}
	for k, v := range defines {
		args.Append("-D", k+"="+v)
	}
	for k, v := range b.opts.Vars {
		args.Append("-D", k+"="+v)
	}
	// A well-known define order keeps repeated runs byte-identical.
	args.SortValues("-D")

	if generator != "" {
		args.Set("-f", generator)
	}

	// Force-include the per-project configuration document, if one exists;
	// projects can use this infrastructure without one.
	if doc := config.FindNearest(manifest, config.ConfigurationsDocument, b.opts.RootDir); doc != "" {
		args.Set("-I", doc)
	}

	rendered := args.Render("--no-duplicate-basename-check", b.gypFilePath(manifest, generator))
	return rendered, nil
}

// GypEnv is the environment for generator runs.
func (b *Builder) GypEnv() []string {
	env := append(os.Environ(), "GYP_CROSSCOMPILE=1")
	if b.profile.GypEnv != nil {
		for k, v := range b.profile.GypEnv(b.opts) {
			env = append(env, k+"="+v)
		}
	}
	return env
}

// RunGyp runs the generator, once per generator pass, with the build root as
// the working directory. Fails fast with InvalidTargetError before spawning
// anything when the host cannot build this target.
func (b *Builder) RunGyp(manifest string) error {
	if err := b.hostCheck(); err != nil {
		return err
	}

	for _, generator := range b.profile.passes() {
		args, err := b.ComposeGeneratorArgs(manifest, generator)
		if err != nil {
			return err
		}

		fmt.Println("gyp " + strings.Join(args, " "))

		cmd := exec.Command(gypBinary(), args...)
		cmd.Dir = b.opts.RootDir
		cmd.Env = b.GypEnv()
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return err
		}
	}
	return nil
}

// RunBuild invokes the native build tool for one configuration.
func (b *Builder) RunBuild(configuration, manifest string) error {
	if err := b.hostCheck(); err != nil {
		return err
	}

	binary, args, cwd, err := b.buildCommand(configuration, manifest)
	if err != nil {
		return err
	}

	env := os.Environ()
	if b.profile.BuildEnv != nil {
		for k, v := range b.profile.BuildEnv(b.opts) {
			env = append(env, k+"="+v)
		}
	}

	fmt.Println(strings.Join(append([]string{binary}, args...), " "))

	cmd := exec.Command(binary, args...)
	cmd.Dir = cwd
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// targetName strips the manifest part of a "path/to/file.gyp:target" id.
func targetName(target string) string {
	if i := strings.LastIndex(target, ":"); i >= 0 {
		return target[i+1:]
	}
	return target
}

// TestBinaryPath returns the deterministic path of a built test artifact.
func (b *Builder) TestBinaryPath(configuration, target string) string {
	name := targetName(target)
	switch b.profile.Layout {
	case LayoutXcodeObj:
		return filepath.Join(b.OutputRootDir(), configuration, "obj", configuration, name)
	case LayoutXcodeApp:
		return filepath.Join(b.OutputRootDir(), configuration, "obj", configuration+"-"+b.profile.SDK, name+".app")
	case LayoutNinjaApp:
		return filepath.Join(b.OutputRootDir(), configuration, name+".app")
	default:
		return filepath.Join(b.OutputDir(configuration), "tests", name)
	}
}

// TestInvocation describes how to execute one built test. Skip invocations
// carry no argv and report deterministic success.
type TestInvocation struct {
	Target string
	Args   []string
	Skip   bool
}

// Invocation returns the execution recipe for one test target.
func (b *Builder) Invocation(configuration, target string, extraArgs []string) *TestInvocation {
	path := b.TestBinaryPath(configuration, target)

	switch b.profile.TestMode {
	case TestNode:
		args := []string{nodeBinary(b.opts.RootDir), path}
		if len(extraArgs) > 0 {
			args = append(args, "--")
			args = append(args, extraArgs...)
		}
		return &TestInvocation{Target: target, Args: args}
	case TestSelLdr:
		args := []string{"python", selLdrScript(b.opts.RootDir), path}
		if len(extraArgs) > 0 {
			args = append(args, "--")
			args = append(args, extraArgs...)
		}
		return &TestInvocation{Target: target, Args: args}
	case TestSkip:
		return &TestInvocation{Target: target, Skip: true}
	default:
		return &TestInvocation{Target: target, Args: append([]string{path}, extraArgs...)}
	}
}

// GlobalTestSetup runs once before any tests are invoked.
func (b *Builder) GlobalTestSetup() error {
	return nil
}

// Clean removes the build output directory and, for profiles that write IDE
// projects, the shared projects directory.
func (b *Builder) Clean() error {
	msg.Info("Removing %s", b.OutputRootDir())
	if err := deleteDirectory(b.OutputRootDir()); err != nil {
		return err
	}
	if b.profile.ProjectsOut {
		msg.Info("Removing %s", b.ProjectsDir())
		if err := deleteDirectory(b.ProjectsDir()); err != nil {
			return err
		}
	}
	return nil
}

// deleteDirectory removes a directory, or a symlink to one. In the symlink
// case both the target and the link are removed.
func deleteDirectory(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return err
		}
		if err := os.RemoveAll(target); err != nil {
			return err
		}
		return os.Remove(path)
	}
	return os.RemoveAll(path)
}
