package strategy

// TestMode says how a platform executes a built test binary.
type TestMode int

const (
	// TestDirect spawns the binary itself on the host.
	TestDirect TestMode = iota
	// TestNode runs the transpiled binary through a JS engine.
	TestNode
	// TestSelLdr runs the binary through the SecureELF loader shim.
	TestSelLdr
	// TestSkip has no execution story; the invocation is a deterministic
	// success that still logs a skip notice.
	TestSkip
)

// BuildTool selects the native build tool a profile invokes.
type BuildTool int

const (
	ToolNinja BuildTool = iota
	ToolXcode
	ToolMSBuild
)

// BinaryLayout says where a built test binary lives under the output root.
type BinaryLayout int

const (
	// LayoutTests is <out>/<configuration>/tests/<target>.
	LayoutTests BinaryLayout = iota
	// LayoutXcodeObj is <out>/<configuration>/obj/<configuration>/<target>.
	LayoutXcodeObj
	// LayoutXcodeApp is <out>/<configuration>/obj/<configuration>-<sdk>/<target>.app.
	LayoutXcodeApp
	// LayoutNinjaApp is <out>/<configuration>/<target>.app.
	LayoutNinjaApp
)

// Profile is the capability table for one registered builder. Everything
// platform- and generator-specific that used to be an override lives here.
type Profile struct {
	// OS is the target OS identifier. Required.
	OS string
	// Flavor is an optional sub-variant (architecture, simulator, host
	// tools). Selected by passing -o <os>-<flavor>.
	Flavor string
	// Generator is the generator identifier this profile is registered
	// under and passes to gyp via -f.
	Generator string
	// GeneratorPasses overrides the generator invocations when one profile
	// needs several passes (hybrid IDE projects). Empty means one pass with
	// Generator.
	GeneratorPasses []string
	// OutSubdir is the directory under the output root this profile builds
	// into. Must be distinct per (OS, Flavor, Generator).
	OutSubdir string
	// Hosts is the allow-list of host OSes that can build this target.
	Hosts []string

	Tool     BuildTool
	TestMode TestMode
	Layout   BinaryLayout

	// SDK is the xcodebuild -sdk value, when the tool is xcode and a
	// specific SDK is required.
	SDK string

	// ProjectsOut routes generated IDE project files into the shared
	// projects directory via --generator-output, and makes Clean remove
	// that directory too.
	ProjectsOut bool
	// NoSuffix drops the --suffix argument. The hybrid IDE generator does
	// not handle it correctly.
	NoSuffix bool
	// NoParallel passes --no-parallel to the generator.
	NoParallel bool
	// CustomEnvFiles passes the generator flag that makes ninja read
	// toolchain environment files on windows.
	CustomEnvFiles bool
	// XcodeProjectVersion adds the xcode_project_version generator flag.
	XcodeProjectVersion string
	// ConfigurationsDefine forwards the resolved configuration list for
	// this profile as a generator define, for generators that must know all
	// configurations up front.
	ConfigurationsDefine bool

	// GypEnv and BuildEnv contribute extra environment variables to the
	// generator and the native build tool. They receive the resolved
	// options so they can react to flags like --verbose.
	GypEnv   func(o *Options) map[string]string
	BuildEnv func(o *Options) map[string]string
}

// KeyOS is the platform identifier the profile is registered under:
// the target OS, with the flavor appended as "<os>-<flavor>" when set.
func (p Profile) KeyOS() string {
	if p.Flavor != "" {
		return p.OS + "-" + p.Flavor
	}
	return p.OS
}

func (p Profile) passes() []string {
	if len(p.GeneratorPasses) > 0 {
		return p.GeneratorPasses
	}
	return []string{p.Generator}
}
