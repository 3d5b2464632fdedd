package strategy

// registerBuiltins registers every built-in profile in a fixed, documented
// order. The order matters: the first profile per platform is the default
// when no generator is requested (see Registry.Resolve).
func registerBuiltins(r *Registry) error {
	profiles := []Profile{
		// linux
		{
			OS:        "linux",
			Generator: "ninja",
			OutSubdir: "linux",
			Hosts:     []string{"linux"},
			BuildEnv: func(o *Options) map[string]string {
				if o.Verbose {
					return map[string]string{"LSBCC_VERBOSE": "1"}
				}
				return nil
			},
		},
		// linux host tools; separate output so tool artifacts don't clobber
		// the non-tool build files
		{
			OS:        "linux",
			Flavor:    "host",
			Generator: "ninja",
			OutSubdir: "linux-host",
			Hosts:     []string{"linux"},
		},
		// web transpile; tests run through node
		{
			OS:        "asmjs",
			Generator: "ninja",
			OutSubdir: "asmjs",
			Hosts:     []string{"linux"},
			TestMode:  TestNode,
			BuildEnv: func(o *Options) map[string]string {
				return map[string]string{
					"LLVM": llvmPath(o.RootDir),
					"NODE": nodeBinary(o.RootDir),
				}
			},
		},
		// sandboxed; tests run through the SecureELF loader
		{
			OS:        "nacl",
			Generator: "ninja",
			OutSubdir: "nacl",
			Hosts:     []string{"linux", "mac"},
			TestMode:  TestSelLdr,
		},
		// portable variant; no way to run the binaries yet
		{
			OS:        "nacl",
			Flavor:    "pnacl",
			Generator: "ninja",
			OutSubdir: "nacl-pnacl",
			Hosts:     []string{"linux", "mac"},
			TestMode:  TestSkip,
		},
		// android; the default builder is implicitly arm
		{
			OS:        "android",
			Generator: "ninja-android",
			OutSubdir: "android",
			Hosts:     []string{"linux", "mac"},
		},
		{
			OS:        "android",
			Flavor:    "arm",
			Generator: "ninja-android",
			OutSubdir: "android-arm",
			Hosts:     []string{"linux", "mac"},
		},
		{
			OS:        "android",
			Flavor:    "x86",
			Generator: "ninja-android",
			OutSubdir: "android-x86",
			Hosts:     []string{"linux", "mac"},
		},
		// no emulator support for the remaining android flavors
		{
			OS:        "android",
			Flavor:    "mips",
			Generator: "ninja-android",
			OutSubdir: "android-mips",
			Hosts:     []string{"linux", "mac"},
			TestMode:  TestSkip,
		},
		{
			OS:        "android",
			Flavor:    "arm64",
			Generator: "ninja-android",
			OutSubdir: "android-arm64",
			Hosts:     []string{"linux", "mac"},
			TestMode:  TestSkip,
		},
		{
			OS:        "android",
			Flavor:    "mips64",
			Generator: "ninja-android",
			OutSubdir: "android-mips64",
			Hosts:     []string{"linux", "mac"},
			TestMode:  TestSkip,
		},
		{
			OS:        "android",
			Flavor:    "x86_64",
			Generator: "ninja-android",
			OutSubdir: "android-x86_64",
			Hosts:     []string{"linux", "mac"},
			TestMode:  TestSkip,
		},
		// mac
		{
			OS:        "mac",
			Generator: "ninja",
			OutSubdir: "mac-ninja",
			Hosts:     []string{"mac"},
		},
		// xcode-ninja hybrid needs two generator passes: one for the shell
		// project, one for the build files the shell uses. The hybrid
		// generator also mishandles --suffix.
		{
			OS:              "mac",
			Generator:       "xcode-ninja",
			GeneratorPasses: []string{"xcode-ninja", "ninja"},
			OutSubdir:       "mac-hybrid",
			Hosts:           []string{"mac"},
			ProjectsOut:     true,
			NoSuffix:        true,
		},
		{
			OS:        "mac",
			Flavor:    "host",
			Generator: "ninja",
			OutSubdir: "mac-ninja-host",
			Hosts:     []string{"mac"},
		},
		{
			OS:                  "mac",
			Generator:           "xcode",
			OutSubdir:           "mac-xcode",
			Hosts:               []string{"mac"},
			Tool:                ToolXcode,
			Layout:              LayoutXcodeObj,
			ProjectsOut:         true,
			XcodeProjectVersion: "3.2",
		},
		// ios
		{
			OS:                  "ios",
			Generator:           "xcode",
			OutSubdir:           "ios",
			Hosts:               []string{"mac"},
			Tool:                ToolXcode,
			Layout:              LayoutXcodeApp,
			SDK:                 "iphoneos",
			ProjectsOut:         true,
			XcodeProjectVersion: "3.2",
		},
		// simulator
		{
			OS:                  "ios",
			Flavor:              "x86",
			Generator:           "xcode",
			OutSubdir:           "ios-x86",
			Hosts:               []string{"mac"},
			Tool:                ToolXcode,
			Layout:              LayoutXcodeApp,
			SDK:                 "iphonesimulator",
			ProjectsOut:         true,
			XcodeProjectVersion: "3.2",
		},
		{
			OS:        "ios",
			Generator: "ninja",
			OutSubdir: "ios-ninja",
			Hosts:     []string{"mac"},
			Layout:    LayoutNinjaApp,
		},
		{
			OS:        "ios",
			Flavor:    "x86",
			Generator: "ninja",
			OutSubdir: "ios-x86-ninja",
			Hosts:     []string{"mac"},
			Layout:    LayoutNinjaApp,
		},
		// windows
		{
			OS:                   "win",
			Generator:            "ninja",
			OutSubdir:            "win-ninja",
			Hosts:                []string{"win"},
			NoParallel:           true,
			CustomEnvFiles:       true,
			ConfigurationsDefine: true,
			GypEnv:               windowsNinjaGypEnv,
		},
		{
			OS:                   "win",
			Flavor:               "host",
			Generator:            "ninja",
			OutSubdir:            "win-ninja-host",
			Hosts:                []string{"win"},
			NoParallel:           true,
			CustomEnvFiles:       true,
			ConfigurationsDefine: true,
			GypEnv:               windowsNinjaGypEnv,
		},
		{
			OS:          "win",
			Generator:   "msvs",
			OutSubdir:   "win-msvs",
			Hosts:       []string{"win"},
			Tool:        ToolMSBuild,
			ProjectsOut: true,
		},
	}

	for _, p := range profiles {
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// windowsNinjaGypEnv gives the generator what it needs for proper host
// toolchain support on windows. The override path value doesn't matter; the
// toolchain paths come from the environment files. The version must match
// the toolchain those files describe.
func windowsNinjaGypEnv(o *Options) map[string]string {
	return map[string]string{
		"AR_host":                "lib.exe",
		"GYP_MSVS_OVERRIDE_PATH": "unused_placeholder_value",
		"GYP_MSVS_VERSION":       "2013",
	}
}

// NewDependencyDump returns a builder that produces the dependency manifest
// for a target instead of build files. It is never registered; any host can
// run the dump.
func NewDependencyDump(opts *Options, targetOS, flavor string) *Builder {
	return New(Profile{
		OS:        targetOS,
		Flavor:    flavor,
		Generator: "dump_dependency_json",
		OutSubdir: "json",
		Hosts:     []string{"linux", "mac", "win"},
	}, opts)
}
