package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crossforge-build/crossforge/internal/config"
	"github.com/crossforge-build/crossforge/internal/msg"
)

// resolveManifest normalizes the positional build target into a manifest
// path relative to the build root. A leading "//" anchors the path at the
// root; naming a directory selects the like-named manifest inside it, so
// "ion/base" means "ion/base/base.gyp".
func resolveManifest(rootDir, arg string) (string, error) {
	path := strings.TrimRight(arg, `/\`)
	path = strings.TrimPrefix(path, "//")

	full := filepath.Join(rootDir, path)
	if info, err := os.Stat(full); err == nil && info.IsDir() {
		path = filepath.Join(path, filepath.Base(path)+".gyp")
		full = filepath.Join(rootDir, path)
	}

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("no such build file %q", arg)
	}
	return path, nil
}

// splitPlatform separates an "os[-flavor]" platform name.
func splitPlatform(platform string) (osName, flavor string) {
	osName, flavor, _ = strings.Cut(platform, "-")
	return osName, flavor
}

// registerManifestFlags is the first pass of a two-pass argument parse.
// Build flags are declared per project, so the flag set depends on which
// manifest is being built: peek at the positional argument before cobra
// parses anything and register one command-line flag per declared variable.
func registerManifestFlags(rootDir string) {
	arg := positionalArg(os.Args[1:])
	if arg == "" {
		return
	}
	manifest, err := resolveManifest(rootDir, arg)
	if err != nil {
		// The real parse will report this properly.
		return
	}

	defaults, err := config.FindBuildFlags(manifest, rootDir)
	if err != nil {
		msg.Fatal("%v", err)
	}
	buildFlagDefaults = defaults

	for name, def := range defaults {
		switch d := def.(type) {
		case int:
			rootCmd.Flags().Int(name, d, "Set gyp variable "+name)
		case string:
			rootCmd.Flags().String(name, d, "Set gyp variable "+name)
		}
	}
}

// positionalArg finds the manifest argument in a raw argument list without a
// full parse. Known boolean flags and --flag=value forms consume one token;
// any other flag is assumed to take the following token as its value.
func positionalArg(args []string) string {
	boolFlags := map[string]bool{
		"--ninja": true, "--keep-going": true, "-k": true,
		"--verbose": true, "-w": true, "--nogyp": true, "--nobuild": true,
		"--clean": true, "--deps": true, "--test": true, "-t": true,
		"--test_until_failure": true, "-T": true,
		"--help": true, "-h": true,
	}

	skipNext := false
	for _, arg := range args {
		if skipNext {
			skipNext = false
			continue
		}
		if !strings.HasPrefix(arg, "-") {
			return arg
		}
		if boolFlags[arg] || strings.Contains(arg, "=") {
			continue
		}
		skipNext = true
	}
	return ""
}
