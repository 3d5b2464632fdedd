package strategy

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Bundled toolchain locations under the build root.
const (
	ninjaDir   = "third_party/ninja/bin"
	nodeDir    = "third_party/nodejs/bin"
	llvmDir    = "third_party/emscripten/llvm-bin"
	naclSDKDir = "third_party/native_client_sdk/pepper_55"
)

// ninjaBinary returns the ninja executable for the host: $NINJA wins, then
// the bundled binary, then whatever is on PATH.
func ninjaBinary(rootDir, hostOS string) string {
	if p := os.Getenv("NINJA"); p != "" {
		return p
	}
	name := map[string]string{
		"linux": "ninja-linux64",
		"mac":   "ninja-mac",
		"win":   "ninja.exe",
	}[hostOS]
	if name != "" {
		bundled := filepath.Join(rootDir, ninjaDir, name)
		if _, err := os.Stat(bundled); err == nil {
			return bundled
		}
	}
	return "ninja"
}

func nodeBinary(rootDir string) string {
	return filepath.Join(rootDir, nodeDir, "node")
}

func llvmPath(rootDir string) string {
	return filepath.Join(rootDir, llvmDir)
}

func selLdrScript(rootDir string) string {
	return filepath.Join(rootDir, naclSDKDir, "tools", "sel_ldr.py")
}

// solutionPath is where the IDE generator writes the solution for a
// manifest: the manifest base name with the target OS suffix appended.
func (b *Builder) solutionPath(manifest string) string {
	base := strings.TrimSuffix(manifest, filepath.Ext(manifest))
	return filepath.Join(b.ProjectsDir(), fmt.Sprintf("%s_%s.sln", base, b.profile.OS))
}

func (b *Builder) xcodeProject(manifest string) string {
	base := strings.TrimSuffix(manifest, filepath.Ext(manifest))
	return fmt.Sprintf("%s_%s.xcodeproj", base, b.profile.OS)
}

// buildCommand resolves the native build tool invocation for one
// configuration: binary, arguments, and working directory.
func (b *Builder) buildCommand(configuration, manifest string) (binary string, args []string, cwd string, err error) {
	switch b.profile.Tool {
	case ToolXcode:
		binary = "/usr/bin/xcodebuild"
		if b.opts.KeepGoing {
			args = append(args, "-PBXBuildsContinueAfterErrors=YES")
		}
		if b.opts.Verbose {
			args = append(args, "-verbose")
		}
		if b.opts.Threads > 0 {
			// Without --threads, xcodebuild picks its own job count.
			args = append(args, fmt.Sprintf("-jobs=%d", b.opts.Threads))
		}
		args = append(args, "-configuration", configuration)
		args = append(args, "-project", b.xcodeProject(manifest))
		if b.profile.SDK != "" {
			args = append(args, "-sdk", b.profile.SDK)
		}
		return binary, args, b.ProjectsDir(), nil

	case ToolMSBuild:
		binary, err = msbuildBinary()
		if err != nil {
			return "", nil, "", err
		}
		solution := b.solutionPath(manifest)
		args = append(args, solution)
		if b.opts.Threads > 0 {
			args = append(args, fmt.Sprintf("-m:%d", b.opts.Threads))
		} else {
			args = append(args, "-m")
		}
		args = append(args, "-p:Configuration="+configuration)
		if b.opts.Verbose {
			args = append(args, "-verbosity:detailed")
		}
		return binary, args, b.opts.RootDir, nil

	default:
		binary = ninjaBinary(b.opts.RootDir, b.opts.HostOS)
		threads := b.opts.Threads
		if threads <= 0 {
			threads = runtime.NumCPU()
		}
		args = append(args, "-j", strconv.Itoa(threads))
		args = append(args, "-C", b.OutputDir(configuration))
		if b.opts.KeepGoing {
			args = append(args, "-k", "0") // 0 means continue until INT_MAX failures
		}
		if b.opts.Verbose {
			args = append(args, "-v")
		}
		return binary, args, b.opts.RootDir, nil
	}
}
