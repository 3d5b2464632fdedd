//go:build windows

package strategy

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/heaths/go-vssetup"
)

// msbuildBinary locates MSBuild through the Visual Studio setup
// configuration API, preferring the newest installed instance. Falls back to
// PATH when no instance is registered.
func msbuildBinary() (string, error) {
	instances, err := vssetup.Instances(false)
	if err == nil {
		var newest string
		for _, instance := range instances {
			path, err := instance.InstallationPath()
			if err != nil {
				continue
			}
			candidate := filepath.Join(path, "MSBuild", "Current", "Bin", "MSBuild.exe")
			if _, err := os.Stat(candidate); err == nil {
				newest = candidate
			}
			instance.Close()
		}
		if newest != "" {
			return newest, nil
		}
	}

	if path, err := exec.LookPath("msbuild"); err == nil {
		return path, nil
	}
	return "", errors.New("could not locate MSBuild; install Visual Studio or put msbuild on PATH")
}
