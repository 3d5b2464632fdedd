package config

import (
	"os"
	"path/filepath"
	"strings"
)

// FindNearest returns the path to filename closest to anchor, walking up the
// directory tree toward rootDir and stopping at the first match. The anchor
// must be relative to rootDir. For example, with anchor "ion/base/base.gyp"
// and filename "common_variables.toml" the candidates are:
//
//	rootDir/ion/base/common_variables.toml
//	rootDir/ion/common_variables.toml
//	rootDir/common_variables.toml
//
// in that order. Returns "" if no candidate exists.
func FindNearest(anchor, filename, rootDir string) string {
	dir := filepath.Dir(filepath.Clean(anchor))
	parts := strings.Split(dir, string(os.PathSeparator))
	if dir == "." {
		parts = nil
	}

	for len(parts) > 0 {
		candidate := filepath.Join(rootDir, filepath.Join(parts...), filename)
		if isFile(candidate) {
			return candidate
		}
		parts = parts[:len(parts)-1]
	}

	candidate := filepath.Join(rootDir, filename)
	if isFile(candidate) {
		return candidate
	}
	return ""
}

func isFile(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && !stat.IsDir()
}
