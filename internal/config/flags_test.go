package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root string, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFindBuildFlags(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "proj/common_variables.toml", `
includes = ["../shared/common_variables.toml"]

[variables]
use_widgets = 0
toolchain = "default"
level = "3"
`)
	writeFile(t, root, "shared/common_variables.toml", `
[variables]
use_widgets = 1
extra_checks = 0
`)
	writeFile(t, root, "proj/proj.gyp", "")

	flags, err := FindBuildFlags("proj/proj.gyp", root)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"use_widgets":  0, // nearest document wins over the include
		"toolchain":    "default",
		"level":        3, // integer-looking strings coerce to int
		"extra_checks": 0,
	}, flags)
}

func TestFindBuildFlagsNoDocument(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "proj/proj.gyp", "")

	flags, err := FindBuildFlags("proj/proj.gyp", root)
	require.NoError(t, err)
	assert.Empty(t, flags)
}

func TestFindBuildFlagsMalformed(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "common_variables.toml", "variables = [not toml")
	writeFile(t, root, "proj.gyp", "")

	_, err := FindBuildFlags("proj.gyp", root)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestActiveFlags(t *testing.T) {
	defaults := map[string]any{"use_widgets": 0, "toolchain": "default"}

	// An unmodified run forwards nothing.
	assert.Empty(t, ActiveFlags(defaults, map[string]any{
		"use_widgets": 0,
		"toolchain":   "default",
	}))

	active := ActiveFlags(defaults, map[string]any{
		"use_widgets": 1,
		"toolchain":   "default",
	})
	assert.Equal(t, map[string]any{"use_widgets": 1}, active)
}

func TestFindNearest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "common_variables.toml", "")
	writeFile(t, root, "a/common_variables.toml", "")

	got := FindNearest("a/b/x.gyp", "common_variables.toml", root)
	assert.Equal(t, filepath.Join(root, "a", "common_variables.toml"), got)

	got = FindNearest("c/x.gyp", "common_variables.toml", root)
	assert.Equal(t, filepath.Join(root, "common_variables.toml"), got)

	assert.Empty(t, FindNearest("a/x.gyp", "no_such_file.toml", root))
}
