package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgsRender(t *testing.T) {
	a := NewArgs()
	a.Set("--depth", ".")
	a.SetBare("--check")
	a.Append("-D", "b=2", "a=1")
	a.SortValues("-D")
	a.Set("-f", "ninja")

	got := a.Render("manifest.gyp")
	assert.Equal(t, []string{
		"--check",
		"--depth=.",
		"-D", "a=1",
		"-D", "b=2",
		"-f", "ninja",
		"manifest.gyp",
	}, got)

	// Rendering is a pure function of the flag set.
	assert.Equal(t, got, a.Render("manifest.gyp"))
}

func TestArgsSetReplacesAndDeleteRemoves(t *testing.T) {
	a := NewArgs()
	a.Append("-G", "one")
	a.Set("-G", "two")
	assert.Equal(t, []string{"two"}, a.Values("-G"))

	a.Set("--suffix", "_linux")
	a.Delete("--suffix")
	assert.Equal(t, []string{"-G", "two"}, a.Render())
}

func TestArgsBareOverridesValues(t *testing.T) {
	a := NewArgs()
	a.Set("--check", "yes")
	a.SetBare("--check")
	assert.Equal(t, []string{"--check"}, a.Render())
}
