package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "os.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const basicDoc = `
[target_defaults]
default_configuration = "opt"

[target_defaults.configurations.dbg]
optimize = 0

[target_defaults.configurations.opt]
optimize = 2

[target_defaults.configurations.base]
abstract = true

[[target_defaults.conditions]]
when = 'OS == "win"'

[target_defaults.conditions.then.configurations.dbg_x64]
platform = "x64"

[target_defaults.conditions.else.configurations.cov]
coverage = true
`

func TestResolverDefaultSortsFirst(t *testing.T) {
	r := NewResolver(writeDoc(t, basicDoc))

	names, err := r.Configurations(Key{OS: "linux", Generator: "ninja"})
	require.NoError(t, err)
	assert.Equal(t, []string{"opt", "cov", "dbg"}, names)
}

func TestResolverConditionBranches(t *testing.T) {
	r := NewResolver(writeDoc(t, basicDoc))

	names, err := r.Configurations(Key{OS: "win", Generator: "ninja"})
	require.NoError(t, err)
	assert.Equal(t, []string{"opt", "dbg", "dbg_x64"}, names)
}

func TestResolverIsDeterministic(t *testing.T) {
	key := Key{OS: "linux", Generator: "ninja"}

	r := NewResolver(writeDoc(t, basicDoc))
	first, err := r.Configurations(key)
	require.NoError(t, err)

	// Cached second read and a fresh resolver over the same document both
	// agree with the first read.
	second, err := r.Configurations(key)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	fresh, err := NewResolver(writeDoc(t, basicDoc)).Configurations(key)
	require.NoError(t, err)
	assert.Equal(t, first, fresh)
}

func TestResolverNestedConditions(t *testing.T) {
	doc := `
[target_defaults.configurations.dbg]
optimize = 0

[[target_defaults.conditions]]
when = 'OS == "nacl"'

[[target_defaults.conditions.then.conditions]]
when = 'flavor == "pnacl"'

[target_defaults.conditions.then.conditions.then.configurations.portable]
bitcode = true
`
	r := NewResolver(writeDoc(t, doc))

	names, err := r.Configurations(Key{OS: "nacl", Flavor: "pnacl"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dbg", "portable"}, names)

	names, err = r.Configurations(Key{OS: "nacl"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dbg"}, names)
}

func TestResolverUnmatchedDefaultIsNotFatal(t *testing.T) {
	doc := `
[target_defaults]
default_configuration = "shipit"

[target_defaults.configurations.dbg]
[target_defaults.configurations.opt]
`
	r := NewResolver(writeDoc(t, doc))

	names, err := r.Configurations(Key{OS: "linux"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dbg", "opt"}, names)
}

func TestResolverAbstractConfigurationsExcluded(t *testing.T) {
	doc := `
[target_defaults.configurations.base]
abstract = true

[target_defaults.configurations.dbg]
optimize = 0
`
	r := NewResolver(writeDoc(t, doc))

	names, err := r.Configurations(Key{OS: "linux"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dbg"}, names)
}

func TestResolverMalformedPredicate(t *testing.T) {
	doc := `
[[target_defaults.conditions]]
when = 'OS =='

[target_defaults.conditions.then.configurations.dbg]
`
	r := NewResolver(writeDoc(t, doc))

	_, err := r.Configurations(Key{OS: "linux"})
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestResolverAbsentDocument(t *testing.T) {
	r := NewResolver(filepath.Join(t.TempDir(), "nope", "os.toml"))

	names, err := r.Configurations(Key{OS: "linux"})
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestEvalPredicate(t *testing.T) {
	env := Env{OS: "android", Flavor: "x86", Generator: "ninja-android"}

	matched, err := EvalPredicate(`OS == "android" and flavor == "x86"`, env)
	require.NoError(t, err)
	assert.True(t, matched)

	matched, err = EvalPredicate(`GENERATOR == "xcode"`, env)
	require.NoError(t, err)
	assert.False(t, matched)

	// Unknown identifiers are a compile error, not silently false.
	_, err = EvalPredicate(`host_os == "linux"`, env)
	require.Error(t, err)
}
