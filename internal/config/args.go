package config

import (
	"slices"
	"strings"
)

// Args accumulates the command-line flags to pass to the generator. Flags
// with multiple values are unpacked into multiple occurrences. Long flags
// (two leading dashes) render as a single "--flag=value" token; short flags
// render as two adjacent tokens; flags added with SetBare render as a single
// token with no value.
type Args struct {
	values map[string][]string
	bare   map[string]bool
}

func NewArgs() *Args {
	return &Args{
		values: make(map[string][]string),
		bare:   make(map[string]bool),
	}
}

// Append adds values to a flag, keeping any existing ones.
func (a *Args) Append(flag string, vals ...string) {
	a.values[flag] = append(a.values[flag], vals...)
}

// Set replaces the values of a flag.
func (a *Args) Set(flag string, vals ...string) {
	delete(a.bare, flag)
	a.values[flag] = slices.Clone(vals)
}

// SetBare marks a flag that takes no value.
func (a *Args) SetBare(flag string) {
	delete(a.values, flag)
	a.bare[flag] = true
}

// Delete removes a flag entirely.
func (a *Args) Delete(flag string) {
	delete(a.values, flag)
	delete(a.bare, flag)
}

// Values returns the current values of a flag.
func (a *Args) Values(flag string) []string {
	return a.values[flag]
}

// SortValues orders the values of a flag lexicographically. Used on the
// define list so that repeated invocations with identical inputs produce
// byte-identical argument lists.
func (a *Args) SortValues(flag string) {
	slices.Sort(a.values[flag])
}

// Render flattens the flag set into an argument list, with any trailing
// positional arguments appended. Flags are emitted in lexicographic order so
// the output does not depend on insertion order.
func (a *Args) Render(positional ...string) []string {
	flags := make([]string, 0, len(a.values)+len(a.bare))
	for flag := range a.values {
		flags = append(flags, flag)
	}
	for flag := range a.bare {
		flags = append(flags, flag)
	}
	slices.Sort(flags)

	var out []string
	for _, flag := range flags {
		if a.bare[flag] {
			out = append(out, flag)
			continue
		}
		for _, val := range a.values[flag] {
			if strings.HasPrefix(flag, "--") {
				out = append(out, flag+"="+val)
			} else {
				out = append(out, flag, val)
			}
		}
	}

	return append(out, positional...)
}
