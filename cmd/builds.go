package cmd

import (
	"slices"
	"strings"

	"github.com/crossforge-build/crossforge/internal/strategy"
)

// buildList renders the registered build types for the help text, split by
// whether the current host can run them.
func buildList(hostOS string) string {
	var available, unavailable []string
	for _, p := range strategy.DefaultRegistry().Profiles() {
		name := p.KeyOS()
		if p.Generator != "" {
			name += " (" + p.Generator + ")"
		}
		if slices.Contains(p.Hosts, hostOS) {
			available = append(available, name)
		} else {
			unavailable = append(unavailable, name)
		}
	}

	var b strings.Builder
	b.WriteString("Build types available on this host:\n")
	for _, name := range available {
		b.WriteString("  " + name + "\n")
	}
	if len(unavailable) > 0 {
		b.WriteString("Unavailable on this host:\n")
		for _, name := range unavailable {
			b.WriteString("  " + name + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
