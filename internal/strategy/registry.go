package strategy

import (
	"fmt"
	"sync"
)

// NoBuilderError is returned when no registered profile matches a requested
// (platform, generator) pair.
type NoBuilderError struct {
	OS        string
	Generator string
}

func (e *NoBuilderError) Error() string {
	if e.Generator != "" {
		return fmt.Sprintf("no builder was found for %s that uses the %s generator; use --help to list available build types", e.OS, e.Generator)
	}
	return fmt.Sprintf("no builder was found for %s; use --help to list available build types", e.OS)
}

// Registry maps (platform, generator) keys to builder profiles.
// Registration order is a load-bearing contract: the first profile
// registered for a platform is that platform's default when the user names
// no generator.
type Registry struct {
	order []Profile
	index map[registryKey]int
}

type registryKey struct {
	os        string
	generator string
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[registryKey]int)}
}

// Register adds a profile. A profile without a target OS, or a duplicate
// (platform, generator) key, is a programming error.
func (r *Registry) Register(p Profile) error {
	if p.OS == "" {
		return fmt.Errorf("cannot register a builder profile without a target OS")
	}
	key := registryKey{os: p.KeyOS(), generator: p.Generator}
	if _, exists := r.index[key]; exists {
		return fmt.Errorf("duplicate builder registration for %s (%s)", key.os, key.generator)
	}
	r.index[key] = len(r.order)
	r.order = append(r.order, p)
	return nil
}

// Profiles returns all registered profiles in registration order.
func (r *Registry) Profiles() []Profile {
	return r.order
}

// Resolve picks the profile for a platform and generator. An explicit
// generator must match exactly. With no generator, the first profile
// registered for the platform wins; this is a deliberate simplicity
// trade-off over most-specific matching.
func (r *Registry) Resolve(osName, generator string) (Profile, error) {
	if i, ok := r.index[registryKey{os: osName, generator: generator}]; ok {
		return r.order[i], nil
	}
	if generator == "" {
		for _, p := range r.order {
			if p.KeyOS() == osName {
				return p, nil
			}
		}
	}
	return Profile{}, &NoBuilderError{OS: osName, Generator: generator}
}

// New resolves a profile and constructs its builder.
func (r *Registry) New(osName, generator string, opts *Options) (*Builder, error) {
	profile, err := r.Resolve(osName, generator)
	if err != nil {
		return nil, err
	}
	return New(profile, opts), nil
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry populated with the
// built-in profiles.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := registerBuiltins(defaultRegistry); err != nil {
			panic(err)
		}
	})
	return defaultRegistry
}
