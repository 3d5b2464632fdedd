package config

import (
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// ConfigurationsDocument is the conditional-configuration document that
// declares the build configurations per target. It lives next to (or above)
// the manifest and is force-included into the generator run.
const ConfigurationsDocument = "dev/os.toml"

// Key identifies one builder: target OS, optional flavor, and generator.
type Key struct {
	OS        string
	Flavor    string
	Generator string
}

func (k Key) String() string {
	name := k.OS
	if k.Flavor != "" {
		name += "-" + k.Flavor
	}
	if k.Generator != "" {
		name += " (" + k.Generator + ")"
	}
	return name
}

// Resolver computes the ordered list of build configurations valid for a
// given key from the conditional-configuration document. Results are cached
// after the first computation per key; resolution is a pure function of the
// document and the key.
type Resolver struct {
	path string

	mu    sync.Mutex
	cache map[Key][]string
}

func NewResolver(path string) *Resolver {
	return &Resolver{
		path:  path,
		cache: make(map[Key][]string),
	}
}

// Configurations returns the ordered list of non-abstract configuration
// names applicable to key. The declared default configuration, if it matches
// a discovered configuration, sorts first; the rest are lexicographic. An
// absent document yields an empty list.
func (r *Resolver) Configurations(key Key) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[key]; ok {
		return cached, nil
	}

	names, err := r.resolve(key)
	if err != nil {
		return nil, err
	}
	r.cache[key] = names
	return names, nil
}

func (r *Resolver) resolve(key Key) ([]string, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, &ParseError{Path: r.path, Err: err}
	}

	var root map[string]any
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{Path: r.path, Err: err}
	}

	env := Env{OS: key.OS, Flavor: key.Flavor, Generator: key.Generator}

	var names []string
	var defaultConfiguration string

	// Breadth-first walk over the nested tables. Only target_defaults,
	// conditions, configurations and default_configuration are interpreted;
	// variables containers and anything else are ignored.
	queue := []map[string]any{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for k, v := range current {
			switch k {
			case "target_defaults":
				sub, ok := v.(map[string]any)
				if !ok {
					return nil, r.malformed("target_defaults is not a table")
				}
				queue = append(queue, sub)

			case "conditions":
				branches, err := r.evalConditions(v, env)
				if err != nil {
					return nil, err
				}
				queue = append(queue, branches...)

			case "configurations":
				sub, ok := v.(map[string]any)
				if !ok {
					return nil, r.malformed("configurations is not a table")
				}
				for name, props := range sub {
					if isAbstract(props) {
						continue
					}
					names = append(names, name)
				}

			case "default_configuration":
				name, ok := v.(string)
				if !ok {
					return nil, r.malformed("default_configuration is not a string")
				}
				defaultConfiguration = name
			}
		}
	}

	slices.Sort(names)

	// Move the default to the front. A default naming an undiscovered
	// configuration is silently ignored; this is intentionally non-fatal.
	if i := slices.Index(names, defaultConfiguration); i > 0 {
		names = slices.Delete(names, i, i+1)
		names = slices.Insert(names, 0, defaultConfiguration)
	}

	return names, nil
}

// evalConditions evaluates a conditions list and returns the branches whose
// predicate matched (or whose else branch applies).
func (r *Resolver) evalConditions(v any, env Env) ([]map[string]any, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, r.malformed("conditions is not a list")
	}

	var branches []map[string]any
	for _, entry := range list {
		condition, ok := entry.(map[string]any)
		if !ok {
			return nil, r.malformed("conditions entry is not a table")
		}

		predicate, ok := condition["when"].(string)
		if !ok {
			return nil, r.malformed("conditions entry is missing a when predicate")
		}

		matched, err := EvalPredicate(predicate, env)
		if err != nil {
			return nil, &ParseError{Path: r.path, Err: err}
		}

		branch := "else"
		if matched {
			branch = "then"
		}
		sub, present := condition[branch]
		if !present {
			continue
		}
		table, ok := sub.(map[string]any)
		if !ok {
			return nil, r.malformed(branch + " branch is not a table")
		}
		branches = append(branches, table)
	}

	return branches, nil
}

func isAbstract(props any) bool {
	table, ok := props.(map[string]any)
	if !ok {
		return false
	}
	abstract, _ := table["abstract"].(bool)
	return abstract
}

func (r *Resolver) malformed(detail string) error {
	return &ParseError{Path: r.path, Err: fmt.Errorf("malformed document: %s", detail)}
}
