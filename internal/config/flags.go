package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// DefaultsDocument is the declared-defaults document holding the project's
// build flags. It is located by searching upward from the manifest's
// directory toward the build root.
const DefaultsDocument = "common_variables.toml"

type defaultsDocument struct {
	Variables map[string]any `toml:"variables"`
	Includes  []string       `toml:"includes"`
}

// FindBuildFlags parses the declared-defaults document nearest the manifest
// and returns the project's build flags and their default values. Included
// documents are chased breadth-first, with paths resolved relative to the
// including file. Integer-looking defaults are coerced to int, everything
// else stays a string. Returns an empty map if no document exists.
func FindBuildFlags(manifest, rootDir string) (map[string]any, error) {
	flags := make(map[string]any)

	first := FindNearest(manifest, DefaultsDocument, rootDir)
	if first == "" {
		return flags, nil
	}

	queue := []string{first}
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if !isFile(path) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}

		var doc defaultsDocument
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}

		for name, value := range doc.Variables {
			coerced, ok := coerceFlagValue(value)
			if !ok {
				return nil, &ParseError{
					Path: path,
					Err:  fmt.Errorf("variable %q has unsupported type %T", name, value),
				}
			}
			if _, exists := flags[name]; !exists {
				flags[name] = coerced
			}
		}

		for _, include := range doc.Includes {
			queue = append(queue, filepath.Join(filepath.Dir(path), include))
		}
	}

	return flags, nil
}

// coerceFlagValue normalizes a declared default to int or string.
func coerceFlagValue(value any) (any, bool) {
	switch v := value.(type) {
	case int64:
		return int(v), true
	case int:
		return v, true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
		return v, true
	default:
		return nil, false
	}
}

// ActiveFlags returns the subset of flags whose resolved value differs from
// the declared default. An unmodified run yields an empty map.
func ActiveFlags(defaults, resolved map[string]any) map[string]any {
	active := make(map[string]any)
	for name, def := range defaults {
		if value, ok := resolved[name]; ok && value != def {
			active[name] = value
		}
	}
	return active
}
