package config

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// Env is the expression environment for conditional predicates in the
// configuration documents. Exactly three identifiers are bound; anything
// else fails at compile time.
type Env struct {
	OS        string `expr:"OS"`
	Flavor    string `expr:"flavor"`
	Generator string `expr:"GENERATOR"`
}

// EvalPredicate compiles and runs a boolean predicate against env.
func EvalPredicate(predicate string, env Env) (bool, error) {
	program, err := expr.Compile(predicate, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("failed to compile predicate %q: %w", predicate, err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("failed to run predicate %q: %w", predicate, err)
	}
	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("predicate %q did not produce a boolean", predicate)
	}
	return matched, nil
}
