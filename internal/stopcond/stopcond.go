// Package stopcond evaluates user supplied expressions that end a batch run,
// such as `population["Alive"] == 0 || generation >= 500`.
package stopcond

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
)

// ErrNotBool is returned for expressions that do not produce a boolean.
var ErrNotBool = errors.New("stop condition must evaluate to a bool")

// Snapshot is the data an expression can inspect.
type Snapshot struct {
	Generation int
	Cells      int
	Changed    int
	Population map[string]int
}

// Condition is a compiled stop expression.
type Condition struct {
	src string
	prg cel.Program
}

var env *cel.Env

func init() {
	var err error
	env, err = cel.NewEnv(
		cel.Variable("generation", cel.IntType),
		cel.Variable("cells", cel.IntType),
		cel.Variable("changed", cel.IntType),
		cel.Variable("population", cel.MapType(cel.StringType, cel.IntType)),
		cel.Variable("share", cel.MapType(cel.StringType, cel.DoubleType)),
	)
	if err != nil {
		panic(fmt.Sprintf("stopcond: %v", err))
	}
}

// Compile parses and type-checks expr.
func Compile(expr string) (*Condition, error) {
	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("compile %q: %w, got %s", expr, ErrNotBool, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Condition{src: expr, prg: prg}, nil
}

// String returns the source expression.
func (c *Condition) String() string { return c.src }

// Met evaluates the condition against snap. Referencing a state that is not
// in the population map is an evaluation error, not false.
func (c *Condition) Met(snap Snapshot) (bool, error) {
	pop := make(map[string]int64, len(snap.Population))
	share := make(map[string]float64, len(snap.Population))
	for name, n := range snap.Population {
		pop[name] = int64(n)
		if snap.Cells > 0 {
			share[name] = float64(n) / float64(snap.Cells)
		}
	}
	out, _, err := c.prg.Eval(map[string]any{
		"generation": int64(snap.Generation),
		"cells":      int64(snap.Cells),
		"changed":    int64(snap.Changed),
		"population": pop,
		"share":      share,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", c.src, err)
	}
	met, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("evaluate %q: %w", c.src, ErrNotBool)
	}
	return met, nil
}
