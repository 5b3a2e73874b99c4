// Package policy gates label write-backs behind a user-supplied CEL
// expression.
package policy

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
)

// Input is the variable set a gate expression sees: the resolved origin
// plus how the traversal ended.
type Input struct {
	Name       string
	Project    string
	Kind       string
	Created    int64
	AgeDays    float64
	Deprecated bool
	Truncated  bool
}

// Gate is one compiled expression. A nil *Gate allows everything.
type Gate struct {
	expr string
	prg  cel.Program
}

// Compile builds a gate from a CEL expression, e.g.
// "age_days > 365.0 && !deprecated". Compile errors are surfaced at boot,
// not per request.
func Compile(expr string) (*Gate, error) {
	env, err := cel.NewEnv(
		cel.Declarations(
			decls.NewVar("name", decls.String),
			decls.NewVar("project", decls.String),
			decls.NewVar("kind", decls.String),
			decls.NewVar("created", decls.Int),
			decls.NewVar("age_days", decls.Double),
			decls.NewVar("deprecated", decls.Bool),
			decls.NewVar("truncated", decls.Bool),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("policy compilation error: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("policy program creation error: %w", err)
	}

	return &Gate{expr: expr, prg: prg}, nil
}

// Allow evaluates the gate. Expressions must yield a boolean; anything else
// is an error, not a pass.
func (g *Gate) Allow(in Input) (bool, error) {
	if g == nil {
		return true, nil
	}

	out, _, err := g.prg.Eval(map[string]interface{}{
		"name":       in.Name,
		"project":    in.Project,
		"kind":       in.Kind,
		"created":    in.Created,
		"age_days":   in.AgeDays,
		"deprecated": in.Deprecated,
		"truncated":  in.Truncated,
	})
	if err != nil {
		return false, fmt.Errorf("policy evaluation failed: %w", err)
	}

	allow, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("policy expression %q returned %T, want bool", g.expr, out.Value())
	}
	return allow, nil
}
