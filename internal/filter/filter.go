// Package filter evaluates CEL conditions against catalog entities.
//
// The following variables are available in expressions:
//
//	entityType      string
//	guid            string
//	qualifiedName   string
//	attributes      map(string, dyn)
//	classifications list(string)
//
// Example:
//
//	entityType in ["Table", "Column"] && "PII" in classifications
package filter

import (
	"fmt"

	"github.com/dnswlt/tagsync/internal/atlas"
	"github.com/google/cel-go/cel"
)

// Filter is a compiled entity condition. It is safe for concurrent use.
type Filter struct {
	expr string
	prg  cel.Program
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("entityType", cel.StringType),
		cel.Variable("guid", cel.StringType),
		cel.Variable("qualifiedName", cel.StringType),
		cel.Variable("attributes", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("classifications", cel.ListType(cel.StringType)),
	)
}

// Compile parses and type-checks expr, which must evaluate to a bool.
func Compile(expr string) (*Filter, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %v", err)
	}
	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", iss.Err())
	}
	outType := ast.OutputType()
	if !outType.IsExactType(cel.BoolType) && !outType.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("filter expression must be a bool, got %v", outType)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build filter program: %w", err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

func (f *Filter) String() string {
	return f.expr
}

// Matches evaluates the filter against e.
func (f *Filter) Matches(e *atlas.Entity) (bool, error) {
	qn, _ := e.QualifiedName()
	attrs := e.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	out, _, err := f.prg.Eval(map[string]any{
		"entityType":      e.TypeName,
		"guid":            e.GUID,
		"qualifiedName":   qn,
		"attributes":      attrs,
		"classifications": e.ClassificationNames(),
	})
	if err != nil {
		return false, err
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T, want bool", f.expr, out.Value())
	}
	return b, nil
}
