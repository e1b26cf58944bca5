package world

import "context"

// Function is a callable symbol. Placeholders invoke it without arguments;
// expressions may pass any number of them.
type Function func(args ...any) (any, error)

// Expression is a callable symbol whose Source is evaluated by the resolver's
// Evaluator against the current symbol table.
type Expression struct {
	Source string
}

// DocumentLoader loads a named JSON document for DICT lookups. The name
// includes the ".json" suffix.
type DocumentLoader interface {
	Load(ctx context.Context, name string) (any, error)
}

// EvalContext carries the symbol table split into plain values and functions.
type EvalContext struct {
	Variables map[string]any
	Functions map[string]Function
}

func (ctx EvalContext) withDefaults() EvalContext {
	if ctx.Variables == nil {
		ctx.Variables = map[string]any{}
	}
	if ctx.Functions == nil {
		ctx.Functions = map[string]Function{}
	}
	return ctx
}

// Evaluator runs Expression sources.
type Evaluator interface {
	Evaluate(ctx EvalContext, expression string) (any, error)
}
