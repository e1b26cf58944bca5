package world

import (
	"errors"
	"fmt"
)

// Resolution failure kinds. They are reported through the ResolveLogger only;
// Resolve itself never fails.
var (
	ErrSymbolNotFound = errors.New("world: symbol not found")
	ErrNotCallable    = errors.New("world: symbol is not callable")
	ErrCallFailed     = errors.New("world: call failed")
	ErrLookupFailed   = errors.New("world: lookup failed")
	ErrNoDocuments    = errors.New("world: document loader not configured")
	ErrNotConverged   = errors.New("world: template did not converge")
	ErrNoEvaluator    = errors.New("world: evaluator not configured")
)

// ResolutionError ties a failure kind to the placeholder that produced it.
// Stack is captured for failed calls, failed lookups and recovered panics.
type ResolutionError struct {
	Kind        error
	Placeholder string
	Err         error
	Stack       []byte
}

func (e *ResolutionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, describePlaceholder(e.Placeholder))
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, describePlaceholder(e.Placeholder), e.Err)
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *ResolutionError) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func describePlaceholder(placeholder string) string {
	if placeholder == "" {
		return "placeholder=<empty>"
	}
	return fmt.Sprintf("placeholder=%q", placeholder)
}

func resolutionError(kind error, placeholder string, err error) *ResolutionError {
	return &ResolutionError{Kind: kind, Placeholder: placeholder, Err: err}
}

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("world: %s evaluator %s: %v", e.Engine, describeExpression(e.Expr), e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluationError(engine, expr string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Err:    err,
	}
}
