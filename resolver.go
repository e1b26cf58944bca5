package world

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"runtime/debug"
	"strings"
	"time"
)

// DefaultMaxPasses bounds the number of function+lookup passes per template.
const DefaultMaxPasses = 5

const dictPrefix = "DICT."

var (
	functionPlaceholder = regexp.MustCompile(`\{([^{}]*)\}`)
	lookupPlaceholder   = regexp.MustCompile(`\[([^\[\]]*)\]`)
	functionHead        = regexp.MustCompile(`^[A-Za-z_][\w.]*`)
)

// Resolver substitutes {function} and [lookup] placeholders in templates.
type Resolver struct {
	symbols   *Symbols
	documents DocumentLoader
	logger    ResolveLogger
	evaluator Evaluator
	cache     ProgramCache
	maxPasses int
}

// NewResolver constructs a Resolver. Without WithEvaluator, Expression
// symbols are evaluated with expr.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		symbols:   NewSymbols(),
		logger:    noopResolveLogger{},
		maxPasses: DefaultMaxPasses,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.evaluator == nil {
		var exprOpts []ExprEvaluatorOption
		if r.cache != nil {
			exprOpts = append(exprOpts, ExprWithProgramCache(r.cache))
		}
		r.evaluator = NewExprEvaluator(exprOpts...)
	}
	return r
}

// Symbols returns the table placeholders resolve against.
func (r *Resolver) Symbols() *Symbols {
	return r.symbols
}

// Resolve returns template with placeholders substituted. It never fails:
// unresolvable placeholders become empty strings and are reported to the
// ResolveLogger.
func (r *Resolver) Resolve(ctx context.Context, template string) string {
	out, _ := r.ResolveWithTrace(ctx, template)
	return out
}

// ResolveWithTrace behaves like Resolve and also returns the per-pass trace.
func (r *Resolver) ResolveWithTrace(ctx context.Context, template string) (string, Trace) {
	if ctx == nil {
		ctx = context.Background()
	}
	trace := Trace{Template: template}
	current := template

	for pass := 1; pass <= r.maxPasses; pass++ {
		if err := ctx.Err(); err != nil {
			r.logger.LogResolve(ResolveEvent{Level: LevelWarn, Kind: "loop", Pass: pass, Err: err})
			trace.Result = current
			return current, trace
		}

		step := PassTrace{Pass: pass}
		next := r.functionPass(ctx, current, &step)
		next = r.lookupPass(ctx, next, &step)
		step.Output = next
		trace.Passes = append(trace.Passes, step)

		if next == current {
			trace.Converged = true
			break
		}
		current = next
	}

	if !trace.Converged {
		r.logger.LogResolve(ResolveEvent{
			Level:       LevelWarn,
			Kind:        "loop",
			Placeholder: template,
			Pass:        r.maxPasses,
			Err:         resolutionError(ErrNotConverged, template, fmt.Errorf("still changing after %d passes", r.maxPasses)),
		})
	}
	trace.Result = current
	return current, trace
}

func (r *Resolver) functionPass(ctx context.Context, input string, step *PassTrace) string {
	return functionPlaceholder.ReplaceAllStringFunc(input, func(match string) string {
		start := time.Now()
		value, err := r.callPlaceholder(ctx, match)
		r.record(step, "function", match, value, err, time.Since(start))
		return value
	})
}

func (r *Resolver) lookupPass(ctx context.Context, input string, step *PassTrace) string {
	return lookupPlaceholder.ReplaceAllStringFunc(input, func(match string) string {
		start := time.Now()
		value, err := r.lookupValue(ctx, match)
		r.record(step, "lookup", match, value, err, time.Since(start))
		return value
	})
}

func (r *Resolver) callPlaceholder(ctx context.Context, match string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = ""
			err = &ResolutionError{Kind: ErrCallFailed, Placeholder: match, Err: fmt.Errorf("panic: %v", rec), Stack: debug.Stack()}
		}
	}()

	name := functionHead.FindString(strings.TrimSpace(match[1 : len(match)-1]))
	symbol, ok := r.findSymbol(name)
	if !ok {
		return "", resolutionError(ErrSymbolNotFound, match, nil)
	}

	result, callable, callErr := r.invoke(ctx, symbol)
	if !callable {
		return "", resolutionError(ErrNotCallable, match, fmt.Errorf("%q is %T", name, symbol))
	}
	if callErr != nil {
		return "", &ResolutionError{Kind: ErrCallFailed, Placeholder: match, Err: callErr, Stack: debug.Stack()}
	}
	return FormatValue(result), nil
}

func (r *Resolver) lookupValue(ctx context.Context, match string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = ""
			err = &ResolutionError{Kind: ErrLookupFailed, Placeholder: match, Err: fmt.Errorf("panic: %v", rec), Stack: debug.Stack()}
		}
	}()

	ref := strings.TrimSpace(match[1 : len(match)-1])
	if rest, ok := strings.CutPrefix(ref, dictPrefix); ok {
		return r.lookupDocument(ctx, match, rest)
	}

	segments := strings.Split(ref, ".")
	root, ok := r.symbols.Lookup(segments[0])
	if !ok {
		return "", resolutionError(ErrSymbolNotFound, match, nil)
	}
	return FormatValue(Traverse(root, segments[1:])), nil
}

func (r *Resolver) lookupDocument(ctx context.Context, match, ref string) (string, error) {
	if r.documents == nil {
		return "", resolutionError(ErrNoDocuments, match, nil)
	}
	docName, keyPath, _ := strings.Cut(ref, ".")
	if docName == "" {
		return "", resolutionError(ErrLookupFailed, match, errors.New("document name is empty"))
	}

	doc, err := r.documents.Load(ctx, docName+".json")
	if err != nil {
		return "", &ResolutionError{Kind: ErrLookupFailed, Placeholder: match, Err: err, Stack: debug.Stack()}
	}

	var path []string
	if keyPath != "" {
		path = strings.Split(keyPath, ".")
	}
	return FormatValue(Traverse(doc, path)), nil
}

// findSymbol resolves name directly, then as a dotted path into a Gettable
// symbol (e.g. "clock.now").
func (r *Resolver) findSymbol(name string) (any, bool) {
	if name == "" {
		return nil, false
	}
	if value, ok := r.symbols.Lookup(name); ok {
		return value, true
	}
	head, rest, found := strings.Cut(name, ".")
	if !found {
		return nil, false
	}
	root, ok := r.symbols.Lookup(head)
	if !ok {
		return nil, false
	}
	value := Traverse(root, strings.Split(rest, "."))
	return value, value != nil
}

func (r *Resolver) invoke(_ context.Context, symbol any) (any, bool, error) {
	if expression, ok := symbol.(Expression); ok {
		value, err := r.evaluate(expression)
		return value, true, err
	}
	fn, ok := asFunction(symbol)
	if !ok {
		return nil, false, nil
	}
	value, err := fn()
	return value, true, err
}

func (r *Resolver) evaluate(expression Expression) (any, error) {
	if r.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	value, err := r.evaluator.Evaluate(r.symbols.evalContext(), expression.Source)
	return value, wrapEvaluationError(evaluatorEngineName(r.evaluator), expression.Source, err)
}

func (r *Resolver) record(step *PassTrace, kind, placeholder, value string, err error, duration time.Duration) {
	event := ResolveEvent{
		Level:       LevelDebug,
		Kind:        kind,
		Placeholder: placeholder,
		Pass:        step.Pass,
		Value:       value,
		Duration:    duration,
		Err:         err,
	}
	sub := Substitution{Kind: kind, Placeholder: placeholder, Value: value}
	if err != nil {
		sub.Error = err.Error()
		event.Level = LevelWarn
		var resErr *ResolutionError
		if errors.As(err, &resErr) && len(resErr.Stack) > 0 {
			event.Level = LevelError
			event.Stack = resErr.Stack
		}
	}
	step.Substitutions = append(step.Substitutions, sub)
	r.logger.LogResolve(event)
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*world.exprEvaluator":
		return "expr"
	case "*world.celEvaluator":
		return "cel"
	case "*world.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
