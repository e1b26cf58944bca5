package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	world "github.com/goliatone/go-artificial-world"
)

type resolveOptions struct {
	engine    string
	vars      []string
	exprs     []string
	trace     bool
	maxPasses int
}

// NewResolveCommand substitutes placeholders in a template.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve <template>",
		Short: "Resolve {function} and [lookup] placeholders in a template",
		Long: `Resolve a template against the builtin functions, --var values,
--expr expression symbols and [DICT.<document>.<key>] document lookups.`,
		Example: `  aw-cli resolve 'It is {now}, hello [DICT.settings.user.name]'
  aw-cli resolve --var alarm=07:00 --expr 'wake=earlierTime(alarm, 30)' 'Wake at {wake}'`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withRuntime(cmd, func(rt *runtime) error {
				return runResolve(cmd, rt, opts, args[0])
			})
		},
	}
	cmd.Flags().StringVar(&opts.engine, "engine", "expr", "expression engine (expr|cel|js)")
	cmd.Flags().StringArrayVar(&opts.vars, "var", nil, "string symbol as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.exprs, "expr", nil, "expression symbol as name=source (repeatable)")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "print the pass-by-pass trace as JSON")
	cmd.Flags().IntVar(&opts.maxPasses, "max-passes", 0, "override the configured pass bound")
	return cmd
}

func runResolve(cmd *cobra.Command, rt *runtime, opts *resolveOptions, template string) error {
	symbols := world.NewSymbols()
	if err := world.RegisterBuiltins(symbols, time.Now); err != nil {
		return WrapExitError(ExitFailure, "register builtins", err)
	}
	for _, raw := range opts.vars {
		name, value, err := splitAssignment("var", raw)
		if err != nil {
			return err
		}
		_ = symbols.Set(name, value)
	}
	for _, raw := range opts.exprs {
		name, source, err := splitAssignment("expr", raw)
		if err != nil {
			return err
		}
		_ = symbols.Set(name, world.Expression{Source: source})
	}

	cache := world.NewProgramCache()
	evaluator, err := newEvaluator(opts.engine, cache)
	if err != nil {
		return err
	}

	passes := rt.cfg.MaxPasses
	if opts.maxPasses > 0 {
		passes = opts.maxPasses
	}
	resolver := world.NewResolver(
		world.WithSymbols(symbols),
		world.WithDocuments(rt.store),
		world.WithLogger(world.SlogLogger(rt.logger)),
		world.WithEvaluator(evaluator),
		world.WithProgramCache(cache),
		world.WithMaxPasses(passes),
	)

	result, trace := resolver.ResolveWithTrace(cmd.Context(), template)
	if opts.trace {
		return writeJSON(cmd.OutOrStdout(), trace)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), result)
	return err
}

func newEvaluator(engine string, cache world.ProgramCache) (world.Evaluator, error) {
	switch engine {
	case "", "expr":
		return world.NewExprEvaluator(world.ExprWithProgramCache(cache)), nil
	case "cel":
		return world.NewCELEvaluator(world.CELWithProgramCache(cache)), nil
	case "js":
		evaluator := world.NewJSEvaluator(world.JSWithProgramCache(cache))
		if evaluator == nil {
			return nil, NewExitError(ExitCommandError, "the js engine requires building with -tags js_eval")
		}
		return evaluator, nil
	default:
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown engine %q: must be expr, cel or js", engine))
	}
}
