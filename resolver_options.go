package world

// Option configures a Resolver.
type Option func(*Resolver)

// WithSymbols resolves placeholders against symbols. The table is shared, not
// copied, so later Set calls are visible to the resolver.
func WithSymbols(symbols *Symbols) Option {
	return func(r *Resolver) {
		if symbols != nil {
			r.symbols = symbols
		}
	}
}

// WithDocuments enables DICT.<document>.<key> lookups.
func WithDocuments(loader DocumentLoader) Option {
	return func(r *Resolver) {
		r.documents = loader
	}
}

// WithLogger attaches a resolve logger.
func WithLogger(logger ResolveLogger) Option {
	return func(r *Resolver) {
		if logger == nil {
			r.logger = noopResolveLogger{}
			return
		}
		r.logger = logger
	}
}

// WithEvaluator sets the engine used for Expression symbols.
func WithEvaluator(evaluator Evaluator) Option {
	return func(r *Resolver) {
		r.evaluator = evaluator
	}
}

// WithMaxPasses overrides the convergence bound. Values below one are ignored.
// Convergence is only observed by a pass that changes nothing, so a template
// whose last substitution happens on the final allowed pass is returned fully
// resolved but still reported as not converged.
func WithMaxPasses(passes int) Option {
	return func(r *Resolver) {
		if passes > 0 {
			r.maxPasses = passes
		}
	}
}

// WithProgramCache shares compiled expression programs across evaluations of
// the default evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(r *Resolver) {
		r.cache = cache
	}
}
