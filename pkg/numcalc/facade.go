package numcalc

// Eval tokenizes, converts, and evaluates expression against ctx in one
// call, through a throwaway Engine. The postfix cache and singleflight
// dedup live in ctx.Cache, so repeated Eval calls against the same context
// share them just as an Engine's calls do.
func Eval[T any](expression string, ctx *Context[T]) (T, error) {
	return NewEngine(ctx).Eval(expression)
}

// Engine is a reusable facade bound to one Context, memoizing the
// tokenize+convert step across repeated calls with the same expression
// text. Cache entries are keyed by both the text and the context's
// registered-symbol surface, so a stale postfix stream is never replayed
// after a registration change.
type Engine[T any] struct {
	ctx *Context[T]
}

// NewEngine binds an Engine to ctx. The Context is not copied; mutate
// ctx.Variables between calls to Eval to change the visible bindings for
// the next evaluation. Use ctx.Clone() first if you need isolation across
// goroutines.
func NewEngine[T any](ctx *Context[T]) *Engine[T] {
	return &Engine[T]{ctx: ctx}
}

// Context returns the bound context for inspection.
func (e *Engine[T]) Context() *Context[T] { return e.ctx }

// WithContext returns a new Engine bound to a different context, leaving
// the receiver untouched.
func (e *Engine[T]) WithContext(ctx *Context[T]) *Engine[T] {
	return &Engine[T]{ctx: ctx}
}

// Eval runs the full pipeline, consulting and populating ctx.Cache when the
// NUMCALC_CACHE feature flag is enabled.
func (e *Engine[T]) Eval(expression string) (T, error) {
	var zero T

	postfix, err := e.postfixFor(expression)
	if err != nil {
		return zero, err
	}

	result, err := NewEvaluator(e.ctx).Eval(postfix)
	if err != nil {
		if ee, ok := err.(*EvalError); ok {
			return zero, ee.WithSource(expression)
		}
		return zero, err
	}
	return result, nil
}

func (e *Engine[T]) postfixFor(expression string) ([]Token[T], error) {
	if e.ctx.Cache == nil {
		return e.convert(expression)
	}

	key := CacheKey(expression, e.ctx, e.keyAlgo())
	if cached, ok := e.ctx.Cache.Get(key); ok {
		if e.ctx.Metrics != nil {
			e.ctx.Metrics.CacheHits.Inc()
		}
		return cached, nil
	}
	if e.ctx.Metrics != nil {
		e.ctx.Metrics.CacheMisses.Inc()
	}

	postfix, err := e.ctx.Cache.Do(key, func() ([]Token[T], error) {
		return e.convert(expression)
	})
	if err != nil {
		return nil, err
	}
	e.ctx.Cache.Put(key, postfix)
	return postfix, nil
}

// keyAlgo honors the NUMCALC_CACHE_HASH flag: "highway" switches the
// cache key digest to highwayhash, anything else stays on fnv.
func (e *Engine[T]) keyAlgo() keyAlgorithm {
	if e.ctx.Flags != nil && e.ctx.Flags.CacheHash == "highway" {
		return keyAlgoHighway
	}
	return keyAlgoFNV
}

func (e *Engine[T]) convert(expression string) ([]Token[T], error) {
	tokens := NewTokenizer(expression, e.ctx).Tokenize()
	postfix, err := NewConverter(e.ctx, expression).Convert(tokens)
	if err != nil {
		if e.ctx.Metrics != nil {
			e.ctx.Metrics.SyntaxErrors.Inc()
		}
		return nil, err
	}
	return postfix, nil
}
