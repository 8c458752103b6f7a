// Package backends provides the standard numcalc.Backend[T] implementations
// and the default operator/function/constant wiring shared across them.
// The arithmetic is written once per operator against the
// numcalc.Backend[T] contract rather than once per concrete Go type.
package backends

import "github.com/fieldcraft/numcalc/pkg/numcalc"

// registerArithmetic wires the operator set every standard backend shares:
// binary + - * / % ^ and unary + -. Precedence follows ordinary calculator
// convention: ^ (right-associative) binds tightest, then unary +/-, then
// * / %, then binary + -. Unary must bind looser than ^ so that "-2 ^ 2"
// parses as -(2^2) = -4, not (-2)^2.
func registerArithmetic[T any](ctx *numcalc.Context[T]) {
	b := ctx.Backend

	ctx.Operators.Register(numcalc.OperatorDescriptor[T]{
		Symbol: "+", Arity: 2, Precedence: 10, Associativity: numcalc.LeftAssociative, Fixity: numcalc.Infix,
		Binary: b.Add,
	})
	ctx.Operators.Register(numcalc.OperatorDescriptor[T]{
		Symbol: "-", Arity: 2, Precedence: 10, Associativity: numcalc.LeftAssociative, Fixity: numcalc.Infix,
		Binary: b.Sub,
	})
	ctx.Operators.Register(numcalc.OperatorDescriptor[T]{
		Symbol: "*", Arity: 2, Precedence: 20, Associativity: numcalc.LeftAssociative, Fixity: numcalc.Infix,
		Binary: b.Mul,
	})
	ctx.Operators.Register(numcalc.OperatorDescriptor[T]{
		Symbol: "/", Arity: 2, Precedence: 20, Associativity: numcalc.LeftAssociative, Fixity: numcalc.Infix,
		Binary: b.Div,
	})
	ctx.Operators.Register(numcalc.OperatorDescriptor[T]{
		Symbol: "%", Arity: 2, Precedence: 20, Associativity: numcalc.LeftAssociative, Fixity: numcalc.Infix,
		Binary: b.Mod,
	})
	ctx.Operators.Register(numcalc.OperatorDescriptor[T]{
		Symbol: "^", Arity: 2, Precedence: 30, Associativity: numcalc.RightAssociative, Fixity: numcalc.Infix,
		Binary: b.Pow,
	})
	ctx.Operators.Register(numcalc.OperatorDescriptor[T]{
		Symbol: "+", Arity: 1, Precedence: 25, Associativity: numcalc.RightAssociative, Fixity: numcalc.Prefix,
		Unary: func(a T) (T, error) { return a, nil },
	})
	ctx.Operators.Register(numcalc.OperatorDescriptor[T]{
		Symbol: "-", Arity: 1, Precedence: 25, Associativity: numcalc.RightAssociative, Fixity: numcalc.Prefix,
		Unary: b.Neg,
	})
}

// registerConstants wires pi and e for any backend whose Parse accepts the
// given literals. Boolean-style constants are deliberately left out:
// numcalc is a numeric evaluator, not a boolean one.
func registerConstants[T any](ctx *numcalc.Context[T], pi, e string) {
	if v, err := ctx.Backend.Parse(pi); err == nil {
		ctx.SetConstant("pi", v)
	}
	if v, err := ctx.Backend.Parse(e); err == nil {
		ctx.SetConstant("e", v)
	}
}

// registerAggregateFunctions wires the variadic builtin set: sum, avg,
// prod, max, min. Written once against Backend[T] so every concrete
// backend gets identical semantics.
func registerAggregateFunctions[T any](ctx *numcalc.Context[T]) {
	b := ctx.Backend

	ctx.Functions.Register(numcalc.FunctionDescriptor[T]{
		Name: "sum", MinArity: 1, MaxArity: -1,
		Apply: func(args []T) (T, error) { return foldLeft(b, args, b.Add) },
	})
	ctx.Functions.Register(numcalc.FunctionDescriptor[T]{
		Name: "prod", MinArity: 1, MaxArity: -1,
		Apply: func(args []T) (T, error) { return foldLeft(b, args, b.Mul) },
	})
	ctx.Functions.Register(numcalc.FunctionDescriptor[T]{
		Name: "avg", MinArity: 1, MaxArity: -1,
		Apply: func(args []T) (T, error) {
			total, err := foldLeft(b, args, b.Add)
			if err != nil {
				return total, err
			}
			count, err := countOf(b, len(args))
			if err != nil {
				return total, err
			}
			return b.Div(total, count)
		},
	})
	ctx.Functions.Register(numcalc.FunctionDescriptor[T]{
		Name: "max", MinArity: 1, MaxArity: -1,
		Apply: func(args []T) (T, error) { return extremum(b, args, 1) },
	})
	ctx.Functions.Register(numcalc.FunctionDescriptor[T]{
		Name: "min", MinArity: 1, MaxArity: -1,
		Apply: func(args []T) (T, error) { return extremum(b, args, -1) },
	})
}

func foldLeft[T any](b numcalc.Backend[T], args []T, op func(a, c T) (T, error)) (T, error) {
	acc := args[0]
	var err error
	for _, v := range args[1:] {
		acc, err = op(acc, v)
		if err != nil {
			var zero T
			return zero, err
		}
	}
	return acc, nil
}

// countOf materializes an integer n as T by repeated addition of One(),
// since Backend[T] has no int-literal constructor.
func countOf[T any](b numcalc.Backend[T], n int) (T, error) {
	acc := b.Zero()
	one := b.One()
	var err error
	for i := 0; i < n; i++ {
		acc, err = b.Add(acc, one)
		if err != nil {
			var zero T
			return zero, err
		}
	}
	return acc, nil
}

// extremum finds the max (want=1) or min (want=-1) of args via repeated
// Compare, which every Backend[T] must provide (possibly raising a
// DomainError for backends without a total order, e.g. complex).
func extremum[T any](b numcalc.Backend[T], args []T, want int) (T, error) {
	best := args[0]
	for _, v := range args[1:] {
		cmp, err := b.Compare(v, best)
		if err != nil {
			var zero T
			return zero, err
		}
		if (want > 0 && cmp > 0) || (want < 0 && cmp < 0) {
			best = v
		}
	}
	return best, nil
}

// registerTranscendental wires sin/cos/tan/sqrt/exp/ln when the backend
// implements numcalc.Transcendental[T]; backends that don't simply go
// without these functions.
func registerTranscendental[T any](ctx *numcalc.Context[T]) {
	tr, ok := any(ctx.Backend).(numcalc.Transcendental[T])
	if !ok {
		return
	}

	unary := func(name string, fn func(T) (T, error)) numcalc.FunctionDescriptor[T] {
		return numcalc.FunctionDescriptor[T]{
			Name: name, MinArity: 1, MaxArity: 1,
			Apply: func(args []T) (T, error) { return fn(args[0]) },
		}
	}

	ctx.Functions.Register(unary("sin", tr.Sin))
	ctx.Functions.Register(unary("cos", tr.Cos))
	ctx.Functions.Register(unary("tan", tr.Tan))
	ctx.Functions.Register(unary("sqrt", tr.Sqrt))
	ctx.Functions.Register(unary("exp", tr.Exp))
	ctx.Functions.Register(unary("ln", tr.Ln))
}

// WireDefaults registers the standard operator set, pi/e constants, the
// aggregate function set, and any transcendentals the backend supports.
// Every constructor in this package calls it so "new context for backend
// X" always means "fully wired context for backend X".
func WireDefaults[T any](ctx *numcalc.Context[T], pi, e string) {
	registerArithmetic(ctx)
	registerConstants(ctx, pi, e)
	registerAggregateFunctions(ctx)
	registerTranscendental(ctx)
}
