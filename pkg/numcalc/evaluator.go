package numcalc

import "github.com/fieldcraft/numcalc/internal/rlog"

// Evaluator walks a postfix (RPN) token stream with a single value stack,
// dispatching operators and functions through the context's registries.
// Variadic function arity is recovered from the synthetic TokenArgCount
// marker the converter emits ahead of every Function token.
type Evaluator[T any] struct {
	ctx *Context[T]
}

// NewEvaluator creates an evaluator bound to ctx; ctx supplies the backend,
// operator/function registries, variable bindings, and step budget.
func NewEvaluator[T any](ctx *Context[T]) *Evaluator[T] {
	return &Evaluator[T]{ctx: ctx}
}

// Eval walks postfix left to right and returns the single remaining value,
// or the first error encountered.
func (e *Evaluator[T]) Eval(postfix []Token[T]) (T, error) {
	var zero T
	stack := make([]T, 0, len(postfix))

	pendingArgCount := -1 // set by TokenArgCount, consumed by the Function that follows it
	steps := 0

	for _, tok := range postfix {
		steps++
		if e.ctx.StepBudget > 0 && steps > e.ctx.StepBudget {
			return zero, newError(ResourceExhausted, tok.Pos, "evaluation exceeded step budget of %d", e.ctx.StepBudget)
		}

		switch tok.Kind {
		case TokenNumber:
			stack = append(stack, tok.Value)

		case TokenConstant:
			// Resolved now rather than at tokenization: a variable of the same
			// name wins, and a cached postfix stream sees the current value.
			if v, ok := e.ctx.resolveValue(tok.Text); ok {
				stack = append(stack, v)
			} else {
				stack = append(stack, tok.Value)
			}

		case TokenVariable:
			v, ok := e.ctx.resolveValue(tok.Text)
			if !ok {
				return zero, newError(UndefinedVariable, tok.Pos, "undefined variable %q", tok.Text)
			}
			stack = append(stack, v)

		case TokenOperator:
			var err error
			stack, err = e.applyOperator(stack, tok)
			if err != nil {
				return zero, err
			}

		case TokenArgCount:
			pendingArgCount = tok.ArgCount

		case TokenFunction:
			var err error
			stack, err = e.applyFunction(stack, tok, pendingArgCount)
			pendingArgCount = -1
			if err != nil {
				return zero, err
			}

		default:
			return zero, newError(MalformedExpression, tok.Pos, "unexpected token kind %s in postfix stream", tok.Kind)
		}

		if e.ctx.Metrics != nil {
			e.ctx.Metrics.StepsExecuted.Add(1)
		}
	}

	if len(stack) != 1 {
		return zero, newError(MalformedExpression, Position{}, "expression did not reduce to a single value (stack depth %d)", len(stack))
	}

	if e.ctx.Metrics != nil {
		e.ctx.Metrics.Evaluations.Inc()
	}
	return stack[0], nil
}

func (e *Evaluator[T]) applyOperator(stack []T, tok Token[T]) ([]T, error) {
	if tok.Fixity == FixityUnary {
		desc, ok := e.ctx.Operators.Unary(tok.Text)
		if !ok {
			return stack, newError(UnknownOperator, tok.Pos, "unknown unary operator %q", tok.Text)
		}
		if len(stack) < 1 {
			return stack, newError(MalformedExpression, tok.Pos, "operator %q has no operand", tok.Text)
		}
		a := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		v, err := desc.Unary(a)
		if err != nil {
			return stack, e.wrapOperatorError(tok, err)
		}
		return append(stack, v), nil
	}

	desc, ok := e.ctx.Operators.Binary(tok.Text)
	if !ok {
		return stack, newError(UnknownOperator, tok.Pos, "unknown binary operator %q", tok.Text)
	}
	if len(stack) < 2 {
		return stack, newError(MalformedExpression, tok.Pos, "operator %q is missing operands", tok.Text)
	}
	right := stack[len(stack)-1]
	left := stack[len(stack)-2]
	stack = stack[:len(stack)-2]
	v, err := desc.Binary(left, right)
	if err != nil {
		return stack, e.wrapOperatorError(tok, err)
	}
	return append(stack, v), nil
}

func (e *Evaluator[T]) wrapOperatorError(tok Token[T], err error) *EvalError {
	rlog.DEBUG("evaluator: operator %q failed: %s", tok.Text, err.Error())
	if e.ctx.Metrics != nil {
		e.ctx.Metrics.DomainErrors.Inc()
	}
	if de, ok := err.(*DomainError); ok {
		return newError(DomainErrorKind, tok.Pos, "%s", de.Error()).WithNested(de)
	}
	return newError(DomainErrorKind, tok.Pos, "%s", err.Error()).WithNested(err)
}

func (e *Evaluator[T]) applyFunction(stack []T, tok Token[T], argCount int) ([]T, error) {
	if argCount < 0 {
		return stack, newError(MalformedExpression, tok.Pos, "function %q called without an argument count marker", tok.Text)
	}
	desc, ok := e.ctx.Functions.Get(tok.Text)
	if !ok {
		return stack, newError(UndefinedFunction, tok.Pos, "undefined function %q", tok.Text)
	}
	if err := desc.Validate(argCount); err != nil {
		return stack, newError(ArityMismatch, tok.Pos, "%s", err.Error()).WithNested(err)
	}
	if len(stack) < argCount {
		return stack, newError(MalformedExpression, tok.Pos, "function %q is missing arguments", tok.Text)
	}

	args := make([]T, argCount)
	copy(args, stack[len(stack)-argCount:])
	stack = stack[:len(stack)-argCount]

	v, err := desc.Apply(args)
	if err != nil {
		if e.ctx.Metrics != nil {
			e.ctx.Metrics.DomainErrors.Inc()
		}
		if de, ok := err.(*DomainError); ok {
			return stack, newError(DomainErrorKind, tok.Pos, "%s", de.Error()).WithNested(de)
		}
		return stack, newError(DomainErrorKind, tok.Pos, "%s", err.Error()).WithNested(err)
	}
	return append(stack, v), nil
}
