package numcalc

import "github.com/fieldcraft/numcalc/internal/rlog"

// Converter runs the Shunting-Yard algorithm over a token stream, resolving
// operator fixity and producing a postfix (RPN) stream the evaluator can
// walk left to right with a single value stack. Precedence and
// associativity come from the context's registered operators, not from any
// hardcoded table.
type Converter[T any] struct {
	ctx    *Context[T]
	source string

	output []Token[T]
	stack  []stackEntry[T]

	errs []*EvalError
}

// stackEntry is either an operator descriptor (with its token, for position
// reporting) or a grouping marker tracking whether a function call or plain
// parenthesis opened it, and how many arguments have been seen so far.
type stackEntry[T any] struct {
	isGrouping bool

	// operator case
	op  *OperatorDescriptor[T]
	tok Token[T]

	// grouping case
	grouping GroupingKind
	isCall   bool   // opened immediately after a Function token
	funcName string // set iff isCall
	argCount int    // args seen so far, for arity recovery
	sawArg   bool   // whether any token appeared since '(' / last ','
}

// NewConverter creates a converter for tokens against ctx. source is the
// original expression text, carried through only so emitted errors can
// render a caret snippet.
func NewConverter[T any](ctx *Context[T], source string) *Converter[T] {
	return &Converter[T]{ctx: ctx, source: source}
}

// Convert runs the algorithm to completion. On success it returns the
// postfix stream; no EOF marker is carried into postfix. On failure it
// returns the first
// error encountered, unless NUMCALC_COLLECT_ERRORS is set, in which case it
// keeps converting past recoverable faults and returns a *EvalError chain
// via Nested, outermost-first, plus logs every fault to ctx.Metrics.
func (c *Converter[T]) Convert(tokens []Token[T]) ([]Token[T], error) {
	if len(tokens) == 0 || tokens[0].Kind == TokenEOF {
		return nil, c.fail(newError(EmptyExpression, Position{Line: 1, Column: 1}, "empty expression"))
	}

	var prev *Token[T]
	collect := c.ctx.Flags != nil && c.ctx.Flags.CollectErrors

	for i := range tokens {
		tok := tokens[i]
		if tok.Kind == TokenEOF {
			break
		}
		rlog.TRACE("converter: token %s %q at %d:%d", tok.Kind, tok.Text, tok.Pos.Line, tok.Pos.Column)

		var err error
		switch tok.Kind {
		case TokenNumber, TokenConstant:
			c.output = append(c.output, tok)
			c.markArgSeen()
		case TokenVariable:
			c.output = append(c.output, tok)
			c.markArgSeen()
		case TokenFunction:
			// Not pushed itself: the tokenizer guarantees a Function token is
			// always immediately followed by its call's GroupingOpen, which
			// captures the name (see handleGroupingOpen). Nothing to emit yet.
		case TokenOperator:
			err = c.handleOperator(tok, prev)
		case TokenGroupingOpen:
			err = c.handleGroupingOpen(tok, prev)
		case TokenGroupingClose:
			err = c.handleGroupingClose(tok)
		case TokenArgumentSeparator:
			err = c.handleSeparator(tok)
		case TokenUnknown:
			err = newError(UnexpectedCharacter, tok.Pos, "unexpected character %q", tok.Text)
		}

		if err != nil {
			ee := c.asEvalError(err)
			if !collect {
				return nil, c.fail(ee)
			}
			c.errs = append(c.errs, ee)
			if c.ctx.Metrics != nil {
				c.ctx.Metrics.SyntaxErrors.Inc()
			}
			if len(c.errs) >= c.ctx.Flags.CollectErrorsMax {
				break
			}
		}

		prevCopy := tok
		prev = &prevCopy
	}

	if len(c.errs) > 0 {
		return nil, c.chainErrors()
	}

	if err := c.drainRemaining(); err != nil {
		return nil, c.asEvalError(err)
	}

	if len(c.output) == 0 {
		return nil, c.fail(newError(EmptyExpression, Position{Line: 1, Column: 1}, "empty expression"))
	}

	return c.output, nil
}

func (c *Converter[T]) fail(err *EvalError) *EvalError {
	return err.WithSource(c.source)
}

func (c *Converter[T]) asEvalError(err error) *EvalError {
	if ee, ok := err.(*EvalError); ok {
		return c.fail(ee)
	}
	return c.fail(newError(MalformedExpression, Position{}, "%s", err.Error()))
}

func (c *Converter[T]) chainErrors() *EvalError {
	// outermost-first: errs[0] is the head, the rest ride as Nested chain.
	head := c.errs[0]
	cur := head
	for _, next := range c.errs[1:] {
		cur.Nested = next
		cur = next
	}
	return head
}

// markArgSeen records that the innermost grouping (if it is a call) has now
// seen at least one token since its opening '(' or last ','. This is how
// the converter distinguishes f() (zero args) from f(x) (one arg) when it
// later counts commas. Operator entries stacked above the grouping belong
// to the same argument, so the walk skips past them.
func (c *Converter[T]) markArgSeen() {
	for i := len(c.stack) - 1; i >= 0; i-- {
		if !c.stack[i].isGrouping {
			continue
		}
		if c.stack[i].isCall {
			c.stack[i].sawArg = true
		}
		return
	}
}

// resolveFixity decides whether an operator token is acting as unary
// (prefix) or binary (infix) from what came immediately before it: unary
// if it is the first token or follows another operator, an argument
// separator, or an open grouping; binary after any value-producing token.
func resolveFixity[T any](prev *Token[T]) Fixity {
	if prev == nil {
		return FixityUnary
	}
	switch prev.Kind {
	case TokenNumber, TokenVariable, TokenConstant, TokenGroupingClose:
		return FixityBinary
	default:
		return FixityUnary
	}
}

func (c *Converter[T]) handleOperator(tok Token[T], prev *Token[T]) error {
	fixity := resolveFixity(prev)

	var desc *OperatorDescriptor[T]
	var ok bool
	if fixity == FixityUnary {
		desc, ok = c.ctx.Operators.Unary(tok.Text)
		if !ok {
			// Fall back to binary descriptor used in prefix position is never
			// valid; report against whichever arity exists for a clearer message.
			if _, hasBinary := c.ctx.Operators.Binary(tok.Text); hasBinary {
				return newError(UnknownOperator, tok.Pos, "operator %q has no unary (prefix) form", tok.Text)
			}
			return newError(UnknownOperator, tok.Pos, "unknown operator %q", tok.Text)
		}
	} else {
		desc, ok = c.ctx.Operators.Binary(tok.Text)
		if !ok {
			if _, hasUnary := c.ctx.Operators.Unary(tok.Text); hasUnary {
				return newError(UnknownOperator, tok.Pos, "operator %q has no binary (infix) form", tok.Text)
			}
			return newError(UnknownOperator, tok.Pos, "unknown operator %q", tok.Text)
		}
	}

	// A prefix operator has no left operand, so it never pops operators on
	// its left; only an infix operator participates in the precedence fold.
	if fixity == FixityBinary {
		for len(c.stack) > 0 {
			top := c.stack[len(c.stack)-1]
			if top.isGrouping || top.op == nil {
				break
			}
			if !c.shouldPopForPrecedence(top.op, desc) {
				break
			}
			c.popOperatorToOutput()
		}
	}

	resolved := tok
	resolved.Fixity = fixity
	c.stack = append(c.stack, stackEntry[T]{op: desc, tok: resolved})
	c.markArgSeen()
	return nil
}

// shouldPopForPrecedence implements the standard Shunting-Yard precedence
// test: pop top while it binds at least as tightly as the incoming operator
// (strictly tighter, or equal and left-associative).
func (c *Converter[T]) shouldPopForPrecedence(top, incoming *OperatorDescriptor[T]) bool {
	if top.Precedence > incoming.Precedence {
		return true
	}
	if top.Precedence == incoming.Precedence && incoming.Associativity == LeftAssociative {
		return true
	}
	return false
}

func (c *Converter[T]) popOperatorToOutput() {
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.output = append(c.output, top.tok)
}

func (c *Converter[T]) handleGroupingOpen(tok Token[T], prev *Token[T]) error {
	isCall := prev != nil && prev.Kind == TokenFunction
	entry := stackEntry[T]{
		isGrouping: true,
		grouping:   tok.Grouping,
		isCall:     isCall,
	}
	if isCall {
		entry.funcName = prev.Text
	}
	c.stack = append(c.stack, entry)
	return nil
}

func (c *Converter[T]) handleGroupingClose(tok Token[T]) error {
	for len(c.stack) > 0 {
		top := c.stack[len(c.stack)-1]
		if top.isGrouping {
			break
		}
		c.popOperatorToOutput()
	}

	if len(c.stack) == 0 {
		return newError(UnbalancedGrouping, tok.Pos, "unmatched closing %q", tok.Text)
	}

	top := c.stack[len(c.stack)-1]
	if top.grouping != tok.Grouping {
		return newError(MismatchedGrouping, tok.Pos, "closing %q does not match opening bracket (want %q)",
			tok.Text, string(top.grouping.closeRune()))
	}
	c.stack = c.stack[:len(c.stack)-1]

	if top.isCall {
		argc := top.argCount
		if top.sawArg {
			argc++
		}
		// Emit the synthetic ArgCount marker before the Function token so
		// the flat postfix evaluator can recover variadic arity without
		// mutating the already-queued Function token.
		c.output = append(c.output, Token[T]{Kind: TokenArgCount, ArgCount: argc, Pos: tok.Pos})
		funcTok := Token[T]{Kind: TokenFunction, Text: top.funcName, Pos: tok.Pos}
		c.output = append(c.output, funcTok)
	}

	c.markArgSeen()
	return nil
}

func (c *Converter[T]) handleSeparator(tok Token[T]) error {
	for len(c.stack) > 0 {
		top := c.stack[len(c.stack)-1]
		if top.isGrouping {
			break
		}
		c.popOperatorToOutput()
	}

	if len(c.stack) == 0 {
		return newError(MisplacedSeparator, tok.Pos, "argument separator outside of a function call")
	}

	top := &c.stack[len(c.stack)-1]
	if !top.isCall {
		return newError(MisplacedSeparator, tok.Pos, "argument separator inside a non-call grouping")
	}
	if !top.sawArg {
		return newError(MisplacedSeparator, tok.Pos, "argument separator with no preceding argument")
	}
	top.argCount++
	top.sawArg = false
	return nil
}

func (c *Converter[T]) drainRemaining() error {
	for len(c.stack) > 0 {
		top := c.stack[len(c.stack)-1]
		if top.isGrouping {
			return newError(UnbalancedGrouping, Position{}, "unclosed opening bracket")
		}
		c.popOperatorToOutput()
	}
	return nil
}
