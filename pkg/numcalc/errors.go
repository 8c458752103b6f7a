package numcalc

import (
	"fmt"
	"strings"

	"github.com/fieldcraft/numcalc/internal/ansi"
)

// ErrorKind discriminates the failure cases surfaced by the tokenizer,
// converter, and evaluator.
type ErrorKind int

const (
	EmptyExpression ErrorKind = iota
	UnexpectedCharacter
	UnknownOperator
	UndefinedVariable
	UndefinedFunction
	ArityMismatch
	MismatchedGrouping
	UnbalancedGrouping
	MisplacedSeparator
	MalformedExpression
	DomainErrorKind
	ResourceExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case EmptyExpression:
		return "EmptyExpression"
	case UnexpectedCharacter:
		return "UnexpectedCharacter"
	case UnknownOperator:
		return "UnknownOperator"
	case UndefinedVariable:
		return "UndefinedVariable"
	case UndefinedFunction:
		return "UndefinedFunction"
	case ArityMismatch:
		return "ArityMismatch"
	case MismatchedGrouping:
		return "MismatchedGrouping"
	case UnbalancedGrouping:
		return "UnbalancedGrouping"
	case MisplacedSeparator:
		return "MisplacedSeparator"
	case MalformedExpression:
		return "MalformedExpression"
	case DomainErrorKind:
		return "DomainError"
	case ResourceExhausted:
		return "ResourceExhausted"
	default:
		return "UnknownError"
	}
}

// EvalError is the single error type surfaced by tokenizer, converter, and
// evaluator. When Source is attached, Error() renders a caret snippet
// pointing at the offending position.
type EvalError struct {
	Kind     ErrorKind
	Message  string
	Position Position
	Source   string
	Context  string
	Nested   error
}

func (e *EvalError) Error() string {
	var parts []string

	parts = append(parts, ansi.Sprintf("@R{%s}", e.Kind.String()))

	if e.Position.Line > 0 {
		parts = append(parts, ansi.Sprintf("@Y{%d:%d}", e.Position.Line, e.Position.Column))
	}

	parts = append(parts, e.Message)
	msg := strings.Join(parts, ": ")

	if e.Source != "" && e.Position.Line > 0 {
		lines := strings.Split(e.Source, "\n")
		if e.Position.Line <= len(lines) {
			msg += "\n\n" + e.formatSourceContext(lines)
		}
	}

	if e.Nested != nil {
		msg += "\n  caused by: " + e.Nested.Error()
	}

	return msg
}

func (e *EvalError) Unwrap() error { return e.Nested }

func (e *EvalError) formatSourceContext(lines []string) string {
	lineIdx := e.Position.Line - 1
	if lineIdx < 0 || lineIdx >= len(lines) {
		return ""
	}
	line := lines[lineIdx]
	marker := strings.Repeat(" ", max(e.Position.Column-1, 0)) + "^"
	out := line + "\n" + ansi.Sprintf("@R{%s}", marker)
	if e.Context != "" {
		out += ansi.Sprintf(" @R{%s}", e.Context)
	}
	return out
}

// WithSource attaches the full source text so Error() can render a snippet.
func (e *EvalError) WithSource(source string) *EvalError {
	e.Source = source
	return e
}

// WithContext attaches a short human hint printed next to the caret.
func (e *EvalError) WithContext(context string) *EvalError {
	e.Context = context
	return e
}

// WithNested wraps the backend or lower-level error that caused this one.
func (e *EvalError) WithNested(err error) *EvalError {
	e.Nested = err
	return e
}

func newError(kind ErrorKind, pos Position, format string, args ...interface{}) *EvalError {
	return &EvalError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
	}
}
