package backends

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/fieldcraft/numcalc/pkg/numcalc"
)

func TestFloatBackend(t *testing.T) {
	Convey("FloatBackend", t, func() {
		ctx := NewFloatContext(false)

		Convey("evaluates arithmetic with standard precedence", func() {
			v, err := numcalc.Eval("2 + 3 * 4", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 14)
		})

		Convey("knows pi and e", func() {
			v, err := numcalc.Eval("pi", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldAlmostEqual, 3.14159265358979, 1e-9)
		})

		Convey("computes the aggregate function set", func() {
			v, err := numcalc.Eval("sum(1, 2, 3)", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 6)

			v, err = numcalc.Eval("avg(2, 4, 6)", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 4)

			v, err = numcalc.Eval("max(3, 7, 2)", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 7)

			v, err = numcalc.Eval("min(3, 7, 2)", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 2)
		})

		Convey("computes transcendental functions", func() {
			v, err := numcalc.Eval("sqrt(9)", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 3)
		})

		Convey("raises a domain error on division by zero", func() {
			_, err := numcalc.Eval("1 / 0", ctx)
			So(err, ShouldNotBeNil)
			So(err.(*numcalc.EvalError).Kind, ShouldEqual, numcalc.DomainErrorKind)
		})

		Convey("raises a domain error on sqrt of a negative number", func() {
			_, err := numcalc.Eval("sqrt(-1)", ctx)
			So(err, ShouldNotBeNil)
			So(err.(*numcalc.EvalError).Kind, ShouldEqual, numcalc.DomainErrorKind)
		})
	})
}

// TestFloatBackendScenarios runs end-to-end expressions against the
// default float context.
func TestFloatBackendScenarios(t *testing.T) {
	Convey("Default float context scenarios", t, func() {
		ctx := NewFloatContext(false)

		Convey("2 + 3 * 5 = 17 (precedence)", func() {
			v, err := numcalc.Eval("2 + 3 * 5", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 17)
		})

		Convey("(2 + 3) * 5 = 25 (grouping overrides)", func() {
			v, err := numcalc.Eval("(2 + 3) * 5", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 25)
		})

		Convey("2 ^ 3 ^ 2 = 512 (right-associative)", func() {
			v, err := numcalc.Eval("2 ^ 3 ^ 2", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 512)
		})

		Convey("-2 ^ 2 = -4 (unary binds looser than ^)", func() {
			v, err := numcalc.Eval("-2 ^ 2", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, -4)
		})

		Convey("2 ^ -3 = 0.125 (unary minus in the exponent)", func() {
			v, err := numcalc.Eval("2 ^ -3", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 0.125)
		})

		Convey("2 ^ -1 = 0.5", func() {
			v, err := numcalc.Eval("2 ^ -1", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 0.5)
		})

		Convey("sum(1, 2, 3, 4) = 10 (variadic function)", func() {
			v, err := numcalc.Eval("sum(1, 2, 3, 4)", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 10)
		})

		Convey("(x - y) ^ 2 = 42.25 with x=10, y=3.5", func() {
			ctx.SetVariable("x", 10)
			ctx.SetVariable("y", 3.5)
			v, err := numcalc.Eval("(x - y) ^ 2", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 42.25)
		})

		Convey("1 / 0 raises DomainError", func() {
			_, err := numcalc.Eval("1 / 0", ctx)
			So(err, ShouldNotBeNil)
			So(err.(*numcalc.EvalError).Kind, ShouldEqual, numcalc.DomainErrorKind)
		})

		Convey("max(1, 2, 3) + min(4, 5) = 7 (multiple function calls)", func() {
			v, err := numcalc.Eval("max(1, 2, 3) + min(4, 5)", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 7)
		})
	})
}

// TestFloatBackendBoundaryCases covers the parser and evaluator edge
// cases against the default float context.
func TestFloatBackendBoundaryCases(t *testing.T) {
	Convey("Default float context boundary cases", t, func() {
		ctx := NewFloatContext(false)

		Convey("empty string is EmptyExpression", func() {
			_, err := numcalc.Eval("", ctx)
			So(err, ShouldNotBeNil)
			So(err.(*numcalc.EvalError).Kind, ShouldEqual, numcalc.EmptyExpression)
		})

		Convey("whitespace only is EmptyExpression", func() {
			_, err := numcalc.Eval("   \t  ", ctx)
			So(err, ShouldNotBeNil)
			So(err.(*numcalc.EvalError).Kind, ShouldEqual, numcalc.EmptyExpression)
		})

		Convey("a single number evaluates to itself", func() {
			v, err := numcalc.Eval("42", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 42)
		})

		Convey("a single defined variable evaluates to its value", func() {
			ctx.SetVariable("x", 7)
			v, err := numcalc.Eval("x", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 7)
		})

		Convey("a single undefined variable is UndefinedVariable", func() {
			_, err := numcalc.Eval("nope", ctx)
			So(err, ShouldNotBeNil)
			So(err.(*numcalc.EvalError).Kind, ShouldEqual, numcalc.UndefinedVariable)
		})

		Convey("stacked unary minus: ---5 = -5", func() {
			v, err := numcalc.Eval("---5", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, -5)
		})

		Convey("binary minus after grouping: (1)-2 = -1", func() {
			v, err := numcalc.Eval("(1)-2", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, -1)
		})

		Convey("nested grouping of all three kinds", func() {
			v, err := numcalc.Eval("[(1 + {2 * 3}) - 1]", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 6)
		})

		Convey("a function with one argument", func() {
			v, err := numcalc.Eval("sqrt(16)", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 4)
		})

		Convey("a function with variadic arguments", func() {
			v, err := numcalc.Eval("sum(1, 2, 3, 4, 5)", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 15)
		})

		Convey("a function whose arguments are expressions", func() {
			v, err := numcalc.Eval("sum(-1, 2 * 3, (4))", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 9)
		})

		Convey("an operator that is both unary and binary ('-')", func() {
			v, err := numcalc.Eval("5 - -3", ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 8)
		})

		Convey("a mismatched bracket is MismatchedGrouping", func() {
			_, err := numcalc.Eval("(1 + 2]", ctx)
			So(err, ShouldNotBeNil)
			So(err.(*numcalc.EvalError).Kind, ShouldEqual, numcalc.MismatchedGrouping)
		})

		Convey("a trailing operator is UnbalancedGrouping or MalformedExpression", func() {
			_, err := numcalc.Eval("1 +", ctx)
			So(err, ShouldNotBeNil)
			So(err.(*numcalc.EvalError).Kind, ShouldBeIn, numcalc.UnbalancedGrouping, numcalc.MalformedExpression)
		})

		Convey("a comma outside a function call is MisplacedSeparator", func() {
			_, err := numcalc.Eval("1, 2", ctx)
			So(err, ShouldNotBeNil)
			So(err.(*numcalc.EvalError).Kind, ShouldEqual, numcalc.MisplacedSeparator)
		})

		Convey("adding redundant outer grouping does not change the result", func() {
			a, err := numcalc.Eval("2 + 3 * 5", ctx)
			So(err, ShouldBeNil)
			b, err := numcalc.Eval("(2 + 3 * 5)", ctx)
			So(err, ShouldBeNil)
			So(a, ShouldEqual, b)
		})

		Convey("left-associative chains parse left-to-right", func() {
			a, err := numcalc.Eval("10 - 2 - 3", ctx)
			So(err, ShouldBeNil)
			b, err := numcalc.Eval("(10 - 2) - 3", ctx)
			So(err, ShouldBeNil)
			So(a, ShouldEqual, b)
		})

		Convey("right-associative chains parse right-to-left", func() {
			a, err := numcalc.Eval("2 ^ 2 ^ 3", ctx)
			So(err, ShouldBeNil)
			b, err := numcalc.Eval("2 ^ (2 ^ 3)", ctx)
			So(err, ShouldBeNil)
			So(a, ShouldEqual, b)
		})

		Convey("variable substitution is referentially transparent", func() {
			ctx.SetVariable("x", 4)
			withVar, err := numcalc.Eval("x * x + 1", ctx)
			So(err, ShouldBeNil)
			withLiteral, err := numcalc.Eval("4 * 4 + 1", ctx)
			So(err, ShouldBeNil)
			So(withVar, ShouldEqual, withLiteral)
		})

		Convey("unknown symbols always produce a typed error, never a panic", func() {
			defer func() {
				So(recover(), ShouldBeNil)
			}()
			_, err := numcalc.Eval("1 @ 2", ctx)
			So(err, ShouldNotBeNil)
		})
	})
}
