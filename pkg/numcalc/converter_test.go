package numcalc

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func convert(t *testing.T, expr string) ([]Token[float64], error) {
	t.Helper()
	ctx := testContext()
	toks := NewTokenizer(expr, ctx).Tokenize()
	return NewConverter(ctx, expr).Convert(toks)
}

func TestConverterShuntingYard(t *testing.T) {
	Convey("Converting infix to postfix", t, func() {
		Convey("respects operator precedence", func() {
			postfix, err := convert(t, "1 + 2 * 3")
			So(err, ShouldBeNil)
			So(textsOf(postfix), ShouldResemble, []string{"1", "2", "3", "*", "+"})
		})

		Convey("honors explicit grouping", func() {
			postfix, err := convert(t, "(1 + 2) * 3")
			So(err, ShouldBeNil)
			So(textsOf(postfix), ShouldResemble, []string{"1", "2", "+", "3", "*"})
		})

		Convey("is left-associative for equal-precedence operators", func() {
			postfix, err := convert(t, "1 - 2 - 3")
			So(err, ShouldBeNil)
			So(textsOf(postfix), ShouldResemble, []string{"1", "2", "-", "3", "-"})
		})

		Convey("is right-associative for ^", func() {
			postfix, err := convert(t, "2 ^ 3 ^ 2")
			So(err, ShouldBeNil)
			So(textsOf(postfix), ShouldResemble, []string{"2", "3", "2", "^", "^"})
		})

		Convey("resolves a leading '-' as unary", func() {
			postfix, err := convert(t, "-5 + 1")
			So(err, ShouldBeNil)
			So(postfix[1].Fixity, ShouldEqual, FixityUnary)
		})

		Convey("does not let a prefix operator pop a stacked binary operator", func() {
			postfix, err := convert(t, "2 ^ -3")
			So(err, ShouldBeNil)
			So(textsOf(postfix), ShouldResemble, []string{"2", "3", "-", "^"})
			So(postfix[2].Fixity, ShouldEqual, FixityUnary)
		})

		Convey("resolves repeated unary minus (---5)", func() {
			postfix, err := convert(t, "---5")
			So(err, ShouldBeNil)
			for i := 1; i < len(postfix); i++ {
				So(postfix[i].Fixity, ShouldEqual, FixityUnary)
			}
		})

		Convey("injects an ArgCount marker before a function call", func() {
			postfix, err := convert(t, "sum(1, 2, 3)")
			So(err, ShouldBeNil)
			So(postfix[len(postfix)-2].Kind, ShouldEqual, TokenArgCount)
			So(postfix[len(postfix)-2].ArgCount, ShouldEqual, 3)
			So(postfix[len(postfix)-1].Kind, ShouldEqual, TokenFunction)
		})

		Convey("counts an argument that starts with a unary operator", func() {
			postfix, err := convert(t, "sum(-1, 2)")
			So(err, ShouldBeNil)
			So(postfix[len(postfix)-2].Kind, ShouldEqual, TokenArgCount)
			So(postfix[len(postfix)-2].ArgCount, ShouldEqual, 2)
		})

		Convey("counts one argument for a parenthesized subexpression", func() {
			postfix, err := convert(t, "sum((1 + 2) * 3)")
			So(err, ShouldBeNil)
			So(postfix[len(postfix)-2].Kind, ShouldEqual, TokenArgCount)
			So(postfix[len(postfix)-2].ArgCount, ShouldEqual, 1)
		})

		Convey("counts zero arguments for an empty call", func() {
			postfix, err := convert(t, "sum()")
			So(err, ShouldBeNil)
			So(postfix[0].Kind, ShouldEqual, TokenArgCount)
			So(postfix[0].ArgCount, ShouldEqual, 0)
		})

		Convey("rejects an empty expression", func() {
			_, err := convert(t, "")
			So(err, ShouldNotBeNil)
			So(err.(*EvalError).Kind, ShouldEqual, EmptyExpression)
		})

		Convey("rejects mismatched bracket kinds", func() {
			_, err := convert(t, "(1 + 2]")
			So(err, ShouldNotBeNil)
			So(err.(*EvalError).Kind, ShouldEqual, MismatchedGrouping)
		})

		Convey("rejects an unbalanced closing bracket", func() {
			_, err := convert(t, "1 + 2)")
			So(err, ShouldNotBeNil)
			So(err.(*EvalError).Kind, ShouldEqual, UnbalancedGrouping)
		})

		Convey("rejects an unclosed opening bracket", func() {
			_, err := convert(t, "(1 + 2")
			So(err, ShouldNotBeNil)
			So(err.(*EvalError).Kind, ShouldEqual, UnbalancedGrouping)
		})

		Convey("rejects a misplaced argument separator", func() {
			_, err := convert(t, "1, 2")
			So(err, ShouldNotBeNil)
			So(err.(*EvalError).Kind, ShouldEqual, MisplacedSeparator)
		})

		Convey("rejects an unknown operator symbol", func() {
			_, err := convert(t, "1 ~ 2")
			So(err, ShouldNotBeNil)
			So(err.(*EvalError).Kind, ShouldEqual, UnexpectedCharacter)
		})

		Convey("treats redundant grouping as a no-op on the postfix shape", func() {
			a, err := convert(t, "(1)-2")
			So(err, ShouldBeNil)
			b, err := convert(t, "1-2")
			So(err, ShouldBeNil)
			So(textsOf(a), ShouldResemble, textsOf(b))
		})
	})
}

func textsOf(toks []Token[float64]) []string {
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		if t.Kind == TokenArgCount {
			continue
		}
		out = append(out, t.Text)
	}
	return out
}
