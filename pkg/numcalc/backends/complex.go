package backends

import (
	"math/cmplx"
	"strconv"
	"strings"

	"github.com/fieldcraft/numcalc/pkg/numcalc"
)

// ComplexBackend implements numcalc.Backend[complex128]. Complex numbers
// have no total order, so Compare only honors equality; max/min therefore
// fail with a DomainError on this backend whenever two distinct values
// are compared.
type ComplexBackend struct{}

// NewComplexContext returns a fully wired Context[complex128]. pi/e are
// registered as real-valued complex constants.
func NewComplexContext(caseSensitive bool) *numcalc.Context[complex128] {
	ctx := numcalc.NewContext[complex128](ComplexBackend{}, caseSensitive)
	WireDefaults(ctx, "3.14159265358979323846", "2.71828182845904523536")
	ctx.SetConstant("i", complex(0, 1))
	return ctx
}

func (ComplexBackend) Name() string { return "complex128" }

// Parse accepts a plain real literal (e.g. "3.5") or an "a+bi"/"a-bi" form
// with the trailing imaginary unit spelled "i" (the tokenizer only ever
// hands this Parse a literal matched by its own digit grammar, so the
// suffix form only appears through literal concatenation with the "i"
// constant at the operator level in ordinary use; Parse keeps the "a+bi"
// path for completeness and for config-file literal loading).
func (ComplexBackend) Parse(literal string) (complex128, error) {
	s := strings.TrimSpace(literal)
	if strings.HasSuffix(s, "i") || strings.HasSuffix(s, "I") {
		imagPart := strings.TrimSuffix(strings.TrimSuffix(s, "i"), "I")
		if imagPart == "" || imagPart == "+" {
			imagPart = "1"
		} else if imagPart == "-" {
			imagPart = "-1"
		}
		im, err := strconv.ParseFloat(imagPart, 64)
		if err != nil {
			// "a+bi" / "a-bi": a real part ahead of the imaginary one.
			return strconv.ParseComplex(imagPart+"i", 128)
		}
		return complex(0, im), nil
	}
	re, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return complex(re, 0), nil
}

func (ComplexBackend) Add(a, b complex128) (complex128, error) { return a + b, nil }
func (ComplexBackend) Sub(a, b complex128) (complex128, error) { return a - b, nil }
func (ComplexBackend) Mul(a, b complex128) (complex128, error) { return a * b, nil }

func (c ComplexBackend) Div(a, b complex128) (complex128, error) {
	if b == 0 {
		return 0, &numcalc.DomainError{Backend: c.Name(), Op: "/", Message: "division by zero"}
	}
	return a / b, nil
}

func (c ComplexBackend) Mod(a, b complex128) (complex128, error) {
	return 0, &numcalc.DomainError{Backend: c.Name(), Op: "%", Message: "modulo is not defined over complex numbers"}
}

func (c ComplexBackend) Pow(a, b complex128) (complex128, error) { return cmplx.Pow(a, b), nil }

func (ComplexBackend) Neg(a complex128) (complex128, error) { return -a, nil }

func (c ComplexBackend) Compare(a, b complex128) (int, error) {
	if a == b {
		return 0, nil
	}
	return 0, &numcalc.DomainError{Backend: c.Name(), Op: "compare", Message: "complex numbers have no total order"}
}

func (ComplexBackend) Zero() complex128 { return 0 }
func (ComplexBackend) One() complex128  { return 1 }

func (ComplexBackend) SupportsHex() bool    { return false }
func (ComplexBackend) SupportsBinary() bool { return false }
func (ComplexBackend) SupportsOctal() bool  { return false }

func (ComplexBackend) Sin(a complex128) (complex128, error) { return cmplx.Sin(a), nil }
func (ComplexBackend) Cos(a complex128) (complex128, error) { return cmplx.Cos(a), nil }
func (ComplexBackend) Tan(a complex128) (complex128, error) { return cmplx.Tan(a), nil }
func (ComplexBackend) Sqrt(a complex128) (complex128, error) { return cmplx.Sqrt(a), nil }
func (ComplexBackend) Exp(a complex128) (complex128, error) { return cmplx.Exp(a), nil }

func (c ComplexBackend) Ln(a complex128) (complex128, error) {
	if a == 0 {
		return 0, &numcalc.DomainError{Backend: c.Name(), Op: "ln", Message: "logarithm of zero"}
	}
	return cmplx.Log(a), nil
}
