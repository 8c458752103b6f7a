package backends

import (
	"math"
	"strconv"

	"github.com/fieldcraft/numcalc/pkg/numcalc"
)

// FloatBackend implements numcalc.Backend[float64] on top of float64
// arithmetic and the math package. Division or modulo by zero, a ^ result
// that is NaN or infinite, sqrt of a negative number and ln of a
// non-positive number raise a DomainError; the other operations return
// whatever float64 arithmetic produces, including ±Inf on overflow.
type FloatBackend struct{}

// NewFloatContext returns a fully wired Context[float64]: arithmetic,
// pi/e, sum/avg/prod/max/min, and the transcendental set (FloatBackend
// implements numcalc.Transcendental[float64]).
func NewFloatContext(caseSensitive bool) *numcalc.Context[float64] {
	ctx := numcalc.NewContext[float64](FloatBackend{}, caseSensitive)
	WireDefaults(ctx, "3.14159265358979323846", "2.71828182845904523536")
	return ctx
}

func (FloatBackend) Name() string { return "float64" }

func (FloatBackend) Parse(literal string) (float64, error) {
	return strconv.ParseFloat(literal, 64)
}

func (FloatBackend) Add(a, b float64) (float64, error) { return a + b, nil }
func (FloatBackend) Sub(a, b float64) (float64, error) { return a - b, nil }
func (FloatBackend) Mul(a, b float64) (float64, error) { return a * b, nil }

func (f FloatBackend) Div(a, b float64) (float64, error) {
	if b == 0 {
		return 0, &numcalc.DomainError{Backend: f.Name(), Op: "/", Message: "division by zero"}
	}
	return a / b, nil
}

func (f FloatBackend) Mod(a, b float64) (float64, error) {
	if b == 0 {
		return 0, &numcalc.DomainError{Backend: f.Name(), Op: "%", Message: "modulo by zero"}
	}
	return math.Mod(a, b), nil
}

func (f FloatBackend) Pow(a, b float64) (float64, error) {
	r := math.Pow(a, b)
	if math.IsNaN(r) {
		return 0, &numcalc.DomainError{Backend: f.Name(), Op: "^", Message: "result is not a real number"}
	}
	if math.IsInf(r, 0) {
		return 0, &numcalc.DomainError{Backend: f.Name(), Op: "^", Message: "result overflows float64"}
	}
	return r, nil
}

func (FloatBackend) Neg(a float64) (float64, error) { return -a, nil }

func (FloatBackend) Compare(a, b float64) (int, error) {
	switch {
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	default:
		return 0, nil
	}
}

func (FloatBackend) Zero() float64 { return 0 }
func (FloatBackend) One() float64  { return 1 }

func (FloatBackend) SupportsHex() bool    { return false }
func (FloatBackend) SupportsBinary() bool { return false }
func (FloatBackend) SupportsOctal() bool  { return false }

func (f FloatBackend) Sin(a float64) (float64, error) { return math.Sin(a), nil }
func (f FloatBackend) Cos(a float64) (float64, error) { return math.Cos(a), nil }
func (f FloatBackend) Tan(a float64) (float64, error) { return math.Tan(a), nil }

func (f FloatBackend) Sqrt(a float64) (float64, error) {
	if a < 0 {
		return 0, &numcalc.DomainError{Backend: f.Name(), Op: "sqrt", Message: "square root of negative number"}
	}
	return math.Sqrt(a), nil
}

func (f FloatBackend) Exp(a float64) (float64, error) { return math.Exp(a), nil }

func (f FloatBackend) Ln(a float64) (float64, error) {
	if a <= 0 {
		return 0, &numcalc.DomainError{Backend: f.Name(), Op: "ln", Message: "logarithm of non-positive number"}
	}
	return math.Log(a), nil
}
