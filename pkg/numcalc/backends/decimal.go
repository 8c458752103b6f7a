package backends

import (
	"math"
	"math/big"

	"github.com/fieldcraft/numcalc/pkg/numcalc"
)

// decimalPrecision is the working precision (in bits of mantissa) used by
// DecimalBackend, chosen to comfortably exceed float64's 53 bits for
// multi-step expressions without making every operation noticeably slower.
const decimalPrecision = 128

// DecimalBackend implements numcalc.Backend[*big.Float] for high-precision
// decimal arithmetic at decimalPrecision bits.
type DecimalBackend struct{}

// NewDecimalContext returns a fully wired Context[*big.Float] at
// decimalPrecision bits, including the transcendental set (sin, cos, tan,
// exp and ln evaluated via float64 round-trip, sqrt computed natively by
// big.Float; see below).
func NewDecimalContext(caseSensitive bool) *numcalc.Context[*big.Float] {
	ctx := numcalc.NewContext[*big.Float](DecimalBackend{}, caseSensitive)
	WireDefaults(ctx, "3.14159265358979323846", "2.71828182845904523536")
	return ctx
}

func newFloat() *big.Float { return new(big.Float).SetPrec(decimalPrecision) }

func (DecimalBackend) Name() string { return "bigdecimal" }

func (DecimalBackend) Parse(literal string) (*big.Float, error) {
	v, ok := newFloat().SetString(literal)
	if !ok {
		return nil, &numcalc.DomainError{Backend: "bigdecimal", Op: "parse", Message: "malformed decimal literal " + literal}
	}
	return v, nil
}

func (DecimalBackend) Add(a, b *big.Float) (*big.Float, error) { return newFloat().Add(a, b), nil }
func (DecimalBackend) Sub(a, b *big.Float) (*big.Float, error) { return newFloat().Sub(a, b), nil }
func (DecimalBackend) Mul(a, b *big.Float) (*big.Float, error) { return newFloat().Mul(a, b), nil }

func (DecimalBackend) Div(a, b *big.Float) (*big.Float, error) {
	if b.Sign() == 0 {
		return nil, &numcalc.DomainError{Backend: "bigdecimal", Op: "/", Message: "division by zero"}
	}
	return newFloat().Quo(a, b), nil
}

func (DecimalBackend) Mod(a, b *big.Float) (*big.Float, error) {
	if b.Sign() == 0 {
		return nil, &numcalc.DomainError{Backend: "bigdecimal", Op: "%", Message: "modulo by zero"}
	}
	q := newFloat().Quo(a, b)
	intQ, _ := q.Int(nil)
	r := newFloat().Sub(a, newFloat().Mul(newFloat().SetInt(intQ), b))
	return r, nil
}

func (d DecimalBackend) Pow(a, b *big.Float) (*big.Float, error) {
	if b.IsInt() {
		exp, _ := b.Int64()
		return d.powInt(a, exp)
	}
	return nil, &numcalc.DomainError{Backend: "bigdecimal", Op: "^", Message: "fractional exponents are not supported at arbitrary precision"}
}

func (DecimalBackend) powInt(a *big.Float, exp int64) (*big.Float, error) {
	neg := exp < 0
	if neg {
		exp = -exp
	}
	result := newFloat().SetInt64(1)
	base := newFloat().Copy(a)
	for exp > 0 {
		if exp&1 == 1 {
			result = newFloat().Mul(result, base)
		}
		base = newFloat().Mul(base, base)
		exp >>= 1
	}
	if neg {
		if result.Sign() == 0 {
			return nil, &numcalc.DomainError{Backend: "bigdecimal", Op: "^", Message: "division by zero"}
		}
		return newFloat().Quo(newFloat().SetInt64(1), result), nil
	}
	return result, nil
}

func (DecimalBackend) Neg(a *big.Float) (*big.Float, error) { return newFloat().Neg(a), nil }

func (DecimalBackend) Compare(a, b *big.Float) (int, error) { return a.Cmp(b), nil }

func (DecimalBackend) Zero() *big.Float { return newFloat() }
func (DecimalBackend) One() *big.Float  { return newFloat().SetInt64(1) }

func (DecimalBackend) SupportsHex() bool    { return false }
func (DecimalBackend) SupportsBinary() bool { return false }
func (DecimalBackend) SupportsOctal() bool  { return false }

// Transcendental functions round-trip through float64: big.Float carries
// no native sin/cos/exp/ln. The result is re-widened to decimalPrecision
// bits so it composes with further high-precision arithmetic, even though
// its actual accuracy is bounded by float64. Known limitation, not a bug.
func (d DecimalBackend) roundTrip(a *big.Float, fn func(float64) float64) (*big.Float, error) {
	f, _ := a.Float64()
	return newFloat().SetFloat64(fn(f)), nil
}

func (d DecimalBackend) Sin(a *big.Float) (*big.Float, error) { return d.roundTrip(a, math.Sin) }
func (d DecimalBackend) Cos(a *big.Float) (*big.Float, error) { return d.roundTrip(a, math.Cos) }
func (d DecimalBackend) Tan(a *big.Float) (*big.Float, error) { return d.roundTrip(a, math.Tan) }
func (d DecimalBackend) Exp(a *big.Float) (*big.Float, error) { return d.roundTrip(a, math.Exp) }

func (d DecimalBackend) Sqrt(a *big.Float) (*big.Float, error) {
	if a.Sign() < 0 {
		return nil, &numcalc.DomainError{Backend: "bigdecimal", Op: "sqrt", Message: "square root of negative number"}
	}
	return newFloat().Sqrt(a), nil
}

func (d DecimalBackend) Ln(a *big.Float) (*big.Float, error) {
	if a.Sign() <= 0 {
		return nil, &numcalc.DomainError{Backend: "bigdecimal", Op: "ln", Message: "logarithm of non-positive number"}
	}
	return d.roundTrip(a, math.Log)
}
