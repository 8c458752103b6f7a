package backends

import (
	"math/big"

	"github.com/fieldcraft/numcalc/pkg/numcalc"
)

// IntegerBackend implements numcalc.Backend[*big.Int] for arbitrary
// precision integer arithmetic.
//
// IntegerBackend does not implement numcalc.Transcendental: sin/cos/sqrt
// etc. have no exact integer result in general, and numcalc never
// approximates a result the caller didn't ask for.
type IntegerBackend struct{}

// NewIntegerContext returns a fully wired Context[*big.Int]. pi and e are
// registered as the truncated integers 3 and 2; 0x/0b/0o literals work.
func NewIntegerContext(caseSensitive bool) *numcalc.Context[*big.Int] {
	ctx := numcalc.NewContext[*big.Int](IntegerBackend{}, caseSensitive)
	WireDefaults(ctx, "3", "2") // pi/e truncate to integers; harmless placeholders
	return ctx
}

func (IntegerBackend) Name() string { return "bigint" }

func (IntegerBackend) Parse(literal string) (*big.Int, error) {
	base := 10
	text := literal
	if len(literal) > 2 && literal[0] == '0' {
		switch literal[1] {
		case 'x', 'X':
			base, text = 16, literal[2:]
		case 'b', 'B':
			base, text = 2, literal[2:]
		case 'o', 'O':
			base, text = 8, literal[2:]
		}
	}
	v, ok := new(big.Int).SetString(text, base)
	if !ok {
		return nil, &numcalc.DomainError{Backend: "bigint", Op: "parse", Message: "malformed integer literal " + literal}
	}
	return v, nil
}

func (IntegerBackend) Add(a, b *big.Int) (*big.Int, error) { return new(big.Int).Add(a, b), nil }
func (IntegerBackend) Sub(a, b *big.Int) (*big.Int, error) { return new(big.Int).Sub(a, b), nil }
func (IntegerBackend) Mul(a, b *big.Int) (*big.Int, error) { return new(big.Int).Mul(a, b), nil }

func (IntegerBackend) Div(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, &numcalc.DomainError{Backend: "bigint", Op: "/", Message: "division by zero"}
	}
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 {
		return nil, &numcalc.DomainError{Backend: "bigint", Op: "/", Message: "division is not exact; use a decimal backend for fractional results"}
	}
	return q, nil
}

func (IntegerBackend) Mod(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, &numcalc.DomainError{Backend: "bigint", Op: "%", Message: "modulo by zero"}
	}
	return new(big.Int).Rem(a, b), nil
}

func (IntegerBackend) Pow(a, b *big.Int) (*big.Int, error) {
	if b.Sign() < 0 {
		return nil, &numcalc.DomainError{Backend: "bigint", Op: "^", Message: "negative exponent has no integer result"}
	}
	return new(big.Int).Exp(a, b, nil), nil
}

func (IntegerBackend) Neg(a *big.Int) (*big.Int, error) { return new(big.Int).Neg(a), nil }

func (IntegerBackend) Compare(a, b *big.Int) (int, error) { return a.Cmp(b), nil }

func (IntegerBackend) Zero() *big.Int { return big.NewInt(0) }
func (IntegerBackend) One() *big.Int  { return big.NewInt(1) }

func (IntegerBackend) SupportsHex() bool    { return true }
func (IntegerBackend) SupportsBinary() bool { return true }
func (IntegerBackend) SupportsOctal() bool  { return true }
