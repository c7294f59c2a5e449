// Package fraction provides exact rational arithmetic for board values,
// equation results and challenge answers.
package fraction

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrZeroDenominator is returned when a fraction with denominator 0 is parsed or built.
var ErrZeroDenominator = errors.New("zero denominator")

// Fraction is an exact rational number. The zero value is 0/1.
//
// Fractions are not reduced automatically: 2/4 stays 2/4 until Reduce is
// called. Use Equal for comparisons, never ==.
type Fraction struct {
	Num int64
	Den int64
}

// Whole returns n/1.
func Whole(n int64) Fraction {
	return Fraction{Num: n, Den: 1}
}

// New returns num/den with the sign carried on the numerator.
func New(num, den int64) (Fraction, error) {
	if den == 0 {
		return Fraction{}, ErrZeroDenominator
	}
	if den < 0 {
		num, den = -num, -den
	}
	return Fraction{Num: num, Den: den}, nil
}

// MustNew is New for constant tables; it panics on a zero denominator.
func MustNew(num, den int64) Fraction {
	f, err := New(num, den)
	if err != nil {
		panic(err)
	}
	return f
}

// den returns the effective denominator, treating the zero value as 0/1.
func (f Fraction) den() int64 {
	if f.Den == 0 {
		return 1
	}
	return f.Den
}

// Equal compares by cross-multiplication, so 1/2 equals 2/4 and 0/3 equals 0/7.
func (f Fraction) Equal(g Fraction) bool {
	return f.Num*g.den() == g.Num*f.den()
}

// Less reports whether f < g.
func (f Fraction) Less(g Fraction) bool {
	return f.Num*g.den() < g.Num*f.den()
}

// IsZero reports whether the value is zero regardless of denominator.
func (f Fraction) IsZero() bool {
	return f.Num == 0
}

// Add returns f + g reduced to lowest terms.
func (f Fraction) Add(g Fraction) Fraction {
	return Fraction{
		Num: f.Num*g.den() + g.Num*f.den(),
		Den: f.den() * g.den(),
	}.Reduce()
}

// Mul returns f * g reduced to lowest terms.
func (f Fraction) Mul(g Fraction) Fraction {
	return Fraction{Num: f.Num * g.Num, Den: f.den() * g.den()}.Reduce()
}

// Scale returns f * n reduced to lowest terms.
func (f Fraction) Scale(n int) Fraction {
	return f.Mul(Whole(int64(n)))
}

// Div returns f / g. Dividing by zero returns ErrZeroDenominator.
func (f Fraction) Div(g Fraction) (Fraction, error) {
	if g.Num == 0 {
		return Fraction{}, ErrZeroDenominator
	}
	r, err := New(f.Num*g.den(), f.den()*g.Num)
	if err != nil {
		return Fraction{}, err
	}
	return r.Reduce(), nil
}

// Reduce returns f in lowest terms with a positive denominator.
func (f Fraction) Reduce() Fraction {
	num, den := f.Num, f.den()
	if den < 0 {
		num, den = -num, -den
	}
	if num == 0 {
		return Fraction{Num: 0, Den: 1}
	}
	g := gcd(abs(num), den)
	return Fraction{Num: num / g, Den: den / g}
}

// IsWhole reports whether the value is an integer.
func (f Fraction) IsWhole() bool {
	return f.Num%f.den() == 0
}

// Int returns the integer part (truncated toward zero).
func (f Fraction) Int() int64 {
	return f.Num / f.den()
}

// String renders integers as "n" and other values as "a/b" in lowest terms.
func (f Fraction) String() string {
	r := f.Reduce()
	if r.Den == 1 {
		return strconv.FormatInt(r.Num, 10)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Parse accepts "n" or "a/b" with optional surrounding whitespace.
func Parse(s string) (Fraction, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Fraction{}, fmt.Errorf("empty fraction")
	}
	parts := strings.SplitN(s, "/", 2)
	num, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return Fraction{}, fmt.Errorf("invalid numerator: %w", err)
	}
	if len(parts) == 1 {
		return Whole(num), nil
	}
	den, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return Fraction{}, fmt.Errorf("invalid denominator: %w", err)
	}
	return New(num, den)
}

// MarshalText implements encoding.TextMarshaler so fractions round-trip
// through YAML, TOML and JSON as "3/4".
func (f Fraction) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Fraction) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// gcd returns the greatest common divisor of a and b.
// Both a and b must be non-negative.
func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
