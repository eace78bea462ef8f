// Package expr is the exact symbolic expression kernel behind the equation
// solver.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat)
//   - Canonical, deterministic simplification on construction
//   - Structural inspection (Head, Operands) and wildcard pattern matching
//   - Numeric approximation that reports imaginary or undefined values
//   - ASCII-math parsing and LaTeX output
package expr

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Heads reported by Expr.Head.
const (
	HeadNumber   = "Number"
	HeadSymbol   = "Symbol"
	HeadConstant = "Constant"
	HeadAdd      = "Add"
	HeadMultiply = "Multiply"
	HeadPower    = "Power"
	HeadSin      = "Sin"
	HeadCos      = "Cos"
	HeadTan      = "Tan"
	HeadArcsin   = "Arcsin"
	HeadArccos   = "Arccos"
	HeadArctan   = "Arctan"
	HeadLn       = "Ln"
	HeadExp      = "Exp"
	HeadAbs      = "Abs"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is an immutable symbolic expression.
type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(name string, value Expr) Expr
	Equal(other Expr) bool
	Head() string
	Operands() []Expr
	approx(env map[string]float64) (float64, bool)
	toJSON() map[string]interface{}
}

// ============================================================
// Num — exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

func F(p, q int64) *Num {
	if q == 0 {
		panic("expr: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat converts f to an exact rational after rounding it to twelve
// significant digits, so numeric roots print as short decimals.
func NFloat(f float64) *Num {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic("expr: non-finite float")
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', 12, 64))
	if !ok {
		r = new(big.Rat).SetFloat64(f)
	}
	return &Num{val: r}
}

// NRat copies r into a number.
func NRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) Head() string          { return HeadNumber }
func (n *Num) Operands() []Expr      { return nil }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }

func (n *Num) approx(map[string]float64) (float64, bool) { return n.Float64(), true }

// Int64 reports the value as an int64 when it is an integer that fits.
func (n *Num) Int64() (int64, bool) {
	if !n.val.IsInt() || !n.val.Num().IsInt64() {
		return 0, false
	}
	return n.val.Num().Int64(), true
}

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	if n.val.Denom().Cmp(big.NewInt(1_000_000)) <= 0 {
		return n.val.RatString()
	}
	s := strings.TrimRight(n.val.FloatString(12), "0")
	return strings.TrimSuffix(s, ".")
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() || n.val.Denom().Cmp(big.NewInt(1_000_000)) > 0 {
		return n.String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.String()}
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("expr: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}
func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }
func numAbs(a *Num) *Num {
	if a.IsNegative() {
		return numNeg(a)
	}
	return a
}

// ============================================================
// Sym — symbolic variable or pattern wildcard
// ============================================================

type Sym struct{ name string }

// S returns the symbol called name. Names starting with an underscore are
// wildcards when the symbol is used inside a pattern.
func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Simplify() Expr        { return s }
func (s *Sym) String() string        { return s.name }
func (s *Sym) LaTeX() string         { return s.name }
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) Head() string          { return HeadSymbol }
func (s *Sym) Operands() []Expr      { return nil }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) IsWildcard() bool      { return strings.HasPrefix(s.name, "_") }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Sub(name string, value Expr) Expr {
	if s.name == name {
		return value
	}
	return s
}
func (s *Sym) approx(env map[string]float64) (float64, bool) {
	v, ok := env[s.name]
	return v, ok
}

// ============================================================
// Const — named mathematical constant
// ============================================================

type Const struct {
	name  string
	latex string
	value float64
}

// Pi is the circle constant.
var Pi = &Const{name: "pi", latex: `\pi`, value: math.Pi}

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) LaTeX() string         { return c.latex }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) Head() string          { return HeadConstant }
func (c *Const) Operands() []Expr      { return nil }
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}
func (c *Const) approx(map[string]float64) (float64, bool) { return c.value, true }

// ============================================================
// Queries
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

// Float approximates a closed expression. ok is false when e still
// contains symbols. The value is NaN or infinite when e is imaginary or
// undefined over the reals.
func Float(e Expr) (float64, bool) { return e.approx(nil) }

// FloatAt approximates e with the symbol name bound to v.
func FloatAt(e Expr, name string, v float64) (float64, bool) {
	return e.approx(map[string]float64{name: v})
}

// IsZero reports whether e is exactly the number zero.
func IsZero(e Expr) bool { n, ok := e.(*Num); return ok && n.IsZero() }

// IsOne reports whether e is exactly the number one.
func IsOne(e Expr) bool { n, ok := e.(*Num); return ok && n.IsOne() }

// IsNumber reports whether e is a closed expression with a finite real value.
func IsNumber(e Expr) bool {
	v, ok := Float(e)
	return ok && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsImaginary reports whether e is closed but has no finite real value,
// such as the square root of a negative number or ln(0).
func IsImaginary(e Expr) bool {
	v, ok := Float(e)
	return ok && (math.IsNaN(v) || math.IsInf(v, 0))
}

// IsNegative reports whether e is closed and evaluates below zero.
func IsNegative(e Expr) bool {
	v, ok := Float(e)
	return ok && v < 0
}

// Has reports whether the symbol name occurs anywhere in e.
func Has(e Expr, name string) bool {
	if s, ok := e.(*Sym); ok {
		return s.name == name
	}
	for _, op := range e.Operands() {
		if Has(op, name) {
			return true
		}
	}
	return false
}

// FreeSymbols returns the names of all symbols in e.
func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	if s, ok := e.(*Sym); ok {
		out[s.name] = struct{}{}
		return
	}
	for _, op := range e.Operands() {
		collectSymbols(op, out)
	}
}

// Sub replaces the symbol name by value and simplifies.
func Sub(e Expr, name string, value Expr) Expr {
	return e.Sub(name, value).Simplify()
}

// Neg returns -e.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

// Subtract returns a - b.
func Subtract(a, b Expr) Expr { return AddOf(a, Neg(b)) }

// Divide returns a / b.
func Divide(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

// ToJSON returns a JSON-ready tree for e.
func ToJSON(e Expr) map[string]interface{} { return e.toJSON() }
