package expr

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Add — sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Simplify flattens nested sums, folds numbers, collects like terms and
// orders the result by descending degree with the constant last.
func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	type group struct {
		coeff *Num
		rest  Expr
		key   string
	}
	constant := N(0)
	groups := []*group{}
	index := map[string]*group{}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			constant = numAdd(constant, n)
			continue
		}
		c, rest := splitCoefficient(t)
		key := rest.String()
		if g, ok := index[key]; ok {
			g.coeff = numAdd(g.coeff, c)
			continue
		}
		g := &group{coeff: c, rest: rest, key: key}
		index[key] = g
		groups = append(groups, g)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		ri, rj := rank(groups[i].rest), rank(groups[j].rest)
		if ri != rj {
			return ri > rj
		}
		return groups[i].key < groups[j].key
	})

	result := make([]Expr, 0, len(groups)+1)
	for _, g := range groups {
		if g.coeff.IsZero() {
			continue
		}
		if g.coeff.IsOne() {
			result = append(result, g.rest)
		} else {
			result = append(result, MulOf(g.coeff, g.rest))
		}
	}
	if !constant.IsZero() {
		result = append(result, constant)
	}
	switch len(result) {
	case 0:
		return N(0)
	case 1:
		return result[0]
	}
	return &Add{terms: result}
}

func (a *Add) String() string {
	var sb strings.Builder
	for i, t := range a.terms {
		if i == 0 {
			sb.WriteString(t.String())
			continue
		}
		if neg, ok := negated(t); ok {
			sb.WriteString(" - ")
			sb.WriteString(neg.String())
		} else {
			sb.WriteString(" + ")
			sb.WriteString(t.String())
		}
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		if i == 0 {
			sb.WriteString(t.LaTeX())
			continue
		}
		if neg, ok := negated(t); ok {
			sb.WriteString(" - ")
			sb.WriteString(neg.LaTeX())
		} else {
			sb.WriteString(" + ")
			sb.WriteString(t.LaTeX())
		}
	}
	return sb.String()
}

func (a *Add) Sub(name string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(name, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) approx(env map[string]float64) (float64, bool) {
	acc := 0.0
	for _, t := range a.terms {
		v, ok := t.approx(env)
		if !ok {
			return 0, false
		}
		acc += v
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	return ok && equalAll(a.terms, o.terms)
}

func (a *Add) Head() string     { return HeadAdd }
func (a *Add) Operands() []Expr { return append([]Expr(nil), a.terms...) }
func (a *Add) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "add", "terms": jsonAll(a.terms)}
}

// ============================================================
// Mul — product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Simplify flattens nested products, folds the numeric coefficient to the
// front, merges powers of equal bases and distributes a lone coefficient
// over a single sum.
func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	type power struct {
		base  Expr
		exps  []Expr
		first Expr
	}
	coeff := N(1)
	powers := []*power{}
	index := map[string]*power{}
	for _, f := range flat {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		base, exp := splitPower(f)
		key := base.String()
		if p, ok := index[key]; ok {
			p.exps = append(p.exps, exp)
			continue
		}
		p := &power{base: base, exps: []Expr{exp}, first: f}
		index[key] = p
		powers = append(powers, p)
	}

	others := make([]Expr, 0, len(powers))
	for _, p := range powers {
		if len(p.exps) == 1 {
			others = append(others, p.first)
			continue
		}
		merged := PowOf(p.base, AddOf(p.exps...))
		switch v := merged.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			for _, f := range v.factors {
				if n, ok := f.(*Num); ok {
					coeff = numMul(coeff, n)
				} else {
					others = append(others, f)
				}
			}
		default:
			others = append(others, merged)
		}
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}
	sort.SliceStable(others, func(i, j int) bool { return others[i].String() < others[j].String() })

	if len(others) == 1 {
		if sum, ok := others[0].(*Add); ok && !coeff.IsOne() {
			terms := make([]Expr, len(sum.terms))
			for i, t := range sum.terms {
				terms[i] = MulOf(coeff, t)
			}
			return AddOf(terms...)
		}
		if coeff.IsOne() {
			return others[0]
		}
	}
	if coeff.IsOne() {
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

func (m *Mul) String() string {
	parts := make([]string, 0, len(m.factors))
	prefix := ""
	for i, f := range m.factors {
		if n, ok := f.(*Num); ok && i == 0 {
			if n.IsNegOne() {
				prefix = "-"
				continue
			}
			parts = append(parts, n.String())
			continue
		}
		if _, isAdd := f.(*Add); isAdd {
			parts = append(parts, "("+f.String()+")")
		} else {
			parts = append(parts, f.String())
		}
	}
	return prefix + strings.Join(parts, "*")
}

func (m *Mul) LaTeX() string {
	parts := make([]string, 0, len(m.factors))
	prefix := ""
	for i, f := range m.factors {
		if n, ok := f.(*Num); ok && i == 0 {
			if n.IsNegOne() {
				prefix = "-"
				continue
			}
			parts = append(parts, n.LaTeX())
			continue
		}
		if _, isAdd := f.(*Add); isAdd {
			parts = append(parts, "\\left("+f.LaTeX()+"\\right)")
		} else {
			parts = append(parts, f.LaTeX())
		}
	}
	return prefix + strings.Join(parts, " \\cdot ")
}

func (m *Mul) Sub(name string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(name, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) approx(env map[string]float64) (float64, bool) {
	acc := 1.0
	for _, f := range m.factors {
		v, ok := f.approx(env)
		if !ok {
			return 0, false
		}
		acc *= v
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	return ok && equalAll(m.factors, o.factors)
}

func (m *Mul) Head() string     { return HeadMultiply }
func (m *Mul) Operands() []Expr { return append([]Expr(nil), m.factors...) }
func (m *Mul) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "mul", "factors": jsonAll(m.factors)}
}

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// SqrtOf returns the principal square root of arg.
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

// RootOf returns the n-th root of arg; odd roots of negatives stay real.
func RootOf(arg Expr, n Expr) Expr { return PowOf(arg, PowOf(n, N(-1))) }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}
	if bn, ok := base.(*Num); ok {
		// 0^0 is indeterminate and 0^negative is a division by zero.
		if bn.IsZero() {
			if expIsNum && en.IsPositive() {
				return N(0)
			}
			return &Pow{base: base, exp: exp}
		}
		if bn.IsOne() {
			return N(1)
		}
		if expIsNum {
			if r, ok := powRational(bn, en); ok {
				return r
			}
		}
		return &Pow{base: base, exp: exp}
	}
	if inner, ok := base.(*Pow); ok {
		return PowOf(inner.base, MulOf(inner.exp, exp))
	}
	if m, ok := base.(*Mul); ok && expIsNum && en.IsInteger() {
		factors := make([]Expr, len(m.factors))
		for i, f := range m.factors {
			factors[i] = PowOf(f, exp)
		}
		return MulOf(factors...)
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) String() string {
	if n, ok := p.exp.(*Num); ok && n.val.Cmp(big.NewRat(1, 2)) == 0 {
		return "sqrt(" + p.base.String() + ")"
	}
	baseStr := p.base.String()
	if needsParens(p.base) {
		baseStr = "(" + baseStr + ")"
	}
	expStr := p.exp.String()
	if !simpleExponent(p.exp) {
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	if n, ok := p.exp.(*Num); ok && !n.IsInteger() && n.val.Num().Cmp(big.NewInt(1)) == 0 {
		if n.val.Denom().Cmp(big.NewInt(2)) == 0 {
			return "\\sqrt{" + p.base.LaTeX() + "}"
		}
		return "\\sqrt[" + n.val.Denom().String() + "]{" + p.base.LaTeX() + "}"
	}
	baseStr := p.base.LaTeX()
	if needsParens(p.base) {
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(name string, value Expr) Expr {
	return PowOf(p.base.Sub(name, value), p.exp.Sub(name, value))
}

func (p *Pow) approx(env map[string]float64) (float64, bool) {
	b, ok1 := p.base.approx(env)
	e, ok2 := p.exp.approx(env)
	if !ok1 || !ok2 {
		return 0, false
	}
	if b < 0 {
		if en, ok := p.exp.(*Num); ok && !en.IsInteger() && en.val.Denom().Bit(0) == 1 {
			r := math.Pow(-b, e)
			if en.val.Num().Bit(0) == 1 {
				return -r, true
			}
			return r, true
		}
	}
	return math.Pow(b, e), true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) Head() string     { return HeadPower }
func (p *Pow) Operands() []Expr { return []Expr{p.base, p.exp} }
func (p *Pow) Base() Expr       { return p.base }
func (p *Pow) ExpExpr() Expr    { return p.exp }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}

// powRational evaluates b^e exactly when the result is rational, extracts
// perfect powers from integer radicands and keeps odd roots of negatives
// real. It reports false when the power must stay symbolic.
func powRational(b, e *Num) (Expr, bool) {
	if e.IsInteger() {
		k, ok := e.Int64()
		if !ok || k > 64 || k < -64 {
			return nil, false
		}
		return ratPow(b, k), true
	}
	p, okP := (&Num{val: new(big.Rat).SetInt(e.val.Num())}).Int64()
	q, okQ := (&Num{val: new(big.Rat).SetInt(e.val.Denom())}).Int64()
	if !okP || !okQ || q > 64 || p > 64 || p < -64 {
		return nil, false
	}
	negative := b.IsNegative()
	if negative && q%2 == 0 {
		return nil, false
	}
	abs := numAbs(b)
	rn, okN := intRoot(abs.val.Num(), q)
	rd, okD := intRoot(abs.val.Denom(), q)
	if okN && okD {
		r := ratPow(&Num{val: new(big.Rat).SetFrac(rn, rd)}, p)
		if negative && p%2 != 0 {
			r = numNeg(r)
		}
		return r, true
	}
	if p == 1 && okD {
		out, in := extractRoot(abs.val.Num(), q)
		if out.Cmp(big.NewInt(1)) > 0 {
			res := MulOf(&Num{val: new(big.Rat).SetFrac(out, rd)}, PowOf(&Num{val: new(big.Rat).SetInt(in)}, e))
			if negative {
				return MulOf(N(-1), res), true
			}
			return res, true
		}
	}
	if negative {
		res := PowOf(abs, e)
		if p%2 != 0 {
			return MulOf(N(-1), res), true
		}
		return res, true
	}
	return nil, false
}

func ratPow(b *Num, k int64) *Num {
	neg := k < 0
	if neg {
		k = -k
	}
	exp := big.NewInt(k)
	num := new(big.Int).Exp(b.val.Num(), exp, nil)
	den := new(big.Int).Exp(b.val.Denom(), exp, nil)
	r := &Num{val: new(big.Rat).SetFrac(num, den)}
	if neg {
		return numRecip(r)
	}
	return r
}

// intRoot returns the exact q-th root of a non-negative n.
func intRoot(n *big.Int, q int64) (*big.Int, bool) {
	if n.Sign() == 0 {
		return new(big.Int), true
	}
	if q == 2 {
		r := new(big.Int).Sqrt(n)
		return r, new(big.Int).Mul(r, r).Cmp(n) == 0
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	guess := int64(math.Round(math.Pow(f, 1/float64(q))))
	for c := guess - 1; c <= guess+1; c++ {
		if c < 0 {
			continue
		}
		r := big.NewInt(c)
		if new(big.Int).Exp(r, big.NewInt(q), nil).Cmp(n) == 0 {
			return r, true
		}
	}
	return nil, false
}

// extractRoot splits n into out^q * in with in free of q-th powers.
func extractRoot(n *big.Int, q int64) (out, in *big.Int) {
	out = big.NewInt(1)
	if !n.IsInt64() || n.Int64() > 1_000_000_000_000 {
		return out, new(big.Int).Set(n)
	}
	rest := n.Int64()
	acc := int64(1)
	for k := int64(2); ; k++ {
		kq := int64(1)
		overflow := false
		for i := int64(0); i < q; i++ {
			kq *= k
			if kq > rest {
				overflow = true
				break
			}
		}
		if overflow {
			break
		}
		for rest%kq == 0 {
			acc *= k
			rest /= kq
		}
	}
	return out.SetInt64(acc), big.NewInt(rest)
}

// ============================================================
// Helpers
// ============================================================

// splitCoefficient separates the leading numeric factor of a term.
func splitCoefficient(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: append([]Expr(nil), rest...)}
		}
	}
	return N(1), e
}

func splitPower(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}

// negated returns -e when e carries a negative numeric sign.
func negated(e Expr) (Expr, bool) {
	switch v := e.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			rest := append([]Expr{numNeg(c)}, v.factors[1:]...)
			if numNeg(c).IsOne() {
				rest = rest[1:]
			}
			if len(rest) == 1 {
				return rest[0], true
			}
			return &Mul{factors: rest}, true
		}
	}
	return nil, false
}

// rank orders sum terms: higher polynomial degree first.
func rank(e Expr) float64 {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if n, ok := v.exp.(*Num); ok {
			return n.Float64() * rank(v.base)
		}
		return rank(v.base)
	case *Mul:
		sum := 0.0
		for _, f := range v.factors {
			sum += rank(f)
		}
		return sum
	case *Add:
		best := 0.0
		for _, t := range v.terms {
			best = math.Max(best, rank(t))
		}
		return best
	case *Func:
		if len(FreeSymbols(v.arg)) > 0 {
			return 0.5
		}
	}
	return 0
}

func needsParens(e Expr) bool {
	switch v := e.(type) {
	case *Add, *Mul, *Pow:
		return true
	case *Num:
		return v.IsNegative() || !v.IsInteger()
	}
	return false
}

func simpleExponent(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.IsInteger() && !v.IsNegative()
	case *Sym, *Const:
		return true
	}
	return false
}

func equalAll(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func jsonAll(es []Expr) []map[string]interface{} {
	out := make([]map[string]interface{}, len(es))
	for i, e := range es {
		out[i] = e.toJSON()
	}
	return out
}
