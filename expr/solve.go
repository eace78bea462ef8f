package expr

import (
	"math"
	"sort"
)

// ============================================================
// Expansion
// ============================================================

// Expand multiplies out products of sums and small integer powers of sums.
func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			a, ok := f.(*Add)
			if !ok {
				continue
			}
			rest := make([]Expr, 0, len(expanded)-1)
			rest = append(rest, expanded[:i]...)
			rest = append(rest, expanded[i+1:]...)
			terms := make([]Expr, len(a.terms))
			for k, t := range a.terms {
				terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
			}
			return expandExpr(AddOf(terms...))
		}
		return MulOf(expanded...)
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = expandExpr(t)
		}
		return AddOf(terms...)
	case *Pow:
		if n, ok := v.exp.(*Num); ok {
			if k, ok := n.Int64(); ok && k >= 0 && k <= 10 {
				base := expandExpr(v.base)
				if _, isSum := base.(*Add); isSum {
					result := Expr(N(1))
					for i := int64(0); i < k; i++ {
						result = distribute(result, base)
					}
					return result
				}
				return PowOf(base, v.exp)
			}
		}
		return PowOf(expandExpr(v.base), expandExpr(v.exp))
	case *Func:
		return (&Func{name: v.name, arg: expandExpr(v.arg)}).Simplify()
	}
	return e
}

// distribute multiplies two expanded expressions term by term. Going
// through MulOf on equal sums would fold them back into a power.
func distribute(a, b Expr) Expr {
	var terms []Expr
	for _, ta := range operandsAs(a, HeadAdd) {
		for _, tb := range operandsAs(b, HeadAdd) {
			terms = append(terms, expandExpr(MulOf(ta, tb)))
		}
	}
	return AddOf(terms...)
}

// ============================================================
// Polynomial utilities
// ============================================================

// Degree returns the polynomial degree of e in the symbol name.
func Degree(e Expr, name string) int {
	switch v := e.Simplify().(type) {
	case *Sym:
		if v.name == name {
			return 1
		}
	case *Pow:
		if sym, ok := v.base.(*Sym); ok && sym.name == name {
			if n, ok := v.exp.(*Num); ok && n.IsInteger() {
				k, _ := n.Int64()
				return int(k)
			}
		}
	case *Add:
		best := 0
		for _, t := range v.terms {
			if d := Degree(t, name); d > best {
				best = d
			}
		}
		return best
	case *Mul:
		total := 0
		for _, f := range v.factors {
			total += Degree(f, name)
		}
		return total
	}
	return 0
}

// MaxPower returns the largest numeric exponent of any power inside e, or
// 0 when e contains no power.
func MaxPower(e Expr) float64 {
	best := 0.0
	if p, ok := e.(*Pow); ok {
		if n, ok := p.exp.(*Num); ok {
			best = n.Float64()
		}
	}
	for _, op := range e.Operands() {
		best = math.Max(best, MaxPower(op))
	}
	return best
}

// PolyCoeffs returns the coefficients of e by degree in the symbol name
// after expansion. ok is false when e is not a polynomial in name.
func PolyCoeffs(e Expr, name string) (map[int]Expr, bool) {
	out := map[int]Expr{}
	terms := operandsAs(Expand(e), HeadAdd)
	for _, t := range terms {
		deg := 0
		var coeff []Expr
		for _, f := range operandsAs(t, HeadMultiply) {
			if d := Degree(f, name); d > 0 {
				deg += d
				continue
			}
			if Has(f, name) {
				return nil, false
			}
			coeff = append(coeff, f)
		}
		c := combine(HeadMultiply, coeff)
		if prev, ok := out[deg]; ok {
			c = AddOf(prev, c)
		}
		out[deg] = c
	}
	return out, true
}

// ============================================================
// Real roots
// ============================================================

const (
	solveRange  = 100.0
	solveStarts = 200
	solveTol    = 1e-10
	solveIter   = 100
	solveStep   = 1e-4
)

// Solve returns real roots of e = 0 in the symbol name, sorted by value.
// Polynomials up to degree two with numeric coefficients are solved
// exactly. Anything else is probed by Newton iteration from evenly spaced
// starting points, so the result may miss roots outside [-100, 100].
func Solve(e Expr, name string) []Expr {
	if coeffs, ok := PolyCoeffs(e, name); ok {
		if roots, ok := solveLowDegree(coeffs); ok {
			return roots
		}
	}
	return solveNewton(e, name)
}

func solveLowDegree(coeffs map[int]Expr) ([]Expr, bool) {
	nums := map[int]*Num{}
	maxDeg := 0
	for d, c := range coeffs {
		n, ok := c.(*Num)
		if !ok || d < 0 || d > 2 {
			return nil, false
		}
		if !n.IsZero() {
			nums[d] = n
			if d > maxDeg {
				maxDeg = d
			}
		}
	}
	get := func(d int) *Num {
		if n, ok := nums[d]; ok {
			return n
		}
		return N(0)
	}
	switch maxDeg {
	case 0:
		return nil, true
	case 1:
		return []Expr{numNeg(numDiv(get(0), get(1)))}, true
	}
	a, b, c := get(2), get(1), get(0)
	disc := numAdd(numMul(b, b), numMul(N(-4), numMul(a, c)))
	if disc.IsNegative() {
		return nil, true
	}
	twoA := numMul(N(2), a)
	if disc.IsZero() {
		return []Expr{numDiv(numNeg(b), twoA)}, true
	}
	root := SqrtOf(disc)
	r1 := Divide(Subtract(numNeg(b), root), twoA)
	r2 := Divide(AddOf(numNeg(b), root), twoA)
	roots := []Expr{r1, r2}
	sort.SliceStable(roots, func(i, j int) bool {
		vi, _ := Float(roots[i])
		vj, _ := Float(roots[j])
		return vi < vj
	})
	return roots, true
}

func solveNewton(e Expr, name string) []Expr {
	f := func(x float64) float64 {
		v, ok := FloatAt(e, name, x)
		if !ok {
			return math.NaN()
		}
		return v
	}
	const h = 1e-6
	df := func(x float64) float64 { return (f(x+h) - f(x-h)) / (2 * h) }

	var roots []float64
	for i := 0; i <= solveStarts; i++ {
		x := -solveRange + 2*solveRange*float64(i)/solveStarts
		for iter := 0; iter < solveIter; iter++ {
			fx := f(x)
			if math.IsNaN(fx) || math.IsInf(fx, 0) {
				break
			}
			dfx := df(x)
			if isRoot(f, x, fx, dfx) {
				dup := false
				for _, r := range roots {
					if math.Abs(r-x) < 1e-6 {
						dup = true
						break
					}
				}
				if !dup {
					roots = append(roots, x)
				}
				break
			}
			if math.IsNaN(dfx) || math.Abs(dfx) < 1e-15 {
				break
			}
			x -= fx / dfx
			if math.Abs(x) > solveRange*10 {
				break
			}
		}
	}
	sort.Float64s(roots)
	out := make([]Expr, len(roots))
	for i, r := range roots {
		out[i] = NFloat(r)
	}
	return out
}

// isRoot accepts x only when f vanishes there, not merely when f is small:
// f must be exactly zero, change sign around x, or the Newton step must
// have shrunk to nothing.
func isRoot(f func(float64) float64, x, fx, dfx float64) bool {
	if fx == 0 {
		return true
	}
	if math.Abs(fx) >= solveTol {
		return false
	}
	const d = 1e-7
	if lo, hi := f(x-d), f(x+d); lo*hi < 0 {
		return true
	}
	return dfx != 0 && !math.IsNaN(dfx) && math.Abs(fx/dfx) < solveStep
}

// HasRealRoot reports whether e = 0 has a real solution in name. A closed
// expression has one exactly when it is zero.
func HasRealRoot(e Expr, name string) bool {
	if !Has(e, name) {
		return IsZero(e.Simplify())
	}
	return len(Solve(e, name)) > 0
}
