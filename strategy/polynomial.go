package strategy

import (
	"github.com/njchilds90/solvee/equation"
	"github.com/njchilds90/solvee/expr"
	"github.com/njchilds90/solvee/operation"
)

// Polynomial solves polynomial equations in one variable.
var Polynomial = &Strategy{
	Name:  "polynomial",
	Title: "Polynomial equations",
	Help:  "Linear, pure power, quadratic and biquadratic equations, products and equations with a common power of the variable",
	step:  polynomialStep,
}

func polynomialStep(r *runner, n equation.Node) ([]equation.ID, error) {
	v := n.Variable
	x := expr.S(v)

	if terminal(n) {
		r.shape(n, "solved")
		return nil, nil
	}

	if !expr.IsZero(n.Right) {
		r.shape(n, "unnormalized")
		return r.do(n.ID, operation.Subtract, n.Right)
	}

	if n.Left.Head() == expr.HeadMultiply {
		r.shape(n, "product")
		return r.do(n.ID, operation.ZeroProduct, nil)
	}

	if b, ok := expr.MatchFree(n.Left, linearPattern(x), v); ok {
		r.shape(n, "linear")
		a, c := b.Get("_a", expr.N(1)), b.Get("_b", expr.N(0))
		_, err := r.chain(n.ID,
			link{kind: operation.Subtract, arg: c, skip: expr.IsZero(c)},
			link{kind: operation.Divide, arg: a, skip: expr.IsOne(a)},
		)
		return nil, err
	}

	if p, ok := commonPower(n.Left, v); ok && p >= 1 {
		r.shape(n, "common factor")
		return r.do(n.ID, operation.Factorize, expr.PowOf(x, expr.N(int64(p))))
	}

	if b, ok := expr.MatchFree(n.Left, powerPattern(x), v); ok {
		if exp, isInt := integerAtLeast(b["_n"], 2); isInt {
			r.shape(n, "power")
			a, c := b.Get("_a", expr.N(1)), b.Get("_b", expr.N(0))
			last := link{kind: operation.Sqrt}
			if exp != 2 {
				last = link{kind: operation.Root, arg: expr.N(exp)}
			}
			_, err := r.chain(n.ID,
				link{kind: operation.Subtract, arg: c, skip: expr.IsZero(c)},
				link{kind: operation.Divide, arg: a, skip: expr.IsOne(a)},
				last,
			)
			return nil, err
		}
	}

	if _, ok := expr.MatchFree(n.Left, operation.QuadraticPattern(v), v); ok {
		r.shape(n, "quadratic")
		_, err := r.do(n.ID, operation.QuadraticFormula, nil)
		return nil, err
	}

	for k := int64(2); k <= 4; k++ {
		b, ok := expr.MatchFree(n.Left, biquadraticPattern(x, k), v)
		if !ok || expr.IsZero(b.Get("_c", expr.N(0))) {
			continue
		}
		r.shape(n, "biquadratic")
		subst, err := r.do(n.ID, operation.Substitute, expr.PowOf(x, expr.N(k)))
		if err != nil || len(subst) == 0 {
			return nil, err
		}
		roots, err := r.do(subst[0], operation.QuadraticFormula, nil)
		if err != nil {
			return nil, err
		}
		var next []equation.ID
		for _, id := range roots {
			back, err := r.do(id, operation.Resubstitute, nil)
			if err != nil {
				return nil, err
			}
			next = append(next, back...)
		}
		return next, nil
	}

	r.shape(n, "unknown")
	return nil, nil
}

func linearPattern(x expr.Expr) expr.Expr {
	return expr.AddOf(expr.MulOf(expr.S("_a"), x), expr.S("_b"))
}

func powerPattern(x expr.Expr) expr.Expr {
	return expr.AddOf(expr.MulOf(expr.S("_a"), expr.PowOf(x, expr.S("_n"))), expr.S("_b"))
}

func biquadraticPattern(x expr.Expr, k int64) expr.Expr {
	return expr.AddOf(
		expr.MulOf(expr.S("_a"), expr.PowOf(x, expr.N(2*k))),
		expr.MulOf(expr.S("_b"), expr.PowOf(x, expr.N(k))),
		expr.S("_c"),
	)
}

func integerAtLeast(e expr.Expr, min int64) (int64, bool) {
	n, ok := e.(*expr.Num)
	if !ok {
		return 0, false
	}
	i, ok := n.Int64()
	return i, ok && i >= min
}

// commonPower reports the smallest power of v over the terms of a sum when
// every term is a variable-free coefficient times v or an integer power of
// v.
func commonPower(e expr.Expr, v string) (int64, bool) {
	if e.Head() != expr.HeadAdd {
		return 0, false
	}
	min := int64(-1)
	for _, term := range e.Operands() {
		p, ok := monomialPower(term, v)
		if !ok {
			return 0, false
		}
		if min < 0 || p < min {
			min = p
		}
	}
	return min, min >= 1
}

func monomialPower(term expr.Expr, v string) (int64, bool) {
	factors := []expr.Expr{term}
	if term.Head() == expr.HeadMultiply {
		factors = term.Operands()
	}
	power := int64(-1)
	for _, f := range factors {
		if !expr.Has(f, v) {
			continue
		}
		if power >= 0 {
			return 0, false
		}
		switch f := f.(type) {
		case *expr.Sym:
			power = 1
		case *expr.Pow:
			if sym, ok := f.Base().(*expr.Sym); !ok || sym.Name() != v {
				return 0, false
			}
			p, ok := integerAtLeast(f.ExpExpr(), 1)
			if !ok {
				return 0, false
			}
			power = p
		default:
			return 0, false
		}
	}
	return power, power >= 1
}
