package strategy

import (
	"github.com/njchilds90/solvee/equation"
	"github.com/njchilds90/solvee/expr"
	"github.com/njchilds90/solvee/operation"
)

// Trigonometrical isolates a sine or cosine and inverts it.
var Trigonometrical = &Strategy{
	Name:  "trigonometrical",
	Title: "Trigonometric equations",
	Help:  "Equations with a single sine or cosine of a linear argument",
	step:  trigonometricStep,
}

func trigonometricStep(r *runner, n equation.Node) ([]equation.ID, error) {
	v := n.Variable

	if terminal(n) {
		r.shape(n, "solved")
		_, err := r.do(n.ID, operation.Periodize, period(r.isolated(n)))
		return nil, err
	}

	switch n.Left.Head() {
	case expr.HeadAdd:
		var free []expr.Expr
		for _, t := range n.Left.Operands() {
			if !expr.Has(t, v) {
				free = append(free, t)
			}
		}
		if len(free) == 0 {
			break
		}
		r.shape(n, "sum")
		return r.do(n.ID, operation.Subtract, expr.AddOf(free...))

	case expr.HeadMultiply:
		var free, inverted []expr.Expr
		reciprocals := true
		for _, f := range n.Left.Operands() {
			if expr.Has(f, v) {
				continue
			}
			free = append(free, f)
			inv, ok := reciprocal(f)
			reciprocals = reciprocals && ok
			inverted = append(inverted, inv)
		}
		if len(free) == 0 {
			break
		}
		r.shape(n, "product")
		if reciprocals {
			return r.do(n.ID, operation.Multiply, expr.MulOf(inverted...))
		}
		return r.do(n.ID, operation.Divide, expr.MulOf(free...))

	case expr.HeadSin, expr.HeadCos:
		kind := operation.Arcsin
		if n.Left.Head() == expr.HeadCos {
			kind = operation.Arccos
		}
		inner := n.Left.Operands()[0]
		if sym, ok := inner.(*expr.Sym); ok && sym.Name() == v {
			r.shape(n, "isolated")
			return r.do(n.ID, kind, nil)
		}
		r.shape(n, "compound argument")
		p := period(n)
		if err := r.hint(r.tree.Top(n.ID), "p = "+p.String()); err != nil {
			return nil, err
		}
		subst, err := r.do(n.ID, operation.Substitute, inner)
		if err != nil || len(subst) == 0 {
			return nil, err
		}
		roots, err := r.do(subst[0], kind, nil)
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

// isolated returns the nearest ancestor of n, n included, whose left side is
// a sine or cosine of the variable. It falls back to n.
func (r *runner) isolated(n equation.Node) equation.Node {
	for _, id := range r.tree.Lineage(n.ID) {
		a, ok := r.tree.Node(id)
		if !ok {
			continue
		}
		h := a.Left.Head()
		if (h == expr.HeadSin || h == expr.HeadCos) && expr.Has(a.Left, n.Variable) {
			return a
		}
	}
	return n
}

// period returns 2π/|b| where b is the coefficient of the variable in the
// expanded argument of the sine or cosine on the left of n, or 2π when
// there is none.
func period(n equation.Node) expr.Expr {
	full := expr.MulOf(expr.N(2), expr.Pi)
	h := n.Left.Head()
	if h != expr.HeadSin && h != expr.HeadCos {
		return full
	}
	arg := expr.Expand(n.Left.Operands()[0])
	if arg.Head() == expr.HeadAdd {
		for _, t := range arg.Operands() {
			if expr.Has(t, n.Variable) {
				arg = t
				break
			}
		}
	}
	if arg.Head() != expr.HeadMultiply {
		return full
	}
	var coeff []expr.Expr
	for _, f := range arg.Operands() {
		if !expr.Has(f, n.Variable) {
			coeff = append(coeff, f)
		}
	}
	if len(coeff) == 0 {
		return full
	}
	return expr.Divide(full, expr.AbsOf(expr.MulOf(coeff...)))
}

// reciprocal returns 1/f when f is itself the reciprocal of a term.
func reciprocal(f expr.Expr) (expr.Expr, bool) {
	switch f := f.(type) {
	case *expr.Num:
		r := f.Rat()
		if !r.IsInt() && r.Num().IsInt64() && (r.Num().Int64() == 1 || r.Num().Int64() == -1) {
			return expr.Divide(expr.N(1), f), true
		}
	case *expr.Pow:
		if n, ok := f.ExpExpr().(*expr.Num); ok && n.IsNegOne() {
			return f.Base(), true
		}
	}
	return f, false
}
