package operation

import (
	"fmt"
	"math"

	"github.com/njchilds90/solvee/equation"
	"github.com/njchilds90/solvee/expr"
)

// SubstituteSymbol is the variable introduced by Substitute.
const SubstituteSymbol = "u"

// PeriodSymbol is the integer parameter introduced by Periodize.
const PeriodSymbol = "k"

// Result is what a transformation produces for one node.
type Result struct {
	// Argument is recorded on the transformed node. Most operations record
	// the argument they were called with; NullForm and Resubstitute record
	// the term they computed.
	Argument expr.Expr
	Branches []equation.Branch
}

// Apply runs kind on node id of tree, records it on the node and returns
// the IDs of the new children. Precondition violations return an error and
// leave the tree untouched. Domain violations produce a single error node.
func Apply(tree *equation.Tree, id equation.ID, kind Kind, arg expr.Expr) ([]equation.ID, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, int(kind))
	}
	if kind.ArgumentRequired() && arg == nil {
		return nil, fmt.Errorf("%w: %s", ErrArgumentRequired, kind)
	}
	if !kind.ArgumentRequired() && arg != nil {
		return nil, fmt.Errorf("%w: %s", ErrArgumentForbidden, kind)
	}
	n, ok := tree.Node(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEquation, id)
	}
	if n.IsError() {
		return nil, fmt.Errorf("%w: %d", ErrErrorLeaf, id)
	}
	res := Transform(tree, n, kind, arg)
	return tree.Attach(id, kind, res.Argument, res.Branches)
}

// Transform computes the result of kind on n without touching the tree.
// The tree is consulted for ancestors and the root variable.
func Transform(tree *equation.Tree, n equation.Node, kind Kind, arg expr.Expr) Result {
	v := n.Variable
	l, r := n.Left, n.Right
	same := func(left, right expr.Expr) Result {
		return Result{Argument: arg, Branches: []equation.Branch{{Variable: v, Left: left, Right: right}}}
	}

	switch kind {
	case Add:
		return same(expr.AddOf(l, arg), expr.AddOf(r, arg))

	case Subtract:
		return same(expr.Subtract(l, arg), expr.Subtract(r, arg))

	case Multiply:
		if expr.IsZero(arg) {
			return failed(n, arg, "Multiplying both sides by 0 is not allowed!")
		}
		if expr.HasRealRoot(arg, v) {
			return failed(n, arg, "Multiplying by a term that can become 0 is not allowed!")
		}
		return same(expr.MulOf(l, arg), expr.MulOf(r, arg))

	case Divide:
		if expr.IsZero(arg) {
			return failed(n, arg, "Division by 0 is not defined!")
		}
		if expr.HasRealRoot(arg, v) {
			return failed(n, arg, "Dividing by a term that can become 0 is not allowed!")
		}
		return same(expr.Divide(l, arg), expr.Divide(r, arg))

	case Sqrt:
		left, right := expr.SqrtOf(l), expr.SqrtOf(r)
		if expr.IsImaginary(left) || expr.IsImaginary(right) {
			return failed(n, arg, "The square root of a negative number is not defined over the reals!")
		}
		res := same(left, right)
		if !expr.IsZero(r) {
			res.Branches = append(res.Branches, equation.Branch{Variable: v, Left: left, Right: expr.Neg(right)})
		}
		return res

	case Root:
		left, right := expr.RootOf(l, arg), expr.RootOf(r, arg)
		if expr.IsImaginary(left) || expr.IsImaginary(right) {
			return failed(n, arg, "An even root of a negative number is not defined over the reals!")
		}
		res := same(left, right)
		if isEven(arg) && !expr.IsZero(r) {
			res.Branches = append(res.Branches, equation.Branch{Variable: v, Left: left, Right: expr.Neg(right)})
		}
		return res

	case Square:
		return same(expr.PowOf(l, expr.N(2)), expr.PowOf(r, expr.N(2)))

	case Ln:
		left, right := expr.LnOf(l), expr.LnOf(r)
		if expr.IsImaginary(left) || expr.IsImaginary(right) {
			return failed(n, arg, "The logarithm is only defined for positive numbers!")
		}
		return same(left, right)

	case Exp:
		return same(expr.ExpOf(l), expr.ExpOf(r))

	case Arcsin:
		return inverseTrig(n, expr.HeadSin)

	case Arccos:
		return inverseTrig(n, expr.HeadCos)

	case Periodize:
		if l.Head() != expr.HeadSymbol {
			return failed(n, arg, "Solve for "+v+" first!")
		}
		if root, ok := tree.Node(tree.Top(n.ID)); ok && root.Variable != v {
			return failed(n, arg, "Resubstitute first!")
		}
		return same(l, expr.AddOf(r, expr.MulOf(expr.S(PeriodSymbol), arg)))

	case Expand:
		return same(expr.Expand(l), r)

	case Factorize:
		return same(expr.MulOf(arg, expr.Expand(expr.Divide(l, arg))), r)

	case ZeroProduct:
		return zeroProduct(n)

	case QuadraticFormula:
		return quadraticFormula(n)

	case Substitute:
		u := expr.S(SubstituteSymbol)
		rules := []expr.Rule{
			{From: expr.PowOf(arg, expr.N(2)), To: expr.PowOf(u, expr.N(2))},
			{From: arg, To: u},
		}
		return Result{Argument: arg, Branches: []equation.Branch{{
			Variable: SubstituteSymbol,
			Left:     expr.Replace(l, rules...),
			Right:    expr.Replace(r, rules...),
		}}}

	case Resubstitute:
		for _, id := range tree.Lineage(n.ID) {
			anc, _ := tree.Node(id)
			if anc.Operation == Substitute && anc.Argument != nil {
				back := anc.Argument
				return Result{Argument: back, Branches: []equation.Branch{{
					Variable: anc.Variable,
					Left:     expr.Sub(l, SubstituteSymbol, back),
					Right:    expr.Sub(r, SubstituteSymbol, back),
				}}}
			}
		}
		return failed(n, nil, "No substitution precedes this step!")

	case NullForm:
		moved := expr.Neg(r)
		return Result{Argument: moved, Branches: []equation.Branch{{
			Variable: v,
			Left:     expr.Subtract(l, r),
			Right:    expr.N(0),
		}}}

	case Simplify:
		return same(l.Simplify(), r.Simplify())
	}
	panic(fmt.Sprintf("operation: invalid kind %d", int(kind)))
}

// failed yields the single error node that marks a rejected operation.
func failed(n equation.Node, arg expr.Expr, msg string) Result {
	return Result{Argument: arg, Branches: []equation.Branch{{
		Variable: n.Variable,
		Left:     n.Left,
		Right:    n.Right,
		Error:    msg,
	}}}
}

func isEven(e expr.Expr) bool {
	num, ok := e.(*expr.Num)
	if !ok {
		return false
	}
	k, ok := num.Int64()
	return ok && k%2 == 0
}

const (
	hintSubstituteSin = "Substitute the argument of sin with u first. The second solution per period is then easier to find."
	hintSubstituteCos = "Substitute the argument of cos with u first. The second solution per period is then easier to find."
	hintSymmetrySin   = "There are two solutions per period. The calculator gives the first one; the second follows from the symmetry of the standard sine curve."
	hintSymmetryCos   = "There are two solutions per period. The calculator gives the first one; the second follows from the symmetry of the standard cosine curve."
)

func inverseTrig(n equation.Node, head string) Result {
	name, inv, hintSub, hintSym := "sine", expr.ArcsinOf, hintSubstituteSin, hintSymmetrySin
	if head == expr.HeadCos {
		name, inv, hintSub, hintSym = "cosine", expr.ArccosOf, hintSubstituteCos, hintSymmetryCos
	}
	if n.Left.Head() != head {
		return failed(n, nil, "The "+name+" function must be outermost on the left side!")
	}
	if val, ok := expr.Float(n.Right); ok && math.Abs(val) > 1 {
		return failed(n, nil, "The "+name+" only takes values between -1 and 1!")
	}
	inner := n.Left.Operands()[0]
	sol1 := inv(n.Right)
	if expr.IsImaginary(sol1) {
		return failed(n, nil, "The "+name+" only takes values between -1 and 1!")
	}
	if inner.Head() != expr.HeadSymbol {
		return Result{Branches: []equation.Branch{{Variable: n.Variable, Left: inner, Right: sol1, Hint: hintSub}}}
	}

	var sol2 expr.Expr
	if head == expr.HeadCos {
		sol2 = expr.Neg(sol1)
	} else if expr.IsNegative(sol1) {
		sol2 = expr.Subtract(expr.Neg(expr.Pi), sol1)
	} else {
		sol2 = expr.Subtract(expr.Pi, sol1)
	}
	return Result{Branches: []equation.Branch{
		{Variable: n.Variable, Left: inner, Right: sol1},
		{Variable: n.Variable, Left: inner, Right: sol2, Hint: hintSym},
	}}
}

func zeroProduct(n equation.Node) Result {
	var product expr.Expr
	switch {
	case !expr.IsZero(n.Left) && !expr.IsZero(n.Right):
		return failed(n, nil, "One side must be zero!")
	case n.Left.Head() == expr.HeadMultiply:
		product = n.Left
	case n.Right.Head() == expr.HeadMultiply:
		product = n.Right
	default:
		return failed(n, nil, "One side must be a product!")
	}
	var branches []equation.Branch
	for _, factor := range product.Operands() {
		if !expr.Has(factor, n.Variable) {
			continue
		}
		if factor.Head() == expr.HeadPower {
			factor = factor.Operands()[0]
		}
		branches = append(branches, equation.Branch{Variable: n.Variable, Left: factor, Right: expr.N(0)})
	}
	if len(branches) == 0 {
		return failed(n, nil, "No factor contains "+n.Variable+"!")
	}
	return Result{Branches: branches}
}

const (
	hintFactorOut = "Solvable with the quadratic formula, but factoring out x and using the zero product rule is faster."
	hintTakeRoot  = "Solvable with the quadratic formula, but taking the root is faster."
)

// QuadraticPattern returns a·v² + b·v + c with wildcards _a, _b and _c.
func QuadraticPattern(v string) expr.Expr {
	x := expr.S(v)
	return expr.AddOf(
		expr.MulOf(expr.S("_a"), expr.PowOf(x, expr.N(2))),
		expr.MulOf(expr.S("_b"), x),
		expr.S("_c"),
	)
}

func quadraticFormula(n equation.Node) Result {
	v := n.Variable
	if expr.MaxPower(n.Left) > 2 {
		return failed(n, nil, "The quadratic formula only applies to polynomial equations of degree 2!")
	}
	b, ok := expr.MatchFree(n.Left, QuadraticPattern(v), v)
	if !ok {
		pure := expr.AddOf(expr.MulOf(expr.S("_a"), expr.PowOf(expr.S(v), expr.N(2))), expr.S("_c"))
		b, ok = expr.MatchFree(n.Left, pure, v)
	}
	if !ok || !expr.IsZero(n.Right) {
		return failed(n, nil, "The quadratic formula only applies to equations of the form ax²+bx+c=0!")
	}
	a := b.Get("_a", expr.N(1))
	bb := b.Get("_b", expr.N(0))
	c := b.Get("_c", expr.N(0))

	hint := ""
	switch {
	case expr.IsZero(c):
		hint = hintFactorOut
	case expr.IsZero(bb):
		hint = hintTakeRoot
	}

	disc := expr.Subtract(expr.PowOf(bb, expr.N(2)), expr.MulOf(expr.N(4), a, c))
	if expr.IsNegative(disc) {
		return Result{Branches: []equation.Branch{{
			Variable: v,
			Left:     disc,
			Right:    expr.N(0),
			Error:    "D = " + disc.String() + " < 0",
		}}}
	}
	twoA := expr.MulOf(expr.N(2), a)
	minus := expr.Divide(expr.Subtract(expr.Neg(bb), expr.SqrtOf(disc)), twoA)
	x := expr.S(v)
	if expr.IsZero(disc) {
		return Result{Branches: []equation.Branch{{Variable: v, Left: x, Right: minus, Hint: hint}}}
	}
	plus := expr.Divide(expr.AddOf(expr.Neg(bb), expr.SqrtOf(disc)), twoA)
	return Result{Branches: []equation.Branch{
		{Variable: v, Left: x, Right: minus, Hint: hint},
		{Variable: v, Left: x, Right: plus, Hint: hint},
	}}
}
