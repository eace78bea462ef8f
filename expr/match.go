package expr

// ============================================================
// Pattern matching
// ============================================================

// Bindings maps wildcard names (including the leading underscore) to the
// subexpressions they matched.
type Bindings map[string]Expr

func (b Bindings) clone() Bindings {
	out := make(Bindings, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Get returns the binding for name, or fallback when the wildcard was not
// bound.
func (b Bindings) Get(name string, fallback Expr) Expr {
	if v, ok := b[name]; ok {
		return v
	}
	return fallback
}

type matcher struct {
	// exclude, when set, is a symbol no wildcard may capture.
	exclude string
}

// Match matches e against pattern. Symbols whose names start with an
// underscore are wildcards. Sums and products match commutatively: a
// non-sum (non-product) expression is treated as a one-operand sum
// (product), a trailing wildcard absorbs all remaining operands and a
// wildcard left without an operand binds to the identity (0 or 1).
func Match(e, pattern Expr) (Bindings, bool) {
	return matcher{}.match(e, pattern, Bindings{})
}

// MatchFree is Match with the extra constraint that no wildcard captures a
// subexpression containing the symbol variable.
func MatchFree(e, pattern Expr, variable string) (Bindings, bool) {
	return matcher{exclude: variable}.match(e, pattern, Bindings{})
}

// MatchEquation matches left = right against the pattern pl = pr with
// shared bindings.
func MatchEquation(left, right, pl, pr Expr) (Bindings, bool) {
	m := matcher{}
	b, ok := m.match(left, pl, Bindings{})
	if !ok {
		return nil, false
	}
	return m.match(right, pr, b)
}

func (m matcher) bind(name string, value Expr, b Bindings) (Bindings, bool) {
	if bound, ok := b[name]; ok {
		if bound.Equal(value) {
			return b, true
		}
		return nil, false
	}
	if m.exclude != "" && Has(value, m.exclude) {
		return nil, false
	}
	nb := b.clone()
	nb[name] = value
	return nb, true
}

func (m matcher) match(e, p Expr, b Bindings) (Bindings, bool) {
	switch pv := p.(type) {
	case *Sym:
		if pv.IsWildcard() {
			return m.bind(pv.name, e, b)
		}
		return b, e.Equal(p)
	case *Num, *Const:
		return b, e.Equal(p)
	case *Add:
		return m.matchOperands(operandsAs(e, HeadAdd), orderPattern(pv.terms), HeadAdd, b)
	case *Mul:
		return m.matchOperands(operandsAs(e, HeadMultiply), orderPattern(pv.factors), HeadMultiply, b)
	case *Pow:
		ev, ok := e.(*Pow)
		if !ok {
			return nil, false
		}
		nb, ok := m.match(ev.base, pv.base, b)
		if !ok {
			return nil, false
		}
		return m.match(ev.exp, pv.exp, nb)
	case *Func:
		ev, ok := e.(*Func)
		if !ok || ev.name != pv.name {
			return nil, false
		}
		return m.match(ev.arg, pv.arg, b)
	}
	return nil, false
}

func (m matcher) matchOperands(ops, pats []Expr, head string, b Bindings) (Bindings, bool) {
	if len(pats) == 0 {
		return b, len(ops) == 0
	}
	p, rest := pats[0], pats[1:]
	w, isWild := p.(*Sym)
	isWild = isWild && w.IsWildcard()

	if isWild && len(rest) == 0 {
		if _, bound := b[w.name]; !bound {
			return m.bind(w.name, combine(head, ops), b)
		}
	}
	for i, op := range ops {
		nb, ok := m.match(op, p, b)
		if !ok {
			continue
		}
		remaining := make([]Expr, 0, len(ops)-1)
		remaining = append(remaining, ops[:i]...)
		remaining = append(remaining, ops[i+1:]...)
		if r, ok := m.matchOperands(remaining, rest, head, nb); ok {
			return r, true
		}
	}
	if isWild {
		if nb, ok := m.bind(w.name, identity(head), b); ok {
			return m.matchOperands(ops, rest, head, nb)
		}
	}
	return nil, false
}

// orderPattern moves bare wildcards behind the constraining operands.
func orderPattern(pats []Expr) []Expr {
	out := make([]Expr, 0, len(pats))
	var wild []Expr
	for _, p := range pats {
		if s, ok := p.(*Sym); ok && s.IsWildcard() {
			wild = append(wild, p)
			continue
		}
		out = append(out, p)
	}
	return append(out, wild...)
}

func operandsAs(e Expr, head string) []Expr {
	if e.Head() == head {
		return e.Operands()
	}
	return []Expr{e}
}

func combine(head string, ops []Expr) Expr {
	switch len(ops) {
	case 0:
		return identity(head)
	case 1:
		return ops[0]
	}
	if head == HeadAdd {
		return AddOf(ops...)
	}
	return MulOf(ops...)
}

func identity(head string) Expr {
	if head == HeadAdd {
		return N(0)
	}
	return N(1)
}

// ============================================================
// Replacement
// ============================================================

// Rule rewrites subexpressions matching From into To with the wildcard
// bindings substituted.
type Rule struct {
	From Expr
	To   Expr
}

// Replace rewrites e top-down: the first rule matching a subexpression
// replaces it and the result is not revisited. The rewritten tree is
// simplified.
func Replace(e Expr, rules ...Rule) Expr {
	return replace(e, rules).Simplify()
}

func replace(e Expr, rules []Rule) Expr {
	for _, r := range rules {
		if b, ok := Match(e, r.From); ok {
			return Instantiate(r.To, b)
		}
	}
	ops := e.Operands()
	if len(ops) == 0 {
		return e
	}
	replaced := make([]Expr, len(ops))
	for i, op := range ops {
		replaced[i] = replace(op, rules)
	}
	return rebuild(e, replaced)
}

// Instantiate substitutes the bindings into a pattern.
func Instantiate(pattern Expr, b Bindings) Expr {
	if s, ok := pattern.(*Sym); ok {
		if v, bound := b[s.name]; bound {
			return v
		}
		return s
	}
	ops := pattern.Operands()
	if len(ops) == 0 {
		return pattern
	}
	out := make([]Expr, len(ops))
	for i, op := range ops {
		out[i] = Instantiate(op, b)
	}
	return rebuild(pattern, out)
}

// rebuild constructs an expression of the same kind as e over new operands.
func rebuild(e Expr, ops []Expr) Expr {
	switch v := e.(type) {
	case *Add:
		return AddOf(ops...)
	case *Mul:
		return MulOf(ops...)
	case *Pow:
		return PowOf(ops[0], ops[1])
	case *Func:
		return (&Func{name: v.name, arg: ops[0]}).Simplify()
	}
	return e
}
