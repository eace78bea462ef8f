package expr

import (
	"math"
)

// ============================================================
// Func — elementary function application
// ============================================================

type Func struct {
	name string
	arg  Expr
}

// E is Euler's number.
var E = &Const{name: "e", latex: "e", value: math.E}

func SinOf(arg Expr) Expr    { return (&Func{name: "sin", arg: arg}).Simplify() }
func CosOf(arg Expr) Expr    { return (&Func{name: "cos", arg: arg}).Simplify() }
func TanOf(arg Expr) Expr    { return (&Func{name: "tan", arg: arg}).Simplify() }
func ArcsinOf(arg Expr) Expr { return (&Func{name: "asin", arg: arg}).Simplify() }
func ArccosOf(arg Expr) Expr { return (&Func{name: "acos", arg: arg}).Simplify() }
func ArctanOf(arg Expr) Expr { return (&Func{name: "atan", arg: arg}).Simplify() }
func LnOf(arg Expr) Expr     { return (&Func{name: "ln", arg: arg}).Simplify() }
func ExpOf(arg Expr) Expr    { return (&Func{name: "exp", arg: arg}).Simplify() }
func AbsOf(arg Expr) Expr    { return (&Func{name: "abs", arg: arg}).Simplify() }

var funcHeads = map[string]string{
	"sin": HeadSin, "cos": HeadCos, "tan": HeadTan,
	"asin": HeadArcsin, "acos": HeadArccos, "atan": HeadArctan,
	"ln": HeadLn, "exp": HeadExp, "abs": HeadAbs,
}

var funcLaTeX = map[string]string{
	"sin": `\sin`, "cos": `\cos`, "tan": `\tan`,
	"asin": `\arcsin`, "acos": `\arccos`, "atan": `\arctan`,
	"ln": `\ln`,
}

// arcsinTable maps sin values of the standard angles to the angle.
var arcsinTable = []struct {
	value float64
	angle Expr
}{
	{0, N(0)},
	{0.5, &Mul{factors: []Expr{F(1, 6), Pi}}},
	{math.Sqrt2 / 2, &Mul{factors: []Expr{F(1, 4), Pi}}},
	{math.Sqrt(3) / 2, &Mul{factors: []Expr{F(1, 3), Pi}}},
	{1, &Mul{factors: []Expr{F(1, 2), Pi}}},
}

func exactArcsin(arg Expr) (Expr, bool) {
	v, ok := Float(arg)
	if !ok || math.IsNaN(v) {
		return nil, false
	}
	for _, entry := range arcsinTable {
		if math.Abs(v-entry.value) < 1e-12 {
			return entry.angle, true
		}
		if math.Abs(v+entry.value) < 1e-12 {
			return Neg(entry.angle), true
		}
	}
	return nil, false
}

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	switch f.name {
	case "sin", "tan":
		if IsZero(arg) {
			return N(0)
		}
	case "cos":
		if IsZero(arg) {
			return N(1)
		}
	case "asin":
		if r, ok := exactArcsin(arg); ok {
			return r
		}
	case "acos":
		if r, ok := exactArcsin(arg); ok {
			return AddOf(MulOf(F(1, 2), Pi), Neg(r))
		}
	case "atan":
		if IsZero(arg) {
			return N(0)
		}
		if IsOne(arg) {
			return MulOf(F(1, 4), Pi)
		}
	case "ln":
		if IsOne(arg) {
			return N(0)
		}
		if arg.Equal(E) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "exp":
		if IsZero(arg) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	case "abs":
		if n, ok := arg.(*Num); ok {
			return numAbs(n)
		}
		if len(FreeSymbols(arg)) == 0 {
			if v, ok := arg.approx(nil); ok && !math.IsNaN(v) {
				switch {
				case v > 0:
					return arg
				case v < 0:
					return Neg(arg)
				}
			}
		}
	}
	return &Func{name: f.name, arg: arg}
}

func (f *Func) String() string {
	name := f.name
	switch name {
	case "asin":
		name = "arcsin"
	case "acos":
		name = "arccos"
	case "atan":
		name = "arctan"
	}
	return name + "(" + f.arg.String() + ")"
}

func (f *Func) LaTeX() string {
	switch f.name {
	case "exp":
		return "e^{" + f.arg.LaTeX() + "}"
	case "abs":
		return `\left|` + f.arg.LaTeX() + `\right|`
	}
	return funcLaTeX[f.name] + `\left(` + f.arg.LaTeX() + `\right)`
}

func (f *Func) Sub(name string, value Expr) Expr {
	return (&Func{name: f.name, arg: f.arg.Sub(name, value)}).Simplify()
}

func (f *Func) approx(env map[string]float64) (float64, bool) {
	v, ok := f.arg.approx(env)
	if !ok {
		return 0, false
	}
	switch f.name {
	case "sin":
		return math.Sin(v), true
	case "cos":
		return math.Cos(v), true
	case "tan":
		return math.Tan(v), true
	case "asin":
		return math.Asin(v), true
	case "acos":
		return math.Acos(v), true
	case "atan":
		return math.Atan(v), true
	case "ln":
		if v <= 0 {
			return math.NaN(), true
		}
		return math.Log(v), true
	case "exp":
		return math.Exp(v), true
	case "abs":
		return math.Abs(v), true
	}
	return 0, false
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) Head() string     { return funcHeads[f.name] }
func (f *Func) Operands() []Expr { return []Expr{f.arg} }
func (f *Func) Name() string     { return f.name }
func (f *Func) Arg() Expr        { return f.arg }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}

// Call applies the function with the given head to arg.
func Call(head string, arg Expr) (Expr, bool) {
	for name, h := range funcHeads {
		if h == head {
			return (&Func{name: name, arg: arg}).Simplify(), true
		}
	}
	return nil, false
}
