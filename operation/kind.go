// Package operation is the catalog of equation transformations.
//
// Every transformation is a Kind. Kinds form a closed set: dispatch is an
// exhaustive switch and an out-of-range Kind is a programming error.
package operation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/njchilds90/solvee/equation"
	"github.com/njchilds90/solvee/expr"
)

var (
	ErrUnknownOperation  = errors.New("operation: unknown operation")
	ErrArgumentRequired  = errors.New("operation: argument required")
	ErrArgumentForbidden = errors.New("operation: operation takes no argument")
	ErrUnknownPreset     = errors.New("operation: unknown preset")

	// ErrUnknownEquation and ErrErrorLeaf are the tree's own sentinels so
	// callers can test either package's name with errors.Is.
	ErrUnknownEquation = equation.ErrUnknownNode
	ErrErrorLeaf       = equation.ErrErrorLeaf
)

// Kind identifies one operation of the catalog.
type Kind int

const (
	Add Kind = iota
	Subtract
	Multiply
	Divide
	Sqrt
	Root
	Square
	Ln
	Arcsin
	Arccos
	Exp
	Expand
	Factorize
	ZeroProduct
	QuadraticFormula
	Substitute
	Resubstitute
	Periodize
	NullForm
	Simplify

	kindCount
)

type info struct {
	name  string
	title string
	help  string
	arg   bool
}

var catalog = [kindCount]info{
	Add:              {"add", "+ □", "Equivalence transformation: add the term on both sides", true},
	Subtract:         {"subtract", "− □", "Equivalence transformation: subtract the term on both sides", true},
	Multiply:         {"multiply", "· □", "Equivalence transformation: multiply both sides by the term", true},
	Divide:           {"divide", ": □", "Equivalence transformation: divide both sides by the term", true},
	Sqrt:             {"sqrt", "√", "Equivalence transformation: take the square root of both sides", false},
	Root:             {"root", "ⁿ√", "Equivalence transformation: take the n-th root of both sides", true},
	Square:           {"square", "□²", "Transformation: square both sides", false},
	Ln:               {"ln", "ln", "Equivalence transformation: apply the natural logarithm to both sides", false},
	Arcsin:           {"arcsin", "sin⁻¹", "Equivalence transformation: apply arcsine to both sides", false},
	Arccos:           {"arccos", "cos⁻¹", "Equivalence transformation: apply arccosine to both sides", false},
	Exp:              {"exp", "e^□", "Equivalence transformation: apply the exponential function to both sides", false},
	Expand:           {"expand", "Expand", "Multiply out the left side", false},
	Factorize:        {"factorize", "Factor out □", "Factor the term out of the left side", true},
	ZeroProduct:      {"zero_product", "Zero product", "One side must be a product, the other zero", false},
	QuadraticFormula: {"quadratic_formula", "Quadratic formula", "For equations of the form ax²+bx+c=0", false},
	Substitute:       {"substitute", "Subst", "Replace every occurrence of the term by u", true},
	Resubstitute:     {"resubstitute", "Resubst", "Replace u by the substituted term again", false},
	Periodize:        {"periodize", "+ k·□", "Periodize: the solutions repeat with the given period", true},
	NullForm:         {"null_form", "Null form", "Bring everything to the left side", false},
	Simplify:         {"simplify", "Simplify", "Simplify both sides", false},
}

// Valid reports whether k names a catalog entry.
func (k Kind) Valid() bool { return k >= 0 && k < kindCount }

func (k Kind) info() info {
	if !k.Valid() {
		panic(fmt.Sprintf("operation: invalid kind %d", int(k)))
	}
	return catalog[k]
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return catalog[k].name
}

func (k Kind) Title() string          { return k.info().title }
func (k Kind) Help() string           { return k.info().help }
func (k Kind) ArgumentRequired() bool { return k.info().arg }

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Describe renders the step label shown next to an equation the operation
// was applied to, such as "| − 6" or "|| x^2 := u".
func (k Kind) Describe(arg expr.Expr) string {
	argStr := ""
	if arg != nil {
		argStr = arg.String()
	}
	switch k {
	case Add:
		return "| " + signed(arg)
	case Subtract:
		if arg != nil && arg.Head() == expr.HeadAdd {
			return "| − (" + argStr + ")"
		}
		return "| " + signed(negate(arg))
	case Multiply:
		return "| · " + argStr
	case Divide:
		return "| : " + argStr
	case Sqrt:
		return "| √"
	case Root:
		return "| root " + argStr
	case Square:
		return "| ²"
	case Ln:
		return "| ln"
	case Arcsin:
		return "| sin⁻¹"
	case Arccos:
		return "| cos⁻¹"
	case Exp:
		return "| exp"
	case Expand:
		return "|| expand"
	case Factorize:
		return "|| factor out " + argStr
	case ZeroProduct:
		return "|| zero product"
	case QuadraticFormula:
		return "|| quadratic formula"
	case Substitute:
		return "|| " + argStr + " := u"
	case Resubstitute:
		return "|| u := " + argStr
	case Periodize:
		return "|| periodize"
	case NullForm:
		return "| " + signed(arg)
	case Simplify:
		return "|| simplify"
	}
	panic(fmt.Sprintf("operation: invalid kind %d", int(k)))
}

func negate(e expr.Expr) expr.Expr {
	if e == nil {
		return nil
	}
	return expr.Neg(e)
}

func signed(e expr.Expr) string {
	if e == nil {
		return ""
	}
	s := e.String()
	if strings.HasPrefix(s, "-") {
		return "− " + s[1:]
	}
	if e.Head() == expr.HeadAdd {
		return "+ (" + s + ")"
	}
	return "+ " + s
}

// Parse looks up a kind by name.
func Parse(name string) (Kind, error) {
	for k := Kind(0); k < kindCount; k++ {
		if catalog[k].name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
}

// All returns every kind in catalog order.
func All() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

var presets = []struct {
	name  string
	kinds []Kind
}{
	{"exponential", []Kind{Add, Subtract, Multiply, Divide, Ln, Factorize, Expand, ZeroProduct, QuadraticFormula, Substitute, Resubstitute}},
	{"polynomial", []Kind{Add, Subtract, Multiply, Divide, Sqrt, Factorize, Expand, ZeroProduct, QuadraticFormula, Substitute, Resubstitute}},
	{"polynomial-root", []Kind{Add, Subtract, Multiply, Divide, Root, Factorize, Expand, ZeroProduct, QuadraticFormula, Substitute, Resubstitute}},
	{"trigonometrical", []Kind{Add, Subtract, Multiply, Divide, Arcsin, Arccos, Factorize, Expand, ZeroProduct, Substitute, Resubstitute, Periodize}},
}

// Presets returns the preset names in their fixed order.
func Presets() []string {
	out := make([]string, len(presets))
	for i, p := range presets {
		out[i] = p.name
	}
	return out
}

// Preset returns the kinds of the named preset.
func Preset(name string) ([]Kind, error) {
	for _, p := range presets {
		if p.name == name {
			return append([]Kind(nil), p.kinds...), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// Resolve expands preset and operation names into a deduplicated kind list
// that keeps first-seen order.
func Resolve(names ...string) ([]Kind, error) {
	var out []Kind
	seen := map[Kind]bool{}
	push := func(k Kind) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if kinds, err := Preset(name); err == nil {
			for _, k := range kinds {
				push(k)
			}
			continue
		}
		k, err := Parse(name)
		if err != nil {
			return nil, err
		}
		push(k)
	}
	return out, nil
}
